package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultEndpoint        = "https://nominatim.openstreetmap.org"
	DefaultRequestInterval = time.Second
	DefaultTimeout         = 30 * time.Second

	// AreaHalfSize is half the edge length in degrees of the search area around a located city (roughly 50km).
	AreaHalfSize = 0.45
)

var ErrLocationNotFound = errors.New("location not found")

// Client talks to the Nominatim API. All requests of one client share a rate limiter, so a client can be used by
// several goroutines without exceeding the usage policy of the API.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type reverseResponse struct {
	Address struct {
		State         string `json:"state"`
		Province      string `json:"province"`
		StateDistrict string `json:"state_district"`
		Country       string `json:"country"`
	} `json:"address"`
}

type searchResult struct {
	Lat         float64 `json:"lat,string"`
	Lon         float64 `json:"lon,string"`
	DisplayName string  `json:"display_name"`
}

// NewClient creates a client sending at most one request per requestInterval. A non-positive interval disables the
// rate limit.
func NewClient(endpoint string, userAgent string, requestInterval time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	limit := rate.Inf
	if requestInterval > 0 {
		limit = rate.Every(requestInterval)
	}

	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Reverse determines the state (or province) and country of the given position. When Nominatim does not respond
// successfully, empty names are returned without error.
func (c *Client) Reverse(ctx context.Context, lat float64, lon float64) (string, string, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("accept-language", "en")

	var response reverseResponse
	ok, err := c.get(ctx, "/reverse", params, &response)
	if err != nil {
		return "", "", errors.Wrapf(err, "Unable to reverse geocode (%f, %f)", lat, lon)
	}
	if !ok {
		return "", "", nil
	}

	state := response.Address.State
	if state == "" {
		state = response.Address.Province
	}
	if state == "" {
		state = response.Address.StateDistrict
	}

	sigolo.Debugf("Reverse geocoded (%f, %f) to state '%s' and country '%s'", lat, lon, state, response.Address.Country)
	return state, response.Address.Country, nil
}

// LocateArea searches the city within the state (in the USA) and returns the search area around it.
func (c *Client) LocateArea(ctx context.Context, city string, state string) (orb.Bound, error) {
	query := fmt.Sprintf("%s, %s, USA", city, state)

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", "1")

	var results []searchResult
	ok, err := c.get(ctx, "/search", params, &results)
	if err != nil {
		return orb.Bound{}, errors.Wrapf(err, "Unable to locate %s", query)
	}
	if !ok || len(results) == 0 {
		return orb.Bound{}, errors.Wrapf(ErrLocationNotFound, "Location not found: %s, %s", city, state)
	}

	center := orb.Point{results[0].Lon, results[0].Lat}
	sigolo.Infof("Located %s at %v (%s)", query, center, results[0].DisplayName)

	return orb.Bound{
		Min: orb.Point{center.Lon() - AreaHalfSize, center.Lat() - AreaHalfSize},
		Max: orb.Point{center.Lon() + AreaHalfSize, center.Lat() + AreaHalfSize},
	}, nil
}

// get performs a rate limited GET request and decodes the JSON body into target. It returns false without error when
// the API responded with a non-200 status.
func (c *Client) get(ctx context.Context, path string, params url.Values, target any) (bool, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return false, errors.Wrap(err, "Unable to wait for rate limiter")
	}

	requestUrl := c.endpoint + path + "?" + params.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return false, errors.Wrapf(err, "Unable to create request to %s", requestUrl)
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return false, errors.Wrapf(err, "Unable to execute request to %s", requestUrl)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		sigolo.Debugf("Nominatim responded with status %d to %s", response.StatusCode, requestUrl)
		return false, nil
	}

	err = json.NewDecoder(response.Body).Decode(target)
	if err != nil {
		return false, errors.Wrapf(err, "Unable to decode response of %s", requestUrl)
	}

	return true, nil
}
