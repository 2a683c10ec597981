package overpass

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"net/url"
	"roadsearch/corridor"
	"roadsearch/osm"
	"roadsearch/place"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"
	DefaultTimeout  = 90 * time.Second
)

var ErrRoadwayNotFound = errors.New("roadway not found")

// Client queries the Overpass API and parses the XML results with the OSM reader.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

func NewClient(endpoint string, userAgent string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FindRoadway returns the combined geometry of all ways and road relations matching the roadway name. The optional
// bound restricts the search area.
func (c *Client) FindRoadway(ctx context.Context, name string, bound *orb.Bound) (corridor.RoadwayTrace, error) {
	collector := osm.NewTraceCollector(nil)

	err := c.execute(ctx, RoadwayQuery(name, bound), collector)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to find roadway '%s'", name)
	}

	trace := collector.Trace()
	if len(trace) == 0 {
		return nil, errors.Wrapf(ErrRoadwayNotFound, "No geometry found for roadway '%s'", name)
	}

	sigolo.Infof("Found roadway '%s' with %d ways and %d coordinates", name, collector.WayCount(), len(trace))
	return trace, nil
}

// FindPlaces returns all cities and towns within the envelope.
func (c *Client) FindPlaces(ctx context.Context, envelope corridor.SearchEnvelope) ([]place.Candidate, error) {
	collector := osm.NewPlaceCollector(false)

	err := c.execute(ctx, PlacesQuery(envelope), collector)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to find places in %s", envelope.String())
	}

	sigolo.Infof("Found %d places in search area %s", len(collector.Candidates()), envelope.String())
	return collector.Candidates(), nil
}

func (c *Client) execute(ctx context.Context, query string, handlers ...osm.OsmDataHandler) error {
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Overpass query:\n%s", query)
	}
	requestStartTime := time.Now()

	form := url.Values{}
	form.Set("data", query)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "Unable to create Overpass request")
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return errors.Wrapf(err, "Unable to execute Overpass request to %s", c.endpoint)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return errors.Errorf("Overpass API responded with status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	err = osm.NewOsmReader().Read(ctx, response.Body, handlers...)
	if err != nil {
		return errors.Wrap(err, "Unable to read Overpass response")
	}

	sigolo.Debugf("Overpass request took %s", time.Since(requestStartTime))
	return nil
}
