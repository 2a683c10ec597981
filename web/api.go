package web

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"net/http"
	"roadsearch/corridor"
	ownIo "roadsearch/io"
	"roadsearch/nominatim"
	"roadsearch/overpass"
	"roadsearch/search"
	"time"
)

const requestIdHeader = "X-Request-Id"

type searchRequest struct {
	Roadway string `json:"roadway"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type corridorRequest struct {
	Coordinates     [][2]float64 `json:"coordinates"`
	Radius          *float64     `json:"radius"`
	ExpansionFactor *float64     `json:"expansion_factor"`
}

func StartServer(port string, searcher *search.Searcher, config search.Config) {
	handler := initRouter(searcher, config)
	sigolo.Infof("Start server without TLS support on port %s", port)
	err := http.ListenAndServe(":"+port, handler)
	sigolo.FatalCheck(err)
}

func StartServerTls(port string, certFile string, keyFile string, searcher *search.Searcher, config search.Config) {
	handler := initRouter(searcher, config)
	sigolo.Infof("Start server with TLS support on port %s", port)
	err := http.ListenAndServeTLS(":"+port, certFile, keyFile, handler)
	sigolo.FatalCheck(err)
}

func initRouter(searcher *search.Searcher, config search.Config) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.HandleFunc("/search", func(writer http.ResponseWriter, request *http.Request) {
		var body searchRequest
		err := json.NewDecoder(request.Body).Decode(&body)
		if err != nil {
			writeError(writer, request, http.StatusBadRequest, errors.Wrap(err, "Error parsing search request"))
			return
		}

		query := search.Query{Roadway: body.Roadway, City: body.City, State: body.State}
		result, err := searcher.Search(request.Context(), query)
		if err != nil {
			writeError(writer, request, statusOf(err), errors.Wrap(err, "Error executing search"))
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		err = ownIo.WriteRecordsAsJson(result.Records, writer)
		if err != nil {
			sigolo.Errorf("[%s] Error writing search result: %+v", requestId(request), err)
		}
	}).Methods(http.MethodPost)

	r.HandleFunc("/corridor", func(writer http.ResponseWriter, request *http.Request) {
		var body corridorRequest
		err := json.NewDecoder(request.Body).Decode(&body)
		if err != nil {
			writeError(writer, request, http.StatusBadRequest, errors.Wrap(err, "Error parsing corridor request"))
			return
		}

		radius := config.RadiusMeters
		if body.Radius != nil {
			radius = *body.Radius
		}
		expansionFactor := config.ExpansionFactor
		if body.ExpansionFactor != nil {
			expansionFactor = *body.ExpansionFactor
		}

		trace := make(corridor.RoadwayTrace, len(body.Coordinates))
		for i, coordinate := range body.Coordinates {
			trace[i] = orb.Point{coordinate[0], coordinate[1]}
		}

		c, err := corridor.Build(trace, radius)
		if err != nil {
			writeError(writer, request, statusOf(err), errors.Wrap(err, "Error building corridor"))
			return
		}

		envelope, err := corridor.ComputeEnvelope(c, expansionFactor)
		if err != nil {
			writeError(writer, request, statusOf(err), errors.Wrap(err, "Error computing search envelope"))
			return
		}

		writer.Header().Set("Content-Type", "application/geo+json")
		err = ownIo.WriteCorridorAsGeoJson(c, &envelope, nil, writer)
		if err != nil {
			sigolo.Errorf("[%s] Error writing corridor: %+v", requestId(request), err)
		}
	}).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{requestIdHeader},
		MaxAge:         300,
	}).Handler(r)
}

// requestLogging assigns every request an ID, which is returned in the response header and prefixes the log entries
// of that request.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := uuid.New().String()
		request.Header.Set(requestIdHeader, id)
		writer.Header().Set(requestIdHeader, id)

		sigolo.Infof("[%s] %s %s", id, request.Method, request.URL.Path)
		requestStartTime := time.Now()

		next.ServeHTTP(writer, request)

		sigolo.Debugf("[%s] Finished in %s", id, time.Since(requestStartTime))
	})
}

func requestId(request *http.Request) string {
	return request.Header.Get(requestIdHeader)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, corridor.ErrInvalidParameter),
		errors.Is(err, corridor.ErrInvalidCoordinate),
		errors.Is(err, corridor.ErrDegenerateGeometry):
		return http.StatusBadRequest
	case errors.Is(err, overpass.ErrRoadwayNotFound),
		errors.Is(err, nominatim.ErrLocationNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(writer http.ResponseWriter, request *http.Request, status int, err error) {
	sigolo.Errorf("[%s] %+v", requestId(request), err)
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(status)
	_, err = writer.Write([]byte(fmt.Sprintf("%v", err)))
	if err != nil {
		sigolo.Errorf("[%s] Error writing error response: %+v", requestId(request), err)
	}
}
