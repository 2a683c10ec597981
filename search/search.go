package search

import (
	"context"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"roadsearch/corridor"
	"roadsearch/place"
	"time"
)

const (
	DefaultRadiusMeters    = 500.0
	DefaultExpansionFactor = 0.02
)

type RoadwaySource interface {
	FindRoadway(ctx context.Context, name string, bound *orb.Bound) (corridor.RoadwayTrace, error)
}

type PlaceSource interface {
	FindPlaces(ctx context.Context, envelope corridor.SearchEnvelope) ([]place.Candidate, error)
}

// RegionResolver returns the state (or province) and country of a position. Unknown names are returned as empty
// strings.
type RegionResolver interface {
	Reverse(ctx context.Context, lat float64, lon float64) (string, string, error)
}

type AreaLocator interface {
	LocateArea(ctx context.Context, city string, state string) (orb.Bound, error)
}

type Config struct {
	RadiusMeters    float64
	ExpansionFactor float64
}

type Query struct {
	Roadway string
	City    string
	State   string
}

func (q Query) String() string {
	return fmt.Sprintf("'%s' near %s, %s", q.Roadway, q.City, q.State)
}

type Result struct {
	Query          Query
	Records        []place.Record
	Corridor       *corridor.Corridor
	Envelope       corridor.SearchEnvelope
	CandidateCount int
}

type Searcher struct {
	roadways RoadwaySource
	places   PlaceSource
	regions  RegionResolver
	areas    AreaLocator
	config   Config
}

func NewSearcher(roadways RoadwaySource, places PlaceSource, regions RegionResolver, areas AreaLocator, config Config) *Searcher {
	return &Searcher{
		roadways: roadways,
		places:   places,
		regions:  regions,
		areas:    areas,
		config:   config,
	}
}

// Search finds all cities and towns within the configured radius of the roadway. When a city is given, the roadway is
// only searched in the area around that city.
func (s *Searcher) Search(ctx context.Context, query Query) (*Result, error) {
	if query.Roadway == "" {
		return nil, errors.Wrap(corridor.ErrInvalidParameter, "Roadway name must not be empty")
	}

	sigolo.Infof("Searching for %s", query.String())
	searchStartTime := time.Now()

	var area *orb.Bound
	if query.City != "" && s.areas != nil {
		bound, err := s.areas.LocateArea(ctx, query.City, query.State)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to locate search area for %s", query.String())
		}
		area = &bound
		sigolo.Debugf("Search area around %s, %s: %v", query.City, query.State, bound)
	}

	trace, err := s.roadways.FindRoadway(ctx, query.Roadway, area)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to find roadway for %s", query.String())
	}

	result, err := s.SearchTrace(ctx, query, trace)
	if err != nil {
		return nil, err
	}

	sigolo.Infof("Found %d places for %s in %s", len(result.Records), query.String(), time.Since(searchStartTime))
	return result, nil
}

// SearchTrace finds all cities and towns within the configured radius of an already known roadway trace.
func (s *Searcher) SearchTrace(ctx context.Context, query Query, trace corridor.RoadwayTrace) (*Result, error) {
	c, err := corridor.Build(trace, s.config.RadiusMeters)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to build corridor for %s", query.String())
	}

	envelope, err := corridor.ComputeEnvelope(c, s.config.ExpansionFactor)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to compute search envelope for %s", query.String())
	}
	sigolo.Debugf("Search envelope: %s", envelope.String())

	candidates, err := s.places.FindPlaces(ctx, envelope)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to find places for %s", query.String())
	}

	var records []place.Record
	for _, candidate := range candidates {
		if !c.Contains(candidate.Position) {
			continue
		}

		state, country := "", ""
		if s.regions != nil {
			state, country, err = s.regions.Reverse(ctx, candidate.Position.Lat(), candidate.Position.Lon())
			if err != nil {
				return nil, errors.Wrapf(err, "Unable to resolve region of %s", candidate.String())
			}
		}

		records = append(records, place.NewRecord(query.Roadway, candidate, state, country))
	}
	sigolo.Debugf("%d of %d candidates are within the corridor", len(records), len(candidates))

	return &Result{
		Query:          query,
		Records:        place.Dedupe(records),
		Corridor:       c,
		Envelope:       envelope,
		CandidateCount: len(candidates),
	}, nil
}
