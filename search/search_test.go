package search

import (
	"context"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"roadsearch/corridor"
	"roadsearch/place"
	"roadsearch/util"
	"sync"
	"testing"
)

type fakeRoadwaySource struct {
	traces    map[string]corridor.RoadwayTrace
	mutex     sync.Mutex
	lastBound *orb.Bound
}

func (f *fakeRoadwaySource) FindRoadway(ctx context.Context, name string, bound *orb.Bound) (corridor.RoadwayTrace, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.lastBound = bound

	trace, ok := f.traces[name]
	if !ok {
		return nil, errors.Errorf("no roadway %s", name)
	}
	return trace, nil
}

type fakePlaceSource struct {
	candidates []place.Candidate
	envelopes  []corridor.SearchEnvelope
	mutex      sync.Mutex
}

func (f *fakePlaceSource) FindPlaces(ctx context.Context, envelope corridor.SearchEnvelope) ([]place.Candidate, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.envelopes = append(f.envelopes, envelope)
	return f.candidates, nil
}

type fakeRegionResolver struct {
	calls int
	mutex sync.Mutex
	err   error
}

func (f *fakeRegionResolver) Reverse(ctx context.Context, lat float64, lon float64) (string, string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	if lat > 25.79 {
		return "North Florida", "United States", nil
	}
	return "Florida", "United States", nil
}

type fakeAreaLocator struct{}

func (f fakeAreaLocator) LocateArea(ctx context.Context, city string, state string) (orb.Bound, error) {
	if city == "Atlantis" {
		return orb.Bound{}, errors.New("not found")
	}
	return orb.Bound{Min: orb.Point{-80.6, 25.3}, Max: orb.Point{-79.7, 26.2}}, nil
}

var miamiCandidates = []place.Candidate{
	{ID: 1, Kind: place.NodeFeature, Position: orb.Point{-80.1939, 25.7742}, Tags: map[string]string{"name": "Miami", "place": "city"}},
	{ID: 2, Kind: place.WayFeature, Position: orb.Point{-80.1939, 25.7742}, Tags: map[string]string{"name": "Miami", "place": "city"}},
	{ID: 3, Kind: place.NodeFeature, Position: orb.Point{-80.50, 25.78}, Tags: map[string]string{"name": "Far Away", "place": "town"}},
	{ID: 4, Kind: place.NodeFeature, Position: orb.Point{-80.1985, 25.795}, Tags: map[string]string{"name:en": "Northtown"}},
}

func newTestSearcher() (*Searcher, *fakeRoadwaySource, *fakePlaceSource, *fakeRegionResolver) {
	roadways := &fakeRoadwaySource{traces: map[string]corridor.RoadwayTrace{
		"I 95":   {{-80.19, 25.76}, {-80.20, 25.80}},
		"Broken": {{-80.19, 25.76}, {-80.19, 25.76}},
	}}
	places := &fakePlaceSource{candidates: miamiCandidates}
	regions := &fakeRegionResolver{}
	searcher := NewSearcher(roadways, places, regions, fakeAreaLocator{}, Config{RadiusMeters: DefaultRadiusMeters, ExpansionFactor: DefaultExpansionFactor})
	return searcher, roadways, places, regions
}

func TestSearcher_Search(t *testing.T) {
	searcher, roadways, places, regions := newTestSearcher()

	// Act
	result, err := searcher.Search(context.Background(), Query{Roadway: "I 95", City: "Miami", State: "Florida"})

	// Assert
	util.AssertNil(t, err)
	util.AssertNotNil(t, roadways.lastBound)
	util.AssertEqual(t, 1, len(places.envelopes))
	util.AssertEqual(t, places.envelopes[0], result.Envelope)
	util.AssertEqual(t, 4, result.CandidateCount)
	util.AssertEqual(t, 500.0, result.Corridor.Radius())

	// Region is resolved for every candidate within the corridor, before deduplication.
	util.AssertEqual(t, 3, regions.calls)

	util.AssertEqual(t, []place.Record{
		{
			Roadway:        "I 95",
			PlaceName:      "Miami",
			PlaceNameAscii: "Miami",
			PlaceNameEn:    "Miami",
			PlaceTag:       "city",
			Latitude:       25.7742,
			Longitude:      -80.1939,
			State:          "Florida",
			Country:        "United States",
		},
		{
			Roadway:        "I 95",
			PlaceName:      "Northtown",
			PlaceNameAscii: "Northtown",
			PlaceNameEn:    "Northtown",
			PlaceTag:       "town",
			Latitude:       25.795,
			Longitude:      -80.1985,
			State:          "North Florida",
			Country:        "United States",
		},
	}, result.Records)

	for _, record := range result.Records {
		util.AssertTrue(t, result.Corridor.Contains(orb.Point{record.Longitude, record.Latitude}))
	}
}

func TestSearcher_Search_withoutCity(t *testing.T) {
	searcher, roadways, _, _ := newTestSearcher()

	result, err := searcher.Search(context.Background(), Query{Roadway: "I 95"})

	util.AssertNil(t, err)
	util.AssertTrue(t, roadways.lastBound == nil)
	util.AssertEqual(t, 2, len(result.Records))
}

func TestSearcher_Search_errors(t *testing.T) {
	searcher, _, _, _ := newTestSearcher()

	_, err := searcher.Search(context.Background(), Query{})
	util.AssertErrorIs(t, corridor.ErrInvalidParameter, err)

	_, err = searcher.Search(context.Background(), Query{Roadway: "I 95", City: "Atlantis", State: "Florida"})
	util.AssertNotNil(t, err)

	_, err = searcher.Search(context.Background(), Query{Roadway: "Unknown"})
	util.AssertNotNil(t, err)

	_, err = searcher.Search(context.Background(), Query{Roadway: "Broken"})
	util.AssertErrorIs(t, corridor.ErrDegenerateGeometry, err)
}

func TestSearcher_Search_regionErrorAbortsSearch(t *testing.T) {
	searcher, _, _, regions := newTestSearcher()
	regions.err = errors.New("network down")

	result, err := searcher.Search(context.Background(), Query{Roadway: "I 95"})

	util.AssertNotNil(t, err)
	util.AssertTrue(t, result == nil)
	util.AssertEqual(t, 1, regions.calls)
}

func TestSearcher_Search_invalidConfig(t *testing.T) {
	roadways := &fakeRoadwaySource{traces: map[string]corridor.RoadwayTrace{"I 95": {{-80.19, 25.76}, {-80.20, 25.80}}}}
	searcher := NewSearcher(roadways, &fakePlaceSource{}, nil, nil, Config{RadiusMeters: 500, ExpansionFactor: 0})

	_, err := searcher.Search(context.Background(), Query{Roadway: "I 95"})

	util.AssertErrorIs(t, corridor.ErrInvalidParameter, err)
}

func TestSearcher_SearchTrace_withoutRegionResolver(t *testing.T) {
	searcher := NewSearcher(nil, &fakePlaceSource{candidates: miamiCandidates}, nil, nil, Config{RadiusMeters: 500, ExpansionFactor: 0.02})

	result, err := searcher.SearchTrace(context.Background(), Query{Roadway: "I 95"}, corridor.RoadwayTrace{{-80.19, 25.76}, {-80.20, 25.80}})

	util.AssertNil(t, err)
	util.AssertEqual(t, 2, len(result.Records))
	util.AssertEqual(t, "", result.Records[0].State)
	util.AssertEqual(t, "", result.Records[0].Country)
}

func TestSearcher_SearchAll(t *testing.T) {
	searcher, _, _, _ := newTestSearcher()
	queries := []Query{
		{Roadway: "I 95", City: "Miami", State: "Florida"},
		{Roadway: "Unknown", City: "Miami", State: "Florida"},
		{Roadway: "I 95"},
		{Roadway: "Broken"},
	}

	// Act
	outcomes := searcher.SearchAll(context.Background(), queries, 2)

	// Assert
	util.AssertEqual(t, 4, len(outcomes))
	for i, outcome := range outcomes {
		util.AssertEqual(t, queries[i], outcome.Query)
	}

	util.AssertNil(t, outcomes[0].Err)
	util.AssertEqual(t, 2, len(outcomes[0].Result.Records))
	util.AssertNotNil(t, outcomes[1].Err)
	util.AssertTrue(t, outcomes[1].Result == nil)
	util.AssertNil(t, outcomes[2].Err)
	util.AssertErrorIs(t, corridor.ErrDegenerateGeometry, outcomes[3].Err)
}

func TestSearcher_SearchAll_invalidParallelism(t *testing.T) {
	searcher, _, _, _ := newTestSearcher()

	outcomes := searcher.SearchAll(context.Background(), []Query{{Roadway: "I 95"}}, 0)

	util.AssertEqual(t, 1, len(outcomes))
	util.AssertNil(t, outcomes[0].Err)
}
