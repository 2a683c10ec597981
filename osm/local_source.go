package osm

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"roadsearch/corridor"
	"roadsearch/index"
	"roadsearch/place"
)

// LocalPlaceSource answers place searches from candidates read beforehand, e.g. from a local OSM file.
type LocalPlaceSource struct {
	gridIndex *index.GridIndex
}

func NewLocalPlaceSource(candidates []place.Candidate) *LocalPlaceSource {
	gridIndex := index.NewGridIndex(index.DefaultCellSize, index.DefaultCellSize)
	gridIndex.Add(candidates...)
	return &LocalPlaceSource{gridIndex: gridIndex}
}

func (s *LocalPlaceSource) FindPlaces(ctx context.Context, envelope corridor.SearchEnvelope) ([]place.Candidate, error) {
	result := s.gridIndex.Get(envelope.Bound())
	sigolo.Debugf("%d of %d local candidates are within envelope %s", len(result), s.gridIndex.Len(), envelope.String())
	return result, ctx.Err()
}

// ReadLocalFile reads the trace of the given roadway and all cities and towns from a local .osm or .osm.pbf file in
// one pass.
func ReadLocalFile(ctx context.Context, filename string, roadway string) (corridor.RoadwayTrace, *LocalPlaceSource, error) {
	matcher, err := NewRoadwayMatcher(roadway)
	if err != nil {
		return nil, nil, err
	}

	traceCollector := NewTraceCollector(matcher)
	placeCollector := NewPlaceCollector(true)

	err = NewOsmReader().ReadFile(ctx, filename, traceCollector, placeCollector)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Unable to read local OSM file %s", filename)
	}

	sigolo.Infof("Found %d ways of roadway '%s' and %d places in %s", traceCollector.WayCount(), roadway, len(placeCollector.Candidates()), filename)
	return traceCollector.Trace(), NewLocalPlaceSource(placeCollector.Candidates()), nil
}
