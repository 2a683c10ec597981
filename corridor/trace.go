package corridor

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"roadsearch/projection"
)

// RoadwayTrace is the ordered polyline of a roadway in (lon, lat) degrees. Adjacent duplicates are allowed as long as
// at least two distinct points remain.
type RoadwayTrace orb.LineString

func NewRoadwayTrace(points ...orb.Point) (RoadwayTrace, error) {
	trace := RoadwayTrace(points)
	err := trace.Validate()
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// Validate checks every coordinate and makes sure the trace does not collapse into a single point.
func (t RoadwayTrace) Validate() error {
	for i, point := range t {
		err := projection.ValidateLonLat(point)
		if err != nil {
			return errors.Wrapf(err, "Invalid point %d of roadway trace", i)
		}
	}

	if len(t.distinctPoints()) < 2 {
		return errors.Wrapf(ErrDegenerateGeometry, "Roadway trace with %d point(s) has less than two distinct points", len(t))
	}

	return nil
}

func (t RoadwayTrace) LineString() orb.LineString {
	return orb.LineString(t)
}

func (t RoadwayTrace) Bound() orb.Bound {
	return orb.LineString(t).Bound()
}

// distinctPoints returns the trace without adjacent duplicates.
func (t RoadwayTrace) distinctPoints() []orb.Point {
	var result []orb.Point
	for _, point := range t {
		if len(result) > 0 && result[len(result)-1].Equal(point) {
			continue
		}
		result = append(result, point)
	}
	return result
}
