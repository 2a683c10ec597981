package corridor

import (
	"fmt"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
)

// EnvelopeMinPadding is added to the padding of each dimension so that a corridor without extent still gets an
// envelope of positive size.
const EnvelopeMinPadding = 0.01

// SearchEnvelope is the padded bounding box a place search runs in.
type SearchEnvelope struct {
	South float64
	West  float64
	North float64
	East  float64
}

// ComputeEnvelope pads the bounding box of the corridor by expansionFactor*extent+EnvelopeMinPadding degrees in each
// dimension. The result is clamped to valid longitudes and latitudes.
func ComputeEnvelope(c *Corridor, expansionFactor float64) (SearchEnvelope, error) {
	if c == nil {
		return SearchEnvelope{}, errors.Wrap(ErrInvalidParameter, "No corridor given to compute envelope for")
	}
	if math.IsNaN(expansionFactor) || math.IsInf(expansionFactor, 0) || expansionFactor <= 0 {
		return SearchEnvelope{}, errors.Wrapf(ErrInvalidParameter, "Expansion factor must be a positive finite number but was %f", expansionFactor)
	}

	return envelopeOfBound(c.Bound(), expansionFactor), nil
}

func envelopeOfBound(bound orb.Bound, expansionFactor float64) SearchEnvelope {
	lonPadding := expansionFactor*(bound.Right()-bound.Left()) + EnvelopeMinPadding
	latPadding := expansionFactor*(bound.Top()-bound.Bottom()) + EnvelopeMinPadding

	return SearchEnvelope{
		South: math.Max(bound.Bottom()-latPadding, -90),
		West:  math.Max(bound.Left()-lonPadding, -180),
		North: math.Min(bound.Top()+latPadding, 90),
		East:  math.Min(bound.Right()+lonPadding, 180),
	}
}

func (e SearchEnvelope) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.West, e.South},
		Max: orb.Point{e.East, e.North},
	}
}

func (e SearchEnvelope) Contains(point orb.Point) bool {
	return e.Bound().Contains(point)
}

// Area returns the area of the envelope in square degrees.
func (e SearchEnvelope) Area() float64 {
	return (e.North - e.South) * (e.East - e.West)
}

// String formats the envelope as "south,west,north,east" which is the bounding box format of Overpass.
func (e SearchEnvelope) String() string {
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", e.South, e.West, e.North, e.East)
}
