package corridor

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// boundaryTolerance is the distance in degrees (roughly 0.1µm) within which a point counts as lying on a ring.
const boundaryTolerance = 1e-12

// IsWithin determines whether the point lies inside the corridor or on its boundary. The test runs in degree space on
// the back-projected corridor geometry.
func IsWithin(point orb.Point, c *Corridor) bool {
	if c == nil {
		return false
	}
	return c.Contains(point)
}

func (c *Corridor) Contains(point orb.Point) bool {
	if !c.bound.Contains(point) {
		return false
	}

	within := false
	for _, polygon := range c.geometry {
		if polygonContains(polygon, point) {
			within = true
			break
		}
	}

	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Corridor.Contains(%v) = %v", point, within)
	}
	return within
}

// polygonContains treats all rings as closed: points on the outer ring and on hole rings are inside the polygon.
func polygonContains(polygon orb.Polygon, point orb.Point) bool {
	if len(polygon) == 0 {
		return false
	}
	if !planar.RingContains(polygon[0], point) && !onRing(polygon[0], point) {
		return false
	}

	for _, hole := range polygon[1:] {
		if planar.RingContains(hole, point) && !onRing(hole, point) {
			return false
		}
	}

	return true
}

func onRing(ring orb.Ring, point orb.Point) bool {
	for i := 0; i+1 < len(ring); i++ {
		if planar.DistanceFromSegment(ring[i], ring[i+1], point) <= boundaryTolerance {
			return true
		}
	}
	return false
}
