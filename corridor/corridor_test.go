package corridor

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"math"
	"math/rand"
	"roadsearch/util"
	"testing"
)

var miamiTrace = RoadwayTrace{{-80.19, 25.76}, {-80.20, 25.80}}

func TestBuild_miamiScenario(t *testing.T) {
	// Act
	c, err := Build(miamiTrace, 500)

	// Assert
	util.AssertNil(t, err)
	util.AssertNotNil(t, c)
	util.AssertEqual(t, 17, c.Zone())
	util.AssertEqual(t, 500.0, c.Radius())
	util.AssertEqual(t, miamiTrace, c.Trace())

	util.AssertTrue(t, IsWithin(orb.Point{-80.19, 25.76}, c))
	util.AssertTrue(t, IsWithin(orb.Point{-80.20, 25.80}, c))
	util.AssertTrue(t, IsWithin(orb.Point{-80.195, 25.78}, c))
	util.AssertFalse(t, IsWithin(orb.Point{-80.50, 25.78}, c))
}

func TestBuild_perpendicularOffsets(t *testing.T) {
	radius := 500.0
	c, err := Build(miamiTrace, radius)
	util.AssertNil(t, err)

	midpoint := orb.Point{-80.195, 25.78}
	bearing := geo.Bearing(miamiTrace[0], miamiTrace[1])

	for _, side := range []float64{-90, 90} {
		near := geo.PointAtBearingAndDistance(midpoint, bearing+side, 0.5*radius)
		far := geo.PointAtBearingAndDistance(midpoint, bearing+side, 2*radius)

		util.AssertTrue(t, c.Contains(near))
		util.AssertFalse(t, c.Contains(far))
	}
}

func TestBuild_roundEndCaps(t *testing.T) {
	radius := 500.0
	c, err := Build(miamiTrace, radius)
	util.AssertNil(t, err)

	// Beyond the end of the trace along its direction.
	bearing := geo.Bearing(miamiTrace[0], miamiTrace[1])
	util.AssertTrue(t, c.Contains(geo.PointAtBearingAndDistance(miamiTrace[1], bearing, 0.5*radius)))
	util.AssertFalse(t, c.Contains(geo.PointAtBearingAndDistance(miamiTrace[1], bearing, 1.5*radius)))

	// A flat cap would contain the corner of the end, a round cap does not.
	corner := geo.PointAtBearingAndDistance(geo.PointAtBearingAndDistance(miamiTrace[1], bearing, 0.9*radius), bearing+90, 0.9*radius)
	util.AssertFalse(t, c.Contains(corner))
}

func TestBuild_geometryIsNormalized(t *testing.T) {
	c, err := Build(miamiTrace, 500)
	util.AssertNil(t, err)

	geometry := c.Geometry()
	util.AssertEqual(t, 1, len(geometry))
	util.AssertEqual(t, 1, len(geometry[0]))

	outer := geometry[0][0]
	util.AssertTrue(t, outer.Closed())
	util.AssertEqual(t, orb.CCW, outer.Orientation())
	util.AssertTrue(t, len(outer) > 40)

	// Geometry returns a copy.
	geometry[0][0][0] = orb.Point{0, 0}
	util.AssertFalse(t, c.Geometry()[0][0][0].Equal(orb.Point{0, 0}))
}

func TestBuild_loopCreatesHole(t *testing.T) {
	// A square of roughly 2km side length closed at its start.
	trace := RoadwayTrace{
		{13.40, 52.50},
		{13.43, 52.50},
		{13.43, 52.518},
		{13.40, 52.518},
		{13.40, 52.50},
	}

	c, err := Build(trace, 200)
	util.AssertNil(t, err)

	geometry := c.Geometry()
	util.AssertEqual(t, 1, len(geometry))
	util.AssertEqual(t, 2, len(geometry[0]))
	util.AssertEqual(t, orb.CCW, geometry[0][0].Orientation())
	util.AssertEqual(t, orb.CW, geometry[0][1].Orientation())
	util.AssertTrue(t, geometry[0][1].Closed())

	util.AssertFalse(t, c.Contains(orb.Point{13.415, 52.509}))
	util.AssertTrue(t, c.Contains(orb.Point{13.415, 52.50}))
	for _, point := range trace {
		util.AssertTrue(t, c.Contains(point))
	}
}

func TestCorridor_Contains_ringBoundariesAreInside(t *testing.T) {
	trace := RoadwayTrace{
		{13.40, 52.50},
		{13.43, 52.50},
		{13.43, 52.518},
		{13.40, 52.518},
		{13.40, 52.50},
	}
	c, err := Build(trace, 200)
	util.AssertNil(t, err)

	outer := c.Geometry()[0][0]
	hole := c.Geometry()[0][1]

	for i := 0; i+1 < len(outer); i++ {
		util.AssertTrue(t, c.Contains(outer[i]))
		util.AssertTrue(t, c.Contains(orb.Point{(outer[i].X() + outer[i+1].X()) / 2, (outer[i].Y() + outer[i+1].Y()) / 2}))
	}
	for i := 0; i+1 < len(hole); i++ {
		util.AssertTrue(t, c.Contains(hole[i]))
		util.AssertTrue(t, c.Contains(orb.Point{(hole[i].X() + hole[i+1].X()) / 2, (hole[i].Y() + hole[i+1].Y()) / 2}))
	}

	// Strictly inside the hole
	util.AssertFalse(t, c.Contains(orb.Point{13.415, 52.509}))
}

func TestBuild_adjacentDuplicatesAreTolerated(t *testing.T) {
	trace := RoadwayTrace{{-80.19, 25.76}, {-80.19, 25.76}, {-80.20, 25.80}, {-80.20, 25.80}}

	c, err := Build(trace, 100)

	util.AssertNil(t, err)
	util.AssertEqual(t, 4, len(c.Trace()))
	for _, point := range trace {
		util.AssertTrue(t, c.Contains(point))
	}
}

func TestBuild_identicalPointsAreDegenerate(t *testing.T) {
	_, err := Build(RoadwayTrace{{-80.19, 25.76}, {-80.19, 25.76}}, 500)
	util.AssertErrorIs(t, ErrDegenerateGeometry, err)

	_, err = Build(RoadwayTrace{{-80.19, 25.76}}, 500)
	util.AssertErrorIs(t, ErrDegenerateGeometry, err)

	_, err = Build(nil, 500)
	util.AssertErrorIs(t, ErrDegenerateGeometry, err)
}

func TestBuild_invalidRadius(t *testing.T) {
	for _, radius := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Build(miamiTrace, radius)
		util.AssertErrorIs(t, ErrInvalidParameter, err)
	}
}

func TestBuild_smallRadius(t *testing.T) {
	traceBound := miamiTrace.Bound()

	for _, radius := range []float64{1e-4, 1e-3, 4e-3, 0.5} {
		c, err := Build(miamiTrace, radius)

		util.AssertNil(t, err)
		util.AssertEqual(t, 1, len(c.Geometry()))

		// A few millimeters are far less than 1e-6 degrees.
		bound := c.Bound()
		util.AssertTrue(t, traceBound.Pad(1e-6).Contains(bound.Min))
		util.AssertTrue(t, traceBound.Pad(1e-6).Contains(bound.Max))
	}

	c, err := BuildAroundPoint(orb.Point{-80.19, 25.76}, 1e-3)
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(c.Geometry()))
}

func TestBuild_radiusTooSmallForTraceExtent(t *testing.T) {
	_, err := Build(miamiTrace, 1e-12)
	util.AssertErrorIs(t, ErrInvalidParameter, err)
}

func TestBuild_invalidCoordinate(t *testing.T) {
	_, err := Build(RoadwayTrace{{-80.19, 25.76}, {-80.20, 95}}, 500)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = Build(RoadwayTrace{{-181, 25.76}, {-80.20, 25.80}}, 500)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = Build(RoadwayTrace{{math.NaN(), 25.76}, {-80.20, 25.80}}, 500)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)
}

func TestBuild_southernHemisphere(t *testing.T) {
	trace := RoadwayTrace{{151.20, -33.87}, {151.25, -33.80}}

	c, err := Build(trace, 300)

	util.AssertNil(t, err)
	util.AssertEqual(t, 56, c.Zone())
	util.AssertTrue(t, c.Contains(orb.Point{151.225, -33.835}))
	util.AssertFalse(t, c.Contains(orb.Point{151.25, -33.87}))
}

func TestBuild_generatedPolylinesContainTheirTrace(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		start := orb.Point{random.Float64()*340 - 170, random.Float64()*140 - 70}
		trace := RoadwayTrace{start}
		for j := 0; j < 2+random.Intn(20); j++ {
			last := trace[len(trace)-1]
			trace = append(trace, orb.Point{
				last.Lon() + (random.Float64()-0.5)*0.05,
				last.Lat() + (random.Float64()-0.5)*0.05,
			})
		}
		radius := 10 + random.Float64()*2000

		c, err := Build(trace, radius)

		util.AssertNil(t, err)
		for _, point := range trace {
			util.AssertTrue(t, c.Contains(point))
		}
	}
}

func TestBuildAroundPoint(t *testing.T) {
	center := orb.Point{9.99, 53.55}
	radius := 1000.0

	c, err := BuildAroundPoint(center, radius)

	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(c.Trace()))
	util.AssertTrue(t, c.Contains(center))
	for _, bearing := range []float64{0, 45, 90, 180, 270, 333} {
		util.AssertTrue(t, c.Contains(geo.PointAtBearingAndDistance(center, bearing, 0.9*radius)))
		util.AssertFalse(t, c.Contains(geo.PointAtBearingAndDistance(center, bearing, 1.1*radius)))
	}
}

func TestBuildAroundPoint_invalidInput(t *testing.T) {
	_, err := BuildAroundPoint(orb.Point{9.99, 53.55}, 0)
	util.AssertErrorIs(t, ErrInvalidParameter, err)

	_, err = BuildAroundPoint(orb.Point{9.99, -91}, 10)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)
}

func TestIsWithin_nilCorridor(t *testing.T) {
	util.AssertFalse(t, IsWithin(orb.Point{0, 0}, nil))
}

func TestNewRoadwayTrace(t *testing.T) {
	trace, err := NewRoadwayTrace(orb.Point{1, 2}, orb.Point{1, 3})
	util.AssertNil(t, err)
	util.AssertEqual(t, RoadwayTrace{{1, 2}, {1, 3}}, trace)
	util.AssertEqual(t, orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{1, 3}}, trace.Bound())

	_, err = NewRoadwayTrace(orb.Point{1, 2}, orb.Point{1, 2})
	util.AssertErrorIs(t, ErrDegenerateGeometry, err)
}
