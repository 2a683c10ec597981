package projection

import (
	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
	"math"
	"roadsearch/util"
	"testing"
)

func TestZoneForLongitude(t *testing.T) {
	zone, err := ZoneForLongitude(-80.19)
	util.AssertNil(t, err)
	util.AssertEqual(t, 17, zone)

	zone, err = ZoneForLongitude(0)
	util.AssertNil(t, err)
	util.AssertEqual(t, 31, zone)

	zone, err = ZoneForLongitude(-0.0001)
	util.AssertNil(t, err)
	util.AssertEqual(t, 30, zone)

	zone, err = ZoneForLongitude(-179.9)
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, zone)

	zone, err = ZoneForLongitude(180)
	util.AssertNil(t, err)
	util.AssertEqual(t, 60, zone)

	zone, err = ZoneForLongitude(13.4)
	util.AssertNil(t, err)
	util.AssertEqual(t, 33, zone)
}

func TestZoneForLongitude_invalid(t *testing.T) {
	_, err := ZoneForLongitude(-180)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = ZoneForLongitude(180.5)
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = ZoneForLongitude(math.NaN())
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)
}

func TestCentralMeridian(t *testing.T) {
	util.AssertEqual(t, -81.0, CentralMeridian(17))
	util.AssertEqual(t, 3.0, CentralMeridian(31))
	util.AssertEqual(t, 177.0, CentralMeridian(60))
}

func TestNewProjectorForZone_invalid(t *testing.T) {
	_, err := NewProjectorForZone(0)
	util.AssertNotNil(t, err)

	_, err = NewProjectorForZone(61)
	util.AssertNotNil(t, err)
}

func TestProjector_centralMeridianOnEquator(t *testing.T) {
	projector, err := NewProjectorForZone(17)
	util.AssertNil(t, err)

	planar, err := projector.ToPlanar(orb.Point{-81, 0})
	util.AssertNil(t, err)
	util.AssertPointApprox(t, orb.Point{500000, 0}, planar, 1e-6)
}

func TestProjector_meridianArcLength(t *testing.T) {
	projector, err := NewProjectorForZone(31)
	util.AssertNil(t, err)

	// The meridian distance from the equator to the pole is 10001965.729 m on WGS84.
	planar, err := projector.ToPlanar(orb.Point{3, 90})
	util.AssertNil(t, err)
	util.AssertApprox(t, 500000, planar.X(), 1e-3)
	util.AssertApprox(t, 0.9996*10001965.729, planar.Y(), 1e-2)
}

func TestProjector_roundTrip(t *testing.T) {
	points := []orb.Point{
		{-80.19, 25.76},
		{-80.20, 25.80},
		{-83.99, 45.1},
		{-78.01, -33.3},
		{-81, 0},
		{-80.5, 79.9},
	}

	projector, err := NewProjector(-80.19)
	util.AssertNil(t, err)
	util.AssertEqual(t, 17, projector.Zone())

	for _, point := range points {
		planar, err := projector.ToPlanar(point)
		util.AssertNil(t, err)

		geographic, err := projector.ToGeographic(planar)
		util.AssertNil(t, err)

		util.AssertPointApprox(t, point, geographic, 1e-9)
	}
}

func TestProjector_roundTripOutsideZoneDegradesGracefully(t *testing.T) {
	projector, err := NewProjectorForZone(17)
	util.AssertNil(t, err)

	// 20° away from the central meridian is far outside the zone but still well within the series' range.
	point := orb.Point{-61, 30}
	planar, err := projector.ToPlanar(point)
	util.AssertNil(t, err)

	geographic, err := projector.ToGeographic(planar)
	util.AssertNil(t, err)
	util.AssertPointApprox(t, point, geographic, 1e-6)

	// Opposite side of the globe: no crash, either a value or an error.
	_, _ = projector.ToPlanar(orb.Point{99, 0})
}

func TestProjector_distancesArePreservedLocally(t *testing.T) {
	projector, err := NewProjector(-80.19)
	util.AssertNil(t, err)

	a, err := projector.ToPlanar(orb.Point{-80.19, 25.76})
	util.AssertNil(t, err)
	b, err := projector.ToPlanar(orb.Point{-80.20, 25.80})
	util.AssertNil(t, err)

	// Geodesic distance of the two points is ~4543 m, the zone scale there is ~0.99968.
	planarDistance := math.Hypot(a.X()-b.X(), a.Y()-b.Y())
	util.AssertApprox(t, 4542, planarDistance, 5)
}

func TestProjector_agreesWithIndependentImplementation(t *testing.T) {
	projector, err := NewProjectorForZone(17)
	util.AssertNil(t, err)

	toUtm := wgs84.To(wgs84.UTM(17, true))

	for _, point := range []orb.Point{{-80.19, 25.76}, {-81.5, 30.2}, {-80.9, 10.0}} {
		planar, err := projector.ToPlanar(point)
		util.AssertNil(t, err)

		east, north, _ := toUtm(point.Lon(), point.Lat(), 0)
		util.AssertApprox(t, east, planar.X(), 0.05)
		util.AssertApprox(t, north, planar.Y(), 0.05)
	}
}

func TestProjector_invalidInput(t *testing.T) {
	projector, err := NewProjectorForZone(17)
	util.AssertNil(t, err)

	_, err = projector.ToPlanar(orb.Point{-80, 91})
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = projector.ToPlanar(orb.Point{-200, 10})
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)

	_, err = projector.ToGeographic(orb.Point{math.Inf(1), 0})
	util.AssertErrorIs(t, ErrInvalidCoordinate, err)
}

func TestNormalizeLongitude(t *testing.T) {
	util.AssertApprox(t, 180.0, normalizeLongitude(-180), 1e-12)
	util.AssertApprox(t, 180.0, normalizeLongitude(180), 1e-12)
	util.AssertApprox(t, -170.0, normalizeLongitude(190), 1e-12)
	util.AssertApprox(t, 10.0, normalizeLongitude(370), 1e-12)
}
