package projection

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
)

const (
	ZoneWidth = 6.0
	MinZone   = 1
	MaxZone   = 60

	scaleFactor   = 0.9996
	falseEasting  = 500000.0
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563

	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	maxInverseIterations = 10
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// series holds the 6th order Krüger coefficients for the WGS84 ellipsoid. They are independent of the zone.
var series = newKrugerSeries(semiMajorAxis, flattening)

type krugerSeries struct {
	eccentricity     float64
	rectifyingRadius float64    // A in Karney (2011), the radius of the rectifying sphere.
	alpha            [6]float64 // Forward coefficients (conformal -> rectifying)
	beta             [6]float64 // Inverse coefficients (rectifying -> conformal)
}

func newKrugerSeries(a float64, f float64) krugerSeries {
	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n

	return krugerSeries{
		eccentricity:     math.Sqrt(f * (2 - f)),
		rectifyingRadius: a / (1 + n) * (1 + n2/4 + n4/64 + n6/256),
		alpha: [6]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
			13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
			61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
			49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
			34729*n5/80640 - 3418889*n6/1995840,
			212378941 * n6 / 319334400,
		},
		beta: [6]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
			n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
			17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
			4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
			4583*n5/161280 - 108847*n6/3991680,
			20648693 * n6 / 638668800,
		},
	}
}

// conformalTau maps tan(latitude) to the tangent of the conformal latitude.
func (s krugerSeries) conformalTau(tau float64) float64 {
	e := s.eccentricity
	sigma := math.Sinh(e * math.Atanh(e*tau/math.Sqrt(1+tau*tau)))
	return tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
}

// ValidateLonLat checks that the point is a finite WGS84 coordinate with longitude in (-180, 180] and latitude in
// [-90, 90].
func ValidateLonLat(point orb.Point) error {
	lon, lat := point.Lon(), point.Lat()
	if !isFinite(lon) || !isFinite(lat) {
		return errors.Wrapf(ErrInvalidCoordinate, "Coordinate (%f, %f) is not finite", lon, lat)
	}
	if lon <= -180 || lon > 180 {
		return errors.Wrapf(ErrInvalidCoordinate, "Longitude %f not within (-180, 180]", lon)
	}
	if lat < -90 || lat > 90 {
		return errors.Wrapf(ErrInvalidCoordinate, "Latitude %f not within [-90, 90]", lat)
	}
	return nil
}

// ZoneForLongitude returns the UTM zone number floor((lon+180)/6)+1. The eastern edge 180° belongs to zone 60.
func ZoneForLongitude(lon float64) (int, error) {
	err := ValidateLonLat(orb.Point{lon, 0})
	if err != nil {
		return 0, err
	}

	zone := int(math.Floor((lon+180)/ZoneWidth)) + 1
	if zone > MaxZone {
		zone = MaxZone
	}
	return zone, nil
}

// CentralMeridian returns the longitude in degrees of the central meridian of the given zone.
func CentralMeridian(zone int) float64 {
	return float64(zone)*ZoneWidth - 183
}

// Projector converts between WGS84 degrees and planar meters of one transverse mercator zone. Northings are measured
// from the equator without false northing, so southern hemisphere points get negative northings. A Projector has no
// mutable state and can be shared between goroutines.
type Projector struct {
	zone            int
	centralMeridian float64 // in radians
}

func NewProjector(referenceLongitude float64) (*Projector, error) {
	zone, err := ZoneForLongitude(referenceLongitude)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to determine projection zone")
	}
	return NewProjectorForZone(zone)
}

func NewProjectorForZone(zone int) (*Projector, error) {
	if zone < MinZone || zone > MaxZone {
		return nil, errors.Errorf("Projection zone %d not within [%d, %d]", zone, MinZone, MaxZone)
	}
	return &Projector{
		zone:            zone,
		centralMeridian: CentralMeridian(zone) * deg2rad,
	}, nil
}

func (p *Projector) Zone() int {
	return p.zone
}

// ToPlanar projects the geographic point (lon, lat) to (easting, northing) in meters.
func (p *Projector) ToPlanar(point orb.Point) (orb.Point, error) {
	err := ValidateLonLat(point)
	if err != nil {
		return orb.Point{}, err
	}

	phi := point.Lat() * deg2rad
	lambda := math.Remainder(point.Lon()*deg2rad-p.centralMeridian, 2*math.Pi)

	cosLambda := math.Cos(lambda)
	sinLambda := math.Sin(lambda)

	tauPrime := series.conformalTau(math.Tan(phi))
	xiPrime := math.Atan2(tauPrime, cosLambda)
	etaPrime := math.Asinh(sinLambda / math.Sqrt(tauPrime*tauPrime+cosLambda*cosLambda))

	xi := xiPrime
	eta := etaPrime
	for j, alpha := range series.alpha {
		k := 2 * float64(j+1)
		xi += alpha * math.Sin(k*xiPrime) * math.Cosh(k*etaPrime)
		eta += alpha * math.Cos(k*xiPrime) * math.Sinh(k*etaPrime)
	}

	x := scaleFactor*series.rectifyingRadius*eta + falseEasting
	y := scaleFactor * series.rectifyingRadius * xi

	if !isFinite(x) || !isFinite(y) {
		return orb.Point{}, errors.Wrapf(ErrInvalidCoordinate, "Coordinate (%f, %f) cannot be projected into zone %d", point.Lon(), point.Lat(), p.zone)
	}

	return orb.Point{x, y}, nil
}

// ToGeographic is the inverse of ToPlanar and turns (easting, northing) into (lon, lat) degrees.
func (p *Projector) ToGeographic(point orb.Point) (orb.Point, error) {
	x, y := point.X(), point.Y()
	if !isFinite(x) || !isFinite(y) {
		return orb.Point{}, errors.Wrapf(ErrInvalidCoordinate, "Planar coordinate (%f, %f) is not finite", x, y)
	}

	eta := (x - falseEasting) / (scaleFactor * series.rectifyingRadius)
	xi := y / (scaleFactor * series.rectifyingRadius)

	xiPrime := xi
	etaPrime := eta
	for j, beta := range series.beta {
		k := 2 * float64(j+1)
		xiPrime -= beta * math.Sin(k*xi) * math.Cosh(k*eta)
		etaPrime -= beta * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	sinhEtaPrime := math.Sinh(etaPrime)
	sinXiPrime := math.Sin(xiPrime)
	cosXiPrime := math.Cos(xiPrime)

	// Newton-Raphson on the conformal latitude, see Karney (2011) eq. 19-21.
	e2 := series.eccentricity * series.eccentricity
	tauPrime := sinXiPrime / math.Sqrt(sinhEtaPrime*sinhEtaPrime+cosXiPrime*cosXiPrime)
	tau := tauPrime
	for i := 0; i < maxInverseIterations; i++ {
		tauI := series.conformalTau(tau)
		delta := (tauPrime - tauI) / math.Sqrt(1+tauI*tauI) *
			(1 + (1-e2)*tau*tau) / ((1 - e2) * math.Sqrt(1+tau*tau))
		tau += delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}

	lat := math.Atan(tau) * rad2deg
	lon := normalizeLongitude((p.centralMeridian + math.Atan2(sinhEtaPrime, cosXiPrime)) * rad2deg)

	if !isFinite(lon) || !isFinite(lat) {
		return orb.Point{}, errors.Wrapf(ErrInvalidCoordinate, "Planar coordinate (%f, %f) has no geographic equivalent in zone %d", x, y, p.zone)
	}

	return orb.Point{lon, lat}, nil
}

// normalizeLongitude maps any longitude into (-180, 180].
func normalizeLongitude(lon float64) float64 {
	lon = math.Remainder(lon, 360)
	if lon <= -180 {
		lon += 360
	}
	return lon
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
