package corridor

import (
	clipper "github.com/ctessum/go.clipper"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"roadsearch/projection"
	"time"
)

const (
	// arcSegments is the number of segments a full circle of the buffer is approximated with.
	arcSegments = 64

	// clipperScale turns meters into the integer units of the clipper library (centimeters). Small radii get a finer
	// scale, so that the radius always spans at least minClipperRadius units.
	clipperScale     = 100.0
	minClipperRadius = 1000.0

	// maxClipperCoordinate keeps scaled coordinates well within the integer range of the clipper library.
	maxClipperCoordinate = 1e15
)

// Corridor is the buffered area around a roadway trace in (lon, lat) degrees. Outer rings are counter-clockwise,
// holes clockwise and all rings are closed.
type Corridor struct {
	geometry orb.MultiPolygon
	bound    orb.Bound
	radius   float64
	trace    RoadwayTrace
	zone     int
}

// Build buffers the trace by radiusMeters. The trace is projected into the transverse mercator zone of its first point,
// buffered with round joins and round end caps and projected back.
func Build(trace RoadwayTrace, radiusMeters float64) (*Corridor, error) {
	err := validateRadius(radiusMeters)
	if err != nil {
		return nil, err
	}

	err = trace.Validate()
	if err != nil {
		return nil, err
	}

	return build(trace, trace.distinctPoints(), radiusMeters)
}

// BuildAroundPoint buffers a single point into a disc of the given radius.
func BuildAroundPoint(center orb.Point, radiusMeters float64) (*Corridor, error) {
	err := validateRadius(radiusMeters)
	if err != nil {
		return nil, err
	}

	err = projection.ValidateLonLat(center)
	if err != nil {
		return nil, err
	}

	return build(RoadwayTrace{center}, []orb.Point{center}, radiusMeters)
}

func build(trace RoadwayTrace, points []orb.Point, radiusMeters float64) (*Corridor, error) {
	buildStartTime := time.Now()

	projector, err := projection.NewProjector(points[0].Lon())
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create projector for corridor")
	}

	planarPoints := make([]orb.Point, len(points))
	for i, point := range points {
		planarPoints[i], err = projector.ToPlanar(point)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to project point %d of roadway trace", i)
		}
	}

	planarPolygons, err := bufferPolyline(planarPoints, radiusMeters)
	if err != nil {
		return nil, err
	}

	geometry := make(orb.MultiPolygon, 0, len(planarPolygons))
	for _, planarPolygon := range planarPolygons {
		polygon := make(orb.Polygon, len(planarPolygon))
		for i, planarRing := range planarPolygon {
			ring := make(orb.Ring, len(planarRing))
			for j, planarPoint := range planarRing {
				ring[j], err = projector.ToGeographic(planarPoint)
				if err != nil {
					return nil, errors.Wrapf(err, "Unable to project corridor vertex %v back into zone %d", planarPoint, projector.Zone())
				}
			}
			polygon[i] = normalizeRing(ring, i == 0)
		}
		geometry = append(geometry, polygon)
	}

	sigolo.Debugf("Built corridor of radius %.1fm with %d polygon(s) around %d trace points in zone %d in %s", radiusMeters, len(geometry), len(trace), projector.Zone(), time.Since(buildStartTime))

	return &Corridor{
		geometry: geometry,
		bound:    geometry.Bound(),
		radius:   radiusMeters,
		trace:    trace,
		zone:     projector.Zone(),
	}, nil
}

// bufferPolyline computes the Minkowski sum of the planar polyline and a disc of the given radius. The resulting
// polygons are still planar, the first ring of each polygon is its outer ring.
func bufferPolyline(points []orb.Point, radiusMeters float64) (result []orb.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrDegenerateGeometry, "Unable to buffer polyline: %v", r)
			result = nil
		}
	}()

	// Shifting everything to the first point keeps the integer coordinates small.
	origin := points[0]

	scale := math.Max(clipperScale, minClipperRadius/radiusMeters)
	extent := radiusMeters
	for _, point := range points {
		extent = math.Max(extent, math.Abs(point.X()-origin.X())+radiusMeters)
		extent = math.Max(extent, math.Abs(point.Y()-origin.Y())+radiusMeters)
	}
	if extent*scale > maxClipperCoordinate {
		return nil, errors.Wrapf(ErrInvalidParameter, "Radius %gm is too small for a roadway trace extent of %.0fm", radiusMeters, extent)
	}

	path := clipper.Path{}
	var previous *clipper.IntPoint
	for _, point := range points {
		intPoint := clipper.NewIntPoint(
			clipper.CInt(math.Round((point.X()-origin.X())*scale)),
			clipper.CInt(math.Round((point.Y()-origin.Y())*scale)),
		)
		if previous != nil && *previous == *intPoint {
			continue
		}
		path = append(path, intPoint)
		previous = intPoint
	}

	delta := radiusMeters * scale

	offset := clipper.NewClipperOffset()
	offset.ArcTolerance = delta * (1 - math.Cos(math.Pi/arcSegments))
	offset.AddPath(path, clipper.JtRound, clipper.EtOpenRound)
	tree := offset.Execute2(delta)
	if tree == nil {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "Unable to buffer polyline of %d points by %fm", len(points), radiusMeters)
	}

	toPlanar := func(contour clipper.Path) orb.Ring {
		ring := make(orb.Ring, len(contour))
		for i, intPoint := range contour {
			ring[i] = orb.Point{
				float64(intPoint.X)/scale + origin.X(),
				float64(intPoint.Y)/scale + origin.Y(),
			}
		}
		return ring
	}

	// Children of the tree root are outer rings, their children are holes and the children of holes are outer rings
	// again (islands within holes).
	var collectOuter func(node *clipper.PolyNode)
	collectOuter = func(node *clipper.PolyNode) {
		if len(node.Contour()) < 3 {
			return
		}
		polygon := orb.Polygon{toPlanar(node.Contour())}
		for _, hole := range node.Childs() {
			if len(hole.Contour()) >= 3 {
				polygon = append(polygon, toPlanar(hole.Contour()))
			}
			for _, island := range hole.Childs() {
				collectOuter(island)
			}
		}
		result = append(result, polygon)
	}
	for _, node := range tree.Childs() {
		collectOuter(node)
	}

	if len(result) == 0 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "Buffer of %d points by %fm is empty", len(points), radiusMeters)
	}

	return result, nil
}

// normalizeRing closes the ring and orients it counter-clockwise for outer rings and clockwise for holes.
func normalizeRing(ring orb.Ring, outer bool) orb.Ring {
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	orientation := ring.Orientation()
	if (outer && orientation == orb.CW) || (!outer && orientation == orb.CCW) {
		ring.Reverse()
	}

	return ring
}

func validateRadius(radiusMeters float64) error {
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "Radius must be a positive finite number of meters but was %f", radiusMeters)
	}
	return nil
}

func (c *Corridor) Geometry() orb.MultiPolygon {
	return c.geometry.Clone()
}

func (c *Corridor) Radius() float64 {
	return c.radius
}

func (c *Corridor) Trace() RoadwayTrace {
	return append(RoadwayTrace{}, c.trace...)
}

// Zone is the transverse mercator zone the corridor was buffered in.
func (c *Corridor) Zone() int {
	return c.zone
}

func (c *Corridor) Bound() orb.Bound {
	return c.bound
}
