package osm

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"roadsearch/place"
)

// PlaceCollector turns city and town features into place candidates. Nodes are positioned at their coordinate, ways
// and relations at the center of their bounds as returned by Overpass ("out bb"). Features without a position are
// skipped.
type PlaceCollector struct {
	onlyPlaces bool
	candidates []place.Candidate
	skipped    int
}

// NewPlaceCollector creates a collector. With onlyPlaces set, features not tagged as city or town are ignored, which
// is needed for unfiltered data like local OSM files.
func NewPlaceCollector(onlyPlaces bool) *PlaceCollector {
	return &PlaceCollector{
		onlyPlaces: onlyPlaces,
	}
}

func (c *PlaceCollector) Name() string {
	return "PlaceCollector"
}

func (c *PlaceCollector) Init() error {
	c.candidates = nil
	c.skipped = 0
	return nil
}

func (c *PlaceCollector) HandleNode(node *osm.Node) error {
	if !c.accepts(node.Tags) {
		return nil
	}
	c.add(int64(node.ID), place.NodeFeature, node.Point(), node.Tags)
	return nil
}

func (c *PlaceCollector) HandleWay(way *osm.Way) error {
	if !c.accepts(way.Tags) {
		return nil
	}

	var bound *orb.Bound
	if way.Bounds != nil {
		b := boundsToBound(way.Bounds)
		bound = &b
	} else if lineString := way.LineString(); len(lineString) > 0 {
		b := lineString.Bound()
		bound = &b
	}

	if bound == nil {
		c.skip("way", int64(way.ID))
		return nil
	}

	c.add(int64(way.ID), place.WayFeature, bound.Center(), way.Tags)
	return nil
}

func (c *PlaceCollector) HandleRelation(relation *osm.Relation) error {
	if !c.accepts(relation.Tags) {
		return nil
	}

	if relation.Bounds == nil {
		c.skip("relation", int64(relation.ID))
		return nil
	}

	c.add(int64(relation.ID), place.RelationFeature, boundsToBound(relation.Bounds).Center(), relation.Tags)
	return nil
}

func (c *PlaceCollector) Done() error {
	sigolo.Debugf("Collected %d place candidates, skipped %d without position", len(c.candidates), c.skipped)
	return nil
}

func (c *PlaceCollector) Candidates() []place.Candidate {
	return c.candidates
}

func (c *PlaceCollector) accepts(tags osm.Tags) bool {
	return !c.onlyPlaces || IsPlace(tags)
}

func (c *PlaceCollector) add(id int64, kind place.FeatureKind, position orb.Point, tags osm.Tags) {
	candidate := place.Candidate{
		ID:       id,
		Kind:     kind,
		Position: position,
		Tags:     tags.Map(),
	}
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Found candidate %s", candidate.String())
	}
	c.candidates = append(c.candidates, candidate)
}

func (c *PlaceCollector) skip(objectType string, id int64) {
	sigolo.Tracef("Skip %s %d without position", objectType, id)
	c.skipped++
}

func boundsToBound(bounds *osm.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{bounds.MinLon, bounds.MinLat},
		Max: orb.Point{bounds.MaxLon, bounds.MaxLat},
	}
}
