package osm

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"roadsearch/corridor"
)

// TraceCollector concatenates the geometries of all roadway ways into one polyline in the order they appear in the
// data.
//
// Without a matcher every way is considered part of the roadway, which is the case for data that already has been
// filtered by area (e.g. by Overpass). Relation members are ignored then, since their geometry is not limited to the
// queried area. With a matcher, ways referenced by a matching relation contribute only if they have not been seen as
// standalone way before, and node positions are cached so that ways without inline coordinates (as in PBF files) can
// be resolved.
type TraceCollector struct {
	matcher   *RoadwayMatcher
	nodeCache map[osm.NodeID]orb.Point
	wayCache  map[osm.WayID]orb.LineString
	seenWays  map[osm.WayID]bool
	points    []orb.Point
	wayCount  int
}

func NewTraceCollector(matcher *RoadwayMatcher) *TraceCollector {
	return &TraceCollector{
		matcher: matcher,
	}
}

func (c *TraceCollector) Name() string {
	return "TraceCollector"
}

func (c *TraceCollector) Init() error {
	c.nodeCache = map[osm.NodeID]orb.Point{}
	c.wayCache = map[osm.WayID]orb.LineString{}
	c.seenWays = map[osm.WayID]bool{}
	c.points = nil
	c.wayCount = 0
	return nil
}

func (c *TraceCollector) HandleNode(node *osm.Node) error {
	if c.matcher != nil {
		c.nodeCache[node.ID] = node.Point()
	}
	return nil
}

func (c *TraceCollector) HandleWay(way *osm.Way) error {
	geometry := c.resolveWayNodes(way.Nodes)

	if c.matcher != nil {
		if way.Tags.HasTag("highway") {
			c.wayCache[way.ID] = geometry
		}
		if !c.matcher.MatchesWay(way.Tags) {
			return nil
		}
	}

	c.addWay(way.ID, geometry)
	return nil
}

func (c *TraceCollector) HandleRelation(relation *osm.Relation) error {
	if c.matcher == nil {
		sigolo.Tracef("Ignore members of relation %d", relation.ID)
		return nil
	}
	if !c.matcher.MatchesRelation(relation.Tags) {
		return nil
	}

	for _, member := range relation.Members {
		if member.Type != osm.TypeWay {
			continue
		}

		wayId := osm.WayID(member.Ref)
		if c.seenWays[wayId] {
			continue
		}

		geometry := c.resolveWayNodes(member.Nodes)
		if len(geometry) == 0 {
			geometry = c.wayCache[wayId]
		}
		if len(geometry) == 0 {
			sigolo.Tracef("Skip member way %d of relation %d without geometry", wayId, relation.ID)
			continue
		}

		c.addWay(wayId, geometry)
	}

	return nil
}

func (c *TraceCollector) Done() error {
	sigolo.Debugf("Collected %d points of %d roadway ways", len(c.points), c.wayCount)
	return nil
}

func (c *TraceCollector) addWay(id osm.WayID, geometry orb.LineString) {
	if c.seenWays[id] || len(geometry) == 0 {
		return
	}
	c.seenWays[id] = true
	c.wayCount++
	c.points = append(c.points, geometry...)
}

// resolveWayNodes returns the positions of the given way nodes. Inline coordinates are preferred, otherwise the cached
// node position is used. Nodes without any known position are skipped.
func (c *TraceCollector) resolveWayNodes(nodes osm.WayNodes) orb.LineString {
	var result orb.LineString
	for _, node := range nodes {
		if node.Lat != 0 || node.Lon != 0 {
			result = append(result, node.Point())
			continue
		}
		if position, ok := c.nodeCache[node.ID]; ok {
			result = append(result, position)
		}
	}
	return result
}

// Trace returns the collected roadway polyline. It might be empty or degenerate, which is checked when building the
// corridor.
func (c *TraceCollector) Trace() corridor.RoadwayTrace {
	return corridor.RoadwayTrace(c.points)
}

func (c *TraceCollector) WayCount() int {
	return c.wayCount
}
