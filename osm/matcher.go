package osm

import (
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"regexp"
)

// RoadwayMatcher decides whether an OSM way or relation is part of a named roadway. It mirrors the filters of the
// Overpass roadway query so that local OSM files yield the same roadway as the Overpass API.
type RoadwayMatcher struct {
	pattern *regexp.Regexp
}

// NewRoadwayMatcher creates a case-insensitive matcher for the given roadway name. The name is taken literally,
// regex characters in it have no special meaning.
func NewRoadwayMatcher(name string) (*RoadwayMatcher, error) {
	if name == "" {
		return nil, errors.New("Roadway name must not be empty")
	}

	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(name))
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to create pattern for roadway name '%s'", name)
	}

	return &RoadwayMatcher{pattern: pattern}, nil
}

// MatchesWay returns true for highways whose "ref" or "name" contains the roadway name.
func (m *RoadwayMatcher) MatchesWay(tags osm.Tags) bool {
	if !tags.HasTag("highway") {
		return false
	}
	return m.pattern.MatchString(tags.Find("ref")) || m.pattern.MatchString(tags.Find("name"))
}

// MatchesRelation returns true for road routes whose "ref" contains the roadway name.
func (m *RoadwayMatcher) MatchesRelation(tags osm.Tags) bool {
	return tags.Find("type") == "route" &&
		tags.Find("route") == "road" &&
		m.pattern.MatchString(tags.Find("ref"))
}

var placeValuePattern = regexp.MustCompile("city|town")

// IsPlace returns true for features tagged as city or town. As with the Overpass regex filter, values merely
// containing one of these words match as well.
func IsPlace(tags osm.Tags) bool {
	return placeValuePattern.MatchString(tags.Find("place"))
}
