package place

import (
	"fmt"
	"github.com/paulmach/orb"
)

const DefaultPlaceTag = "town"

type FeatureKind int

const (
	NodeFeature FeatureKind = iota
	WayFeature
	RelationFeature
)

func (k FeatureKind) String() string {
	switch k {
	case NodeFeature:
		return "node"
	case WayFeature:
		return "way"
	case RelationFeature:
		return "relation"
	}
	return fmt.Sprintf("FeatureKind(%d)", int(k))
}

// Candidate is a place found in a search envelope which has not yet been tested against a corridor. For nodes the
// position is the node coordinate, for ways and relations it is the computed center of the feature.
type Candidate struct {
	ID       int64
	Kind     FeatureKind
	Position orb.Point
	Tags     map[string]string
}

func (c Candidate) tag(key string) string {
	if c.Tags == nil {
		return ""
	}
	return c.Tags[key]
}

// firstNonEmpty returns the first non-empty of the given values or "" if all are empty.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func (c Candidate) PlaceName() string {
	return firstNonEmpty(c.tag("name"), c.tag("name:en"))
}

func (c Candidate) PlaceNameAscii() string {
	return firstNonEmpty(c.tag("name:ascii"), c.PlaceName())
}

func (c Candidate) PlaceNameEn() string {
	return firstNonEmpty(c.tag("name:en"), c.PlaceName())
}

func (c Candidate) PlaceTag() string {
	return firstNonEmpty(c.tag("place"), DefaultPlaceTag)
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s/%d (%s) at %v", c.Kind, c.ID, c.PlaceName(), c.Position)
}
