package overpass

import (
	"fmt"
	"github.com/paulmach/orb"
	"roadsearch/corridor"
	"strings"
)

const queryTimeoutSeconds = 60

// regexSpecialCharacters are escaped in names used within Overpass regex filters.
const regexSpecialCharacters = `.+*?()|[]{}^$`

// escapeRegex escapes the name so that it matches literally within a quoted Overpass regex. Each regex special
// character gets a backslash, which itself needs to be escaped within the Overpass string literal.
func escapeRegex(name string) string {
	var builder strings.Builder
	for _, r := range name {
		switch {
		case r == '\\':
			builder.WriteString(`\\\\`)
		case strings.ContainsRune(regexSpecialCharacters, r):
			builder.WriteString(`\\`)
			builder.WriteRune(r)
		case r == '"':
			builder.WriteString(`\"`)
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func formatBound(bound orb.Bound) string {
	return fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)", bound.Bottom(), bound.Left(), bound.Top(), bound.Right())
}

// RoadwayQuery creates the query for all road route relations and highways whose ref or name contains the roadway
// name. The geometry of ways and relation members is included in the output.
func RoadwayQuery(name string, bound *orb.Bound) string {
	escapedName := escapeRegex(name)

	boundFilter := ""
	if bound != nil {
		boundFilter = formatBound(*bound)
	}

	return fmt.Sprintf(`[out:xml][timeout:%d];
(
  relation["ref"~"%[2]s",i]["type"="route"]["route"="road"]%[3]s;
  way["ref"~"%[2]s",i]["highway"]%[3]s;
  way["name"~"%[2]s",i]["highway"]%[3]s;
);
out geom;`, queryTimeoutSeconds, escapedName, boundFilter)
}

// PlacesQuery creates the query for all cities and towns within the envelope. Ways and relations get their bounds
// attached, whose center is used as position.
func PlacesQuery(envelope corridor.SearchEnvelope) string {
	return fmt.Sprintf(`[out:xml][timeout:%d];
(
  node["place"~"city|town"](%[2]s);
  way["place"~"city|town"](%[2]s);
  relation["place"~"city|town"](%[2]s);
);
out body bb;`, queryTimeoutSeconds, envelope.String())
}
