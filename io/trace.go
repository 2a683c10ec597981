package io

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/twpayne/go-polyline"
	"io"
	"os"
	"roadsearch/corridor"
)

// ReadTraceFromPolyline decodes an encoded polyline (precision 5, as used by Google and OSRM) into a trace.
func ReadTraceFromPolyline(encoded string) (corridor.RoadwayTrace, error) {
	coords, remaining, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "Unable to decode polyline")
	}
	if len(remaining) != 0 {
		return nil, errors.Errorf("Unable to decode polyline: %d unexpected trailing bytes", len(remaining))
	}

	trace := make(corridor.RoadwayTrace, len(coords))
	for i, coord := range coords {
		// Polylines store latitude first.
		trace[i] = orb.Point{coord[1], coord[0]}
	}

	sigolo.Debugf("Decoded polyline with %d points", len(trace))
	return trace, nil
}

// EncodeTraceAsPolyline is the inverse of ReadTraceFromPolyline.
func EncodeTraceAsPolyline(trace corridor.RoadwayTrace) string {
	coords := make([][]float64, len(trace))
	for i, point := range trace {
		coords[i] = []float64{point.Lat(), point.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}

func ReadTraceFromGeoJsonFile(filename string) (corridor.RoadwayTrace, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open GeoJSON file %s", filename)
	}
	defer file.Close()

	return ReadTraceFromGeoJson(file)
}

// ReadTraceFromGeoJson reads a trace from a GeoJSON geometry, feature or feature collection. All line strings are
// concatenated in document order, other geometries are ignored.
func ReadTraceFromGeoJson(reader io.Reader) (corridor.RoadwayTrace, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read GeoJSON")
	}

	var object struct {
		Type string `json:"type"`
	}
	err = json.Unmarshal(data, &object)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse GeoJSON")
	}

	var geometries []orb.Geometry
	switch object.Type {
	case "FeatureCollection":
		featureCollection, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to parse GeoJSON feature collection")
		}
		for _, feature := range featureCollection.Features {
			geometries = append(geometries, feature.Geometry)
		}
	case "Feature":
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to parse GeoJSON feature")
		}
		geometries = append(geometries, feature.Geometry)
	default:
		geometry, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to parse GeoJSON geometry")
		}
		geometries = append(geometries, geometry.Geometry())
	}

	var trace corridor.RoadwayTrace
	for _, geometry := range geometries {
		switch g := geometry.(type) {
		case orb.LineString:
			trace = append(trace, g...)
		case orb.MultiLineString:
			for _, lineString := range g {
				trace = append(trace, lineString...)
			}
		default:
			if geometry != nil {
				sigolo.Debugf("Ignore GeoJSON geometry of type %s", geometry.GeoJSONType())
			}
		}
	}

	if len(trace) == 0 {
		return nil, errors.New("GeoJSON does not contain any line string")
	}

	sigolo.Debugf("Read trace with %d points from GeoJSON", len(trace))
	return trace, nil
}
