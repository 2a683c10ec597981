package io

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/twpayne/go-kml"
	"io"
	"roadsearch/search"
)

func WriteResultAsKml(result *search.Result, writer io.Writer) error {
	sigolo.Debugf("Write corridor and %d records to KML", len(result.Records))

	document := kml.Document(
		kml.Name(fmt.Sprintf("Places along %s", result.Query.Roadway)),
	)

	for _, polygon := range result.Corridor.Geometry() {
		document.Add(kml.Placemark(
			kml.Name(fmt.Sprintf("Corridor (%.0f m)", result.Corridor.Radius())),
			polygonToKml(polygon),
		))
	}

	for _, record := range result.Records {
		document.Add(kml.Placemark(
			kml.Name(record.PlaceName),
			kml.Description(fmt.Sprintf("%s, %s, %s (%s)", record.PlaceNameEn, record.State, record.Country, record.PlaceTag)),
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: record.Longitude, Lat: record.Latitude}),
			),
		))
	}

	err := kml.KML(document).WriteIndent(writer, "", "  ")
	if err != nil {
		return errors.Wrap(err, "Unable to write KML")
	}

	return nil
}

func polygonToKml(polygon orb.Polygon) kml.Element {
	var boundaries []kml.Element
	for i, ring := range polygon {
		linearRing := kml.LinearRing(kml.Coordinates(ringToCoordinates(ring)...))
		if i == 0 {
			boundaries = append(boundaries, kml.OuterBoundaryIs(linearRing))
		} else {
			boundaries = append(boundaries, kml.InnerBoundaryIs(linearRing))
		}
	}
	return kml.Polygon(boundaries...)
}

func ringToCoordinates(ring orb.Ring) []kml.Coordinate {
	coordinates := make([]kml.Coordinate, len(ring))
	for i, point := range ring {
		coordinates[i] = kml.Coordinate{Lon: point.Lon(), Lat: point.Lat()}
	}
	return coordinates
}
