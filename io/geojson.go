package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"roadsearch/corridor"
	"roadsearch/place"
	"roadsearch/search"
	"time"
)

// CorridorFeatureCollection creates a collection with the corridor polygon as first feature followed by one point
// feature per record. The envelope, when given, becomes the bbox of the corridor feature.
func CorridorFeatureCollection(c *corridor.Corridor, envelope *corridor.SearchEnvelope, records []place.Record) *geojson.FeatureCollection {
	featureCollection := geojson.NewFeatureCollection()

	corridorFeature := geojson.NewFeature(c.Geometry())
	corridorFeature.Properties["radius"] = c.Radius()
	corridorFeature.Properties["utm_zone"] = c.Zone()
	if envelope != nil {
		corridorFeature.BBox = geojson.NewBBox(envelope.Bound())
		corridorFeature.Properties["bbox"] = []float64{envelope.West, envelope.South, envelope.East, envelope.North}
	}
	featureCollection.Append(corridorFeature)

	for _, record := range records {
		feature := geojson.NewFeature(orb.Point{record.Longitude, record.Latitude})
		feature.Properties["roadway"] = record.Roadway
		feature.Properties["placename"] = record.PlaceName
		feature.Properties["placename_ascii"] = record.PlaceNameAscii
		feature.Properties["placename_en"] = record.PlaceNameEn
		feature.Properties["placetag"] = record.PlaceTag
		feature.Properties["state/province"] = record.State
		feature.Properties["country"] = record.Country
		featureCollection.Append(feature)
	}

	return featureCollection
}

func WriteResultAsGeoJson(result *search.Result, writer io.Writer) error {
	return WriteCorridorAsGeoJson(result.Corridor, &result.Envelope, result.Records, writer)
}

func WriteCorridorAsGeoJson(c *corridor.Corridor, envelope *corridor.SearchEnvelope, records []place.Record, writer io.Writer) error {
	sigolo.Debugf("Write corridor and %d records to GeoJSON", len(records))
	writeStartTime := time.Now()

	geojsonBytes, err := CorridorFeatureCollection(c, envelope, records).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to marshal GeoJSON")
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write GeoJSON")
	}

	sigolo.Debugf("Finished writing in %s", time.Since(writeStartTime))
	return nil
}
