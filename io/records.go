package io

import (
	"encoding/json"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"os"
	"roadsearch/place"
	"roadsearch/search"
	"strings"
	"time"
)

// OutputFileName returns the name of the JSON file the records of the query are written to, e.g.
// "I_95_Miami_Florida.json".
func OutputFileName(query search.Query) string {
	name := query.Roadway + "_" + query.City + "_" + query.State + ".json"
	return strings.ReplaceAll(name, " ", "_")
}

func WriteRecordsAsJsonFile(records []place.Record, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create output file %s", filename)
	}

	defer func() {
		err = file.Close()
		sigolo.FatalCheck(errors.Wrapf(err, "Unable to close file handle for JSON file %s", file.Name()))
	}()

	return WriteRecordsAsJson(records, file)
}

// WriteRecordsAsJson writes the records as indented JSON array. Non-ASCII place names are written as they are.
func WriteRecordsAsJson(records []place.Record, writer io.Writer) error {
	sigolo.Debugf("Write %d records to JSON", len(records))
	writeStartTime := time.Now()

	if records == nil {
		records = []place.Record{}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(records)
	if err != nil {
		return errors.Wrap(err, "Unable to write records as JSON")
	}

	sigolo.Debugf("Finished writing in %s", time.Since(writeStartTime))
	return nil
}
