package osm

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"io"
	"os"
	"strings"
	"time"
)

type OsmDataHandler interface {
	Name() string
	Init() error
	HandleNode(node *osm.Node) error
	HandleWay(way *osm.Way) error
	HandleRelation(relation *osm.Relation) error
	Done() error
}

type OsmReader struct {
	firstWayHasBeenProcessed      bool
	firstRelationHasBeenProcessed bool
}

func NewOsmReader() *OsmReader {
	return &OsmReader{}
}

// ReadFile reads a local .osm or .osm.pbf file and passes every object to all handlers.
func (r *OsmReader) ReadFile(ctx context.Context, filename string, handlers ...OsmDataHandler) error {
	if !strings.HasSuffix(filename, ".osm") && !strings.HasSuffix(filename, ".pbf") {
		return errors.Errorf("Input file %s must be an .osm or .pbf file", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to open OSM input file %s", filename)
	}
	defer file.Close()

	var scanner osm.Scanner
	if strings.HasSuffix(filename, ".pbf") {
		scanner = osmpbf.New(ctx, file, 1)
	} else {
		scanner = osmxml.New(ctx, file)
	}

	sigolo.Infof("Start processing OSM data file %s", filename)
	return r.read(scanner, handlers...)
}

// Read parses OSM XML, like the output of Overpass, and passes every object to all handlers.
func (r *OsmReader) Read(ctx context.Context, reader io.Reader, handlers ...OsmDataHandler) error {
	return r.read(osmxml.New(ctx, reader), handlers...)
}

func (r *OsmReader) read(scanner osm.Scanner, handlers ...OsmDataHandler) error {
	r.firstWayHasBeenProcessed = false
	r.firstRelationHasBeenProcessed = false

	readStartTime := time.Now()

	var err error
	for _, handler := range handlers {
		err = handler.Init()
		if err != nil {
			return errors.Wrapf(err, "Initializing OSM data handler '%s' failed", handler.Name())
		}
	}

	sigolo.Debug("Start processing nodes (1/3)")
	for scanner.Scan() {
		switch osmObj := scanner.Object().(type) {
		case *osm.Node:
			for _, handler := range handlers {
				err = handler.HandleNode(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling node %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Way:
			if !r.firstWayHasBeenProcessed {
				sigolo.Debug("Start processing ways (2/3)")
				r.firstWayHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleWay(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling way %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		case *osm.Relation:
			if !r.firstRelationHasBeenProcessed {
				sigolo.Debug("Start processing relations (3/3)")
				r.firstRelationHasBeenProcessed = true
			}

			for _, handler := range handlers {
				err = handler.HandleRelation(osmObj)
				if err != nil {
					return errors.Wrapf(err, "Handling relation %d using handler '%s' failed", osmObj.ID, handler.Name())
				}
			}
		}
	}

	err = scanner.Err()
	if err != nil {
		return errors.Wrap(err, "Unable to read OSM data")
	}

	for _, handler := range handlers {
		err = handler.Done()
		if err != nil {
			return errors.Wrapf(err, "Calling done function on handler '%s' failed", handler.Name())
		}
	}

	err = scanner.Close()
	if err != nil {
		return errors.Wrapf(err, "Unable to close OSM scanner")
	}

	sigolo.Debugf("Done processing OSM data in %s", time.Since(readStartTime))

	return nil
}
