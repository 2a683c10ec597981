package main

import (
	"bufio"
	"context"
	"fmt"
	"github.com/alecthomas/kong"
	"github.com/hauke96/sigolo/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"os"
	"os/signal"
	"path/filepath"
	"roadsearch/corridor"
	ownIo "roadsearch/io"
	"roadsearch/nominatim"
	"roadsearch/osm"
	"roadsearch/overpass"
	"roadsearch/search"
	"roadsearch/web"
	"strings"
	"time"
)

const VERSION = "v0.1.0"

var cli struct {
	Logging           string        `help:"Logging verbosity." enum:"info,debug,trace" short:"l" default:"info" env:"ROADSEARCH_LOGGING"`
	Version           VersionFlag   `help:"Print version information and quit" name:"version" short:"v"`
	Radius            float64       `help:"Radius of the corridor around the roadway in meters." default:"500" env:"ROADSEARCH_RADIUS"`
	ExpansionFactor   float64       `help:"Factor by which the search envelope is enlarged relative to its extent." default:"0.02" env:"ROADSEARCH_EXPANSION_FACTOR"`
	OverpassEndpoint  string        `help:"URL of the Overpass API interpreter." default:"${overpassEndpoint}" env:"ROADSEARCH_OVERPASS_ENDPOINT"`
	NominatimEndpoint string        `help:"Base URL of the Nominatim API." default:"${nominatimEndpoint}" env:"ROADSEARCH_NOMINATIM_ENDPOINT"`
	UserAgent         string        `help:"User-Agent sent to Overpass and Nominatim." default:"roadsearch/${version}" env:"ROADSEARCH_USER_AGENT"`
	RequestInterval   time.Duration `help:"Minimum time between two Nominatim requests." default:"1s" env:"ROADSEARCH_REQUEST_INTERVAL"`
	NoRegions         bool          `help:"Do not resolve state and country of the found places." env:"ROADSEARCH_NO_REGIONS"`

	Search struct {
		Roadway string `help:"Name or ref of the roadway, e.g. 'I 95'." placeholder:"<roadway>" arg:""`
		City    string `help:"City the roadway is searched around." placeholder:"<city>" arg:""`
		State   string `help:"State of the city." placeholder:"<state>" arg:""`
		Output  string `help:"Output JSON file. Defaults to <roadway>_<city>_<state>.json." short:"o"`
		Geojson string `help:"Additionally write the corridor and places as GeoJSON to this file."`
		Kml     string `help:"Additionally write the corridor and places as KML to this file."`
	} `cmd:"" help:"Finds all cities and towns along a roadway."`
	Batch struct {
		Input       string `help:"File with one 'roadway;city;state' query per line." placeholder:"<input-file>" arg:"" type:"existingfile"`
		Parallelism int    `help:"Number of searches running at the same time." default:"2" short:"p"`
		OutputDir   string `help:"Folder the JSON files are written to." default:"." type:"existingdir"`
	} `cmd:"" help:"Runs all searches of the given file and writes one JSON file per search."`
	Corridor struct {
		Polyline string `help:"Trace as encoded polyline." xor:"trace"`
		Geojson  string `help:"Trace as GeoJSON file." type:"existingfile" xor:"trace"`
		OsmFile  string `help:"Local .osm or .osm.pbf file containing the roadway and places." type:"existingfile" xor:"trace"`
		Roadway  string `help:"Name or ref of the roadway within the OSM file."`
		Places   bool   `help:"Also search cities and towns within the corridor."`
		Output   string `help:"Output GeoJSON file." default:"corridor.geojson" short:"o"`
		Kml      string `help:"Additionally write the corridor as KML to this file."`
	} `cmd:"" help:"Builds the corridor around a given trace and prints its search envelope."`
	Serve struct {
		Port string `help:"Port of the HTTP API." default:"8080" env:"ROADSEARCH_PORT"`
		Cert string `help:"Certificate file. Enables TLS together with --key." type:"existingfile"`
		Key  string `help:"Key file. Enables TLS together with --cert." type:"existingfile"`
	} `cmd:"" help:"Starts the HTTP API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	// A missing .env file is fine, all settings have defaults.
	_ = godotenv.Load()

	ctx := kong.Parse(
		&cli,
		kong.Name("roadsearch"),
		kong.Description("Finds cities and towns along roadways using OpenStreetMap data."),
		kong.Vars{
			"version":           VERSION,
			"overpassEndpoint":  overpass.DefaultEndpoint,
			"nominatimEndpoint": nominatim.DefaultEndpoint,
		},
	)

	if strings.ToLower(cli.Logging) == "debug" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_DEBUG)
	} else if strings.ToLower(cli.Logging) == "trace" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	} else if strings.ToLower(cli.Logging) == "info" {
		sigolo.SetDefaultLogLevel(sigolo.LOG_INFO)
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
	} else {
		sigolo.SetDefaultFormatFunctionAll(sigolo.LogPlain)
		sigolo.Fatalf("Unknown logging level '%s'", cli.Logging)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := search.Config{
		RadiusMeters:    cli.Radius,
		ExpansionFactor: cli.ExpansionFactor,
	}

	switch ctx.Command() {
	case "search <roadway> <city> <state>":
		query := search.Query{Roadway: cli.Search.Roadway, City: cli.Search.City, State: cli.Search.State}
		result, err := newSearcher(config).Search(signalCtx, query)
		sigolo.FatalCheck(err)

		output := cli.Search.Output
		if output == "" {
			output = ownIo.OutputFileName(query)
		}
		err = ownIo.WriteRecordsAsJsonFile(result.Records, output)
		sigolo.FatalCheck(err)
		sigolo.Infof("Wrote %d places to %s", len(result.Records), output)

		err = writeAdditionalOutputs(result, cli.Search.Geojson, cli.Search.Kml)
		sigolo.FatalCheck(err)
	case "batch <input>":
		queries, err := readBatchFile(cli.Batch.Input)
		sigolo.FatalCheck(err)

		outcomes := newSearcher(config).SearchAll(signalCtx, queries, cli.Batch.Parallelism)
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				continue
			}
			output := filepath.Join(cli.Batch.OutputDir, ownIo.OutputFileName(outcome.Query))
			err = ownIo.WriteRecordsAsJsonFile(outcome.Result.Records, output)
			sigolo.FatalCheck(err)
		}
	case "corridor":
		err := runCorridor(signalCtx, config)
		sigolo.FatalCheck(err)
	case "serve":
		if cli.Serve.Cert != "" && cli.Serve.Key != "" {
			web.StartServerTls(cli.Serve.Port, cli.Serve.Cert, cli.Serve.Key, newSearcher(config), config)
		} else {
			web.StartServer(cli.Serve.Port, newSearcher(config), config)
		}
	default:
		sigolo.Errorf("Unknown command '%s'", ctx.Command())
	}
}

func newSearcher(config search.Config) *search.Searcher {
	overpassClient := overpass.NewClient(cli.OverpassEndpoint, cli.UserAgent, overpass.DefaultTimeout)
	nominatimClient := nominatim.NewClient(cli.NominatimEndpoint, cli.UserAgent, cli.RequestInterval)

	var regions search.RegionResolver = nominatimClient
	if cli.NoRegions {
		regions = nil
	}

	return search.NewSearcher(overpassClient, overpassClient, regions, nominatimClient, config)
}

func runCorridor(ctx context.Context, config search.Config) error {
	var trace corridor.RoadwayTrace
	var places search.PlaceSource
	var err error

	switch {
	case cli.Corridor.Polyline != "":
		trace, err = ownIo.ReadTraceFromPolyline(cli.Corridor.Polyline)
	case cli.Corridor.Geojson != "":
		trace, err = ownIo.ReadTraceFromGeoJsonFile(cli.Corridor.Geojson)
	case cli.Corridor.OsmFile != "":
		var localPlaces *osm.LocalPlaceSource
		trace, localPlaces, err = osm.ReadLocalFile(ctx, cli.Corridor.OsmFile, cli.Corridor.Roadway)
		places = localPlaces
	default:
		return errors.New("One of --polyline, --geojson or --osm-file must be given")
	}
	if err != nil {
		return err
	}

	roadway := cli.Corridor.Roadway
	if roadway == "" {
		roadway = "trace"
	}
	query := search.Query{Roadway: roadway}

	if places == nil {
		places = overpass.NewClient(cli.OverpassEndpoint, cli.UserAgent, overpass.DefaultTimeout)
	}

	var result *search.Result
	if cli.Corridor.Places {
		var regions search.RegionResolver
		if !cli.NoRegions {
			regions = nominatim.NewClient(cli.NominatimEndpoint, cli.UserAgent, cli.RequestInterval)
		}
		result, err = search.NewSearcher(nil, places, regions, nil, config).SearchTrace(ctx, query, trace)
		if err != nil {
			return err
		}
	} else {
		c, err := corridor.Build(trace, config.RadiusMeters)
		if err != nil {
			return err
		}
		envelope, err := corridor.ComputeEnvelope(c, config.ExpansionFactor)
		if err != nil {
			return err
		}
		result = &search.Result{Query: query, Corridor: c, Envelope: envelope}
	}

	fmt.Println(result.Envelope.String())
	for _, record := range result.Records {
		fmt.Printf("%s (%s) at %f, %f\n", record.PlaceName, record.PlaceTag, record.Latitude, record.Longitude)
	}

	return writeAdditionalOutputs(result, cli.Corridor.Output, cli.Corridor.Kml)
}

func writeAdditionalOutputs(result *search.Result, geojsonFile string, kmlFile string) error {
	if geojsonFile != "" {
		err := writeFile(geojsonFile, func(file *os.File) error {
			return ownIo.WriteResultAsGeoJson(result, file)
		})
		if err != nil {
			return err
		}
		sigolo.Infof("Wrote GeoJSON to %s", geojsonFile)
	}

	if kmlFile != "" {
		err := writeFile(kmlFile, func(file *os.File) error {
			return ownIo.WriteResultAsKml(result, file)
		})
		if err != nil {
			return err
		}
		sigolo.Infof("Wrote KML to %s", kmlFile)
	}

	return nil
}

func writeFile(filename string, write func(file *os.File) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create output file %s", filename)
	}
	defer file.Close()

	return write(file)
}

// readBatchFile reads one "roadway;city;state" query per line. Empty lines and lines starting with "#" are ignored.
func readBatchFile(filename string) ([]search.Query, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open batch file %s", filename)
	}
	defer file.Close()

	var queries []search.Query
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ";")
		if len(parts) != 3 {
			return nil, errors.Errorf("Line %d of batch file %s must have the format 'roadway;city;state' but was '%s'", lineNumber, filename, line)
		}

		queries = append(queries, search.Query{
			Roadway: strings.TrimSpace(parts[0]),
			City:    strings.TrimSpace(parts[1]),
			State:   strings.TrimSpace(parts[2]),
		})
	}

	err = scanner.Err()
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read batch file %s", filename)
	}

	sigolo.Infof("Read %d queries from %s", len(queries), filename)
	return queries, nil
}
