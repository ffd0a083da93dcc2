package main

/* pointdrill samples a raster dataset at the coordinates of a point
   vector file and writes the sampled values back as new point
   attributes. Each configured band contributes one attribute; a
   sampling radius greater than zero reduces a window of pixels around
   each point with a selectable statistic (median, mean, min, max or
   majority). Spatial reference reconciliation is delegated to the
   GDAL command line tools through the aligner package. */

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/nci/pointdrill/aligner"
	"github.com/nci/pointdrill/metrics"
	"github.com/nci/pointdrill/raster"
	"github.com/nci/pointdrill/sampler"
	"github.com/nci/pointdrill/utils"
	"github.com/nci/pointdrill/vector"
)

var (
	image      = flag.String("i", "", "Input image to sample (ENVI raster).")
	pointsFile = flag.String("p", "", "Sampling points (GeoJSON vector).")
	output     = flag.String("o", "", "Output file. If not given, the new attributes are appended to the input dataset.")
	overwrite  = flag.Bool("overwrite", false, "Overwrite the output file if it already exists.")
	radius     = flag.Int("r", 0, "Sampling radius. Default is 0 (only the exact point position).")
	mode       = flag.String("m", "median", "Statistic to use from within the sampling window. One of median, mean, min, max, majority.")
	bands      = flag.String("b", "", "List of exclusive bands to use, separated by comma. Counting starts at 1.")
	dismiss    = flag.String("d", "", "Raster value to dismiss. It will be ignored for statistical calculation.")
	names      = flag.String("n", "", "Field names for the target attributes. Must not exceed 10 characters and only contain a-z,A-Z,0-9,_.")
	crs        = flag.String("c", "raster", "Use the spatial reference system from the input image (raster) or the sampling points (points) if reprojection is necessary.")
	pointSRS   = flag.String("point_srs", "", "SRS of the sampling points, e.g. EPSG:4326.")
	rasterSRS  = flag.String("raster_srs", "", "SRS of the input image, e.g. EPSG:32755.")
	confFile   = flag.String("conf", "", "Optional YAML file with option defaults.")
	workers    = flag.Int("workers", runtime.NumCPU(), "Concurrent sampling workers.")
	pgConn     = flag.String("pg", "", "Postgres connection string to read points from instead of -p.")
	pgQuery    = flag.String("pg_query", "", "Query returning x,y point columns, used with -pg.")
	mcURI      = flag.String("memcache", "", "Memcache uri host:port for the result cache.")
	report     = flag.String("report", "", "Render a run summary through this template file.")
	logDir     = flag.String("log_dir", "", "Directory for run metrics logs. Default is stdout.")
	verbose    = flag.Bool("v", false, "Verbose mode for more outputs.")

	exprList exprFlags
)

type exprFlags []string

func (e *exprFlags) String() string {
	return strings.Join(*e, ";")
}

func (e *exprFlags) Set(value string) error {
	*e = append(*e, value)
	return nil
}

var (
	Error *log.Logger
	Info  *log.Logger
)

func init() {
	Error = log.New(os.Stderr, "pointdrill: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(os.Stdout, "pointdrill: ", log.Ldate|log.Ltime)

	flag.Var(&exprList, "e", "Derived attribute expression name=expression over the sampled fields. May be repeated.")
	flag.Parse()
}

// cleanups run before a fatal exit; Fatalf skips deferred calls.
var cleanups []func()

func fail(err error) {
	for _, cleanup := range cleanups {
		cleanup()
	}
	if errors.Is(err, utils.ErrInvalidOption) {
		flag.Usage()
	}
	Error.Fatalf("%v", err)
}

// fileStamp identifies a file's content revision for the result cache.
func fileStamp(path string) string {
	stat, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%v|%d", stat.ModTime(), stat.Size())
}

func main() {
	startTime := time.Now()
	applyConfigDefaults()

	if len(*image) == 0 {
		fail(fmt.Errorf("%w: no input image", utils.ErrInvalidOption))
	}
	usePg := len(*pgConn) > 0
	if !usePg && len(*pointsFile) == 0 {
		fail(fmt.Errorf("%w: no sampling points", utils.ErrInvalidOption))
	}
	if usePg && len(*pgQuery) == 0 {
		fail(fmt.Errorf("%w: -pg requires -pg_query", utils.ErrInvalidOption))
	}
	if usePg && len(*output) == 0 {
		fail(fmt.Errorf("%w: -pg requires -o for the output file", utils.ErrInvalidOption))
	}

	opts, err := utils.NewSamplingOptions(*radius, *mode, *bands, *dismiss, *names, *workers)
	if err != nil {
		fail(err)
	}

	var logger metrics.Logger = metrics.NewStdoutLogger()
	if len(*logDir) > 0 {
		logger = metrics.NewFileLogger(*logDir)
	}
	collector := metrics.NewMetricsCollector(logger)
	collector.Info.Image = *image
	collector.Info.Points = *pointsFile
	collector.Info.Mode = opts.Mode
	collector.Info.Radius = opts.Radius

	ctx := context.Background()

	imagePath := *image
	pointsPath := *pointsFile
	if !usePg {
		Info.Printf("Checking spatial references...")
		al, err := aligner.New(*crs, *pointSRS, *rasterSRS, *verbose)
		if err != nil {
			fail(err)
		}
		defer al.Cleanup()
		cleanups = append(cleanups, al.Cleanup)
		pointsPath, imagePath, err = al.Align(ctx, pointsPath, imagePath)
		if err != nil {
			fail(err)
		}
	}

	ds, err := raster.OpenENVI(imagePath)
	if err != nil {
		fail(fmt.Errorf("%w: %v", utils.ErrIO, err))
	}
	defer ds.Close()

	coll, points, err := loadPoints(usePg, pointsPath)
	if err != nil {
		fail(err)
	}
	collector.Info.NumPoints = len(points)

	descriptions := make([]string, ds.BandCount())
	for b := 1; b <= ds.BandCount(); b++ {
		band, err := ds.Band(b)
		if err != nil {
			fail(fmt.Errorf("%w: %v", utils.ErrIO, err))
		}
		descriptions[b-1] = band.Description()
	}
	if err = opts.Resolve(ds.BandCount(), descriptions); err != nil {
		fail(err)
	}
	collector.Info.NumBands = len(opts.Bands)

	bandExpr, err := utils.ParseBandExpressions([]string(exprList), opts.Names)
	if err != nil {
		fail(err)
	}

	fieldKinds := make([]utils.FieldKind, len(opts.Bands))
	noDataByField := make(map[string]float64)
	for ib, bandNum := range opts.Bands {
		band, err := ds.Band(bandNum)
		if err != nil {
			fail(fmt.Errorf("%w: %v", utils.ErrIO, err))
		}
		fieldKinds[ib], err = utils.FieldKindForMode(band.RasterType(), opts.Mode)
		if err != nil {
			fail(fmt.Errorf("%w: band %d: %v", utils.ErrInvalidOption, bandNum, err))
		}
		if nd, hasND := band.NoData(); hasND {
			noDataByField[opts.Names[ib]] = nd
		}
	}

	cache := utils.NewResultCache(*mcURI)
	cacheKey := ""
	fieldValues := make(map[string][]float64)
	if cache != nil {
		pointsStamp := *pgQuery
		if !usePg {
			pointsStamp = fileStamp(pointsPath)
		}
		cacheKey = cache.Key(imagePath, fileStamp(imagePath), pointsPath, pointsStamp, opts)
		if cached, found := cache.Get(cacheKey, opts.Names, len(points)); found {
			Info.Printf("Result cache hit, skipping sampling")
			collector.Info.CacheHit = true
			fieldValues = cached
		}
	}

	if len(fieldValues) == 0 {
		req := &sampler.SampleRequest{
			ConfigPayLoad: sampler.ConfigPayLoad{
				Mode:    opts.Mode,
				Radius:  opts.Radius,
				Dismiss: opts.Dismiss,
				Workers: opts.Workers,
				Verbose: *verbose,
			},
			Bands:  opts.Bands,
			Points: points,
		}

		set, err := sampler.Sample(ctx, ds, req)
		if err != nil {
			fail(fmt.Errorf("%w: %v", utils.ErrIO, err))
		}
		for ib, name := range opts.Names {
			fieldValues[name] = set.Values[ib]
		}

		if cache != nil {
			if err = cache.Put(cacheKey, fieldValues); err != nil {
				log.Printf("Warning: result cache put failed: %v", err)
			}
		}
	}
	collector.Info.NumSamples = len(opts.Bands) * len(points)

	for ib, name := range opts.Names {
		if err = coll.AttachField(name, fieldKinds[ib], fieldValues[name]); err != nil {
			fail(fmt.Errorf("%w: %v", utils.ErrIO, err))
		}
	}

	if err = attachExpressionFields(coll, bandExpr, opts.Names, fieldValues, noDataByField, len(points)); err != nil {
		fail(err)
	}

	outPath := *output
	forceOverwrite := *overwrite
	if len(outPath) == 0 {
		// No explicit output: append attributes to the input dataset.
		outPath = pointsPath
		forceOverwrite = true
	}
	if err = coll.Write(outPath, forceOverwrite); err != nil {
		fail(err)
	}
	Info.Printf("Wrote %d attributes for %d points to %s", len(opts.Names)+len(bandExpr.ExprNames), len(points), outPath)

	if len(*report) > 0 {
		if err = writeReport(opts, fieldValues, noDataByField, len(points), time.Since(startTime)); err != nil {
			log.Printf("Warning: report failed: %v", err)
		}
	}

	collector.Log()
}

// applyConfigDefaults overlays the YAML defaults file under any flag
// the caller did not set explicitly.
func applyConfigDefaults() {
	if len(*confFile) == 0 {
		return
	}
	cfg, err := utils.LoadConfig(*confFile)
	if err != nil {
		fail(err)
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	if !explicit["r"] && cfg.Radius > 0 {
		*radius = cfg.Radius
	}
	if !explicit["m"] && len(cfg.Mode) > 0 {
		*mode = cfg.Mode
	}
	if !explicit["workers"] && cfg.Workers > 0 {
		*workers = cfg.Workers
	}
	if !explicit["memcache"] && len(cfg.Memcache) > 0 {
		*mcURI = cfg.Memcache
	}
	if !explicit["pg"] && len(cfg.Postgres) > 0 {
		*pgConn = cfg.Postgres
	}
	if !explicit["report"] && len(cfg.Report) > 0 {
		*report = cfg.Report
	}
}

// loadPoints reads the sampling coordinates either from the GeoJSON
// file or from Postgres. The Postgres path synthesises a collection so
// the attribute writer has features to attach to.
func loadPoints(usePg bool, pointsPath string) (*vector.Collection, []sampler.Point, error) {
	if !usePg {
		coll, err := vector.LoadPoints(pointsPath)
		if err != nil {
			return nil, nil, err
		}
		points, err := coll.Points()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", utils.ErrInvalidOption, pointsPath, err)
		}
		return coll, points, nil
	}

	points, err := vector.QueryPoints(*pgConn, *pgQuery)
	if err != nil {
		return nil, nil, err
	}
	coll, err := vector.FromPoints(points)
	if err != nil {
		return nil, nil, err
	}
	return coll, points, nil
}

func attachExpressionFields(coll *vector.Collection, bandExpr *utils.BandExpressions,
	fieldNames []string, fieldValues map[string][]float64, noDataByField map[string]float64, nPoints int) error {

	for ix, exprName := range bandExpr.ExprNames {
		values := make([]*float64, nPoints)
		for ip := 0; ip < nPoints; ip++ {
			pointValues := make(map[string]float64)
			for _, name := range fieldNames {
				pointValues[name] = fieldValues[name][ip]
			}
			value, ok, err := bandExpr.Evaluate(ix, pointValues, noDataByField)
			if err != nil {
				return fmt.Errorf("%w: %v", utils.ErrInvalidOption, err)
			}
			if ok {
				v := value
				values[ip] = &v
			}
		}
		if err := coll.AttachNullableField(exprName, values); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrIO, err)
		}
	}
	return nil
}

func writeReport(opts *utils.SamplingOptions, fieldValues map[string][]float64,
	noDataByField map[string]float64, nPoints int, elapsed time.Duration) error {

	data := &utils.ReportData{
		Image:     *image,
		Points:    *pointsFile,
		Mode:      opts.Mode,
		Radius:    opts.Radius,
		NumPoints: nPoints,
		Duration:  elapsed.String(),
	}
	for ib, name := range opts.Names {
		field := &utils.ReportField{Name: name, Band: opts.Bands[ib], Valid: nPoints}
		if nd, hasND := noDataByField[name]; hasND {
			field.Valid = 0
			for _, v := range fieldValues[name] {
				if v != nd {
					field.Valid++
				}
			}
			field.NoData = nPoints - field.Valid
		}
		data.Fields = append(data.Fields, field)
	}

	return utils.RenderReport(*report, data, os.Stdout)
}
