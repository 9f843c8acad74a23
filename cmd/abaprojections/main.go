// abaprojections summarizes the projections from (efferent) or to (afferent)
// a structure of interest across the summary structures, using tables that
// abadownload has cached. The summary is printed as a tab-delimited table.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlas"
	"github.com/carbocation/brainatlas/config"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/brainatlas/plot"
	"github.com/carbocation/brainatlas/sqlstore"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	var configPath, cacheDir, soi, direction, metricName, pngPath, hemisphereName, sqlitePath string
	var threshold float64
	var limit int

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder holding the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.StringVar(&soi, "soi", "", "Acronym of the structure of interest, e.g., PAG.")
	flag.StringVar(&direction, "direction", string(connectivity.Efferent), "efferent (projections from -soi) or afferent (projections to -soi).")
	flag.StringVar(&metricName, "metric", "", fmt.Sprintf("(Optional) Projection metric to average. One of %s. Overrides the config.", brainatlas.MetricNames()))
	flag.Float64Var(&threshold, "threshold", -1, "(Optional) Rows are only counted if their volume is strictly above this. Overrides the config.")
	flag.StringVar(&pngPath, "png", "", "(Optional) Path to a PNG bar chart of the means in -hemisphere.")
	flag.StringVar(&hemisphereName, "hemisphere", brainatlas.HemisphereRight.String(), "(Optional) Hemisphere to chart: left, right or both.")
	flag.IntVar(&limit, "limit", 40, "(Optional) Number of regions to chart. 0 charts all of them.")
	flag.StringVar(&sqlitePath, "sqlite", "", "(Optional) Path to a SQLite database where the summary will also be saved. Created if it does not exist.")
	flag.Parse()

	if soi == "" {
		flag.PrintDefaults()
		log.Fatalln("Please specify --soi")
	}

	dir, err := connectivity.ParseDirection(direction)
	if err != nil {
		flag.PrintDefaults()
		log.Fatalln(err)
	}

	hemisphere, err := brainatlas.ParseHemisphere(hemisphereName)
	if err != nil {
		flag.PrintDefaults()
		log.Fatalln(err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if cacheDir != "" {
		cfg.CacheDir = brainatlas.ExpandHome(cacheDir)
	}
	if metricName != "" {
		cfg.ProjectionMetric = metricName
	}
	if threshold >= 0 {
		cfg.VolumeThreshold = threshold
	}

	ctx := context.Background()

	var sclient *storage.Client
	if brainatlas.IsGoogleStoragePath(cfg.CacheDir) {
		sclient, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer sclient.Close()
	}

	aba, err := atlas.OpenFromConfig(ctx, cfg, sclient)
	if err != nil {
		log.Fatalln(err)
	}

	summaries, err := aba.Analyzer.Analyze(ctx, dir, soi, "")
	if err != nil {
		log.Fatalln(err)
	}

	if err := connectivity.WriteTSV(STDOUT, summaries); err != nil {
		log.Fatalln(err)
	}

	if pngPath != "" {
		title := fmt.Sprintf("%s %ss (%s, %s hemisphere)", soi, dir, aba.Analyzer.Metric, hemisphere)
		if err := plot.HemisphereFile(pngPath, title, summaries, hemisphere, limit); err != nil {
			log.Fatalln(err)
		}
		log.Println("Saved chart to", pngPath)
	}

	if sqlitePath != "" {
		if err := saveToSQLite(ctx, brainatlas.ExpandHome(sqlitePath), soi, dir, aba.Analyzer, summaries); err != nil {
			log.Fatalln(err)
		}
	}
}

func saveToSQLite(ctx context.Context, path, soi string, dir connectivity.Direction, analyzer *connectivity.Analyzer, summaries []connectivity.Summary) error {
	store, err := sqlstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveAnalysis(ctx, sqlstore.Analysis{
		SOI:             soi,
		Direction:       dir,
		Metric:          analyzer.Metric,
		VolumeThreshold: analyzer.VolumeThreshold,
	}, summaries)
	if err != nil {
		return err
	}

	log.Printf("Saved analysis %d to %s\n", id, path)

	return nil
}
