// abadownload fetches, for every summary structure (or the structures named
// with -acronyms), the projection unionizes of the experiments injected there
// and saves them to the cache. Run it once before abaprojections.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlas"
	"github.com/carbocation/brainatlas/config"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

func main() {
	var configPath, cacheDir, acronyms string
	var cre, overwrite bool
	var maxAge time.Duration

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder for the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.StringVar(&acronyms, "acronyms", "", "(Optional) Comma-delimited acronyms of seed structures to download. Defaults to all summary structures.")
	flag.BoolVar(&cre, "cre", false, "(Optional) Download injections into Cre driver lines instead of wild type mice.")
	flag.BoolVar(&overwrite, "overwrite", false, "(Optional) Download again even if a table is already cached.")
	flag.DurationVar(&maxAge, "max-age", 0, "(Optional) Download again any table older than this, e.g. 720h. 0 never expires.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if cacheDir != "" {
		cfg.CacheDir = brainatlas.ExpandHome(cacheDir)
	}
	if cre {
		cfg.Cre = true
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

	opts := atlas.DownloadOptions{
		Cre:       cfg.Cre,
		Overwrite: overwrite,
		MaxAge:    maxAge,
	}
	if acronyms != "" {
		opts.Acronyms = strings.Split(acronyms, ",")
	}

	started := time.Now()
	report, err := aba.LoadAllExperiments(ctx, opts)
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Downloaded %d, skipped %d and failed %d seed structures in %v\n", len(report.Downloaded), len(report.Skipped), len(report.Failed), time.Since(started))
	if len(report.Failed) > 0 {
		log.Println("Failed:", strings.Join(report.Failed, ","))
	}
}
