// unionize2bigquery uploads the cached unionize tables to a BigQuery table,
// one row per unionize with the seed structure's acronym attached, and then
// reports the number of rows per seed that BigQuery holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/cache"
	"github.com/carbocation/brainatlas/config"
	"github.com/carbocation/brainatlas/ontology"
	"google.golang.org/api/option"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

type WrappedBigQuery struct {
	Context context.Context
	Client  *bigquery.Client
	Project string
	Dataset string
	Table   string
}

func main() {
	var BQ = &WrappedBigQuery{
		Context: context.Background(),
	}
	var configPath, cacheDir, acronyms, credentials string
	var batchSize int
	var countOnly bool

	flag.StringVar(&BQ.Project, "project", "", "Google Cloud project that owns the dataset and is billed for the upload.")
	flag.StringVar(&BQ.Dataset, "dataset", "", "BigQuery dataset name. Must already exist.")
	flag.StringVar(&BQ.Table, "table", "unionize", "(Optional) BigQuery table name. Created if it does not exist.")
	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder holding the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.StringVar(&acronyms, "acronyms", "", "(Optional) Comma-delimited acronyms of seed structures to upload. Defaults to all cached summary structures.")
	flag.StringVar(&credentials, "credentials", "", "(Optional) Path to a service account JSON key. Defaults to application default credentials.")
	flag.IntVar(&batchSize, "batch", 5000, "(Optional) Rows per streaming insert.")
	flag.BoolVar(&countOnly, "count-only", false, "(Optional) Skip the upload and only report row counts.")
	flag.Parse()

	if BQ.Project == "" || BQ.Dataset == "" {
		flag.PrintDefaults()
		log.Fatalln("Please specify --project and --dataset")
	}
	if batchSize < 1 {
		log.Fatalln("--batch must be positive")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if cacheDir != "" {
		cfg.CacheDir = brainatlas.ExpandHome(cacheDir)
	}

	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(brainatlas.ExpandHome(credentials)))
	}

	BQ.Client, err = bigquery.NewClient(BQ.Context, BQ.Project, opts...)
	if err != nil {
		log.Fatalln("Connecting to BigQuery:", err)
	}
	defer BQ.Client.Close()

	if !countOnly {
		var sclient *storage.Client
		if brainatlas.IsGoogleStoragePath(cfg.CacheDir) {
			sclient, err = storage.NewClient(BQ.Context, opts...)
			if err != nil {
				log.Fatalln(err)
			}
			defer sclient.Close()
		}

		c := cache.New(cfg.CacheDir, sclient)

		seeds, err := seedAcronyms(BQ.Context, c, acronyms)
		if err != nil {
			log.Fatalln(err)
		}

		if err := ensureTable(BQ); err != nil {
			log.Fatalln(err)
		}

		uploaded := 0
		for i, seed := range seeds {
			n, err := uploadSeed(BQ, c, seed, batchSize)
			if err != nil {
				log.Fatalln(seed, err)
			}
			log.Println(i+1, len(seeds), "Uploaded", n, "rows for", seed)
			uploaded += n
		}
		log.Println("Uploaded", uploaded, "rows in total")
	}

	counts, err := countRows(BQ)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("seed\trows")
	for _, c := range counts {
		fmt.Printf("%s\t%d\n", c.Seed, c.Rows)
	}
}

// seedAcronyms returns the requested acronyms, or every summary structure with
// a cached table.
func seedAcronyms(ctx context.Context, c *cache.Cache, acronyms string) ([]string, error) {
	if acronyms != "" {
		return strings.Split(acronyms, ","), nil
	}

	structures, err := c.ReadStructures(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading the cached ontology (run abadownload first): %w", err)
	}
	sets, err := c.ReadStructureSets(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	for _, s := range ontology.NewTree(structures, sets).SummaryStructures() {
		exists, err := c.HasUnionizes(ctx, s.Acronym)
		if err != nil {
			return nil, err
		}
		if !exists {
			fmt.Fprintln(os.Stderr, "No cached table for", s.Acronym)
			continue
		}
		out = append(out, s.Acronym)
	}

	return out, nil
}
