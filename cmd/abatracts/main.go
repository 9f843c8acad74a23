// abatracts runs a spatial search for the projection tracts of connectivity
// experiments. With -target (or -seed) it finds the tracts of experiments
// whose projections reach a point; with -from it finds the tracts of
// experiments injected into the given structures.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlas"
	"github.com/carbocation/brainatlas/atlasapi"
	"github.com/carbocation/brainatlas/config"
	"github.com/gocarina/gocsv"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	var configPath, cacheDir, target, seed, from, lines, products string
	var primaryOnly, points bool

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder holding the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.StringVar(&target, "target", "", "Acronym of the target structure. Its location is estimated from the injections into it.")
	flag.StringVar(&seed, "seed", "", "Target point as x,y,z in microns. Takes precedence over -target.")
	flag.StringVar(&from, "from", "", "Comma-delimited acronyms of injection structures. Used instead of -target and -seed.")
	flag.StringVar(&lines, "lines", "", "(Optional) Comma-delimited transgenic lines to restrict the search to. Use 0 for wild type only.")
	flag.StringVar(&products, "products", "", "(Optional) Comma-delimited product ids to restrict the search to.")
	flag.BoolVar(&primaryOnly, "primary-only", false, "(Optional) With -from, only count experiments whose primary injection structure matches.")
	flag.BoolVar(&points, "points", false, "(Optional) Print every point of every tract instead of one summary row per tract.")
	flag.Parse()

	if target == "" && seed == "" && from == "" {
		flag.PrintDefaults()
		log.Fatalln("Please specify --target, --seed or --from")
	}

	q := atlasapi.SpatialQuery{}
	if lines != "" {
		q.TransgenicLines = strings.Split(lines, ",")
	}
	if products != "" {
		ids, err := parseInts(products)
		if err != nil {
			log.Fatalln(err)
		}
		q.ProductIDs = ids
	}
	if primaryOnly {
		q.PrimaryStructureOnly = &primaryOnly
	}

	var seedPoint *atlas.Location
	if seed != "" {
		coords, err := parseInts(seed)
		if err != nil {
			log.Fatalln(err)
		}
		if len(coords) != 3 {
			log.Fatalf("-seed must have 3 coordinates, got %d\n", len(coords))
		}
		seedPoint = &atlas.Location{coords[0], coords[1], coords[2]}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if cacheDir != "" {
		cfg.CacheDir = brainatlas.ExpandHome(cacheDir)
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

	var tracts []atlasapi.Tract
	if from != "" {
		tracts, err = aba.ProjectionTractsFromTarget(ctx, strings.Split(from, ","), q)
	} else {
		tracts, err = aba.ProjectionTractsToTarget(ctx, target, seedPoint, q)
	}
	if err != nil {
		log.Fatalln(err)
	}

	log.Printf("Found %d tracts\n", len(tracts))

	if points {
		printPoints(tracts)
		return
	}

	summaries := atlas.SummarizeTracts(tracts)

	cw := csv.NewWriter(STDOUT)
	cw.Comma = '\t'
	sw := gocsv.NewSafeCSVWriter(cw)
	if err := gocsv.MarshalCSV(&summaries, sw); err != nil {
		log.Fatalln(err)
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		log.Fatalln(err)
	}
}

func printPoints(tracts []atlasapi.Tract) {
	fmt.Fprintf(STDOUT, "experiment_id\tpoint\tx\ty\tz\tdensity\tintensity\n")
	for _, tract := range tracts {
		for i, p := range tract.Path {
			fmt.Fprintf(STDOUT, "%d\t%d\t%g\t%g\t%g\t%g\t%g\n", tract.ID, i, p.Coord[0], p.Coord[1], p.Coord[2], p.Density, p.Intensity)
		}
	}
}

func parseInts(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%q is not a comma-delimited list of integers: %w", value, err)
		}
		out = append(out, v)
	}

	return out, nil
}
