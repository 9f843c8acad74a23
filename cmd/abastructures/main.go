// abastructures prints parts of the mouse brain ontology and the experiment
// catalogue: the summary structures, the other named structure sets, the
// structures with precomputed meshes, the mouse strains and Cre lines, or the
// ancestors and descendants of given structures.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlas"
	"github.com/carbocation/brainatlas/config"
	"github.com/carbocation/brainatlas/ontology"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

var listings = []string{"summary", "main", "sets", "meshes", "strains", "lines", "ancestors", "descendants"}

func main() {
	defer STDOUT.Flush()

	var configPath, cacheDir, list, acronyms, sep string
	var remote bool

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder holding the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.StringVar(&list, "list", "summary", fmt.Sprintf("What to print. One of %s.", strings.Join(listings, ", ")))
	flag.StringVar(&acronyms, "acronyms", "", "Comma-delimited acronyms. Required for -list ancestors or descendants.")
	flag.StringVar(&sep, "sep", " - ", "(Optional) Separator between acronym and name.")
	flag.BoolVar(&remote, "remote", false, "(Optional) Ask the atlas for ancestors and descendants instead of walking the cached ontology.")
	flag.Parse()

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

	switch list {
	case "summary":
		err = ontology.WriteList(STDOUT, aba.Tree.SummaryStructures(), sep)
	case "main":
		var mainStructures []ontology.Structure
		if mainStructures, err = aba.Tree.ByAcronyms(ontology.MainStructures); err == nil {
			err = ontology.WriteList(STDOUT, mainStructures, sep)
		}
	case "sets":
		err = printSets(aba.Tree, sep)
	case "meshes":
		var meshes []string
		if meshes, err = aba.Tree.AvailableMeshes(); err == nil {
			printLines(meshes)
		}
	case "strains":
		printLines(aba.Strains())
	case "lines":
		printLines(aba.TransgenicLines())
	case "ancestors", "descendants":
		err = printRelatives(ctx, aba, list == "ancestors", acronyms, sep, remote)
	default:
		flag.PrintDefaults()
		log.Fatalf("-list %q is not recognized\n", list)
	}

	if err != nil {
		log.Fatalln(err)
	}
}

func printSets(tree *ontology.Tree, sep string) error {
	sets, err := tree.OtherSets()
	if err != nil {
		return err
	}

	descriptions := make([]string, 0, len(sets))
	for description := range sets {
		descriptions = append(descriptions, description)
	}
	sort.Strings(descriptions)

	for _, description := range descriptions {
		fmt.Fprintf(STDOUT, "# %s (%d structures)\n", description, len(sets[description]))
		if err := ontology.WriteList(STDOUT, sets[description], sep); err != nil {
			return err
		}
	}

	return nil
}

func printRelatives(ctx context.Context, aba *atlas.Atlas, ancestors bool, acronyms, sep string, remote bool) error {
	if acronyms == "" {
		return fmt.Errorf("Please specify --acronyms")
	}

	for _, acronym := range strings.Split(acronyms, ",") {
		s, ok := aba.Tree.ByAcronym(acronym)
		if !ok {
			return fmt.Errorf("Structure acronym %q is not in the ontology", acronym)
		}

		var relatives []ontology.Structure
		var err error
		switch {
		case remote && ancestors:
			relatives, err = aba.StructureAncestors(ctx, acronym)
		case remote:
			relatives, err = aba.StructureDescendants(ctx, acronym)
		case ancestors:
			relatives = aba.Tree.Ancestors(s.ID)
		default:
			relatives = aba.Tree.Descendants(s.ID)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(STDOUT, "# (%s)%s%s\n", s.Acronym, sep, s.Name)
		for _, r := range relatives {
			fmt.Fprintf(STDOUT, "(%s)%s%s\n", r.Acronym, sep, r.Name)
		}
	}

	return nil
}

func printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(STDOUT, line)
	}
}
