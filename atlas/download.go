package atlas

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlasapi"
	"github.com/carbocation/brainatlas/cache"
	"github.com/carbocation/brainatlas/ontology"
)

type DownloadOptions struct {
	// Cre selects injections into Cre driver lines instead of wild type.
	Cre bool

	// Overwrite forces a download even if the table is cached and fresh.
	Overwrite bool

	// MaxAge re-downloads tables older than this. Zero never expires.
	MaxAge time.Duration

	// Acronyms restricts the download to these seed structures. Defaults to
	// every summary structure.
	Acronyms []string
}

type DownloadReport struct {
	Downloaded []string
	Skipped    []string

	// Failed seeds fell back to an empty table, or kept the previous table
	// if there was one.
	Failed []string
}

// LoadAllExperiments downloads, for each seed structure, the unionizes of the
// experiments injected there and saves them as that structure's table. The
// download is slow but the tables are small, so it is worth fetching them all
// once before running analyses.
func (a *Atlas) LoadAllExperiments(ctx context.Context, opts DownloadOptions) (DownloadReport, error) {
	var report DownloadReport

	summary := a.Tree.SummaryStructures()
	targetIDs := make([]int, 0, len(summary))
	for _, s := range summary {
		targetIDs = append(targetIDs, s.ID)
	}

	seeds := summary
	if len(opts.Acronyms) > 0 {
		var err error
		seeds, err = a.Tree.ByAcronyms(opts.Acronyms)
		if err != nil {
			return report, err
		}
	}

	manifest, err := a.Cache.ReadManifest(ctx)
	if err != nil {
		return report, err
	}

	for i, seed := range seeds {
		exists, err := a.Cache.HasUnionizes(ctx, seed.Acronym)
		if err != nil {
			return report, err
		}

		if exists && !opts.Overwrite && !manifest.Stale(seed.Acronym, opts.MaxAge, time.Now()) {
			log.Println(i, len(seeds), "Already downloaded", seed.Acronym)
			report.Skipped = append(report.Skipped, seed.Acronym)
			continue
		}

		log.Printf("Fetching experiments for : %s\n", seed.Acronym)

		experimentCount, rows, fetchErr := a.fetchSeed(ctx, seed, targetIDs, opts.Cre)
		if fetchErr != nil {
			log.Println("Could not fetch", seed.Acronym, "experiments:", fetchErr)
			report.Failed = append(report.Failed, seed.Acronym)

			if exists {
				continue
			}
			// Leave an empty table so that afferent analyses see no data
			// rather than a missing region.
			rows = nil
		}

		if err := a.Cache.WriteUnionizes(ctx, seed.Acronym, rows); err != nil {
			return report, fmt.Errorf("saving %s: %w", seed.Acronym, err)
		}

		if fetchErr != nil {
			continue
		}

		manifest[seed.Acronym] = cache.ManifestEntry{
			Acronym:      seed.Acronym,
			Experiments:  experimentCount,
			Rows:         len(rows),
			DownloadedAt: time.Now(),
		}
		if err := a.Cache.WriteManifest(ctx, manifest); err != nil {
			return report, err
		}
		report.Downloaded = append(report.Downloaded, seed.Acronym)
	}

	return report, nil
}

func (a *Atlas) fetchSeed(ctx context.Context, seed ontology.Structure, targetIDs []int, cre bool) (int, []brainatlas.Unionize, error) {
	experiments, err := a.Client.Experiments(ctx, atlasapi.ExperimentQuery{
		Cre:                   &cre,
		InjectionStructureIDs: []int{seed.ID},
	})
	if err != nil {
		return 0, nil, err
	}

	log.Printf("     found %d experiments\n", len(experiments))

	ids := make([]int64, 0, len(experiments))
	for _, e := range experiments {
		ids = append(ids, e.ID)
	}

	rows, err := a.Client.StructureUnionizes(ctx, atlasapi.UnionizeQuery{
		ExperimentIDs: ids,
		IsInjection:   false,
		StructureIDs:  targetIDs,
	})
	if err != nil {
		return len(experiments), nil, err
	}

	return len(experiments), rows, nil
}
