// Package atlas ties the atlas API, the local cache and the connectivity
// analyses together. An Atlas holds the structure ontology and the catalogue
// of mouse connectivity experiments, loading both from the cache when present
// and from the atlas API otherwise.
package atlas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlasapi"
	"github.com/carbocation/brainatlas/cache"
	"github.com/carbocation/brainatlas/config"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/brainatlas/ontology"
	"github.com/carbocation/pfx"
)

var ErrNotFound = errors.New("not found")

type Atlas struct {
	Client   *atlasapi.Client
	Cache    *cache.Cache
	Tree     *ontology.Tree
	Analyzer *connectivity.Analyzer

	// Experiments is the catalogue of all mouse connectivity experiments.
	Experiments []brainatlas.Experiment
}

// Open loads the ontology and the experiment catalogue.
func Open(ctx context.Context, client *atlasapi.Client, c *cache.Cache) (*Atlas, error) {
	a := &Atlas{
		Client: client,
		Cache:  c,
	}

	if err := a.loadOntology(ctx); err != nil {
		return nil, err
	}

	if err := a.loadExperiments(ctx); err != nil {
		return nil, err
	}

	a.Analyzer = connectivity.New(c, a.Tree)

	return a, nil
}

// OpenFromConfig opens an Atlas with the client, cache, metric and volume
// threshold described by cfg. storageClient may be nil unless the cache is on
// Google Storage.
func OpenFromConfig(ctx context.Context, cfg config.JSONConfig, storageClient *storage.Client) (*Atlas, error) {
	metric, err := brainatlas.ParseMetric(cfg.ProjectionMetric)
	if err != nil {
		return nil, err
	}

	client := atlasapi.New()
	client.BaseURL = cfg.APIBaseURL
	client.PageSize = cfg.PageSize

	a, err := Open(ctx, client, cache.New(cfg.CacheDir, storageClient))
	if err != nil {
		return nil, err
	}

	a.Analyzer.Metric = metric
	a.Analyzer.VolumeThreshold = cfg.VolumeThreshold

	return a, nil
}

func (a *Atlas) loadOntology(ctx context.Context) error {
	structures, err := a.Cache.ReadStructures(ctx)
	if err == nil {
		var sets []ontology.StructureSet
		sets, err = a.Cache.ReadStructureSets(ctx)
		if err == nil && len(structures) > 0 {
			a.Tree = ontology.NewTree(structures, sets)
			return nil
		}
	}

	log.Println("Fetching the structure ontology from", a.Client.BaseURL)

	structures, err = a.Client.Structures(ctx, ontology.MouseBrainGraphID)
	if err != nil {
		return pfx.Err(fmt.Errorf("fetching structures: %w", err))
	}
	sets, err := a.Client.StructureSets(ctx)
	if err != nil {
		return pfx.Err(fmt.Errorf("fetching structure sets: %w", err))
	}

	if err := a.Cache.WriteStructures(ctx, structures); err != nil {
		return err
	}
	if err := a.Cache.WriteStructureSets(ctx, sets); err != nil {
		return err
	}

	a.Tree = ontology.NewTree(structures, sets)

	return nil
}

func (a *Atlas) loadExperiments(ctx context.Context) error {
	experiments, err := a.Cache.ReadExperiments(ctx)
	if err == nil && len(experiments) > 0 {
		a.Experiments = experiments
		return nil
	}

	log.Println("Fetching the experiment catalogue from", a.Client.BaseURL)

	experiments, err = a.Client.Experiments(ctx, atlasapi.ExperimentQuery{})
	if err != nil {
		return pfx.Err(fmt.Errorf("fetching experiments: %w", err))
	}

	if err := a.Cache.WriteExperiments(ctx, experiments); err != nil {
		return err
	}

	a.Experiments = experiments

	return nil
}

// Strains lists the distinct mouse strains in the catalogue.
func (a *Atlas) Strains() []string {
	return distinct(a.Experiments, func(e brainatlas.Experiment) string { return e.Strain })
}

// TransgenicLines lists the distinct Cre lines in the catalogue.
func (a *Atlas) TransgenicLines() []string {
	return distinct(a.Experiments, func(e brainatlas.Experiment) string { return e.TransgenicLine })
}

func distinct(experiments []brainatlas.Experiment, field func(brainatlas.Experiment) string) []string {
	seen := make(map[string]struct{})
	for _, e := range experiments {
		if v := field(e); v != "" {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)

	return out
}

// AnalyzeEfferents summarizes projections from soi. An empty metric uses the
// configured one.
func (a *Atlas) AnalyzeEfferents(ctx context.Context, soi string, metric brainatlas.Metric) ([]connectivity.Summary, error) {
	return a.Analyzer.Efferents(ctx, soi, metric)
}

// AnalyzeAfferents summarizes projections to soi.
func (a *Atlas) AnalyzeAfferents(ctx context.Context, soi string, metric brainatlas.Metric) ([]connectivity.Summary, error) {
	return a.Analyzer.Afferents(ctx, soi, metric)
}

// StructureAncestors asks the atlas for the ancestors of acronym. The
// structure itself is part of the answer.
func (a *Atlas) StructureAncestors(ctx context.Context, acronym string) ([]ontology.Structure, error) {
	return a.treeSearch(ctx, acronym, true, false)
}

// StructureDescendants asks the atlas for the descendants of acronym. The
// structure itself is part of the answer.
func (a *Atlas) StructureDescendants(ctx context.Context, acronym string) ([]ontology.Structure, error) {
	return a.treeSearch(ctx, acronym, false, true)
}

func (a *Atlas) treeSearch(ctx context.Context, acronym string, ancestors, descendants bool) ([]ontology.Structure, error) {
	s, ok := a.Tree.ByAcronym(acronym)
	if !ok {
		return nil, fmt.Errorf("structure %s: %w", acronym, ErrNotFound)
	}

	return a.Client.TreeSearch(ctx, s.ID, ancestors, descendants)
}
