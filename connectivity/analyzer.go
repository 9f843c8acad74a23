// Package connectivity summarizes anatomical projections between brain
// regions from cached structure unionize tables.
//
// Efferent analysis starts from the table seeded at the structure of interest
// and reports, for every region in the reference set, how strongly the
// structure of interest projects to it. Afferent analysis walks the table of
// every region in the reference set and reports how strongly each projects to
// the structure of interest. In both cases rows are first filtered by
// injection volume, then split by hemisphere and averaged.
package connectivity

import (
	"context"
	"fmt"
	"log"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/ontology"
	"github.com/carbocation/pfx"
)

// DefaultVolumeThreshold is the volume a row must exceed to be counted.
const DefaultVolumeThreshold = 0.5

// TableSource provides the cached unionize table seeded at an acronym.
type TableSource interface {
	ReadUnionizes(ctx context.Context, acronym string) ([]brainatlas.Unionize, error)
}

type Analyzer struct {
	Source TableSource
	Tree   *ontology.Tree

	// Regions is the reference set that summaries are reported over.
	Regions []ontology.Structure

	VolumeThreshold float64
	Metric          brainatlas.Metric

	// Logger receives a line for every region that is skipped. Defaults to
	// the standard logger.
	Logger *log.Logger
}

// New returns an Analyzer over the summary structures of tree.
func New(source TableSource, tree *ontology.Tree) *Analyzer {
	return &Analyzer{
		Source:          source,
		Tree:            tree,
		Regions:         tree.SummaryStructures(),
		VolumeThreshold: DefaultVolumeThreshold,
		Metric:          brainatlas.DefaultMetric,
	}
}

func (a *Analyzer) metric(metric brainatlas.Metric) (brainatlas.Metric, error) {
	if metric == "" {
		metric = a.Metric
	}

	return brainatlas.ParseMetric(string(metric))
}

func (a *Analyzer) logf(format string, v ...interface{}) {
	if a.Logger != nil {
		a.Logger.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// Analyze dispatches to Efferents or Afferents.
func (a *Analyzer) Analyze(ctx context.Context, direction Direction, soi string, metric brainatlas.Metric) ([]Summary, error) {
	switch direction {
	case Efferent:
		return a.Efferents(ctx, soi, metric)
	case Afferent:
		return a.Afferents(ctx, soi, metric)
	}

	return nil, fmt.Errorf("Direction %q is not recognized", direction)
}

// Efferents summarizes the projections from soi to every reference region.
// An empty metric uses the Analyzer's metric.
func (a *Analyzer) Efferents(ctx context.Context, soi string, metric brainatlas.Metric) ([]Summary, error) {
	metric, err := a.metric(metric)
	if err != nil {
		return nil, err
	}

	rows, err := a.Source.ReadUnionizes(ctx, soi)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("loading experiments seeded at %s: %w", soi, err))
	}

	byTarget := make(map[int][]brainatlas.Unionize)
	for _, row := range FilterByVolume(rows, a.VolumeThreshold) {
		byTarget[row.StructureID] = append(byTarget[row.StructureID], row)
	}

	out := make([]Summary, 0, len(a.Regions))
	for _, target := range a.Regions {
		out = append(out, Summarize(target, byTarget[target.ID], metric))
	}

	SortByRight(out)

	return out, nil
}

// Afferents summarizes the projections from every reference region to soi.
// Regions whose table cannot be loaded are logged and left out.
func (a *Analyzer) Afferents(ctx context.Context, soi string, metric brainatlas.Metric) ([]Summary, error) {
	metric, err := a.metric(metric)
	if err != nil {
		return nil, err
	}

	target, ok := a.Tree.ByAcronym(soi)
	if !ok {
		return nil, fmt.Errorf("Structure acronym %q is not in the ontology", soi)
	}

	out := make([]Summary, 0, len(a.Regions))
	for _, origin := range a.Regions {
		rows, err := a.Source.ReadUnionizes(ctx, origin.Acronym)
		if err != nil {
			a.logf("Skipping %s: %v\n", origin.Acronym, err)
			continue
		}

		toTarget := make([]brainatlas.Unionize, 0)
		for _, row := range FilterByVolume(rows, a.VolumeThreshold) {
			if row.StructureID == target.ID {
				toTarget = append(toTarget, row)
			}
		}

		out = append(out, Summarize(origin, toTarget, metric))
	}

	SortByRight(out)

	return out, nil
}
