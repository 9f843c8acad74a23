package atlas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/carbocation/brainatlas/atlasapi"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Location is a point in the 25um reference space, in microns.
type Location [3]int

// StructureLocation estimates where a structure is by averaging the injection
// coordinates of the wild type experiments injected into it. It returns
// ErrNotFound if there are none.
func (a *Atlas) StructureLocation(acronym string) (Location, error) {
	s, ok := a.Tree.ByAcronym(acronym)
	if !ok {
		return Location{}, fmt.Errorf("structure %s: %w", acronym, ErrNotFound)
	}

	var x, y, z []float64
	for _, e := range a.Experiments {
		if e.StructureID != s.ID || e.Cre() {
			continue
		}
		x = append(x, e.InjectionX)
		y = append(y, e.InjectionY)
		z = append(z, e.InjectionZ)
	}

	if len(x) == 0 {
		return Location{}, fmt.Errorf("experiments injected into %s: %w", acronym, ErrNotFound)
	}

	var out Location
	for i, coords := range [][]float64{x, y, z} {
		mean, n := connectivity.NaNMean(coords)
		if n == 0 {
			return Location{}, fmt.Errorf("injection coordinates for %s: %w", acronym, ErrNotFound)
		}
		out[i] = int(mean)
	}

	return out, nil
}

// ProjectionTractsToTarget returns the tracts of every experiment whose
// projections reach seed, or, if seed is nil, the estimated location of
// acronym. Other search filters are taken from q.
func (a *Atlas) ProjectionTractsToTarget(ctx context.Context, acronym string, seed *Location, q atlasapi.SpatialQuery) ([]atlasapi.Tract, error) {
	if seed == nil {
		if acronym == "" {
			return nil, errors.New("Please pass either a seed point or an acronym")
		}

		loc, err := a.StructureLocation(acronym)
		if err != nil {
			return nil, fmt.Errorf("Could not find experiments for %s -> could not get coordinates of brain region. Please try again by passing coordinates as the seed point: %w", acronym, err)
		}
		seed = &loc
	} else if acronym != "" {
		log.Println("both seed point and acronym passed, using seed point")
	}

	point := [3]int(*seed)
	q.SeedPoint = &point

	return a.Client.SpatialSearch(ctx, q)
}

// ProjectionTractsFromTarget returns the tracts of experiments injected into
// any of acronyms.
func (a *Atlas) ProjectionTractsFromTarget(ctx context.Context, acronyms []string, q atlasapi.SpatialQuery) ([]atlasapi.Tract, error) {
	if len(acronyms) == 0 {
		return nil, errors.New("Please pass at least one acronym")
	}

	if _, err := a.Tree.ByAcronyms(acronyms); err != nil {
		return nil, err
	}

	q.InjectionStructures = acronyms

	return a.Client.SpatialSearch(ctx, q)
}

type TractSummary struct {
	ExperimentID       int64   `csv:"experiment_id"`
	InjectionStructure string  `csv:"injection_structure"`
	TransgenicLine     string  `csv:"transgenic_line"`
	Points             int     `csv:"points"`
	Length             float64 `csv:"length"`
	MaxDensity         float64 `csv:"max_density"`
	MedianDensity      float64 `csv:"median_density"`
	MeanDensity        float64 `csv:"mean_density"`
}

// SummarizeTracts reduces each tract to its path length (in microns) and the
// distribution of label density along it. Density statistics of a tract
// without points are NaN.
func SummarizeTracts(tracts []atlasapi.Tract) []TractSummary {
	out := make([]TractSummary, 0, len(tracts))
	for _, tract := range tracts {
		summary := TractSummary{
			ExperimentID:       tract.ID,
			InjectionStructure: tract.StructureAbbrev,
			Points:             len(tract.Path),
			MaxDensity:         math.NaN(),
			MedianDensity:      math.NaN(),
			MeanDensity:        math.NaN(),
		}
		if tract.TransgenicLine != nil {
			summary.TransgenicLine = *tract.TransgenicLine
		}
		if summary.InjectionStructure == "" && len(tract.InjectionStructures) > 0 {
			summary.InjectionStructure = tract.InjectionStructures[0].Abbreviation
		}

		density := make(stats.Float64Data, 0, len(tract.Path))
		for i, point := range tract.Path {
			density = append(density, point.Density)
			if i > 0 {
				summary.Length += floats.Distance(tract.Path[i-1].Coord[:], point.Coord[:], 2)
			}
		}

		if max, err := stats.Max(density); err == nil {
			summary.MaxDensity = max
		}
		if median, err := stats.Median(density); err == nil {
			summary.MedianDensity = median
		}
		if mean, err := stats.Mean(density); err == nil {
			summary.MeanDensity = mean
		}

		out = append(out, summary)
	}

	return out
}
