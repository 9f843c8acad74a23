package connectivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/ontology"
	"gonum.org/v1/gonum/stat"
)

// Direction of a projection analysis relative to the structure of interest.
type Direction string

const (
	Efferent Direction = "efferent"
	Afferent Direction = "afferent"
)

func ParseDirection(name string) (Direction, error) {
	switch Direction(name) {
	case Efferent, Afferent:
		return Direction(name), nil
	}

	return "", fmt.Errorf("Direction %q is not recognized. Valid directions are %s and %s", name, Efferent, Afferent)
}

// Summary holds the per-hemisphere mean of one metric for one region. A mean
// over no rows is NaN.
type Summary struct {
	ID      int    `csv:"id"`
	Acronym string `csv:"acronym"`
	Name    string `csv:"name"`

	Left  float64 `csv:"left"`
	Right float64 `csv:"right"`
	Both  float64 `csv:"both"`

	NLeft  int `csv:"n_left"`
	NRight int `csv:"n_right"`
	NBoth  int `csv:"n_both"`
}

// Mean returns the mean for hemisphere h.
func (s Summary) Mean(h brainatlas.Hemisphere) float64 {
	switch h {
	case brainatlas.HemisphereLeft:
		return s.Left
	case brainatlas.HemisphereRight:
		return s.Right
	case brainatlas.HemisphereBoth:
		return s.Both
	}

	return math.NaN()
}

// FilterByVolume keeps the rows whose volume is strictly above threshold.
// Rows without a volume are dropped.
func FilterByVolume(rows []brainatlas.Unionize, threshold float64) []brainatlas.Unionize {
	out := make([]brainatlas.Unionize, 0, len(rows))
	for _, row := range rows {
		if row.Volume.Valid && row.Volume.Float64 > threshold {
			out = append(out, row)
		}
	}

	return out
}

// Summarize partitions rows by hemisphere and averages metric within each
// partition, ignoring missing values.
func Summarize(region ontology.Structure, rows []brainatlas.Unionize, metric brainatlas.Metric) Summary {
	values := make(map[brainatlas.Hemisphere][]float64)
	for _, row := range rows {
		values[row.HemisphereID] = append(values[row.HemisphereID], metric.Value(row))
	}

	out := Summary{
		ID:      region.ID,
		Acronym: region.Acronym,
		Name:    region.Name,
	}
	out.Left, out.NLeft = NaNMean(values[brainatlas.HemisphereLeft])
	out.Right, out.NRight = NaNMean(values[brainatlas.HemisphereRight])
	out.Both, out.NBoth = NaNMean(values[brainatlas.HemisphereBoth])

	return out
}

// NaNMean is the arithmetic mean of the non-NaN values and how many there
// were. With none, the mean is NaN.
func NaNMean(values []float64) (float64, int) {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		return math.NaN(), 0
	}

	return stat.Mean(kept, nil), len(kept)
}

// SortByRight orders summaries ascending by the right hemisphere mean, with
// undefined means first. Ties keep their order.
func SortByRight(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].Right, summaries[j].Right
		if math.IsNaN(a) {
			return !math.IsNaN(b)
		}
		if math.IsNaN(b) {
			return false
		}
		return a < b
	})
}
