package brainatlas

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// Unionize is one row of a projection structure unionize: the signal measured
// in one structure, in one hemisphere, for one experiment. Metric columns are
// nullable because the atlas omits them for some structures.
type Unionize struct {
	ID                         int64      `csv:"id" json:"id"`
	ExperimentID               int64      `csv:"experiment_id" json:"section_data_set_id"`
	StructureID                int        `csv:"structure_id" json:"structure_id"`
	HemisphereID               Hemisphere `csv:"hemisphere_id" json:"hemisphere_id"`
	IsInjection                bool       `csv:"is_injection" json:"is_injection"`
	Volume                     null.Float `csv:"volume" json:"volume"`
	ProjectionEnergy           null.Float `csv:"projection_energy" json:"projection_energy"`
	ProjectionDensity          null.Float `csv:"projection_density" json:"projection_density"`
	ProjectionIntensity        null.Float `csv:"projection_intensity" json:"projection_intensity"`
	ProjectionVolume           null.Float `csv:"projection_volume" json:"projection_volume"`
	NormalizedProjectionVolume null.Float `csv:"normalized_projection_volume" json:"normalized_projection_volume"`
	SumPixels                  null.Float `csv:"sum_pixels" json:"sum_pixels"`
}

// Metric names one of the projection measurements of a Unionize.
type Metric string

const (
	ProjectionEnergy           Metric = "projection_energy"
	ProjectionDensity          Metric = "projection_density"
	ProjectionIntensity        Metric = "projection_intensity"
	ProjectionVolume           Metric = "projection_volume"
	NormalizedProjectionVolume Metric = "normalized_projection_volume"
)

// DefaultMetric is used when no metric is requested.
const DefaultMetric = ProjectionEnergy

var Metrics = []Metric{
	ProjectionEnergy,
	ProjectionDensity,
	ProjectionIntensity,
	ProjectionVolume,
	NormalizedProjectionVolume,
}

func ParseMetric(name string) (Metric, error) {
	if name == "" {
		return DefaultMetric, nil
	}

	for _, m := range Metrics {
		if string(m) == name {
			return m, nil
		}
	}

	return "", fmt.Errorf("Metric %s is not found. Valid metric names include: %s", name, MetricNames())
}

func MetricNames() string {
	names := make([]string, 0, len(Metrics))
	for _, m := range Metrics {
		names = append(names, string(m))
	}

	return strings.Join(names, ", ")
}

// Value returns the metric for the row, or NaN if the row lacks it.
func (m Metric) Value(u Unionize) float64 {
	var v null.Float

	switch m {
	case ProjectionEnergy:
		v = u.ProjectionEnergy
	case ProjectionDensity:
		v = u.ProjectionDensity
	case ProjectionIntensity:
		v = u.ProjectionIntensity
	case ProjectionVolume:
		v = u.ProjectionVolume
	case NormalizedProjectionVolume:
		v = u.NormalizedProjectionVolume
	}

	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}
