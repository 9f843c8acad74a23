package atlasapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/brainatlas"
)

// ExperimentQuery selects mouse connectivity experiments. A nil Cre returns
// every experiment; false keeps only wild type injections and true keeps only
// injections into Cre driver lines.
type ExperimentQuery struct {
	Cre                   *bool
	InjectionStructureIDs []int
}

type experimentRecord struct {
	ID                        int64     `json:"id"`
	StructureID               int       `json:"structure-id"`
	StructureAbbrev           string    `json:"structure-abbrev"`
	StructureName             string    `json:"structure-name"`
	PrimaryInjectionStructure int       `json:"primary-injection-structure"`
	InjectionVolume           float64   `json:"injection-volume"`
	InjectionCoordinates      []float64 `json:"injection-coordinates"`
	Strain                    *string   `json:"strain"`
	TransgenicLine            *string   `json:"transgenic-line"`
	Gender                    string    `json:"gender"`
	ProductID                 int       `json:"product-id"`
	SpecimenName              string    `json:"specimen-name"`
}

func (r experimentRecord) experiment() brainatlas.Experiment {
	e := brainatlas.Experiment{
		ID:                        r.ID,
		StructureID:               r.StructureID,
		StructureAbbrev:           r.StructureAbbrev,
		StructureName:             r.StructureName,
		PrimaryInjectionStructure: r.PrimaryInjectionStructure,
		InjectionVolume:           r.InjectionVolume,
		Gender:                    r.Gender,
		ProductID:                 r.ProductID,
		SpecimenName:              r.SpecimenName,
	}

	if len(r.InjectionCoordinates) == 3 {
		e.InjectionX = r.InjectionCoordinates[0]
		e.InjectionY = r.InjectionCoordinates[1]
		e.InjectionZ = r.InjectionCoordinates[2]
	}
	if r.Strain != nil {
		e.Strain = *r.Strain
	}
	if r.TransgenicLine != nil {
		e.TransgenicLine = *r.TransgenicLine
	}

	return e
}

// Experiments lists the experiments whose primary injection structure is one
// of q.InjectionStructureIDs, or all experiments if none are given.
func (c *Client) Experiments(ctx context.Context, q ExperimentQuery) ([]brainatlas.Experiment, error) {
	params := strings.Builder{}
	params.WriteString("service::mouse_connectivity_injection_structure")
	if len(q.InjectionStructureIDs) > 0 {
		fmt.Fprintf(&params, "[injection_structures$eq%s][primary_structure_only$eqtrue]", joinInts(q.InjectionStructureIDs))
	}
	if q.Cre != nil && !*q.Cre {
		// Transgenic line 0 excludes all transgenic lines
		params.WriteString("[transgenic_lines$eq0]")
	}

	records := []experimentRecord{}
	if _, err := c.get(ctx, c.queryURL(params.String()), &records); err != nil {
		return nil, err
	}

	out := make([]brainatlas.Experiment, 0, len(records))
	for _, rec := range records {
		e := rec.experiment()
		if q.Cre != nil && *q.Cre != e.Cre() {
			continue
		}
		out = append(out, e)
	}

	return out, nil
}
