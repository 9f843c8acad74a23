package atlasapi

import (
	"context"
	"fmt"
	"strings"
)

// SpatialQuery parameterizes the target spatial search, which returns the
// tracts of every experiment whose projections reach SeedPoint.
type SpatialQuery struct {
	// SeedPoint is in microns in the 25um reference space. Nil omits it.
	SeedPoint *[3]int

	// InjectionStructures are ids or acronyms.
	InjectionStructures []string

	// TransgenicLines are ids or names; "0" excludes all transgenic lines.
	TransgenicLines []string

	SectionDataSets      []int64
	PrimaryStructureOnly *bool
	ProductIDs           []int
}

type InjectionStructure struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

type TractPoint struct {
	Coord     [3]float64 `json:"coord"`
	Density   float64    `json:"density"`
	Intensity float64    `json:"intensity"`
}

// Tract is one experiment's streamline from the seed point back to its
// injection site.
type Tract struct {
	ID                   int64                `json:"id"`
	StructureAbbrev      string               `json:"structure-abbrev"`
	InjectionStructures  []InjectionStructure `json:"injection-structures"`
	InjectionCoordinates []float64            `json:"injection-coordinates"`
	InjectionVolume      float64              `json:"injection-volume"`
	TransgenicLine       *string              `json:"transgenic-line"`
	Strain               *string              `json:"strain"`
	ProductID            int                  `json:"product-id"`
	Path                 []TractPoint         `json:"path"`
}

func (c *Client) SpatialSearch(ctx context.Context, q SpatialQuery) ([]Tract, error) {
	params := strings.Builder{}
	params.WriteString("service::mouse_connectivity_target_spatial")
	if q.SeedPoint != nil {
		fmt.Fprintf(&params, "[seed_point$eq%d,%d,%d]", q.SeedPoint[0], q.SeedPoint[1], q.SeedPoint[2])
	}
	if len(q.InjectionStructures) > 0 {
		fmt.Fprintf(&params, "[injection_structures$eq%s]", strings.Join(q.InjectionStructures, ","))
	}
	if len(q.TransgenicLines) > 0 {
		fmt.Fprintf(&params, "[transgenic_lines$eq%s]", strings.Join(q.TransgenicLines, ","))
	}
	if len(q.SectionDataSets) > 0 {
		fmt.Fprintf(&params, "[section_data_sets$eq%s]", joinInt64s(q.SectionDataSets))
	}
	if q.PrimaryStructureOnly != nil {
		fmt.Fprintf(&params, "[primary_structure_only$eq%t]", *q.PrimaryStructureOnly)
	}
	if len(q.ProductIDs) > 0 {
		fmt.Fprintf(&params, "[product_ids$eq%s]", joinInts(q.ProductIDs))
	}

	out := []Tract{}
	if _, err := c.get(ctx, c.queryURL(params.String()), &out); err != nil {
		return nil, err
	}

	return out, nil
}
