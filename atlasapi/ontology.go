package atlasapi

import (
	"context"
	"fmt"

	"github.com/carbocation/brainatlas/ontology"
)

type structureRecord struct {
	ontology.Structure
	StructureSets []ontology.StructureSet `json:"structure_sets"`
}

// Structures downloads every structure of the graph, in graph order, along
// with the ids of the structure sets each belongs to.
func (c *Client) Structures(ctx context.Context, graphID int) ([]ontology.Structure, error) {
	criteria := fmt.Sprintf("model::Structure,rma::criteria,[graph_id$eq%d],rma::include,structure_sets,rma::options[order$eq'structures.graph_order']", graphID)

	out := make([]ontology.Structure, 0)
	err := c.queryAll(ctx, criteria, func(ctx context.Context, u string) (rmaResponse, int, error) {
		page := []structureRecord{}
		rma, err := c.get(ctx, u, &page)
		if err != nil {
			return rma, 0, err
		}

		for _, rec := range page {
			s := rec.Structure
			setIDs := make([]int, 0, len(rec.StructureSets))
			for _, set := range rec.StructureSets {
				setIDs = append(setIDs, set.ID)
			}
			s.SetSetIDs(setIDs)
			out = append(out, s)
		}

		return rma, len(page), nil
	})

	return out, err
}

// StructureSets downloads the descriptions of all structure sets.
func (c *Client) StructureSets(ctx context.Context) ([]ontology.StructureSet, error) {
	out := make([]ontology.StructureSet, 0)
	err := c.queryAll(ctx, "model::StructureSet", func(ctx context.Context, u string) (rmaResponse, int, error) {
		page := []ontology.StructureSet{}
		rma, err := c.get(ctx, u, &page)
		out = append(out, page...)
		return rma, len(page), err
	})

	return out, err
}
