package atlasapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/brainatlas"
)

// Experiment ids are sent in batches to keep query URLs short.
const unionizeBatchSize = 100

// UnionizeQuery selects projection structure unionizes. Only the listed
// structures are returned; descendants are not expanded.
type UnionizeQuery struct {
	ExperimentIDs []int64
	IsInjection   bool
	StructureIDs  []int
}

func (c *Client) StructureUnionizes(ctx context.Context, q UnionizeQuery) ([]brainatlas.Unionize, error) {
	out := make([]brainatlas.Unionize, 0)

	for start := 0; start < len(q.ExperimentIDs); start += unionizeBatchSize {
		end := start + unionizeBatchSize
		if end > len(q.ExperimentIDs) {
			end = len(q.ExperimentIDs)
		}

		criteria := strings.Builder{}
		fmt.Fprintf(&criteria, "model::ProjectionStructureUnionize,rma::criteria,[section_data_set_id$in%s][is_injection$eq%t]", joinInt64s(q.ExperimentIDs[start:end]), q.IsInjection)
		if len(q.StructureIDs) > 0 {
			fmt.Fprintf(&criteria, "[structure_id$in%s]", joinInts(q.StructureIDs))
		}

		err := c.queryAll(ctx, criteria.String(), func(ctx context.Context, u string) (rmaResponse, int, error) {
			page := []brainatlas.Unionize{}
			rma, err := c.get(ctx, u, &page)
			out = append(out, page...)
			return rma, len(page), err
		})
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
