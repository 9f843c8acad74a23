package atlasapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/brainatlas/ontology"
)

// TreeSearch returns the ancestors and/or descendants of structure id, as
// computed by the atlas. The structure itself is included in the result.
func (c *Client) TreeSearch(ctx context.Context, id int, ancestors, descendants bool) ([]ontology.Structure, error) {
	u := fmt.Sprintf("%s/tree_search/Structure/%d.json?ancestors=%t&descendants=%t", strings.TrimSuffix(c.BaseURL, "/"), id, ancestors, descendants)

	out := []ontology.Structure{}
	if _, err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}

	return out, nil
}
