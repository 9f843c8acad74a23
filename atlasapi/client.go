// Package atlasapi queries the Allen Brain Atlas RESTful Model Access (RMA)
// API. It covers only what the connectivity tools need: the structure
// ontology, mouse connectivity experiments, projection structure unionizes,
// the spatial (tractography) search and the structure tree search.
package atlasapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"golang.org/x/net/context/ctxhttp"
)

const (
	DefaultBaseURL  = "http://api.brain-map.org/api/v2"
	DefaultPageSize = 2000
)

type Client struct {
	BaseURL  string
	HTTP     *http.Client
	PageSize int
}

func New() *Client {
	return &Client{
		BaseURL:  DefaultBaseURL,
		HTTP:     http.DefaultClient,
		PageSize: DefaultPageSize,
	}
}

// QueryError is returned when the atlas answers, but reports failure or sends
// something that is not a list of records.
type QueryError struct {
	URL     string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("Something went wrong with query %s, query error message: %s", e.URL, e.Message)
}

type rmaResponse struct {
	Success   bool            `json:"success"`
	StartRow  int             `json:"start_row"`
	NumRows   int             `json:"num_rows"`
	TotalRows int             `json:"total_rows"`
	Msg       json.RawMessage `json:"msg"`
}

func (c *Client) pageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}

	return c.PageSize
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}

	return c.HTTP
}

// get fetches one RMA-shaped document and decodes its msg array into out.
func (c *Client) get(ctx context.Context, u string, out interface{}) (rmaResponse, error) {
	var rma rmaResponse

	resp, err := ctxhttp.Get(ctx, c.httpClient(), u)
	if err != nil {
		return rma, pfx.Err(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rma, pfx.Err(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rma, &QueryError{URL: u, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))}
	}

	if err := json.Unmarshal(body, &rma); err != nil {
		// Some failures come back as a bare JSON string
		var message string
		if json.Unmarshal(body, &message) == nil {
			return rma, &QueryError{URL: u, Message: message}
		}
		return rma, &QueryError{URL: u, Message: fmt.Sprintf("undecodable response: %v", err)}
	}

	if !rma.Success {
		var message string
		if json.Unmarshal(rma.Msg, &message) != nil {
			message = truncate(string(rma.Msg), 200)
		}
		return rma, &QueryError{URL: u, Message: message}
	}

	if len(rma.Msg) == 0 || rma.Msg[0] != '[' {
		return rma, &QueryError{URL: u, Message: fmt.Sprintf("expected a list of records, got %s", truncate(string(rma.Msg), 200))}
	}

	if err := json.Unmarshal(rma.Msg, out); err != nil {
		return rma, &QueryError{URL: u, Message: fmt.Sprintf("undecodable records: %v", err)}
	}

	return rma, nil
}

func (c *Client) queryURL(criteria string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/data/query.json?criteria=" + url.QueryEscape(criteria)
}

// queryAll pages through an RMA model query. Each page is decoded with
// decodePage, which returns how many records it held.
func (c *Client) queryAll(ctx context.Context, criteria string, decodePage func(ctx context.Context, u string) (rmaResponse, int, error)) error {
	pageSize := c.pageSize()

	for start := 0; ; start += pageSize {
		u := c.queryURL(fmt.Sprintf("%s,rma::options[start_row$eq%d][num_rows$eq%d]", criteria, start, pageSize))

		rma, n, err := decodePage(ctx, u)
		if err != nil {
			return err
		}

		if n < pageSize || (rma.TotalRows > 0 && start+n >= rma.TotalRows) {
			return nil
		}
	}
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}

	return strings.Join(parts, ",")
}

func joinInt64s(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, ",")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
