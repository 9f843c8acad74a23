package main

import (
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/cache"
	"github.com/carbocation/pfx"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"gopkg.in/guregu/null.v3"
)

// Row is the BigQuery rendition of a brainatlas.Unionize.
type Row struct {
	Seed                       string               `bigquery:"seed"`
	ID                         int64                `bigquery:"id"`
	ExperimentID               int64                `bigquery:"experiment_id"`
	StructureID                int64                `bigquery:"structure_id"`
	HemisphereID               int64                `bigquery:"hemisphere_id"`
	IsInjection                bool                 `bigquery:"is_injection"`
	Volume                     bigquery.NullFloat64 `bigquery:"volume"`
	ProjectionEnergy           bigquery.NullFloat64 `bigquery:"projection_energy"`
	ProjectionDensity          bigquery.NullFloat64 `bigquery:"projection_density"`
	ProjectionIntensity        bigquery.NullFloat64 `bigquery:"projection_intensity"`
	ProjectionVolume           bigquery.NullFloat64 `bigquery:"projection_volume"`
	NormalizedProjectionVolume bigquery.NullFloat64 `bigquery:"normalized_projection_volume"`
	SumPixels                  bigquery.NullFloat64 `bigquery:"sum_pixels"`
}

func NewRow(seed string, u brainatlas.Unionize) Row {
	return Row{
		Seed:                       seed,
		ID:                         u.ID,
		ExperimentID:               u.ExperimentID,
		StructureID:                int64(u.StructureID),
		HemisphereID:               int64(u.HemisphereID),
		IsInjection:                u.IsInjection,
		Volume:                     nullFloat64(u.Volume),
		ProjectionEnergy:           nullFloat64(u.ProjectionEnergy),
		ProjectionDensity:          nullFloat64(u.ProjectionDensity),
		ProjectionIntensity:        nullFloat64(u.ProjectionIntensity),
		ProjectionVolume:           nullFloat64(u.ProjectionVolume),
		NormalizedProjectionVolume: nullFloat64(u.NormalizedProjectionVolume),
		SumPixels:                  nullFloat64(u.SumPixels),
	}
}

func nullFloat64(v null.Float) bigquery.NullFloat64 {
	return bigquery.NullFloat64{Float64: v.Float64, Valid: v.Valid}
}

// ensureTable creates the destination table, with a schema inferred from Row,
// unless it already exists.
func ensureTable(BQ *WrappedBigQuery) error {
	table := BQ.Client.Dataset(BQ.Dataset).Table(BQ.Table)
	_, err := table.Metadata(BQ.Context)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return pfx.Err(fmt.Errorf("looking up %s.%s: %w", BQ.Dataset, BQ.Table, err))
	}

	schema, err := bigquery.InferSchema(Row{})
	if err != nil {
		return pfx.Err(err)
	}

	if err := table.Create(BQ.Context, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return pfx.Err(fmt.Errorf("creating %s.%s: %w", BQ.Dataset, BQ.Table, err))
	}

	return nil
}

// isNotFound reports whether err is BigQuery saying the table does not exist.
// Permission and network errors are not.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}

	return false
}

// uploadSeed streams the cached table of seed in batches and returns the
// number of rows sent.
func uploadSeed(BQ *WrappedBigQuery, c *cache.Cache, seed string, batchSize int) (int, error) {
	unionizes, err := c.ReadUnionizes(BQ.Context, seed)
	if err != nil {
		return 0, err
	}

	inserter := BQ.Client.Dataset(BQ.Dataset).Table(BQ.Table).Inserter()

	batch := make([]Row, 0, batchSize)
	for i, u := range unionizes {
		batch = append(batch, NewRow(seed, u))
		if len(batch) < batchSize && i < len(unionizes)-1 {
			continue
		}

		if err := inserter.Put(BQ.Context, batch); err != nil {
			return 0, pfx.Err(err)
		}
		batch = batch[:0]
	}

	return len(unionizes), nil
}

type SeedCount struct {
	Seed string `bigquery:"seed"`
	Rows int64  `bigquery:"n_rows"`
}

func countRows(BQ *WrappedBigQuery) ([]SeedCount, error) {
	query := BQ.Client.Query(fmt.Sprintf("SELECT seed, COUNT(*) AS n_rows FROM `%s.%s.%s` GROUP BY seed ORDER BY seed", BQ.Project, BQ.Dataset, BQ.Table))

	itr, err := query.Read(BQ.Context)
	if err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]SeedCount, 0)
	for {
		var r SeedCount
		err := itr.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}
		out = append(out, r)
	}

	return out, nil
}
