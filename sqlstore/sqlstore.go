// Package sqlstore keeps connectivity analyses and unionize tables in a SQLite
// database, so results can be queried with ordinary SQL after the fact.
package sqlstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v3"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	soi TEXT NOT NULL,
	direction TEXT NOT NULL,
	metric TEXT NOT NULL,
	volume_threshold REAL NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS summary (
	analysis_id INTEGER NOT NULL REFERENCES analysis(id),
	rank INTEGER NOT NULL,
	structure_id INTEGER NOT NULL,
	acronym TEXT NOT NULL,
	name TEXT NOT NULL,
	left_mean REAL,
	right_mean REAL,
	both_mean REAL,
	n_left INTEGER NOT NULL,
	n_right INTEGER NOT NULL,
	n_both INTEGER NOT NULL,
	PRIMARY KEY (analysis_id, rank)
);
CREATE TABLE IF NOT EXISTS unionize (
	seed TEXT NOT NULL,
	id INTEGER NOT NULL,
	experiment_id INTEGER NOT NULL,
	structure_id INTEGER NOT NULL,
	hemisphere_id INTEGER NOT NULL,
	is_injection INTEGER NOT NULL,
	volume REAL,
	projection_energy REAL,
	projection_density REAL,
	projection_intensity REAL,
	projection_volume REAL,
	normalized_projection_volume REAL,
	sum_pixels REAL,
	PRIMARY KEY (seed, id)
);
`

type Store struct {
	DB *sqlx.DB
}

// Analysis describes one stored run of an efferent or afferent analysis.
type Analysis struct {
	ID              int64                  `db:"id"`
	SOI             string                 `db:"soi"`
	Direction       connectivity.Direction `db:"direction"`
	Metric          brainatlas.Metric      `db:"metric"`
	VolumeThreshold float64                `db:"volume_threshold"`
	CreatedAt       string                 `db:"created_at"`
}

type summaryRow struct {
	AnalysisID  int64      `db:"analysis_id"`
	Rank        int        `db:"rank"`
	StructureID int        `db:"structure_id"`
	Acronym     string     `db:"acronym"`
	Name        string     `db:"name"`
	Left        null.Float `db:"left_mean"`
	Right       null.Float `db:"right_mean"`
	Both        null.Float `db:"both_mean"`
	NLeft       int        `db:"n_left"`
	NRight      int        `db:"n_right"`
	NBoth       int        `db:"n_both"`
}

type unionizeRow struct {
	Seed                       string     `db:"seed"`
	ID                         int64      `db:"id"`
	ExperimentID               int64      `db:"experiment_id"`
	StructureID                int        `db:"structure_id"`
	HemisphereID               int        `db:"hemisphere_id"`
	IsInjection                bool       `db:"is_injection"`
	Volume                     null.Float `db:"volume"`
	ProjectionEnergy           null.Float `db:"projection_energy"`
	ProjectionDensity          null.Float `db:"projection_density"`
	ProjectionIntensity        null.Float `db:"projection_intensity"`
	ProjectionVolume           null.Float `db:"projection_volume"`
	NormalizedProjectionVolume null.Float `db:"normalized_projection_volume"`
	SumPixels                  null.Float `db:"sum_pixels"`
}

// Open connects to (creating if needed) the SQLite database at path and makes
// sure the schema exists.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// SaveAnalysis stores summaries, in their current order, as one analysis and
// returns its id. NaN means are stored as NULL.
func (s *Store) SaveAnalysis(ctx context.Context, a Analysis, summaries []connectivity.Summary) (int64, error) {
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `INSERT INTO analysis (soi, direction, metric, volume_threshold, created_at)
	VALUES (:soi, :direction, :metric, :volume_threshold, :created_at)`, a)
	if err != nil {
		return 0, pfx.Err(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pfx.Err(err)
	}

	for i, summary := range summaries {
		row := summaryRow{
			AnalysisID:  id,
			Rank:        i,
			StructureID: summary.ID,
			Acronym:     summary.Acronym,
			Name:        summary.Name,
			Left:        nullable(summary.Left),
			Right:       nullable(summary.Right),
			Both:        nullable(summary.Both),
			NLeft:       summary.NLeft,
			NRight:      summary.NRight,
			NBoth:       summary.NBoth,
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO summary
		(analysis_id, rank, structure_id, acronym, name, left_mean, right_mean, both_mean, n_left, n_right, n_both)
		VALUES (:analysis_id, :rank, :structure_id, :acronym, :name, :left_mean, :right_mean, :both_mean, :n_left, :n_right, :n_both)`, row); err != nil {
			return 0, pfx.Err(fmt.Errorf("%s: %w", summary.Acronym, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, pfx.Err(err)
	}

	return id, nil
}

// Analyses lists the stored analyses, most recent first.
func (s *Store) Analyses(ctx context.Context) ([]Analysis, error) {
	out := []Analysis{}
	if err := s.DB.SelectContext(ctx, &out, "SELECT * FROM analysis ORDER BY id DESC"); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// LoadAnalysis returns the analysis with the given id and its summaries in
// their stored order.
func (s *Store) LoadAnalysis(ctx context.Context, id int64) (Analysis, []connectivity.Summary, error) {
	var a Analysis
	if err := s.DB.GetContext(ctx, &a, "SELECT * FROM analysis WHERE id = ?", id); err != nil {
		return a, nil, pfx.Err(fmt.Errorf("analysis %d: %w", id, err))
	}

	rows := []summaryRow{}
	if err := s.DB.SelectContext(ctx, &rows, "SELECT * FROM summary WHERE analysis_id = ? ORDER BY rank", id); err != nil {
		return a, nil, pfx.Err(err)
	}

	out := make([]connectivity.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, connectivity.Summary{
			ID:      row.StructureID,
			Acronym: row.Acronym,
			Name:    row.Name,
			Left:    orNaN(row.Left),
			Right:   orNaN(row.Right),
			Both:    orNaN(row.Both),
			NLeft:   row.NLeft,
			NRight:  row.NRight,
			NBoth:   row.NBoth,
		})
	}

	return a, out, nil
}

// ReplaceUnionizes swaps the stored unionize rows of seed for rows.
func (s *Store) ReplaceUnionizes(ctx context.Context, seed string, rows []brainatlas.Unionize) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unionize WHERE seed = ?", seed); err != nil {
		return pfx.Err(err)
	}

	for _, u := range rows {
		row := unionizeRow{
			Seed:                       seed,
			ID:                         u.ID,
			ExperimentID:               u.ExperimentID,
			StructureID:                u.StructureID,
			HemisphereID:               int(u.HemisphereID),
			IsInjection:                u.IsInjection,
			Volume:                     u.Volume,
			ProjectionEnergy:           u.ProjectionEnergy,
			ProjectionDensity:          u.ProjectionDensity,
			ProjectionIntensity:        u.ProjectionIntensity,
			ProjectionVolume:           u.ProjectionVolume,
			NormalizedProjectionVolume: u.NormalizedProjectionVolume,
			SumPixels:                  u.SumPixels,
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO unionize
		(seed, id, experiment_id, structure_id, hemisphere_id, is_injection, volume, projection_energy, projection_density,
		projection_intensity, projection_volume, normalized_projection_volume, sum_pixels)
		VALUES (:seed, :id, :experiment_id, :structure_id, :hemisphere_id, :is_injection, :volume, :projection_energy, :projection_density,
		:projection_intensity, :projection_volume, :normalized_projection_volume, :sum_pixels)`, row); err != nil {
			return pfx.Err(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// Unionizes returns the stored unionize rows of seed ordered by id.
func (s *Store) Unionizes(ctx context.Context, seed string) ([]brainatlas.Unionize, error) {
	rows := []unionizeRow{}
	if err := s.DB.SelectContext(ctx, &rows, "SELECT * FROM unionize WHERE seed = ? ORDER BY id", seed); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]brainatlas.Unionize, 0, len(rows))
	for _, row := range rows {
		out = append(out, brainatlas.Unionize{
			ID:                         row.ID,
			ExperimentID:               row.ExperimentID,
			StructureID:                row.StructureID,
			HemisphereID:               brainatlas.Hemisphere(row.HemisphereID),
			IsInjection:                row.IsInjection,
			Volume:                     row.Volume,
			ProjectionEnergy:           row.ProjectionEnergy,
			ProjectionDensity:          row.ProjectionDensity,
			ProjectionIntensity:        row.ProjectionIntensity,
			ProjectionVolume:           row.ProjectionVolume,
			NormalizedProjectionVolume: row.NormalizedProjectionVolume,
			SumPixels:                  row.SumPixels,
		})
	}

	return out, nil
}

// ReadUnionizes lets a Store stand in for the file cache as the source of an
// analysis.
func (s *Store) ReadUnionizes(ctx context.Context, acronym string) ([]brainatlas.Unionize, error) {
	return s.Unionizes(ctx, acronym)
}

func nullable(v float64) null.Float {
	return null.NewFloat(v, !math.IsNaN(v) && !math.IsInf(v, 0))
}

func orNaN(v null.Float) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}
