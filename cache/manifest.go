package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/pfx"
)

// ManifestEntry records one downloaded unionize table.
type ManifestEntry struct {
	Acronym      string
	Experiments  int
	Rows         int
	DownloadedAt time.Time
}

type manifestRow struct {
	Acronym      string `csv:"acronym"`
	Experiments  int    `csv:"experiments"`
	Rows         int    `csv:"rows"`
	DownloadedAt string `csv:"downloaded_at"`
}

// Manifest maps acronym to its most recent download.
type Manifest map[string]ManifestEntry

// Stale reports whether acronym was never downloaded or was downloaded more
// than maxAge before now. A maxAge of zero never expires.
func (m Manifest) Stale(acronym string, maxAge time.Duration, now time.Time) bool {
	entry, exists := m[acronym]
	if !exists {
		return true
	}

	if maxAge <= 0 {
		return false
	}

	return now.Sub(entry.DownloadedAt) > maxAge
}

// ReadManifest returns an empty manifest if none has been written yet.
// Timestamps are parsed leniently so that hand-edited manifests still load.
func (c *Cache) ReadManifest(ctx context.Context) (Manifest, error) {
	out := make(Manifest)

	path := brainatlas.JoinPath(c.Root, ManifestFile)
	exists, err := c.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return out, nil
	}

	rows := []manifestRow{}
	if err := c.read(ctx, path, &rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		entry := ManifestEntry{
			Acronym:     row.Acronym,
			Experiments: row.Experiments,
			Rows:        row.Rows,
		}

		if row.DownloadedAt != "" {
			entry.DownloadedAt, err = dateparse.ParseAny(row.DownloadedAt)
			if err != nil {
				return nil, pfx.Err(fmt.Errorf("%s: acronym %s: %w", path, row.Acronym, err))
			}
		}

		out[row.Acronym] = entry
	}

	return out, nil
}

func (c *Cache) WriteManifest(ctx context.Context, m Manifest) error {
	rows := make([]manifestRow, 0, len(m))
	for _, entry := range m {
		rows = append(rows, manifestRow{
			Acronym:      entry.Acronym,
			Experiments:  entry.Experiments,
			Rows:         entry.Rows,
			DownloadedAt: entry.DownloadedAt.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Acronym < rows[j].Acronym })

	return c.write(ctx, brainatlas.JoinPath(c.Root, ManifestFile), &rows)
}
