package cache

import (
	"compress/gzip"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carbocation/brainatlas"
	"gopkg.in/guregu/null.v3"
)

func TestUnionizeTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir(), nil)

	rows := []brainatlas.Unionize{
		{ID: 1, ExperimentID: 100, StructureID: 795, HemisphereID: brainatlas.HemisphereRight, Volume: null.FloatFrom(1.25), ProjectionEnergy: null.FloatFrom(0.5)},
		{ID: 2, ExperimentID: 100, StructureID: 795, HemisphereID: brainatlas.HemisphereLeft, Volume: null.FloatFrom(0.75)},
	}

	if exists, err := c.HasUnionizes(ctx, "PAG"); err != nil || exists {
		t.Fatalf("Expected no PAG table yet, got %v, %v", exists, err)
	}

	if err := c.WriteUnionizes(ctx, "PAG", rows); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(c.Root, "PAG.csv")); err != nil {
		t.Fatalf("Expected the table to be named by its acronym: %v", err)
	}

	got, err := c.ReadUnionizes(ctx, "PAG")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0].HemisphereID != brainatlas.HemisphereRight || got[0].ProjectionEnergy.Float64 != 0.5 || !got[0].ProjectionEnergy.Valid {
		t.Errorf("Unexpected first row %+v", got[0])
	}
	if got[1].ProjectionEnergy.Valid {
		t.Errorf("Expected a missing projection energy, got %+v", got[1].ProjectionEnergy)
	}
	if v := brainatlas.ProjectionEnergy.Value(got[1]); !math.IsNaN(v) {
		t.Errorf("Expected NaN for a missing metric, got %v", v)
	}
}

func TestEmptyUnionizeTable(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir(), nil)

	if err := c.WriteUnionizes(ctx, "GRN", nil); err != nil {
		t.Fatal(err)
	}

	got, err := c.ReadUnionizes(ctx, "GRN")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no rows, got %d", len(got))
	}
}

func TestReadCompressedTabDelimitedTable(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir(), nil)

	f, err := os.Create(c.TablePath("ZI"))
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte("experiment_id\tstructure_id\themisphere_id\tvolume\tprojection_energy\n" +
		"7\t797\t3\t2.5\t0.125\n" +
		"8\t797\t1\t0.25\t\n"))
	gz.Close()
	f.Close()

	got, err := c.ReadUnionizes(ctx, "ZI")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0].ExperimentID != 7 || got[0].HemisphereID != brainatlas.HemisphereBoth || got[0].Volume.Float64 != 2.5 {
		t.Errorf("Unexpected first row %+v", got[0])
	}
}

func TestMissingTable(t *testing.T) {
	if _, err := New(t.TempDir(), nil).ReadUnionizes(context.Background(), "SCs"); err == nil {
		t.Error("Expected an error reading a table that was never written")
	}
}

func TestTablePathSanitizesAcronym(t *testing.T) {
	c := New("gs://bucket/prefix/", nil)
	if p := c.TablePath("A/B"); p != "gs://bucket/prefix/A_B.csv" {
		t.Errorf("Unexpected path %s", p)
	}
}

func TestManifest(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir(), nil)

	m, err := c.ReadManifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 0 {
		t.Fatalf("Expected an empty manifest, got %v", m)
	}

	downloaded := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	m["PAG"] = ManifestEntry{Acronym: "PAG", Experiments: 4, Rows: 2400, DownloadedAt: downloaded}
	if err := c.WriteManifest(ctx, m); err != nil {
		t.Fatal(err)
	}

	m, err = c.ReadManifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !m["PAG"].DownloadedAt.Equal(downloaded) || m["PAG"].Rows != 2400 {
		t.Errorf("Unexpected manifest entry %+v", m["PAG"])
	}

	now := downloaded.Add(48 * time.Hour)
	if m.Stale("PAG", 0, now) {
		t.Error("A zero max age should never expire")
	}
	if !m.Stale("PAG", 24*time.Hour, now) {
		t.Error("Expected PAG to be stale after 48 hours")
	}
	if !m.Stale("SCm", 0, now) {
		t.Error("Expected an acronym that was never downloaded to be stale")
	}
}

func TestReadManifestAcceptsLooseDates(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir(), nil)

	if err := os.WriteFile(filepath.Join(c.Root, ManifestFile), []byte("acronym,experiments,rows,downloaded_at\nPAG,4,2400,2026-10-01 12:00:00\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := c.ReadManifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m["PAG"].DownloadedAt.Year() != 2026 || m["PAG"].DownloadedAt.Day() != 1 {
		t.Errorf("Unexpected timestamp %v", m["PAG"].DownloadedAt)
	}
}
