package sqlstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/brainatlas/ontology"
	"gopkg.in/guregu/null.v3"
)

func openTestStore(t *testing.T) *Store {
	s, err := Open(filepath.Join(t.TempDir(), "brainatlas.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSaveAndLoadAnalysis(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	summaries := []connectivity.Summary{
		{ID: 795, Acronym: "PAG", Name: "Periaqueductal gray", Left: math.NaN(), Right: math.NaN(), Both: 0.2, NBoth: 1},
		{ID: 797, Acronym: "ZI", Name: "Zona incerta", Left: 0.1, Right: 1.5, Both: 0.9, NLeft: 2, NRight: 2, NBoth: 2},
	}

	id, err := s.SaveAnalysis(ctx, Analysis{
		SOI:             "SCm",
		Direction:       connectivity.Efferent,
		Metric:          brainatlas.ProjectionEnergy,
		VolumeThreshold: 0.5,
	}, summaries)
	if err != nil {
		t.Fatal(err)
	}

	a, loaded, err := s.LoadAnalysis(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if a.SOI != "SCm" || a.Direction != connectivity.Efferent || a.Metric != brainatlas.ProjectionEnergy || a.CreatedAt == "" {
		t.Errorf("Unexpected analysis %+v", a)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(loaded))
	}
	if loaded[0].Acronym != "PAG" || !math.IsNaN(loaded[0].Right) || loaded[0].Both != 0.2 {
		t.Errorf("Unexpected first summary %+v", loaded[0])
	}
	if loaded[1].Right != 1.5 || loaded[1].NRight != 2 {
		t.Errorf("Unexpected second summary %+v", loaded[1])
	}

	analyses, err := s.Analyses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(analyses) != 1 || analyses[0].ID != id {
		t.Errorf("Unexpected analyses %+v", analyses)
	}

	if _, _, err := s.LoadAnalysis(ctx, id+1); err == nil {
		t.Error("Expected an error for a missing analysis")
	}
}

func TestUnionizesAsAnalysisSource(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rows := []brainatlas.Unionize{
		{ID: 1, ExperimentID: 10, StructureID: 797, HemisphereID: brainatlas.HemisphereRight, Volume: null.FloatFrom(1), ProjectionEnergy: null.FloatFrom(2)},
		{ID: 2, ExperimentID: 10, StructureID: 797, HemisphereID: brainatlas.HemisphereLeft, Volume: null.FloatFrom(0.1), ProjectionEnergy: null.FloatFrom(9)},
	}

	// Replacing twice leaves one copy
	for i := 0; i < 2; i++ {
		if err := s.ReplaceUnionizes(ctx, "PAG", rows); err != nil {
			t.Fatal(err)
		}
	}

	stored, err := s.Unionizes(ctx, "PAG")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].HemisphereID != brainatlas.HemisphereRight || stored[1].ProjectionDensity.Valid {
		t.Errorf("Unexpected rows %+v", stored)
	}

	tree := ontology.NewTree([]ontology.Structure{
		{ID: 795, Acronym: "PAG", Name: "Periaqueductal gray", GraphOrder: 1, StructureSetIDs: "167587189"},
		{ID: 797, Acronym: "ZI", Name: "Zona incerta", GraphOrder: 2, StructureSetIDs: "167587189"},
	}, nil)

	summaries, err := connectivity.New(s, tree).Efferents(ctx, "PAG", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 || summaries[1].Acronym != "ZI" || summaries[1].Right != 2 || !math.IsNaN(summaries[1].Left) {
		t.Errorf("Unexpected summaries %+v", summaries)
	}
}
