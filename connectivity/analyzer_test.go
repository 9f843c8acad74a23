package connectivity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/ontology"
	"gopkg.in/guregu/null.v3"
)

type mapSource map[string][]brainatlas.Unionize

func (m mapSource) ReadUnionizes(ctx context.Context, acronym string) ([]brainatlas.Unionize, error) {
	rows, exists := m[acronym]
	if !exists {
		return nil, fmt.Errorf("no table for %s", acronym)
	}

	return rows, nil
}

func row(structureID int, h brainatlas.Hemisphere, volume float64, energy float64) brainatlas.Unionize {
	u := brainatlas.Unionize{
		StructureID:  structureID,
		HemisphereID: h,
		Volume:       null.FloatFrom(volume),
	}
	if !math.IsNaN(energy) {
		u.ProjectionEnergy = null.FloatFrom(energy)
	}

	return u
}

const (
	pag = 795
	scm = 294
	zi  = 797
)

func testAnalyzer(source mapSource) *Analyzer {
	tree := ontology.NewTree([]ontology.Structure{
		{ID: pag, Acronym: "PAG", Name: "Periaqueductal gray", GraphOrder: 1, StructureSetIDs: "167587189"},
		{ID: scm, Acronym: "SCm", Name: "Superior colliculus, motor related", GraphOrder: 2, StructureSetIDs: "167587189"},
		{ID: zi, Acronym: "ZI", Name: "Zona incerta", GraphOrder: 3, StructureSetIDs: "167587189"},
	}, nil)

	a := New(source, tree)
	a.Logger = log.New(io.Discard, "", 0)

	return a
}

func TestEfferents(t *testing.T) {
	source := mapSource{
		"PAG": {
			row(scm, brainatlas.HemisphereRight, 1.0, 2.0),
			row(scm, brainatlas.HemisphereRight, 1.0, 4.0),
			row(scm, brainatlas.HemisphereRight, 1.0, math.NaN()),
			row(scm, brainatlas.HemisphereLeft, 1.0, 1.0),
			// At the threshold, so excluded
			row(scm, brainatlas.HemisphereLeft, 0.5, 100.0),
			// No volume, so excluded
			{StructureID: scm, HemisphereID: brainatlas.HemisphereRight, Volume: null.Float{}, ProjectionEnergy: null.FloatFrom(100.0)},
			row(zi, brainatlas.HemisphereRight, 0.75, 1.0),
			row(zi, brainatlas.HemisphereBoth, 0.75, 0.5),
			// Not a reference region
			row(12345, brainatlas.HemisphereRight, 5, 5),
		},
	}

	summaries, err := testAnalyzer(source).Efferents(context.Background(), "PAG", "")
	if err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 3 {
		t.Fatalf("Expected one summary per reference region, got %d", len(summaries))
	}

	// PAG has no rows, so its right mean is NaN and it sorts first
	if summaries[0].Acronym != "PAG" || !math.IsNaN(summaries[0].Right) || summaries[0].NRight != 0 {
		t.Errorf("Unexpected first summary %+v", summaries[0])
	}

	if s := summaries[1]; s.Acronym != "ZI" || s.Right != 1.0 || s.Both != 0.5 || !math.IsNaN(s.Left) {
		t.Errorf("Unexpected second summary %+v", s)
	}

	if s := summaries[2]; s.Acronym != "SCm" || s.Right != 3.0 || s.NRight != 2 || s.Left != 1.0 || s.NLeft != 1 {
		t.Errorf("Unexpected third summary %+v", s)
	}
}

func TestEfferentsMissingSeedTable(t *testing.T) {
	if _, err := testAnalyzer(mapSource{}).Efferents(context.Background(), "PAG", ""); err == nil {
		t.Error("Expected an error when the seed table is missing")
	}
}

func TestEfferentsUnknownMetric(t *testing.T) {
	source := mapSource{"PAG": nil}
	if _, err := testAnalyzer(source).Efferents(context.Background(), "PAG", "not_a_metric"); err == nil {
		t.Error("Expected an error for an unknown metric")
	}
}

func TestAfferentsSkipsMissingTables(t *testing.T) {
	source := mapSource{
		"PAG": {row(zi, brainatlas.HemisphereRight, 2, 0.25)},
		"SCm": {
			row(zi, brainatlas.HemisphereRight, 2, 0.5),
			row(zi, brainatlas.HemisphereRight, 0.1, 10),
			row(pag, brainatlas.HemisphereRight, 2, 10),
		},
		// No ZI table
	}

	var logged bytes.Buffer
	a := testAnalyzer(source)
	a.Logger = log.New(&logged, "", 0)

	summaries, err := a.Afferents(context.Background(), "ZI", brainatlas.ProjectionEnergy)
	if err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 2 {
		t.Fatalf("Expected ZI to be skipped, got %+v", summaries)
	}
	if summaries[0].Acronym != "PAG" || summaries[0].Right != 0.25 {
		t.Errorf("Unexpected first summary %+v", summaries[0])
	}
	if summaries[1].Acronym != "SCm" || summaries[1].Right != 0.5 {
		t.Errorf("Unexpected second summary %+v", summaries[1])
	}
	if !strings.Contains(logged.String(), "Skipping ZI") {
		t.Errorf("Expected the skipped region to be logged, got %q", logged.String())
	}
}

func TestAfferentsUnknownStructure(t *testing.T) {
	if _, err := testAnalyzer(mapSource{}).Afferents(context.Background(), "nope", ""); err == nil {
		t.Error("Expected an error for an unknown structure of interest")
	}
}

func TestSortByRightIsStableWithNaNFirst(t *testing.T) {
	nan := math.NaN()
	summaries := []Summary{
		{Acronym: "a", Right: 2},
		{Acronym: "b", Right: nan},
		{Acronym: "c", Right: 1},
		{Acronym: "d", Right: nan},
		{Acronym: "e", Right: 1},
	}
	SortByRight(summaries)

	got := make([]string, 0, len(summaries))
	for _, s := range summaries {
		got = append(got, s.Acronym)
	}
	if strings.Join(got, "") != "bdcea" {
		t.Errorf("Unexpected order %v", got)
	}
}

func TestNaNMean(t *testing.T) {
	for _, v := range []struct {
		Values []float64
		Mean   float64
		N      int
	}{
		{[]float64{1, 2, 3}, 2, 3},
		{[]float64{math.NaN(), 4}, 4, 1},
		{[]float64{math.NaN()}, math.NaN(), 0},
		{nil, math.NaN(), 0},
	} {
		mean, n := NaNMean(v.Values)
		if n != v.N || (math.IsNaN(v.Mean) != math.IsNaN(mean)) || (!math.IsNaN(mean) && math.Abs(mean-v.Mean) > 1e-12) {
			t.Errorf("NaNMean(%v): expected %v (%d), got %v (%d)", v.Values, v.Mean, v.N, mean, n)
		}
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTSV(&buf, []Summary{{ID: 795, Acronym: "PAG", Name: "Periaqueductal gray", Left: math.NaN(), Right: 0.5, Both: 1, NRight: 2, NBoth: 1}})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected a header and one row, got %q", buf.String())
	}
	if lines[0] != "id\tacronym\tname\tleft\tright\tboth\tn_left\tn_right\tn_both" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "795\tPAG\tPeriaqueductal gray\tNaN\t0.5\t1\t") {
		t.Errorf("Unexpected row %q", lines[1])
	}
}

func TestFilterByVolume(t *testing.T) {
	rows := []brainatlas.Unionize{
		row(zi, brainatlas.HemisphereRight, 0.75, 1),
		row(zi, brainatlas.HemisphereRight, 0.5, 1),
		{StructureID: zi, HemisphereID: brainatlas.HemisphereRight, ProjectionEnergy: null.FloatFrom(1)},
	}

	kept := FilterByVolume(rows, DefaultVolumeThreshold)
	if len(kept) != 1 || kept[0].Volume.Float64 != 0.75 {
		t.Errorf("Expected only the row above the threshold to be kept, got %+v", kept)
	}
}
