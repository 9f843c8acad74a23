package ontology

import (
	"bytes"
	"testing"
)

func testTree() *Tree {
	structures := []Structure{
		{ID: 997, Acronym: "root", Name: "root", GraphOrder: 0, StructureIDPath: "/997/"},
		{ID: 8, Acronym: "grey", Name: "Basic cell groups and regions", ParentStructureID: 997, GraphOrder: 1, StructureIDPath: "/997/8/"},
		{ID: 313, Acronym: "MB", Name: "Midbrain", ParentStructureID: 8, GraphOrder: 3, StructureIDPath: "/997/8/313/", StructureSetIDs: "2;5"},
		{ID: 795, Acronym: "PAG", Name: "Periaqueductal gray", ParentStructureID: 313, GraphOrder: 5, StructureIDPath: "/997/8/313/795/", StructureSetIDs: "167587189;5"},
		{ID: 294, Acronym: "SCm", Name: "Superior colliculus, motor related", ParentStructureID: 313, GraphOrder: 4, StructureIDPath: "/997/8/313/294/", StructureSetIDs: "167587189"},
		{ID: 1009, Acronym: "fiber tracts", Name: "fiber tracts", ParentStructureID: 997, GraphOrder: 6, StructureIDPath: "/997/1009/", StructureSetIDs: "167587189"},
		// No stored path; ancestry must come from the parents.
		{ID: 50, Acronym: "PAGx", Name: "Made up subdivision", ParentStructureID: 795, GraphOrder: 7},
	}
	sets := []StructureSet{
		{ID: 167587189, Name: "Brain - Summary Structures", Description: "Summary structures"},
		{ID: 5, Description: SetPrecomputedMesh},
		{ID: 2, Description: SetMidbrain},
	}

	return NewTree(structures, sets)
}

func TestSummaryStructuresExcludesFiberTracts(t *testing.T) {
	summary := testTree().SummaryStructures()

	if len(summary) != 2 {
		t.Fatalf("Expected 2 summary structures, got %d: %+v", len(summary), summary)
	}

	// Graph order, not input order
	if summary[0].Acronym != "SCm" || summary[1].Acronym != "PAG" {
		t.Errorf("Unexpected summary structures %s, %s", summary[0].Acronym, summary[1].Acronym)
	}
}

func TestAncestors(t *testing.T) {
	tree := testTree()

	for _, v := range []struct {
		ID       int
		Expected []int
	}{
		{795, []int{997, 8, 313}},
		{50, []int{997, 8, 313, 795}},
		{997, []int{}},
		{12345, []int{}},
	} {
		got := tree.Ancestors(v.ID)
		if len(got) != len(v.Expected) {
			t.Fatalf("Ancestors of %d: expected %v, got %+v", v.ID, v.Expected, got)
		}
		for i := range got {
			if got[i].ID != v.Expected[i] {
				t.Errorf("Ancestors of %d: expected %v, got %+v", v.ID, v.Expected, got)
			}
		}
	}
}

func TestDescendants(t *testing.T) {
	got := testTree().Descendants(313)

	expected := []string{"SCm", "PAG", "PAGx"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %+v", expected, got)
	}
	for i := range got {
		if got[i].Acronym != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], got[i].Acronym)
		}
	}
}

func TestByAcronymsReportsUnknown(t *testing.T) {
	if _, err := testTree().ByAcronyms([]string{"PAG", "nope"}); err == nil {
		t.Error("Expected an error for an unknown acronym")
	}
}

func TestAvailableMeshesAndOtherSets(t *testing.T) {
	tree := testTree()

	meshes, err := tree.AvailableMeshes()
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 2 || meshes[0] != "MB" || meshes[1] != "PAG" {
		t.Errorf("Unexpected meshes %v", meshes)
	}

	// Not every named set is present in the test ontology
	if _, err := tree.OtherSets(); err == nil {
		t.Error("Expected an error for missing structure sets")
	}
}

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteList(&buf, testTree().SummaryStructures(), " -- "); err != nil {
		t.Fatal(err)
	}

	expected := "(PAG) -- Periaqueductal gray\n(SCm) -- Superior colliculus, motor related\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}
