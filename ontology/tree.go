package ontology

import (
	"fmt"
	"sort"

	"github.com/BenLubar/memoize"
)

// Tree indexes the structures of one ontology graph.
type Tree struct {
	structures []Structure
	sets       []StructureSet
	byID       map[int]int
	byAcronym  map[string]int

	ancestorIDs func(int) []int
}

// NewTree indexes structures, which are kept in graph order.
func NewTree(structures []Structure, sets []StructureSet) *Tree {
	t := &Tree{
		structures: append([]Structure(nil), structures...),
		sets:       append([]StructureSet(nil), sets...),
		byID:       make(map[int]int, len(structures)),
		byAcronym:  make(map[string]int, len(structures)),
	}

	sort.SliceStable(t.structures, func(i, j int) bool {
		return t.structures[i].GraphOrder < t.structures[j].GraphOrder
	})

	for i, s := range t.structures {
		t.byID[s.ID] = i
		t.byAcronym[s.Acronym] = i
	}

	t.ancestorIDs = memoize.Memoize(t.computeAncestorIDs).(func(int) []int)

	return t
}

func (t *Tree) Structures() []Structure {
	return append([]Structure(nil), t.structures...)
}

func (t *Tree) Sets() []StructureSet {
	return append([]StructureSet(nil), t.sets...)
}

func (t *Tree) Len() int {
	return len(t.structures)
}

func (t *Tree) ByID(id int) (Structure, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Structure{}, false
	}

	return t.structures[i], true
}

func (t *Tree) ByAcronym(acronym string) (Structure, bool) {
	i, ok := t.byAcronym[acronym]
	if !ok {
		return Structure{}, false
	}

	return t.structures[i], true
}

// ByAcronyms looks up every acronym, failing on the first one that is unknown.
func (t *Tree) ByAcronyms(acronyms []string) ([]Structure, error) {
	out := make([]Structure, 0, len(acronyms))
	for _, acronym := range acronyms {
		s, ok := t.ByAcronym(acronym)
		if !ok {
			return nil, fmt.Errorf("Structure acronym %q is not in the ontology", acronym)
		}
		out = append(out, s)
	}

	return out, nil
}

// BySetID returns, in graph order, the structures that belong to any of the
// given structure sets.
func (t *Tree) BySetID(setIDs ...int) []Structure {
	out := make([]Structure, 0)
	for _, s := range t.structures {
		for _, setID := range setIDs {
			if s.InSet(setID) {
				out = append(out, s)
				break
			}
		}
	}

	return out
}

func (t *Tree) SetByDescription(description string) (StructureSet, bool) {
	for _, set := range t.sets {
		if set.Description == description {
			return set, true
		}
	}

	return StructureSet{}, false
}

// SummaryStructures is the reference set of regions: the summary structure set
// without the excluded regions.
func (t *Tree) SummaryStructures() []Structure {
	summary := t.BySetID(SummaryStructureSetID)

	out := make([]Structure, 0, len(summary))
Outer:
	for _, s := range summary {
		for _, excluded := range ExcludedRegions {
			if s.Acronym == excluded {
				continue Outer
			}
		}
		out = append(out, s)
	}

	return out
}

// OtherSets resolves each of OtherSetDescriptions to its members.
func (t *Tree) OtherSets() (map[string][]Structure, error) {
	out := make(map[string][]Structure, len(OtherSetDescriptions))
	for _, description := range OtherSetDescriptions {
		set, ok := t.SetByDescription(description)
		if !ok {
			return nil, fmt.Errorf("No structure set is described as %q", description)
		}
		out[description] = t.BySetID(set.ID)
	}

	return out, nil
}

// AvailableMeshes lists, sorted, the acronyms of structures that have a
// precomputed surface mesh.
func (t *Tree) AvailableMeshes() ([]string, error) {
	set, ok := t.SetByDescription(SetPrecomputedMesh)
	if !ok {
		return nil, fmt.Errorf("No structure set is described as %q", SetPrecomputedMesh)
	}

	out := make([]string, 0)
	for _, s := range t.BySetID(set.ID) {
		out = append(out, s.Acronym)
	}
	sort.Strings(out)

	return out, nil
}

// Ancestors returns the ancestors of id, root first, excluding id itself.
func (t *Tree) Ancestors(id int) []Structure {
	ids := t.ancestorIDs(id)

	out := make([]Structure, 0, len(ids))
	for _, ancestorID := range ids {
		if s, ok := t.ByID(ancestorID); ok {
			out = append(out, s)
		}
	}

	return out
}

// Descendants returns every structure below id, in graph order.
func (t *Tree) Descendants(id int) []Structure {
	out := make([]Structure, 0)
	for _, s := range t.structures {
		if s.ID == id {
			continue
		}
		for _, ancestorID := range t.ancestorIDs(s.ID) {
			if ancestorID == id {
				out = append(out, s)
				break
			}
		}
	}

	return out
}

func (t *Tree) computeAncestorIDs(id int) []int {
	s, ok := t.ByID(id)
	if !ok {
		return nil
	}

	if path := s.Path(); len(path) > 0 {
		if path[len(path)-1] == id {
			path = path[:len(path)-1]
		}
		return path
	}

	// Without a stored path, walk the parents. The seen map guards against a
	// malformed graph with a cycle.
	reversed := make([]int, 0)
	seen := map[int]struct{}{id: {}}
	for parent := s.ParentStructureID; parent != 0; {
		if _, loop := seen[parent]; loop {
			break
		}
		seen[parent] = struct{}{}
		reversed = append(reversed, parent)

		p, ok := t.ByID(parent)
		if !ok {
			break
		}
		parent = p.ParentStructureID
	}

	out := make([]int, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		out = append(out, reversed[i])
	}

	return out
}
