package ontology

import (
	"strconv"
	"strings"
)

// Structure is one node of the adult mouse brain ontology.
type Structure struct {
	ID                int    `csv:"id" json:"id"`
	Acronym           string `csv:"acronym" json:"acronym"`
	Name              string `csv:"name" json:"name"`
	ParentStructureID int    `csv:"parent_structure_id" json:"parent_structure_id"`
	GraphOrder        int    `csv:"graph_order" json:"graph_order"`
	ColorHexTriplet   string `csv:"color_hex_triplet" json:"color_hex_triplet"`

	// StructureIDPath is the /-delimited path of ids from the root to this
	// structure, inclusive, e.g. "/997/8/567/".
	StructureIDPath string `csv:"structure_id_path" json:"structure_id_path"`

	// StructureSetIDs is a ;-delimited list of the structure sets this
	// structure belongs to.
	StructureSetIDs string `csv:"structure_set_ids" json:"-"`
}

// Path parses StructureIDPath. Malformed entries are skipped.
func (s Structure) Path() []int {
	parts := strings.Split(strings.Trim(s.StructureIDPath, "/"), "/")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, id)
	}

	return out
}

// SetIDs parses StructureSetIDs.
func (s Structure) SetIDs() []int {
	if s.StructureSetIDs == "" {
		return nil
	}

	parts := strings.Split(s.StructureSetIDs, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, id)
	}

	return out
}

// SetSetIDs replaces StructureSetIDs with ids.
func (s *Structure) SetSetIDs(ids []int) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	s.StructureSetIDs = strings.Join(parts, ";")
}

// InSet reports whether the structure belongs to structure set setID.
func (s Structure) InSet(setID int) bool {
	for _, id := range s.SetIDs() {
		if id == setID {
			return true
		}
	}

	return false
}

// StructureSet is a named, curated group of structures.
type StructureSet struct {
	ID          int    `csv:"id" json:"id"`
	Name        string `csv:"name" json:"name"`
	Description string `csv:"description" json:"description"`
}
