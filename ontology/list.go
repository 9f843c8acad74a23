package ontology

import (
	"fmt"
	"io"
	"sort"
)

// SortByAcronym returns a copy of structures ordered by acronym.
func SortByAcronym(structures []Structure) []Structure {
	out := append([]Structure(nil), structures...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Acronym < out[j].Acronym
	})

	return out
}

// WriteList writes one "(ACRONYM)<sep>name" line per structure, sorted by
// acronym. Both " - " and " -- " separators are in use downstream.
func WriteList(w io.Writer, structures []Structure, sep string) error {
	for _, s := range SortByAcronym(structures) {
		if _, err := fmt.Fprintf(w, "(%s)%s%s\n", s.Acronym, sep, s.Name); err != nil {
			return err
		}
	}

	return nil
}
