package ontology

// The adult mouse structure graph.
const MouseBrainGraphID = 1

// SummaryStructureSetID identifies the "Brain - Summary Structures" set, which
// is the reference set of regions that connectivity statistics are reported
// over.
const SummaryStructureSetID = 167587189

// Descriptions of the other structure sets that are resolved by name.
const (
	SetPons            = "Summary structures of the pons"
	SetThalamus        = "Summary structures of the thalamus"
	SetHypothalamus    = "Summary structures of the hypothalamus"
	SetFineStructure   = "List of structures for ABA Fine Structure Search"
	SetMajorDivisions  = "Structures representing the major divisions of the mouse brain"
	SetMidbrain        = "Summary structures of the midbrain"
	SetPrecomputedMesh = "Structures whose surfaces are represented by a precomputed mesh"
)

var OtherSetDescriptions = []string{
	SetPons,
	SetThalamus,
	SetHypothalamus,
	SetFineStructure,
	SetMajorDivisions,
	SetMidbrain,
	SetPrecomputedMesh,
}

// ExcludedRegions are removed from the summary structures.
var ExcludedRegions = []string{"fiber tracts"}

// MainStructures are the frequently used structures of interest.
var MainStructures = []string{"PAG", "SCm", "ZI", "SCs", "GRN"}
