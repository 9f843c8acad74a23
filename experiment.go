package brainatlas

// Experiment is the metadata of one mouse connectivity experiment, flattened
// so it can be cached as a table.
type Experiment struct {
	ID                        int64   `csv:"id"`
	StructureID               int     `csv:"structure_id"`
	StructureAbbrev           string  `csv:"structure_abbrev"`
	StructureName             string  `csv:"structure_name"`
	PrimaryInjectionStructure int     `csv:"primary_injection_structure"`
	InjectionVolume           float64 `csv:"injection_volume"`
	InjectionX                float64 `csv:"injection_x"`
	InjectionY                float64 `csv:"injection_y"`
	InjectionZ                float64 `csv:"injection_z"`
	Strain                    string  `csv:"strain"`
	TransgenicLine            string  `csv:"transgenic_line"`
	Gender                    string  `csv:"gender"`
	ProductID                 int     `csv:"product_id"`
	SpecimenName              string  `csv:"specimen_name"`
}

// Cre reports whether the experiment used a Cre driver line.
func (e Experiment) Cre() bool {
	return e.TransgenicLine != ""
}
