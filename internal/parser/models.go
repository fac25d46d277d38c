package parser

// MinVLEPoints is the smallest number of samples accepted for an equilibrium
// data set.
const MinVLEPoints = 3

// VLEData holds a binary x-y equilibrium data set as read from CSV.
// X and Y are the liquid and vapor mole fractions of the light component,
// sorted by X.
type VLEData struct {
	X, Y        []float64
	Labels      [2]string // column headers, if the file had any
	ParseErrors []string  // To collect any non-fatal errors during parsing
}

// NewVLEData initializes an empty data set.
func NewVLEData() *VLEData {
	return &VLEData{
		X:           make([]float64, 0),
		Y:           make([]float64, 0),
		ParseErrors: make([]string, 0),
	}
}

// Len is the number of samples.
func (d *VLEData) Len() int {
	return len(d.X)
}

// Term is one species of a reaction side with its stoichiometric coefficient.
type Term struct {
	Coefficient int
	Species     string
}

// Reaction is a parsed chemical equation.
type Reaction struct {
	Reactants []Term
	Products  []Term
}

// Species lists reactants then products in order of appearance, without
// duplicates.
func (r Reaction) Species() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range append(append([]Term(nil), r.Reactants...), r.Products...) {
		if !seen[t.Species] {
			seen[t.Species] = true
			out = append(out, t.Species)
		}
	}
	return out
}

// FormulaPart is a run of a chemical formula, either regular text or a
// subscript count.
type FormulaPart struct {
	Text      string
	Subscript bool
}
