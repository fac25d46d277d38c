package web

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/chem"
	"github.com/user/portfolio_go/internal/molecule"
	"github.com/user/portfolio_go/internal/parser"
)

// speciesInput is the amount row of one reactant.
type speciesInput struct {
	Species string
	Parts   []parser.FormulaPart
	Moles   string
	Grams   string
}

type chemToolsData struct {
	Reaction   string
	Conversion float64
	Inputs     []speciesInput
	Products   []speciesInput
	Result     *chem.StoichResult

	Molecule      string
	Compound      *molecule.Compound
	MoleculeError string
}

// stoichiometry reads the reaction and the amount of each reactant
// (moles_<species> or grams_<species>). Without any amount only the input
// rows are prepared.
func stoichiometry(c echo.Context, data *chemToolsData) error {
	f := newForm(c)
	data.Reaction = f.str("reaction", "")
	data.Conversion = f.float("conversion", 100)
	if err := f.err(); err != nil || data.Reaction == "" {
		return err
	}
	r, err := parser.ParseReaction(data.Reaction)
	if err != nil {
		return err
	}
	amounts := map[string]chem.Amount{}
	for _, t := range r.Reactants {
		in := speciesInput{
			Species: t.Species,
			Parts:   parser.FormulaParts(t.Species),
			Moles:   c.FormValue("moles_" + t.Species),
			Grams:   c.FormValue("grams_" + t.Species),
		}
		data.Inputs = append(data.Inputs, in)
		var a chem.Amount
		if in.Moles != "" {
			v := f.float("moles_"+t.Species, 0)
			a.Moles = &v
		} else if in.Grams != "" {
			v := f.float("grams_"+t.Species, 0)
			a.Grams = &v
		} else {
			continue
		}
		amounts[t.Species] = a
	}
	for _, t := range r.Products {
		data.Products = append(data.Products, speciesInput{Species: t.Species, Parts: parser.FormulaParts(t.Species)})
	}
	if err := f.err(); err != nil {
		return err
	}
	if len(amounts) == 0 {
		return nil
	}
	data.Result, err = chem.Stoichiometry(r, amounts, data.Conversion)
	return err
}

func (s *Server) lookupMolecule(c echo.Context, data *chemToolsData) {
	data.Molecule = newForm(c).str("molecule", "")
	if data.Molecule == "" {
		return
	}
	comp, err := s.Molecules.Lookup(c.Request().Context(), data.Molecule)
	switch {
	case errors.Is(err, molecule.ErrNotFound):
		data.MoleculeError = fmt.Sprintf("No compound named %q was found.", data.Molecule)
	case err != nil:
		data.MoleculeError = err.Error()
	default:
		data.Compound = comp
	}
}

func (s *Server) chemToolsPage(c echo.Context) error {
	data := &chemToolsData{Conversion: 100}
	err := stoichiometry(c, data)
	s.lookupMolecule(c, data)
	return render(c, "chemtools", data, err)
}
