// Package chem does reaction stoichiometry: molar masses from formulas,
// limiting reagent, consumption and yield at a given conversion.
package chem

import (
	"fmt"
	"math"
	"sort"

	"github.com/user/portfolio_go/internal/parser"
)

// MolarMass computes g/mol of a formula such as "Ca(OH)2".
func MolarMass(formula string) (float64, error) {
	counts, err := parser.ParseFormula(formula)
	if err != nil {
		return math.NaN(), err
	}
	els := make([]string, 0, len(counts))
	for el := range counts {
		els = append(els, el)
	}
	sort.Strings(els)
	m := 0.0
	for _, el := range els {
		w, ok := AtomicWeight(el)
		if !ok {
			return math.NaN(), fmt.Errorf("unknown element %q in %s", el, formula)
		}
		m += w * float64(counts[el])
	}
	return m, nil
}

// Amount is what the user knows about one species. Moles take precedence;
// grams are converted with the molar mass. A zero MolarMass is looked up
// from the species formula.
type Amount struct {
	Moles     *float64
	Grams     *float64
	MolarMass float64
}

// ReactantResult reports consumption of one reactant.
type ReactantResult struct {
	Species     string
	Coefficient int
	Known       bool // an amount was given
	Initial     float64
	Used        float64
	Excess      float64
	MolarMass   float64 // 0 when unknown, grams are then not reported
}

// ProductResult reports formation of one product.
type ProductResult struct {
	Species     string
	Coefficient int
	Produced    float64
	MolarMass   float64
}

// Grams converts moles with the result's molar mass, NaN when unknown.
func grams(moles, mm float64) float64 {
	if mm <= 0 {
		return math.NaN()
	}
	return moles * mm
}

// InitialGrams of the reactant.
func (r ReactantResult) InitialGrams() float64 { return grams(r.Initial, r.MolarMass) }

// UsedGrams of the reactant.
func (r ReactantResult) UsedGrams() float64 { return grams(r.Used, r.MolarMass) }

// ExcessGrams of the reactant.
func (r ReactantResult) ExcessGrams() float64 { return grams(r.Excess, r.MolarMass) }

// ProducedGrams of the product.
func (p ProductResult) ProducedGrams() float64 { return grams(p.Produced, p.MolarMass) }

// StoichResult is the outcome of Stoichiometry.
type StoichResult struct {
	Limiting             string
	ConversionPercentage float64
	Extent               float64 // moles of reaction at the given conversion
	Reactants            []ReactantResult
	Products             []ProductResult
}

// Stoichiometry determines the limiting reactant (smallest moles per
// coefficient among reactants with a known amount) and the moles used,
// left over and produced when conversionPct percent of it reacts.
func Stoichiometry(r parser.Reaction, inputs map[string]Amount, conversionPct float64) (*StoichResult, error) {
	if conversionPct < 0 || conversionPct > 100 || math.IsNaN(conversionPct) {
		return nil, fmt.Errorf("conversion must be between 0 and 100 %%, got %g", conversionPct)
	}
	molarMass := func(species string) float64 {
		if a, ok := inputs[species]; ok && a.MolarMass > 0 {
			return a.MolarMass
		}
		if mm, err := MolarMass(species); err == nil {
			return mm
		}
		return 0
	}

	res := &StoichResult{ConversionPercentage: conversionPct}
	bestMPC := math.Inf(1)
	for _, t := range r.Reactants {
		rr := ReactantResult{Species: t.Species, Coefficient: t.Coefficient, MolarMass: molarMass(t.Species)}
		if a, ok := inputs[t.Species]; ok {
			switch {
			case a.Moles != nil:
				rr.Initial, rr.Known = *a.Moles, true
			case a.Grams != nil && rr.MolarMass > 0:
				rr.Initial, rr.Known = *a.Grams/rr.MolarMass, true
			case a.Grams != nil:
				return nil, fmt.Errorf("cannot convert grams of %s to moles: unknown molar mass", t.Species)
			}
		}
		if rr.Known {
			if rr.Initial < 0 {
				return nil, fmt.Errorf("negative amount of %s", t.Species)
			}
			if mpc := rr.Initial / float64(t.Coefficient); mpc < bestMPC {
				bestMPC, res.Limiting = mpc, t.Species
			}
		}
		res.Reactants = append(res.Reactants, rr)
	}
	if res.Limiting == "" {
		return nil, fmt.Errorf("please provide amount data for at least one reactant")
	}

	res.Extent = bestMPC * conversionPct / 100
	for i := range res.Reactants {
		rr := &res.Reactants[i]
		rr.Used = res.Extent * float64(rr.Coefficient)
		if rr.Known {
			rr.Excess = math.Max(rr.Initial-rr.Used, 0)
		}
	}
	for _, t := range r.Products {
		res.Products = append(res.Products, ProductResult{
			Species:     t.Species,
			Coefficient: t.Coefficient,
			Produced:    res.Extent * float64(t.Coefficient),
			MolarMass:   molarMass(t.Species),
		})
	}
	return res, nil
}
