package mccabe

import (
	"github.com/user/portfolio_go/internal/thermo"
)

// Fit degrees of the equilibrium polynomial. Isobaric curves bend more
// sharply near the pure components and need the higher degree.
const (
	IsothermalDegree = 10
	IsobaricDegree   = 20
)

// Diagram is a McCabe-Thiele construction on computed VLE data.
type Diagram struct {
	Comp1, Comp2 string
	Condition    thermo.Condition
	X, Y         []float64 // equilibrium samples the curve was fitted to
	*Result
}

// NewDiagram computes the x-y equilibrium of comp1/comp2 at cond, fits the
// curve and steps off the column. A zero opts.Degree picks the degree from
// the condition.
func NewDiagram(comp1, comp2 string, cond thermo.Condition, p Params, opts Options) (*Diagram, error) {
	x, y, err := thermo.XY(comp1, comp2, cond, thermo.DefaultPoints)
	if err != nil {
		return nil, err
	}
	if opts.Degree <= 0 {
		opts.Degree = IsothermalDegree
		if cond.P > 0 {
			opts.Degree = IsobaricDegree
		}
	}
	d := &Diagram{Comp1: comp1, Comp2: comp2, Condition: cond, X: x, Y: y}
	d.Result, err = Construct(x, y, p, opts)
	return d, err
}
