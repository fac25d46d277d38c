// Package thermo generates binary vapor-liquid equilibrium data from modified
// Raoult's law with Wilson activity coefficients.
package thermo

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/user/portfolio_go/internal/numeric"
)

// tracer writes to trace with key 'thermo'
func tracer() tracing.Trace {
	return tracing.Select("thermo")
}

// gasConstant in cal/(mol K), the unit of the Wilson parameters.
const gasConstant = 1.98720

// DefaultPoints is the number of liquid compositions sampled per curve.
const DefaultPoints = 100

// ErrCondition is returned when neither or both of temperature and pressure
// are specified.
var ErrCondition = errors.New("specify either temperature or pressure, not both")

// Condition fixes one intensive variable of the binary. Zero means unset.
type Condition struct {
	T float64 // K
	P float64 // bar
}

// Validate checks that exactly one of T and P is set.
func (c Condition) Validate() error {
	if (c.T > 0) == (c.P > 0) {
		return ErrCondition
	}
	return nil
}

func (c Condition) String() string {
	if c.T > 0 {
		return fmt.Sprintf("%g K", c.T)
	}
	return fmt.Sprintf("%g bar", c.P)
}

// Mixture is a binary of two known components.
type Mixture struct {
	Comp1, Comp2 Component
	a12, a21     float64
	Ideal        bool // no Wilson parameters, activity coefficients are 1
}

// NewMixture looks up both components and their Wilson parameters.
func NewMixture(comp1, comp2 string) (*Mixture, error) {
	c1, err := Lookup(comp1)
	if err != nil {
		return nil, err
	}
	c2, err := Lookup(comp2)
	if err != nil {
		return nil, err
	}
	if c1.Name == c2.Name {
		return nil, fmt.Errorf("a binary needs two different components, got %s twice", c1.Name)
	}
	m := &Mixture{Comp1: c1, Comp2: c2}
	var ok bool
	m.a12, m.a21, ok = wilsonParams(c1.Name, c2.Name)
	m.Ideal = !ok
	if m.Ideal {
		tracer().Infof("no Wilson parameters for %s/%s, assuming ideal liquid", c1.Name, c2.Name)
	}
	return m, nil
}

// Gammas returns the Wilson activity coefficients at liquid mole fraction x1
// of component 1 and temperature tK.
func (m *Mixture) Gammas(x1, tK float64) (float64, float64) {
	if m.Ideal {
		return 1, 1
	}
	x2 := 1 - x1
	l12 := m.Comp2.MolarVolume / m.Comp1.MolarVolume * math.Exp(-m.a12/(gasConstant*tK))
	l21 := m.Comp1.MolarVolume / m.Comp2.MolarVolume * math.Exp(-m.a21/(gasConstant*tK))
	d1 := x1 + x2*l12
	d2 := x2 + x1*l21
	common := l12/d1 - l21/d2
	lng1 := -math.Log(d1) + x2*common
	lng2 := -math.Log(d2) - x1*common
	return math.Exp(lng1), math.Exp(lng2)
}

// BubbleP returns the bubble pressure in Pa and the vapor mole fraction y1 of
// a liquid with composition x1 at tK.
func (m *Mixture) BubbleP(x1, tK float64) (float64, float64) {
	g1, g2 := m.Gammas(x1, tK)
	p1 := x1 * g1 * m.Comp1.Psat(tK)
	p2 := (1 - x1) * g2 * m.Comp2.Psat(tK)
	p := p1 + p2
	return p, p1 / p
}

// BubbleT returns the bubble temperature in K and vapor mole fraction y1 of a
// liquid with composition x1 at pressure pPa.
func (m *Mixture) BubbleT(x1, pPa float64) (float64, float64, error) {
	t1, t2 := m.Comp1.Tsat(pPa), m.Comp2.Tsat(pPa)
	lo := math.Min(t1, t2) - 60
	hi := math.Max(t1, t2) + 60
	// keep the Antoine denominator positive
	floor := kelvin - math.Min(m.Comp1.C, m.Comp2.C) + 1
	if lo < floor {
		lo = floor
	}
	f := func(tK float64) float64 {
		p, _ := m.BubbleP(x1, tK)
		return p - pPa
	}
	tK, err := numeric.Brent(f, lo, hi, 1e-9)
	if err != nil {
		return 0, 0, fmt.Errorf("bubble temperature at x1=%g, P=%g Pa: %w", x1, pPa, err)
	}
	_, y1 := m.BubbleP(x1, tK)
	return tK, y1, nil
}

// Curve is a sampled bubble-point curve. X and Y are the liquid and vapor
// mole fractions of component 1; T (K) and P (bar) hold the bubble
// temperature and pressure of each sample. Plotting (Y, T) or (Y, P) gives
// the dew curve.
type Curve struct {
	Comp1, Comp2 string
	Condition    Condition
	X, Y         []float64
	T, P         []float64
	Ideal        bool
}

// Bubble samples pts liquid compositions over [0, 1] at the given condition.
func (m *Mixture) Bubble(cond Condition, pts int) (*Curve, error) {
	if err := cond.Validate(); err != nil {
		return nil, err
	}
	if pts < 2 {
		pts = DefaultPoints
	}
	c := &Curve{
		Comp1: m.Comp1.Name, Comp2: m.Comp2.Name, Condition: cond, Ideal: m.Ideal,
		X: numeric.Linspace(0, 1, pts),
		Y: make([]float64, pts), T: make([]float64, pts), P: make([]float64, pts),
	}
	for i, x1 := range c.X {
		if cond.T > 0 {
			p, y1 := m.BubbleP(x1, cond.T)
			c.Y[i], c.T[i], c.P[i] = y1, cond.T, p/1e5
			continue
		}
		tK, y1, err := m.BubbleT(x1, cond.P*1e5)
		if err != nil {
			return nil, err
		}
		c.Y[i], c.T[i], c.P[i] = y1, tK, cond.P
	}
	tracer().Debugf("%s/%s bubble curve at %s: %d points", m.Comp1.Name, m.Comp2.Name, cond, pts)
	return c, nil
}

// XY returns the x-y equilibrium samples of the binary comp1/comp2 at a fixed
// temperature (K) or pressure (bar).
func XY(comp1, comp2 string, cond Condition, pts int) (x, y []float64, err error) {
	m, err := NewMixture(comp1, comp2)
	if err != nil {
		return nil, nil, err
	}
	c, err := m.Bubble(cond, pts)
	if err != nil {
		return nil, nil, err
	}
	return c.X, c.Y, nil
}

// Txy returns the bubble/dew temperature curve at pressure pBar.
func Txy(comp1, comp2 string, pBar float64, pts int) (*Curve, error) {
	m, err := NewMixture(comp1, comp2)
	if err != nil {
		return nil, err
	}
	return m.Bubble(Condition{P: pBar}, pts)
}

// Pxy returns the bubble/dew pressure curve at temperature tK.
func Pxy(comp1, comp2 string, tK float64, pts int) (*Curve, error) {
	m, err := NewMixture(comp1, comp2)
	if err != nil {
		return nil, err
	}
	return m.Bubble(Condition{T: tK}, pts)
}
