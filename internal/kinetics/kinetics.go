// Package kinetics simulates networks of elementary reactions with
// mass-action rate laws.
package kinetics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/schuko/tracing"

	"github.com/user/portfolio_go/internal/numeric"
	"github.com/user/portfolio_go/internal/parser"
)

// tracer writes to trace with key 'kinetics'
func tracer() tracing.Trace {
	return tracing.Select("kinetics")
}

// Network is a set of reactions over an ordered list of species.
type Network struct {
	Reactions []parser.Reaction
	K         []float64
	Species   []string // in order of first appearance
	C0        []float64
	index     map[string]int
}

// Build assembles a network. There must be one rate constant per reaction and
// an initial concentration for every species that appears.
func Build(reactions []parser.Reaction, ks []float64, c0 map[string]float64) (*Network, error) {
	if len(reactions) == 0 {
		return nil, fmt.Errorf("no reactions given")
	}
	if len(ks) != len(reactions) {
		return nil, fmt.Errorf("the number of rate constants (%d) does not match the number of reactions (%d)", len(ks), len(reactions))
	}
	order := linkedhashmap.New()
	for _, r := range reactions {
		for _, sp := range r.Species() {
			if _, found := order.Get(sp); !found {
				order.Put(sp, order.Size())
			}
		}
	}
	net := &Network{
		Reactions: reactions,
		K:         append([]float64(nil), ks...),
		index:     make(map[string]int, order.Size()),
	}
	var missing []string
	for _, key := range order.Keys() {
		sp := key.(string)
		net.index[sp] = len(net.Species)
		net.Species = append(net.Species, sp)
		c, ok := c0[sp]
		if !ok {
			missing = append(missing, sp)
		}
		net.C0 = append(net.C0, c)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("the following species are missing in the initial concentrations: %s", strings.Join(missing, ", "))
	}
	return net, nil
}

// Parse builds a network from equation strings like "2A+B=C".
func Parse(equations []string, ks []float64, c0 map[string]float64) (*Network, error) {
	reactions := make([]parser.Reaction, 0, len(equations))
	for _, eq := range equations {
		r, err := parser.ParseReaction(eq)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}
	return Build(reactions, ks, c0)
}

// Rates writes dC/dt for concentrations c into dcdt. The rate of reaction i
// is k_i times the product of reactant concentrations raised to their
// coefficients.
func (n *Network) Rates(c, dcdt []float64) {
	for i := range dcdt {
		dcdt[i] = 0
	}
	for i, r := range n.Reactions {
		rate := n.K[i]
		for _, t := range r.Reactants {
			rate *= math.Pow(c[n.index[t.Species]], float64(t.Coefficient))
		}
		for _, t := range r.Reactants {
			dcdt[n.index[t.Species]] -= rate * float64(t.Coefficient)
		}
		for _, t := range r.Products {
			dcdt[n.index[t.Species]] += rate * float64(t.Coefficient)
		}
	}
}

// Options of a simulation run. Zero values select the defaults.
type Options struct {
	TEnd      float64 // default 10
	Points    int     // default 1000
	Tolerance float64 // steady-state threshold, default 1e-4
}

func (o Options) withDefaults() Options {
	if o.TEnd <= 0 {
		o.TEnd = 10
	}
	if o.Points < 2 {
		o.Points = 1000
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-4
	}
	return o
}

// Result holds concentration profiles. C[k] is the time series of Species[k].
type Result struct {
	T               []float64
	Species         []string
	C               [][]float64
	SteadyStateTime float64
	Steady          bool // false when the tolerance was never met
}

// MaxConcentration returns the largest concentration of any species.
func (r *Result) MaxConcentration() float64 {
	m := 0.0
	for _, series := range r.C {
		for _, v := range series {
			m = math.Max(m, v)
		}
	}
	return m
}

// Simulate integrates the network from t = 0 to opts.TEnd and reports the
// concentrations at opts.Points evenly spaced times.
func Simulate(ctx context.Context, n *Network, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	tEval := numeric.Linspace(0, opts.TEnd, opts.Points)
	f := func(_ float64, y, dydt []float64) { n.Rates(y, dydt) }
	sol, err := numeric.SolveIVP(ctx, f, 0, opts.TEnd, n.C0, tEval, numeric.ODEOptions{})
	if err != nil {
		return nil, fmt.Errorf("integration failed: %w", err)
	}
	res := &Result{T: sol.T, Species: n.Species, C: make([][]float64, len(n.Species))}
	for k := range n.Species {
		res.C[k] = sol.Component(k)
	}
	res.SteadyStateTime, res.Steady = steadyState(sol, opts.Tolerance)
	tracer().Debugf("%d species, steady state at t=%g (%v)", len(n.Species), res.SteadyStateTime, res.Steady)
	return res, nil
}

// steadyState returns the first sample time at which no species changed by
// tol or more since the previous sample, or the final time.
func steadyState(sol *numeric.Solution, tol float64) (float64, bool) {
	for i := 1; i < len(sol.T); i++ {
		steady := true
		for k := range sol.Y[i] {
			if math.Abs(sol.Y[i][k]-sol.Y[i-1][k]) >= tol {
				steady = false
				break
			}
		}
		if steady {
			return sol.T[i], true
		}
	}
	return sol.T[len(sol.T)-1], false
}
