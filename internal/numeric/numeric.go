// Package numeric holds the small numerical toolbox shared by the calculator
// pages: least-squares polynomial fits, scalar root finding and an adaptive
// Runge-Kutta integrator.
package numeric

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/floats"
)

// tracer writes to trace with key 'numeric'
func tracer() tracing.Trace {
	return tracing.Select("numeric")
}

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 1e-10

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Linspace returns n evenly spaced samples over [lo, hi], endpoints included.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	dst := floats.Span(make([]float64, n), lo, hi)
	dst[0], dst[n-1] = lo, hi
	return dst
}
