package numeric

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrTooFewPoints is returned when a fit is requested with fewer samples than
// the polynomial has coefficients.
var ErrTooFewPoints = errors.New("too few points for polynomial fit")

// Polynomial is a polynomial in the mapped variable u = (x-Offset)*Scale.
// Mapping the sample window onto [-1, 1] keeps high-degree Vandermonde
// systems well conditioned.
type Polynomial struct {
	Coeffs []float64 // ascending powers of u
	Offset float64
	Scale  float64
}

// PolyFit computes the least-squares polynomial of the given degree through
// the samples (xs[i], ys[i]).
func PolyFit(xs, ys []float64, degree int) (Polynomial, error) {
	if degree < 0 {
		return Polynomial{}, fmt.Errorf("negative polynomial degree %d", degree)
	}
	if len(xs) != len(ys) {
		return Polynomial{}, fmt.Errorf("%w: %d x values but %d y values", ErrTooFewPoints, len(xs), len(ys))
	}
	if len(xs) <= degree {
		return Polynomial{}, fmt.Errorf("%w: need more than %d, have %d", ErrTooFewPoints, degree, len(xs))
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	p := Polynomial{Offset: (lo + hi) / 2, Scale: 1}
	if hi > lo {
		p.Scale = 2 / (hi - lo)
	} else if degree > 0 {
		return Polynomial{}, fmt.Errorf("%w: all x values equal %g", ErrTooFewPoints, lo)
	}

	n, m := len(xs), degree+1
	vander := mat.NewDense(n, m, nil)
	for i, x := range xs {
		u := (x - p.Offset) * p.Scale
		pow := 1.0
		for j := 0; j < m; j++ {
			vander.Set(i, j, pow)
			pow *= u
		}
	}
	var coeffs mat.VecDense
	if err := coeffs.SolveVec(vander, mat.NewVecDense(n, append([]float64(nil), ys...))); err != nil {
		return Polynomial{}, fmt.Errorf("least squares solve failed: %w", err)
	}
	p.Coeffs = make([]float64, m)
	for j := range p.Coeffs {
		p.Coeffs[j] = coeffs.AtVec(j)
	}
	tracer().Debugf("polyfit degree %d over [%g, %g] from %d samples", degree, lo, hi, n)
	return p, nil
}

// Eval evaluates the polynomial at x (Horner scheme).
func (p Polynomial) Eval(x float64) float64 {
	u := (x - p.Offset) * p.Scale
	y := 0.0
	for j := len(p.Coeffs) - 1; j >= 0; j-- {
		y = y*u + p.Coeffs[j]
	}
	return y
}

// Y lets a Polynomial serve as an equilibrium curve.
func (p Polynomial) Y(x float64) float64 {
	return p.Eval(x)
}

// Degree of the polynomial, -1 for the empty polynomial.
func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Derivative returns dp/dx.
func (p Polynomial) Derivative() Polynomial {
	d := Polynomial{Offset: p.Offset, Scale: p.Scale}
	if len(p.Coeffs) <= 1 {
		d.Coeffs = []float64{0}
		return d
	}
	d.Coeffs = make([]float64, len(p.Coeffs)-1)
	for j := 1; j < len(p.Coeffs); j++ {
		d.Coeffs[j-1] = float64(j) * p.Coeffs[j] * p.Scale
	}
	return d
}
