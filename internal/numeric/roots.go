package numeric

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoBracket is returned when a root finder is given an interval without a
// sign change.
var ErrNoBracket = errors.New("root not bracketed")

// DefaultTolerance is the absolute x tolerance of the root finders.
const DefaultTolerance = 1e-12

const maxRootIterations = 200

const machEps = 2.220446049250313e-16

// Bisect finds a root of f in [a, b] by interval halving.
func Bisect(f func(float64) float64, a, b, tol float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return math.NaN(), fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNoBracket, a, fa, b, fb)
	}
	for i := 0; i < maxRootIterations && math.Abs(b-a) > tol; i++ {
		m := a + (b-a)/2
		fm := f(m)
		if fm == 0 {
			return m, nil
		}
		if math.Signbit(fm) == math.Signbit(fa) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return a + (b-a)/2, nil
}

// Brent finds a root of f in [a, b] with Brent's method (inverse quadratic
// interpolation, secant and bisection steps).
func Brent(f func(float64) float64, a, b, tol float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return math.NaN(), fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNoBracket, a, fa, b, fb)
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	c, fc := a, fa
	d := b - a
	e := d
	for i := 0; i < maxRootIterations; i++ {
		if math.Signbit(fb) == math.Signbit(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*machEps*math.Abs(b) + tol/2
		xm := (c - b) / 2
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else if xm > 0 {
			b += tol1
		} else {
			b -= tol1
		}
		fb = f(b)
	}
	tracer().Infof("brent: iteration limit reached near x=%g", b)
	return b, nil
}

// FindRoot scans [lo, hi] from lo upwards in n sub-intervals and refines the
// first sign change it meets with Brent's method. It is the bracketing
// counterpart of a Newton iteration started at lo.
func FindRoot(f func(float64) float64, lo, hi float64, n int) (float64, error) {
	if n < 1 {
		n = 1
	}
	h := (hi - lo) / float64(n)
	a, fa := lo, f(lo)
	if fa == 0 {
		return lo, nil
	}
	for i := 1; i <= n; i++ {
		b := lo + float64(i)*h
		if i == n {
			b = hi
		}
		fb := f(b)
		if fb == 0 {
			return b, nil
		}
		if math.Signbit(fa) != math.Signbit(fb) {
			return Brent(f, a, b, DefaultTolerance)
		}
		a, fa = b, fb
	}
	return math.NaN(), fmt.Errorf("%w: no sign change in [%g, %g]", ErrNoBracket, lo, hi)
}
