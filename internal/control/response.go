package control

import (
	"context"
	"fmt"
	"math"

	"github.com/user/portfolio_go/internal/numeric"
)

// poly is a polynomial in s with ascending coefficients.
type poly []float64

func (p poly) mul(q poly) poly {
	out := make(poly, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

func (p poly) add(q poly) poly {
	n := max(len(p), len(q))
	out := make(poly, n)
	for i := range out {
		if i < len(p) {
			out[i] += p[i]
		}
		if i < len(q) {
			out[i] += q[i]
		}
	}
	return out
}

// TransferFunction is Num(s)/Den(s).
type TransferFunction struct {
	Num, Den poly
}

// Process returns the FOPTD model with the dead time replaced by its first
// order Padé approximation (1 - θs/2)/(1 + θs/2).
func (p FOPTD) Process() TransferFunction {
	return TransferFunction{
		Num: poly{p.K}.mul(poly{1, -p.Theta / 2}),
		Den: poly{1, p.Tau}.mul(poly{1, p.Theta / 2}),
	}
}

// Controller returns the ideal PI(D) controller Kc(1 + 1/(τI s) + τD s).
func (s Settings) Controller() TransferFunction {
	return TransferFunction{
		Num: poly{s.Kc / s.TauI, s.Kc, s.Kc * s.TauD},
		Den: poly{0, 1},
	}
}

// ClosedLoop returns G/(1+G) for the open loop G = num/den.
func ClosedLoop(open TransferFunction) TransferFunction {
	return TransferFunction{Num: open.Num, Den: open.Den.add(open.Num)}
}

// InSeries connects two transfer functions.
func InSeries(a, b TransferFunction) TransferFunction {
	return TransferFunction{Num: a.Num.mul(b.Num), Den: a.Den.mul(b.Den)}
}

// trim drops vanishing leading coefficients.
func (p poly) trim() poly {
	n := len(p)
	for n > 1 && math.Abs(p[n-1]) < 1e-14 {
		n--
	}
	return p[:n]
}

// StepResponse simulates the unit step response of tf at the given times by
// integrating its controllable canonical state space realisation.
func (tf TransferFunction) StepResponse(ctx context.Context, t []float64) ([]float64, error) {
	den := tf.Den.trim()
	num := tf.Num.trim()
	n := len(den) - 1
	if n < 1 {
		return nil, fmt.Errorf("transfer function has no dynamics")
	}
	if len(num)-1 > n {
		return nil, fmt.Errorf("improper transfer function (numerator degree %d > denominator degree %d)", len(num)-1, n)
	}
	lead := den[n]
	a := make([]float64, n) // monic denominator coefficients a0..a(n-1)
	for i := range a {
		a[i] = den[i] / lead
	}
	b := make([]float64, n+1)
	for i := range num {
		b[i] = num[i] / lead
	}
	d := b[n] // direct feedthrough
	c := make([]float64, n)
	for i := range c {
		c[i] = b[i] - d*a[i]
	}
	f := func(_ float64, x, dx []float64) {
		for i := 0; i < n-1; i++ {
			dx[i] = x[i+1]
		}
		acc := 1.0 // unit step input
		for i := 0; i < n; i++ {
			acc -= a[i] * x[i]
		}
		dx[n-1] = acc
	}
	sol, err := numeric.SolveIVP(ctx, f, t[0], t[len(t)-1], make([]float64, n), t,
		numeric.ODEOptions{RelTol: 1e-6, AbsTol: 1e-9})
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(sol.T))
	for k, x := range sol.Y {
		v := d
		for i := 0; i < n; i++ {
			v += c[i] * x[i]
		}
		y[k] = v
	}
	return y, nil
}

// Response is a sampled time series.
type Response struct {
	T []float64
	Y []float64
}

// ClosedLoopStep returns the servo response to a unit setpoint step of the
// FOPTD process, with its dead time in first order Padé form, under the ideal
// PI(D) controller s. The closed loop is integrated with RK45 over [0, tEnd]
// at n points (defaults 30 and 200). Negative outputs are clipped to zero.
func ClosedLoopStep(ctx context.Context, p FOPTD, s Settings, tEnd float64, n int) (*Response, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(s.TauI > 0) {
		return nil, fmt.Errorf("integral time must be positive, have %g", s.TauI)
	}
	if tEnd <= 0 {
		tEnd = 30
	}
	if n < 2 {
		n = 200
	}
	tf := ClosedLoop(InSeries(p.Process(), s.Controller()))
	t := numeric.Linspace(0, tEnd, n)
	y, err := tf.StepResponse(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("closed loop simulation: %w", err)
	}
	for i := range y {
		y[i] = math.Max(y[i], 0)
	}
	return &Response{T: t, Y: y}, nil
}
