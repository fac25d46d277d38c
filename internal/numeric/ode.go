package numeric

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrStepSize is returned when the adaptive integrator cannot meet the
// tolerance without shrinking the step below floating point resolution.
var ErrStepSize = errors.New("ode step size underflow")

// Derivative computes dy/dt at (t, y) into dydt.
type Derivative func(t float64, y, dydt []float64)

// ODEOptions tunes SolveIVP. Zero values select the defaults.
type ODEOptions struct {
	RelTol   float64 // default 1e-3
	AbsTol   float64 // default 1e-6
	MaxSteps int     // default 100000
}

// Solution holds the integrated states at the requested evaluation times.
// Y[i] is the state vector at T[i].
type Solution struct {
	T      []float64
	Y      [][]float64
	NSteps int
	NEvals int
}

// Component extracts the time series of state component k.
func (s *Solution) Component(k int) []float64 {
	out := make([]float64, len(s.Y))
	for i, y := range s.Y {
		out[i] = y[k]
	}
	return out
}

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// difference between the 5th and 4th order weights
	dpE = [7]float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40}
)

// SolveIVP integrates dy/dt = f(t, y) from t0 with y(t0) = y0 using the
// adaptive Dormand-Prince RK45 scheme and reports the state at every time in
// tEval. tEval must be sorted ascending within [t0, t1]; an empty tEval
// reports only t1.
func SolveIVP(ctx context.Context, f Derivative, t0, t1 float64, y0, tEval []float64, opts ODEOptions) (*Solution, error) {
	if t1 < t0 {
		return nil, fmt.Errorf("integration interval [%g, %g] is reversed", t0, t1)
	}
	if len(tEval) == 0 {
		tEval = []float64{t1}
	}
	for i, te := range tEval {
		if te < t0 || te > t1 || (i > 0 && te < tEval[i-1]) {
			return nil, fmt.Errorf("evaluation time %g outside [%g, %g] or unsorted", te, t0, t1)
		}
	}
	rtol, atol, maxSteps := opts.RelTol, opts.AbsTol, opts.MaxSteps
	if rtol <= 0 {
		rtol = 1e-3
	}
	if atol <= 0 {
		atol = 1e-6
	}
	if maxSteps <= 0 {
		maxSteps = 100000
	}

	n := len(y0)
	sol := &Solution{T: make([]float64, 0, len(tEval)), Y: make([][]float64, 0, len(tEval))}
	record := func(t float64, y []float64) {
		sol.T = append(sol.T, t)
		sol.Y = append(sol.Y, append([]float64(nil), y...))
	}

	y := append([]float64(nil), y0...)
	t := t0
	next := 0
	for next < len(tEval) && tEval[next] == t0 {
		record(t0, y)
		next++
	}
	if next == len(tEval) {
		return sol, nil
	}

	var k [7][]float64
	for i := range k {
		k[i] = make([]float64, n)
	}
	ytmp := make([]float64, n)
	ynew := make([]float64, n)

	f(t, y, k[0])
	sol.NEvals++
	h := initialStep(f, t, y, k[0], t1-t0, rtol, atol)
	sol.NEvals++

	for next < len(tEval) {
		select {
		case <-ctx.Done():
			return sol, ctx.Err()
		default:
		}
		if sol.NSteps >= maxSteps {
			return sol, fmt.Errorf("ode: step limit %d reached at t=%g", maxSteps, t)
		}
		target := tEval[next]
		clipped := false
		if t+h >= target {
			h = target - t
			clipped = true
		}
		if h <= 16*machEps*math.Max(1, math.Abs(t)) {
			if clipped {
				// Already at the evaluation point up to rounding.
				record(target, y)
				next++
				t = target
				h = math.Max(h, 1e-6*(t1-t0))
				continue
			}
			return sol, fmt.Errorf("%w at t=%g", ErrStepSize, t)
		}

		for s := 1; s < 7; s++ {
			for i := 0; i < n; i++ {
				acc := y[i]
				for j := 0; j < s; j++ {
					acc += h * dpA[s][j] * k[j][i]
				}
				ytmp[i] = acc
			}
			f(t+dpC[s]*h, ytmp, k[s])
			if s == 6 {
				copy(ynew, ytmp)
			}
		}
		sol.NEvals += 6

		errNorm := 0.0
		for i := 0; i < n; i++ {
			e := 0.0
			for s := 0; s < 7; s++ {
				e += dpE[s] * k[s][i]
			}
			e *= h
			sc := atol + rtol*math.Max(math.Abs(y[i]), math.Abs(ynew[i]))
			errNorm += (e / sc) * (e / sc)
		}
		if n > 0 {
			errNorm = math.Sqrt(errNorm / float64(n))
		}
		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
			return sol, fmt.Errorf("ode: state is not finite at t=%g", t)
		}

		if errNorm <= 1 {
			sol.NSteps++
			t += h
			copy(y, ynew)
			copy(k[0], k[6]) // first same as last
			if clipped {
				t = target
				record(t, y)
				next++
				for next < len(tEval) && tEval[next] == t {
					record(t, y)
					next++
				}
			}
		}
		factor := 10.0
		if errNorm > 0 {
			factor = math.Min(10, math.Max(0.2, 0.9*math.Pow(errNorm, -0.2)))
		}
		if errNorm > 1 {
			factor = math.Min(factor, 1)
		}
		h *= factor
	}
	tracer().Debugf("rk45: %d steps, %d evaluations over [%g, %g]", sol.NSteps, sol.NEvals, t0, t1)
	return sol, nil
}

// initialStep follows the heuristic of Hairer, Norsett and Wanner.
func initialStep(f Derivative, t float64, y, f0 []float64, span, rtol, atol float64) float64 {
	n := len(y)
	if n == 0 {
		return span
	}
	d0, d1 := 0.0, 0.0
	for i := 0; i < n; i++ {
		sc := atol + rtol*math.Abs(y[i])
		d0 += (y[i] / sc) * (y[i] / sc)
		d1 += (f0[i] / sc) * (f0[i] / sc)
	}
	d0 = math.Sqrt(d0 / float64(n))
	d1 = math.Sqrt(d1 / float64(n))
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)
	y1 := make([]float64, n)
	f1 := make([]float64, n)
	for i := range y1 {
		y1[i] = y[i] + h0*f0[i]
	}
	f(t+h0, y1, f1)
	d2 := 0.0
	for i := 0; i < n; i++ {
		sc := atol + rtol*math.Abs(y[i])
		d := (f1[i] - f0[i]) / sc
		d2 += d * d
	}
	d2 = math.Sqrt(d2/float64(n)) / h0
	var h1 float64
	if math.Max(d1, d2) <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 0.2)
	}
	return math.Min(math.Min(100*h0, h1), span)
}
