package numeric

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	xs := Linspace(0, 1, 5)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, xs)
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1))
}

func TestLinspaceEndpointsExact(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, n := range []int{2, 7, 21, 200, 301} {
		for _, hi := range []float64{2, 0.3, 30, 1e-3} {
			xs := Linspace(0.1, hi, n)
			require.Len(t, xs, n)
			assert.Equal(t, 0.1, xs[0], "n=%d hi=%g", n, hi)
			assert.Equal(t, hi, xs[n-1], "n=%d hi=%g", n, hi)
		}
	}
}

func TestPolyFitRecoversQuadratic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	xs := Linspace(0, 1, 21)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 0.5 + 2*x - 3*x*x
	}
	p, err := PolyFit(xs, ys, 2)
	require.NoError(t, err)
	for _, x := range []float64{0, 0.13, 0.5, 0.77, 1} {
		assert.InDelta(t, 0.5+2*x-3*x*x, p.Eval(x), 1e-9)
	}
	d := p.Derivative()
	assert.InDelta(t, 2-6*0.3, d.Eval(0.3), 1e-9)
	assert.Equal(t, 2, p.Degree())
}

func TestPolyFitHighDegreeStaysAccurate(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	xs := Linspace(0, 1, 101)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2.5 * x / (1 + 1.5*x)
	}
	p, err := PolyFit(xs, ys, 10)
	require.NoError(t, err)
	for _, x := range []float64{0.05, 0.35, 0.66, 0.95} {
		assert.InDelta(t, 2.5*x/(1+1.5*x), p.Y(x), 1e-5)
	}
}

func TestPolyFitTooFewPoints(t *testing.T) {
	_, err := PolyFit([]float64{0, 1}, []float64{0, 1}, 2)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	_, err = PolyFit([]float64{0, 1, 2}, []float64{0, 1}, 1)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
}

func TestRootFinders(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := func(x float64) float64 { return x*x - 2 }
	r, err := Brent(f, 0, 2, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, r, 1e-10)
	r, err = Bisect(f, 0, 2, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, r, 1e-10)
	_, err = Brent(f, 2, 3, 1e-12)
	assert.True(t, errors.Is(err, ErrNoBracket))
}

func TestFindRootTakesFirstSignChange(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// roots at 0.2 and 0.7
	f := func(x float64) float64 { return (x - 0.2) * (x - 0.7) }
	r, err := FindRoot(f, 0, 1, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, r, 1e-10)
	_, err = FindRoot(func(x float64) float64 { return 1 + x*x }, 0, 1, 10)
	assert.True(t, errors.Is(err, ErrNoBracket))
}

func TestSolveIVPExponentialDecay(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	decay := func(_ float64, y, dydt []float64) {
		dydt[0] = -y[0]
		dydt[1] = -2 * y[1]
	}
	tEval := Linspace(0, 5, 51)
	sol, err := SolveIVP(context.Background(), decay, 0, 5, []float64{1, 3}, tEval,
		ODEOptions{RelTol: 1e-8, AbsTol: 1e-10})
	require.NoError(t, err)
	require.Len(t, sol.T, len(tEval))
	for i, tt := range sol.T {
		assert.InDelta(t, tEval[i], tt, 1e-12)
		assert.InDelta(t, math.Exp(-tt), sol.Y[i][0], 1e-6)
		assert.InDelta(t, 3*math.Exp(-2*tt), sol.Y[i][1], 1e-6)
	}
	assert.Len(t, sol.Component(1), len(tEval))
}

func TestSolveIVPRejectsBadEvalTimes(t *testing.T) {
	noop := func(_ float64, _, dydt []float64) { dydt[0] = 0 }
	_, err := SolveIVP(context.Background(), noop, 0, 1, []float64{1}, []float64{0.5, 0.2}, ODEOptions{})
	assert.Error(t, err)
	_, err = SolveIVP(context.Background(), noop, 1, 0, []float64{1}, nil, ODEOptions{})
	assert.Error(t, err)
}

func TestSolveIVPHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	grow := func(_ float64, y, dydt []float64) { dydt[0] = y[0] }
	_, err := SolveIVP(ctx, grow, 0, 1, []float64{1}, []float64{1}, ODEOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
