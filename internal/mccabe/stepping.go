package mccabe

import (
	"errors"
	"fmt"
	"math"

	"github.com/user/portfolio_go/internal/numeric"
)

// BelowDiagonalWarning is reported when the equilibrium curve does not rise
// above the operating point, so no further stage can be stepped off.
const BelowDiagonalWarning = "Cannot perform McCabe-Thiele Method as equilibrium curve is below y=x at distillation composition"

// pinchTolerance is the smallest horizontal step counted as progress.
const pinchTolerance = 1e-9

// Step steps off equilibrium stages from (xd, xd) down to xb.
//
// If the curve does not rise above the distillate point, no stage is stepped
// and the result carries BelowDiagonalWarning. If the staircase runs into a
// pinch between the operating line and the curve, or xb is not reached within
// opts.MaxStages, the partial result is returned together with ErrStageLimit.
func Step(curve Curve, p Params, opts Options) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	res := &Result{Params: p, Curve: curve}
	if p.XB == p.XD {
		tracer().Debugf("xb = xd = %g, nothing to separate", p.XD)
		return res, nil
	}
	lines, err := NewLines(p)
	if err != nil {
		return nil, err
	}
	res.Lines = lines
	xsol := lines.Intersection.X

	x, y := p.XD, p.XD
	feedStage := 1
	for x > p.XB {
		if res.Stages >= opts.MaxStages {
			res.FeedStage = min(feedStage, res.Stages)
			return res, fmt.Errorf("%w: %d stages without reaching xb=%g (x=%.4f); reflux is at or below its minimum",
				ErrStageLimit, opts.MaxStages, p.XB, x)
		}
		xe, ok := equilibriumX(curve, y, x, opts.ScanIntervals)
		if res.Stages > 0 && (!ok || x-xe < pinchTolerance) {
			tracer().Infof("pinch after %d stages at x=%g y=%g", res.Stages, x, y)
			res.FeedStage = min(feedStage, res.Stages)
			return res, fmt.Errorf("%w: operating line pinches the equilibrium curve at x=%.4f after %d stages; reflux is at or below its minimum",
				ErrStageLimit, x, res.Stages)
		}
		if !ok || xe >= x {
			tracer().Infof("stepping stopped at x=%g y=%g", x, y)
			res.Warnings = append(res.Warnings, BelowDiagonalWarning)
			break
		}
		res.Segments = append(res.Segments, Segment{From: Point{x, y}, To: Point{xe, y}, Kind: Horizontal})
		stage := Stage{Number: res.Stages + 1, X: xe, Y: y}
		if xe > xsol || xsol <= p.XB {
			stage.Section = Rectifying
			stage.Next = lines.Rectifying(xe)
			res.Segments = append(res.Segments, Segment{From: Point{xe, y}, To: Point{xe, stage.Next}, Kind: RectifyingVertical})
			feedStage++
		} else {
			stage.Section = Stripping
			stage.Next = lines.Stripping(xe)
			res.Segments = append(res.Segments, Segment{From: Point{xe, y}, To: Point{xe, stage.Next}, Kind: StrippingVertical})
		}
		res.Steps = append(res.Steps, stage)
		res.Stages++
		x, y = xe, stage.Next
	}
	res.FeedStage = min(feedStage, res.Stages)
	tracer().Debugf("%s: %d stages, feed stage %d", p, res.Stages, res.FeedStage)
	return res, nil
}

// equilibriumX finds the liquid composition on the curve with vapor
// composition y, searching [0, x] upwards from 0. ok is false when the curve
// at x does not exceed y.
func equilibriumX(curve Curve, y, x float64, scan int) (float64, bool) {
	f := func(xv float64) float64 { return curve.Y(xv) - y }
	if !(f(x) > 0) {
		return x, false
	}
	if f(0) >= 0 {
		return 0, true
	}
	xe, err := numeric.FindRoot(f, 0, x, scan)
	if err != nil {
		return x, false
	}
	return xe, true
}

// MinimumReflux estimates the minimum reflux ratio from the pinch where the
// feed line meets the equilibrium curve. Tangent pinches of strongly
// non-ideal curves are not detected.
func MinimumReflux(curve Curve, p Params) (float64, Point, error) {
	if err := p.Validate(); err != nil {
		return math.NaN(), Point{}, err
	}
	var pinch Point
	if p.Q == 1 {
		pinch = Point{p.XF, curve.Y(p.XF)}
	} else {
		feed := func(x float64) float64 { return p.Q/(p.Q-1)*x - p.XF/(p.Q-1) }
		x, err := numeric.FindRoot(func(x float64) float64 { return curve.Y(x) - feed(x) }, 0, 1, DefaultScanIntervals)
		if err != nil {
			if errors.Is(err, numeric.ErrNoBracket) {
				return math.NaN(), Point{}, fmt.Errorf("%w: feed line does not meet the equilibrium curve", ErrInfeasible)
			}
			return math.NaN(), Point{}, err
		}
		pinch = Point{x, curve.Y(x)}
	}
	if pinch.Y <= pinch.X || pinch.Y >= p.XD {
		return math.NaN(), pinch, fmt.Errorf("%w: no pinch between the diagonal and xd at x=%.4f", ErrInfeasible, pinch.X)
	}
	return (p.XD - pinch.Y) / (pinch.Y - pinch.X), pinch, nil
}

// MinimumStages steps off the column at total reflux.
func MinimumStages(curve Curve, p Params, opts Options) (*Result, error) {
	p.R = TotalReflux
	return Step(curve, p, opts)
}

// Construct fits a polynomial equilibrium curve through the samples (x, y)
// and steps off the column.
func Construct(x, y []float64, p Params, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	poly, err := numeric.PolyFit(x, y, opts.Degree)
	if err != nil {
		return nil, fmt.Errorf("equilibrium curve fit: %w", err)
	}
	return Step(poly, p, opts)
}
