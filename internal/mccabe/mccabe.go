/*
Package mccabe implements the McCabe-Thiele graphical construction for a
binary distillation column: operating lines from the distillate, bottoms and
feed compositions, feed quality q and reflux ratio R, and the staircase of
equilibrium stages between the equilibrium curve and those lines.

The construction starts at (xd, xd). Every stage is a horizontal step to the
equilibrium curve followed by a vertical step to the active operating line:
the rectifying line while the stage composition is above the feed/rectifying
intersection, the stripping line below it. Stepping stops once the liquid
composition reaches xb.
*/
package mccabe

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'mccabe'
func tracer() tracing.Trace {
	return tracing.Select("mccabe")
}

var (
	// ErrInvalidParams flags compositions or ratios outside their domain.
	ErrInvalidParams = errors.New("invalid column parameters")
	// ErrInfeasible flags operating lines that do not form a column.
	ErrInfeasible = errors.New("infeasible operating lines")
	// ErrStageLimit is returned when stepping pinches or does not reach xb
	// within the stage limit, i.e. the reflux is at or below its minimum.
	ErrStageLimit = errors.New("stage limit reached")
)

// TotalReflux as reflux ratio makes the rectifying line the diagonal.
var TotalReflux = math.Inf(1)

// VerticalRectifying is the reflux ratio at which the rectifying line is
// vertical.
const VerticalRectifying = -1.0

// Params are the column design inputs. Compositions are mole fractions of
// the light component.
type Params struct {
	XD float64 // distillate
	XB float64 // bottoms
	XF float64 // feed
	Q  float64 // feed quality, liquid fraction of the feed
	R  float64 // reflux ratio L/D
}

// DefaultParams are the design values the page opens with.
func DefaultParams() Params {
	return Params{XD: 0.9, XB: 0.1, XF: 0.5, Q: 0.5, R: 2}
}

// Validate checks 0 <= xb <= xf <= xd <= 1 and R >= 0, R = -1 or R = +Inf.
func (p Params) Validate() error {
	for _, v := range []float64{p.XD, p.XB, p.XF, p.Q, p.R} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN parameter", ErrInvalidParams)
		}
	}
	if p.XB < 0 || p.XD > 1 {
		return fmt.Errorf("%w: compositions must lie in [0, 1]", ErrInvalidParams)
	}
	if p.XB > p.XF || p.XF > p.XD {
		return fmt.Errorf("%w: need xb <= xf <= xd, have xb=%g xf=%g xd=%g", ErrInvalidParams, p.XB, p.XF, p.XD)
	}
	if p.R < 0 && p.R != VerticalRectifying {
		return fmt.Errorf("%w: reflux ratio %g is negative", ErrInvalidParams, p.R)
	}
	if math.IsInf(p.Q, 0) {
		return fmt.Errorf("%w: feed quality must be finite", ErrInvalidParams)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("xd=%g xb=%g xf=%g q=%g R=%g", p.XD, p.XB, p.XF, p.Q, p.R)
}

// Curve is an equilibrium curve y*(x).
type Curve interface {
	Y(x float64) float64
}

// CurveFunc adapts a plain function to a Curve.
type CurveFunc func(x float64) float64

// Y calls f.
func (f CurveFunc) Y(x float64) float64 { return f(x) }

// Section tells which operating line a stage steps down to.
type Section int

const (
	Rectifying Section = iota
	Stripping
)

func (s Section) String() string {
	if s == Rectifying {
		return "rectifying"
	}
	return "stripping"
}

// SegmentKind classifies the lines of the staircase.
type SegmentKind int

const (
	Horizontal SegmentKind = iota
	RectifyingVertical
	StrippingVertical
)

// Segment is one straight piece of the staircase.
type Segment struct {
	From, To Point
	Kind     SegmentKind
}

// Stage is one equilibrium stage: the liquid leaving it at X is in
// equilibrium with the vapor at Y.
type Stage struct {
	Number  int
	X, Y    float64
	Next    float64 // vapor composition on the operating line below
	Section Section
}

// Result of a McCabe-Thiele construction.
type Result struct {
	Params    Params
	Lines     *Lines // nil when no stepping was needed
	Curve     Curve
	Stages    int
	FeedStage int
	Steps     []Stage
	Segments  []Segment
	Warnings  []string
}

// Options tune the stepping.
type Options struct {
	MaxStages     int // default 100
	ScanIntervals int // root bracketing resolution on [0, x], default 200
	Degree        int // polynomial degree for Construct, default 10
}

const (
	DefaultMaxStages     = 100
	DefaultScanIntervals = 200
	DefaultDegree        = 10
)

func (o Options) withDefaults() Options {
	if o.MaxStages <= 0 {
		o.MaxStages = DefaultMaxStages
	}
	if o.ScanIntervals <= 0 {
		o.ScanIntervals = DefaultScanIntervals
	}
	if o.Degree <= 0 {
		o.Degree = DefaultDegree
	}
	return o
}
