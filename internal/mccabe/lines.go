package mccabe

import (
	"fmt"
	"math"
)

// Point is a position in the x-y diagram.
type Point struct {
	X, Y float64
}

// Lines are the three operating lines of a column: the rectifying line
// through (xd, xd), the feed line through (xf, xf) and the stripping line
// from (xb, xb) to the intersection of the other two.
type Lines struct {
	Params
	Intersection       Point // (xsol, ysol)
	FeedVertical       bool  // q = 1
	RectifyingVertical bool  // R = -1
	TotalReflux        bool  // R = +Inf, rectifying line is y = x
}

// NewLines computes the operating lines for p. Vertical feed and rectifying
// lines are handled as their own cases; the intersection must lie above the
// bottoms composition.
func NewLines(p Params) (*Lines, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l := &Lines{
		Params:             p,
		FeedVertical:       p.Q == 1,
		RectifyingVertical: p.R == VerticalRectifying,
		TotalReflux:        math.IsInf(p.R, 1),
	}
	switch {
	case l.FeedVertical && l.RectifyingVertical:
		return nil, fmt.Errorf("%w: feed line and rectifying line are both vertical", ErrInfeasible)
	case l.TotalReflux:
		l.Intersection = Point{p.XF, p.XF}
	case l.RectifyingVertical:
		l.Intersection = Point{p.XD, l.Feed(p.XD)}
	case l.FeedVertical:
		l.Intersection = Point{p.XF, l.Rectifying(p.XF)}
	default:
		mf, bf := p.Q/(p.Q-1), -p.XF/(p.Q-1)
		mr, br := p.R/(p.R+1), p.XD/(p.R+1)
		if math.Abs(mf-mr) < 1e-12 {
			return nil, fmt.Errorf("%w: feed line is parallel to the rectifying line (q=%g, R=%g)", ErrInfeasible, p.Q, p.R)
		}
		x := (br - bf) / (mf - mr)
		l.Intersection = Point{x, l.Rectifying(x)}
	}
	xs := l.Intersection.X
	if xs < p.XB || xs > p.XD+1e-12 {
		return nil, fmt.Errorf("%w: operating lines intersect at x=%.4f, outside [xb=%g, xd=%g]", ErrInfeasible, xs, p.XB, p.XD)
	}
	return l, nil
}

// Rectifying evaluates the rectifying line y = R/(R+1) x + xd/(R+1). It is
// NaN for a vertical rectifying line.
func (l *Lines) Rectifying(x float64) float64 {
	switch {
	case l.TotalReflux:
		return x
	case l.RectifyingVertical:
		return math.NaN()
	}
	return l.R/(l.R+1)*x + l.XD/(l.R+1)
}

// Feed evaluates the q-line y = q/(q-1) x - xf/(q-1). It is NaN for a
// vertical feed line.
func (l *Lines) Feed(x float64) float64 {
	if l.FeedVertical {
		return math.NaN()
	}
	return l.Q/(l.Q-1)*x - l.XF/(l.Q-1)
}

// Stripping evaluates the line through (xb, xb) and the intersection. When
// the intersection lies at xb the stripping section is empty and the
// rectifying line is used instead.
func (l *Lines) Stripping(x float64) float64 {
	s := l.Intersection
	if s.X <= l.XB {
		return l.Rectifying(x)
	}
	return (s.Y-l.XB)*(x-l.XB)/(s.X-l.XB) + l.XB
}

// RectifyingSection is the drawn part of the rectifying line, from the
// distillate point down to the intersection.
func (l *Lines) RectifyingSection() [2]Point {
	return [2]Point{{l.XD, l.XD}, l.Intersection}
}

// FeedSection runs from the feed point to the intersection.
func (l *Lines) FeedSection() [2]Point {
	return [2]Point{{l.XF, l.XF}, l.Intersection}
}

// StrippingSection runs from the bottoms point to the intersection.
func (l *Lines) StrippingSection() [2]Point {
	return [2]Point{{l.XB, l.XB}, l.Intersection}
}
