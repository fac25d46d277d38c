package control

import (
	"fmt"
	"math"

	"github.com/user/portfolio_go/internal/numeric"
)

// Forcing is the input signal applied to an open-loop process.
type Forcing string

const (
	Step Forcing = "step"
	Ramp Forcing = "ramp"
)

// Order of the process model.
type Order int

const (
	FirstOrder  Order = 1
	SecondOrder Order = 2
)

// DynamicsPoints is the number of samples of a dynamics plot.
const DynamicsPoints = 100

// Dynamics describes an open-loop experiment: process gain K, time
// constant Tau, damping Zeta (second order only) and input magnitude M.
type Dynamics struct {
	Order   Order
	Forcing Forcing
	K       float64
	Tau     float64
	Zeta    float64
	M       float64
}

// Validate checks the model. Ramp forcing is only defined for first order.
func (d Dynamics) Validate() error {
	if !(d.Tau > 0) {
		return fmt.Errorf("time constant must be positive, have %g", d.Tau)
	}
	switch d.Order {
	case FirstOrder:
	case SecondOrder:
		if !(d.Zeta > 0) {
			return fmt.Errorf("damping ratio must be positive, have %g", d.Zeta)
		}
		if d.Forcing != Step {
			return fmt.Errorf("second order %s response is not available", d.Forcing)
		}
	default:
		return fmt.Errorf("unsupported process order %d", d.Order)
	}
	if d.Forcing != Step && d.Forcing != Ramp {
		return fmt.Errorf("unknown forcing function %q", d.Forcing)
	}
	return nil
}

// Title is the chart title for the experiment.
func (d Dynamics) Title() string {
	order := "First"
	if d.Order == SecondOrder {
		order = "Second"
	}
	kind := "Step"
	if d.Forcing == Ramp {
		kind = "Ramp"
	}
	return order + " Order " + kind + " Function Response"
}

// Output is the process response y(t).
func (d Dynamics) Output(t float64) float64 {
	KM := d.K * d.M
	if d.Order == SecondOrder {
		return KM * secondOrderStep(d.Tau, d.Zeta, t)
	}
	e := math.Exp(-t / d.Tau)
	if d.Forcing == Ramp {
		return KM*(e-1) + KM*t
	}
	return KM * (1 - e)
}

// Input is the forcing u(t).
func (d Dynamics) Input(t float64) float64 {
	if d.Forcing == Ramp {
		return d.M * t
	}
	return d.M
}

// unit step response of 1/(τ²s² + 2ζτs + 1)
func secondOrderStep(tau, zeta, t float64) float64 {
	switch {
	case numeric.Is0(zeta - 1):
		return 1 - (1+t/tau)*math.Exp(-t/tau)
	case zeta < 1:
		s := math.Sqrt(1 - zeta*zeta)
		w := s / tau
		return 1 - math.Exp(-zeta*t/tau)*(math.Cos(w*t)+zeta/s*math.Sin(w*t))
	default:
		s := math.Sqrt(zeta*zeta - 1)
		// written with decaying exponentials to stay finite for large t
		a := math.Exp((-zeta + s) * t / tau)
		b := math.Exp((-zeta - s) * t / tau)
		return 1 - (0.5*(a+b) + zeta/s*0.5*(a-b))
	}
}

// Axes are plot ranges.
type Axes struct {
	X [2]float64
	Y [2]float64
}

// DefaultAxes returns [0, 5τ] (10τ for second order) and a y range with
// ten percent headroom above the response.
func (d Dynamics) DefaultAxes() Axes {
	tEnd := 5 * d.Tau
	if d.Order == SecondOrder {
		tEnd = 10 * d.Tau
	}
	ax := Axes{X: [2]float64{0, tEnd}}
	switch {
	case d.Order == FirstOrder && d.Forcing == Step:
		ax.Y[1] = 1.1 * d.K * d.M
	default:
		top := math.Inf(-1)
		for _, t := range numeric.Linspace(0, tEnd, DynamicsPoints) {
			top = math.Max(top, d.Output(t))
		}
		ax.Y[1] = 1.1 * top
	}
	if ax.Y[1] <= 0 {
		ax.Y[1] = 1
	}
	return ax
}

// Series holds a sampled response with its input.
type Series struct {
	Title string
	T     []float64
	Y     []float64
	U     []float64
	Axes  Axes
}

// Simulate samples the response. With lock non-nil those axes are kept and
// the time grid spans the locked x range, otherwise DefaultAxes are used.
func (d Dynamics) Simulate(lock *Axes) (*Series, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ax := d.DefaultAxes()
	if lock != nil && lock.X[1] > lock.X[0] && lock.Y[1] > lock.Y[0] {
		ax = *lock
	}
	s := &Series{Title: d.Title(), Axes: ax}
	s.T = numeric.Linspace(ax.X[0], ax.X[1], DynamicsPoints)
	s.Y = make([]float64, len(s.T))
	s.U = make([]float64, len(s.T))
	for i, t := range s.T {
		s.Y[i] = d.Output(t)
		s.U[i] = d.Input(t)
	}
	tracer().Debugf("%s: K=%g tau=%g M=%g, y(end)=%g", s.Title, d.K, d.Tau, d.M, s.Y[len(s.Y)-1])
	return s, nil
}
