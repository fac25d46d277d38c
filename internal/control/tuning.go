// Package control holds PID tuning rules for first-order-plus-dead-time
// processes, closed-loop step responses and open-loop responses of first
// and second order processes.
package control

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'control'
func tracer() tracing.Trace {
	return tracing.Select("control")
}

// ErrUnsupported is returned for a tuning method / controller combination
// that has no rule.
var ErrUnsupported = errors.New("unsupported tuning combination")

// FOPTD is the process K e^{-θs} / (τs + 1).
type FOPTD struct {
	K     float64 // gain
	Tau   float64 // time constant
	Theta float64 // dead time
}

// Validate requires all parameters to be positive.
func (p FOPTD) Validate() error {
	if !(p.K > 0) || !(p.Tau > 0) || !(p.Theta > 0) {
		return fmt.Errorf("K, tau and theta must be positive, have K=%g tau=%g theta=%g", p.K, p.Tau, p.Theta)
	}
	return nil
}

// Method names a tuning rule family.
type Method string

const (
	IMC   Method = "IMC"
	AMIGO Method = "AMIGO"
	ITAE  Method = "ITAE" // disturbance rejection
)

// Mode is the controller structure.
type Mode string

const (
	PI  Mode = "PI"
	PID Mode = "PID"
)

// ParseMethod accepts the method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case IMC, AMIGO, ITAE:
		return m, nil
	}
	return "", fmt.Errorf("unknown tuning method %q", s)
}

// ParseMode accepts "PI", "PID" or the page values "PI_FOPTD", "PID_FOPTD".
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "_FOPTD")
	switch m := Mode(s); m {
	case PI, PID:
		return m, nil
	}
	return "", fmt.Errorf("unknown controller mode %q", s)
}

// Modes lists the controller modes a method has rules for.
func (m Method) Modes() []Mode {
	if m == IMC {
		return []Mode{PI}
	}
	return []Mode{PI, PID}
}

// NeedsTauC is true for rules that take a closed-loop time constant.
func (m Method) NeedsTauC() bool {
	return m == IMC
}

// Settings are the controller parameters. TauD is zero for PI control.
type Settings struct {
	Method Method
	Mode   Mode
	Kc     float64
	TauI   float64
	TauD   float64
}

// Tune applies a tuning rule. tauC is only used by IMC.
func Tune(method Method, mode Mode, p FOPTD, tauC float64) (Settings, error) {
	if err := p.Validate(); err != nil {
		return Settings{}, err
	}
	K, tau, theta := p.K, p.Tau, p.Theta
	s := Settings{Method: method, Mode: mode}
	switch {
	case method == IMC && mode == PI:
		if !(tauC > 0) {
			return Settings{}, fmt.Errorf("IMC needs a positive closed-loop time constant, have %g", tauC)
		}
		s.Kc = tau / (K * (tauC + theta))
		s.TauI = tau
	case method == AMIGO && mode == PI:
		s.Kc = 0.15/K + (0.35-theta*tau/((theta+tau)*(theta+tau)))*(tau/K/theta)
		s.TauI = 0.35*theta + 13*theta*tau*tau/(tau*tau+12*theta*tau+7*theta*theta)
	case method == AMIGO && mode == PID:
		s.Kc = 1 / K * (0.2 + 0.45*tau/theta)
		s.TauI = (0.4*theta + 0.8*tau) * theta / (theta + 0.1*tau)
		s.TauD = 0.5 * theta * tau / (0.3*theta + tau)
	case method == ITAE && mode == PI:
		r := theta / tau
		s.Kc = 0.859 * math.Pow(r, -0.977) / K
		s.TauI = tau / (0.674 * math.Pow(r, -0.68))
	case method == ITAE && mode == PID:
		r := theta / tau
		s.Kc = 1.357 * math.Pow(r, -0.947) / K
		s.TauI = tau / (0.842 * math.Pow(r, -0.738))
		s.TauD = tau * 0.381 * math.Pow(r, 0.995)
	default:
		return Settings{}, fmt.Errorf("%w: %s %s", ErrUnsupported, method, mode)
	}
	tracer().Debugf("%s-%s for %+v: Kc=%.4g tauI=%.4g tauD=%.4g", method, mode, p, s.Kc, s.TauI, s.TauD)
	return s, nil
}
