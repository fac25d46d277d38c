// Package econ computes the engineering economics curves of the economics
// page: interest, effective rates, discounting, annuities, perpetuities,
// inflation and depreciation.
//
// Rates are given in percent, as entered on the page.
package econ

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'econ'
func tracer() tracing.Trace {
	return tracing.Select("econ")
}

// ErrInput flags parameters a calculation cannot work with.
var ErrInput = errors.New("invalid input")

func inputErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// Curve is one x/y series of a chart.
type Curve struct {
	Name string
	X    []float64
	Y    []float64
}

// --- Interest ---------------------------------------------------------------

// Interest is the compound vs. simple interest comparison.
type Interest struct {
	FutureCompound float64
	FutureSimple   float64
	Compound       Curve
	Simple         Curve
}

// Difference of compound over simple growth.
func (in *Interest) Difference() float64 {
	return in.FutureCompound - in.FutureSimple
}

// CompoundInterest grows pv over years with the annual rate compounded
// perYear times a year. The curves are sampled once per compounding period.
func CompoundInterest(pv, ratePct float64, years, perYear int) (*Interest, error) {
	if years <= 0 || perYear <= 0 {
		return nil, inputErr("years and compounds per year must be positive")
	}
	r := ratePct / 100
	periods := years * perYear
	periodRate := r / float64(perYear)
	in := &Interest{
		FutureCompound: pv * math.Pow(1+periodRate, float64(periods)),
		FutureSimple:   pv * (1 + float64(years)*r),
		Compound:       Curve{Name: "Future Value (Compound)"},
		Simple:         Curve{Name: "Future Value (Simple)"},
	}
	for k := 0; k <= periods; k++ {
		t := float64(k) / float64(perYear)
		in.Compound.X = append(in.Compound.X, t)
		in.Compound.Y = append(in.Compound.Y, pv*math.Pow(1+periodRate, float64(k)))
		in.Simple.X = append(in.Simple.X, t)
		in.Simple.Y = append(in.Simple.Y, pv*(1+r*t))
	}
	return in, nil
}

// --- Effective annual rate --------------------------------------------------

// EAR is the effective annual rate for an annual rate compounded n times.
func EAR(ratePct float64, n int) float64 {
	r := ratePct / 100
	return math.Pow(1+r/float64(n), float64(n)) - 1
}

// MaxEAR is the limit of continuous compounding.
func MaxEAR(ratePct float64) float64 {
	return math.Exp(ratePct/100) - 1
}

// EARCurve samples EAR for 1..n compounds per year.
func EARCurve(ratePct float64, n int) (Curve, error) {
	if n < 1 {
		return Curve{}, inputErr("number of compounds must be at least 1, have %d", n)
	}
	c := Curve{Name: "EAR"}
	for k := 1; k <= n; k++ {
		c.X = append(c.X, float64(k))
		c.Y = append(c.Y, EAR(ratePct, k))
	}
	return c, nil
}

// --- Discounting ------------------------------------------------------------

// PresentValue discounts a future amount over years at the discount rate.
func PresentValue(future, ratePct float64, years int) float64 {
	return future / math.Pow(1+ratePct/100, float64(years))
}

// DiscountCurve is the discounted value of amount for year 0..years.
func DiscountCurve(amount, ratePct float64, years int) (Curve, error) {
	if years <= 0 {
		return Curve{}, inputErr("years must be positive")
	}
	if ratePct <= -100 {
		return Curve{}, inputErr("discount rate must be above -100 %%")
	}
	c := Curve{Name: "Discounted Value"}
	for y := 0; y <= years; y++ {
		c.X = append(c.X, float64(y))
		c.Y = append(c.Y, PresentValue(amount, ratePct, y))
	}
	return c, nil
}

// NPV of cash flows, the first at year 0.
func NPV(ratePct float64, flows []float64) float64 {
	npv := 0.0
	for y, cf := range flows {
		npv += PresentValue(cf, ratePct, y)
	}
	return npv
}

// --- Annuity ----------------------------------------------------------------

// AnnuityPayment is the level end-of-year payment that repays pv over n
// years. At zero interest it is pv/n.
func AnnuityPayment(pv, ratePct float64, n int) float64 {
	r := ratePct / 100
	if r == 0 {
		return pv / float64(n)
	}
	g := math.Pow(1+r, float64(n))
	return pv * r * g / (g - 1)
}

// AnnuityCurve gives the payment for every term 1..maxYears.
func AnnuityCurve(pv, ratePct float64, maxYears int) (Curve, error) {
	if maxYears < 1 {
		return Curve{}, inputErr("number of years must be at least 1")
	}
	c := Curve{Name: "Annuity Payment"}
	for n := 1; n <= maxYears; n++ {
		c.X = append(c.X, float64(n))
		c.Y = append(c.Y, AnnuityPayment(pv, ratePct, n))
	}
	return c, nil
}

// --- Perpetuity -------------------------------------------------------------

// Perpetuity is the present value of a cash flow paid forever.
func Perpetuity(cashFlow, ratePct float64) (float64, error) {
	if ratePct <= 0 {
		return 0, inputErr("a perpetuity needs a positive interest rate")
	}
	return cashFlow / (ratePct / 100), nil
}

// PerpetuityCurve varies the cash flow in 100 steps of cashFlow/10.
func PerpetuityCurve(cashFlow, ratePct float64) (Curve, error) {
	if _, err := Perpetuity(cashFlow, ratePct); err != nil {
		return Curve{}, err
	}
	c := Curve{Name: "Present Value"}
	for i := 1; i <= 100; i++ {
		cf := float64(i) * cashFlow / 10
		pv, _ := Perpetuity(cf, ratePct)
		c.X = append(c.X, cf)
		c.Y = append(c.Y, pv)
	}
	return c, nil
}

// --- Inflation --------------------------------------------------------------

// PurchasingPower of pv after years at the nominal rate, deflated by
// inflation: pv·(1 + (r−i)/(1+i))^years.
func PurchasingPower(pv, ratePct, inflationPct float64, years int) (float64, error) {
	inf := inflationPct / 100
	if inf <= -1 {
		return 0, inputErr("inflation must be above -100 %%")
	}
	realRate := (ratePct/100 - inf) / (1 + inf)
	return pv * math.Pow(1+realRate, float64(years)), nil
}

// PurchasingPowerCurve samples PurchasingPower for year 0..years.
func PurchasingPowerCurve(pv, ratePct, inflationPct float64, years int) (Curve, error) {
	if years <= 0 {
		return Curve{}, inputErr("years must be positive")
	}
	c := Curve{Name: "Purchasing Power"}
	for y := 0; y <= years; y++ {
		v, err := PurchasingPower(pv, ratePct, inflationPct, y)
		if err != nil {
			return Curve{}, err
		}
		c.X = append(c.X, float64(y))
		c.Y = append(c.Y, v)
	}
	return c, nil
}
