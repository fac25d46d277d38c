package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/econ"
	"github.com/user/portfolio_go/internal/report"
)

// Calculator is an entry of the economics dropdown.
type Calculator struct {
	Value string
	Label string
}

// Calculators in dropdown order.
var Calculators = []Calculator{
	{"compounding_interest", "Compounding Interest"},
	{"ear", "EAR and max EAR"},
	{"npv", "NPV"},
	{"inflation", "Inflationary Effects"},
	{"annuity", "Annuity"},
	{"perpetuity", "Perpetuity"},
	{"depreciation", "Depreciation"},
}

type econData struct {
	Calc        string
	Calculators []Calculator
	PV          float64 // present value, cash flow or FCI
	Rate        float64 // percent
	Inflation   float64 // percent
	Years       int
	PerYear     int
	Salvage     float64
	Method      string // depreciation: straight or macrs
	Flows       string // comma separated cash flows for NPV
	Compare     bool
	Summary     []string
	Chart       string
	charts      []components.Charter
}

func (d *econData) curveChart(title, xLabel, yLabel string, curves ...econ.Curve) {
	fig := report.Figure{Title: title, XLabel: xLabel, YLabel: yLabel}
	for _, c := range curves {
		fig.Lines = append(fig.Lines, report.Line{Name: c.Name, X: c.X, Y: c.Y})
	}
	d.charts = append(d.charts, report.LineChart(fig))
}

func parseFlows(s string) ([]float64, error) {
	var flows []float64
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("cash flow %q is not a number", field)
		}
		flows = append(flows, v)
	}
	return flows, nil
}

// calculate runs the selected calculator; Summary lines and charts are
// filled in on success.
func calculate(c echo.Context) (*econData, error) {
	f := newForm(c)
	d := &econData{
		Calc:        f.str("calc", "compounding_interest"),
		Calculators: Calculators,
		PV:          f.float("pv", 1000),
		Rate:        f.float("rate", 5),
		Inflation:   f.float("inflation", 2),
		Years:       f.int("years", 10),
		PerYear:     f.int("n", 1),
		Salvage:     f.float("salvage", 100),
		Method:      f.str("method", "straight"),
		Flows:       f.str("flows", ""),
		Compare:     f.bool("compare"),
	}
	if err := f.err(); err != nil {
		return d, err
	}
	switch d.Calc {
	case "compounding_interest":
		in, err := econ.CompoundInterest(d.PV, d.Rate, d.Years, d.PerYear)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, "Future value with compounding: "+econ.Money(in.FutureCompound))
		curves := []econ.Curve{in.Compound}
		if d.Compare {
			curves = append(curves, in.Simple)
			d.Summary = append(d.Summary,
				"Future value with simple interest: "+econ.Money(in.FutureSimple),
				"Difference: "+econ.Money(in.Difference()))
		}
		d.curveChart("Future Value", "Years", "Value ($)", curves...)

	case "ear":
		curve, err := econ.EARCurve(d.Rate, d.PerYear)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, fmt.Sprintf("EAR at %d compounding periods per year: %s", d.PerYear, econ.Percent(econ.EAR(d.Rate, d.PerYear))))
		curves := []econ.Curve{curve}
		if d.Compare {
			maxEAR := econ.MaxEAR(d.Rate)
			d.Summary = append(d.Summary, "Maximum EAR (continuous compounding): "+econ.Percent(maxEAR))
			curves = append(curves, econ.Curve{
				Name: "Maximum EAR",
				X:    []float64{curve.X[0], curve.X[len(curve.X)-1]},
				Y:    []float64{maxEAR, maxEAR},
			})
		}
		d.curveChart("Effective Annual Rate", "Compounding periods per year", "EAR", curves...)

	case "npv":
		curve, err := econ.DiscountCurve(d.PV, d.Rate, d.Years)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, fmt.Sprintf("Present value of %s in %d years: %s",
			econ.Money(d.PV), d.Years, econ.Money(econ.PresentValue(d.PV, d.Rate, d.Years))))
		d.curveChart("Discounted Value", "Years", "Value ($)", curve)
		if d.Flows != "" {
			flows, err := parseFlows(d.Flows)
			if err != nil {
				return d, err
			}
			d.Summary = append(d.Summary, "NPV of the cash flows: "+econ.Money(econ.NPV(d.Rate, flows)))
			years := make([]string, len(flows))
			discounted := make([]float64, len(flows))
			for y, cf := range flows {
				years[y] = strconv.Itoa(y)
				discounted[y] = econ.PresentValue(cf, d.Rate, y)
			}
			d.charts = append(d.charts, report.BarChart("Cash Flows", "$", years,
				report.Line{Name: "Cash flow", Y: flows},
				report.Line{Name: "Discounted", Y: discounted}))
		}

	case "inflation":
		curve, err := econ.PurchasingPowerCurve(d.PV, d.Rate, d.Inflation, d.Years)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, fmt.Sprintf("Purchasing power after %d years: %s", d.Years, econ.Money(curve.Y[len(curve.Y)-1])))
		d.curveChart("Inflationary Effects", "Years", "Value in today's dollars", curve)

	case "annuity":
		curve, err := econ.AnnuityCurve(d.PV, d.Rate, d.Years)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, fmt.Sprintf("Annual payment over %d years: %s", d.Years, econ.Money(econ.AnnuityPayment(d.PV, d.Rate, d.Years))))
		d.curveChart("Annuity", "Years", "Payment ($)", curve)

	case "perpetuity":
		pv, err := econ.Perpetuity(d.PV, d.Rate)
		if err != nil {
			return d, err
		}
		curve, err := econ.PerpetuityCurve(d.PV, d.Rate)
		if err != nil {
			return d, err
		}
		d.Summary = append(d.Summary, "Present value of the perpetuity: "+econ.Abbreviate(pv))
		d.curveChart("Perpetuity", "Cash flow ($)", "Present value ($)", curve)

	case "depreciation":
		dep, err := econ.Depreciate(d.PV, d.Salvage, d.Years)
		if err != nil {
			return d, err
		}
		periods := make([]string, len(dep.Periods))
		for i, p := range dep.Periods {
			periods[i] = strconv.Itoa(int(p))
		}
		straight := report.Line{Name: "Straight line", X: dep.Periods, Y: dep.Straight}
		macrs := report.Line{Name: "MACRS", X: dep.Periods, Y: dep.MACRS}
		var bars []report.Line
		switch {
		case d.Compare:
			bars = []report.Line{straight, macrs}
		case d.Method == "macrs":
			bars = []report.Line{macrs}
		default:
			bars = []report.Line{straight}
		}
		d.Summary = append(d.Summary,
			"Total straight-line depreciation: "+econ.Money(dep.TotalStraight()),
			"Total MACRS depreciation: "+econ.Money(dep.TotalMACRS()))
		d.charts = append(d.charts, report.BarChart("Depreciation", "$", periods, bars...))
		book := report.Figure{Title: "Book Value", XLabel: "Year", YLabel: "$"}
		for _, b := range bars {
			book.Lines = append(book.Lines, report.Line{Name: b.Name, X: b.X, Y: econ.BookValue(d.PV, b.Y)})
		}
		d.charts = append(d.charts, report.LineChart(book))

	default:
		return d, fmt.Errorf("unknown calculator %q", d.Calc)
	}
	return d, nil
}

func (s *Server) econPage(c echo.Context) error {
	data, err := calculate(c)
	if err == nil {
		data.Chart = chartHTML("Chemical Engineering Economics", data.charts...)
	}
	return render(c, "chemeecon", data, err)
}

func (s *Server) econChart(c echo.Context) error {
	data, err := calculate(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return renderCharts(c, "Chemical Engineering Economics", data.charts...)
}
