package web

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/kinetics"
	"github.com/user/portfolio_go/internal/parser"
	"github.com/user/portfolio_go/internal/report"
)

type kineticsData struct {
	Reactions string // one equation per line
	K         string
	C0        string
	TEnd      float64
	Equations []string
	Result    *kinetics.Result
	Chart     string
}

// simulateKinetics parses the page fields and integrates the network. An
// empty reaction field is not an error, there is just nothing to plot.
func simulateKinetics(c echo.Context) (*kineticsData, error) {
	f := newForm(c)
	data := &kineticsData{
		Reactions: c.FormValue("reactions"),
		K:         f.str("k", ""),
		C0:        f.str("c0", ""),
		TEnd:      f.float("tend", 10),
	}
	if err := f.err(); err != nil {
		return data, err
	}
	data.Equations = parser.SplitLines(data.Reactions)
	if len(data.Equations) == 0 {
		return data, nil
	}
	ks, err := parser.ParseRateConstants(data.K)
	if err != nil {
		return data, err
	}
	c0, err := parser.ParseConcentrations(data.C0)
	if err != nil {
		return data, err
	}
	net, err := kinetics.Parse(data.Equations, ks, c0)
	if err != nil {
		return data, err
	}
	data.Result, err = kinetics.Simulate(c.Request().Context(), net, kinetics.Options{TEnd: data.TEnd})
	return data, err
}

// kineticsFigure plots every species; the time axis ends at the steady
// state when one was reached.
func kineticsFigure(res *kinetics.Result) report.Figure {
	fig := report.Figure{
		Title:  "Concentration vs. Time",
		XLabel: "Time",
		YLabel: "Concentration",
	}
	for k, sp := range res.Species {
		fig.Lines = append(fig.Lines, report.Line{Name: sp, X: res.T, Y: res.C[k]})
	}
	if res.Steady && res.SteadyStateTime > 0 {
		fig.XRange = &[2]float64{0, res.SteadyStateTime}
	}
	return fig
}

// SteadyMessage describes when the profiles level off.
func (d *kineticsData) SteadyMessage() string {
	if d.Result == nil {
		return ""
	}
	if d.Result.Steady {
		return fmt.Sprintf("Steady state reached at t = %.3g.", d.Result.SteadyStateTime)
	}
	return fmt.Sprintf("No steady state within t = %g.", d.TEnd)
}

func (s *Server) kineticsPage(c echo.Context) error {
	data, err := simulateKinetics(c)
	if err == nil && data.Result != nil {
		data.Chart = chartHTML("Kinetics", report.LineChart(kineticsFigure(data.Result)))
	}
	return render(c, "kinetics", data, err)
}

func (s *Server) kineticsChart(c echo.Context) error {
	data, err := simulateKinetics(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fig := report.Figure{Title: "Concentration vs. Time", XLabel: "Time", YLabel: "Concentration"}
	if data.Result != nil {
		fig = kineticsFigure(data.Result)
	}
	return renderCharts(c, "Kinetics", report.LineChart(fig))
}
