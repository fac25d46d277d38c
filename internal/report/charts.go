package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/user/portfolio_go/internal/analysis"
	"github.com/user/portfolio_go/internal/mccabe"
	"github.com/user/portfolio_go/internal/numeric"
	"github.com/user/portfolio_go/internal/thermo"
)

// heatColors runs from few stages (cool) to many (hot).
var heatColors = []string{"#313695", "#4575b4", "#74add1", "#abd9e9", "#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026"}

func chartGlobals(fig Figure) []charts.GlobalOpts {
	x := opts.XAxis{Type: "value", Name: fig.XLabel, NameLocation: "middle", NameGap: 30}
	y := opts.YAxis{Type: "value", Name: fig.YLabel, Scale: opts.Bool(true)}
	if fig.XRange != nil {
		x.Min, x.Max = fig.XRange[0], fig.XRange[1]
	}
	if fig.YRange != nil {
		y.Min, y.Max = fig.YRange[0], fig.YRange[1]
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "520px", PageTitle: fig.Title}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(y),
	}
}

func lineData(l Line) []opts.LineData {
	pts := xys(l.X, l.Y)
	data := make([]opts.LineData, len(pts))
	for i, p := range pts {
		data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}

// LineChart builds an interactive chart of fig on numeric axes. Non-finite
// points are dropped, the chart JSON cannot carry them.
func LineChart(fig Figure) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartGlobals(fig)...)
	for _, l := range fig.Lines {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}
		if l.Dashed {
			seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 1}))
		}
		line.AddSeries(l.Name, lineData(l), seriesOpts...)
	}
	return line
}

// BarChart draws one bar series per line over the category labels; only
// the Y values of the lines are used.
func BarChart(title, yLabel string, categories []string, bars ...Line) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px", PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)
	bar.SetXAxis(categories)
	for _, b := range bars {
		data := make([]opts.BarData, len(categories))
		for i := range data {
			v := 0.0
			if i < len(b.Y) && !math.IsNaN(b.Y[i]) && !math.IsInf(b.Y[i], 0) {
				v = b.Y[i]
			}
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(b.Name, data)
	}
	return bar
}

// McCabeFigure collects the series of a McCabe-Thiele diagram: fitted
// equilibrium curve, diagonal, operating lines and the stage staircase.
func McCabeFigure(d *mccabe.Diagram) Figure {
	unit := [2]float64{0, 1}
	fig := Figure{
		Title:  McCabeTitle(d),
		XLabel: fmt.Sprintf("x %s", d.Comp1),
		YLabel: fmt.Sprintf("y %s", d.Comp1),
		XRange: &unit,
		YRange: &unit,
	}
	fx := numeric.Linspace(0, 1, 201)
	fy := make([]float64, len(fx))
	for i, x := range fx {
		fy[i] = d.Curve.Y(x)
	}
	fig.Lines = append(fig.Lines,
		Line{Name: "Equilibrium", X: fx, Y: fy},
		Line{Name: "y = x", X: []float64{0, 1}, Y: []float64{0, 1}, Dashed: true},
	)
	if l := d.Lines; l != nil {
		for _, s := range []struct {
			name string
			pts  [2]mccabe.Point
		}{
			{"Rectifying line", l.RectifyingSection()},
			{"Feed line", l.FeedSection()},
			{"Stripping line", l.StrippingSection()},
		} {
			fig.Lines = append(fig.Lines, Line{
				Name: s.name,
				X:    []float64{s.pts[0].X, s.pts[1].X},
				Y:    []float64{s.pts[0].Y, s.pts[1].Y},
			})
		}
	}
	stairs := Line{Name: fmt.Sprintf("%d stages", d.Stages)}
	for i, s := range d.Segments {
		if i == 0 {
			stairs.X, stairs.Y = append(stairs.X, s.From.X), append(stairs.Y, s.From.Y)
		}
		stairs.X, stairs.Y = append(stairs.X, s.To.X), append(stairs.Y, s.To.Y)
	}
	fig.Lines = append(fig.Lines, stairs)
	return fig
}

// McCabeChart is the interactive version of CreateMcCabePlot.
func McCabeChart(d *mccabe.Diagram) *charts.Line {
	return LineChart(McCabeFigure(d))
}

// PhaseFigure plots bubble and dew curves of an isobaric (T-x-y) or
// isothermal (P-x-y) sample.
func PhaseFigure(c *thermo.Curve) Figure {
	fig := Figure{XLabel: fmt.Sprintf("x, y %s", c.Comp1)}
	unit := [2]float64{0, 1}
	fig.XRange = &unit
	values, label := c.T, "Temperature (K)"
	if c.Condition.T > 0 {
		values, label = c.P, "Pressure (bar)"
		fig.Title = fmt.Sprintf("P-x-y of %s + %s at %s", c.Comp1, c.Comp2, c.Condition)
	} else {
		fig.Title = fmt.Sprintf("T-x-y of %s + %s at %s", c.Comp1, c.Comp2, c.Condition)
	}
	fig.YLabel = label
	fig.Lines = []Line{
		{Name: "Bubble point", X: c.X, Y: values},
		{Name: "Dew point", X: c.Y, Y: values},
	}
	return fig
}

// SweepChart draws the stage count over the (q, R) grid. Infeasible cells
// are left empty.
func SweepChart(s *analysis.SweepResults, title string) (*charts.HeatMap, error) {
	if s == nil || len(s.Cells) != len(s.Rs)*len(s.Qs) || len(s.Cells) == 0 {
		return nil, fmt.Errorf("no sweep results to chart")
	}
	qs := make([]string, len(s.Qs))
	for i, q := range s.Qs {
		qs[i] = fmt.Sprintf("%.2f", q)
	}
	rs := make([]string, len(s.Rs))
	for i, r := range s.Rs {
		rs[i] = fmt.Sprintf("%.2f", r)
	}
	data := make([]opts.HeatMapData, 0, len(s.Cells))
	for i := range s.Rs {
		for j := range s.Qs {
			var v interface{} = "-"
			if st := s.Cell(i, j).StageValue(); !math.IsNaN(st) {
				v = st
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, v}})
		}
	}
	lo, hi := StageRange(s)
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "560px", PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "q", Data: qs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "R", Data: rs}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.AddSeries("Stages", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm, nil
}

// RenderCharts writes a standalone HTML page holding the charts.
func RenderCharts(w io.Writer, title string, cs ...components.Charter) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering charts %q: %w", title, err)
	}
	return nil
}
