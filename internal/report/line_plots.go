package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/portfolio_go/internal/analysis"
	"github.com/user/portfolio_go/internal/mccabe"
	"github.com/user/portfolio_go/internal/numeric"
)

// tracer writes to trace with key 'report'
func tracer() tracing.Trace {
	return tracing.Select("report")
}

// Line is one named x/y series.
type Line struct {
	Name   string
	X, Y   []float64
	Dashed bool
}

// Figure describes a line plot. Nil ranges are fitted to the data.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Lines  []Line
	XRange *[2]float64
	YRange *[2]float64
}

var plotColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}, // Blue
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // Orange
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // Green
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // Red
	color.RGBA{R: 128, G: 0, B: 128, A: 255},      // Purple
	color.RGBA{G: 128, B: 128, A: 255},            // Teal
}

var dashes = []vg.Length{vg.Points(5), vg.Points(5)}

// xys drops non-finite points, plotter.NewLine rejects them.
func xys(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) || math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}

func addLine(p *plot.Plot, l Line, c color.Color, width vg.Length) error {
	pts := xys(l.X, l.Y)
	if len(pts) < 2 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create line for %s: %v", l.Name, err)
	}
	line.Color = c
	line.Width = width
	if l.Dashed {
		line.Dashes = dashes
	}
	p.Add(line)
	if l.Name != "" {
		p.Legend.Add(l.Name, line)
	}
	return nil
}

// RefluxFigure plots the stage count over the reflux ratios of the first
// feed quality of s. Infeasible ratios leave gaps, the minimum reflux is a
// dashed vertical line.
func RefluxFigure(s *analysis.SweepResults) Figure {
	var rs, stages []float64
	top := 0.0
	for _, c := range s.Cells {
		if c.QIndex != 0 {
			continue
		}
		rs = append(rs, c.R)
		stages = append(stages, c.StageValue())
		if c.Feasible {
			top = math.Max(top, float64(c.Stages))
		}
	}
	fig := Figure{
		Title:  "Stages vs. Reflux Ratio",
		XLabel: "Reflux ratio R",
		YLabel: "Equilibrium stages",
		Lines:  []Line{{Name: "Stages", X: rs, Y: stages}},
	}
	if !math.IsNaN(s.MinReflux) && top > 0 {
		fig.Lines = append(fig.Lines, Line{
			Name:   "Minimum reflux",
			X:      []float64{s.MinReflux, s.MinReflux},
			Y:      []float64{0, top},
			Dashed: true,
		})
	}
	return fig
}

// CreateLinePlot renders fig as a PNG of the given size.
func CreateLinePlot(fig Figure, width, height vg.Length) ([]byte, error) {
	if len(fig.Lines) == 0 {
		return nil, fmt.Errorf("no data to plot")
	}
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Add(plotter.NewGrid())
	for i, l := range fig.Lines {
		if err := addLine(p, l, plotColors[i%len(plotColors)], vg.Points(1.5)); err != nil {
			return nil, err
		}
	}
	if fig.XRange != nil {
		p.X.Min, p.X.Max = fig.XRange[0], fig.XRange[1]
	}
	if fig.YRange != nil {
		p.Y.Min, p.Y.Max = fig.YRange[0], fig.YRange[1]
	}
	p.Legend.Top = true
	return writePNG(p, width, height)
}

func writePNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}

// McCabeTitle names the diagram after the binary and, when known, its
// condition.
func McCabeTitle(d *mccabe.Diagram) string {
	if d.Condition.Validate() != nil {
		return fmt.Sprintf("McCabe-Thiele Method for %s + %s", d.Comp1, d.Comp2)
	}
	return fmt.Sprintf("McCabe-Thiele Method for %s + %s at %s", d.Comp1, d.Comp2, d.Condition)
}

// CreateMcCabePlot draws the equilibrium samples and fitted curve, the
// diagonal, the three operating lines and the stage staircase with stage
// numbers.
func CreateMcCabePlot(d *mccabe.Diagram) ([]byte, error) {
	if d == nil || d.Result == nil {
		return nil, fmt.Errorf("no McCabe-Thiele result to plot")
	}
	p := plot.New()
	p.Title.Text = McCabeTitle(d)
	p.X.Label.Text = fmt.Sprintf("Liquid mole fraction %s", d.Comp1)
	p.Y.Label.Text = fmt.Sprintf("Vapor mole fraction %s", d.Comp1)
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = 0, 1, 0, 1
	p.Add(plotter.NewGrid())

	samples, err := plotter.NewScatter(xys(d.X, d.Y))
	if err != nil {
		return nil, fmt.Errorf("failed to create sample scatter: %v", err)
	}
	samples.Color = plotColors[0]
	samples.Radius = vg.Points(1.5)
	p.Add(samples)
	p.Legend.Add("VLE data", samples)

	fx := numeric.Linspace(0, 1, 201)
	fy := make([]float64, len(fx))
	for i, x := range fx {
		fy[i] = d.Curve.Y(x)
	}
	type styled struct {
		Line
		color color.Color
	}
	lines := []styled{
		{Line{Name: "Equilibrium fit", X: fx, Y: fy}, plotColors[0]},
		{Line{X: []float64{0, 1}, Y: []float64{0, 1}, Dashed: true}, color.Gray{Y: 128}},
	}
	if l := d.Lines; l != nil {
		for i, s := range []struct {
			name string
			pts  [2]mccabe.Point
		}{
			{"Rectifying line", l.RectifyingSection()},
			{"Feed line", l.FeedSection()},
			{"Stripping line", l.StrippingSection()},
		} {
			xs := []float64{s.pts[0].X, s.pts[1].X}
			ys := []float64{s.pts[0].Y, s.pts[1].Y}
			lines = append(lines, styled{Line{Name: s.name, X: xs, Y: ys}, plotColors[1+i]})
		}
	}
	for _, l := range lines {
		if err := addLine(p, l.Line, l.color, vg.Points(1.5)); err != nil {
			return nil, err
		}
	}

	stairs := make([]float64, 0, 2*len(d.Segments)+1)
	stairsY := make([]float64, 0, cap(stairs))
	for i, s := range d.Segments {
		if i == 0 {
			stairs, stairsY = append(stairs, s.From.X), append(stairsY, s.From.Y)
		}
		stairs, stairsY = append(stairs, s.To.X), append(stairsY, s.To.Y)
	}
	if err := addLine(p, Line{Name: fmt.Sprintf("%d stages", d.Stages), X: stairs, Y: stairsY}, color.Black, vg.Points(1)); err != nil {
		return nil, err
	}
	if len(d.Steps) > 0 {
		labels := plotter.XYLabels{XYs: make(plotter.XYs, len(d.Steps)), Labels: make([]string, len(d.Steps))}
		for i, s := range d.Steps {
			labels.XYs[i] = plotter.XY{X: s.X, Y: s.Y}
			labels.Labels[i] = fmt.Sprintf("%d", s.Number)
		}
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("failed to create stage labels: %v", err)
		}
		l.Offset = vg.Point{X: vg.Points(-8), Y: vg.Points(2)}
		p.Add(l)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	tracer().Debugf("McCabe-Thiele plot: %d stages, %d segments", d.Stages, len(d.Segments))
	return writePNG(p, vg.Points(600), vg.Points(600))
}
