package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/portfolio_go/internal/analysis"
)

// sweepGrid exposes the stage counts of a sweep as a heat map grid: columns
// are feed qualities, rows reflux ratios. Cells are addressed by index so
// uneven reflux grids still draw as equal rectangles.
type sweepGrid struct {
	s *analysis.SweepResults
}

func (g sweepGrid) Dims() (c, r int) { return len(g.s.Qs), len(g.s.Rs) }
func (g sweepGrid) Z(c, r int) float64 { return g.s.Cell(r, c).StageValue() }
func (g sweepGrid) X(c int) float64 { return float64(c) }
func (g sweepGrid) Y(r int) float64 { return float64(r) }

// StageRange returns the smallest and largest feasible stage count, (0, 1)
// when there is none.
func StageRange(s *analysis.SweepResults) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range s.Cells {
		if v := c.StageValue(); !math.IsNaN(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}

// CreateHeatmapPlot draws the stage count over the (q, R) sweep grid.
// Infeasible design points are gray.
func CreateHeatmapPlot(s *analysis.SweepResults, plotTitle string) ([]byte, error) {
	if s == nil || len(s.Cells) == 0 {
		return nil, fmt.Errorf("no sweep results to plot heatmap")
	}
	if len(s.Cells) != len(s.Rs)*len(s.Qs) {
		return nil, fmt.Errorf("incomplete sweep: %d cells for a %dx%d grid", len(s.Cells), len(s.Rs), len(s.Qs))
	}

	p := plot.New()
	p.Title.Text = plotTitle
	p.X.Label.Text = "Feed quality q"
	p.Y.Label.Text = "Reflux ratio R"

	xTicks := make([]plot.Tick, len(s.Qs))
	for i, q := range s.Qs {
		xTicks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("%.2f", q)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min, p.X.Max = -0.5, float64(len(s.Qs))-0.5

	yTicks := make([]plot.Tick, len(s.Rs))
	for i, r := range s.Rs {
		yTicks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("%.2f", r)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min, p.Y.Max = -0.5, float64(len(s.Rs))-0.5

	// many stages is the expensive end and draws hot
	hm := plotter.NewHeatMap(sweepGrid{s}, palette.Heat(12, 1))
	hm.Min, hm.Max = StageRange(s)
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	tracer().Debugf("heat map %q: stages %g..%g", plotTitle, hm.Min, hm.Max)
	return writePNG(p, vg.Points(800), vg.Points(500))
}
