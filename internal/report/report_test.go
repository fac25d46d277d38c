package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/user/portfolio_go/internal/analysis"
	"github.com/user/portfolio_go/internal/mccabe"
	"github.com/user/portfolio_go/internal/numeric"
	"github.com/user/portfolio_go/internal/thermo"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// volatile is a constant relative volatility curve, alpha = 2.5.
var volatile = mccabe.CurveFunc(func(x float64) float64 { return 2.5 * x / (1 + 1.5*x) })

func testDiagram(t *testing.T) *mccabe.Diagram {
	t.Helper()
	x := numeric.Linspace(0, 1, 21)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = volatile(x[i])
	}
	res, err := mccabe.Step(volatile, mccabe.DefaultParams(), mccabe.Options{})
	require.NoError(t, err)
	return &mccabe.Diagram{
		Comp1:     "benzene",
		Comp2:     "toluene",
		Condition: thermo.Condition{P: 1.01325},
		X:         x,
		Y:         y,
		Result:    res,
	}
}

func testSweep(t *testing.T) *analysis.SweepResults {
	t.Helper()
	s, err := analysis.SweepGrid(volatile, mccabe.DefaultParams(), []float64{0.5, 1, 2, 4}, []float64{0, 0.5, 1, 1.5}, mccabe.Options{})
	require.NoError(t, err)
	return s
}

func TestCreateLinePlot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	fig := Figure{
		Title: "Response",
		Lines: []Line{
			{Name: "y", X: []float64{0, 1, 2}, Y: []float64{0, 0.5, math.NaN()}},
			{Name: "u", X: []float64{0, 1, 2}, Y: []float64{1, 1, 1}, Dashed: true},
		},
	}
	img, err := CreateLinePlot(fig, vg.Points(300), vg.Points(200))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateLinePlot(Figure{}, vg.Points(300), vg.Points(200))
	assert.Error(t, err)
}

func TestXYsDropsNonFinite(t *testing.T) {
	pts := xys([]float64{0, 1, 2, 3}, []float64{1, math.Inf(1), math.NaN(), 4})
	require.Len(t, pts, 2)
	assert.Equal(t, 3.0, pts[1].X)
}

func TestCreateMcCabePlot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	d := testDiagram(t)
	assert.Equal(t, "McCabe-Thiele Method for benzene + toluene at 1.01325 bar", McCabeTitle(d))
	img, err := CreateMcCabePlot(d)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateMcCabePlot(nil)
	assert.Error(t, err)
}

func TestHeatmap(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := testSweep(t)
	lo, hi := StageRange(s)
	assert.Less(t, lo, hi)
	img, err := CreateHeatmapPlot(s, "Stages")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	lo, hi = StageRange(&analysis.SweepResults{})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
	_, err = CreateHeatmapPlot(&analysis.SweepResults{}, "empty")
	assert.Error(t, err)
}

func TestBuildPDFReport(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	d := testDiagram(t)
	s := testSweep(t)
	diagram, err := CreateMcCabePlot(d)
	require.NoError(t, err)
	heat, err := CreateHeatmapPlot(s, "Stages")
	require.NoError(t, err)

	refluxSweep, err := analysis.SweepReflux(d.Curve, d.Params, []float64{1.5, 2, 3, 5}, mccabe.Options{})
	require.NoError(t, err)
	reflux, err := CreateLinePlot(RefluxFigure(refluxSweep), 6*vg.Inch, 4*vg.Inch)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = BuildPDFReport(&buf, d, s, map[string][]byte{ImageDiagram: diagram, ImageHeatmap: heat, ImageReflux: reflux})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	buf.Reset()
	require.NoError(t, BuildPDFReport(&buf, d, nil, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, BuildPDFReport(&buf, nil, nil, nil))
}

func TestRefluxFigure(t *testing.T) {
	s := testSweep(t)
	fig := RefluxFigure(s)
	require.NotEmpty(t, fig.Lines)
	stages := fig.Lines[0]
	assert.Equal(t, s.Rs, stages.X)
	require.Len(t, stages.Y, len(s.Rs))
	if len(fig.Lines) == 2 {
		assert.True(t, fig.Lines[1].Dashed)
		assert.Equal(t, s.MinReflux, fig.Lines[1].X[0])
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "total reflux", formatRatio(mccabe.TotalReflux))
	assert.Equal(t, "n/a", formatRatio(math.NaN()))
	assert.Equal(t, "1.500", formatRatio(1.5))
}

func TestCharts(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	d := testDiagram(t)
	fig := McCabeFigure(d)
	require.NotEmpty(t, fig.Lines)
	stairs := fig.Lines[len(fig.Lines)-1]
	assert.Len(t, stairs.X, len(d.Segments)+1)

	heat, err := SweepChart(testSweep(t), "Stage sensitivity")
	require.NoError(t, err)
	bar := BarChart("Depreciation", "$", []string{"1", "2"}, Line{Name: "Straight", Y: []float64{10, math.NaN()}})

	var buf bytes.Buffer
	require.NoError(t, RenderCharts(&buf, "McCabe-Thiele", McCabeChart(d), heat, bar))
	html := buf.String()
	assert.True(t, strings.Contains(html, "McCabe-Thiele"))
	assert.True(t, strings.Contains(html, "Stage sensitivity"))

	_, err = SweepChart(nil, "none")
	assert.Error(t, err)
}

func TestPhaseFigure(t *testing.T) {
	c, err := thermo.Txy("benzene", "toluene", 1.01325, 11)
	require.NoError(t, err)
	fig := PhaseFigure(c)
	assert.True(t, strings.HasPrefix(fig.Title, "T-x-y"))
	assert.Equal(t, "Temperature (K)", fig.YLabel)
	require.Len(t, fig.Lines, 2)
	assert.Equal(t, c.Y, fig.Lines[1].X)
}
