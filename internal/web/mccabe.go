package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/labstack/echo/v4"
	"gonum.org/v1/plot/vg"

	"github.com/user/portfolio_go/internal/analysis"
	"github.com/user/portfolio_go/internal/mccabe"
	"github.com/user/portfolio_go/internal/parser"
	"github.com/user/portfolio_go/internal/report"
	"github.com/user/portfolio_go/internal/thermo"
)

// mccabeInput are the page controls. Mode "T" fixes the temperature (K),
// "P" the pressure (bar).
type mccabeInput struct {
	Comp1, Comp2 string
	Mode         string
	Value        float64
	Params       mccabe.Params
	Sweep        bool
}

func parseMcCabe(c echo.Context) (mccabeInput, error) {
	f := newForm(c)
	def := mccabe.DefaultParams()
	in := mccabeInput{
		Comp1: f.str("comp1", "methanol"),
		Comp2: f.str("comp2", "water"),
		Mode:  strings.ToUpper(f.str("mode", "T")),
		Params: mccabe.Params{
			XD: f.float("xd", def.XD),
			XB: f.float("xb", def.XB),
			XF: f.float("xf", def.XF),
			Q:  f.float("q", def.Q),
			R:  f.float("R", def.R),
		},
		Sweep: f.bool("sweep"),
	}
	if in.Mode == "P" {
		in.Value = f.float("value", 1.01325)
	} else {
		in.Mode = "T"
		in.Value = f.float("value", 300)
	}
	return in, f.err()
}

func (in mccabeInput) condition() thermo.Condition {
	if in.Mode == "P" {
		return thermo.Condition{P: in.Value}
	}
	return thermo.Condition{T: in.Value}
}

// Query re-encodes the controls for the chart, image and report links.
func (in mccabeInput) Query() template.URL {
	v := url.Values{}
	v.Set("comp1", in.Comp1)
	v.Set("comp2", in.Comp2)
	v.Set("mode", in.Mode)
	v.Set("value", formatFloat(in.Value))
	v.Set("xd", formatFloat(in.Params.XD))
	v.Set("xb", formatFloat(in.Params.XB))
	v.Set("xf", formatFloat(in.Params.XF))
	v.Set("q", formatFloat(in.Params.Q))
	v.Set("R", formatFloat(in.Params.R))
	if in.Sweep {
		v.Set("sweep", "on")
	}
	return template.URL(v.Encode())
}

type mccabeData struct {
	In          mccabeInput
	Components  []string
	Diagram     *mccabe.Diagram
	MinReflux   float64
	Sweep       *analysis.SweepResults
	Chart       string
	Custom      string // pasted x,y samples
	ParseErrors []string
}

// mccabeSweep varies R around the minimum reflux and q over DefaultQs.
func mccabeSweep(d *mccabe.Diagram) (*analysis.SweepResults, error) {
	rs := analysis.RefluxGrid(d.Curve, d.Params)
	return analysis.SweepGrid(d.Curve, d.Params, rs, analysis.DefaultQs(), mccabe.Options{})
}

// mccabeCharts are the diagram, the phase diagram of the binary when it
// is computed from component data, and the sweep heat map when requested.
func mccabeCharts(d *mccabe.Diagram, sweep *analysis.SweepResults) []components.Charter {
	cs := []components.Charter{report.McCabeChart(d)}
	if d.Condition.Validate() == nil {
		var phase *thermo.Curve
		var err error
		if d.Condition.T > 0 {
			phase, err = thermo.Pxy(d.Comp1, d.Comp2, d.Condition.T, thermo.DefaultPoints)
		} else {
			phase, err = thermo.Txy(d.Comp1, d.Comp2, d.Condition.P, thermo.DefaultPoints)
		}
		if err == nil {
			cs = append(cs, report.LineChart(report.PhaseFigure(phase)))
		}
	}
	if sweep != nil {
		if hm, err := report.SweepChart(sweep, "Stages over feed quality and reflux ratio"); err == nil {
			cs = append(cs, hm)
		}
	}
	return cs
}

func (s *Server) mccabe(in mccabeInput) (*mccabeData, error) {
	data := &mccabeData{In: in, Components: thermo.Names()}
	d, err := mccabe.NewDiagram(in.Comp1, in.Comp2, in.condition(), in.Params, mccabe.Options{})
	if err != nil {
		return data, err
	}
	return data, s.finishMcCabe(data, d)
}

func (s *Server) finishMcCabe(data *mccabeData, d *mccabe.Diagram) error {
	data.Diagram = d
	data.MinReflux = -1
	if rmin, _, err := mccabe.MinimumReflux(d.Curve, d.Params); err == nil {
		data.MinReflux = rmin
	}
	if data.In.Sweep {
		sweep, err := mccabeSweep(d)
		if err != nil {
			return err
		}
		data.Sweep = sweep
	}
	data.Chart = chartHTML(report.McCabeTitle(d), mccabeCharts(d, data.Sweep)...)
	return nil
}

func (s *Server) mccabePage(c echo.Context) error {
	in, err := parseMcCabe(c)
	if err != nil {
		return render(c, "mccabe", &mccabeData{In: in, Components: thermo.Names()}, err)
	}
	data, err := s.mccabe(in)
	return render(c, "mccabe", data, err)
}

// mccabeCustom steps off a column on pasted equilibrium samples.
func (s *Server) mccabeCustom(c echo.Context) error {
	in, err := parseMcCabe(c)
	data := &mccabeData{In: in, Components: thermo.Names(), Custom: c.FormValue("vle")}
	if err != nil {
		return render(c, "mccabe", data, err)
	}
	vle, err := parser.ParseVLEData(strings.NewReader(data.Custom))
	if err != nil {
		return render(c, "mccabe", data, err)
	}
	data.ParseErrors = vle.ParseErrors
	comp1, comp2 := vle.Labels[0], vle.Labels[1]
	if comp1 == "" {
		comp1, comp2 = "light component", "heavy component"
	}
	d := &mccabe.Diagram{Comp1: comp1, Comp2: comp2, X: vle.X, Y: vle.Y}
	d.Result, err = mccabe.Construct(vle.X, vle.Y, in.Params, mccabe.Options{Degree: min(mccabe.DefaultDegree, vle.Len()-1)})
	if err != nil {
		return render(c, "mccabe", data, err)
	}
	return render(c, "mccabe", data, s.finishMcCabe(data, d))
}

func (s *Server) mccabeDiagram(c echo.Context) (*mccabe.Diagram, error) {
	in, err := parseMcCabe(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := mccabe.NewDiagram(in.Comp1, in.Comp2, in.condition(), in.Params, mccabe.Options{})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return d, nil
}

func (s *Server) mccabeChart(c echo.Context) error {
	d, err := s.mccabeDiagram(c)
	if err != nil {
		return err
	}
	var sweep *analysis.SweepResults
	if newForm(c).bool("sweep") {
		if sweep, err = mccabeSweep(d); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return renderCharts(c, report.McCabeTitle(d), mccabeCharts(d, sweep)...)
}

func (s *Server) mccabePlot(c echo.Context) error {
	d, err := s.mccabeDiagram(c)
	if err != nil {
		return err
	}
	img, err := report.CreateMcCabePlot(d)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

// writeReport renders the PDF design report of d, always with the
// sensitivity sweep.
func writeReport(w io.Writer, d *mccabe.Diagram) error {
	images := map[string][]byte{}
	if img, err := report.CreateMcCabePlot(d); err == nil {
		images[report.ImageDiagram] = img
	} else {
		tracer().Errorf("McCabe-Thiele plot: %v", err)
	}
	rs := analysis.RefluxGrid(d.Curve, d.Params)
	if reflux, err := analysis.SweepReflux(d.Curve, d.Params, rs, mccabe.Options{}); err == nil {
		if img, err := report.CreateLinePlot(report.RefluxFigure(reflux), 6*vg.Inch, 4*vg.Inch); err == nil {
			images[report.ImageReflux] = img
		}
	}
	sweep, err := mccabeSweep(d)
	if err != nil {
		tracer().Errorf("sweep for report: %v", err)
		sweep = nil
	} else if img, err := report.CreateHeatmapPlot(sweep, "Stages over feed quality and reflux ratio"); err == nil {
		images[report.ImageHeatmap] = img
	}
	return report.BuildPDFReport(w, d, sweep, images)
}

func (s *Server) mccabeReport(c echo.Context) error {
	d, err := s.mccabeDiagram(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := writeReport(&buf, d); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="mccabe_thiele_report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// WriteMcCabeReport writes the design report for the column described by
// query, which takes the parameters of the McCabe-Thiele page.
func (s *Server) WriteMcCabeReport(w io.Writer, query url.Values) error {
	req, err := http.NewRequest(http.MethodGet, "/mccabe/report.pdf?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	d, err := s.mccabeDiagram(s.Echo.NewContext(req, nil))
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return fmt.Errorf("%v", he.Message)
		}
		return err
	}
	return writeReport(w, d)
}
