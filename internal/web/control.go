package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/control"
	"github.com/user/portfolio_go/internal/report"
)

// --- PID tuning -------------------------------------------------------------

type pidData struct {
	Method   control.Method
	Mode     control.Mode
	Process  control.FOPTD
	TauC     float64
	Methods  []control.Method
	Settings *control.Settings
	Response *control.Response
	Chart    string
}

func tunePID(c echo.Context) (*pidData, error) {
	f := newForm(c)
	data := &pidData{
		Process: control.FOPTD{
			K:     f.float("K", 1),
			Tau:   f.float("tau", 1),
			Theta: f.float("theta", 1),
		},
		TauC:    f.float("tauc", 1),
		Methods: []control.Method{control.IMC, control.AMIGO, control.ITAE},
	}
	if err := f.err(); err != nil {
		return data, err
	}
	method, mode := f.str("method", ""), f.str("mode", "")
	if method == "" || mode == "" {
		return data, nil
	}
	var err error
	if data.Method, err = control.ParseMethod(method); err != nil {
		return data, err
	}
	if data.Mode, err = control.ParseMode(mode); err != nil {
		return data, err
	}
	settings, err := control.Tune(data.Method, data.Mode, data.Process, data.TauC)
	if err != nil {
		return data, err
	}
	data.Settings = &settings
	data.Response, err = control.ClosedLoopStep(c.Request().Context(), data.Process, settings, 0, 0)
	return data, err
}

func pidFigure(r *control.Response) report.Figure {
	fig := report.Figure{
		Title:  "Closed-Loop Step Response",
		XLabel: "Time",
		YLabel: "Output",
	}
	if r != nil {
		fig.Lines = []report.Line{
			{Name: "Output", X: r.T, Y: r.Y},
			{Name: "Setpoint", X: []float64{r.T[0], r.T[len(r.T)-1]}, Y: []float64{1, 1}, Dashed: true},
		}
	}
	return fig
}

func (s *Server) pidPage(c echo.Context) error {
	data, err := tunePID(c)
	if err == nil && data.Response != nil {
		data.Chart = chartHTML("PID Tuning", report.LineChart(pidFigure(data.Response)))
	}
	return render(c, "pidtuning", data, err)
}

func (s *Server) pidChart(c echo.Context) error {
	data, err := tunePID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return renderCharts(c, "PID Tuning", report.LineChart(pidFigure(data.Response)))
}

// --- Process dynamics -------------------------------------------------------

type dynamicsData struct {
	Dynamics control.Dynamics
	Lock     bool
	Series   *control.Series
	Chart    string
}

// simulateDynamics reads the experiment. With lock set the axes posted
// back by the page (xmax, ymax) are kept.
func simulateDynamics(c echo.Context) (*dynamicsData, error) {
	f := newForm(c)
	data := &dynamicsData{
		Dynamics: control.Dynamics{
			Order:   control.Order(f.int("order", int(control.FirstOrder))),
			Forcing: control.Forcing(f.str("forcing", string(control.Step))),
			K:       f.float("K", 1),
			Tau:     f.float("tau", 1),
			Zeta:    f.float("zeta", 0.5),
			M:       f.float("M", 1),
		},
		Lock: f.bool("lock"),
	}
	var lock *control.Axes
	if data.Lock {
		lock = &control.Axes{
			X: [2]float64{0, f.float("xmax", 0)},
			Y: [2]float64{0, f.float("ymax", 0)},
		}
	}
	if err := f.err(); err != nil {
		return data, err
	}
	var err error
	data.Series, err = data.Dynamics.Simulate(lock)
	return data, err
}

func dynamicsFigure(s *control.Series) report.Figure {
	return report.Figure{
		Title:  s.Title,
		XLabel: "Time",
		YLabel: "Response",
		XRange: &s.Axes.X,
		YRange: &s.Axes.Y,
		Lines: []report.Line{
			{Name: "Output y(t)", X: s.T, Y: s.Y},
			{Name: "Input u(t)", X: s.T, Y: s.U, Dashed: true},
		},
	}
}

func (s *Server) dynamicsPage(c echo.Context) error {
	data, err := simulateDynamics(c)
	if err == nil {
		data.Chart = chartHTML("Process Dynamics", report.LineChart(dynamicsFigure(data.Series)))
	}
	return render(c, "processdynamics", data, err)
}

func (s *Server) dynamicsChart(c echo.Context) error {
	data, err := simulateDynamics(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return renderCharts(c, "Process Dynamics", report.LineChart(dynamicsFigure(data.Series)))
}
