package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/econ"
	"github.com/user/portfolio_go/internal/parser"
	"github.com/user/portfolio_go/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is an entry of the navigation bar.
type Page struct {
	Path     string
	Name     string
	Template string
}

// Pages in navigation order.
var Pages = []Page{
	{"/", "About", "index"},
	{"/mccabe", "McCabe-Thiele Interactive Plot", "mccabe"},
	{"/kinetics", "Kinetics Graph", "kinetics"},
	{"/PIDTuning", "PID Tuning", "pidtuning"},
	{"/processdynamics", "Process Dynamics", "processdynamics"},
	{"/chemtools", "Chemistry Tools", "chemtools"},
	{"/chemeecon", "Chemical Engineering Economics", "chemeecon"},
	{"/latex-converter", "LaTeX Converter", "latex"},
	{"/menu", "Dining Menu", "menu"},
	{"/dropchance", "Drop Chance Calculator", "dropchance"},
	{"/jplyrics", "Japanese Lyrics Furigana Toggle", "jplyrics"},
	{"/sandbox", "Sandbox", "sandbox"},
	{"/youtube-downloader", "YouTube Downloader", "downloader"},
}

func pageOf(tmpl string) Page {
	for _, p := range Pages {
		if p.Template == tmpl {
			return p
		}
	}
	return Page{Template: tmpl}
}

// view is what every page template is executed with.
type view struct {
	Page  Page
	Pages []Page
	Query template.URL // query of the request, reused by chart links
	Error string
	Data  interface{}
}

var funcs = template.FuncMap{
	"money":   econ.Money,
	"abbr":    econ.Abbreviate,
	"pct":     econ.Percent,
	"formula": parser.FormulaParts,
	"num": func(v float64) string {
		if math.IsNaN(v) {
			return "n/a"
		}
		return strconv.FormatFloat(v, 'g', 6, 64)
	},
	"fixed": func(digits int, v float64) string {
		return strconv.FormatFloat(v, 'f', digits, 64)
	},
	// trusted is for markup the domain packages already escaped.
	"trusted": func(s string) template.HTML { return template.HTML(s) },
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, p := range Pages {
		t, err := template.New(p.Template).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+p.Template+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", p.Template, err)
		}
		r.pages[p.Template] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("no template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// render shows a page. Domain errors do not fail the request, the page
// shows the message instead.
func render(c echo.Context, tmpl string, data interface{}, err error) error {
	v := view{
		Page:  pageOf(tmpl),
		Pages: Pages,
		Query: template.URL(c.QueryString()),
		Data:  data,
	}
	if err != nil {
		tracer().Debugf("%s: %v", c.Path(), err)
		v.Error = err.Error()
	}
	return c.Render(http.StatusOK, tmpl, v)
}

// renderCharts writes a standalone chart page.
func renderCharts(c echo.Context, title string, cs ...components.Charter) error {
	var buf bytes.Buffer
	if err := report.RenderCharts(&buf, title, cs...); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// chartHTML renders charts for an inline frame; a failure leaves the frame
// empty.
func chartHTML(title string, cs ...components.Charter) string {
	var buf bytes.Buffer
	if err := report.RenderCharts(&buf, title, cs...); err != nil {
		tracer().Errorf("%v", err)
		return ""
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// form reads typed request values and collects what could not be parsed.
type form struct {
	c    echo.Context
	errs []string
}

func newForm(c echo.Context) *form {
	return &form{c: c}
}

func (f *form) str(name, def string) string {
	if v := strings.TrimSpace(f.c.FormValue(name)); v != "" {
		return v
	}
	return def
}

func (f *form) float(name string, def float64) float64 {
	s := strings.TrimSpace(f.c.FormValue(name))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		f.errs = append(f.errs, fmt.Sprintf("%s: %q is not a number", name, s))
		return def
	}
	return v
}

func (f *form) int(name string, def int) int {
	s := strings.TrimSpace(f.c.FormValue(name))
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f.errs = append(f.errs, fmt.Sprintf("%s: %q is not a whole number", name, s))
		return def
	}
	return v
}

func (f *form) bool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(f.c.FormValue(name))) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func (f *form) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid input: %s", strings.Join(f.errs, "; "))
}
