package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/portfolio_go/internal/lyrics"
)

func newTestServer(t *testing.T) *Server {
	cfg := DefaultConfig()
	cfg.DownloadDir = t.TempDir()
	cfg.MenuURL = "http://127.0.0.1:1/menu"
	cfg.PubChemURL = "http://127.0.0.1:1/rest/pug"
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(t *testing.T, s *Server, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

const benzeneToluene = "/mccabe?comp1=benzene&comp2=toluene&mode=P&value=1.01325"

func TestIndexListsPages(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, p := range Pages {
		assert.Contains(t, body, `href="`+p.Path+`"`)
	}
	assert.Contains(t, body, `class="active"`)
}

func TestEveryPageRenders(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	for _, p := range Pages {
		if p.Template == "menu" {
			continue // needs the dining page
		}
		rec := get(t, s, p.Path)
		assert.Equal(t, http.StatusOK, rec.Code, p.Path)
		assert.Contains(t, rec.Body.String(), "<h1>"+p.Name+"</h1>", p.Path)
	}
}

func TestMcCabePage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, benzeneToluene)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "equilibrium stages")
	assert.Contains(t, body, `<iframe class="chart" srcdoc=`)
	assert.Contains(t, body, `<tr class="feed">`)
	assert.Contains(t, body, "/mccabe/report.pdf?R=2&amp;comp1=benzene")
	assert.NotContains(t, body, `class="error"`)
}

func TestMcCabeBadInput(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, benzeneToluene+"&xd=abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid input")

	rec = get(t, s, benzeneToluene+"&xd=0.1&xb=0.9")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)

	rec = get(t, s, "/mccabe/plot.png?xd=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, s, "/mccabe/chart?comp1=unobtainium")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMcCabeDownloads(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	q := strings.TrimPrefix(benzeneToluene, "/mccabe")

	rec := get(t, s, "/mccabe/plot.png"+q)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = get(t, s, "/mccabe/report.pdf"+q)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mccabe_thiele_report.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = get(t, s, "/mccabe/chart"+q+"&sweep=on")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestMcCabeCustomData(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		fmt.Fprintf(&b, "%g,%g\n", x, 2.5*x/(1+1.5*x))
	}
	s := newTestServer(t)
	rec := post(t, s, "/mccabe", url.Values{"vle": {b.String()}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "equilibrium stages")
	assert.NotContains(t, body, `class="error"`)
	assert.NotContains(t, body, "/mccabe/report.pdf")

	rec = post(t, s, "/mccabe", url.Values{"vle": {"x,y\n0.1,0.2\n"}})
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestKineticsPage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	q := url.Values{"reactions": {"A=B"}, "k": {"1"}, "c0": {"A:1, B:0"}, "tend": {"20"}}
	rec := get(t, s, "/kinetics?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Steady state reached")
	assert.Contains(t, body, "srcdoc=")

	rec = get(t, s, "/kinetics/chart?"+q.Encode())
	assert.Equal(t, http.StatusOK, rec.Code)

	q.Set("k", "1, x")
	rec = get(t, s, "/kinetics?"+q.Encode())
	assert.Contains(t, rec.Body.String(), `class="error"`)
	rec = get(t, s, "/kinetics/chart?"+q.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPIDTuningPage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, "/PIDTuning?method=IMC&mode=PI&K=2&tau=5&theta=1&tauc=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "IMC PI")
	assert.Contains(t, body, "srcdoc=")

	rec = get(t, s, "/PIDTuning?method=ZN&mode=PI")
	assert.Contains(t, rec.Body.String(), `class="error"`)
	rec = get(t, s, "/PIDTuning/chart?method=AMIGO&mode=PID")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessDynamicsLocksAxes(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, "/processdynamics?order=1&forcing=step&K=2&tau=3&M=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="xmax"`)

	rec = get(t, s, "/processdynamics?order=2&forcing=step&zeta=0.3&lock=on&xmax=50&ymax=80")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="xmax" value="50"`)
	assert.Contains(t, rec.Body.String(), `name="ymax" value="80"`)

	rec = get(t, s, "/processdynamics/chart?order=3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChemToolsStoichiometry(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := get(t, s, "/chemtools?reaction="+url.QueryEscape("2H2 + O2 -> 2H2O"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="moles_H2"`)
	assert.Contains(t, rec.Body.String(), "H<sub>2</sub>O")

	q := url.Values{"reaction": {"2H2 + O2 -> 2H2O"}, "moles_H2": {"4"}, "moles_O2": {"1"}}
	rec = get(t, s, "/chemtools?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Limiting reactant: <strong>O<sub>2</sub></strong>")
}

func TestChemToolsMolecule(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	mux := http.NewServeMux()
	mux.HandleFunc("/compound/name/water/cids/JSON", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"IdentifierList":{"CID":[962]}}`)
	})
	mux.HandleFunc("/compound/name/unobtainium/cids/JSON", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Fault":{"Code":"PUGREST.NotFound"}}`, http.StatusNotFound)
	})
	mux.HandleFunc("/compound/cid/962/property/MolecularFormula,MolecularWeight,IUPACName/JSON", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"CID":962,"MolecularFormula":"H2O","MolecularWeight":"18.015","IUPACName":"oxidane"}]}}`)
	})
	mux.HandleFunc("/compound/cid/962/record/SDF", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "962\n\n\n  1  0  0     0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0\nM  END\n$$$$\n")
	})
	pubchem := httptest.NewServer(mux)
	defer pubchem.Close()

	cfg := DefaultConfig()
	cfg.DownloadDir = t.TempDir()
	cfg.PubChemURL = pubchem.URL
	s, err := New(cfg)
	require.NoError(t, err)

	rec := get(t, s, "/chemtools?molecule=water")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "oxidane")
	assert.Contains(t, body, "$3Dmol.createViewer")
	assert.Contains(t, body, "#FF0D0D")

	rec = get(t, s, "/chemtools?molecule=unobtainium")
	assert.Contains(t, rec.Body.String(), "No compound named &#34;unobtainium&#34; was found.")
}

func TestEconCalculators(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	for _, calc := range Calculators {
		q := url.Values{"calc": {calc.Value}, "compare": {"on"}, "flows": {"-1000, 400, 400, 400"}}
		rec := get(t, s, "/chemeecon?"+q.Encode())
		require.Equal(t, http.StatusOK, rec.Code, calc.Value)
		body := rec.Body.String()
		assert.NotContains(t, body, `class="error"`, calc.Value)
		assert.Contains(t, body, "srcdoc=", calc.Value)

		rec = get(t, s, "/chemeecon/chart?"+q.Encode())
		assert.Equal(t, http.StatusOK, rec.Code, calc.Value)
	}

	rec := get(t, s, "/chemeecon?calc=compounding_interest&pv=1000&rate=5&years=10&n=1")
	assert.Contains(t, rec.Body.String(), "Future value with compounding: $1,628.89")

	rec = get(t, s, "/chemeecon?calc=npv&flows=1,x")
	assert.Contains(t, rec.Body.String(), "is not a number")
	rec = get(t, s, "/chemeecon/chart?calc=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatexAndDropChance(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := post(t, s, "/latex-converter", url.Values{"latex": {`\frac{1}{1+\exp\left(-t\right)}`}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(1)/(1+e**(-t))")
	assert.Contains(t, rec.Body.String(), "np.exp(-t)")
	rec = get(t, s, "/latex-converter")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/dropchance?percent=50&attempts=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is a 75.0% chance")

	rec = get(t, s, "/dropchance?percent=150&attempts=2")
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestMenuPage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	page := `<html><body><div id="dinner-body"><table><tbody>` +
		`<tr class="course-row"><td>Grill</td><td>Grill</td><td>Grill</td><td>Grill</td><td>Grill</td></tr>` +
		`<tr><td><dl><dd>Tacos (v)</dd></dl></td><td><dl><dd>Pasta</dd></dl></td><td></td><td></td><td></td></tr>` +
		`</tbody></table></div></body></html>`
	dining := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer dining.Close()

	cfg := DefaultConfig()
	cfg.DownloadDir = t.TempDir()
	cfg.MenuURL = dining.URL
	s, err := New(cfg)
	require.NoError(t, err)
	s.Menu.Now = func() time.Time { return time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC) }

	rec := get(t, s, "/menu?meal=dinner")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Portola Dining Dinner Menu from 03/04 to 03/08")
	assert.Contains(t, body, `<li class="course">Grill</li>`)
	assert.Contains(t, body, "Tacos")

	rec = get(t, s, "/menu?meal=breakfast")
	assert.Contains(t, rec.Body.String(), "No menu is available for Breakfast this week.")
	rec = get(t, s, "/menu?meal=supper")
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

// words tokenizes by looking up space separated words.
type words map[string]string

func (w words) Tokenize(line string) []lyrics.Morpheme {
	var ms []lyrics.Morpheme
	for _, f := range strings.Fields(line) {
		ms = append(ms, lyrics.Morpheme{Surface: f, Reading: w[f]})
	}
	return ms
}

func TestLyricsPage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	s.Tokenizer = words{"空": "ソラ"}
	rec := post(t, s, "/jplyrics", url.Values{"lyrics": {"空\n<b>"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<ruby>空<rt>そら</rt></ruby>")
	assert.NotContains(t, body, "<b>")
}

func TestSandboxGames(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	rec := post(t, s, "/sandbox/reaction", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var start struct {
		ID      string `json:"id"`
		DelayMs int64  `json:"delayMs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
	assert.NotEmpty(t, start.ID)
	assert.Positive(t, start.DelayMs)

	rec = post(t, s, "/sandbox/reaction/"+start.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tooEarly":true`)
	rec = post(t, s, "/sandbox/reaction/"+start.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, s, "/sandbox/accuracy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acc struct {
		ID    string `json:"id"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	var step struct {
		Hits int  `json:"hits"`
		Done bool `json:"done"`
	}
	for i := 0; i < acc.Total; i++ {
		rec = post(t, s, "/sandbox/accuracy/"+acc.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	}
	assert.True(t, step.Done)
	assert.Equal(t, acc.Total, step.Hits)
	// finished games are forgotten
	rec = post(t, s, "/sandbox/accuracy/"+acc.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

const formatList = `[info] Available formats for abc:
ID  EXT   RESOLUTION FPS │   FILESIZE   TBR PROTO │ VCODEC          VBR ACODEC      ABR ASR MORE INFO
────────────────────────────────────────────────────────────────────────────────────────────────────
140 m4a   audio only      │    3.27MiB  129k https │ audio only          mp4a.40.2  129k 44k medium, m4a_dash
137 mp4   1920x1080   30  │  154.46MiB 4322k https │ avc1.640028   4322k video only          1080p, mp4_dash
`

// ytdlp answers the three invocations the page makes; a download writes
// Song.mp3.
type ytdlp struct{}

func (ytdlp) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	switch args[0] {
	case "--list-formats":
		return []byte(formatList), nil, nil
	case "-J":
		return []byte(`{"title":"Song","thumbnails":[{"url":"https://i.example/t.jpg","width":1,"height":1}]}`), nil, nil
	}
	for i, a := range args {
		if a == "-o" {
			out := strings.ReplaceAll(args[i+1], "%(title)s.%(ext)s", "Song.mp3")
			if err := os.WriteFile(out, []byte("ID3"), 0o644); err != nil {
				return nil, nil, err
			}
		}
	}
	return nil, nil, nil
}

func TestDownloaderFlow(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	s.Downloads.Runner = ytdlp{}
	link := "https://www.youtube.com/watch?v=abc"

	rec := post(t, s, "/youtube-downloader", url.Values{"url": {link}, "action": {"analyze"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Song</h2>")
	assert.Contains(t, body, `<option value="137"`)
	assert.Contains(t, body, `<option value="140"`)

	rec = post(t, s, "/youtube-downloader", url.Values{"url": {link}, "action": {"download"}, "media": {"audio"}, "format": {"140"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	require.Contains(t, body, "/youtube-downloader/file/")
	start := strings.Index(body, "/youtube-downloader/file/") + len("/youtube-downloader/file/")
	id := body[start : start+36]

	rec = get(t, s, "/youtube-downloader/file/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ID3", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Song.mp3")

	rec = get(t, s, "/youtube-downloader/file/not-an-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, s, "/youtube-downloader", url.Values{"url": {"https://example.com/x"}, "action": {"analyze"}})
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestJanitorStops(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	s.Config.CleanupInterval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Janitor(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestWriteMcCabeReport(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	s := newTestServer(t)
	var buf bytes.Buffer
	q := url.Values{"comp1": {"benzene"}, "comp2": {"toluene"}, "mode": {"P"}, "value": {"1.01325"}}
	require.NoError(t, s.WriteMcCabeReport(&buf, q))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))

	q.Set("xd", "abc")
	err := s.WriteMcCabeReport(&buf, q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
