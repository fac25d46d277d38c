package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/portfolio_go/internal/analysis"
	"github.com/user/portfolio_go/internal/mccabe"
)

const (
	inchToMm              = 25.4
	pdfPageWidthPortrait  = 8.5 * inchToMm // Letter portrait
	pdfPageHeightPortrait = 11 * inchToMm
	pdfMargin             = 0.5 * inchToMm
	pdfContentWidth       = pdfPageWidthPortrait - (2 * pdfMargin)
)

// Keys of the images BuildPDFReport places.
const (
	ImageDiagram = "mccabe_diagram"
	ImageHeatmap = "sweep_heatmap"
	ImageReflux  = "reflux_sweep"
)

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func() // map of style name to function that sets font, color etc.
	lineHeight  float64
	currentY    float64 // To manually track Y position for flowing content
	pageHeight  float64
	contentTopY float64 // Top Y after margin
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightPortrait - pdfMargin - 6, // room for the footer
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["warning"] = func() {
		s.pdf.SetFont("Arial", "I", 10)
		s.pdf.SetTextColor(200, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200) // Light grey
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellFeed"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(0, 90, 160)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := len(s.pdf.SplitLines([]byte(text), pdfContentWidth))
	s.checkAddPage(float64(max(lines, 1)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		height *= pdfContentWidth / width
		width = pdfContentWidth
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// table writes a header row and body rows; rowStyle picks the cell style of
// each body row.
func (s *pdfStyler) table(headers []string, widthsRel []float64, rows [][]string, rowStyle func(i int) string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}
	header := func() {
		sX := pdfMargin
		s.applyStyle("tableHeader")
		for i, h := range headers {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, h, "1", 0, "C", true, 0, "")
			sX += widths[i]
		}
		s.currentY += s.lineHeight
	}
	s.checkAddPage(2 * s.lineHeight)
	header()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			header()
		}
		sX := pdfMargin
		s.applyStyle(rowStyle(r))
		for i, cell := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			sX += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

func plain(int) string { return "tableCell" }

func formatRatio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "total reflux"
	case math.IsNaN(v):
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// BuildPDFReport writes the column design report: inputs, stage count and
// feed stage, the per-stage table, the diagram and, when a sweep is given,
// its heat map and the cheapest feasible designs. Images are looked up by
// ImageDiagram, ImageReflux and ImageHeatmap.
func BuildPDFReport(w io.Writer, d *mccabe.Diagram, sweep *analysis.SweepResults, plotImages map[string][]byte) error {
	if d == nil || d.Result == nil {
		return fmt.Errorf("no McCabe-Thiele result to report")
	}
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(McCabeTitle(d), true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	styler := newPDFStyler(pdf)
	styler.newPage()

	p := d.Params
	styler.writeParagraph("McCabe-Thiele Column Design Report", "h1", "C")
	styler.writeParagraph(fmt.Sprintf("Binary %s / %s at %s", d.Comp1, d.Comp2, d.Condition), "normal", "C")
	styler.addSpacer(4)

	styler.writeParagraph("Design Inputs", "h2", "L")
	styler.table(
		[]string{"Distillate xD", "Bottoms xB", "Feed xF", "Feed quality q", "Reflux ratio R"},
		[]float64{0.2, 0.2, 0.2, 0.2, 0.2},
		[][]string{{formatRatio(p.XD), formatRatio(p.XB), formatRatio(p.XF), formatRatio(p.Q), formatRatio(p.R)}},
		plain)
	styler.addSpacer(4)

	styler.writeParagraph("Result", "h2", "L")
	styler.writeParagraph(fmt.Sprintf("Number of equilibrium stages: %d", d.Stages), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Feed stage: %d", d.FeedStage), "normal", "L")
	if sweep != nil {
		styler.writeParagraph(fmt.Sprintf("Minimum reflux ratio: %s", formatRatio(sweep.MinReflux)), "normal", "L")
		if sweep.MinStages > 0 {
			styler.writeParagraph(fmt.Sprintf("Minimum stages (total reflux): %d", sweep.MinStages), "normal", "L")
		}
	}
	for _, warning := range d.Warnings {
		styler.writeParagraph(warning, "warning", "L")
	}
	styler.addSpacer(4)

	if len(d.Steps) > 0 {
		styler.writeParagraph("Stages", "h2", "L")
		rows := make([][]string, len(d.Steps))
		for i, st := range d.Steps {
			rows[i] = []string{
				strconv.Itoa(st.Number),
				fmt.Sprintf("%.4f", st.X),
				fmt.Sprintf("%.4f", st.Y),
				fmt.Sprintf("%.4f", st.Next),
				st.Section.String(),
			}
		}
		styler.table(
			[]string{"Stage", "x (liquid)", "y (vapor)", "y (next stage)", "Section"},
			[]float64{0.12, 0.22, 0.22, 0.22, 0.22},
			rows,
			func(i int) string {
				if d.Steps[i].Number == d.FeedStage {
					return "tableCellFeed"
				}
				return "tableCell"
			})
	}

	styler.newPage()
	styler.writeParagraph("McCabe-Thiele Diagram", "h2", "L")
	if img := plotImages[ImageDiagram]; len(img) > 0 {
		size := pdfContentWidth * 0.85
		styler.addImage(img, ImageDiagram, size, size, McCabeTitle(d))
	} else {
		styler.writeParagraph("Diagram not available.", "normal", "L")
	}
	if img := plotImages[ImageReflux]; len(img) > 0 {
		styler.writeParagraph("Stages vs. Reflux Ratio", "h2", "L")
		styler.addImage(img, ImageReflux, pdfContentWidth*0.85, pdfContentWidth*0.85*4/6, "Dashed line: minimum reflux ratio")
	}

	if sweep != nil {
		styler.newPage()
		styler.writeParagraph("Sensitivity to Reflux Ratio and Feed Quality", "h2", "L")
		if img := plotImages[ImageHeatmap]; len(img) > 0 {
			styler.addImage(img, ImageHeatmap, pdfContentWidth, pdfContentWidth*500/800, "Number of stages over the (q, R) grid, gray cells are infeasible")
		}
		if !math.IsNaN(sweep.MeanStages) {
			styler.writeParagraph(fmt.Sprintf("Mean stage count %.2f, standard deviation %.2f over %d design points.",
				sweep.MeanStages, sweep.StdDevStages, len(sweep.Cells)), "normal", "L")
		}
		for _, e := range sweep.AnalysisErrors {
			styler.writeParagraph(e, "warning", "L")
		}
		if n := min(10, len(sweep.RankedByStages)); n > 0 {
			styler.addSpacer(2)
			styler.writeParagraph("Top 10 Designs by Stage Count", "h2", "L")
			rows := make([][]string, n)
			for i, r := range sweep.RankedByStages[:n] {
				rows[i] = []string{strconv.Itoa(i + 1), formatRatio(r.R), formatRatio(r.Q), strconv.Itoa(r.Stages), strconv.Itoa(r.FeedStage)}
			}
			styler.table([]string{"Rank", "R", "q", "Stages", "Feed stage"}, []float64{0.1, 0.225, 0.225, 0.225, 0.225}, rows, plain)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("generating PDF report: %w", err)
	}
	return pdf.Output(w)
}
