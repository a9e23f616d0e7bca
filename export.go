package tramagrid

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/tramagrid/tramagrid/imageutil"
)

// legendSymbols are the printable tokens used for colors in the
// instructions. Palettes larger than the set reuse tokens in order.
const legendSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!@#$%&*?+-"

// Page layout, in centimetres.
const (
	pageMargin     = 1.5
	legendRowH     = 0.8
	legendSwatch   = 0.4
	textLineH      = 0.5
	textRowPadding = 0.2
	pageTop        = 2.0

	// hairline is 0.5pt.
	hairline = 0.5 * 2.54 / 72
)

// ExportPNG writes the chart image, without row highlighting, as PNG.
func (c *Chart) ExportPNG(w io.Writer) error {
	img, err := c.Render()
	if err != nil {
		return err
	}
	return imageutil.EncodePNG(w, img)
}

// symbolFor returns the legend token for the i-th color.
func symbolFor(i int) string {
	return string(legendSymbols[i%len(legendSymbols)])
}

// ExportPDF writes a printable pattern: a page with the chart, a color
// legend and row by row instructions in working order.
func (c *Chart) ExportPDF(w io.Writer) error {
	img, err := c.Render()
	if err != nil {
		return err
	}
	var png bytes.Buffer
	if err := imageutil.EncodePNG(&png, img); err != nil {
		return fmt.Errorf("encode chart image: %w", err)
	}

	cols, rows := c.canvas.Width, c.canvas.Height
	orientation := "P"
	if cols > rows {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "cm", "A4", "")
	pdf.SetTitle("TramaGrid pattern", true)
	pdf.SetCreationDate(c.now())
	pdf.SetAutoPageBreak(false, 0)
	pageW, pageH := pdf.GetPageSize()

	// Chart page.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pageMargin, pageMargin, "TramaGrid")
	pdf.SetFont("Helvetica", "", 9)
	info := c.headerInfo()
	pdf.Text(pageW-pageMargin-pdf.GetStringWidth(info), pageMargin, info)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, &png)
	b := img.Bounds()
	availW, availH := pageW-2, pageH-4
	scale := min(availW/float64(b.Dx()), availH/float64(b.Dy()))
	dw, dh := float64(b.Dx())*scale, float64(b.Dy())*scale
	pdf.ImageOptions("chart", (pageW-dw)/2, 2.5, dw, dh, false, opts, 0, "")

	// Legend.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(pageMargin, pageTop, "Color legend")
	pdf.SetFont("Helvetica", "", 9)

	legendCols := 3
	if orientation == "L" {
		legendCols = 4
	}
	colW := (pageW - 2*pageMargin) / float64(legendCols)
	x, y := pageMargin, 3.0
	symbols := make(map[uint8]string)
	for i, u := range c.PaletteInfo() {
		sym := symbolFor(i)
		symbols[uint8(u.Index)] = sym

		rgb, _ := ParseHex(u.Hex)
		pdf.SetFillColor(int(rgb.R), int(rgb.G), int(rgb.B))
		pdf.SetDrawColor(0, 0, 0)
		pdf.Rect(x, y, legendSwatch, legendSwatch, "FD")
		pdf.Text(x+0.6, y+0.3, fmt.Sprintf("%s : %s (%d st)", sym, u.Hex, u.Count))

		x += colW
		if (i+1)%legendCols == 0 {
			x = pageMargin
			y += legendRowH
		}
		if y > pageH-2 {
			pdf.AddPage()
			x, y = pageMargin, pageTop
		}
	}

	// Instructions continue below the legend when it is short.
	if y < 10 {
		y += 1.5
	} else {
		pdf.AddPage()
		y = pageTop
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(pageMargin, y, "Row by row instructions")
	y++

	pdf.SetFont("Helvetica", "", 9)
	textW := pageW - 3.5
	for n := 1; n <= rows; n++ {
		lines := pdf.SplitText(instructionLine(n, c.RowRuns(n), symbols), textW)
		rowH := float64(len(lines))*textLineH + textRowPadding
		if y+rowH > pageH-pageMargin {
			pdf.AddPage()
			y = pageTop
		}
		if n%2 == 1 {
			pdf.SetFillColor(0xf2, 0xf2, 0xf2)
			pdf.Rect(pageMargin, y, pageW-2*pageMargin, rowH, "F")
		}
		pdf.SetDrawColor(0xcc, 0xcc, 0xcc)
		pdf.SetLineWidth(hairline)
		pdf.Line(pageMargin, y+rowH, pageW-pageMargin, y+rowH)

		ty := y + 0.4
		for _, l := range lines {
			pdf.Text(pageMargin+0.2, ty, l)
			ty += textLineH
		}
		y += rowH
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	c.log.Debug("exported pdf",
		zap.Int("pages", pdf.PageCount()),
		zap.Int("rows", rows))
	return nil
}

// headerInfo describes the chart size in stitches and, when the gauge is
// known, in centimetres.
func (c *Chart) headerInfo() string {
	cols, rows := c.canvas.Width, c.canvas.Height
	info := fmt.Sprintf("Size: %dx%d st | Date: %s", cols, rows, c.now().Format("02/01/2006"))
	if c.cfg.GaugeStitches > 0 && c.cfg.GaugeRows > 0 {
		cmW := float64(cols) * 10 / float64(c.cfg.GaugeStitches)
		cmH := float64(rows) * 10 / float64(c.cfg.GaugeRows)
		info += fmt.Sprintf(" | %.1fx%.1f cm", cmW, cmH)
	}
	return info
}

// instructionLine formats chart row n as "R<n> [<-]:  3xA  2xB".
func instructionLine(n int, runs []Run, symbols map[uint8]string) string {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		sym, ok := symbols[r.Index]
		if !ok {
			sym = "?"
		}
		parts = append(parts, fmt.Sprintf("%dx%s", r.Count, sym))
	}
	return fmt.Sprintf("R%d [%s]:  %s", n, RowDirection(n).Arrow(), strings.Join(parts, "  "))
}
