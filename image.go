package tramagrid

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/tramagrid/tramagrid/imageutil"
)

const (
	// padTopLeft is the blank margin above and left of the grid.
	padTopLeft = 20
	// padBottomRight leaves room for the axis numbers.
	padBottomRight = 60
)

var (
	minorLineColor = color.NRGBA{R: 255, G: 255, B: 255, A: 70}
	majorLineColor = color.NRGBA{R: 255, G: 255, B: 255, A: 180}
	shadeColor     = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
	missingColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// gridLayout describes where cells land in a rendered chart.
type gridLayout struct {
	cols, rows, cell int
}

func layoutFor(c *Canvas, cfg Config) gridLayout {
	return gridLayout{cols: c.Width, rows: c.Height, cell: cfg.CellSize}
}

// bounds is the full image rectangle, margins included.
func (l gridLayout) bounds() image.Rectangle {
	return image.Rect(0, 0,
		padTopLeft+l.cols*l.cell+padBottomRight,
		padTopLeft+l.rows*l.cell+padBottomRight)
}

// gridRect is the area covered by cells.
func (l gridLayout) gridRect() image.Rectangle {
	return image.Rect(padTopLeft, padTopLeft,
		padTopLeft+l.cols*l.cell, padTopLeft+l.rows*l.cell)
}

// rowBand returns the pixel rows covered by image row y.
func (l gridLayout) rowBand(y int) (top, bottom int) {
	top = padTopLeft + y*l.cell
	return top, top + l.cell
}

// paletteLUT maps every possible index to its display color. Indices with
// no palette entry render white.
func paletteLUT(p *Palette) *[256]color.RGBA {
	var lut [256]color.RGBA
	for i := range lut {
		lut[i] = missingColor
	}
	p.colors.Iterate(func(k uint8, c RGB) {
		lut[k] = c.RGBA()
	})
	return &lut
}

// cellImage renders the canvas at one pixel per cell.
func cellImage(c *Canvas, p *Palette) *image.RGBA {
	lut := paletteLUT(p)
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for i, v := range c.Pix {
		col := lut[v]
		j := i * 4
		img.Pix[j] = col.R
		img.Pix[j+1] = col.G
		img.Pix[j+2] = col.B
		img.Pix[j+3] = 255
	}
	return img
}

// renderGrid draws the chart: colored cells, optional grid lines and axis
// numbers. The result depends only on its arguments.
func renderGrid(c *Canvas, p *Palette, cfg Config) (*image.RGBA, error) {
	lay := layoutFor(c, cfg)
	out := image.NewRGBA(lay.bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	imageutil.ScaleNearest(out, lay.gridRect(), cellImage(c, p))

	if !cfg.ShowGrid {
		return out, nil
	}

	draw.Draw(out, out.Bounds(), gridOverlay(lay), image.Point{}, draw.Over)

	lb, err := newLabeler(out)
	if err != nil {
		return nil, err
	}
	defer lb.close()
	if err := lb.drawAxes(lay); err != nil {
		return nil, err
	}
	return out, nil
}

// gridOverlay draws the cell boundaries on a transparent layer. Every
// tenth line and the border are heavier to make counting easier. Lines are
// drawn with Src so crossings do not get brighter than the lines
// themselves.
func gridOverlay(lay gridLayout) *image.NRGBA {
	ov := image.NewNRGBA(lay.bounds())
	grid := lay.gridRect()
	minor := image.NewUniform(minorLineColor)
	major := image.NewUniform(majorLineColor)

	line := func(n, last int) (*image.Uniform, int) {
		if n%10 == 0 || n == last {
			return major, 2
		}
		return minor, 1
	}

	for y := 0; y <= lay.rows; y++ {
		src, w := line(y, lay.rows)
		py := grid.Min.Y + y*lay.cell
		r := image.Rect(grid.Min.X, py-w/2, grid.Max.X+1, py-w/2+w)
		draw.Draw(ov, r, src, image.Point{}, draw.Src)
	}
	for x := 0; x <= lay.cols; x++ {
		src, w := line(x, lay.cols)
		px := grid.Min.X + x*lay.cell
		r := image.Rect(px-w/2, grid.Min.Y, px-w/2+w, grid.Max.Y+1)
		draw.Draw(ov, r, src, image.Point{}, draw.Src)
	}
	return ov
}

// highlightRow returns a copy of img with every row except chart row n
// shaded, so the row being worked stands out. n counts from the bottom,
// starting at 1. Out of range rows return an unshaded copy.
func highlightRow(img *image.RGBA, lay gridLayout, n int) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)

	y := lay.rows - n
	if n < 1 || y < 0 || y >= lay.rows {
		return out
	}
	top, bottom := lay.rowBand(y)
	b := out.Bounds()
	shade := image.NewUniform(shadeColor)
	draw.Draw(out, image.Rect(b.Min.X, b.Min.Y, b.Max.X, top), shade, image.Point{}, draw.Over)
	draw.Draw(out, image.Rect(b.Min.X, bottom, b.Max.X, b.Max.Y), shade, image.Point{}, draw.Over)
	return out
}
