package tramagrid

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// labelSize is the axis numeral size in pixels.
const labelSize = 14

var labelColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

// loadLabelFont parses the embedded Go Bold font once per process.
func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(gobold.TTF)
		if labelFontErr != nil {
			labelFontErr = fmt.Errorf("parse label font: %w", labelFontErr)
		}
	})
	return labelFont, labelFontErr
}

// labeler draws stitch numbers next to the grid.
type labeler struct {
	ctx    *freetype.Context
	face   font.Face
	ascent int
	digitH int
}

func newLabeler(dst *image.RGBA) (*labeler, error) {
	f, err := loadLabelFont()
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    labelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(labelSize)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(labelColor))
	ctx.SetHinting(font.HintingFull)

	// Digits sit on the baseline, so the top of "0" gives their height.
	bounds, _ := font.BoundString(face, "0")
	return &labeler{
		ctx:    ctx,
		face:   face,
		ascent: face.Metrics().Ascent.Ceil(),
		digitH: (-bounds.Min.Y).Ceil(),
	}, nil
}

func (l *labeler) close() { l.face.Close() }

func (l *labeler) width(s string) int {
	return font.MeasureString(l.face, s).Ceil()
}

// draw renders s with its top-left corner at (x, y).
func (l *labeler) draw(s string, x, y int) error {
	_, err := l.ctx.DrawString(s, freetype.Pt(x, y+l.ascent))
	return err
}

// drawAxes numbers the columns along the bottom, right to left, and the
// rows along the right side, bottom to top. Stitch 1 and row 1 are the
// bottom-right corner, where work starts.
func (l *labeler) drawAxes(lay gridLayout) error {
	grid := lay.gridRect()
	y := grid.Max.Y + 5
	for x := 0; x < lay.cols; x++ {
		s := strconv.Itoa(lay.cols - x)
		tx := grid.Min.X + x*lay.cell + (lay.cell-l.width(s))/2
		if err := l.draw(s, tx, y); err != nil {
			return err
		}
	}

	x := grid.Max.X + 5
	for row := 0; row < lay.rows; row++ {
		s := strconv.Itoa(lay.rows - row)
		ty := grid.Min.Y + row*lay.cell + (lay.cell-l.digitH)/2 - (l.ascent - l.digitH)
		if err := l.draw(s, x, ty); err != nil {
			return err
		}
	}
	return nil
}
