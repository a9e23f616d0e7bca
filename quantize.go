package tramagrid

import (
	"image"
	"image/draw"

	"github.com/soniakeys/quant/median"

	"github.com/tramagrid/tramagrid/imageutil"
)

// OverrideMatchDistance is how close, in RGB distance, a regenerated
// palette color must be to the color an override replaced for the override
// to carry over.
const OverrideMatchDistance = 48.0

// quantized is the result of running the generation pipeline.
type quantized struct {
	canvas  *Canvas
	derived []RGB
}

// quantizeImage runs the filter chain, resizes to grid size and reduces
// the result to at most cfg.MaxColors colors with median cut and
// Floyd-Steinberg error diffusion.
func quantizeImage(src *imageutil.RGBAImage, cfg Config) quantized {
	filtered := imageutil.ApplyFilters(src, cfg.filterParams())
	w, h := cfg.gridSize(src.Width(), src.Height())
	resized := imageutil.Resize(filtered, w, h)

	paletted := median.Quantizer(cfg.MaxColors).Paletted(resized)
	draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), resized, image.Point{})

	derived := make([]RGB, len(paletted.Palette))
	for i, c := range paletted.Palette {
		derived[i] = rgbFromColor(c)
	}
	return quantized{canvas: canvasFromPaletted(paletted), derived: derived}
}
