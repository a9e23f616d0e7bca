// Package imageutil provides the pure Go image plumbing used before a
// photograph becomes a stitch grid: decoding, the adjustment filter chain
// and resampling.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
// Pixels are kept opaque; alpha is ignored by every filter.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to an opaque RGBAImage with
// its origin at (0, 0). Transparent areas are flattened onto white.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())
	draw.Draw(rgba.RGBA, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba.RGBA, rgba.Bounds(), img, bounds.Min, draw.Over)
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := NewRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}
