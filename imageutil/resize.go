package imageutil

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resize resamples an RGBA image to the given size with a Lanczos3 kernel,
// which aliases the least before quantization.
func Resize(img *RGBAImage, width, height int) *RGBAImage {
	out := resize.Resize(uint(width), uint(height), img.RGBA, resize.Lanczos3)
	return RGBAImageFromImage(out)
}

// ScaleNearest enlarges src into dst's rectangle r without smoothing.
// It is used to blow each grid cell up into a solid block.
func ScaleNearest(dst draw.Image, r image.Rectangle, src image.Image) {
	draw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
}
