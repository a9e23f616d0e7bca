package imageutil

import "math"

// FilterParams holds the adjustments applied to a photograph before it is
// resized and quantized. Multipliers of exactly 1 and a posterize level of
// 8 or more leave the image untouched.
type FilterParams struct {
	Posterize  int
	Gamma      float64
	Saturation float64
	Brightness float64
	Contrast   float64
}

// ApplyFilters runs the filter chain on a copy of img in fixed order:
// posterize, gamma, saturation, brightness, contrast. The stages do not
// commute, so the order must not change.
func ApplyFilters(img *RGBAImage, p FilterParams) *RGBAImage {
	out := img.Clone()
	if p.Posterize < 8 {
		Posterize(out, p.Posterize)
	}
	if p.Gamma != 1.0 {
		Gamma(out, p.Gamma)
	}
	if p.Saturation != 1.0 {
		Saturation(out, p.Saturation)
	}
	if p.Brightness != 1.0 {
		Brightness(out, p.Brightness)
	}
	if p.Contrast != 1.0 {
		Contrast(out, p.Contrast)
	}
	return out
}

// Posterize keeps the top bits of every channel. The level is clamped to
// [1, 8].
func Posterize(img *RGBAImage, bits int) {
	bits = max(1, min(8, bits))
	mask := ^uint8(1<<(8-bits) - 1)
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(i) & mask
	}
	applyLUT(img, &lut)
}

// Gamma maps each channel intensity i to (i/255)^(1/gamma) * 255.
// Non-positive gamma values are ignored.
func Gamma(img *RGBAImage, gamma float64) {
	if gamma <= 0 {
		return
	}
	var lut [256]uint8
	for i := range lut {
		lut[i] = clamp(math.Floor(math.Pow(float64(i)/255.0, 1.0/gamma) * 255))
	}
	applyLUT(img, &lut)
}

// Saturation blends every pixel with its own gray level. A factor of 0
// yields grayscale, values above 1 exaggerate color.
func Saturation(img *RGBAImage, factor float64) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		l := float64(Luminance(pix[i], pix[i+1], pix[i+2]))
		pix[i] = blend(l, pix[i], factor)
		pix[i+1] = blend(l, pix[i+1], factor)
		pix[i+2] = blend(l, pix[i+2], factor)
	}
}

// Brightness blends the image with black.
func Brightness(img *RGBAImage, factor float64) {
	var lut [256]uint8
	for i := range lut {
		lut[i] = blend(0, uint8(i), factor)
	}
	applyLUT(img, &lut)
}

// Contrast blends the image with a flat gray at its mean luminance.
func Contrast(img *RGBAImage, factor float64) {
	mean := float64(MeanLuminance(img))
	var lut [256]uint8
	for i := range lut {
		lut[i] = blend(mean, uint8(i), factor)
	}
	applyLUT(img, &lut)
}

// blend interpolates from base toward v by factor, extrapolating past v
// for factors above 1.
func blend(base float64, v uint8, factor float64) uint8 {
	return clamp(math.Round(base + factor*(float64(v)-base)))
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// applyLUT remaps the color channels of every pixel, leaving alpha alone.
func applyLUT(img *RGBAImage, lut *[256]uint8) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = lut[pix[i]]
		pix[i+1] = lut[pix[i+1]]
		pix[i+2] = lut[pix[i+2]]
	}
}
