package imageutil

// Luminance returns the BT.601 luma of a color: Y = 0.299R + 0.587G + 0.114B,
// rounded with integer math.
func Luminance(r, g, b uint8) uint8 {
	lum := (299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000
	if lum > 255 {
		lum = 255
	}
	return uint8(lum)
}

// MeanLuminance returns the mean luma of the image, rounded to the nearest
// integer.
func MeanLuminance(img *RGBAImage) uint8 {
	var hist [256]int
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		hist[Luminance(pix[i], pix[i+1], pix[i+2])]++
	}
	var sum, n int
	for v, c := range hist {
		sum += v * c
		n += c
	}
	if n == 0 {
		return 0
	}
	return uint8((sum + n/2) / n)
}
