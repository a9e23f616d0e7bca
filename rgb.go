package tramagrid

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
)

// RGB represents a palette color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses a color written as "#RRGGBB". Anything else, including
// the short "#RGB" form, is rejected with ErrInvalidColorFormat.
func ParseHex(hex string) (RGB, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
	}
	return rgbFromUint32(uint32(v)), nil
}

// Hex formats the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Distance is the Euclidean distance between two colors in RGB space.
func (c RGB) Distance(other RGB) float64 {
	dr := int(c.R) - int(other.R)
	dg := int(c.G) - int(other.G)
	db := int(c.B) - int(other.B)
	return math.Sqrt(float64(dr*dr + dg*dg + db*db))
}

// RGBA converts the color to an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// rgbFromColor converts any color.Color, dropping alpha.
func rgbFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// rgbFromUint32 unpacks a 0xRRGGBB value.
func rgbFromUint32(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}
