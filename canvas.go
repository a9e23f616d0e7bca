package tramagrid

import "image"

// Canvas is the quantized stitch grid: one palette index per cell, stored
// row-major.
type Canvas struct {
	Width, Height int
	Pix           []uint8
}

// NewCanvas creates a width x height canvas filled with index 0.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// canvasFromPaletted copies the index plane of a paletted image.
func canvasFromPaletted(p *image.Paletted) *Canvas {
	b := p.Bounds()
	c := NewCanvas(b.Dx(), b.Dy())
	for y := 0; y < c.Height; y++ {
		src := p.Pix[y*p.Stride : y*p.Stride+c.Width]
		copy(c.Pix[y*c.Width:(y+1)*c.Width], src)
	}
	return c
}

// InBounds reports whether (x, y) addresses a cell.
func (c *Canvas) InBounds(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

// At returns the index at (x, y), or -1 outside the grid.
func (c *Canvas) At(x, y int) int {
	if !c.InBounds(x, y) {
		return -1
	}
	return int(c.Pix[y*c.Width+x])
}

// Set stores index at (x, y). Out of bounds writes are ignored.
func (c *Canvas) Set(x, y int, index uint8) {
	if c.InBounds(x, y) {
		c.Pix[y*c.Width+x] = index
	}
}

// Row returns the cells of image row y. The slice aliases the canvas.
func (c *Canvas) Row(y int) []uint8 {
	return c.Pix[y*c.Width : (y+1)*c.Width]
}

// Clone creates a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	clone := &Canvas{Width: c.Width, Height: c.Height, Pix: make([]uint8, len(c.Pix))}
	copy(clone.Pix, c.Pix)
	return clone
}

// Remap rewrites every cell through a 256-entry lookup table in a single
// pass.
func (c *Canvas) Remap(table *[256]uint8) {
	for i, v := range c.Pix {
		c.Pix[i] = table[v]
	}
}

// ReplaceInRect rewrites cells equal to from with to inside the rectangle,
// clipped to the canvas. It returns the number of cells changed.
func (c *Canvas) ReplaceInRect(r image.Rectangle, from, to uint8) int {
	r = r.Intersect(image.Rect(0, 0, c.Width, c.Height))
	changed := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.Row(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] == from {
				row[x] = to
				changed++
			}
		}
	}
	return changed
}

// Usage counts the cells holding each index.
func (c *Canvas) Usage() [256]int {
	var counts [256]int
	for _, v := range c.Pix {
		counts[v]++
	}
	return counts
}

// identityTable returns a lookup table mapping every index to itself.
func identityTable() *[256]uint8 {
	var t [256]uint8
	for i := range t {
		t[i] = uint8(i)
	}
	return &t
}
