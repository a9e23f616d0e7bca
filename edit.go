package tramagrid

import (
	"fmt"
	"image"

	"go.uber.org/zap"
)

// Paint sets cell (x, y) to palette index. Out of range cells and unknown
// indices are ignored.
func (c *Chart) Paint(x, y, index int) {
	idx, ok := c.palette.lookup(index)
	if c.canvas == nil || !ok || !c.canvas.InBounds(x, y) {
		return
	}
	c.save()
	c.canvas.Set(x, y, idx)
	c.invalidate()
}

// ReplaceRegion rewrites cells holding from to hold to, within the w x h
// rectangle at (x, y). The rectangle is clipped to the canvas.
func (c *Chart) ReplaceRegion(x, y, w, h, from, to int) error {
	if c.canvas == nil {
		return nil
	}
	dst, ok := c.palette.lookup(to)
	if !ok {
		return fmt.Errorf("replace region: %w: %d", ErrUnknownIndex, to)
	}
	if from < 0 || from >= MaxPaletteSize || w <= 0 || h <= 0 {
		return nil
	}
	r, ok := clipRect(x, y, w, h, c.canvas.Width, c.canvas.Height)
	if !ok {
		return nil
	}
	c.save()
	n := c.canvas.ReplaceInRect(r, uint8(from), dst)
	c.invalidate()
	c.log.Debug("replaced region", zap.Stringer("rect", r), zap.Int("cells", n))
	return nil
}

// clipRect clips the w x h rectangle at (x, y) to a cols x rows canvas
// without forming x+w or y+h, which may overflow.
func clipRect(x, y, w, h, cols, rows int) (image.Rectangle, bool) {
	if x < 0 {
		w, x = w+x, 0
	}
	if y < 0 {
		h, y = h+y, 0
	}
	if w <= 0 || h <= 0 || x >= cols || y >= rows {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+min(w, cols-x), y+min(h, rows-y)), true
}

// ReplaceColor gives palette entry index a new color. Cells keep their
// index, so every cell using the entry changes color.
func (c *Chart) ReplaceColor(index int, hex string) error {
	rgb, err := ParseHex(hex)
	if err != nil {
		return err
	}
	idx, ok := c.palette.lookup(index)
	if !ok {
		return fmt.Errorf("replace color: %w: %d", ErrUnknownIndex, index)
	}
	c.save()
	c.palette.setOverride(idx, rgb)
	c.invalidate()
	return nil
}

// MergeColors repaints every cell of color from with color to and drops
// from from the palette. Merging an entry into itself does nothing.
func (c *Chart) MergeColors(from, to int) error {
	if c.canvas == nil || from == to {
		return nil
	}
	src, ok := c.palette.lookup(from)
	if !ok {
		return fmt.Errorf("merge colors: %w: %d", ErrUnknownIndex, from)
	}
	dst, ok := c.palette.lookup(to)
	if !ok {
		return fmt.Errorf("merge colors: %w: %d", ErrUnknownIndex, to)
	}
	c.save()
	c.palette.mergeInto(c.canvas, []uint8{src}, dst)
	c.invalidate()
	return nil
}

// MergeMany merges every entry of from into to in a single pass. Sources
// that are absent or equal to to are skipped.
func (c *Chart) MergeMany(from []int, to int) error {
	if c.canvas == nil {
		return nil
	}
	dst, ok := c.palette.lookup(to)
	if !ok {
		return fmt.Errorf("merge colors: %w: %d", ErrUnknownIndex, to)
	}
	var sources []uint8
	seen := make(map[uint8]bool)
	for _, f := range from {
		if src, ok := c.palette.lookup(f); ok && src != dst && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		return nil
	}
	c.save()
	c.palette.mergeInto(c.canvas, sources, dst)
	c.invalidate()
	c.log.Debug("merged colors", zap.Int("sources", len(sources)), zap.Int("into", to))
	return nil
}

// DeleteColor removes palette entry index, repainting its cells with the
// closest remaining color. Unknown indices and the last remaining entry
// are left alone.
func (c *Chart) DeleteColor(index int) {
	if c.canvas == nil {
		return
	}
	idx, ok := c.palette.lookup(index)
	if !ok {
		return
	}
	best, ok := c.palette.nearest(idx)
	if !ok {
		return
	}
	c.save()
	c.palette.mergeInto(c.canvas, []uint8{idx}, best)
	c.invalidate()
}

// AddColor adds a color to the palette and returns its index. A color
// already in the palette returns the existing index. Before generation it
// does nothing and returns -1. When the palette is
// at MaxColors, entries unused by the canvas are dropped first, then
// MaxColors grows by 16 up to 256.
func (c *Chart) AddColor(hex string) (int, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return -1, err
	}
	if c.canvas == nil {
		return -1, nil
	}
	if idx, ok := c.palette.find(rgb); ok {
		return int(idx), nil
	}

	limit := c.cfg.MaxColors
	size := c.palette.Len()
	var unused map[uint8]bool
	if size >= limit {
		unused = c.palette.unusedIndices(c.canvas)
		size -= len(unused)
		if size >= limit {
			if limit >= MaxPaletteSize {
				return -1, ErrPaletteFull
			}
			limit = min(MaxPaletteSize, limit+paletteGrowStep)
		}
	}
	if size >= MaxPaletteSize {
		return -1, ErrPaletteFull
	}

	c.save()
	if len(unused) > 0 {
		c.palette.colors.Filter(func(k uint8, _ RGB) bool { return !unused[k] })
		c.palette.overrides.Filter(func(k uint8, _ Override) bool { return !unused[k] })
	}
	if limit != c.cfg.MaxColors {
		c.log.Info("palette limit raised",
			zap.Int("from", c.cfg.MaxColors),
			zap.Int("to", limit))
		c.cfg.MaxColors = limit
	}
	idx, _ := c.palette.freeIndex()
	c.palette.colors.Set(idx, rgb)
	c.palette.overrides.Set(idx, Override{Source: rgb, Color: rgb})
	c.invalidate()
	return int(idx), nil
}

// EditKind names an editing operation accepted by Apply.
type EditKind string

const (
	EditPaint         EditKind = "paint"
	EditReplaceRegion EditKind = "replace_region"
	EditRecolor       EditKind = "recolor"
	EditMerge         EditKind = "merge"
	EditMergeMany     EditKind = "merge_many"
	EditDelete        EditKind = "delete"
	EditAddColor      EditKind = "add_color"
)

// Edit is a single editing request, as decoded from a client. Only the
// fields used by Kind are read.
type Edit struct {
	Kind EditKind `json:"kind"`

	X      int `json:"x,omitempty"`
	Y      int `json:"y,omitempty"`
	Width  int `json:"w,omitempty"`
	Height int `json:"h,omitempty"`

	Index   int    `json:"index,omitempty"`
	From    int    `json:"from,omitempty"`
	To      int    `json:"to,omitempty"`
	FromSet []int  `json:"from_list,omitempty"`
	Hex     string `json:"hex,omitempty"`
}

// Apply performs e. For EditAddColor it returns the index of the color;
// for every other kind it returns -1.
func (c *Chart) Apply(e Edit) (int, error) {
	switch e.Kind {
	case EditPaint:
		c.Paint(e.X, e.Y, e.Index)
	case EditReplaceRegion:
		return -1, c.ReplaceRegion(e.X, e.Y, e.Width, e.Height, e.From, e.To)
	case EditRecolor:
		return -1, c.ReplaceColor(e.Index, e.Hex)
	case EditMerge:
		return -1, c.MergeColors(e.From, e.To)
	case EditMergeMany:
		return -1, c.MergeMany(e.FromSet, e.To)
	case EditDelete:
		c.DeleteColor(e.Index)
	case EditAddColor:
		return c.AddColor(e.Hex)
	default:
		return -1, fmt.Errorf("%w: %q", ErrUnknownEdit, e.Kind)
	}
	return -1, nil
}
