package tramagrid

import (
	"math"
	"sort"
)

const (
	// MaxPaletteSize is the hard ceiling on palette entries: canvas cells
	// are single bytes.
	MaxPaletteSize = 256

	// paletteGrowStep is how much MaxColors grows when a color is added to
	// a palette that is full of colors still in use.
	paletteGrowStep = 16
)

// Override is a user-chosen color for a palette entry. Source is the color
// the entry had before the override, used to carry the override across a
// regeneration.
type Override struct {
	Source RGB
	Color  RGB
}

// Palette maps canvas indices to colors and tracks which entries carry
// user overrides. Both maps keep insertion order.
type Palette struct {
	colors    *OrderedMap[uint8, RGB]
	overrides *OrderedMap[uint8, Override]
}

// NewPalette creates an empty palette.
func NewPalette() *Palette {
	return &Palette{
		colors:    NewOrderedMap[uint8, RGB](),
		overrides: NewOrderedMap[uint8, Override](),
	}
}

// Len returns the number of entries.
func (p *Palette) Len() int { return p.colors.Len() }

// Color returns the color stored at index.
func (p *Palette) Color(index uint8) (RGB, bool) { return p.colors.Get(index) }

// Has reports whether index is present.
func (p *Palette) Has(index uint8) bool { return p.colors.Has(index) }

// Indices returns the palette indices in insertion order.
func (p *Palette) Indices() []uint8 { return p.colors.Keys() }

// Override returns the override recorded for index, if any.
func (p *Palette) Override(index uint8) (Override, bool) { return p.overrides.Get(index) }

// Overrides returns the indices carrying overrides, in insertion order.
func (p *Palette) Overrides() []uint8 { return p.overrides.Keys() }

// Clone returns an independent copy.
func (p *Palette) Clone() *Palette {
	return &Palette{colors: p.colors.Clone(), overrides: p.overrides.Clone()}
}

// lookup returns index if it names an existing entry.
func (p *Palette) lookup(index int) (uint8, bool) {
	if index < 0 || index >= MaxPaletteSize {
		return 0, false
	}
	i := uint8(index)
	return i, p.colors.Has(i)
}

// find returns the index of the first entry with exactly color c.
func (p *Palette) find(c RGB) (uint8, bool) {
	for _, k := range p.colors.keys {
		if p.colors.values[k] == c {
			return k, true
		}
	}
	return 0, false
}

// freeIndex returns the lowest index not present.
func (p *Palette) freeIndex() (uint8, bool) {
	for i := 0; i < MaxPaletteSize; i++ {
		if !p.colors.Has(uint8(i)) {
			return uint8(i), true
		}
	}
	return 0, false
}

// setOverride sets both the palette color and the override for index.
func (p *Palette) setOverride(index uint8, c RGB) {
	source := c
	if prev, ok := p.overrides.Get(index); ok {
		source = prev.Source
	} else if prev, ok := p.colors.Get(index); ok {
		source = prev
	}
	p.colors.Set(index, c)
	p.overrides.Set(index, Override{Source: source, Color: c})
}

// remove drops index from the palette and the overrides.
func (p *Palette) remove(index uint8) {
	p.colors.Delete(index)
	p.overrides.Delete(index)
}

// nearest returns the entry closest to index's color, excluding index
// itself. Ties go to the entry inserted first.
func (p *Palette) nearest(index uint8) (uint8, bool) {
	c, ok := p.colors.Get(index)
	if !ok {
		return 0, false
	}
	var best uint8
	found := false
	minDist := math.MaxFloat64
	p.colors.Iterate(func(k uint8, other RGB) {
		if k == index {
			return
		}
		if d := c.Distance(other); d < minDist {
			minDist = d
			best = k
			found = true
		}
	})
	return best, found
}

// mergeInto rewrites every canvas cell holding one of from to hold to, in
// a single pass, then removes the sources from the palette.
func (p *Palette) mergeInto(c *Canvas, from []uint8, to uint8) {
	table := identityTable()
	for _, f := range from {
		table[f] = to
	}
	if c != nil {
		c.Remap(table)
	}
	for _, f := range from {
		if f != to {
			p.remove(f)
		}
	}
}

// unusedIndices lists entries not referenced anywhere in the canvas.
func (p *Palette) unusedIndices(c *Canvas) map[uint8]bool {
	unused := make(map[uint8]bool)
	if c == nil {
		return unused
	}
	usage := c.Usage()
	p.colors.Iterate(func(k uint8, _ RGB) {
		if usage[k] == 0 {
			unused[k] = true
		}
	})
	return unused
}

// ColorUsage describes one palette entry and how many cells use it.
type ColorUsage struct {
	Index int    `json:"index"`
	Hex   string `json:"hex"`
	Count int    `json:"count"`
}

// usage annotates every entry with its live cell count, most used first.
// Entries with equal counts keep insertion order.
func (p *Palette) usage(c *Canvas) []ColorUsage {
	var counts [256]int
	if c != nil {
		counts = c.Usage()
	}
	result := make([]ColorUsage, 0, p.Len())
	p.colors.Iterate(func(k uint8, rgb RGB) {
		result = append(result, ColorUsage{Index: int(k), Hex: rgb.Hex(), Count: counts[k]})
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// clusters groups entries closer than threshold to a group's first member.
// The scan is greedy and single pass: a member's own neighbours are not
// pulled in, so chains of similar colors may split across groups.
func (p *Palette) clusters(threshold float64) [][]int {
	keys := p.colors.Keys()
	visited := make(map[uint8]bool, len(keys))
	var groups [][]int
	for i, k1 := range keys {
		if visited[k1] {
			continue
		}
		c1 := p.colors.values[k1]
		group := []int{int(k1)}
		for _, k2 := range keys[i+1:] {
			if visited[k2] {
				continue
			}
			if c1.Distance(p.colors.values[k2]) < threshold {
				group = append(group, int(k2))
				visited[k2] = true
			}
		}
		if len(group) > 1 {
			visited[k1] = true
			groups = append(groups, group)
		}
	}
	return groups
}

// applyOverrides builds the palette for a freshly quantized image. Each
// derived color takes the closest unclaimed override whose source lies
// within maxDist; overrides that match nothing are dropped.
func applyOverrides(derived []RGB, previous *Palette, maxDist float64) *Palette {
	next := NewPalette()
	claimed := make(map[uint8]bool)
	var candidates []uint8
	if previous != nil {
		candidates = previous.overrides.Keys()
	}
	for i, d := range derived {
		idx := uint8(i)
		next.colors.Set(idx, d)

		var best uint8
		found := false
		minDist := maxDist
		for _, k := range candidates {
			if claimed[k] {
				continue
			}
			o := previous.overrides.values[k]
			if dist := o.Source.Distance(d); dist < minDist {
				minDist = dist
				best = k
				found = true
			}
		}
		if found {
			claimed[best] = true
			o := previous.overrides.values[best]
			next.colors.Set(idx, o.Color)
			next.overrides.Set(idx, Override{Source: d, Color: o.Color})
		}
	}
	return next
}
