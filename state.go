package tramagrid

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// stateVersion is bumped whenever chartState changes incompatibly.
const stateVersion = 1

// chartState is the persisted form of a chart. History and the source
// image are not part of it.
type chartState struct {
	Version   int
	Config    Config
	Palette   []paletteEntry
	Overrides []overrideEntry
	Width     int
	Height    int
	Cells     []byte
}

type paletteEntry struct {
	Index uint8
	Hex   string
}

type overrideEntry struct {
	Index  uint8
	Source string
	Color  string
}

// MarshalState encodes the configuration, palette, overrides and canvas
// as a compressed binary snapshot.
func (c *Chart) MarshalState() ([]byte, error) {
	st := chartState{Version: stateVersion, Config: c.cfg}
	c.palette.colors.Iterate(func(k uint8, rgb RGB) {
		st.Palette = append(st.Palette, paletteEntry{Index: k, Hex: rgb.Hex()})
	})
	c.palette.overrides.Iterate(func(k uint8, o Override) {
		st.Overrides = append(st.Overrides, overrideEntry{
			Index:  k,
			Source: o.Source.Hex(),
			Color:  o.Color.Hex(),
		})
	})
	if c.canvas != nil {
		st.Width, st.Height = c.canvas.Width, c.canvas.Height
		st.Cells = c.canvas.Pix
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(&st); err != nil {
		zw.Close()
		return nil, fmt.Errorf("encode chart state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zstd writer: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalState replaces the chart's configuration, palette and canvas
// with a snapshot produced by MarshalState. The edit history is cleared.
// The chart is left untouched when the snapshot is invalid.
func (c *Chart) UnmarshalState(data []byte) error {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	defer zr.Close()

	var st chartState
	if err := gob.NewDecoder(zr).Decode(&st); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if st.Version != stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptState, st.Version)
	}

	palette, err := st.palette()
	if err != nil {
		return err
	}
	canvas, err := st.canvas(palette)
	if err != nil {
		return err
	}

	c.cfg = st.Config.normalized()
	c.palette = palette
	c.canvas = canvas
	c.history.Clear()
	c.invalidate()
	return nil
}

func (st *chartState) palette() (*Palette, error) {
	p := NewPalette()
	for _, e := range st.Palette {
		rgb, err := ParseHex(e.Hex)
		if err != nil {
			return nil, fmt.Errorf("%w: palette entry %d: %v", ErrCorruptState, e.Index, err)
		}
		p.colors.Set(e.Index, rgb)
	}
	for _, e := range st.Overrides {
		src, err := ParseHex(e.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: override %d: %v", ErrCorruptState, e.Index, err)
		}
		col, err := ParseHex(e.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: override %d: %v", ErrCorruptState, e.Index, err)
		}
		if !p.Has(e.Index) {
			return nil, fmt.Errorf("%w: override %d has no palette entry", ErrCorruptState, e.Index)
		}
		p.overrides.Set(e.Index, Override{Source: src, Color: col})
	}
	return p, nil
}

func (st *chartState) canvas(p *Palette) (*Canvas, error) {
	if st.Width == 0 && st.Height == 0 && len(st.Cells) == 0 {
		return nil, nil
	}
	if st.Width <= 0 || st.Height <= 0 || len(st.Cells)%st.Width != 0 || len(st.Cells)/st.Width != st.Height {
		return nil, fmt.Errorf("%w: %dx%d canvas with %d cells",
			ErrCorruptState, st.Width, st.Height, len(st.Cells))
	}
	c := &Canvas{Width: st.Width, Height: st.Height, Pix: st.Cells}
	usage := c.Usage()
	for i, n := range usage {
		if n > 0 && !p.Has(uint8(i)) {
			return nil, fmt.Errorf("%w: canvas uses index %d with no palette entry", ErrCorruptState, i)
		}
	}
	return c, nil
}
