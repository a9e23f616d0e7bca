package tramagrid

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/tramagrid/tramagrid/imageutil"
)

// Chart holds all state for one stitch chart: the source photograph, the
// quantized canvas, its palette and the edit history.
//
// A Chart is not safe for concurrent use. Hosts that share charts between
// requests serialize access per chart, for example with Sessions.
type Chart struct {
	cfg Config

	source  *imageutil.RGBAImage
	canvas  *Canvas
	palette *Palette
	history *History

	// grid caches the rendered chart until the next change.
	grid *image.RGBA

	log *zap.Logger
	now func() time.Time
}

// ChartOption is a functional option for configuring a Chart.
type ChartOption func(*Chart)

// NewChart creates an empty chart with DefaultConfig and the given options.
func NewChart(opts ...ChartOption) *Chart {
	c := &Chart{
		cfg:     DefaultConfig(),
		palette: NewPalette(),
		history: NewHistory(HistoryCapacity),
		log:     nopLogger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithConfig sets the initial configuration.
func WithConfig(cfg Config) ChartOption {
	return func(c *Chart) {
		c.cfg = cfg.normalized()
	}
}

// WithLogger sets the logger. Charts log nothing by default.
func WithLogger(l *zap.Logger) ChartOption {
	return func(c *Chart) {
		c.log = loggerOrNop(l)
	}
}

// WithClock sets the time source used for export dates.
func WithClock(now func() time.Time) ChartOption {
	return func(c *Chart) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCellSize sets the rendered size of one stitch in pixels.
func WithCellSize(px int) ChartOption {
	return func(c *Chart) {
		c.cfg.CellSize = px
		c.cfg = c.cfg.normalized()
	}
}

// WithHistoryCapacity changes the number of undo steps kept.
func WithHistoryCapacity(n int) ChartOption {
	return func(c *Chart) {
		c.history = NewHistory(n)
	}
}

// Generate decodes imageBytes and builds a chart from it in one step.
func Generate(imageBytes []byte, cfg Config, opts ...ChartOption) (*Chart, error) {
	c := NewChart(append([]ChartOption{WithConfig(cfg)}, opts...)...)
	if err := c.LoadImage(imageBytes); err != nil {
		return nil, err
	}
	if err := c.Generate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the current configuration.
func (c *Chart) Config() Config { return c.cfg }

// Configure applies a partial configuration change. Generation settings
// take effect on the next Generate; rendering settings take effect at
// once.
func (c *Chart) Configure(u ConfigUpdate) {
	c.cfg = u.Apply(c.cfg)
	if u.affectsRender() {
		c.invalidate()
	}
}

// LoadImage decodes a source photograph and discards the edit history.
// The current grid is kept until the next Generate.
func (c *Chart) LoadImage(data []byte) error {
	img, err := imageutil.Decode(data)
	if err != nil {
		return err
	}
	c.source = img
	c.history.Clear()
	c.log.Debug("loaded source image",
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()))
	return nil
}

// HasSource reports whether a source photograph is loaded.
func (c *Chart) HasSource() bool { return c.source != nil }

// Generate quantizes the source photograph into a new canvas and palette.
// Overrides carry over to the new palette by color similarity. The
// previous grid, if any, can be restored with Undo.
func (c *Chart) Generate() error {
	if c.source == nil {
		return ErrNoImage
	}
	start := time.Now()
	q := quantizeImage(c.source, c.cfg)

	c.save()
	c.canvas = q.canvas
	c.palette = applyOverrides(q.derived, c.palette, OverrideMatchDistance)
	c.invalidate()

	c.log.Debug("generated grid",
		zap.Int("cols", c.canvas.Width),
		zap.Int("rows", c.canvas.Height),
		zap.Int("colors", c.palette.Len()),
		zap.Int("overrides", c.palette.overrides.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Generated reports whether the chart has a canvas.
func (c *Chart) Generated() bool { return c.canvas != nil }

// Size returns the canvas size in stitches and rows, or zeros before
// generation.
func (c *Chart) Size() (cols, rows int) {
	if c.canvas == nil {
		return 0, 0
	}
	return c.canvas.Width, c.canvas.Height
}

// Canvas returns a copy of the canvas, or nil before generation.
func (c *Chart) Canvas() *Canvas {
	if c.canvas == nil {
		return nil
	}
	return c.canvas.Clone()
}

// Palette returns a copy of the palette.
func (c *Chart) Palette() *Palette { return c.palette.Clone() }

// PixelIndex returns the palette index at (x, y), or -1 when there is no
// cell there.
func (c *Chart) PixelIndex(x, y int) int {
	if c.canvas == nil {
		return -1
	}
	return c.canvas.At(x, y)
}

// PaletteInfo lists every palette entry with its cell count, most used
// first.
func (c *Chart) PaletteInfo() []ColorUsage {
	return c.palette.usage(c.canvas)
}

// SuggestClusters proposes groups of palette entries closer than
// threshold to each other, as candidates for MergeMany.
func (c *Chart) SuggestClusters(threshold float64) [][]int {
	return c.palette.clusters(threshold)
}

// RowRuns returns chart row n (1 = bottom) as runs of palette indices in
// working order.
func (c *Chart) RowRuns(n int) []Run {
	return encodeRow(c.canvas, n)
}

// RowSummary returns chart row n as runs of colors in working order. It
// is empty for rows outside the chart.
func (c *Chart) RowSummary(n int) []RowSummaryEntry {
	return summarize(encodeRow(c.canvas, n), c.palette)
}

// Undo restores the state before the last edit. It reports whether there
// was anything to undo.
func (c *Chart) Undo() bool {
	if c.canvas == nil {
		return false
	}
	s, ok := c.history.Undo(c.current())
	if !ok {
		return false
	}
	c.restore(s)
	return true
}

// Redo reapplies the last undone edit. It reports whether there was
// anything to redo.
func (c *Chart) Redo() bool {
	if c.canvas == nil {
		return false
	}
	s, ok := c.history.Redo(c.current())
	if !ok {
		return false
	}
	c.restore(s)
	return true
}

// CanUndo reports whether Undo would change anything.
func (c *Chart) CanUndo() bool { return c.history.UndoLen() > 0 }

// CanRedo reports whether Redo would change anything.
func (c *Chart) CanRedo() bool { return c.history.RedoLen() > 0 }

// Render returns the chart image without row highlighting. The image is
// shared with later calls and must not be modified.
func (c *Chart) Render() (*image.RGBA, error) {
	if c.canvas == nil {
		return nil, ErrEmptyCanvas
	}
	if c.grid == nil {
		img, err := renderGrid(c.canvas, c.palette, c.cfg)
		if err != nil {
			return nil, fmt.Errorf("render grid: %w", err)
		}
		c.grid = img
	}
	return c.grid, nil
}

// Preview returns a copy of the chart image with chart row n highlighted.
// Pass a value below 1 for no highlight.
func (c *Chart) Preview(n int) (*image.RGBA, error) {
	img, err := c.Render()
	if err != nil {
		return nil, err
	}
	return highlightRow(img, layoutFor(c.canvas, c.cfg), n), nil
}

// PreviewPNG encodes Preview(n) as PNG.
func (c *Chart) PreviewPNG(n int) ([]byte, error) {
	img, err := c.Preview(n)
	if err != nil {
		return nil, err
	}
	data, err := imageutil.PNGBytes(img)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return data, nil
}

// save records the current state for Undo before an edit. Charts without
// a canvas have nothing to record.
func (c *Chart) save() {
	if c.canvas == nil {
		return
	}
	if evicted := c.history.Save(takeSnapshot(c.canvas, c.palette)); evicted {
		c.log.Debug("history full, dropped oldest step",
			zap.Int("capacity", c.history.capacity))
	}
}

// current hands the live state to the history. The chart replaces it
// right after, so no copy is needed.
func (c *Chart) current() Snapshot {
	return Snapshot{canvas: c.canvas, palette: c.palette}
}

func (c *Chart) restore(s Snapshot) {
	c.canvas = s.canvas
	c.palette = s.palette
	c.invalidate()
}

func (c *Chart) invalidate() {
	c.grid = nil
}
