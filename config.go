package tramagrid

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/tramagrid/tramagrid/imageutil"
)

// Config holds the generation and rendering parameters of a chart.
type Config struct {
	// GridWidth is the chart width in stitches. Values below 10 are raised
	// to 10 at generation time.
	GridWidth int `json:"grid_width_cells"`

	// MaxColors bounds the number of palette entries produced by
	// quantization. AddColor may grow it, 16 at a time, up to 256.
	MaxColors int `json:"max_colors"`

	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Gamma      float64 `json:"gamma"`

	// Posterize is the number of bits kept per channel; 8 disables it.
	Posterize int `json:"posterize"`

	// GaugeStitches and GaugeRows are stitches and rows per 10 cm. Their
	// ratio corrects the grid height for non-square stitches.
	GaugeStitches int `json:"gauge_stitches"`
	GaugeRows     int `json:"gauge_rows"`

	ShowGrid bool `json:"show_grid"`

	// HighlightedRow is the 1-based chart row kept bright in previews,
	// counted from the bottom. -1 disables highlighting.
	HighlightedRow int `json:"highlighted_row"`

	// CellSize is the rendered size of one stitch in pixels.
	CellSize int `json:"cell_size"`
}

// DefaultConfig returns the configuration a new chart starts with.
func DefaultConfig() Config {
	return Config{
		GridWidth:      130,
		MaxColors:      64,
		Brightness:     1.0,
		Contrast:       1.0,
		Saturation:     1.0,
		Gamma:          1.0,
		Posterize:      8,
		GaugeStitches:  20,
		GaugeRows:      20,
		ShowGrid:       true,
		HighlightedRow: -1,
		CellSize:       22,
	}
}

// LoadConfig reads a JSON configuration file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

// ConfigUpdate is a partial configuration change. Nil fields are left as
// they are.
type ConfigUpdate struct {
	GridWidth      *int     `json:"grid_width_cells,omitempty"`
	MaxColors      *int     `json:"max_colors,omitempty"`
	Brightness     *float64 `json:"brightness,omitempty"`
	Contrast       *float64 `json:"contrast,omitempty"`
	Saturation     *float64 `json:"saturation,omitempty"`
	Gamma          *float64 `json:"gamma,omitempty"`
	Posterize      *int     `json:"posterize,omitempty"`
	GaugeStitches  *int     `json:"gauge_stitches,omitempty"`
	GaugeRows      *int     `json:"gauge_rows,omitempty"`
	ShowGrid       *bool    `json:"show_grid,omitempty"`
	HighlightedRow *int     `json:"highlighted_row,omitempty"`
	CellSize       *int     `json:"cell_size,omitempty"`
}

// Apply returns cfg with the update applied and every field clamped to its
// valid range.
func (u ConfigUpdate) Apply(cfg Config) Config {
	setInt(&cfg.GridWidth, u.GridWidth)
	setInt(&cfg.MaxColors, u.MaxColors)
	setFloat(&cfg.Brightness, u.Brightness)
	setFloat(&cfg.Contrast, u.Contrast)
	setFloat(&cfg.Saturation, u.Saturation)
	setFloat(&cfg.Gamma, u.Gamma)
	setInt(&cfg.Posterize, u.Posterize)
	setInt(&cfg.GaugeStitches, u.GaugeStitches)
	setInt(&cfg.GaugeRows, u.GaugeRows)
	setInt(&cfg.HighlightedRow, u.HighlightedRow)
	setInt(&cfg.CellSize, u.CellSize)
	if u.ShowGrid != nil {
		cfg.ShowGrid = *u.ShowGrid
	}
	return cfg.normalized()
}

// affectsRender reports whether the update changes how an existing grid
// is drawn, as opposed to how it is generated.
func (u ConfigUpdate) affectsRender() bool {
	return u.ShowGrid != nil || u.CellSize != nil
}

func (cfg Config) normalized() Config {
	cfg.GridWidth = max(1, cfg.GridWidth)
	cfg.MaxColors = max(2, min(MaxPaletteSize, cfg.MaxColors))
	cfg.Posterize = max(1, min(8, cfg.Posterize))
	cfg.CellSize = max(4, min(64, cfg.CellSize))
	cfg.Brightness = max(0, cfg.Brightness)
	cfg.Contrast = max(0, cfg.Contrast)
	cfg.Saturation = max(0, cfg.Saturation)
	if cfg.Gamma <= 0 {
		cfg.Gamma = 1.0
	}
	cfg.GaugeStitches = max(0, cfg.GaugeStitches)
	cfg.GaugeRows = max(0, cfg.GaugeRows)
	if cfg.HighlightedRow < 0 {
		cfg.HighlightedRow = -1
	}
	return cfg
}

// filterParams extracts the filter chain settings.
func (cfg Config) filterParams() imageutil.FilterParams {
	return imageutil.FilterParams{
		Posterize:  cfg.Posterize,
		Gamma:      cfg.Gamma,
		Saturation: cfg.Saturation,
		Brightness: cfg.Brightness,
		Contrast:   cfg.Contrast,
	}
}

// gridSize computes the stitch grid size for a source image, correcting
// the height by the gauge ratio.
func (cfg Config) gridSize(srcW, srcH int) (int, int) {
	w := max(10, cfg.GridWidth)
	ratio := float64(cfg.GaugeStitches) / float64(max(1, cfg.GaugeRows))
	h := int(math.Round(float64(srcH) / float64(srcW) * float64(w) * ratio))
	return w, max(1, h)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
