package tramagrid

import (
	"errors"
	"image"
	"math"
	"testing"
)

func fourColorChart(t *testing.T) *Chart {
	return newTestChart(t, 4, 3,
		[]string{"#ff0000", "#00ff00", "#0000ff", "#fe0000"},
		[]uint8{
			0, 0, 1, 1,
			2, 2, 3, 3,
			0, 1, 2, 3,
		})
}

func countIndex(c *Chart, idx uint8) int {
	return c.canvas.Usage()[idx]
}

func TestPaint(t *testing.T) {
	c := fourColorChart(t)
	c.Paint(0, 0, 2)
	if got := c.PixelIndex(0, 0); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if !c.CanUndo() {
		t.Error("Paint should be undoable")
	}

	before := dump(c)
	c.Paint(-1, 0, 1)
	c.Paint(4, 0, 1)
	c.Paint(0, 0, 7)
	c.Paint(0, 0, -1)
	if dump(c) != before {
		t.Error("Out of range paints should be ignored")
	}
	if c.history.UndoLen() != 1 {
		t.Errorf("Ignored paints should not record history, got %d steps", c.history.UndoLen())
	}
}

func TestReplaceRegion(t *testing.T) {
	c := fourColorChart(t)
	// Rectangle overhangs the left and bottom edges.
	if err := c.ReplaceRegion(-2, 1, 4, 10, 2, 1); err != nil {
		t.Fatalf("ReplaceRegion failed: %v", err)
	}
	want := []uint8{
		0, 0, 1, 1,
		1, 1, 3, 3,
		0, 1, 2, 3,
	}
	for i, v := range want {
		if c.canvas.Pix[i] != v {
			t.Errorf("Cell %d: expected %d, got %d", i, v, c.canvas.Pix[i])
		}
	}
}

func TestReplaceRegionNoOps(t *testing.T) {
	c := fourColorChart(t)
	before := dump(c)

	for _, r := range [][4]int{
		{10, 10, 2, 2},
		{-5, -5, 2, 2},
		{0, 0, 0, 3},
		{0, 0, 3, -1},
		{math.MaxInt - 1, 0, 10, 1},
		{0, math.MaxInt - 1, 1, 10},
		{math.MinInt, 0, math.MaxInt, 1},
	} {
		if err := c.ReplaceRegion(r[0], r[1], r[2], r[3], 0, 1); err != nil {
			t.Errorf("ReplaceRegion(%v) failed: %v", r, err)
		}
	}
	if dump(c) != before || c.CanUndo() {
		t.Error("Empty regions should change nothing")
	}

	if err := c.ReplaceRegion(0, 0, 2, 2, 0, 9); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("Expected ErrUnknownIndex, got %v", err)
	}
}

func TestClipRect(t *testing.T) {
	tests := []struct {
		x, y, w, h int
		want       image.Rectangle
		ok         bool
	}{
		{0, 0, 4, 3, image.Rect(0, 0, 4, 3), true},
		{1, 1, 2, 1, image.Rect(1, 1, 3, 2), true},
		{-2, 1, 4, 10, image.Rect(0, 1, 2, 3), true},
		{1, 0, math.MaxInt, 1, image.Rect(1, 0, 4, 1), true},
		{-1, -1, math.MaxInt, math.MaxInt, image.Rect(0, 0, 4, 3), true},
		{math.MaxInt - 1, 0, 10, 1, image.Rectangle{}, false},
		{math.MinInt, 0, math.MaxInt, 1, image.Rectangle{}, false},
		{4, 0, 1, 1, image.Rectangle{}, false},
		{0, 0, 0, 1, image.Rectangle{}, false},
	}
	for _, tt := range tests {
		got, ok := clipRect(tt.x, tt.y, tt.w, tt.h, 4, 3)
		if ok != tt.ok || got != tt.want {
			t.Errorf("clipRect(%d, %d, %d, %d): expected %v %v, got %v %v",
				tt.x, tt.y, tt.w, tt.h, tt.want, tt.ok, got, ok)
		}
	}
}

func TestReplaceColor(t *testing.T) {
	c := fourColorChart(t)
	if err := c.ReplaceColor(1, "#ABCDEF"); err != nil {
		t.Fatalf("ReplaceColor failed: %v", err)
	}
	got, _ := c.palette.Color(1)
	if got.Hex() != "#abcdef" {
		t.Errorf("Expected #abcdef, got %s", got.Hex())
	}
	o, ok := c.palette.Override(1)
	if !ok {
		t.Fatal("Expected override for index 1")
	}
	if o.Source.Hex() != "#00ff00" || o.Color.Hex() != "#abcdef" {
		t.Errorf("Unexpected override %+v", o)
	}

	// A second recolor keeps the original source.
	if err := c.ReplaceColor(1, "#000001"); err != nil {
		t.Fatalf("ReplaceColor failed: %v", err)
	}
	if o, _ := c.palette.Override(1); o.Source.Hex() != "#00ff00" {
		t.Errorf("Expected source #00ff00, got %s", o.Source.Hex())
	}

	if err := c.ReplaceColor(9, "#000000"); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("Expected ErrUnknownIndex, got %v", err)
	}
	if err := c.ReplaceColor(1, "red"); !errors.Is(err, ErrInvalidColorFormat) {
		t.Errorf("Expected ErrInvalidColorFormat, got %v", err)
	}
}

func TestMergeColors(t *testing.T) {
	c := fourColorChart(t)
	c.palette.setOverride(3, RGB{R: 1})
	if err := c.MergeColors(3, 0); err != nil {
		t.Fatalf("MergeColors failed: %v", err)
	}
	if n := countIndex(c, 3); n != 0 {
		t.Errorf("Expected no cells with index 3, got %d", n)
	}
	if c.palette.Has(3) {
		t.Error("Index 3 should be removed from the palette")
	}
	if _, ok := c.palette.Override(3); ok {
		t.Error("Index 3 should be removed from the overrides")
	}
	if n := countIndex(c, 0); n != 6 {
		t.Errorf("Expected 6 cells with index 0, got %d", n)
	}
}

func TestMergeColorsErrors(t *testing.T) {
	c := fourColorChart(t)
	before := dump(c)

	if err := c.MergeColors(2, 2); err != nil {
		t.Errorf("Merging into itself should be a no-op, got %v", err)
	}
	if err := c.MergeColors(9, 0); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("Expected ErrUnknownIndex for source, got %v", err)
	}
	if err := c.MergeColors(0, 9); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("Expected ErrUnknownIndex for target, got %v", err)
	}
	if dump(c) != before || c.CanUndo() {
		t.Error("Rejected merges should change nothing")
	}
}

func TestMergeMany(t *testing.T) {
	c := fourColorChart(t)
	if err := c.MergeMany([]int{1, 2, 2, 0, 42}, 0); err != nil {
		t.Fatalf("MergeMany failed: %v", err)
	}
	for _, idx := range []uint8{1, 2} {
		if c.palette.Has(idx) || countIndex(c, idx) != 0 {
			t.Errorf("Index %d should be merged away", idx)
		}
	}
	if !c.palette.Has(0) {
		t.Error("Target must stay in the palette")
	}
	if n := countIndex(c, 0); n != 9 {
		t.Errorf("Expected 9 cells with index 0, got %d", n)
	}
	if c.history.UndoLen() != 1 {
		t.Errorf("Expected a single undo step, got %d", c.history.UndoLen())
	}

	if err := c.MergeMany([]int{3}, 9); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("Expected ErrUnknownIndex, got %v", err)
	}
}

func TestDeleteColor(t *testing.T) {
	c := fourColorChart(t)
	total := len(c.canvas.Pix)

	// #fe0000 is closest to #ff0000.
	c.DeleteColor(3)
	if c.palette.Has(3) || countIndex(c, 3) != 0 {
		t.Error("Index 3 should be gone")
	}
	if n := countIndex(c, 0); n != 6 {
		t.Errorf("Expected cells of 3 to move to 0, got %d cells of 0", n)
	}
	sum := 0
	for _, u := range c.PaletteInfo() {
		sum += u.Count
	}
	if sum != total {
		t.Errorf("Expected %d cells accounted for, got %d", total, sum)
	}
}

func TestDeleteColorTieGoesToFirst(t *testing.T) {
	c := newTestChart(t, 3, 1, nil, []uint8{0, 1, 2})
	// Insertion order 2, 1, 0. Gray is equally far from near-black (1) and
	// near-white (0); the entry inserted first wins.
	c.palette.colors.Set(2, RGB{R: 127, G: 128, B: 128})
	c.palette.colors.Set(1, RGB{R: 0, G: 1, B: 1})
	c.palette.colors.Set(0, RGB{R: 254, G: 255, B: 255})

	c.DeleteColor(2)
	if got := c.PixelIndex(2, 0); got != 1 {
		t.Errorf("Expected tie to go to index 1, got %d", got)
	}
}

func TestDeleteLastColor(t *testing.T) {
	c := newTestChart(t, 2, 1, []string{"#ffffff"}, []uint8{0, 0})
	c.DeleteColor(0)
	if !c.palette.Has(0) || c.CanUndo() {
		t.Error("Deleting the only entry should be a no-op")
	}
	c.DeleteColor(5)
	if c.palette.Len() != 1 {
		t.Error("Deleting an unknown entry should be a no-op")
	}
}

func TestAddColor(t *testing.T) {
	c := fourColorChart(t)
	idx, err := c.AddColor("#123456")
	if err != nil {
		t.Fatalf("AddColor failed: %v", err)
	}
	if idx != 4 {
		t.Errorf("Expected lowest free index 4, got %d", idx)
	}
	o, ok := c.palette.Override(4)
	if !ok || o.Source != o.Color {
		t.Errorf("Expected override with source equal to color, got %+v", o)
	}

	again, err := c.AddColor("#123456")
	if err != nil || again != idx {
		t.Errorf("Expected existing index %d, got %d (%v)", idx, again, err)
	}
	if c.history.UndoLen() != 1 {
		t.Errorf("Duplicate add should not record history, got %d steps", c.history.UndoLen())
	}

	for _, bad := range []string{"123456", "#12345", "#1234567", "#abc", "#gg0000"} {
		if _, err := c.AddColor(bad); !errors.Is(err, ErrInvalidColorFormat) {
			t.Errorf("AddColor(%q): expected ErrInvalidColorFormat, got %v", bad, err)
		}
	}
}

// fullChart returns a chart where each of n palette entries is used by
// exactly one cell.
func fullChart(t *testing.T, n int) *Chart {
	t.Helper()
	pix := make([]uint8, n)
	c := newTestChart(t, n, 1, nil, pix)
	for i := 0; i < n; i++ {
		pix[i] = uint8(i)
		c.palette.colors.Set(uint8(i), RGB{R: uint8(i), G: uint8(i)})
	}
	copy(c.canvas.Pix, pix)
	c.cfg.MaxColors = n
	return c
}

func TestAddColorGrowsPalette(t *testing.T) {
	c := fullChart(t, 64)
	idx, err := c.AddColor("#0000ff")
	if err != nil {
		t.Fatalf("AddColor failed: %v", err)
	}
	if idx != 64 {
		t.Errorf("Expected index 64, got %d", idx)
	}
	if c.Config().MaxColors != 80 {
		t.Errorf("Expected max colors 80, got %d", c.Config().MaxColors)
	}
	if c.palette.Len() != 65 {
		t.Errorf("Expected 65 entries, got %d", c.palette.Len())
	}
}

func TestAddColorDropsUnused(t *testing.T) {
	c := fullChart(t, 64)
	// Index 5 is no longer referenced.
	c.canvas.Pix[5] = 0

	idx, err := c.AddColor("#0000ff")
	if err != nil {
		t.Fatalf("AddColor failed: %v", err)
	}
	if idx != 5 {
		t.Errorf("Expected freed index 5, got %d", idx)
	}
	if c.Config().MaxColors != 64 {
		t.Errorf("Expected max colors to stay 64, got %d", c.Config().MaxColors)
	}
	if c.palette.Len() != 64 {
		t.Errorf("Expected 64 entries, got %d", c.palette.Len())
	}
}

func TestAddColorFull(t *testing.T) {
	c := fullChart(t, 256)
	before := dump(c)
	if _, err := c.AddColor("#0000ff"); !errors.Is(err, ErrPaletteFull) {
		t.Errorf("Expected ErrPaletteFull, got %v", err)
	}
	if dump(c) != before || c.CanUndo() {
		t.Error("A full palette should not be modified")
	}
}

func TestEditsBeforeGenerate(t *testing.T) {
	c := NewChart()
	c.Paint(0, 0, 0)
	c.DeleteColor(0)
	if err := c.ReplaceRegion(0, 0, 1, 1, 0, 0); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if err := c.MergeColors(0, 1); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if err := c.MergeMany([]int{0}, 1); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if idx, err := c.AddColor("#123456"); idx != -1 || err != nil {
		t.Errorf("Expected -1 and nil, got %d and %v", idx, err)
	}
	if _, err := c.AddColor("123456"); !errors.Is(err, ErrInvalidColorFormat) {
		t.Errorf("Expected ErrInvalidColorFormat, got %v", err)
	}
	if c.palette.Len() != 0 || c.Config().MaxColors != DefaultConfig().MaxColors {
		t.Error("AddColor before generation should not touch the palette")
	}
	if c.Generated() || c.CanUndo() {
		t.Error("Edits before generation should change nothing")
	}
}

func TestApply(t *testing.T) {
	c := fourColorChart(t)

	if _, err := c.Apply(Edit{Kind: EditPaint, X: 3, Y: 2, Index: 0}); err != nil {
		t.Fatalf("paint: %v", err)
	}
	if c.PixelIndex(3, 2) != 0 {
		t.Error("paint edit not applied")
	}

	idx, err := c.Apply(Edit{Kind: EditAddColor, Hex: "#101010"})
	if err != nil || idx != 4 {
		t.Fatalf("add_color: expected 4, got %d (%v)", idx, err)
	}

	if _, err := c.Apply(Edit{Kind: EditMergeMany, FromSet: []int{4}, To: 1}); err != nil {
		t.Fatalf("merge_many: %v", err)
	}
	if c.palette.Has(4) {
		t.Error("merge_many edit not applied")
	}

	if _, err := c.Apply(Edit{Kind: EditRecolor, Index: 9, Hex: "#000000"}); !errors.Is(err, ErrUnknownIndex) {
		t.Errorf("recolor: expected ErrUnknownIndex, got %v", err)
	}
	if _, err := c.Apply(Edit{Kind: "flip"}); !errors.Is(err, ErrUnknownEdit) {
		t.Errorf("Expected ErrUnknownEdit, got %v", err)
	}
}
