package tramagrid

import "testing"

func TestHistorySaveUndoRedo(t *testing.T) {
	h := NewHistory(3)
	a := Snapshot{canvas: NewCanvas(1, 1)}
	b := Snapshot{canvas: NewCanvas(2, 2)}
	cur := Snapshot{canvas: NewCanvas(3, 3)}

	h.Save(a)
	h.Save(b)
	got, ok := h.Undo(cur)
	if !ok || got.canvas != b.canvas {
		t.Fatal("Expected undo to return the last saved snapshot")
	}
	if h.UndoLen() != 1 || h.RedoLen() != 1 {
		t.Errorf("Expected 1/1 steps, got %d/%d", h.UndoLen(), h.RedoLen())
	}
	got, ok = h.Redo(b)
	if !ok || got.canvas != cur.canvas {
		t.Fatal("Expected redo to return the state undone from")
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	first := Snapshot{canvas: NewCanvas(1, 1)}
	if h.Save(first) {
		t.Error("First save should not evict")
	}
	h.Save(Snapshot{canvas: NewCanvas(2, 1)})
	if !h.Save(Snapshot{canvas: NewCanvas(3, 1)}) {
		t.Error("Third save should evict")
	}
	if h.UndoLen() != 2 {
		t.Errorf("Expected 2 steps, got %d", h.UndoLen())
	}
	h.Undo(Snapshot{})
	s, _ := h.Undo(Snapshot{})
	if s.canvas == first.canvas {
		t.Error("Oldest step should have been evicted")
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(0)
	if h.capacity != 1 {
		t.Errorf("Expected capacity raised to 1, got %d", h.capacity)
	}
	if _, ok := h.Undo(Snapshot{}); ok {
		t.Error("Undo on empty history should report false")
	}
	if _, ok := h.Redo(Snapshot{}); ok {
		t.Error("Redo on empty history should report false")
	}
}

func TestUndoRedoInverse(t *testing.T) {
	ops := []struct {
		name string
		op   func(c *Chart)
	}{
		{"paint", func(c *Chart) { c.Paint(1, 1, 0) }},
		{"replace_region", func(c *Chart) { c.ReplaceRegion(0, 0, 3, 3, 2, 1) }},
		{"recolor", func(c *Chart) { c.ReplaceColor(2, "#abcdef") }},
		{"merge", func(c *Chart) { c.MergeColors(3, 0) }},
		{"merge_many", func(c *Chart) { c.MergeMany([]int{1, 2}, 3) }},
		{"delete", func(c *Chart) { c.DeleteColor(0) }},
		{"add_color", func(c *Chart) { c.AddColor("#777777") }},
	}
	for _, tt := range ops {
		t.Run(tt.name, func(t *testing.T) {
			c := fourColorChart(t)
			pre := dump(c)
			tt.op(c)
			post := dump(c)
			if post == pre {
				t.Fatal("Operation should change the chart")
			}

			if !c.Undo() {
				t.Fatal("Undo should succeed")
			}
			if got := dump(c); got != pre {
				t.Errorf("Undo: expected\n%s\ngot\n%s", pre, got)
			}
			if !c.Redo() {
				t.Fatal("Redo should succeed")
			}
			if got := dump(c); got != post {
				t.Errorf("Redo: expected\n%s\ngot\n%s", post, got)
			}
		})
	}
}

func TestHistoryBound(t *testing.T) {
	c := fourColorChart(t)
	for i := 0; i < 40; i++ {
		c.Paint(i%4, 0, i%3)
		if n := c.history.UndoLen(); n > HistoryCapacity {
			t.Fatalf("Expected at most %d undo steps, got %d", HistoryCapacity, n)
		}
	}
	if n := c.history.UndoLen(); n != HistoryCapacity {
		t.Errorf("Expected %d undo steps, got %d", HistoryCapacity, n)
	}
	undone := 0
	for c.Undo() {
		undone++
	}
	if undone != HistoryCapacity {
		t.Errorf("Expected %d undos, got %d", HistoryCapacity, undone)
	}
}

func TestRedoInvalidation(t *testing.T) {
	c := fourColorChart(t)
	c.Paint(0, 0, 2)
	c.Undo()
	if !c.CanRedo() {
		t.Fatal("Expected a redo step after undo")
	}
	c.Paint(1, 0, 2)
	after := dump(c)
	if c.CanRedo() {
		t.Error("A new edit should clear the redo stack")
	}
	if c.Redo() {
		t.Error("Redo should report false")
	}
	if dump(c) != after {
		t.Error("Redo after a new edit should change nothing")
	}
}

func TestUndoSnapshotsAreIndependent(t *testing.T) {
	c := fourColorChart(t)
	c.Paint(0, 0, 2)
	c.Paint(0, 0, 3)
	c.Undo()
	if got := c.PixelIndex(0, 0); got != 2 {
		t.Errorf("Expected 2 after one undo, got %d", got)
	}
	c.Undo()
	if got := c.PixelIndex(0, 0); got != 0 {
		t.Errorf("Expected 0 after two undos, got %d", got)
	}
}
