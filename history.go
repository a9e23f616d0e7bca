package tramagrid

// HistoryCapacity is the number of undo steps kept. Older steps are
// discarded first.
const HistoryCapacity = 30

// Snapshot is an immutable copy of the editable state of a chart.
type Snapshot struct {
	canvas  *Canvas
	palette *Palette
}

func takeSnapshot(c *Canvas, p *Palette) Snapshot {
	return Snapshot{canvas: c.Clone(), palette: p.Clone()}
}

// History is a bounded linear undo/redo log. Recording a new step
// discards the redo branch.
type History struct {
	capacity int
	undo     []Snapshot
	redo     []Snapshot
}

// NewHistory creates a history holding at most capacity undo steps.
func NewHistory(capacity int) *History {
	return &History{capacity: max(1, capacity)}
}

// Save records s as the state to return to on the next undo and clears
// the redo stack. It reports whether the oldest step was evicted.
func (h *History) Save(s Snapshot) (evicted bool) {
	if len(h.undo) >= h.capacity {
		h.undo[0] = Snapshot{}
		h.undo = h.undo[1:]
		evicted = true
	}
	h.undo = append(h.undo, s)
	h.redo = nil
	return evicted
}

// Undo pops the most recent step, pushing current onto the redo stack.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return s, true
}

// Redo pops the most recently undone step, pushing current onto the undo
// stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return s, true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// UndoLen returns the number of undo steps available.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redo steps available.
func (h *History) RedoLen() int { return len(h.redo) }
