package tramagrid

// Run is a stretch of consecutive stitches of one color.
type Run struct {
	Count int
	Index uint8
}

// RowSummaryEntry is a Run with its color resolved.
type RowSummaryEntry struct {
	Count int    `json:"count"`
	Hex   string `json:"hex"`
}

// Direction is the working direction of a chart row.
type Direction int

const (
	// RightToLeft is used for odd rows, starting from row 1.
	RightToLeft Direction = iota
	// LeftToRight is used for even rows.
	LeftToRight
)

// Arrow returns a plain-text arrow for the direction.
func (d Direction) Arrow() string {
	if d == RightToLeft {
		return "<-"
	}
	return "->"
}

// RowDirection returns the working direction of chart row n. Work goes
// back and forth, starting at the bottom right.
func RowDirection(n int) Direction {
	if n%2 != 0 {
		return RightToLeft
	}
	return LeftToRight
}

// encodeRow run-length encodes chart row n of c in working order. Rows
// are numbered from 1 at the bottom of the canvas. Rows outside the canvas
// encode to nil.
func encodeRow(c *Canvas, n int) []Run {
	if c == nil {
		return nil
	}
	y := c.Height - n
	if y < 0 || y >= c.Height {
		return nil
	}
	row := c.Row(y)

	var runs []Run
	add := func(v uint8) {
		if k := len(runs) - 1; k >= 0 && runs[k].Index == v {
			runs[k].Count++
			return
		}
		runs = append(runs, Run{Count: 1, Index: v})
	}

	if RowDirection(n) == RightToLeft {
		for x := len(row) - 1; x >= 0; x-- {
			add(row[x])
		}
	} else {
		for _, v := range row {
			add(v)
		}
	}
	return runs
}

// summarize resolves run indices to hex colors.
func summarize(runs []Run, p *Palette) []RowSummaryEntry {
	out := make([]RowSummaryEntry, 0, len(runs))
	for _, r := range runs {
		c, _ := p.Color(r.Index)
		out = append(out, RowSummaryEntry{Count: r.Count, Hex: c.Hex()})
	}
	return out
}
