package widget

const (
	RowHeight     = 60
	DefaultHeight = 400
	Overscan      = 1
)

// Window is the slice of a fixed-row-height list that is materialized for a
// given scroll position. Count is always the full logical row count.
type Window struct {
	Start       int
	End         int
	Count       int
	RowHeight   int
	Height      int
	TotalHeight int
}

func (w Window) Len() int { return w.End - w.Start }

// Visible computes which rows of a count-row list intersect a viewport of
// height px scrolled down by offset px, plus Overscan rows on each side.
func Visible(count, offset, height int) Window {
	if height <= 0 {
		height = DefaultHeight
	}
	w := Window{Count: count, RowHeight: RowHeight, Height: height, TotalHeight: count * RowHeight}
	if count <= 0 {
		return w
	}

	maxOffset := w.TotalHeight - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}

	w.Start = offset/RowHeight - Overscan
	if w.Start < 0 {
		w.Start = 0
	}
	w.End = (offset+height+RowHeight-1)/RowHeight + Overscan
	if w.End > count {
		w.End = count
	}
	return w
}
