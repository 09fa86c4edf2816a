package layout

import "github.com/rift/riftwm/model"

// ScrollingTree implements the scrolling-columns backend: an ordered,
// unbounded row of single-window columns where the viewport scrolls to
// keep the selection on screen. Spec.md describes this backend only by
// contract ("identical in contract" to the other three); the column model
// below is the natural reading of that contract.
type ScrollingTree struct {
	columns       []model.WindowId
	colWidthShare float64 // fraction of screen width per column
	selected      int     // index into columns, -1 if empty
	fullscreen    *model.WindowId
}

func NewScrolling() *ScrollingTree {
	return &ScrollingTree{colWidthShare: 0.5, selected: -1}
}

func (t *ScrollingTree) Kind() Kind { return Scrolling }

func (t *ScrollingTree) indexOf(w model.WindowId) int {
	for i, x := range t.columns {
		if x == w {
			return i
		}
	}
	return -1
}

func (t *ScrollingTree) AddWindow(w model.WindowId) Response {
	insertAt := t.selected + 1
	if insertAt <= 0 || insertAt > len(t.columns) {
		insertAt = len(t.columns)
	}
	t.columns = append(t.columns, model.WindowId{})
	copy(t.columns[insertAt+1:], t.columns[insertAt:])
	t.columns[insertAt] = w
	t.selected = insertAt
	return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
}

func (t *ScrollingTree) RemoveWindow(w model.WindowId) Response {
	i := t.indexOf(w)
	if i < 0 {
		return emptyResponse()
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	if t.fullscreen != nil && *t.fullscreen == w {
		t.fullscreen = nil
	}
	if len(t.columns) == 0 {
		t.selected = -1
	} else if t.selected >= len(t.columns) {
		t.selected = len(t.columns) - 1
	}
	return emptyResponse()
}

func (t *ScrollingTree) Contains(w model.WindowId) bool { return t.indexOf(w) >= 0 }

func (t *ScrollingTree) SwapWindows(a, b model.WindowId) bool {
	ia, ib := t.indexOf(a), t.indexOf(b)
	if ia < 0 || ib < 0 {
		return false
	}
	t.columns[ia], t.columns[ib] = t.columns[ib], t.columns[ia]
	return true
}

// Split and Join/Unjoin have no meaning for a flat column row; no-ops.
func (t *ScrollingTree) Split(kind ContainerKind) Response { return emptyResponse() }
func (t *ScrollingTree) Join(dir Direction) Response       { return emptyResponse() }
func (t *ScrollingTree) Unjoin() Response                  { return emptyResponse() }

func (t *ScrollingTree) ToggleFullscreen() Response {
	if t.selected < 0 {
		return emptyResponse()
	}
	w := t.columns[t.selected]
	if t.fullscreen != nil && *t.fullscreen == w {
		t.fullscreen = nil
		return emptyResponse()
	}
	t.fullscreen = &w
	return Response{RaiseWindows: []model.WindowId{w}}
}

// MoveFocus(left/right) scrolls the selection; up/down have no effect in a
// single row.
func (t *ScrollingTree) MoveFocus(dir Direction) Response {
	if t.selected < 0 {
		return emptyResponse()
	}
	switch dir {
	case DirLeft:
		if t.selected > 0 {
			t.selected--
		}
	case DirRight:
		if t.selected < len(t.columns)-1 {
			t.selected++
		}
	default:
		return emptyResponse()
	}
	w := t.columns[t.selected]
	return Response{FocusWindow: &w, RaiseWindows: []model.WindowId{w}}
}

func (t *ScrollingTree) MoveNode(dir Direction) Response {
	if t.selected < 0 {
		return emptyResponse()
	}
	target := t.selected
	switch dir {
	case DirLeft:
		target--
	case DirRight:
		target++
	default:
		return emptyResponse()
	}
	if target < 0 || target >= len(t.columns) {
		return emptyResponse()
	}
	t.columns[t.selected], t.columns[target] = t.columns[target], t.columns[t.selected]
	t.selected = target
	w := t.columns[target]
	return Response{FocusWindow: &w}
}

func (t *ScrollingTree) ResizeBy(dir Direction, fraction float64) bool {
	const minShare, maxShare = 0.15, 1.0
	delta := fraction
	if dir == DirLeft {
		delta = -delta
	} else if dir != DirRight {
		return false
	}
	newShare := t.colWidthShare + delta
	if newShare < minShare || newShare > maxShare {
		return false
	}
	t.colWidthShare = newShare
	return true
}

func (t *ScrollingTree) Rebalance() { t.colWidthShare = 0.5 }

func (t *ScrollingTree) Selected() *model.WindowId {
	if t.selected < 0 {
		return nil
	}
	w := t.columns[t.selected]
	return &w
}

func (t *ScrollingTree) Visible() []model.WindowId {
	out := make([]model.WindowId, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *ScrollingTree) Calculate(screen model.Rect, gaps Gaps, stack StackStyle) []Frame {
	area := gaps.Apply(screen)

	if t.fullscreen != nil {
		return []Frame{{Window: *t.fullscreen, Rect: screen}}
	}
	if len(t.columns) == 0 {
		return nil
	}

	colWidth := area.W * t.colWidthShare
	offset := float64(t.selected)*(colWidth+gaps.InnerHorizontal) - area.W/2 + colWidth/2
	maxOffset := float64(len(t.columns))*(colWidth+gaps.InnerHorizontal) - area.W
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}

	out := make([]Frame, 0, len(t.columns))
	for i, w := range t.columns {
		x := area.X + float64(i)*(colWidth+gaps.InnerHorizontal) - offset
		out = append(out, Frame{Window: w, Rect: model.Rect{X: x, Y: area.Y, W: colWidth, H: area.H}})
	}
	return out
}
