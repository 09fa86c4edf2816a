package layout

import (
	"testing"

	"github.com/rift/riftwm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func w(pid int32, idx uint32) model.WindowId {
	return model.WindowId{Pid: model.Pid(pid), Index: idx}
}

func TestTraditionalAddWindowSelectionAlwaysVisible(t *testing.T) {
	tr := NewTraditional()
	a, b, c := w(1, 1), w(1, 2), w(1, 3)

	tr.AddWindow(a)
	tr.AddWindow(b)
	tr.AddWindow(c)

	sel := tr.Selected()
	require.NotNil(t, sel)
	assert.Contains(t, tr.Visible(), *sel)
	assert.ElementsMatch(t, []model.WindowId{a, b, c}, tr.Visible())
}

func TestTraditionalCalculateIsIdempotent(t *testing.T) {
	tr := NewTraditional()
	tr.AddWindow(w(1, 1))
	tr.AddWindow(w(1, 2))
	tr.AddWindow(w(1, 3))

	screen := model.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	gaps := Gaps{}
	frames1 := tr.Calculate(screen, gaps, StackStyle{})
	frames2 := tr.Calculate(screen, gaps, StackStyle{})
	assert.Equal(t, frames1, frames2)
}

func TestTraditionalFramesCoverScreenWithoutOverlapGaps(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b)

	screen := model.Rect{X: 0, Y: 0, W: 1000, H: 1000}
	frames := tr.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 2)

	totalArea := 0.0
	for _, f := range frames {
		totalArea += f.Rect.Area()
	}
	assert.InDelta(t, screen.Area(), totalArea, 1.0)
}

func TestTraditionalRemoveWindowCollapsesContainer(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b)

	tr.RemoveWindow(b)
	assert.False(t, tr.Contains(b))
	assert.True(t, tr.Contains(a))
	assert.Equal(t, []model.WindowId{a}, tr.Visible())

	sel := tr.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, a, *sel)
}

func TestTraditionalSplitUnjoinRoundTrip(t *testing.T) {
	tr := NewTraditional()
	a := w(1, 1)
	tr.AddWindow(a)

	before := tr.Visible()
	tr.Split(KindVertical)
	tr.Unjoin()
	after := tr.Visible()

	assert.Equal(t, before, after)
	assert.True(t, tr.Contains(a))
}

func TestTraditionalJoinMakesStackWithoutDroppingWindows(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b) // splits root into a horizontal container [a, b]

	tr.MoveFocus(DirLeft) // select a
	tr.Join(DirRight)

	assert.ElementsMatch(t, []model.WindowId{a, b}, tr.Visible())
}

func TestTraditionalMoveNodeSwapsWindows(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b)

	tr.MoveFocus(DirLeft)
	resp := tr.MoveNode(DirRight)
	require.NotNil(t, resp.FocusWindow)
	assert.Equal(t, a, *resp.FocusWindow)
	assert.ElementsMatch(t, []model.WindowId{a, b}, tr.Visible())
}

func TestTraditionalResizeByRespectsMinimumShare(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b)

	ok := tr.ResizeBy(DirRight, 0.1)
	assert.True(t, ok)

	ok = tr.ResizeBy(DirRight, 10)
	assert.False(t, ok)
}

func TestTraditionalToggleFullscreenFillsScreen(t *testing.T) {
	tr := NewTraditional()
	a, b := w(1, 1), w(1, 2)
	tr.AddWindow(a)
	tr.AddWindow(b)

	tr.ToggleFullscreen()
	screen := model.Rect{X: 0, Y: 0, W: 800, H: 600}
	frames := tr.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Rect.SameAs(screen))
}
