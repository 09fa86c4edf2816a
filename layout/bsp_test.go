package layout

import (
	"testing"

	"github.com/rift/riftwm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBSPAddRemoveKeepsSelectionVisible(t *testing.T) {
	b := NewBSP()
	a, c, d := w(2, 1), w(2, 2), w(2, 3)

	b.AddWindow(a)
	b.AddWindow(c)
	b.AddWindow(d)

	sel := b.Selected()
	require.NotNil(t, sel)
	assert.Contains(t, b.Visible(), *sel)

	b.RemoveWindow(c)
	assert.False(t, b.Contains(c))
	assert.ElementsMatch(t, []model.WindowId{a, d}, b.Visible())
}

func TestBSPCalculateCoversScreen(t *testing.T) {
	b := NewBSP()
	b.AddWindow(w(2, 1))
	b.AddWindow(w(2, 2))
	b.AddWindow(w(2, 3))

	screen := model.Rect{X: 0, Y: 0, W: 1200, H: 800}
	frames := b.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 3)

	total := 0.0
	for _, f := range frames {
		total += f.Rect.Area()
	}
	assert.InDelta(t, screen.Area(), total, 1.0)
}

func TestBSPResizeByRespectsRatioBounds(t *testing.T) {
	b := NewBSP()
	b.AddWindow(w(2, 1))
	b.AddWindow(w(2, 2))

	assert.True(t, b.ResizeBy(DirRight, 0.1))
	assert.False(t, b.ResizeBy(DirRight, 10))
}

func TestBSPToggleFullscreen(t *testing.T) {
	b := NewBSP()
	a := w(2, 1)
	b.AddWindow(a)
	b.AddWindow(w(2, 2))

	b.MoveFocus(DirLeft)
	b.ToggleFullscreen()

	screen := model.Rect{X: 0, Y: 0, W: 640, H: 480}
	frames := b.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Rect.SameAs(screen))
}
