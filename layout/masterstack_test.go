package layout

import (
	"testing"

	"github.com/rift/riftwm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterStackPromotesSlaveWhenMasterRemoved(t *testing.T) {
	ms := NewMasterStack()
	a, c, d := w(3, 1), w(3, 2), w(3, 3)

	ms.AddWindow(a) // fills the single master slot
	ms.AddWindow(c) // overflow to stack
	ms.AddWindow(d)

	assert.Equal(t, []model.WindowId{a}, ms.masters)
	assert.Equal(t, []model.WindowId{c, d}, ms.slaves)

	ms.RemoveWindow(a)
	assert.Equal(t, []model.WindowId{c}, ms.masters)
	assert.Equal(t, []model.WindowId{d}, ms.slaves)
}

func TestMasterStackMoveNodePromotesToMaster(t *testing.T) {
	ms := NewMasterStack()
	a, c := w(3, 1), w(3, 2)
	ms.AddWindow(a)
	ms.AddWindow(c)

	ms.selected, ms.hasSelected = c, true
	resp := ms.MoveNode(DirLeft)
	require.NotNil(t, resp.FocusWindow)
	assert.Contains(t, ms.masters, c)
	assert.Contains(t, ms.slaves, a)
}

func TestMasterStackCalculateCoversScreen(t *testing.T) {
	ms := NewMasterStack()
	ms.AddWindow(w(3, 1))
	ms.AddWindow(w(3, 2))
	ms.AddWindow(w(3, 3))

	screen := model.Rect{X: 0, Y: 0, W: 1600, H: 900}
	frames := ms.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 3)

	total := 0.0
	for _, f := range frames {
		total += f.Rect.Area()
	}
	assert.InDelta(t, screen.Area(), total, 1.0)
}

func TestMasterStackResizeByClampsRatio(t *testing.T) {
	ms := NewMasterStack()
	ms.AddWindow(w(3, 1))
	ms.AddWindow(w(3, 2))

	assert.True(t, ms.ResizeBy(DirRight, 0.1))
	assert.False(t, ms.ResizeBy(DirRight, 10))
}
