package layout

import (
	"testing"

	"github.com/rift/riftwm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollingAddWindowSelectsInserted(t *testing.T) {
	s := NewScrolling()
	a, c := w(4, 1), w(4, 2)

	s.AddWindow(a)
	resp := s.AddWindow(c)

	require.NotNil(t, resp.FocusWindow)
	assert.Equal(t, c, *resp.FocusWindow)
	assert.ElementsMatch(t, []model.WindowId{a, c}, s.Visible())
}

func TestScrollingMoveFocusScrollsSelection(t *testing.T) {
	s := NewScrolling()
	a, c, d := w(4, 1), w(4, 2), w(4, 3)
	s.AddWindow(a)
	s.AddWindow(c)
	s.AddWindow(d)

	resp := s.MoveFocus(DirLeft)
	require.NotNil(t, resp.FocusWindow)

	sel := s.Selected()
	require.NotNil(t, sel)
	assert.Contains(t, s.Visible(), *sel)
}

func TestScrollingCalculateKeepsSelectionOnScreen(t *testing.T) {
	s := NewScrolling()
	for i := 1; i <= 5; i++ {
		s.AddWindow(w(4, uint32(i)))
	}

	screen := model.Rect{X: 0, Y: 0, W: 1000, H: 800}
	frames := s.Calculate(screen, Gaps{}, StackStyle{})
	require.Len(t, frames, 5)

	sel := s.Selected()
	require.NotNil(t, sel)
	var found bool
	for _, f := range frames {
		if f.Window == *sel {
			found = true
			assert.Less(t, f.Rect.X, screen.MaxX())
			assert.Greater(t, f.Rect.MaxX(), screen.X)
		}
	}
	assert.True(t, found)
}
