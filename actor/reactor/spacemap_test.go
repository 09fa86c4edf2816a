package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rift/riftwm/model"
)

func TestSpaceMapMarkDisabledDropsStaleAssignment(t *testing.T) {
	m := NewSpaceMap()
	space := model.SpaceId(1)
	m.Update(0, space)

	m.MarkDisabled(0)

	assert.True(t, m.IsDisabled(0))
	_, ok := m.ScreenOf(space)
	assert.False(t, ok)
	_, ok = m.SpaceOf(0)
	assert.False(t, ok)
}

func TestSpaceMapClearDisabled(t *testing.T) {
	m := NewSpaceMap()
	m.MarkDisabled(0)
	assert.True(t, m.IsDisabled(0))

	m.ClearDisabled(0)
	assert.False(t, m.IsDisabled(0))
}

func TestSpaceMapRenameSpaceCarriesScreenAssignment(t *testing.T) {
	m := NewSpaceMap()
	old := model.SpaceId(1)
	renamed := model.SpaceId(2)
	m.Update(0, old)

	m.RenameSpace(old, renamed)

	screen, ok := m.ScreenOf(renamed)
	assert.True(t, ok)
	assert.Equal(t, 0, screen)
	_, ok = m.ScreenOf(old)
	assert.False(t, ok)
	space, ok := m.SpaceOf(0)
	assert.True(t, ok)
	assert.Equal(t, renamed, space)
}

func TestSpaceMapRenameSpaceNoopForUnknownSpace(t *testing.T) {
	m := NewSpaceMap()
	m.RenameSpace(model.SpaceId(9), model.SpaceId(10))
	_, ok := m.ScreenOf(model.SpaceId(10))
	assert.False(t, ok)
}
