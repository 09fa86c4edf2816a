package layout

import (
	"testing"

	"github.com/rift/riftwm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(count int) VirtualWorkspaceSettings {
	return VirtualWorkspaceSettings{
		Enabled:               true,
		DefaultWorkspaceCount: count,
		AutoAssignWindows:     true,
		AppRules: []AppRule{
			{BundleId: "com.apple.mail", Workspace: 1},
		},
	}
}

func TestEngineAssignsWindowByAppRule(t *testing.T) {
	e := NewEngine(Traditional, testSettings(3), Gaps{}, StackStyle{})
	space := model.SpaceId(1)
	a := w(5, 1)

	e.AddWindow(space, a, "com.apple.mail", "Mail")

	ws := e.Manager().Workspaces(space)
	require.Len(t, ws, 3)
	assert.True(t, ws[1].Backend.Contains(a))
	assert.False(t, ws[0].Backend.Contains(a))
}

func TestEngineSwitchWorkspaceRoundTrip(t *testing.T) {
	e := NewEngine(Traditional, testSettings(2), Gaps{}, StackStyle{})
	space := model.SpaceId(1)
	e.ensure(space)

	_, ok := e.SwitchWorkspace(space, 1)
	require.True(t, ok)
	assert.Equal(t, 1, e.manager.ActiveIndex(space))

	_, ok = e.SwitchWorkspace(space, 0)
	require.True(t, ok)
	assert.Equal(t, 0, e.manager.ActiveIndex(space))
}

func TestEngineChangeKindPreservesMembership(t *testing.T) {
	e := NewEngine(Traditional, testSettings(1), Gaps{}, StackStyle{})
	space := model.SpaceId(1)
	a, c := w(6, 1), w(6, 2)

	e.AddWindow(space, a, "", "")
	e.AddWindow(space, c, "", "")

	e.ChangeKind(space, BSP)

	active := e.manager.Active(space)
	require.Equal(t, BSP, active.Backend.Kind())
	assert.ElementsMatch(t, []model.WindowId{a, c}, active.Backend.Visible())
}

func TestVirtualWorkspaceSettingsValidate(t *testing.T) {
	s := testSettings(0)
	assert.Error(t, s.Validate())

	s.DefaultWorkspaceCount = 2
	s.DefaultWorkspace = 5
	assert.Error(t, s.Validate())

	s.DefaultWorkspace = 0
	assert.NoError(t, s.Validate())
}
