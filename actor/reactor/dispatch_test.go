package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
)

func TestApplyLayoutDispatchesChangedFrameDirectly(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)

	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	id := model.WindowId{Pid: 1, Index: 1}
	r.windows[id] = model.WindowState{Id: id, IsManageable: true}
	r.engine.AddWindow(space, id, "", "")

	r.applyLayout(space)

	require.Eventually(t, func() bool { return len(ax.Frames()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, r.windows[id].Frame)
}

func TestApplyLayoutSkipsUnchangedFrame(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)

	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	id := model.WindowId{Pid: 1, Index: 1}
	r.engine.AddWindow(space, id, "", "")
	r.windows[id] = model.WindowState{Id: id, IsManageable: true, Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}}

	r.applyLayout(space)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, ax.Frames())
}

func TestApplyLayoutRestoresFloatingFrameInsteadOfTiling(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)

	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	id := model.WindowId{Pid: 1, Index: 1}
	floatingFrame := model.Rect{X: 500, Y: 500, W: 300, H: 200}
	r.engine.AddWindow(space, id, "", "")
	r.windows[id] = model.WindowState{Id: id, IsManageable: true, Floating: true, Frame: floatingFrame}
	r.floatingFrames[id] = floatingFrame

	r.applyLayout(space)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, ax.Frames(), "floating window already at its captured frame shouldn't be redispatched")
}

func TestDispatchRaisesSendsRaiseWindowsThenFocusWindow(t *testing.T) {
	r, _ := newTestReactor(t)

	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	a := model.WindowId{Pid: 1, Index: 1}
	b := model.WindowId{Pid: 1, Index: 2}
	c := model.WindowId{Pid: 1, Index: 3}
	r.windows[a] = model.WindowState{Id: a}
	r.windows[b] = model.WindowState{Id: b}
	r.windows[c] = model.WindowState{Id: c}

	r.dispatchRaises(layout.Response{RaiseWindows: []model.WindowId{a, b}, FocusWindow: &c})

	require.Eventually(t, func() bool { return len(ax.Raises()) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []model.WindowId{a, b, c}, ax.Raises())
}

func TestHandleApplicationLaunchedAdoptsManageableInitialWindows(t *testing.T) {
	r, ws := newTestReactor(t)

	ax := sys.NewFakeAX(2, "com.example.editor")
	manageable := model.WindowId{Pid: 2, Index: 100}
	ax.PutWindow(manageable, model.WindowInfo{
		Pid: 2, IsStandard: true, IsRoot: true, Role: model.RoleWindow,
		Frame: model.Rect{X: 0, Y: 0, W: 400, H: 300}, BundleId: "com.example.editor",
	})
	minimized := model.WindowId{Pid: 2, Index: 101}
	ax.PutWindow(minimized, model.WindowInfo{
		Pid: 2, IsStandard: true, IsRoot: true, IsMinimized: true, Role: model.RoleWindow,
		Frame: model.Rect{X: 0, Y: 0, W: 400, H: 300}, BundleId: "com.example.editor",
	})
	ws.SetAX(2, ax)

	r.handleApplicationLaunched(sys.Notification{Kind: sys.NotifyApplicationLaunched, Pid: 2})

	var managed int
	for id, state := range r.windows {
		if id.Pid == 2 && state.IsManageable {
			managed++
		}
	}
	assert.Equal(t, 1, managed, "only the manageable window should have been adopted")
	_, hasActor := r.actors[2]
	assert.True(t, hasActor)
}

func TestHandleApplicationLaunchedWithoutAXIsNoop(t *testing.T) {
	r, _ := newTestReactor(t)
	r.handleApplicationLaunched(sys.Notification{Kind: sys.NotifyApplicationLaunched, Pid: 99})
	_, hasActor := r.actors[99]
	assert.False(t, hasActor)
}

func TestReconcileScreensRenamesSpace(t *testing.T) {
	r, ws := newTestReactor(t)
	oldSpace := model.SpaceId(1)
	newSpace := model.SpaceId(5)

	r.engine.AddWindow(oldSpace, model.WindowId{Pid: 1, Index: 1}, "", "")

	ws.SetScreens([]model.ScreenInfo{{Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Space: &newSpace}})
	r.reconcileScreens([]model.ScreenInfo{{Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Space: &newSpace}})

	screen, ok := r.spaces.ScreenOf(newSpace)
	require.True(t, ok)
	assert.Equal(t, 0, screen)
	_, staleOk := r.spaces.ScreenOf(oldSpace)
	assert.False(t, staleOk)
}

func TestReconcileScreensSuppressesAllDisabledReport(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)
	r.spaces.Update(0, space)

	r.reconcileScreens([]model.ScreenInfo{{Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Space: nil}})

	assert.True(t, r.suppressedCleanup)
	_, ok := r.spaces.ScreenOf(space)
	assert.True(t, ok, "a transient all-disabled report must not tear down the existing assignment")
}

func TestScreenParametersChangedBufferedDuringMissionControl(t *testing.T) {
	r, ws := newTestReactor(t)
	r.missionControlActive = true

	newSpace := model.SpaceId(7)
	ws.SetScreens([]model.ScreenInfo{{Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Space: &newSpace}})
	r.handleScreenParametersChanged()

	assert.True(t, r.hasPendingScreens)
	_, ok := r.spaces.ScreenOf(newSpace)
	assert.False(t, ok, "buffered report must not be applied until mission control exits")

	r.exitMissionControl()
	assert.False(t, r.missionControlActive)
	assert.False(t, r.hasPendingScreens)
	_, ok = r.spaces.ScreenOf(newSpace)
	assert.True(t, ok)
}

func TestHandleSwitchWorkspaceHidesPriorWorkspaceWindows(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)

	settings := layout.VirtualWorkspaceSettings{DefaultWorkspaceCount: 2}
	r.engine.Manager().UpdateSettings(settings)
	r.engine.Manager().EnsureSpace(space, layout.Gaps{}, layout.StackStyle{})

	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	a := model.WindowId{Pid: 1, Index: 1}
	r.windows[a] = model.WindowState{Id: a, IsManageable: true, Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	r.engine.AddWindow(space, a, "", "")

	reply := make(chan CommandResult, 1)
	r.handleCommand(Command{Kind: CommandSwitchWorkspace, Space: space, WorkspaceIndex: 1, Reply: reply})
	<-reply

	require.Eventually(t, func() bool { return len(ax.Frames()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, hideCorner, ax.Frames()[0])
}

func TestCommandRaiseSendsDirectRaise(t *testing.T) {
	r, _ := newTestReactor(t)
	ax := sys.NewFakeAX(1, "com.example.app")
	r.registerActor(1, ax)

	id := model.WindowId{Pid: 1, Index: 1}
	r.windows[id] = model.WindowState{Id: id, IsManageable: true}

	reply := make(chan CommandResult, 1)
	r.handleCommand(Command{Kind: CommandRaise, Window: id, Reply: reply})
	<-reply

	require.Eventually(t, func() bool { return len(ax.Raises()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, id, ax.Raises()[0])
}
