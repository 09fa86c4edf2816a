package reactor

import (
	"testing"
	"time"

	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReactor(t *testing.T) (*Reactor, *sys.FakeWindowServer) {
	t.Helper()
	ws := sys.NewFakeWindowServer()
	space := model.SpaceId(1)
	ws.SetScreens([]model.ScreenInfo{{Frame: model.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Space: &space}})

	engine := layout.NewEngine(layout.Traditional, layout.VirtualWorkspaceSettings{DefaultWorkspaceCount: 1}, layout.Gaps{}, layout.StackStyle{})
	r := New(ws, engine, nil)
	r.spaces.Update(0, space)
	return r, ws
}

func TestFrameChangedEchoIsSuppressedAndClearsTarget(t *testing.T) {
	r, _ := newTestReactor(t)

	serverId := model.WindowServerId(10)
	id := model.WindowId{Pid: 1, Index: uint32(serverId)}
	r.windows[id] = model.WindowState{Id: id, ServerId: &serverId, IsManageable: true}

	target := model.Rect{X: 10, Y: 10, W: 100, H: 100}
	r.tx.Insert(serverId, r.tx.NextTxid(serverId), target)

	r.handleWindowFrameChanged(sys.Notification{Kind: sys.NotifyWindowFrameChanged, Pid: 1, ServerId: serverId, Frame: target})

	record := r.tx.Get(serverId)
	assert.False(t, record.HasTarget)
	assert.True(t, r.tx.IsSettling(serverId))
}

func TestFrameChangedDuringSettlingIsIgnored(t *testing.T) {
	r, _ := newTestReactor(t)
	serverId := model.WindowServerId(11)
	id := model.WindowId{Pid: 1, Index: uint32(serverId)}
	r.windows[id] = model.WindowState{Id: id, ServerId: &serverId, IsManageable: true, Frame: model.Rect{W: 50, H: 50}}

	r.tx.Insert(serverId, r.tx.NextTxid(serverId), model.Rect{X: 1, Y: 1, W: 50, H: 50})
	r.tx.ClearTarget(serverId)

	before := r.windows[id].Frame
	r.handleWindowFrameChanged(sys.Notification{Kind: sys.NotifyWindowFrameChanged, Pid: 1, ServerId: serverId, Frame: model.Rect{X: 999, Y: 999, W: 50, H: 50}})

	assert.Equal(t, before, r.windows[id].Frame)
}

func TestFrameChangedUserMoveUpdatesScreenAssignment(t *testing.T) {
	r, ws := newTestReactor(t)
	spaceA := model.SpaceId(1)
	spaceB := model.SpaceId(2)
	ws.SetScreens([]model.ScreenInfo{
		{Frame: model.Rect{X: 0, Y: 0, W: 1000, H: 1000}, Space: &spaceA},
		{Frame: model.Rect{X: 1000, Y: 0, W: 1000, H: 1000}, Space: &spaceB},
	})
	r.spaces.Update(0, spaceA)
	r.spaces.Update(1, spaceB)

	serverId := model.WindowServerId(12)
	id := model.WindowId{Pid: 1, Index: uint32(serverId)}
	r.windows[id] = model.WindowState{Id: id, ServerId: &serverId, IsManageable: true, Frame: model.Rect{X: 100, Y: 100, W: 200, H: 200}}
	r.lastScreen[id] = 0

	r.handleWindowFrameChanged(sys.Notification{Kind: sys.NotifyWindowFrameChanged, Pid: 1, ServerId: serverId, Frame: model.Rect{X: 1100, Y: 100, W: 200, H: 200}})

	require.Equal(t, 1, r.lastScreen[id])
}

func TestDragEndOverOtherWindowEndsDrag(t *testing.T) {
	r, _ := newTestReactor(t)
	space := model.SpaceId(1)

	a := model.WindowId{Pid: 1, Index: 1}
	b := model.WindowId{Pid: 1, Index: 2}
	r.engine.AddWindow(space, a, "", "")
	r.engine.AddWindow(space, b, "", "")

	r.windows[a] = model.WindowState{Id: a, IsManageable: true, Frame: model.Rect{X: 0, Y: 0, W: 100, H: 100}}
	r.windows[b] = model.WindowState{Id: b, IsManageable: true, Frame: model.Rect{X: 200, Y: 0, W: 100, H: 100}}

	r.drag.Begin(a, model.Point{X: 10, Y: 10})
	r.handleMouseUp(sys.Notification{Frame: model.Rect{X: 210, Y: 10}})

	assert.False(t, r.drag.Active())
}

func TestSweepActivationDeadlinesWithNoActorsIsSafe(t *testing.T) {
	r, _ := newTestReactor(t)
	future := time.Now().Add(2 * time.Second)
	r.sweepActivationDeadlines(future) // no actors registered: must not panic
}
