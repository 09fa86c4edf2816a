package animation

import (
	"context"
	"testing"
	"time"

	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFpsForHeavyAppIsCapped(t *testing.T) {
	d := NewDriver(sys.NewFakeDisplayLink(), 60)
	fps := d.fpsFor("com.microsoft.VSCode", "", 100)
	assert.Equal(t, 35.0, fps)
}

func TestFpsForLargeWindowIsCapped(t *testing.T) {
	d := NewDriver(sys.NewFakeDisplayLink(), 60)
	assert.Equal(t, 45.0, d.fpsFor("com.example.app", "", 1_200_000))
	assert.Equal(t, 50.0, d.fpsFor("com.example.app", "", 600_000))
	assert.Equal(t, 60.0, d.fpsFor("com.example.app", "", 100))
}

func TestEasingEndpointsAreZeroAndOne(t *testing.T) {
	for e := Linear; e <= EaseOutBounce; e++ {
		assert.InDelta(t, 0, e.Apply(0), 1e-9, "easing %d at 0", e)
		assert.InDelta(t, 1, e.Apply(1), 1e-9, "easing %d at 1", e)
	}
}

func TestDriverRunAppliesFramesAndCompletes(t *testing.T) {
	link := sys.NewFakeDisplayLink()
	d := NewDriver(link, 60)

	w := model.WindowId{Pid: 1, Index: 1}
	from := model.Rect{X: 0, Y: 0, W: 100, H: 100}
	to := model.Rect{X: 100, Y: 100, W: 200, H: 200}
	d.AddWindow(w, from, to, "com.example.app", "", Linear, 10*time.Millisecond)

	var lastFrame model.Rect
	completed := make(chan struct{}, 1)
	d.OnFrame = func(id model.WindowId, r model.Rect) { lastFrame = r }
	d.OnComplete = func(id model.WindowId) { completed <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	link.Tick(time.Now())
	link.Tick(time.Now().Add(20 * time.Millisecond))

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("animation never completed")
	}
	assert.Equal(t, to, lastFrame)
}

func TestDriverSkipToEndAppliesTargetImmediately(t *testing.T) {
	link := sys.NewFakeDisplayLink()
	d := NewDriver(link, 60)
	w := model.WindowId{Pid: 1, Index: 1}
	to := model.Rect{X: 10, Y: 10, W: 50, H: 50}
	d.AddWindow(w, model.Rect{}, to, "", "", Linear, time.Second)

	var got model.Rect
	d.OnFrame = func(id model.WindowId, r model.Rect) { got = r }
	d.SkipToEnd(w)

	require.Equal(t, to, got)
	assert.Equal(t, 0, d.Active())
}
