package sys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rift/riftwm/model"
)

// FakeAX is an in-memory AX implementation for tests: it owns a window
// list for one fake process and records every mutation the actor asks it
// to perform.
type FakeAX struct {
	mu sync.Mutex

	pid      model.Pid
	bundleId string
	windows  map[model.WindowId]model.WindowInfo
	frames   []model.Rect // SetFrame call history
	raises   []model.WindowId
	dead     bool
}

func NewFakeAX(pid model.Pid, bundleId string) *FakeAX {
	return &FakeAX{pid: pid, bundleId: bundleId, windows: make(map[model.WindowId]model.WindowInfo)}
}

func (f *FakeAX) Pid() model.Pid      { return f.pid }
func (f *FakeAX) BundleId() string    { return f.bundleId }

func (f *FakeAX) PutWindow(id model.WindowId, info model.WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[id] = info
}

func (f *FakeAX) Windows(ctx context.Context) ([]model.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.WindowInfo, 0, len(f.windows))
	for _, w := range f.windows {
		out = append(out, w)
	}
	return out, nil
}

func (f *FakeAX) SetFrame(ctx context.Context, w model.WindowId, frame model.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.windows[w]; ok {
		info.Frame = frame
		f.windows[w] = info
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *FakeAX) Raise(ctx context.Context, w model.WindowId) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raises = append(f.raises, w)
	return nil
}

func (f *FakeAX) Activate(ctx context.Context) error { return nil }

func (f *FakeAX) IsResponsive(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead
}

func (f *FakeAX) Kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead = true
}

func (f *FakeAX) Raises() []model.WindowId {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.WindowId, len(f.raises))
	copy(out, f.raises)
	return out
}

func (f *FakeAX) Frames() []model.Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Rect, len(f.frames))
	copy(out, f.frames)
	return out
}

// FakeWindowServer is an in-memory WindowServer for tests: a channel of
// injected notifications and a mutable screen list.
type FakeWindowServer struct {
	mu      sync.Mutex
	ch      chan Notification
	screens []model.ScreenInfo
	ids     map[model.WindowId]model.WindowServerId
	axs     map[model.Pid]AX
}

func NewFakeWindowServer() *FakeWindowServer {
	return &FakeWindowServer{
		ch:  make(chan Notification, 64),
		ids: make(map[model.WindowId]model.WindowServerId),
		axs: make(map[model.Pid]AX),
	}
}

// SetAX registers the AX handle a NotifyApplicationLaunched notification for
// pid should resolve to, satisfying AXProvider for tests and the in-process
// fake daemon alike.
func (f *FakeWindowServer) SetAX(pid model.Pid, ax AX) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.axs[pid] = ax
}

func (f *FakeWindowServer) AXFor(pid model.Pid) (AX, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ax, ok := f.axs[pid]
	if !ok {
		return nil, fmt.Errorf("sys: no fake AX registered for pid %d", pid)
	}
	return ax, nil
}

func (f *FakeWindowServer) Subscribe(ctx context.Context) (<-chan Notification, error) {
	return f.ch, nil
}

func (f *FakeWindowServer) Emit(n Notification) { f.ch <- n }

func (f *FakeWindowServer) SetScreens(screens []model.ScreenInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screens = screens
}

func (f *FakeWindowServer) Screens() ([]model.ScreenInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ScreenInfo, len(f.screens))
	copy(out, f.screens)
	return out, nil
}

func (f *FakeWindowServer) ActiveSpace(screen int) (model.SpaceId, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if screen < 0 || screen >= len(f.screens) || f.screens[screen].Space == nil {
		return 0, nil
	}
	return *f.screens[screen].Space, nil
}

func (f *FakeWindowServer) SetWindowServerId(w model.WindowId, id model.WindowServerId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids[w] = id
}

func (f *FakeWindowServer) WindowServerId(w model.WindowId) (model.WindowServerId, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.ids[w]
	return id, ok
}

// FakeDisplayLink ticks on demand rather than on a real refresh interval.
type FakeDisplayLink struct {
	mu        sync.Mutex
	ch        chan time.Time
	suspended int
}

func NewFakeDisplayLink() *FakeDisplayLink {
	return &FakeDisplayLink{ch: make(chan time.Time, 8)}
}

func (f *FakeDisplayLink) Start(ctx context.Context) (<-chan time.Time, error) {
	return f.ch, nil
}

func (f *FakeDisplayLink) Stop() { close(f.ch) }

func (f *FakeDisplayLink) Tick(at time.Time) { f.ch <- at }

func (f *FakeDisplayLink) SuspendUpdates() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended++
	return nil
}

func (f *FakeDisplayLink) ResumeUpdates() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended--
	return nil
}

func (f *FakeDisplayLink) SuspendDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspended
}
