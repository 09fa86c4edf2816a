// Package sys defines the narrow interfaces the reactor and app actors use
// to talk to the operating system: accessibility, the window server, and
// the display link. Binding these to real macOS frameworks lives outside
// this module; sys also ships in-memory fakes (fake.go) so the rest of the
// tree can be exercised without a real display (spec.md intro, "system
// collaborators").
package sys

import (
	"context"
	"time"

	"github.com/rift/riftwm/model"
)

// AX is the accessibility surface for one application: everything the app
// actor needs to observe and move that app's windows.
type AX interface {
	Pid() model.Pid
	BundleId() string
	Windows(ctx context.Context) ([]model.WindowInfo, error)
	SetFrame(ctx context.Context, w model.WindowId, frame model.Rect) error
	Raise(ctx context.Context, w model.WindowId) error
	Activate(ctx context.Context) error
	IsResponsive(ctx context.Context) bool
}

// Notification is the taxonomy of AX/window-server events the reactor
// consumes, tagged with the window/app they concern.
type NotificationKind int

const (
	NotifyWindowCreated NotificationKind = iota
	NotifyWindowDestroyed
	NotifyWindowMinimized
	NotifyWindowDeminiaturized
	NotifyWindowFrameChanged
	NotifyWindowTitleChanged
	NotifyApplicationActivated
	NotifyApplicationDeactivated
	NotifyApplicationLaunched
	NotifyApplicationTerminated
	NotifyMouseMoved
	NotifyMouseDown
	NotifyMouseUp

	// NotifyScreenParametersChanged and NotifySpaceChanged report display
	// reconfiguration and desktop-space switches; NotifyMissionControlEntered/
	// Exited bracket a mission-control session, during which the reactor
	// buffers topology changes instead of reacting to them live (spec.md
	// §4.1 "mission control buffering" / "stale cleanup suppression").
	NotifyScreenParametersChanged
	NotifySpaceChanged
	NotifyMissionControlEntered
	NotifyMissionControlExited
	NotifySystemWoke
)

type Notification struct {
	Kind     NotificationKind
	Pid      model.Pid
	Window   model.WindowId
	ServerId model.WindowServerId
	Frame    model.Rect
	At       time.Time
}

// WindowServer is the low-level, process-independent view of the window
// list and the active space/screen topology.
type WindowServer interface {
	Subscribe(ctx context.Context) (<-chan Notification, error)
	ActiveSpace(screen int) (model.SpaceId, error)
	Screens() ([]model.ScreenInfo, error)
	WindowServerId(w model.WindowId) (model.WindowServerId, bool)
}

// AXProvider is an optional capability a WindowServer implementation can
// satisfy to hand the reactor an AX handle for a pid it has just learned
// about via NotifyApplicationLaunched (spec.md §4.2 "app actor
// registration"). Narrow and optional, the same way the teacher project
// type-asserts for optional store capabilities rather than growing the main
// interface.
type AXProvider interface {
	AXFor(pid model.Pid) (AX, error)
}

// DisplayLink delivers a tick once per screen refresh, and brackets a
// batch of frame updates so the compositor commits them together (spec.md
// §4.5 "batched commits").
type DisplayLink interface {
	Start(ctx context.Context) (<-chan time.Time, error)
	Stop()
	SuspendUpdates() error
	ResumeUpdates() error
}

// WatchDisplayChanges calls onChange with a fresh Screens() read after every
// notification the subscription delivers (it does not filter for topology
// changes), retrying the underlying subscription with exponential backoff. Grounded
// in cortile's store.monitorRandREvents reconnect loop, generalized from
// X11 RandR events to an arbitrary topology-change source.
func WatchDisplayChanges(ctx context.Context, ws WindowServer, onChange func([]model.ScreenInfo)) {
	backoff := 250 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		notifications, err := ws.Subscribe(ctx)
		if err != nil {
			time.Sleep(backoff)
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 250 * time.Millisecond

		for n := range notifications {
			switch n.Kind {
			case NotifyApplicationLaunched, NotifyApplicationTerminated:
				// app launch/termination notifications get no special
				// handling; screens are re-read below for every kind.
			}
			_ = n
			screens, err := ws.Screens()
			if err != nil {
				continue
			}
			onChange(screens)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
