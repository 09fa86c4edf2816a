// Package reactor implements the single-threaded event arbiter (spec.md
// §4.1): one goroutine draining a mailbox of window-server notifications,
// app-actor events and external commands, serializing every decision
// about layout, focus and raises through one place. Nothing outside this
// package's Run loop mutates reactor state.
package reactor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rift/riftwm/actor/app"
	"github.com/rift/riftwm/animation"
	"github.com/rift/riftwm/layout"
	"github.com/rift/riftwm/metrics"
	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
	"github.com/rift/riftwm/txstore"
)

// hideCorner is the off-screen parking frame for a window whose workspace
// just became invisible: far enough outside any real screen rect that it
// can never overlap one, but still a finite rect so SetFrame round-trips
// cleanly (spec.md GLOSSARY "hide corner").
var hideCorner = model.Rect{X: -100000, Y: -100000, W: 1, H: 1}

type animFrameMsg struct {
	window model.WindowId
	rect   model.Rect
	done   bool
}

// frameEpsilon is the tolerance used when comparing an observed frame to a
// transaction's recorded target: AX coordinates round-trip through
// floating point and the compositor, so exact equality is never the right
// test (model.Rect.SameAs uses the same tolerance).
const frameEpsilon = 0.5

type mailboxItem struct {
	notification *sys.Notification
	appEvent     *app.Event
	command      *Command
}

// Reactor is the event arbiter. Construct with New, then call Run in its
// own goroutine.
type Reactor struct {
	log *logrus.Entry

	ws    sys.WindowServer
	tx    *txstore.Store
	engine *layout.Engine
	spaces *SpaceMap
	drag   *DragManager

	actors map[model.Pid]*app.Actor
	windows map[model.WindowId]model.WindowState
	nextIndex map[model.Pid]uint32

	lastScreen map[model.WindowId]int
	floatingFrames map[model.WindowId]model.Rect

	missionControlActive bool
	changingScreens      bool
	suppressedCleanup    bool
	pendingScreens       []model.ScreenInfo
	hasPendingScreens    bool

	axProvider sys.AXProvider

	anim         *animation.Driver
	animEnabled  bool
	animDuration time.Duration
	animEasing   animation.Easing
	animFrames   chan animFrameMsg

	mailbox   chan mailboxItem
	appEvents chan app.Event

	configHandler ConfigHandler
	metrics       *metrics.Registry
	saveAndExit   SaveAndExitHook
	debugDump     DebugHook
	onEvent       EventSink
}

// EventSink receives a notice every time the reactor changes visible state
// (a window is added/removed, a workspace switches), for the control
// channel's subscribe() side to broadcast. nil is safe and disables it.
type EventSink func(kind string, data interface{})

func (r *Reactor) SetEventSink(sink EventSink) { r.onEvent = sink }

func (r *Reactor) emit(kind string, data interface{}) {
	if r.onEvent != nil {
		r.onEvent(kind, data)
	}
}

// SetMetrics attaches a metrics registry; nil is safe and disables
// instrumentation (used by tests that don't care about it).
func (r *Reactor) SetMetrics(m *metrics.Registry) { r.metrics = m }

func New(ws sys.WindowServer, engine *layout.Engine, log *logrus.Logger) *Reactor {
	if log == nil {
		log = logrus.New()
	}
	r := &Reactor{
		log:            log.WithField("component", "reactor"),
		ws:             ws,
		tx:             txstore.New(),
		engine:         engine,
		spaces:         NewSpaceMap(),
		drag:           NewDragManager(),
		actors:         make(map[model.Pid]*app.Actor),
		windows:        make(map[model.WindowId]model.WindowState),
		nextIndex:      make(map[model.Pid]uint32),
		lastScreen:     make(map[model.WindowId]int),
		floatingFrames: make(map[model.WindowId]model.Rect),
		animFrames:     make(chan animFrameMsg, 256),
		mailbox:        make(chan mailboxItem, 256),
		appEvents:      make(chan app.Event, 256),
	}
	if p, ok := ws.(sys.AXProvider); ok {
		r.axProvider = p
	}
	return r
}

// SetAnimationDriver wires the animation driver's per-tick callbacks back
// into the reactor's own mailbox loop via animFrames, rather than letting
// the driver's tick goroutine call actor.Send directly: every actor
// dispatch has to be serialized through the single reactor goroutine, the
// same discipline the mailbox/appEvents channels already enforce for
// notifications and app-actor events (spec.md §4.1 "single arbiter").
func (r *Reactor) SetAnimationDriver(d *animation.Driver, enabled bool, duration time.Duration, easing animation.Easing) {
	r.anim = d
	r.UpdateAnimationSettings(enabled, duration, easing)
	d.OnFrame = func(w model.WindowId, rect model.Rect) {
		r.animFrames <- animFrameMsg{window: w, rect: rect}
	}
	d.OnComplete = func(w model.WindowId) {
		r.animFrames <- animFrameMsg{window: w, rect: model.Rect{}, done: true}
	}
}

// UpdateAnimationSettings applies a live config change (spec.md's
// SetAnimate/SetAnimationDuration/SetAnimationFps/SetAnimationEasing
// commands) without re-wiring the driver's callbacks.
func (r *Reactor) UpdateAnimationSettings(enabled bool, duration time.Duration, easing animation.Easing) {
	r.animEnabled = enabled
	r.animDuration = duration
	r.animEasing = easing
}

// Run drains the mailbox until ctx is canceled. It also fans in app-actor
// events and window-server notifications so everything funnels through
// the same serialized loop.
func (r *Reactor) Run(ctx context.Context) error {
	notifications, err := r.ws.Subscribe(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			start := time.Now()
			r.handleNotification(n)
			r.observe("notification", start)
		case e := <-r.appEvents:
			start := time.Now()
			r.handleAppEvent(e)
			r.observe("app_event", start)
		case item := <-r.mailbox:
			start := time.Now()
			r.handleMailbox(item)
			r.observe("command", start)
		case msg := <-r.animFrames:
			r.handleAnimFrame(msg)
		case now := <-ticker.C:
			r.sweepActivationDeadlines(now)
		}
		if r.metrics != nil {
			r.metrics.MailboxDepth.Set(float64(len(r.mailbox)))
		}
	}
}

// SubmitCommand enqueues an external command (from the control channel or
// hotkey layer) for serialized handling.
func (r *Reactor) SubmitCommand(cmd Command) {
	r.mailbox <- mailboxItem{command: &cmd}
}

func (r *Reactor) observe(kind string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveEvent(kind, start)
	}
}

func (r *Reactor) handleMailbox(item mailboxItem) {
	if item.command != nil {
		r.handleCommand(*item.command)
	}
}

func (r *Reactor) sweepActivationDeadlines(now time.Time) {
	for _, a := range r.actors {
		if a.IsAwaitingActivation() && a.ExpireActivation(now) && r.metrics != nil {
			r.metrics.ActivationExpiry.Inc()
		}
	}
}

func (r *Reactor) registerActor(pid model.Pid, ax sys.AX) *app.Actor {
	if a, ok := r.actors[pid]; ok {
		return a
	}
	a := app.NewActor(pid, ax, r.tx, r.appEvents)
	r.actors[pid] = a
	go a.Run(context.Background())
	return a
}

// handleAnimFrame applies one interpolated frame (or the animation's
// completion) produced by the animation driver's tick loop, routed back
// through the reactor's own goroutine by SetAnimationDriver so the actor
// dispatch below stays serialized with every other mutation.
func (r *Reactor) handleAnimFrame(msg animFrameMsg) {
	if msg.done {
		// Nothing to do: the animation's last OnFrame tick already carried
		// the exact target rect (easing(1) == 1), so the actor has already
		// been sent that final SetFrame and the usual frame-changed echo
		// reconciliation picks it up from there.
		return
	}
	actor, ok := r.actors[msg.window.Pid]
	if !ok {
		return
	}
	state := r.windows[msg.window]
	actor.Send(app.Request{Kind: app.RequestSetFrame, Window: msg.window, ServerId: derefServerId(state.ServerId), Frame: msg.rect})
}

func derefServerId(id *model.WindowServerId) model.WindowServerId {
	if id == nil {
		return 0
	}
	return *id
}

// applyResponse turns one layout command's Response into raises, then
// recomputes and dispatches frames for the space it affected. Every command
// handler and every notification handler that mutates the engine funnels
// through this pair instead of leaving the model updated but un-rendered
// (the structural gap this closes: see DESIGN.md "reactor layout-apply
// pass").
func (r *Reactor) applyResponse(space model.SpaceId, resp layout.Response) {
	r.dispatchRaises(resp)
	r.applyLayout(space)
}

// applyLayout recomputes the active workspace's frames for space and
// dispatches whatever changed to the owning app actors, via the animation
// driver when one is configured. Floating windows still take part in the
// engine's calculation, but the rect computed for them is replaced by
// whatever frame floatingFrames last recorded for them (their current frame,
// the first time they are seen).
func (r *Reactor) applyLayout(space model.SpaceId) {
	screen, ok := r.spaces.ScreenOf(space)
	if !ok {
		return
	}
	screens, err := r.ws.Screens()
	if err != nil || screen < 0 || screen >= len(screens) {
		return
	}
	frames := r.engine.Calculate(space, screens[screen].Frame)
	for _, f := range frames {
		state, ok := r.windows[f.Window]
		if !ok {
			continue
		}
		target := f.Rect
		if state.Floating {
			if captured, ok := r.floatingFrames[f.Window]; ok {
				target = captured
			} else {
				r.floatingFrames[f.Window] = state.Frame
				target = state.Frame
			}
		}
		if state.Frame.SameAs(target) {
			continue
		}
		r.dispatchFrame(f.Window, state, target)
	}
}

// dispatchFrame sends one window to its new frame, animated when the
// reactor has a driver configured and enabled, or directly otherwise. The
// reactor's own record of the window's frame is updated to the target right
// away: the eventual window-server echo will confirm it, and in the
// animated case every intermediate tick updates only the actor, never
// r.windows, so a frame-changed notification mid-animation can't be
// mistaken for a genuine user move.
func (r *Reactor) dispatchFrame(id model.WindowId, state model.WindowState, target model.Rect) {
	from := state.Frame
	state.Frame = target
	r.windows[id] = state

	if r.animEnabled && r.anim != nil {
		r.anim.AddWindow(id, from, target, state.BundleId, state.Path, r.animEasing, r.animDuration)
		return
	}
	actor, ok := r.actors[id.Pid]
	if !ok {
		return
	}
	actor.Send(app.Request{Kind: app.RequestSetFrame, Window: id, ServerId: derefServerId(state.ServerId), Frame: target})
}

// dispatchRaises turns a layout Response's raise list into actual raise
// requests, applying the "quiet raise" rule (spec.md §4.1/§8): every raise
// but the last in the group is quiet, so only the final one is reported as
// a user-visible activation. FocusWindow, when set, is the one raise in the
// group that actually matters and is never quiet.
func (r *Reactor) dispatchRaises(resp layout.Response) {
	for i, id := range resp.RaiseWindows {
		quiet := i != len(resp.RaiseWindows)-1 || resp.FocusWindow != nil
		r.dispatchRaise(id, quiet)
	}
	if resp.FocusWindow != nil {
		r.dispatchRaise(*resp.FocusWindow, false)
	}
}

func (r *Reactor) dispatchRaise(id model.WindowId, quiet bool) {
	actor, ok := r.actors[id.Pid]
	if !ok {
		return
	}
	state := r.windows[id]
	actor.Send(app.Request{Kind: app.RequestRaise, Window: id, ServerId: derefServerId(state.ServerId), Quiet: quiet})
}

// hideWindow parks a window off-screen when the workspace it belongs to
// becomes invisible (spec.md §4.1 "switch workspace"), rather than
// minimizing or removing it: a later switch back restores it via the usual
// applyLayout diff, with no AX state lost.
func (r *Reactor) hideWindow(id model.WindowId) {
	state, ok := r.windows[id]
	if !ok {
		return
	}
	r.dispatchFrame(id, state, hideCorner)
}

// spaceOfWindow resolves the space a window is currently assigned to,
// falling back to the reactor's primary space for a window the engine
// doesn't know about (already removed, e.g.).
func (r *Reactor) spaceOfWindow(id model.WindowId) model.SpaceId {
	if space, ok := r.engine.SpaceOf(id); ok {
		return space
	}
	return r.currentSpace()
}

// exitMissionControl clears the mission-control suppression flag and
// reconciles against whatever screen topology arrived while buffered, or
// just re-applies every known space's layout if nothing was buffered.
func (r *Reactor) exitMissionControl() {
	r.missionControlActive = false
	if r.hasPendingScreens {
		screens := r.pendingScreens
		r.pendingScreens = nil
		r.hasPendingScreens = false
		r.reconcileScreens(screens)
		return
	}
	for _, space := range r.engine.Manager().Spaces() {
		r.applyLayout(space)
	}
}

// handleScreenParametersChanged re-reads the window server's screen list
// and reconciles the space map against it, unless a mission-control session
// is in progress, in which case the report is buffered until it ends
// (spec.md §4.1 "mission control buffering").
func (r *Reactor) handleScreenParametersChanged() {
	screens, err := r.ws.Screens()
	if err != nil {
		return
	}
	if r.missionControlActive {
		r.pendingScreens = screens
		r.hasPendingScreens = true
		return
	}
	r.changingScreens = true
	defer func() { r.changingScreens = false }()
	r.reconcileScreens(screens)
}

// handleSpaceChanged re-reads active spaces the same way a screen
// reconfiguration does: a space switch can rename space ids without
// changing the screen list itself.
func (r *Reactor) handleSpaceChanged() {
	if r.missionControlActive {
		return
	}
	screens, err := r.ws.Screens()
	if err != nil {
		return
	}
	r.reconcileScreens(screens)
}

// handleSystemWoke forces a full reconciliation: a sleep/wake cycle is the
// one case a display can silently change topology without ever firing
// NotifyScreenParametersChanged first.
func (r *Reactor) handleSystemWoke() {
	screens, err := r.ws.Screens()
	if err != nil {
		return
	}
	r.reconcileScreens(screens)
}

// reconcileScreens folds a freshly observed screen list into the space map:
// renaming spaces whose id changed under a screen that's still active,
// marking/clearing disabled screens, and re-applying layout for every space
// that's still live. A report where every screen is disabled is treated as
// transient (spec.md §4.6 "stale cleanup suppression") rather than torn
// down, since mission control and some display sleep states report exactly
// that for an instant on the way to a real topology.
func (r *Reactor) reconcileScreens(screens []model.ScreenInfo) {
	allDisabled := true
	for _, sc := range screens {
		if !sc.Disabled() {
			allDisabled = false
			break
		}
	}
	if allDisabled && len(screens) > 0 {
		r.suppressedCleanup = true
		return
	}
	r.suppressedCleanup = false

	for screen, sc := range screens {
		if sc.Disabled() {
			r.spaces.MarkDisabled(screen)
			continue
		}
		r.spaces.ClearDisabled(screen)
		newSpace := *sc.Space
		if oldSpace, ok := r.spaces.SpaceOf(screen); ok && oldSpace != newSpace {
			r.spaces.RenameSpace(oldSpace, newSpace)
		} else if !ok {
			r.spaces.Update(screen, newSpace)
		}
	}
	for _, space := range r.engine.Manager().Spaces() {
		r.applyLayout(space)
	}
}

func (r *Reactor) allocateIndex(pid model.Pid, serverId model.WindowServerId) model.WindowId {
	// Indices correlate with the window-server id when one is available, so
	// identity survives an AX hiccup without a side table (spec.md §3).
	if serverId != 0 {
		return model.WindowId{Pid: pid, Index: uint32(serverId)}
	}
	r.nextIndex[pid]++
	return model.WindowId{Pid: pid, Index: r.nextIndex[pid]}
}

func (r *Reactor) handleNotification(n sys.Notification) {
	switch n.Kind {
	case sys.NotifyWindowCreated:
		r.handleWindowCreated(n)
	case sys.NotifyWindowDestroyed:
		r.handleWindowDestroyed(n)
	case sys.NotifyWindowMinimized:
		r.handleWindowMinimized(n)
	case sys.NotifyWindowDeminiaturized:
		r.handleWindowDeminiaturized(n)
	case sys.NotifyWindowFrameChanged:
		r.handleWindowFrameChanged(n)
	case sys.NotifyApplicationActivated:
		r.handleApplicationActivated(n)
	case sys.NotifyApplicationLaunched:
		r.handleApplicationLaunched(n)
	case sys.NotifyApplicationTerminated:
		r.handleAppTerminated(n.Pid)
	case sys.NotifyMouseDown:
		r.handleMouseDown(n)
	case sys.NotifyMouseUp:
		r.handleMouseUp(n)
	case sys.NotifyMouseMoved:
		if r.drag.Active() {
			r.drag.Update(model.Point{X: n.Frame.X, Y: n.Frame.Y})
		}
	case sys.NotifyMissionControlEntered:
		r.missionControlActive = true
	case sys.NotifyMissionControlExited:
		r.exitMissionControl()
	case sys.NotifyScreenParametersChanged:
		r.handleScreenParametersChanged()
	case sys.NotifySpaceChanged:
		r.handleSpaceChanged()
	case sys.NotifySystemWoke:
		r.handleSystemWoke()
	}
}

// handleApplicationLaunched registers an app actor for a newly seen process
// and adopts whatever manageable windows it already has (spec.md §4.2 "app
// actor registration", §8 scenario with a pre-existing window set on
// launch). If the window server implementation doesn't support AXProvider
// (e.g. a minimal test fake), there's no AX handle to register against and
// the notification is a no-op: the reactor falls back to picking windows up
// one at a time via NotifyWindowCreated, same as before this was wired.
func (r *Reactor) handleApplicationLaunched(n sys.Notification) {
	if r.axProvider == nil {
		return
	}
	ax, err := r.axProvider.AXFor(n.Pid)
	if err != nil {
		r.log.WithError(err).WithField("pid", n.Pid).Warn("no AX handle for launched application")
		return
	}
	actor := r.registerActor(n.Pid, ax)
	r.adoptInitialWindows(n.Pid, ax, actor)
}

// adoptInitialWindows enumerates the AX handle's windows at registration
// time and folds each manageable one into the layout engine, the ingress
// path handleWindowCreated would otherwise apply window-by-window had the
// reactor observed individual WindowCreated notifications instead of
// inheriting an already-running process's window set whole (spec.md §4.2
// "initial windows").
func (r *Reactor) adoptInitialWindows(pid model.Pid, ax sys.AX, actor *app.Actor) {
	_ = actor
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	infos, err := ax.Windows(ctx)
	if err != nil {
		r.log.WithError(err).WithField("pid", pid).Warn("failed to enumerate initial windows")
		return
	}
	for _, info := range infos {
		if !info.Manageable() {
			continue
		}
		id := r.allocateIndex(pid, derefServerId(info.ServerId))
		state := model.StateFromInfo(id, info)
		state.Floating = r.engine.Manager().FloatingFor(info.BundleId, "")
		r.windows[id] = state

		space := r.spaceForFrame(info.Frame)
		resp := r.engine.AddWindow(space, id, info.BundleId, "")
		r.emit("window_created", id)
		r.applyResponse(space, resp)
	}
}

func (r *Reactor) handleWindowCreated(n sys.Notification) {
	id := r.allocateIndex(n.Pid, n.ServerId)
	serverId := n.ServerId
	state := model.WindowState{
		Id:           id,
		ServerId:     &serverId,
		Frame:        n.Frame,
		IsManageable: true,
	}
	r.windows[id] = state

	space := r.spaceForFrame(n.Frame)
	if screens, err := r.ws.Screens(); err == nil {
		if screen := model.BestScreenForWindow(n.Frame, screens, 0); screen >= 0 {
			r.lastScreen[id] = screen
		}
	}
	resp := r.engine.AddWindow(space, id, "", "")
	r.emit("window_created", id)
	r.applyResponse(space, resp)
}

// spaceForFrame resolves the space a new window belongs to by screen
// overlap rather than always assuming the reactor's default screen, so a
// window created on a secondary display lands in that display's own active
// space (spec.md §4.6 "newly observed window assignment").
func (r *Reactor) spaceForFrame(frame model.Rect) model.SpaceId {
	screens, err := r.ws.Screens()
	if err != nil {
		return r.currentSpace()
	}
	screen := model.BestScreenForWindow(frame, screens, 0)
	if screen < 0 {
		return r.currentSpace()
	}
	if space, ok := r.spaces.SpaceOf(screen); ok {
		return space
	}
	return r.currentSpace()
}

func (r *Reactor) handleWindowDestroyed(n sys.Notification) {
	id, ok := r.findWindow(n.Pid, n.ServerId)
	if !ok {
		return
	}
	space := r.spaceOfWindow(id)
	delete(r.windows, id)
	delete(r.lastScreen, id)
	delete(r.floatingFrames, id)
	r.engine.RemoveWindow(id)
	r.tx.Remove(n.ServerId)
	r.emit("window_destroyed", id)
	r.applyLayout(space)
}

func (r *Reactor) handleWindowMinimized(n sys.Notification) {
	id, ok := r.findWindow(n.Pid, n.ServerId)
	if !ok {
		return
	}
	space := r.spaceOfWindow(id)
	state := r.windows[id]
	state.IsMinimized = true
	r.windows[id] = state
	r.engine.RemoveWindow(id)
	r.applyLayout(space)
}

func (r *Reactor) handleWindowDeminiaturized(n sys.Notification) {
	id, ok := r.findWindow(n.Pid, n.ServerId)
	if !ok {
		return
	}
	state := r.windows[id]
	state.IsMinimized = false
	r.windows[id] = state
	space := r.spaceForFrame(state.Frame)
	resp := r.engine.AddWindow(space, id, state.BundleId, "")
	r.applyResponse(space, resp)
}

// handleWindowFrameChanged is the reconciliation algorithm grounded in
// original_source/src/actor/reactor/events/window.rs's
// handle_window_frame_changed: it must tell apart a frame change we
// ourselves requested (an echo) from one the user or the system made, and
// react only to the latter.
func (r *Reactor) handleWindowFrameChanged(n sys.Notification) {
	if r.missionControlActive || r.changingScreens {
		// Buffer nothing here: frame-changed notifications during a
		// mission-control transition or screen reconfiguration are noise,
		// not real user moves, and the eventual settle will re-sync.
		return
	}

	id, ok := r.findWindow(n.Pid, n.ServerId)
	if !ok {
		return
	}

	record := r.tx.Get(n.ServerId)
	if record.HasTarget && record.Target.SameAs(n.Frame) {
		// This is the echo of our own SetFrame call completing.
		r.tx.ClearTarget(n.ServerId)
		state := r.windows[id]
		state.Frame = n.Frame
		r.windows[id] = state
		return
	}
	if r.tx.IsSettling(n.ServerId) {
		// Still within the post-clear cooldown; a late duplicate
		// notification for the move we just finished, not a new one.
		if r.metrics != nil {
			r.metrics.SettlingWindows.Inc()
		}
		return
	}

	// A genuine user- or system-initiated move.
	state := r.windows[id]
	state.Frame = n.Frame
	r.windows[id] = state
	if state.Floating {
		r.floatingFrames[id] = n.Frame
	}

	if r.drag.Active() && r.drag.Window() == id {
		return // drag end, not frame-changed, resolves the swap
	}

	screens, err := r.ws.Screens()
	if err != nil {
		return
	}
	last := r.lastScreen[id]
	best := model.BestScreenForWindow(n.Frame, screens, last)
	if best >= 0 && best != last {
		r.lastScreen[id] = best
		if space, ok := r.spaces.SpaceOf(best); ok {
			r.engine.RemoveWindow(id)
			resp := r.engine.AddWindow(space, id, state.BundleId, "")
			r.applyResponse(space, resp)
		}
		return
	}
	r.applyLayout(r.spaceOfWindow(id))
}

func (r *Reactor) handleApplicationActivated(n sys.Notification) {
	a, ok := r.actors[n.Pid]
	if !ok {
		return
	}
	if a.ObserveActivation(n.At) {
		a.CompleteActivation()
		return
	}
	// A genuine user- or system-initiated activation. The reactor's own
	// notion of selection is driven by AddWindow/MoveFocus/drag end, not by
	// activation notifications, so there is nothing further to reconcile:
	// the window server has already made this app frontmost, and no
	// workspace's layout selection needs to change because of it.
}

func (r *Reactor) handleMouseDown(n sys.Notification) {
	id, ok := r.findWindow(n.Pid, n.ServerId)
	if !ok {
		return
	}
	r.drag.Begin(id, model.Point{X: n.Frame.X, Y: n.Frame.Y})
}

func (r *Reactor) handleMouseUp(n sys.Notification) {
	if !r.drag.Active() {
		return
	}
	at := model.Point{X: n.Frame.X, Y: n.Frame.Y}
	target, ok := r.drag.End(r.windows, at)
	if !ok {
		return
	}
	dragged := r.drag.Window()
	space := r.spaceOfWindow(dragged)
	if r.engine.SwapWindows(dragged, target) {
		r.applyLayout(space)
	}
}

func (r *Reactor) handleAppEvent(e app.Event) {
	switch e.Kind {
	case app.EventTerminated:
		r.handleAppTerminated(e.Pid)
	case app.EventRaiseCompleted:
		if !e.Quiet {
			r.emit("window_raised", e.Window)
		}
	case app.EventRaiseFailed:
		r.log.WithError(e.Err).WithField("window", e.Window).Warn("raise failed")
	}
}

func (r *Reactor) handleAppTerminated(pid model.Pid) {
	spaces := make(map[model.SpaceId]bool)
	for id := range r.windows {
		if id.Pid != pid {
			continue
		}
		spaces[r.spaceOfWindow(id)] = true
		delete(r.windows, id)
		delete(r.lastScreen, id)
		delete(r.floatingFrames, id)
		r.engine.RemoveWindow(id)
	}
	delete(r.actors, pid)
	for space := range spaces {
		r.applyLayout(space)
	}
}

func (r *Reactor) findWindow(pid model.Pid, serverId model.WindowServerId) (model.WindowId, bool) {
	if serverId != 0 {
		id := model.WindowId{Pid: pid, Index: uint32(serverId)}
		if _, ok := r.windows[id]; ok {
			return id, true
		}
	}
	for id, state := range r.windows {
		if id.Pid == pid && state.ServerId != nil && *state.ServerId == serverId {
			return id, true
		}
	}
	return model.WindowId{}, false
}

// DebugSnapshot summarizes live reactor state for the reactor-debug
// command: window/actor counts and drag state, not a full tree dump (the
// layout engine's own shape is better inspected via persist.BuildSnapshot).
func (r *Reactor) DebugSnapshot() string {
	dragging := "none"
	if r.drag.Active() {
		dragging = fmt.Sprintf("%+v", r.drag.Window())
	}
	return fmt.Sprintf("windows=%d actors=%d missionControl=%t changingScreens=%t dragging=%s",
		len(r.windows), len(r.actors), r.missionControlActive, r.changingScreens, dragging)
}

func (r *Reactor) currentSpace() model.SpaceId {
	space, ok := r.spaces.SpaceOf(0)
	if !ok {
		return 0
	}
	return space
}
