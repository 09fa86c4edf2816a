// Package app implements the per-process app actor (spec.md §4.2): one
// goroutine per pid that owns that process's AX handle, serializes every
// frame/raise/activate request the reactor sends it, and reports back
// window and activation events. Nothing outside this package touches an
// AX handle directly.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
	"github.com/rift/riftwm/txstore"
)

// ErrApplicationThreadTerminated is returned (and reported via an Event)
// when an AX call fails because the target application's thread is gone,
// as opposed to a transient AX error the caller should retry.
var ErrApplicationThreadTerminated = errors.New("app actor: application thread terminated")

// ErrActivationTimeout is reported via Event when an activation handshake's
// deadline passes without the window server ever echoing the activation
// back to ObserveActivation.
var ErrActivationTimeout = errors.New("app actor: activation handshake timed out")

type RequestKind int

const (
	RequestSetFrame RequestKind = iota
	RequestRaise
	RequestActivate
)

// Request is one unit of work the reactor hands to an app actor. Done, if
// non-nil, receives one value, the request's error or nil, once the request
// (and, for RequestRaise, the activation handshake it triggers) completes;
// the channel is never closed.
type Request struct {
	Kind     RequestKind
	Window   model.WindowId
	ServerId model.WindowServerId
	Frame    model.Rect
	Done     chan<- error

	// Quiet marks a raise that's part of a larger raise group (spec.md
	// §4.1/§8 "quiet raise"): only the last raise in such a group should be
	// treated as the user-visible one by whatever consumes the resulting
	// Event.
	Quiet bool
}

type EventKind int

const (
	EventFrameChanged EventKind = iota
	EventRaiseCompleted
	EventRaiseFailed
	EventActivationObserved // activation not initiated by us (user or system raise)
	EventTerminated
)

type Event struct {
	Kind     EventKind
	Pid      model.Pid
	Window   model.WindowId
	ServerId model.WindowServerId
	Frame    model.Rect
	Err      error
	Quiet    bool
}

type activationPhase int

const (
	activationIdle activationPhase = iota
	activationAwaiting
)

// raiseSerialization serializes the Raise/Activate AX calls that start an
// activation handshake across every app actor in the process. It is
// released as soon as those calls return, before the activation echo
// arrives, so handshakes of different actors can still overlap;
// handleActivate does not take it.
var raiseSerialization sync.Mutex

const activationWindow = 1 * time.Second

// Actor owns one process's AX handle and drains a mailbox of requests
// sequentially, so nothing about ordering within a single app needs a
// lock.
type Actor struct {
	pid    model.Pid
	ax     sys.AX
	tx     *txstore.Store
	events chan<- Event

	mailbox chan Request

	mu              sync.Mutex
	phase           activationPhase
	deadline        time.Time
	quiet           bool
	awaitingWindow  model.WindowId
	awaitingDone    chan<- error
	terminated      bool
}

func NewActor(pid model.Pid, ax sys.AX, tx *txstore.Store, events chan<- Event) *Actor {
	return &Actor{
		pid:     pid,
		ax:      ax,
		tx:      tx,
		events:  events,
		mailbox: make(chan Request, 32),
	}
}

func (a *Actor) Send(req Request) {
	a.mailbox <- req
}

func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.mailbox:
			a.handle(ctx, req)
		}
	}
}

func (a *Actor) handle(ctx context.Context, req Request) {
	a.mu.Lock()
	if a.terminated {
		a.mu.Unlock()
		a.reply(req.Done, ErrApplicationThreadTerminated)
		return
	}
	a.mu.Unlock()

	switch req.Kind {
	case RequestSetFrame:
		a.handleSetFrame(ctx, req)
	case RequestRaise:
		a.handleRaise(ctx, req)
	case RequestActivate:
		a.handleActivate(ctx, req)
	}
}

// handleSetFrame records a transaction target before issuing the AX call,
// so the reactor can later recognize the window-server echo of this exact
// move as self-inflicted (spec.md §4.4).
func (a *Actor) handleSetFrame(ctx context.Context, req Request) {
	txid := a.tx.NextTxid(req.ServerId)
	a.tx.Insert(req.ServerId, txid, req.Frame)

	err := a.ax.SetFrame(ctx, req.Window, req.Frame)
	if err != nil {
		a.handleAXError(err)
	}
	a.reply(req.Done, err)
}

// handleRaise enters the activation handshake: a 1-second window during
// which an activation notification for this pid is attributed to us
// rather than the user (spec.md §4.2).
func (a *Actor) handleRaise(ctx context.Context, req Request) {
	raiseSerialization.Lock()
	defer raiseSerialization.Unlock()

	a.mu.Lock()
	a.phase = activationAwaiting
	a.deadline = time.Now().Add(activationWindow)
	a.quiet = req.Quiet
	a.awaitingWindow = req.Window
	a.awaitingDone = req.Done
	a.mu.Unlock()

	if err := a.ax.Raise(ctx, req.Window); err != nil {
		a.handleAXError(err)
		a.finishActivation(err)
		return
	}
	if err := a.ax.Activate(ctx); err != nil {
		a.handleAXError(err)
		a.finishActivation(err)
		return
	}
	// completion is driven by ObserveActivation once the window server
	// echoes the activation back, or by ExpireActivation on timeout.
}

func (a *Actor) handleActivate(ctx context.Context, req Request) {
	err := a.ax.Activate(ctx)
	if err != nil {
		a.handleAXError(err)
	}
	a.reply(req.Done, err)
}

// ObserveActivation is called by the reactor when the window server
// reports an activation notification for this pid. It reports whether the
// activation should be treated as reactor-initiated (true) or as a
// genuine user/system activation the reactor must react to (false).
func (a *Actor) ObserveActivation(now time.Time) (initiatedByUs bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != activationAwaiting {
		return false
	}
	if now.After(a.deadline) {
		a.phase = activationIdle
		return false
	}
	return true
}

// finishActivation ends the handshake immediately (used on a Raise/Activate
// AX error, where there's nothing left to wait for an echo on).
func (a *Actor) finishActivation(err error) {
	a.mu.Lock()
	done := a.awaitingDone
	window := a.awaitingWindow
	quiet := a.quiet
	a.phase = activationIdle
	a.awaitingDone = nil
	a.mu.Unlock()
	a.reply(done, err)
	a.emitRaiseEvent(window, quiet, err)
}

// ExpireActivation is called by the reactor's periodic sweep once an
// awaiting activation's deadline has passed without an echo. It reports
// whether it actually expired anything, so callers can count real timeouts.
func (a *Actor) ExpireActivation(now time.Time) bool {
	a.mu.Lock()
	if a.phase != activationAwaiting || !now.After(a.deadline) {
		a.mu.Unlock()
		return false
	}
	window := a.awaitingWindow
	quiet := a.quiet
	a.phase = activationIdle
	done := a.awaitingDone
	a.awaitingDone = nil
	a.mu.Unlock()
	a.reply(done, nil)
	a.emitRaiseEvent(window, quiet, ErrActivationTimeout)
	return true
}

// CompleteActivation is called once the reactor has matched the
// activation echo to this actor's awaiting window.
func (a *Actor) CompleteActivation() {
	a.mu.Lock()
	if a.phase != activationAwaiting {
		a.mu.Unlock()
		return
	}
	window := a.awaitingWindow
	quiet := a.quiet
	a.phase = activationIdle
	done := a.awaitingDone
	a.awaitingDone = nil
	a.mu.Unlock()
	a.reply(done, nil)
	a.emitRaiseEvent(window, quiet, nil)
}

func (a *Actor) IsAwaitingActivation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase == activationAwaiting
}

func (a *Actor) AwaitingWindow() (model.WindowId, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.awaitingWindow, a.phase == activationAwaiting
}

// handleAXError classifies an AX failure. An error wrapping
// ErrApplicationThreadTerminated means the application's accessibility
// thread is gone: the actor marks itself terminated so every further request
// fails fast instead of retrying against a dead process. Any other error is
// left to the caller.
func (a *Actor) handleAXError(err error) {
	if !errors.Is(err, ErrApplicationThreadTerminated) {
		return
	}
	a.mu.Lock()
	a.terminated = true
	a.mu.Unlock()
	if a.events != nil {
		a.events <- Event{Kind: EventTerminated, Pid: a.pid}
	}
}

// emitRaiseEvent reports the outcome of one raise/activation handshake to
// the reactor. Quiet carries through from the Request that started the
// handshake, so the reactor can tell a chained raise's intermediate steps
// apart from the one the user actually cares about (spec.md §4.1/§8 "quiet
// raise").
func (a *Actor) emitRaiseEvent(window model.WindowId, quiet bool, err error) {
	if a.events == nil {
		return
	}
	kind := EventRaiseCompleted
	if err != nil {
		kind = EventRaiseFailed
	}
	a.events <- Event{Kind: kind, Pid: a.pid, Window: window, Err: err, Quiet: quiet}
}

func (a *Actor) reply(done chan<- error, err error) {
	if done == nil {
		return
	}
	done <- err
}

func (a *Actor) Terminated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.terminated
}
