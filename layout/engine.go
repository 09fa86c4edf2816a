package layout

import (
	"sync"

	"github.com/rift/riftwm/model"
)

type windowLocation struct {
	Space     model.SpaceId
	Workspace int
}

// Engine is the layout engine facade the reactor drives: it owns one
// Manager (per-space workspace lists) plus a window -> (space, workspace)
// index so commands addressed by WindowId or by space can find the right
// backend without the reactor tracking that bookkeeping itself (spec.md
// §4.3 "Layout engine").
type Engine struct {
	mu       sync.RWMutex
	manager  *Manager
	gaps     Gaps
	stack    StackStyle
	location map[model.WindowId]windowLocation
}

func NewEngine(defaultKind Kind, settings VirtualWorkspaceSettings, gaps Gaps, stack StackStyle) *Engine {
	return &Engine{
		manager:  NewManager(defaultKind, settings),
		gaps:     gaps,
		stack:    stack,
		location: make(map[model.WindowId]windowLocation),
	}
}

func (e *Engine) ensure(space model.SpaceId) []*Workspace {
	return e.manager.EnsureSpace(space, e.gaps, e.stack)
}

// AddWindow assigns w to a workspace in space, consulting AppRules via
// bundleId/appName, and adds it to that workspace's backend.
func (e *Engine) AddWindow(space model.SpaceId, w model.WindowId, bundleId, appName string) Response {
	e.mu.Lock()
	defer e.mu.Unlock()

	ws := e.ensure(space)
	idx, assigned := e.manager.AssignWorkspaceFor(bundleId, appName)
	if !assigned {
		idx = e.manager.ActiveIndex(space)
	}
	if idx < 0 || idx >= len(ws) {
		idx = 0
	}
	e.location[w] = windowLocation{Space: space, Workspace: idx}
	return ws[idx].Backend.AddWindow(w)
}

func (e *Engine) RemoveWindow(w model.WindowId) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	loc, ok := e.location[w]
	if !ok {
		return emptyResponse()
	}
	delete(e.location, w)
	ws := e.manager.Workspaces(loc.Space)
	if loc.Workspace < 0 || loc.Workspace >= len(ws) {
		return emptyResponse()
	}
	return ws[loc.Workspace].Backend.RemoveWindow(w)
}

func (e *Engine) Contains(w model.WindowId) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.location[w]
	return ok
}

// SpaceOf reports which space w is currently assigned to, so callers that
// only hold a WindowId (e.g. the reactor reacting to a destroy/minimize
// notification) can recompute that space's layout without tracking the
// assignment themselves.
func (e *Engine) SpaceOf(w model.WindowId) (model.SpaceId, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	loc, ok := e.location[w]
	if !ok {
		return 0, false
	}
	return loc.Space, true
}

func (e *Engine) backendFor(space model.SpaceId) Backend {
	active := e.manager.Active(space)
	if active == nil {
		return nil
	}
	return active.Backend
}

func (e *Engine) MoveFocus(space model.SpaceId, dir Direction) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.MoveFocus(dir)
}

func (e *Engine) MoveNode(space model.SpaceId, dir Direction) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.MoveNode(dir)
}

func (e *Engine) Split(space model.SpaceId, kind ContainerKind) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.Split(kind)
}

func (e *Engine) Join(space model.SpaceId, dir Direction) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.Join(dir)
}

func (e *Engine) Unjoin(space model.SpaceId) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.Unjoin()
}

func (e *Engine) ToggleFullscreen(space model.SpaceId) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return emptyResponse()
	}
	return b.ToggleFullscreen()
}

func (e *Engine) ResizeBy(space model.SpaceId, dir Direction, fraction float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.backendFor(space)
	if b == nil {
		return false
	}
	return b.ResizeBy(dir, fraction)
}

func (e *Engine) Rebalance(space model.SpaceId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b := e.backendFor(space); b != nil {
		b.Rebalance()
	}
}

func (e *Engine) SwapWindows(a, b model.WindowId) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	la, oka := e.location[a]
	lb, okb := e.location[b]
	if !oka || !okb || la != lb {
		return false
	}
	ws := e.manager.Workspaces(la.Space)
	if la.Workspace < 0 || la.Workspace >= len(ws) {
		return false
	}
	return ws[la.Workspace].Backend.SwapWindows(a, b)
}

// SwitchWorkspace changes the active workspace of a space and returns the
// window the new workspace's backend has selected, if any, whether or not
// PreserveFocusPerWorkspace is set; the reactor is responsible for actually
// issuing the raise.
func (e *Engine) SwitchWorkspace(space model.SpaceId, idx int) (*model.WindowId, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ws, ok := e.manager.SetActive(space, idx)
	if !ok {
		return nil, false
	}
	return ws.Backend.Selected(), true
}

// MoveWindowToWorkspace relocates w from its current workspace to idx
// within the same space.
func (e *Engine) MoveWindowToWorkspace(w model.WindowId, idx int) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	loc, ok := e.location[w]
	if !ok {
		return emptyResponse()
	}
	ws := e.manager.Workspaces(loc.Space)
	if idx < 0 || idx >= len(ws) || loc.Workspace == idx {
		return emptyResponse()
	}
	ws[loc.Workspace].Backend.RemoveWindow(w)
	e.location[w] = windowLocation{Space: loc.Space, Workspace: idx}
	return ws[idx].Backend.AddWindow(w)
}

// ChangeKind swaps the active workspace's backend for a fresh one of kind,
// re-adding its currently visible windows in their prior order. This
// resolves spec.md §9's "dynamic dispatch across layout systems" open
// question: a kind change preserves membership, not tree shape, since the
// old shape has no meaning under a different backend.
func (e *Engine) ChangeKind(space model.SpaceId, kind Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	active := e.manager.Active(space)
	if active == nil || active.Backend.Kind() == kind {
		return
	}
	windows := active.Backend.Visible()
	active.Backend = newBackend(kind)
	for _, w := range windows {
		active.Backend.AddWindow(w)
	}
}

func (e *Engine) Calculate(space model.SpaceId, screen model.Rect) []Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	active := e.manager.Active(space)
	if active == nil {
		return nil
	}
	return active.Calculate(screen)
}

func (e *Engine) Manager() *Manager { return e.manager }
