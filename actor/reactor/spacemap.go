package reactor

import (
	"sync"

	"github.com/rift/riftwm/model"
)

// SpaceMap tracks which screen each known space currently appears on.
// SpaceIds are not stable across display reconfiguration (a space can be
// assigned a new id when screens are added/removed), so RenameSpace moves a
// space's screen assignment to its new id. Only this map is updated: the
// layout engine's per-space workspaces stay keyed by the old id.
type SpaceMap struct {
	mu          sync.RWMutex
	screenOfSpace map[model.SpaceId]int
	spaceOfScreen map[int]model.SpaceId
	disabled      map[int]bool
}

func NewSpaceMap() *SpaceMap {
	return &SpaceMap{
		screenOfSpace: make(map[model.SpaceId]int),
		spaceOfScreen: make(map[int]model.SpaceId),
		disabled:      make(map[int]bool),
	}
}

func (m *SpaceMap) Update(screen int, space model.SpaceId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.spaceOfScreen[screen]; ok {
		delete(m.screenOfSpace, old)
	}
	m.spaceOfScreen[screen] = space
	m.screenOfSpace[space] = screen
}

func (m *SpaceMap) ScreenOf(space model.SpaceId) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.screenOfSpace[space]
	return s, ok
}

func (m *SpaceMap) SpaceOf(screen int) (model.SpaceId, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.spaceOfScreen[screen]
	return s, ok
}

// MarkDisabled records that screen currently has no active space (a window
// server report with a nil Space for it), dropping any stale screen<->space
// assignment so a later lookup doesn't hand out a space id no window
// belongs on anymore (spec.md §4.6 "disabled screen").
func (m *SpaceMap) MarkDisabled(screen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.spaceOfScreen[screen]; ok {
		delete(m.screenOfSpace, old)
		delete(m.spaceOfScreen, screen)
	}
	m.disabled[screen] = true
}

// ClearDisabled undoes MarkDisabled once the window server reports a real
// space for screen again.
func (m *SpaceMap) ClearDisabled(screen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.disabled, screen)
}

func (m *SpaceMap) IsDisabled(screen int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disabled[screen]
}

// RenameSpace moves the screen<->space assignment of the old space id over
// to the new one, called when the OS hands out a fresh SpaceId for what is,
// from the user's point of view, the same desktop space. State keyed by
// space id outside SpaceMap is not renamed.
func (m *SpaceMap) RenameSpace(old, new model.SpaceId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	screen, ok := m.screenOfSpace[old]
	if !ok {
		return
	}
	delete(m.screenOfSpace, old)
	m.screenOfSpace[new] = screen
	m.spaceOfScreen[screen] = new
}
