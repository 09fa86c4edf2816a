package layout

import (
	"strings"
	"sync"

	"github.com/rift/riftwm/model"
)

// Workspace pairs one layout backend with the gap/stack settings the
// reactor renders it with (spec.md §4.3 "Workspace").
type Workspace struct {
	Name    string
	Backend Backend
	Gaps    Gaps
	Stack   StackStyle
}

func newBackend(kind Kind) Backend {
	switch kind {
	case BSP:
		return NewBSP()
	case MasterStackKind:
		return NewMasterStack()
	case Scrolling:
		return NewScrolling()
	default:
		return NewTraditional()
	}
}

func NewWorkspace(kind Kind, name string, gaps Gaps, stack StackStyle) *Workspace {
	return &Workspace{Name: name, Backend: newBackend(kind), Gaps: gaps, Stack: stack}
}

func (w *Workspace) Calculate(screen model.Rect) []Frame {
	return w.Backend.Calculate(screen, w.Gaps, w.Stack)
}

// AppRule matches a window to a workspace by bundle id or app name,
// mirroring original_source/src/common/config.rs's AppWorkspaceRule.
type AppRule struct {
	BundleId string
	AppName  string
	Workspace int
	Floating  bool
}

func (r AppRule) matches(bundleId, appName string) bool {
	if r.BundleId != "" && strings.EqualFold(r.BundleId, bundleId) {
		return true
	}
	if r.AppName != "" && strings.EqualFold(r.AppName, appName) {
		return true
	}
	return false
}

// VirtualWorkspaceSettings mirrors original_source/src/common/config.rs's
// VirtualWorkspaceSettings, the configuration surface the config package
// watches and validates.
type VirtualWorkspaceSettings struct {
	Enabled                  bool
	DefaultWorkspaceCount    int
	AutoAssignWindows        bool
	PreserveFocusPerWorkspace bool
	WorkspaceNames           []string
	DefaultWorkspace         int
	AppRules                 []AppRule
}

// Validate reports whether the settings are internally consistent (spec.md
// §9 "reject and keep prior on invalid config").
func (s VirtualWorkspaceSettings) Validate() error {
	if s.DefaultWorkspaceCount < 1 {
		return errInvalidWorkspaceCount
	}
	if s.DefaultWorkspace < 0 || s.DefaultWorkspace >= s.DefaultWorkspaceCount {
		return errInvalidDefaultWorkspace
	}
	if len(s.WorkspaceNames) != 0 && len(s.WorkspaceNames) != s.DefaultWorkspaceCount {
		return errWorkspaceNameCountMismatch
	}
	return nil
}

// AutoFix clamps fields back into range instead of rejecting, for settings
// sources that tolerate best-effort correction (config.rs's auto_fix).
func (s *VirtualWorkspaceSettings) AutoFix() {
	if s.DefaultWorkspaceCount < 1 {
		s.DefaultWorkspaceCount = 1
	}
	if s.DefaultWorkspace < 0 {
		s.DefaultWorkspace = 0
	}
	if s.DefaultWorkspace >= s.DefaultWorkspaceCount {
		s.DefaultWorkspace = s.DefaultWorkspaceCount - 1
	}
	if len(s.WorkspaceNames) != 0 && len(s.WorkspaceNames) != s.DefaultWorkspaceCount {
		s.WorkspaceNames = nil
	}
}

type configError string

func (e configError) Error() string { return string(e) }

const (
	errInvalidWorkspaceCount      configError = "virtual workspace count must be >= 1"
	errInvalidDefaultWorkspace    configError = "default workspace index out of range"
	errWorkspaceNameCountMismatch configError = "workspace_names length must match default_workspace_count"
)

// Manager owns the per-space list of workspaces and the active workspace
// index for each, plus the app-rule assignment table (spec.md §3 "virtual
// workspace map"). It is reactor-owned state: callers are expected to hold
// whatever external synchronization the reactor provides, but Manager adds
// its own lock since the config watcher can update AppRules concurrently.
type Manager struct {
	mu sync.RWMutex

	defaultKind Kind
	settings    VirtualWorkspaceSettings

	bySpace     map[model.SpaceId][]*Workspace
	activeIndex map[model.SpaceId]int
}

func NewManager(defaultKind Kind, settings VirtualWorkspaceSettings) *Manager {
	return &Manager{
		defaultKind: defaultKind,
		settings:    settings,
		bySpace:     make(map[model.SpaceId][]*Workspace),
		activeIndex: make(map[model.SpaceId]int),
	}
}

// EnsureSpace creates the configured number of workspaces for a space the
// first time it's seen.
func (m *Manager) EnsureSpace(space model.SpaceId, gaps Gaps, stack StackStyle) []*Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.bySpace[space]; ok {
		return ws
	}
	count := m.settings.DefaultWorkspaceCount
	if count < 1 {
		count = 1
	}
	ws := make([]*Workspace, count)
	for i := range ws {
		name := ""
		if i < len(m.settings.WorkspaceNames) {
			name = m.settings.WorkspaceNames[i]
		}
		ws[i] = NewWorkspace(m.defaultKind, name, gaps, stack)
	}
	m.bySpace[space] = ws
	m.activeIndex[space] = m.settings.DefaultWorkspace
	return ws
}

func (m *Manager) Active(space model.SpaceId) *Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.bySpace[space]
	if !ok {
		return nil
	}
	idx := m.activeIndex[space]
	if idx < 0 || idx >= len(ws) {
		return nil
	}
	return ws[idx]
}

func (m *Manager) ActiveIndex(space model.SpaceId) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeIndex[space]
}

// SetActive switches the active workspace for a space and returns the newly
// active workspace. PreserveFocusPerWorkspace is not consulted.
func (m *Manager) SetActive(space model.SpaceId, idx int) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.bySpace[space]
	if !ok || idx < 0 || idx >= len(ws) {
		return nil, false
	}
	m.activeIndex[space] = idx
	return ws[idx], true
}

// AssignWorkspaceFor returns the workspace index a newly seen window should
// land in, per AppRules / AutoAssignWindows (config.rs AppWorkspaceRule).
func (m *Manager) AssignWorkspaceFor(bundleId, appName string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.settings.AutoAssignWindows {
		return 0, false
	}
	for _, r := range m.settings.AppRules {
		if r.matches(bundleId, appName) {
			return r.Workspace, true
		}
	}
	return 0, false
}

// FloatingFor reports whether an app rule marks bundleId/appName as
// floating (excluded from tiling).
func (m *Manager) FloatingFor(bundleId, appName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.settings.AppRules {
		if r.matches(bundleId, appName) {
			return r.Floating
		}
	}
	return false
}

// UpdateSettings swaps in newly validated settings (called by the config
// watcher after Validate succeeds).
func (m *Manager) UpdateSettings(settings VirtualWorkspaceSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
}

func (m *Manager) Workspaces(space model.SpaceId) []*Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySpace[space]
}

// Spaces lists every space the manager has seen (i.e. every space that has
// had EnsureSpace called for it), used by persist.BuildSnapshot to walk all
// live spaces without the caller tracking that set separately.
func (m *Manager) Spaces() []model.SpaceId {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spaces := make([]model.SpaceId, 0, len(m.bySpace))
	for space := range m.bySpace {
		spaces = append(spaces, space)
	}
	return spaces
}
