package model

import "fmt"

// Pid is an OS process id.
type Pid int32

// WindowServerId is the low-level window identifier assigned by the system
// compositor. It survives accessibility hiccups that can invalidate an AX
// element reference.
type WindowServerId uint32

// WindowId identifies a managed window as (pid, index). Index is non-zero
// and, when the window server has assigned one, equal to the
// WindowServerId so the two stay correlated without a side table.
type WindowId struct {
	Pid   Pid
	Index uint32
}

func (w WindowId) String() string {
	return fmt.Sprintf("%d.%d", w.Pid, w.Index)
}

func (w WindowId) IsZero() bool {
	return w.Pid == 0 && w.Index == 0
}

// SpaceId is the OS identifier for a desktop space on a screen. It is not
// stable across display reconfiguration; see reactor.SpaceMap.RenameSpace.
type SpaceId uint64

// WorkspaceId indexes a virtual workspace within a single space's ordered
// workspace list.
type WorkspaceId int

// Role mirrors the small subset of AX roles/subroles the reactor cares
// about when deciding manageability.
type Role string

const (
	RoleWindow    Role = "AXWindow"
	RoleSheet     Role = "AXSheet"
	RoleDrawer    Role = "AXDrawer"
	RoleSystemDlg Role = "AXSystemDialog"
)

type Subrole string

const (
	SubroleStandard    Subrole = "AXStandardWindow"
	SubroleDialog      Subrole = "AXDialog"
	SubroleFloating    Subrole = "AXFloatingWindow"
	SubroleSystemFloat Subrole = "AXSystemFloatingWindow"
)

// WindowInfo is everything the notification source / app actor observes
// about a window at a point in time. It's the payload carried by
// WindowCreated and the basis from which WindowState is derived.
type WindowInfo struct {
	Pid        Pid
	ServerId   *WindowServerId
	Frame      Rect
	Title      string
	Role       Role
	Subrole    Subrole
	BundleId   string
	Path       string
	IsStandard bool
	IsRoot     bool
	IsMinimized bool
	IsFullscreenNative bool
	Layer      int32 // window-server layer; non-zero means overlay/system chrome
}

// WindowState is the reactor's authoritative record for one managed window
// (spec.md §3 "Window record").
type WindowState struct {
	Id       WindowId
	ServerId *WindowServerId

	Frame Rect

	LastSentTxid  uint32
	IsStandard    bool
	IsRoot        bool
	IsMinimized   bool
	IsManageable  bool
	Role          Role
	Subrole       Subrole
	BundleId      string
	Path          string
	FullscreenOS  bool // OS-native fullscreen, distinct from in-model fullscreen (§9 open question)
	Floating      bool // excluded from tiling frames, positioned by the reactor's floating-frame table
}

// IsWidgetOrExtension reports whether role/subrole marks this as something
// the spec's ingress filter excludes regardless of standard/root flags.
func (w WindowInfo) IsWidgetOrExtension() bool {
	switch w.Subrole {
	case SubroleFloating, SubroleSystemFloat:
		return true
	}
	switch w.Role {
	case RoleSheet, RoleDrawer, RoleSystemDlg:
		return true
	}
	return false
}

// Manageable implements spec.md §3: standard, root, not minimized, not a
// widget/extension, on layer 0, acceptable role.
func (w WindowInfo) Manageable() bool {
	if !w.IsStandard || !w.IsRoot || w.IsMinimized {
		return false
	}
	if w.IsWidgetOrExtension() {
		return false
	}
	if w.Layer != 0 {
		return false
	}
	if w.Role != RoleWindow {
		return false
	}
	return true
}

func StateFromInfo(id WindowId, info WindowInfo) WindowState {
	return WindowState{
		Id:           id,
		ServerId:     info.ServerId,
		Frame:        info.Frame,
		IsStandard:   info.IsStandard,
		IsRoot:       info.IsRoot,
		IsMinimized:  info.IsMinimized,
		IsManageable: info.Manageable(),
		Role:         info.Role,
		Subrole:      info.Subrole,
		BundleId:     info.BundleId,
		Path:         info.Path,
		FullscreenOS: info.IsFullscreenNative,
	}
}
