// Package layout implements the pure, deterministic layout model (spec.md
// §4.3): windows-to-rectangles across the four layout backends and the
// virtual-workspace bookkeeping layered on top of them. Nothing in this
// package performs I/O or blocks; every exported operation is a value
// transformation the reactor drives.
package layout

import "github.com/rift/riftwm/model"

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) Orientation() Orientation {
	switch d {
	case DirLeft, DirRight:
		return Horizontal
	default:
		return Vertical
	}
}

func (d Direction) IsForward() bool {
	return d == DirRight || d == DirDown
}

// ContainerKind selects the traditional backend's container flavor.
type ContainerKind int

const (
	KindHorizontal ContainerKind = iota
	KindVertical
	KindHorizontalStack
	KindVerticalStack
)

// Kind names the four layout backends a workspace can run (spec.md §2/§4.3).
type Kind int

const (
	Traditional Kind = iota
	BSP
	MasterStackKind
	Scrolling
)

func (k Kind) String() string {
	switch k {
	case Traditional:
		return "traditional"
	case BSP:
		return "bsp"
	case MasterStackKind:
		return "master-stack"
	case Scrolling:
		return "scrolling"
	default:
		return "unknown"
	}
}

// Gaps bundles outer (screen-edge) and inner (between-window) gap settings.
type Gaps struct {
	OuterTop, OuterRight, OuterBottom, OuterLeft float64
	InnerHorizontal, InnerVertical               float64
}

// Apply insets a screen rect by the outer gaps, matching
// BinaryTreeLayout::apply_outer_gaps in the original source.
func (g Gaps) Apply(screen model.Rect) model.Rect {
	return screen.Inset(g.OuterTop, g.OuterRight, g.OuterBottom, g.OuterLeft)
}

// StackStyle configures the "peek" offset and focused-child emphasis used
// by stacked traditional containers.
type StackStyle struct {
	PeekOffset    float64
	FocusedExpand float64
}

// Frame pairs a managed window with the rectangle calculate_layout assigned
// it.
type Frame struct {
	Window model.WindowId
	Rect   model.Rect
}

// Response is produced by every command (spec.md §4.3 "Command response")
// so the reactor can drive raises and focus without the layout engine
// knowing anything about app actors.
type Response struct {
	RaiseWindows []model.WindowId
	FocusWindow  *model.WindowId
}

func emptyResponse() Response { return Response{} }

// Backend is the operation set every layout tree (traditional, BSP,
// master-stack, scrolling) implements identically, so the reactor and the
// workspace wrapper can dispatch without knowing which concrete backend is
// active (spec.md §9 "Dynamic dispatch across layout systems").
type Backend interface {
	Kind() Kind

	AddWindow(w model.WindowId) Response
	RemoveWindow(w model.WindowId) Response
	Contains(w model.WindowId) bool
	SwapWindows(a, b model.WindowId) bool
	Split(kind ContainerKind) Response
	Join(dir Direction) Response
	Unjoin() Response
	ToggleFullscreen() Response
	MoveNode(dir Direction) Response
	MoveFocus(dir Direction) Response
	ResizeBy(dir Direction, fraction float64) bool
	Rebalance()

	Selected() *model.WindowId
	Visible() []model.WindowId

	Calculate(screen model.Rect, gaps Gaps, stack StackStyle) []Frame
}
