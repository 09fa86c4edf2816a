package reactor

import (
	"github.com/rift/riftwm/model"
)

// DragManager tracks an in-progress mouse drag of a managed window
// (spec.md §4.7). It decides, once the drag ends, whether the dragged
// window should swap places with whatever window it was dropped over.
//
// The swap target is resolved against the reactor's last-known
// WindowState.Frame for every other window rather than a live AX query of
// their current position: querying AX mid-drag would mean blocking the
// single-threaded reactor on a system call for every mouse-moved event,
// and the frames the layout engine last computed are already exactly what
// the user sees on screen (spec.md §9 open question, resolved here).
type DragManager struct {
	active   bool
	window   model.WindowId
	start    model.Point
	lastSeen model.Point
}

func NewDragManager() *DragManager { return &DragManager{} }

func (d *DragManager) Begin(w model.WindowId, at model.Point) {
	d.active = true
	d.window = w
	d.start = at
	d.lastSeen = at
}

func (d *DragManager) Update(at model.Point) {
	if d.active {
		d.lastSeen = at
	}
}

func (d *DragManager) Active() bool { return d.active }

func (d *DragManager) Window() model.WindowId { return d.window }

// End finds which other managed window's last-known frame contains the
// drop point, and returns it as the swap target. ok is false if the drop
// wasn't over any other managed window, or no drag was active.
func (d *DragManager) End(windows map[model.WindowId]model.WindowState, at model.Point) (target model.WindowId, ok bool) {
	if !d.active {
		return model.WindowId{}, false
	}
	d.active = false

	for id, state := range windows {
		if id == d.window {
			continue
		}
		if !state.IsManageable {
			continue
		}
		if state.Frame.Contains(at) {
			return id, true
		}
	}
	return model.WindowId{}, false
}
