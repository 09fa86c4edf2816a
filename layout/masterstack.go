package layout

import "github.com/rift/riftwm/model"

// MasterStackTree implements the master-stack backend: a bounded master
// column and an overflow stack, grounded directly in cortile's
// store/manager.go Masters/Slaves/Proportions bookkeeping (adapted from X11
// client lists to the shared model.WindowId type).
type MasterStackTree struct {
	masters []model.WindowId
	slaves  []model.WindowId

	masterShares []float64 // per-master vertical share, sums to 1
	slaveShares  []float64 // per-slave vertical share, sums to 1

	maxMasters int
	masterRatio float64 // horizontal share of screen given to the master column

	selected   model.WindowId
	hasSelected bool
	fullscreen  *model.WindowId
}

func NewMasterStack() *MasterStackTree {
	return &MasterStackTree{
		maxMasters:  1,
		masterRatio: 0.55,
	}
}

func (t *MasterStackTree) Kind() Kind { return MasterStackKind }

func (t *MasterStackTree) indexIn(list []model.WindowId, w model.WindowId) int {
	for i, x := range list {
		if x == w {
			return i
		}
	}
	return -1
}

func (t *MasterStackTree) AddWindow(w model.WindowId) Response {
	if len(t.masters) < t.maxMasters {
		t.masters = append(t.masters, w)
		t.masterShares = calcEqualShares(len(t.masters))
	} else {
		t.slaves = append(t.slaves, w)
		t.slaveShares = calcEqualShares(len(t.slaves))
	}
	t.selected, t.hasSelected = w, true
	return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
}

func calcEqualShares(n int) []float64 {
	if n == 0 {
		return nil
	}
	shares := make([]float64, n)
	share := 1.0 / float64(n)
	for i := range shares {
		shares[i] = share
	}
	return shares
}

// RemoveWindow removes w and, if the master column is now underfull,
// promotes the first slave into it (cortile's AddClient/RemoveClient
// master-maintenance behavior).
func (t *MasterStackTree) RemoveWindow(w model.WindowId) Response {
	if i := t.indexIn(t.masters, w); i >= 0 {
		t.masters = append(t.masters[:i], t.masters[i+1:]...)
		if len(t.slaves) > 0 && len(t.masters) < t.maxMasters {
			promoted := t.slaves[0]
			t.slaves = t.slaves[1:]
			t.masters = append(t.masters, promoted)
		}
	} else if i := t.indexIn(t.slaves, w); i >= 0 {
		t.slaves = append(t.slaves[:i], t.slaves[i+1:]...)
	}
	t.masterShares = calcEqualShares(len(t.masters))
	t.slaveShares = calcEqualShares(len(t.slaves))

	if t.hasSelected && t.selected == w {
		t.hasSelected = false
		if len(t.masters) > 0 {
			t.selected, t.hasSelected = t.masters[0], true
		} else if len(t.slaves) > 0 {
			t.selected, t.hasSelected = t.slaves[0], true
		}
	}
	if t.fullscreen != nil && *t.fullscreen == w {
		t.fullscreen = nil
	}
	return emptyResponse()
}

func (t *MasterStackTree) Contains(w model.WindowId) bool {
	return t.indexIn(t.masters, w) >= 0 || t.indexIn(t.slaves, w) >= 0
}

func (t *MasterStackTree) SwapWindows(a, b model.WindowId) bool {
	la, ia := t.locate(a)
	lb, ib := t.locate(b)
	if la == nil || lb == nil {
		return false
	}
	(*la)[ia], (*lb)[ib] = (*lb)[ib], (*la)[ia]
	return true
}

func (t *MasterStackTree) locate(w model.WindowId) (*[]model.WindowId, int) {
	if i := t.indexIn(t.masters, w); i >= 0 {
		return &t.masters, i
	}
	if i := t.indexIn(t.slaves, w); i >= 0 {
		return &t.slaves, i
	}
	return nil, -1
}

// Split and Join/Unjoin have no master-stack analog: there is no tree to
// split or flatten, only the two fixed columns. They are no-ops.
func (t *MasterStackTree) Split(kind ContainerKind) Response { return emptyResponse() }
func (t *MasterStackTree) Join(dir Direction) Response       { return emptyResponse() }
func (t *MasterStackTree) Unjoin() Response                  { return emptyResponse() }

func (t *MasterStackTree) ToggleFullscreen() Response {
	if !t.hasSelected {
		return emptyResponse()
	}
	if t.fullscreen != nil && *t.fullscreen == t.selected {
		t.fullscreen = nil
		return emptyResponse()
	}
	w := t.selected
	t.fullscreen = &w
	return Response{RaiseWindows: []model.WindowId{w}}
}

// MoveFocus(left/right) switches between the master column and the stack;
// MoveFocus(up/down) moves within the current list, mirroring
// Manager.NextClient/PreviousClient.
func (t *MasterStackTree) MoveFocus(dir Direction) Response {
	if !t.hasSelected {
		return emptyResponse()
	}
	inMasters := t.indexIn(t.masters, t.selected) >= 0

	switch dir {
	case DirLeft:
		if !inMasters && len(t.masters) > 0 {
			t.selected = t.masters[0]
		}
	case DirRight:
		if inMasters && len(t.slaves) > 0 {
			t.selected = t.slaves[0]
		}
	case DirUp, DirDown:
		list := t.slaves
		if inMasters {
			list = t.masters
		}
		idx := t.indexIn(list, t.selected)
		if idx < 0 {
			return emptyResponse()
		}
		if dir == DirDown {
			idx = (idx + 1) % len(list)
		} else {
			idx = (idx - 1 + len(list)) % len(list)
		}
		t.selected = list[idx]
	}
	w := t.selected
	return Response{FocusWindow: &w, RaiseWindows: []model.WindowId{w}}
}

// MoveNode(left/right) promotes/demotes the selection between master and
// stack (cortile's MakeMaster); MoveNode(up/down) swaps with the
// neighboring client in the same list (Manager.SwapClient).
func (t *MasterStackTree) MoveNode(dir Direction) Response {
	if !t.hasSelected {
		return emptyResponse()
	}
	w := t.selected

	switch dir {
	case DirLeft:
		if i := t.indexIn(t.slaves, w); i >= 0 {
			t.slaves = append(t.slaves[:i], t.slaves[i+1:]...)
			if len(t.masters) >= t.maxMasters && len(t.masters) > 0 {
				demoted := t.masters[len(t.masters)-1]
				t.masters = t.masters[:len(t.masters)-1]
				t.slaves = append([]model.WindowId{demoted}, t.slaves...)
			}
			t.masters = append(t.masters, w)
		}
	case DirRight:
		if i := t.indexIn(t.masters, w); i >= 0 {
			t.masters = append(t.masters[:i], t.masters[i+1:]...)
			t.slaves = append([]model.WindowId{w}, t.slaves...)
		}
	case DirUp, DirDown:
		list, idx := t.locate(w)
		if list == nil {
			return emptyResponse()
		}
		other := idx + 1
		if dir == DirUp {
			other = idx - 1
		}
		if other < 0 || other >= len(*list) {
			return emptyResponse()
		}
		(*list)[idx], (*list)[other] = (*list)[other], (*list)[idx]
	}
	t.masterShares = calcEqualShares(len(t.masters))
	t.slaveShares = calcEqualShares(len(t.slaves))
	return Response{FocusWindow: &w}
}

// ResizeBy(left/right) adjusts the master column's horizontal share
// (Manager.IncreaseMaster/DecreaseMaster); ResizeBy(up/down) redistributes
// the selected window's share within its column
// (Manager.IncreaseProportion/DecreaseProportion).
func (t *MasterStackTree) ResizeBy(dir Direction, fraction float64) bool {
	const minRatio, maxRatio = 0.1, 0.9
	switch dir {
	case DirLeft, DirRight:
		delta := fraction
		if dir == DirLeft {
			delta = -delta
		}
		newRatio := t.masterRatio + delta
		if newRatio < minRatio || newRatio > maxRatio {
			return false
		}
		t.masterRatio = newRatio
		return true
	case DirUp, DirDown:
		if !t.hasSelected {
			return false
		}
		list, idx := t.locate(t.selected)
		shares := &t.masterShares
		if list == &t.slaves {
			shares = &t.slaveShares
		}
		if idx < 0 || len(*shares) < 2 {
			return false
		}
		other := (idx + 1) % len(*shares)
		delta := fraction
		if dir == DirUp {
			delta = -delta
		}
		const minShare = 0.05
		ns := (*shares)[idx] + delta
		no := (*shares)[other] - delta
		if ns < minShare || no < minShare {
			return false
		}
		(*shares)[idx] = ns
		(*shares)[other] = no
		return true
	}
	return false
}

// Rebalance resets both columns to equal shares (Manager.calcProportions).
func (t *MasterStackTree) Rebalance() {
	t.masterShares = calcEqualShares(len(t.masters))
	t.slaveShares = calcEqualShares(len(t.slaves))
	t.masterRatio = 0.55
}

func (t *MasterStackTree) Selected() *model.WindowId {
	if !t.hasSelected {
		return nil
	}
	w := t.selected
	return &w
}

func (t *MasterStackTree) Visible() []model.WindowId {
	out := make([]model.WindowId, 0, len(t.masters)+len(t.slaves))
	out = append(out, t.masters...)
	out = append(out, t.slaves...)
	return out
}

func (t *MasterStackTree) Calculate(screen model.Rect, gaps Gaps, stack StackStyle) []Frame {
	area := gaps.Apply(screen)

	if t.fullscreen != nil {
		return []Frame{{Window: *t.fullscreen, Rect: screen}}
	}

	var out []Frame
	if len(t.slaves) == 0 {
		out = append(out, t.column(t.masters, t.masterShares, area, gaps)...)
		return out
	}
	if len(t.masters) == 0 {
		out = append(out, t.column(t.slaves, t.slaveShares, area, gaps)...)
		return out
	}

	masterW := area.W*t.masterRatio - gaps.InnerHorizontal/2
	masterArea := model.Rect{X: area.X, Y: area.Y, W: masterW, H: area.H}
	slaveArea := model.Rect{X: area.X + masterW + gaps.InnerHorizontal, Y: area.Y, W: area.W - masterW - gaps.InnerHorizontal, H: area.H}

	out = append(out, t.column(t.masters, t.masterShares, masterArea, gaps)...)
	out = append(out, t.column(t.slaves, t.slaveShares, slaveArea, gaps)...)
	return out
}

func (t *MasterStackTree) column(windows []model.WindowId, shares []float64, area model.Rect, gaps Gaps) []Frame {
	if len(windows) == 0 {
		return nil
	}
	total := 0.0
	for _, s := range shares {
		total += s
	}
	if total <= 0 {
		total = float64(len(windows))
		shares = calcEqualShares(len(windows))
	}
	out := make([]Frame, 0, len(windows))
	pos := 0.0
	for i, w := range windows {
		share := shares[i] / total
		gap := 0.0
		if i > 0 {
			gap = gaps.InnerVertical
		}
		h := area.H*share - gaps.InnerVertical*float64(len(windows)-1)/float64(len(windows))
		r := model.Rect{X: area.X, Y: area.Y + pos + gap, W: area.W, H: h}
		pos += area.H*share + gap
		out = append(out, Frame{Window: w, Rect: r})
	}
	return out
}
