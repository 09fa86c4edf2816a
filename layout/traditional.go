package layout

import "github.com/rift/riftwm/model"

type nodeKind int

const (
	nkLeaf nodeKind = iota
	nkContainer
)

type tnode struct {
	id         int
	parent     int // -1 for root
	children   []int
	kind       nodeKind
	container  ContainerKind
	window     *model.WindowId
	size       float64
	fullscreen bool
}

// TraditionalTree implements the traditional backend: an arena-indexed tree
// of leaves and N-ary containers (spec.md §4.3 "Traditional layout").
type TraditionalTree struct {
	nodes       map[int]*tnode
	nextId      int
	root        int
	selection   int
	windowIndex map[model.WindowId]int
}

func NewTraditional() *TraditionalTree {
	t := &TraditionalTree{
		nodes:       make(map[int]*tnode),
		windowIndex: make(map[model.WindowId]int),
	}
	t.root = t.newNode(nkLeaf, KindHorizontal, -1)
	t.selection = t.root
	return t
}

func (t *TraditionalTree) Kind() Kind { return Traditional }

func (t *TraditionalTree) newNode(kind nodeKind, container ContainerKind, parent int) int {
	id := t.nextId
	t.nextId++
	t.nodes[id] = &tnode{id: id, parent: parent, kind: kind, container: container, size: 1}
	return id
}

func (t *TraditionalTree) isEmptyLeaf(id int) bool {
	n := t.nodes[id]
	return n != nil && n.kind == nkLeaf && n.window == nil
}

// AddWindow fills the current selection if it's an empty leaf, otherwise
// splits it into a two-child container with the existing window kept and
// the new window appended.
func (t *TraditionalTree) AddWindow(w model.WindowId) Response {
	sel := t.nodes[t.selection]
	if sel.kind == nkLeaf && sel.window == nil {
		sel.window = &w
		t.windowIndex[w] = sel.id
		return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
	}

	leaf := t.leafOfSelection()
	oldWin := t.nodes[leaf].window
	parent := t.nodes[leaf].parent

	if parent != -1 && len(t.nodes[parent].children) == 1 {
		// parent is the single-child wrapper Split left behind: the new
		// window joins it as a sibling, so the split runs along its kind.
		newLeaf := t.newNode(nkLeaf, KindHorizontal, parent)
		t.nodes[newLeaf].window = &w
		t.nodes[parent].children = append(t.nodes[parent].children, newLeaf)
		t.windowIndex[w] = newLeaf
		t.selection = newLeaf
		return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
	}

	container := t.newNode(nkContainer, KindHorizontal, parent)
	newLeafA := t.newNode(nkLeaf, KindHorizontal, container)
	newLeafB := t.newNode(nkLeaf, KindHorizontal, container)
	t.nodes[newLeafA].window = oldWin
	t.nodes[newLeafB].window = &w
	t.nodes[container].children = []int{newLeafA, newLeafB}
	t.nodes[container].size = t.nodes[leaf].size

	if oldWin != nil {
		t.windowIndex[*oldWin] = newLeafA
	}
	t.windowIndex[w] = newLeafB

	t.replaceChild(parent, leaf, container)
	delete(t.nodes, leaf)

	t.selection = newLeafB
	return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
}

func (t *TraditionalTree) replaceChild(parent, old, new int) {
	if parent == -1 {
		if t.root == old {
			t.root = new
		}
		return
	}
	p := t.nodes[parent]
	for i, c := range p.children {
		if c == old {
			p.children[i] = new
			return
		}
	}
	p.children = append(p.children, new)
}

func (t *TraditionalTree) leafOfSelection() int {
	id := t.selection
	for {
		n := t.nodes[id]
		if n == nil || n.kind == nkLeaf {
			return id
		}
		if len(n.children) == 0 {
			return id
		}
		id = n.children[0]
	}
}

func (t *TraditionalTree) RemoveWindow(w model.WindowId) Response {
	leaf, ok := t.windowIndex[w]
	if !ok {
		return emptyResponse()
	}
	delete(t.windowIndex, w)

	if leaf == t.root {
		t.nodes[leaf].window = nil
		t.selection = leaf
		return emptyResponse()
	}

	parent := t.nodes[leaf].parent
	p := t.nodes[parent]
	p.children = removeInt(p.children, leaf)
	delete(t.nodes, leaf)

	var newSelection int
	if len(p.children) == 1 {
		newSelection = t.collapse(parent)
	} else if len(p.children) > 0 {
		newSelection = t.leafUnder(p.children[0])
	} else {
		newSelection = parent
	}
	t.selection = newSelection
	return emptyResponse()
}

// collapse implements spec.md §3's "removing the last window from a
// container collapses the container": the lone remaining child's content
// replaces the parent node in place, so ancestor references stay valid.
func (t *TraditionalTree) collapse(parentId int) int {
	p := t.nodes[parentId]
	if len(p.children) != 1 {
		return parentId
	}
	child := t.nodes[p.children[0]]

	p.kind = child.kind
	p.container = child.container
	p.window = child.window
	p.children = child.children
	p.fullscreen = child.fullscreen

	for _, c := range p.children {
		t.nodes[c].parent = parentId
	}
	if p.window != nil {
		t.windowIndex[*p.window] = parentId
	}
	delete(t.nodes, child.id)

	if p.kind == nkLeaf {
		return parentId
	}
	return t.leafUnder(parentId)
}

func (t *TraditionalTree) leafUnder(id int) int {
	n := t.nodes[id]
	for n.kind == nkContainer && len(n.children) > 0 {
		id = n.children[0]
		n = t.nodes[id]
	}
	return id
}

func (t *TraditionalTree) Contains(w model.WindowId) bool {
	_, ok := t.windowIndex[w]
	return ok
}

func (t *TraditionalTree) SwapWindows(a, b model.WindowId) bool {
	na, ok := t.windowIndex[a]
	if !ok {
		return false
	}
	nb, ok := t.windowIndex[b]
	if !ok {
		return false
	}
	t.nodes[na].window, t.nodes[nb].window = t.nodes[nb].window, t.nodes[na].window
	t.windowIndex[a] = nb
	t.windowIndex[b] = na
	return true
}

// Split wraps the current selection leaf in a new single-child container of
// the given kind, so the next AddWindow splits along it. Unjoin is its
// exact inverse for the one-child case, and generalizes to flatten any
// container built up this way (spec.md §8 round-trip law).
func (t *TraditionalTree) Split(kind ContainerKind) Response {
	leaf := t.leafOfSelection()
	parent := t.nodes[leaf].parent

	wrapper := t.newNode(nkContainer, kind, parent)
	t.nodes[wrapper].children = []int{leaf}
	t.nodes[wrapper].size = t.nodes[leaf].size
	t.nodes[leaf].parent = wrapper
	t.nodes[leaf].size = 1
	t.replaceChild(parent, leaf, wrapper)
	return emptyResponse()
}

func (t *TraditionalTree) Unjoin() Response {
	leaf := t.leafOfSelection()
	parent := t.nodes[leaf].parent
	if parent == -1 {
		return emptyResponse()
	}
	grandparent := t.nodes[parent].parent
	children := t.nodes[parent].children

	if grandparent == -1 {
		// parent is the root container itself. It can only be flattened
		// when Split never got a second child attached (the exact inverse
		// of Split), since a multi-child container has nothing above it to
		// reattach its extra children to.
		if len(children) != 1 {
			return emptyResponse()
		}
		t.nodes[children[0]].parent = -1
		t.root = children[0]
		delete(t.nodes, parent)
		t.selection = leaf
		return emptyResponse()
	}

	for _, c := range children {
		t.nodes[c].parent = grandparent
	}
	gp := t.nodes[grandparent]
	idx := indexOf(gp.children, parent)
	if idx >= 0 {
		gp.children = append(gp.children[:idx], append(append([]int{}, children...), gp.children[idx+1:]...)...)
	}
	delete(t.nodes, parent)
	t.selection = leaf
	return emptyResponse()
}

// Join merges the selection's leaf with its direction-neighbor when they
// share an immediate parent: the parent container becomes a stacked
// container so both windows occupy the same area (spec.md §4.3 "stacked
// containers"). Unlike collapsing a split, Join never discards a window.
func (t *TraditionalTree) Join(dir Direction) Response {
	leaf := t.leafOfSelection()
	n := t.nodes[leaf]
	if n.parent == -1 {
		return emptyResponse()
	}
	parent := t.nodes[n.parent]
	if parent.container.orientation() != dir.Orientation() || len(parent.children) < 2 {
		return emptyResponse()
	}
	idx := indexOf(parent.children, leaf)
	var neighbor int
	if dir.IsForward() && idx < len(parent.children)-1 {
		neighbor = parent.children[idx+1]
	} else if !dir.IsForward() && idx > 0 {
		neighbor = parent.children[idx-1]
	} else {
		return emptyResponse()
	}
	if t.nodes[neighbor].parent != n.parent {
		return emptyResponse()
	}

	if dir.Orientation() == Horizontal {
		parent.container = KindHorizontalStack
	} else {
		parent.container = KindVerticalStack
	}
	return emptyResponse()
}

func (t *TraditionalTree) ToggleFullscreen() Response {
	leaf := t.leafOfSelection()
	n := t.nodes[leaf]
	n.fullscreen = !n.fullscreen
	if n.window != nil {
		return Response{RaiseWindows: []model.WindowId{*n.window}}
	}
	return emptyResponse()
}

func (t *TraditionalTree) findNeighbor(leaf int, dir Direction) int {
	current := leaf
	for {
		n := t.nodes[current]
		if n.parent == -1 {
			return -1
		}
		parent := t.nodes[n.parent]
		if parent.container.orientation() == dir.Orientation() {
			idx := indexOf(parent.children, current)
			if dir.IsForward() && idx < len(parent.children)-1 {
				return t.leafInDirection(parent.children[idx+1], dir)
			}
			if !dir.IsForward() && idx > 0 {
				return t.leafInDirection(parent.children[idx-1], dir)
			}
		}
		current = n.parent
	}
}

func (k ContainerKind) orientation() Orientation {
	switch k {
	case KindVertical, KindVerticalStack:
		return Vertical
	default:
		return Horizontal
	}
}

func (t *TraditionalTree) leafInDirection(id int, dir Direction) int {
	n := t.nodes[id]
	for n.kind == nkContainer && len(n.children) > 0 {
		if n.container.orientation() == dir.Orientation() {
			if dir.IsForward() {
				id = n.children[0]
			} else {
				id = n.children[len(n.children)-1]
			}
		} else {
			id = n.children[0]
		}
		n = t.nodes[id]
	}
	return id
}

func (t *TraditionalTree) MoveFocus(dir Direction) Response {
	leaf := t.leafOfSelection()
	target := t.findNeighbor(leaf, dir)
	if target == -1 {
		return emptyResponse()
	}
	t.selection = target
	n := t.nodes[target]
	if n.window != nil {
		return Response{FocusWindow: n.window, RaiseWindows: []model.WindowId{*n.window}}
	}
	return emptyResponse()
}

func (t *TraditionalTree) MoveNode(dir Direction) Response {
	leaf := t.leafOfSelection()
	target := t.findNeighbor(leaf, dir)
	if target == -1 {
		return emptyResponse()
	}
	a, b := t.nodes[leaf], t.nodes[target]
	a.window, b.window = b.window, a.window
	if a.window != nil {
		t.windowIndex[*a.window] = leaf
	}
	if b.window != nil {
		t.windowIndex[*b.window] = target
	}
	t.selection = target
	if b.window != nil {
		return Response{FocusWindow: b.window}
	}
	return emptyResponse()
}

func (t *TraditionalTree) ResizeBy(dir Direction, fraction float64) bool {
	leaf := t.leafOfSelection()
	n := t.nodes[leaf]
	if n.parent == -1 {
		return false
	}
	parent := t.nodes[n.parent]
	if parent.container.orientation() != dir.Orientation() {
		return false
	}
	idx := indexOf(parent.children, leaf)
	var other int
	if dir.IsForward() && idx < len(parent.children)-1 {
		other = parent.children[idx+1]
	} else if !dir.IsForward() && idx > 0 {
		other = parent.children[idx-1]
	} else if idx > 0 {
		other = parent.children[idx-1]
	} else if idx < len(parent.children)-1 {
		other = parent.children[idx+1]
	} else {
		return false
	}
	const minShare = 0.05
	delta := fraction
	newSize := n.size + delta
	otherNode := t.nodes[other]
	newOther := otherNode.size - delta
	if newSize < minShare || newOther < minShare {
		return false
	}
	n.size = newSize
	otherNode.size = newOther
	return true
}

func (t *TraditionalTree) Rebalance() {
	var walk func(id int)
	walk = func(id int) {
		n := t.nodes[id]
		if n.kind == nkContainer && len(n.children) > 0 {
			share := 1.0 / float64(len(n.children))
			for _, c := range n.children {
				t.nodes[c].size = share
				walk(c)
			}
		}
	}
	walk(t.root)
}

func (t *TraditionalTree) Selected() *model.WindowId {
	leaf := t.leafOfSelection()
	return t.nodes[leaf].window
}

func (t *TraditionalTree) Visible() []model.WindowId {
	var out []model.WindowId
	var walk func(id int)
	walk = func(id int) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		if n.kind == nkLeaf {
			if n.window != nil {
				out = append(out, *n.window)
			}
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

func (t *TraditionalTree) Calculate(screen model.Rect, gaps Gaps, stack StackStyle) []Frame {
	area := gaps.Apply(screen)

	// Only the fullscreen window gets a frame; its siblings receive none and
	// stay at whatever frame was last applied to them, covered by the
	// fullscreen window rather than explicitly hidden (spec.md §9 "OS-native
	// vs in-model fullscreen" resolution, DESIGN.md).
	if fsWin := t.fullscreenWindow(); fsWin != nil {
		return []Frame{{Window: *fsWin, Rect: screen}}
	}

	var out []Frame
	selLeaf := t.leafOfSelection()
	var walk func(id int, rect model.Rect)
	walk = func(id int, rect model.Rect) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		if n.kind == nkLeaf {
			if n.window != nil {
				out = append(out, Frame{Window: *n.window, Rect: rect})
			}
			return
		}
		t.layoutContainer(n, rect, gaps, stack, selLeaf, walk)
	}
	walk(t.root, area)
	return out
}

func (t *TraditionalTree) fullscreenWindow() *model.WindowId {
	for _, n := range t.nodes {
		if n.fullscreen && n.window != nil {
			w := *n.window
			return &w
		}
	}
	return nil
}

func (t *TraditionalTree) layoutContainer(n *tnode, rect model.Rect, gaps Gaps, stack StackStyle, selLeaf int, walk func(int, model.Rect)) {
	if n.container == KindHorizontalStack || n.container == KindVerticalStack {
		for i, c := range n.children {
			r := rect
			offset := float64(i) * stack.PeekOffset
			if n.container == KindHorizontalStack {
				r.X += offset
			} else {
				r.Y += offset
			}
			if containsLeafOrSelf(t, c, selLeaf) {
				r.W += stack.FocusedExpand
				r.H += stack.FocusedExpand
			}
			walk(c, r)
		}
		return
	}

	total := 0.0
	for _, c := range n.children {
		total += t.nodes[c].size
	}
	if total <= 0 {
		total = float64(len(n.children))
	}

	pos := 0.0
	for i, c := range n.children {
		share := t.nodes[c].size / total
		var r model.Rect
		if n.container == KindHorizontal {
			gap := 0.0
			if i > 0 {
				gap = gaps.InnerHorizontal
			}
			w := rect.W*share - gaps.InnerHorizontal*float64(len(n.children)-1)/float64(len(n.children))
			r = model.Rect{X: rect.X + pos + gap, Y: rect.Y, W: w, H: rect.H}
			pos += rect.W*share + gap
		} else {
			gap := 0.0
			if i > 0 {
				gap = gaps.InnerVertical
			}
			h := rect.H*share - gaps.InnerVertical*float64(len(n.children)-1)/float64(len(n.children))
			r = model.Rect{X: rect.X, Y: rect.Y + pos + gap, W: rect.W, H: h}
			pos += rect.H*share + gap
		}
		walk(c, r)
	}
}

func containsLeafOrSelf(t *TraditionalTree, id, target int) bool {
	if id == target {
		return true
	}
	n := t.nodes[id]
	if n.kind == nkLeaf {
		return false
	}
	for _, c := range n.children {
		if containsLeafOrSelf(t, c, target) {
			return true
		}
	}
	return false
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
