package layout

import "github.com/rift/riftwm/model"

// bspNode is either a binary Split{orientation, ratio} or a Leaf{window}.
// Grounded in original_source/src/layout_engine/binary_tree.rs, restricted
// to a strictly two-child tree (BinaryTreeLayout shared by BSP/Dwindle).
type bspNode struct {
	id          int
	parent      int
	isSplit     bool
	orientation Orientation
	ratio       float64
	children    [2]int // valid when isSplit
	window      *model.WindowId
	fullscreen  bool
}

// BSPTree implements the binary-space-partitioning backend.
type BSPTree struct {
	nodes       map[int]*bspNode
	nextId      int
	root        int
	selection   int
	windowIndex map[model.WindowId]int
}

func NewBSP() *BSPTree {
	t := &BSPTree{
		nodes:       make(map[int]*bspNode),
		windowIndex: make(map[model.WindowId]int),
	}
	t.root = t.newLeaf(-1, nil)
	t.selection = t.root
	return t
}

func (t *BSPTree) Kind() Kind { return BSP }

func (t *BSPTree) newLeaf(parent int, w *model.WindowId) int {
	id := t.nextId
	t.nextId++
	t.nodes[id] = &bspNode{id: id, parent: parent, window: w}
	return id
}

func (t *BSPTree) AddWindow(w model.WindowId) Response {
	sel := t.nodes[t.selection]
	if !sel.isSplit && sel.window == nil {
		sel.window = &w
		t.windowIndex[w] = sel.id
		return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
	}

	leaf := t.descendToLeaf(t.selection)
	n := t.nodes[leaf]
	oldWin := n.window

	orientation := Horizontal
	if n.parent != -1 && t.nodes[n.parent].orientation == Horizontal {
		orientation = Vertical
	}

	leftId := t.newLeaf(leaf, oldWin)
	rightId := t.newLeaf(leaf, &w)
	if oldWin != nil {
		t.windowIndex[*oldWin] = leftId
	}
	t.windowIndex[w] = rightId

	n.isSplit = true
	n.orientation = orientation
	n.ratio = 0.5
	n.window = nil
	n.children = [2]int{leftId, rightId}

	t.selection = rightId
	return Response{RaiseWindows: []model.WindowId{w}, FocusWindow: &w}
}

func (t *BSPTree) descendToLeaf(id int) int {
	n := t.nodes[id]
	for n.isSplit {
		id = n.children[0]
		n = t.nodes[id]
	}
	return id
}

func (t *BSPTree) RemoveWindow(w model.WindowId) Response {
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
	var sibling int
	if p.children[0] == leaf {
		sibling = p.children[1]
	} else {
		sibling = p.children[0]
	}
	t.collapseInto(parent, sibling)
	delete(t.nodes, leaf)

	t.selection = t.descendToLeaf(parent)
	return emptyResponse()
}

// collapseInto replaces parent's content with sibling's content in place,
// mirroring binary_tree.rs's cleanup_after_removal.
func (t *BSPTree) collapseInto(parentId, siblingId int) {
	p := t.nodes[parentId]
	s := t.nodes[siblingId]

	p.isSplit = s.isSplit
	p.orientation = s.orientation
	p.ratio = s.ratio
	p.children = s.children
	p.window = s.window
	p.fullscreen = s.fullscreen

	if p.isSplit {
		t.nodes[p.children[0]].parent = parentId
		t.nodes[p.children[1]].parent = parentId
	}
	if p.window != nil {
		t.windowIndex[*p.window] = parentId
	}
	delete(t.nodes, siblingId)
}

func (t *BSPTree) Contains(w model.WindowId) bool {
	_, ok := t.windowIndex[w]
	return ok
}

func (t *BSPTree) SwapWindows(a, b model.WindowId) bool {
	na, ok := t.windowIndex[a]
	if !ok {
		return false
	}
	nb, ok := t.windowIndex[b]
	if !ok {
		return false
	}
	t.nodes[na].window, t.nodes[nb].window = t.nodes[nb].window, t.nodes[na].window
	t.windowIndex[a], t.windowIndex[b] = nb, na
	return true
}

// Split sets the orientation of the split directly above the selected leaf
// to the container kind's orientation: Horizontal and HorizontalStack give
// Horizontal, Vertical and VerticalStack give Vertical. A lone root leaf
// has no split above it and is left unchanged.
func (t *BSPTree) Split(kind ContainerKind) Response {
	leaf := t.descendToLeaf(t.selection)
	parent := t.nodes[leaf].parent
	if parent == -1 {
		return emptyResponse()
	}
	t.nodes[parent].orientation = kind.orientation()
	return emptyResponse()
}

// Join resets the ratio of the enclosing split to an even 50/50 share. BSP
// nodes are strictly binary, so there is no flatten-to-parent operation
// available the way the traditional backend has one; this is the closest
// useful analog to "merge with neighbor".
func (t *BSPTree) Join(dir Direction) Response {
	leaf := t.descendToLeaf(t.selection)
	parent := t.nodes[leaf].parent
	if parent == -1 {
		return emptyResponse()
	}
	p := t.nodes[parent]
	if p.orientation != dir.Orientation() {
		return emptyResponse()
	}
	p.ratio = 0.5
	return emptyResponse()
}

// Unjoin has no effect in BSP: every split has exactly two children, so
// there is no container shape that can be flattened without violating the
// binary invariant.
func (t *BSPTree) Unjoin() Response { return emptyResponse() }

func (t *BSPTree) ToggleFullscreen() Response {
	leaf := t.descendToLeaf(t.selection)
	n := t.nodes[leaf]
	n.fullscreen = !n.fullscreen
	if n.window != nil {
		return Response{RaiseWindows: []model.WindowId{*n.window}}
	}
	return emptyResponse()
}

func (t *BSPTree) findNeighbor(leaf int, dir Direction) int {
	current := leaf
	for {
		n := t.nodes[current]
		if n.parent == -1 {
			return -1
		}
		parent := t.nodes[n.parent]
		if parent.orientation == dir.Orientation() {
			isLeft := parent.children[0] == current
			if dir.IsForward() && isLeft {
				return t.leafInDirection(parent.children[1], dir)
			}
			if !dir.IsForward() && !isLeft {
				return t.leafInDirection(parent.children[0], dir)
			}
		}
		current = n.parent
	}
}

func (t *BSPTree) leafInDirection(id int, dir Direction) int {
	n := t.nodes[id]
	for n.isSplit {
		if n.orientation == dir.Orientation() {
			if dir.IsForward() {
				id = n.children[0]
			} else {
				id = n.children[1]
			}
		} else {
			id = n.children[0]
		}
		n = t.nodes[id]
	}
	return id
}

func (t *BSPTree) MoveFocus(dir Direction) Response {
	leaf := t.descendToLeaf(t.selection)
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

func (t *BSPTree) MoveNode(dir Direction) Response {
	leaf := t.descendToLeaf(t.selection)
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

func (t *BSPTree) ResizeBy(dir Direction, fraction float64) bool {
	leaf := t.descendToLeaf(t.selection)
	n := t.nodes[leaf]
	if n.parent == -1 {
		return false
	}
	parent := t.nodes[n.parent]
	if parent.orientation != dir.Orientation() {
		return false
	}
	const minRatio, maxRatio = 0.05, 0.95
	isLeft := parent.children[0] == leaf
	delta := fraction
	if !isLeft {
		delta = -delta
	}
	if !dir.IsForward() {
		delta = -delta
	}
	newRatio := parent.ratio + delta
	if newRatio < minRatio || newRatio > maxRatio {
		return false
	}
	parent.ratio = newRatio
	return true
}

func (t *BSPTree) Rebalance() {
	var walk func(id int)
	walk = func(id int) {
		n := t.nodes[id]
		if !n.isSplit {
			return
		}
		n.ratio = 0.5
		walk(n.children[0])
		walk(n.children[1])
	}
	walk(t.root)
}

func (t *BSPTree) Selected() *model.WindowId {
	leaf := t.descendToLeaf(t.selection)
	return t.nodes[leaf].window
}

func (t *BSPTree) Visible() []model.WindowId {
	var out []model.WindowId
	var walk func(id int)
	walk = func(id int) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		if !n.isSplit {
			if n.window != nil {
				out = append(out, *n.window)
			}
			return
		}
		walk(n.children[0])
		walk(n.children[1])
	}
	walk(t.root)
	return out
}

func (t *BSPTree) Calculate(screen model.Rect, gaps Gaps, stack StackStyle) []Frame {
	area := gaps.Apply(screen)

	for _, n := range t.nodes {
		if n.fullscreen && n.window != nil {
			return []Frame{{Window: *n.window, Rect: screen}}
		}
	}

	var out []Frame
	var walk func(id int, rect model.Rect)
	walk = func(id int, rect model.Rect) {
		n := t.nodes[id]
		if n == nil {
			return
		}
		if !n.isSplit {
			if n.window != nil {
				out = append(out, Frame{Window: *n.window, Rect: rect})
			}
			return
		}
		left, right := rect, rect
		if n.orientation == Horizontal {
			leftW := rect.W*n.ratio - gaps.InnerHorizontal/2
			left.W = leftW
			right.X = rect.X + leftW + gaps.InnerHorizontal
			right.W = rect.W - leftW - gaps.InnerHorizontal
		} else {
			leftH := rect.H*n.ratio - gaps.InnerVertical/2
			left.H = leftH
			right.Y = rect.Y + leftH + gaps.InnerVertical
			right.H = rect.H - leftH - gaps.InnerVertical
		}
		walk(n.children[0], left)
		walk(n.children[1], right)
	}
	walk(t.root, area)
	return out
}
