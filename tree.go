package main

// ── Orientation & Direction ────────────────────────────────────────

// Orientation describes how a split divides its region. A vertical
// split places children side by side; a horizontal split stacks them.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Direction is a focus-movement direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// axis returns the split orientation a direction travels across.
func (d Direction) axis() Orientation {
	if d == DirLeft || d == DirRight {
		return Vertical
	}
	return Horizontal
}

// forward reports whether the direction moves toward the second child.
func (d Direction) forward() bool {
	return d == DirRight || d == DirDown
}

// ── Pane Tree ──────────────────────────────────────────────────────

// NodeID addresses a node in the tree arena. IDs are never reused
// within a tree, so a leaf keeps its identity across splits and
// collapses around it.
type NodeID int

const noNode NodeID = 0

const (
	minSplitRatio = 0.05
	maxSplitRatio = 0.95
)

type paneNode struct {
	id     NodeID
	parent NodeID

	// Leaf fields.
	pane *Pane

	// Split fields.
	orient        Orientation
	first, second NodeID
	ratio         float64
	lastFocus     NodeID // child subtree that most recently held focus
}

func (n *paneNode) leaf() bool { return n.pane != nil }

// PaneTree is the split layout of one tab: a binary tree whose leaves
// hold terminal panes. Nodes live in an arena keyed by NodeID and point
// at each other by ID, so mutations are slot rewrites rather than
// pointer surgery. The tree never manages pane process lifecycle; the
// session tears a pane down before asking the tree to drop its leaf.
type PaneTree struct {
	nodes   map[NodeID]*paneNode
	root    NodeID
	focused NodeID
	nextID  NodeID
}

// CloseResult reports what a leaf close did to the tree.
type CloseResult struct {
	Empty    bool   // the closed leaf was the last one
	Survivor NodeID // resident leaf of the collapsed survivor, when not empty
}

// NewPaneTree builds a single-leaf tree around an existing pane.
func NewPaneTree(p *Pane) *PaneTree {
	t := &PaneTree{nodes: make(map[NodeID]*paneNode), nextID: 1}
	leaf := t.alloc()
	leaf.pane = p
	t.root = leaf.id
	t.focused = leaf.id
	return t
}

func (t *PaneTree) alloc() *paneNode {
	n := &paneNode{id: t.nextID}
	t.nextID++
	t.nodes[n.id] = n
	return n
}

// FocusedLeaf returns the leaf that owns input, or noNode on an empty
// tree.
func (t *PaneTree) FocusedLeaf() NodeID { return t.focused }

// FocusedPane returns the pane of the focused leaf, nil on an empty
// tree.
func (t *PaneTree) FocusedPane() *Pane {
	if n, ok := t.nodes[t.focused]; ok && n.leaf() {
		return n.pane
	}
	return nil
}

// Pane returns the pane held by a leaf node, nil for splits or unknown
// IDs.
func (t *PaneTree) Pane(id NodeID) *Pane {
	if n, ok := t.nodes[id]; ok {
		return n.pane
	}
	return nil
}

// Leaves returns all leaf IDs in layout order (first child before
// second).
func (t *PaneTree) Leaves() []NodeID {
	var out []NodeID
	t.walkLeaves(t.root, func(n *paneNode) {
		out = append(out, n.id)
	})
	return out
}

// Panes returns all panes in layout order.
func (t *PaneTree) Panes() []*Pane {
	var out []*Pane
	t.walkLeaves(t.root, func(n *paneNode) {
		out = append(out, n.pane)
	})
	return out
}

func (t *PaneTree) walkLeaves(id NodeID, fn func(*paneNode)) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	if n.leaf() {
		fn(n)
		return
	}
	t.walkLeaves(n.first, fn)
	t.walkLeaves(n.second, fn)
}

// FindPane returns the leaf holding the pane with the given pane ID.
func (t *PaneTree) FindPane(paneID int) NodeID {
	found := noNode
	t.walkLeaves(t.root, func(n *paneNode) {
		if n.pane.id == paneID {
			found = n.id
		}
	})
	return found
}

// SetFocus moves focus to a leaf and records the focus path on every
// ancestor split, so later descents land on the pane the user last
// worked in.
func (t *PaneTree) SetFocus(id NodeID) bool {
	n, ok := t.nodes[id]
	if !ok || !n.leaf() {
		return false
	}
	t.focused = id
	for child := n; child.parent != noNode; {
		parent := t.nodes[child.parent]
		parent.lastFocus = child.id
		child = parent
	}
	return true
}

// residentLeaf descends a subtree toward its most recently focused
// leaf, preferring the first child where no focus has been recorded.
func (t *PaneTree) residentLeaf(id NodeID) NodeID {
	n, ok := t.nodes[id]
	if !ok {
		return noNode
	}
	for !n.leaf() {
		next := n.first
		if n.lastFocus == n.second {
			next = n.second
		}
		n = t.nodes[next]
	}
	return n.id
}

// Split replaces the target leaf with a split holding the existing
// leaf first and a new leaf around p second, at a 50/50 ratio. The
// target keeps its ID; the new leaf takes focus. Returns the new
// leaf's ID, or noNode if the target is not a leaf.
//
// The caller creates the pane before calling, so a failed spawn never
// touches the tree.
func (t *PaneTree) Split(target NodeID, o Orientation, p *Pane) NodeID {
	old, ok := t.nodes[target]
	if !ok || !old.leaf() {
		return noNode
	}

	split := t.alloc()
	leaf := t.alloc()
	leaf.pane = p

	split.parent = old.parent
	split.orient = o
	split.first = old.id
	split.second = leaf.id
	split.ratio = 0.5

	if old.parent == noNode {
		t.root = split.id
	} else {
		t.replaceChild(t.nodes[old.parent], old.id, split.id)
	}
	old.parent = split.id
	leaf.parent = split.id

	t.SetFocus(leaf.id)
	return leaf.id
}

func (t *PaneTree) replaceChild(parent *paneNode, from, to NodeID) {
	if parent.first == from {
		parent.first = to
	} else {
		parent.second = to
	}
	if parent.lastFocus == from {
		parent.lastFocus = to
	}
}

// Close removes a leaf. The parent split collapses and its surviving
// subtree takes the parent's slot. When the closed leaf held focus,
// focus lands on the survivor's resident leaf; a close elsewhere in
// the tree leaves focus where the user is typing. Closing the last
// leaf empties the tree.
func (t *PaneTree) Close(target NodeID) CloseResult {
	n, ok := t.nodes[target]
	if !ok || !n.leaf() {
		return CloseResult{}
	}
	hadFocus := t.focused == target
	delete(t.nodes, target)

	if n.parent == noNode {
		t.root = noNode
		t.focused = noNode
		return CloseResult{Empty: true}
	}

	parent := t.nodes[n.parent]
	sibling := parent.first
	if sibling == target {
		sibling = parent.second
	}
	sib := t.nodes[sibling]
	sib.parent = parent.parent
	if parent.parent == noNode {
		t.root = sibling
	} else {
		t.replaceChild(t.nodes[parent.parent], parent.id, sibling)
	}
	delete(t.nodes, parent.id)

	survivor := t.residentLeaf(sibling)
	if hadFocus {
		t.SetFocus(survivor)
	}
	return CloseResult{Survivor: survivor}
}

// MoveFocus moves focus one pane in the given direction. It ascends to
// the nearest split of the matching axis where movement is possible,
// then descends the opposite subtree toward its resident leaf. Returns
// false when focus sits at the edge of the layout.
func (t *PaneTree) MoveFocus(d Direction) (NodeID, bool) {
	cur, ok := t.nodes[t.focused]
	if !ok {
		return noNode, false
	}
	for cur.parent != noNode {
		parent := t.nodes[cur.parent]
		if parent.orient == d.axis() {
			if d.forward() && parent.first == cur.id {
				leaf := t.residentLeaf(parent.second)
				t.SetFocus(leaf)
				return leaf, true
			}
			if !d.forward() && parent.second == cur.id {
				leaf := t.residentLeaf(parent.first)
				t.SetFocus(leaf)
				return leaf, true
			}
		}
		cur = parent
	}
	return noNode, false
}

// SetRatio adjusts a split's ratio, clamped so neither side collapses.
func (t *PaneTree) SetRatio(split NodeID, ratio float64) bool {
	n, ok := t.nodes[split]
	if !ok || n.leaf() {
		return false
	}
	if ratio < minSplitRatio {
		ratio = minSplitRatio
	}
	if ratio > maxSplitRatio {
		ratio = maxSplitRatio
	}
	n.ratio = ratio
	return true
}

// Ratio returns a split's current ratio.
func (t *PaneTree) Ratio(split NodeID) float64 {
	if n, ok := t.nodes[split]; ok && !n.leaf() {
		return n.ratio
	}
	return 0
}

// ── Layout ─────────────────────────────────────────────────────────

// PaneRect is a leaf's screen region, borders included.
type PaneRect struct {
	ID         NodeID
	Pane       *Pane
	X, Y, W, H int
}

// SplitRegion is the full region governed by one split, used for
// divider hit testing during mouse resizes.
type SplitRegion struct {
	ID         NodeID
	Orient     Orientation
	X, Y, W, H int
}

// splitSizes divides an extent by ratio, keeping both sides at least
// one cell.
func splitSizes(total int, ratio float64) (int, int) {
	first := int(float64(total) * ratio)
	if first < 1 {
		first = 1
	}
	if first > total-1 {
		first = total - 1
	}
	return first, total - first
}

// Layout computes the screen rectangles of every leaf and every split
// region within the given area.
func (t *PaneTree) Layout(x, y, w, h int) ([]PaneRect, []SplitRegion) {
	var panes []PaneRect
	var splits []SplitRegion
	t.layoutNode(t.root, x, y, w, h, &panes, &splits)
	return panes, splits
}

func (t *PaneTree) layoutNode(id NodeID, x, y, w, h int, panes *[]PaneRect, splits *[]SplitRegion) {
	n, ok := t.nodes[id]
	if !ok || w < 1 || h < 1 {
		return
	}
	if n.leaf() {
		*panes = append(*panes, PaneRect{ID: n.id, Pane: n.pane, X: x, Y: y, W: w, H: h})
		return
	}
	*splits = append(*splits, SplitRegion{ID: n.id, Orient: n.orient, X: x, Y: y, W: w, H: h})
	if n.orient == Vertical {
		fw, sw := splitSizes(w, n.ratio)
		t.layoutNode(n.first, x, y, fw, h, panes, splits)
		t.layoutNode(n.second, x+fw, y, sw, h, panes, splits)
		return
	}
	fh, sh := splitSizes(h, n.ratio)
	t.layoutNode(n.first, x, y, w, fh, panes, splits)
	t.layoutNode(n.second, x, y+fh, w, sh, panes, splits)
}
