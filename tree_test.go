package main

import "testing"

func testPane(id int) *Pane {
	return &Pane{id: id}
}

// checkTree verifies structural invariants: every node is reachable
// from the root exactly once, parent links match child slots, leaves
// hold panes, splits hold clamped ratios, and focus sits on a leaf.
func checkTree(t *testing.T, tr *PaneTree) {
	t.Helper()
	if tr.root == noNode {
		if len(tr.nodes) != 0 {
			t.Fatalf("empty tree still holds %d nodes", len(tr.nodes))
		}
		if tr.focused != noNode {
			t.Fatalf("empty tree has focus %d", tr.focused)
		}
		return
	}
	seen := map[NodeID]bool{}
	var walk func(id, parent NodeID)
	walk = func(id, parent NodeID) {
		n, ok := tr.nodes[id]
		if !ok {
			t.Fatalf("node %d referenced but not in arena", id)
		}
		if seen[id] {
			t.Fatalf("node %d reachable twice", id)
		}
		seen[id] = true
		if n.parent != parent {
			t.Fatalf("node %d parent = %d, want %d", id, n.parent, parent)
		}
		if n.leaf() {
			return
		}
		if n.ratio < minSplitRatio || n.ratio > maxSplitRatio {
			t.Fatalf("split %d ratio %v out of range", id, n.ratio)
		}
		walk(n.first, id)
		walk(n.second, id)
	}
	walk(tr.root, noNode)
	if len(seen) != len(tr.nodes) {
		t.Fatalf("arena holds %d nodes, only %d reachable", len(tr.nodes), len(seen))
	}
	if n, ok := tr.nodes[tr.focused]; !ok || !n.leaf() {
		t.Fatalf("focus %d is not a live leaf", tr.focused)
	}
}

func TestNewTreeSingleLeaf(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	checkTree(t, tr)
	if got := len(tr.Leaves()); got != 1 {
		t.Fatalf("got %d leaves, want 1", got)
	}
	if tr.FocusedPane().id != 1 {
		t.Fatalf("focused pane = %d, want 1", tr.FocusedPane().id)
	}
}

func TestCloseLastLeafEmptiesTree(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	res := tr.Close(tr.FocusedLeaf())
	if !res.Empty {
		t.Fatal("closing the only leaf should empty the tree")
	}
	checkTree(t, tr)
}

func TestSplitFocusesNewLeaf(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	orig := tr.FocusedLeaf()
	leaf := tr.Split(orig, Vertical, testPane(2))
	checkTree(t, tr)
	if leaf == noNode {
		t.Fatal("split returned noNode")
	}
	if tr.FocusedLeaf() != leaf {
		t.Fatalf("focus = %d, want new leaf %d", tr.FocusedLeaf(), leaf)
	}
	leaves := tr.Leaves()
	if len(leaves) != 2 || leaves[0] != orig || leaves[1] != leaf {
		t.Fatalf("leaves = %v, want [%d %d]", leaves, orig, leaf)
	}
}

func TestSplitThenCloseRestoresLeafIdentity(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	orig := tr.FocusedLeaf()
	leaf := tr.Split(orig, Horizontal, testPane(2))

	res := tr.Close(leaf)
	checkTree(t, tr)
	if res.Empty {
		t.Fatal("sibling should survive")
	}
	if res.Survivor != orig {
		t.Fatalf("survivor = %d, want original leaf %d", res.Survivor, orig)
	}
	if tr.root != orig {
		t.Fatalf("root = %d, want %d: original leaf should be sole root again", tr.root, orig)
	}
	if tr.nodes[orig].parent != noNode {
		t.Fatalf("restored leaf still has parent %d", tr.nodes[orig].parent)
	}
}

func TestCloseCollapsesIntoGrandparent(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))
	c := tr.Split(b, Horizontal, testPane(3))

	res := tr.Close(c)
	checkTree(t, tr)
	if res.Survivor != b {
		t.Fatalf("survivor = %d, want sibling %d", res.Survivor, b)
	}
	leaves := tr.Leaves()
	if len(leaves) != 2 || leaves[0] != a || leaves[1] != b {
		t.Fatalf("leaves = %v, want [%d %d]", leaves, a, b)
	}
	root := tr.nodes[tr.root]
	if root.leaf() || root.orient != Vertical {
		t.Fatal("root should be the remaining vertical split")
	}
}

func TestCloseFocusesSiblingResidentLeaf(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))
	tr.Split(b, Horizontal, testPane(3)) // right side is now a b/c stack
	tr.SetFocus(b)                       // b most recently used over c
	tr.SetFocus(a)

	res := tr.Close(a)
	checkTree(t, tr)
	if res.Survivor != b {
		t.Fatalf("survivor = %d, want most recently focused %d", res.Survivor, b)
	}
	if tr.FocusedLeaf() != b {
		t.Fatalf("focus = %d, want %d", tr.FocusedLeaf(), b)
	}
}

func TestCloseUnfocusedLeafKeepsFocus(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))
	c := tr.Split(b, Horizontal, testPane(3))
	tr.SetFocus(a)

	res := tr.Close(c)
	checkTree(t, tr)
	if res.Empty {
		t.Fatal("two leaves should survive")
	}
	if tr.FocusedLeaf() != a {
		t.Fatalf("focus = %d, want untouched %d after background close", tr.FocusedLeaf(), a)
	}
}

func TestMoveFocusAcrossVerticalSplit(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))

	if got, ok := tr.MoveFocus(DirLeft); !ok || got != a {
		t.Fatalf("focus left = %d,%v, want %d,true", got, ok, a)
	}
	if _, ok := tr.MoveFocus(DirLeft); ok {
		t.Fatal("focus left at the edge should report no target")
	}
	if got, ok := tr.MoveFocus(DirRight); !ok || got != b {
		t.Fatalf("focus right = %d,%v, want %d,true", got, ok, b)
	}
}

func TestMoveFocusWrongAxisNoTarget(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	tr.Split(tr.FocusedLeaf(), Vertical, testPane(2))
	if _, ok := tr.MoveFocus(DirUp); ok {
		t.Fatal("no horizontal split, focus up should report no target")
	}
	if _, ok := tr.MoveFocus(DirDown); ok {
		t.Fatal("no horizontal split, focus down should report no target")
	}
}

func TestMoveFocusPrefersResidentLeaf(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))
	c := tr.Split(b, Horizontal, testPane(3))

	tr.SetFocus(b) // b was worked in after c
	tr.MoveFocus(DirLeft)
	if got, ok := tr.MoveFocus(DirRight); !ok || got != b {
		t.Fatalf("focus right = %d,%v, want resident leaf %d, not %d", got, ok, b, c)
	}
}

func TestRatioClamped(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	tr.Split(tr.FocusedLeaf(), Vertical, testPane(2))
	split := tr.root

	tr.SetRatio(split, 0.001)
	if got := tr.Ratio(split); got != minSplitRatio {
		t.Fatalf("ratio = %v, want clamp to %v", got, minSplitRatio)
	}
	tr.SetRatio(split, 1.5)
	if got := tr.Ratio(split); got != maxSplitRatio {
		t.Fatalf("ratio = %v, want clamp to %v", got, maxSplitRatio)
	}
	tr.SetRatio(split, 0.3)
	if got := tr.Ratio(split); got != 0.3 {
		t.Fatalf("ratio = %v, want 0.3", got)
	}
}

func TestLayoutTilesArea(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	b := tr.Split(a, Vertical, testPane(2))
	tr.Split(b, Horizontal, testPane(3))

	const w, h = 120, 40
	panes, splits := tr.Layout(0, 0, w, h)
	if len(panes) != 3 {
		t.Fatalf("got %d pane rects, want 3", len(panes))
	}
	if len(splits) != 2 {
		t.Fatalf("got %d split regions, want 2", len(splits))
	}
	area := 0
	for _, r := range panes {
		if r.X < 0 || r.Y < 0 || r.X+r.W > w || r.Y+r.H > h {
			t.Fatalf("rect %+v outside %dx%d", r, w, h)
		}
		area += r.W * r.H
	}
	if area != w*h {
		t.Fatalf("leaf areas sum to %d, want %d", area, w*h)
	}
}

func TestLayoutFollowsRatio(t *testing.T) {
	tr := NewPaneTree(testPane(1))
	a := tr.FocusedLeaf()
	tr.Split(a, Vertical, testPane(2))
	tr.SetRatio(tr.root, 0.25)

	panes, _ := tr.Layout(0, 0, 100, 20)
	if panes[0].W != 25 {
		t.Fatalf("first width = %d, want 25", panes[0].W)
	}
	if panes[1].W != 75 {
		t.Fatalf("second width = %d, want 75", panes[1].W)
	}
}

func TestScriptedOpsStayWellFormed(t *testing.T) {
	tr := NewPaneTree(testPane(0))
	next := 1
	split := func(o Orientation) {
		tr.Split(tr.FocusedLeaf(), o, testPane(next))
		next++
		checkTree(t, tr)
	}
	closeFocused := func() {
		tr.Close(tr.FocusedLeaf())
		checkTree(t, tr)
	}

	split(Vertical)
	split(Horizontal)
	split(Vertical)
	tr.MoveFocus(DirLeft)
	checkTree(t, tr)
	split(Horizontal)
	closeFocused()
	tr.MoveFocus(DirUp)
	checkTree(t, tr)
	closeFocused()
	closeFocused()
	closeFocused()
	if res := tr.Close(tr.FocusedLeaf()); !res.Empty {
		t.Fatal("final close should empty the tree")
	}
	checkTree(t, tr)
}
