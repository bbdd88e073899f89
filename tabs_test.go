package main

import "testing"

func testTab(title string, paneID int) *Tab {
	return &Tab{title: title, tree: NewPaneTree(testPane(paneID))}
}

func TestAddActivatesNewTab(t *testing.T) {
	ts := NewTabSet()
	if ts.Active() != nil || ts.ActiveIndex() != -1 {
		t.Fatal("empty set should have no active tab")
	}
	ts.Add(testTab("one", 1))
	ts.Add(testTab("two", 2))
	if ts.ActiveIndex() != 1 || ts.Active().Title() != "two" {
		t.Fatalf("active = %d %q, want the newest tab", ts.ActiveIndex(), ts.Active().Title())
	}
}

func TestActivateOutOfRangeIgnored(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("one", 1))
	if ts.Activate(5) {
		t.Fatal("activating slot 5 of 1 should fail")
	}
	if ts.ActiveIndex() != 0 {
		t.Fatalf("active = %d, want unchanged 0", ts.ActiveIndex())
	}
}

func TestRemoveActivePrefersLeftNeighbor(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("a", 1))
	ts.Add(testTab("b", 2))
	ts.Add(testTab("c", 3))

	ts.Remove(2)
	if ts.Count() != 2 || ts.Active().Title() != "b" {
		t.Fatalf("active = %q, want left neighbor b", ts.Active().Title())
	}
}

func TestRemoveFirstFallsRight(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("a", 1))
	ts.Add(testTab("b", 2))
	ts.Activate(0)

	ts.Remove(0)
	if ts.Active().Title() != "b" {
		t.Fatalf("active = %q, want right neighbor b", ts.Active().Title())
	}
}

func TestRemoveBeforeActiveKeepsActiveTab(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("a", 1))
	ts.Add(testTab("b", 2))
	ts.Add(testTab("c", 3))

	ts.Remove(0)
	if ts.Active().Title() != "c" {
		t.Fatalf("active = %q, want c to stay active", ts.Active().Title())
	}
}

func TestRemoveLastEmptiesSet(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("a", 1))
	ts.Remove(0)
	if ts.Count() != 0 || ts.Active() != nil || ts.ActiveIndex() != -1 {
		t.Fatal("set should be empty with no active tab")
	}
}

func TestRename(t *testing.T) {
	ts := NewTabSet()
	ts.Add(testTab("a", 1))
	ts.Rename(0, "build")
	if ts.Active().Title() != "build" {
		t.Fatalf("title = %q, want build", ts.Active().Title())
	}
	ts.Rename(7, "nope") // out of range, ignored
}
