package main

// ── Tabs ───────────────────────────────────────────────────────────

// Tab is one workspace: a title and a pane tree.
type Tab struct {
	title string
	tree  *PaneTree
}

func (t *Tab) Title() string { return t.title }

// TabSet is the ordered collection of open tabs. Exactly one tab is
// active while the set is non-empty.
type TabSet struct {
	tabs   []*Tab
	active int
}

func NewTabSet() *TabSet {
	return &TabSet{active: -1}
}

func (ts *TabSet) Count() int { return len(ts.tabs) }

func (ts *TabSet) Tabs() []*Tab { return ts.tabs }

// ActiveIndex returns the active slot, -1 when the set is empty.
func (ts *TabSet) ActiveIndex() int { return ts.active }

// Active returns the active tab, nil when the set is empty.
func (ts *TabSet) Active() *Tab {
	if ts.active < 0 || ts.active >= len(ts.tabs) {
		return nil
	}
	return ts.tabs[ts.active]
}

// Tab returns the tab at a slot, nil when out of range.
func (ts *TabSet) Tab(i int) *Tab {
	if i < 0 || i >= len(ts.tabs) {
		return nil
	}
	return ts.tabs[i]
}

// Add appends a tab and makes it active.
func (ts *TabSet) Add(t *Tab) {
	ts.tabs = append(ts.tabs, t)
	ts.active = len(ts.tabs) - 1
}

// Activate switches to the tab at slot i. Out-of-range slots are
// ignored so number-key chords past the last tab do nothing.
func (ts *TabSet) Activate(i int) bool {
	if i < 0 || i >= len(ts.tabs) {
		return false
	}
	ts.active = i
	return true
}

// Remove deletes the tab at slot i. When the active tab goes away its
// left neighbor takes over, or the right one if it was first.
func (ts *TabSet) Remove(i int) {
	if i < 0 || i >= len(ts.tabs) {
		return
	}
	ts.tabs = append(ts.tabs[:i], ts.tabs[i+1:]...)
	switch {
	case len(ts.tabs) == 0:
		ts.active = -1
	case ts.active > i:
		ts.active--
	case ts.active == i:
		if i > 0 {
			ts.active = i - 1
		} else {
			ts.active = 0
		}
	}
}

// Rename sets the title of the tab at slot i.
func (ts *TabSet) Rename(i int, title string) {
	if i < 0 || i >= len(ts.tabs) {
		return
	}
	ts.tabs[i].title = title
}
