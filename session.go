package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// ── Input Modes ────────────────────────────────────────────────────

type InputMode int

const (
	ModeTerm   InputMode = iota // keys go to the focused shell
	ModeRename                  // typing a tab title
	ModeKeys                    // keybinding overlay is up
)

// ── Model ──────────────────────────────────────────────────────────

// Model is the whole session: config and theme snapshots, the tab set,
// and transient UI state. All mutation happens on the update loop;
// PTY readers re-enter through messages.
type Model struct {
	cfg           *ConfigSnapshot
	theme         *ThemeSnapshot
	cfgPath       string
	themeOverride string
	logger        *zap.Logger

	tabs    *TabSet
	spawn   paneFactory
	paneSeq int
	tabSeq  int

	width  int
	height int
	ready  bool

	mode        InputMode
	renameInput textinput.Model
	status      string

	// Active-tab layout cache for mouse hit testing.
	paneRects  []PaneRect
	splitRects []SplitRegion
	dragSplit  NodeID
}

func initialModel(cfg *ConfigSnapshot, theme *ThemeSnapshot, cfgPath, themeOverride string, logger *zap.Logger) Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 30
	return Model{
		cfg:           cfg,
		theme:         theme,
		cfgPath:       cfgPath,
		themeOverride: themeOverride,
		logger:        logger,
		tabs:          NewTabSet(),
		spawn:         newPane,
		renameInput:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) activeTab() *Tab {
	return m.tabs.Active()
}

func (m Model) activePane() *Pane {
	if tab := m.tabs.Active(); tab != nil {
		return tab.tree.FocusedPane()
	}
	return nil
}

// findPane locates a pane by ID across all tabs.
func (m Model) findPane(id int) (int, NodeID, *Pane) {
	for i, tab := range m.tabs.Tabs() {
		if node := tab.tree.FindPane(id); node != noNode {
			return i, node, tab.tree.Pane(node)
		}
	}
	return -1, noNode, nil
}

// ── Layout ─────────────────────────────────────────────────────────

func (m Model) contentArea() (y, h int) {
	y = 1
	if m.cfg.TabBarPosition == TabBarBottom {
		y = 0
	}
	h = m.height - 2 // tab bar + status bar
	if h < 1 {
		h = 1
	}
	return y, h
}

// layout recomputes pane rectangles for every tab, resizes the
// surfaces to match, and refreshes the hit-test cache for the active
// tab.
func (m Model) layout() Model {
	m.paneRects, m.splitRects = nil, nil
	if !m.ready || m.tabs.Count() == 0 {
		return m
	}
	y, h := m.contentArea()
	for i, tab := range m.tabs.Tabs() {
		panes, splits := tab.tree.Layout(0, y, m.width, h)
		for _, r := range panes {
			r.Pane.Resize(max(r.W-2, 1), max(r.H-2, 1))
		}
		if i == m.tabs.ActiveIndex() {
			m.paneRects, m.splitRects = panes, splits
		}
	}
	return m
}

// ── Update ─────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		first := !m.ready
		m.ready = true
		if first && m.tabs.Count() == 0 {
			return m.openTab()
		}
		return m.layout(), nil

	case PaneOutputMsg:
		if _, _, p := m.findPane(msg.ID); p != nil {
			return m, readPanePTY(p)
		}
		return m, nil

	case PaneExitedMsg:
		return m.handlePaneExited(msg)

	case forceResizeMsg:
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeRename:
			return m.handleRenameMode(msg)
		case ModeKeys:
			m.mode = ModeTerm
			return m, nil
		}
		return m.handleTermMode(msg)
	}
	return m, nil
}

func (m Model) handleTermMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	if chord, ok := chordFromKey(msg); ok {
		if action, bound := m.cfg.Keybindings.ResolveKey(chord); bound {
			return m.dispatch(action)
		}
	}
	if p := m.activePane(); p != nil {
		p.WriteInput(keyToBytes(msg))
	}
	return m, nil
}

func (m Model) handleRenameMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if title := strings.TrimSpace(m.renameInput.Value()); title != "" {
			m.tabs.Rename(m.tabs.ActiveIndex(), title)
		}
		m.mode = ModeTerm
		return m, nil
	case tea.KeyEsc:
		m.mode = ModeTerm
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// ── Dispatch ───────────────────────────────────────────────────────

// dispatch runs a resolved action. The switch covers the full action
// set; tab_1..tab_9 funnel through TabIndex.
func (m Model) dispatch(action Action) (tea.Model, tea.Cmd) {
	if slot, ok := action.TabIndex(); ok {
		m.tabs.Activate(slot)
		return m.layout(), nil
	}

	switch action {
	case ActionNewTab:
		return m.openTab()

	case ActionCloseTab:
		return m.closeTabAt(m.tabs.ActiveIndex())

	case ActionRenameTab:
		if tab := m.activeTab(); tab != nil {
			m.mode = ModeRename
			m.renameInput.SetValue(tab.title)
			m.renameInput.CursorEnd()
			return m, m.renameInput.Focus()
		}
		return m, nil

	case ActionClosePanel:
		if tab := m.activeTab(); tab != nil {
			return m.closeLeafAt(m.tabs.ActiveIndex(), tab.tree.FocusedLeaf())
		}
		return m, nil

	case ActionSplitVertical:
		return m.splitFocused(Vertical)

	case ActionSplitHorizontal:
		return m.splitFocused(Horizontal)

	case ActionCopy:
		return m.copyScreen()

	case ActionPaste:
		return m.pasteToShell()

	case ActionReloadConfig:
		return m.reloadConfig()

	case ActionShowKeybindings:
		m.mode = ModeKeys
		return m, nil

	case ActionFocusLeft:
		return m.moveFocus(DirLeft)
	case ActionFocusRight:
		return m.moveFocus(DirRight)
	case ActionFocusUp:
		return m.moveFocus(DirUp)
	case ActionFocusDown:
		return m.moveFocus(DirDown)
	}
	return m, nil
}

func (m Model) moveFocus(d Direction) (tea.Model, tea.Cmd) {
	if tab := m.activeTab(); tab != nil {
		tab.tree.MoveFocus(d) // at the layout edge this is a no-op
	}
	return m, nil
}

func (m Model) copyScreen() (tea.Model, tea.Cmd) {
	p := m.activePane()
	if p == nil {
		return m, nil
	}
	text := ansi.Strip(p.Screen())
	if err := clipboard.WriteAll(text); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "screen copied"
	return m, nil
}

func (m Model) pasteToShell() (tea.Model, tea.Cmd) {
	p := m.activePane()
	if p == nil {
		return m, nil
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		m.status = "paste failed: " + err.Error()
		return m, nil
	}
	p.WriteInput([]byte(text))
	return m, nil
}

// ── Tabs & Panes ───────────────────────────────────────────────────

// spawnSized creates a pane via the session's factory.
func (m *Model) spawnSized(cols, rows int) (*Pane, error) {
	m.paneSeq++
	return m.spawn(m.paneSeq, m.cfg, cols, rows)
}

func (m Model) openTab() (tea.Model, tea.Cmd) {
	_, h := m.contentArea()
	p, err := m.spawnSized(max(m.width-2, 1), max(h-2, 1))
	if err != nil {
		m.logger.Error("pane spawn failed", zap.Error(err))
		if m.tabs.Count() == 0 {
			// Nothing to show without a first pane.
			return m, tea.Quit
		}
		m.status = err.Error()
		return m, nil
	}
	m.tabSeq++
	m.tabs.Add(&Tab{
		title: fmt.Sprintf("%s %d", m.cfg.TabTitle, m.tabSeq),
		tree:  NewPaneTree(p),
	})
	m.logger.Info("tab opened", zap.Int("pane", p.id), zap.Int("tabs", m.tabs.Count()))
	return m.layout(), tea.Batch(readPanePTY(p), delayedResize(p))
}

func (m Model) splitFocused(o Orientation) (tea.Model, tea.Cmd) {
	tab := m.activeTab()
	if tab == nil {
		return m, nil
	}
	node := tab.tree.FocusedLeaf()

	// Size the new surface from the focused pane's half; layout()
	// corrects it right after.
	cols, rows := 80, 24
	for _, r := range m.paneRects {
		if r.ID == node {
			cols, rows = max(r.W-2, 1), max(r.H-2, 1)
			if o == Vertical {
				cols = max(cols/2, 1)
			} else {
				rows = max(rows/2, 1)
			}
		}
	}

	p, err := m.spawnSized(cols, rows)
	if err != nil {
		// Spawn failed, so the tree was never touched.
		m.status = err.Error()
		m.logger.Error("pane spawn failed", zap.Error(err))
		return m, nil
	}
	tab.tree.Split(node, o, p)
	m.logger.Info("pane split",
		zap.Int("pane", p.id),
		zap.String("orientation", o.String()))
	return m.layout(), tea.Batch(readPanePTY(p), delayedResize(p))
}

// closeLeafAt tears down one pane and collapses its leaf. This is the
// single close path: the close_panel binding and a shell exiting on
// its own both land here, so the cascade (pane, then tab, then the
// whole session) behaves identically for both.
func (m Model) closeLeafAt(tabIdx int, node NodeID) (tea.Model, tea.Cmd) {
	tab := m.tabs.Tab(tabIdx)
	if tab == nil {
		return m, nil
	}
	p := tab.tree.Pane(node)
	if p == nil {
		return m, nil
	}
	p.terminate()
	p.release()
	res := tab.tree.Close(node)
	if res.Empty {
		return m.closeTabAt(tabIdx)
	}
	return m.layout(), nil
}

// closeTabAt tears down every pane in a tab and removes it. Removing
// the last tab ends the session.
func (m Model) closeTabAt(i int) (tea.Model, tea.Cmd) {
	tab := m.tabs.Tab(i)
	if tab == nil {
		return m, nil
	}
	for _, p := range tab.tree.Panes() {
		p.terminate()
		p.release()
	}
	m.tabs.Remove(i)
	m.logger.Info("tab closed", zap.Int("tabs", m.tabs.Count()))
	if m.tabs.Count() == 0 {
		return m, tea.Quit
	}
	return m.layout(), nil
}

func (m Model) handlePaneExited(msg PaneExitedMsg) (tea.Model, tea.Cmd) {
	tabIdx, node, p := m.findPane(msg.ID)
	if p == nil {
		return m, nil
	}
	p.exited = true
	m.logger.Info("shell exited", zap.Int("pane", msg.ID))
	return m.closeLeafAt(tabIdx, node)
}

// ── Reload ─────────────────────────────────────────────────────────

// reloadConfig re-reads config and theme from disk. On any error both
// current snapshots stay in effect untouched. On success the snapshots
// swap wholesale and live panes pick up what they can; shells are
// never restarted.
func (m Model) reloadConfig() (tea.Model, tea.Cmd) {
	cfg, theme, err := LoadConfig(m.cfgPath, m.themeOverride)
	if err != nil {
		m.status = "reload failed: " + err.Error()
		m.logger.Warn("config reload failed", zap.Error(err))
		return m, nil
	}
	m.cfg = cfg
	m.theme = theme
	for _, tab := range m.tabs.Tabs() {
		for _, p := range tab.tree.Panes() {
			p.applyConfig(cfg)
		}
	}
	m.status = "configuration reloaded"
	m.logger.Info("config reloaded", zap.String("path", m.cfgPath))
	return m.layout(), nil
}

// ── Mouse ──────────────────────────────────────────────────────────

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if split, ok := m.dividerAt(msg.X, msg.Y); ok {
			m.dragSplit = split
			return m, nil
		}
		if tab := m.activeTab(); tab != nil {
			for _, r := range m.paneRects {
				if msg.X >= r.X && msg.X < r.X+r.W && msg.Y >= r.Y && msg.Y < r.Y+r.H {
					tab.tree.SetFocus(r.ID)
					break
				}
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.dragSplit == noNode {
			return m, nil
		}
		return m.dragDivider(msg.X, msg.Y), nil

	case tea.MouseActionRelease:
		m.dragSplit = noNode
		return m, nil
	}
	return m, nil
}

// dividerAt finds the innermost split whose divider line sits at the
// given cell, within one cell of tolerance.
func (m Model) dividerAt(x, y int) (NodeID, bool) {
	for i := len(m.splitRects) - 1; i >= 0; i-- {
		r := m.splitRects[i]
		if x < r.X || x >= r.X+r.W || y < r.Y || y >= r.Y+r.H {
			continue
		}
		tab := m.activeTab()
		if tab == nil {
			return noNode, false
		}
		ratio := tab.tree.Ratio(r.ID)
		if r.Orient == Vertical {
			div, _ := splitSizes(r.W, ratio)
			if abs(x-(r.X+div)) <= 1 {
				return r.ID, true
			}
		} else {
			div, _ := splitSizes(r.H, ratio)
			if abs(y-(r.Y+div)) <= 1 {
				return r.ID, true
			}
		}
	}
	return noNode, false
}

func (m Model) dragDivider(x, y int) Model {
	tab := m.activeTab()
	if tab == nil {
		return m
	}
	for _, r := range m.splitRects {
		if r.ID != m.dragSplit {
			continue
		}
		var ratio float64
		if r.Orient == Vertical && r.W > 0 {
			ratio = float64(x-r.X) / float64(r.W)
		} else if r.Orient == Horizontal && r.H > 0 {
			ratio = float64(y-r.Y) / float64(r.H)
		} else {
			return m
		}
		tab.tree.SetRatio(r.ID, ratio)
		return m.layout()
	}
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
