package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ── View ───────────────────────────────────────────────────────────

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.tabs.Count() == 0 {
		return ""
	}

	switch m.mode {
	case ModeKeys:
		return m.renderKeybindings()
	case ModeRename:
		return m.renderRenamePrompt()
	}

	bar := m.renderTabBar()
	panes := m.renderPanes()
	status := m.renderStatusBar()

	if m.cfg.TabBarPosition == TabBarBottom {
		return lipgloss.JoinVertical(lipgloss.Left, panes, bar, status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, panes, status)
}

// ── Tab Bar ────────────────────────────────────────────────────────

func (m Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().
		Background(m.theme.TabActiveBG).
		Foreground(m.theme.TabActiveFG).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Background(m.theme.TabInactiveBG).
		Foreground(m.theme.TabInactiveFG).
		Padding(0, 1)

	var cells []string
	for i, tab := range m.tabs.Tabs() {
		label := fmt.Sprintf("%d:%s", i+1, tab.title)
		if i == m.tabs.ActiveIndex() {
			cells = append(cells, activeStyle.Render(label))
		} else {
			cells = append(cells, inactiveStyle.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	return lipgloss.NewStyle().
		Width(m.width).
		Background(m.theme.Background).
		Render(row)
}

// ── Panes ──────────────────────────────────────────────────────────

func (m Model) renderPanes() string {
	tab := m.tabs.Active()
	if tab == nil {
		return ""
	}
	_, h := m.contentArea()
	return m.renderNode(tab.tree, tab.tree.root, m.width, h)
}

func (m Model) renderNode(t *PaneTree, id NodeID, w, h int) string {
	n, ok := t.nodes[id]
	if !ok || w < 1 || h < 1 {
		return ""
	}
	if n.leaf() {
		return m.renderLeaf(t, n, w, h)
	}
	if n.orient == Vertical {
		fw, sw := splitSizes(w, n.ratio)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderNode(t, n.first, fw, h),
			m.renderNode(t, n.second, sw, h))
	}
	fh, sh := splitSizes(h, n.ratio)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderNode(t, n.first, w, fh),
		m.renderNode(t, n.second, w, sh))
}

func (m Model) renderLeaf(t *PaneTree, n *paneNode, w, h int) string {
	// The focused pane borrows the cursor color as its accent.
	borderColor := m.theme.TabInactiveFG
	if n.id == t.focused {
		borderColor = m.theme.Cursor
	}
	screen := strings.ReplaceAll(n.pane.Screen(), "\r\n", "\n")
	screen = m.theme.ApplySGR(screen)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(m.theme.Background).
		Foreground(m.theme.Foreground).
		Width(max(w-2, 1)).
		Height(max(h-2, 1)).
		MaxWidth(w).
		MaxHeight(h).
		Render(screen)
}

// ── Status Bar ─────────────────────────────────────────────────────

func (m Model) renderStatusBar() string {
	left := m.status
	if left == "" {
		left = fmt.Sprintf("%s for keybindings", m.cfg.Keybindings.ChordFor(ActionShowKeybindings))
	}
	right := fmt.Sprintf("%d tab(s)", m.tabs.Count())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + left + strings.Repeat(" ", gap) + right + " "
	return lipgloss.NewStyle().
		Width(m.width).
		Background(m.theme.TabInactiveBG).
		Foreground(m.theme.Foreground).
		Render(line)
}

// ── Overlays ───────────────────────────────────────────────────────

func (m Model) renderKeybindings() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.TabActiveBG)
	chordStyle := lipgloss.NewStyle().Foreground(m.theme.Foreground).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(m.theme.TabInactiveFG)

	lines := []string{titleStyle.Render("Keybindings"), ""}
	for _, action := range allActions() {
		chord := m.cfg.Keybindings.ChordFor(action)
		lines = append(lines, fmt.Sprintf("%s %s",
			chordStyle.Render(fmt.Sprintf("%-18s", chord.String())),
			nameStyle.Render(action.String())))
	}
	lines = append(lines, "",
		nameStyle.Render(fmt.Sprintf("%s %d · %s · %d scrollback lines",
			m.cfg.Font, m.cfg.FontSize, m.cfg.Shell, m.cfg.ScrollbackLines)),
		nameStyle.Render("press any key to close"))

	box := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(m.theme.TabActiveBG).
		Background(m.theme.Background).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderRenamePrompt() string {
	label := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Foreground).
		Render("Rename tab")
	hint := lipgloss.NewStyle().Foreground(m.theme.TabInactiveFG).
		Render("enter to confirm, esc to cancel")

	box := lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.TabActiveBG).
		Background(m.theme.Background).
		Render(lipgloss.JoinVertical(lipgloss.Left, label, "", m.renameInput.View(), "", hint))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
