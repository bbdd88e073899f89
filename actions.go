package main

import "fmt"

// ── Actions ────────────────────────────────────────────────────────

// Action is the closed set of things a keybinding can trigger. Every
// dispatch site switches over the full set so a new action fails loudly
// until it is handled everywhere.
type Action int

const (
	ActionNewTab Action = iota
	ActionCloseTab
	ActionRenameTab
	ActionClosePanel
	ActionSplitVertical
	ActionSplitHorizontal
	ActionCopy
	ActionPaste
	ActionReloadConfig
	ActionShowKeybindings
	ActionFocusLeft
	ActionFocusRight
	ActionFocusUp
	ActionFocusDown
	ActionTab1
	ActionTab2
	ActionTab3
	ActionTab4
	ActionTab5
	ActionTab6
	ActionTab7
	ActionTab8
	ActionTab9

	numActions
)

var actionNames = [numActions]string{
	ActionNewTab:          "new_tab",
	ActionCloseTab:        "close_tab",
	ActionRenameTab:       "rename_tab",
	ActionClosePanel:      "close_panel",
	ActionSplitVertical:   "split_vertical",
	ActionSplitHorizontal: "split_horizontal",
	ActionCopy:            "copy",
	ActionPaste:           "paste",
	ActionReloadConfig:    "reload_config",
	ActionShowKeybindings: "show_keybindings",
	ActionFocusLeft:       "focus_left",
	ActionFocusRight:      "focus_right",
	ActionFocusUp:         "focus_up",
	ActionFocusDown:       "focus_down",
	ActionTab1:            "tab_1",
	ActionTab2:            "tab_2",
	ActionTab3:            "tab_3",
	ActionTab4:            "tab_4",
	ActionTab5:            "tab_5",
	ActionTab6:            "tab_6",
	ActionTab7:            "tab_7",
	ActionTab8:            "tab_8",
	ActionTab9:            "tab_9",
}

// String returns the config-file name of the action.
func (a Action) String() string {
	if a < 0 || a >= numActions {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// TabIndex returns the zero-based tab slot for tab_1..tab_9 actions.
func (a Action) TabIndex() (int, bool) {
	if a >= ActionTab1 && a <= ActionTab9 {
		return int(a - ActionTab1), true
	}
	return 0, false
}

// ActionByName looks an action up by its config-file name.
func ActionByName(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return Action(a), true
		}
	}
	return 0, false
}

func allActions() []Action {
	out := make([]Action, 0, numActions)
	for a := Action(0); a < numActions; a++ {
		out = append(out, a)
	}
	return out
}
