package main

import (
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// ── Chords ─────────────────────────────────────────────────────────

// Chord is a normalized modifier set plus a base key. Two spellings of
// the same combination ("Ctrl+Shift+T", "ctrl + shift + t", "Ctrl+T"
// with an uppercase T) parse to equal Chord values, so Chord works as a
// map key.
type Chord struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Super bool
	Key   string
}

func (c Chord) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Super {
		parts = append(parts, "Super")
	}
	key := c.Key
	if len(key) == 1 {
		key = strings.ToUpper(key)
	} else if key != "" {
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// MalformedChordError reports a chord string that could not be parsed.
// Action is the config-file action name the chord was bound to, when
// known.
type MalformedChordError struct {
	Action string
	Chord  string
	Reason string
}

func (e *MalformedChordError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("malformed chord %q: %s", e.Chord, e.Reason)
	}
	return fmt.Sprintf("malformed chord %q for %s: %s", e.Chord, e.Action, e.Reason)
}

// ConflictError reports two actions bound to the same chord. Conflicts
// are hard errors so a binding never silently shadows another.
type ConflictError struct {
	Chord  Chord
	First  Action
	Second Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("chord %s bound to both %s and %s", e.Chord, e.First, e.Second)
}

var keyAliases = map[string]string{
	"return":   "enter",
	"escape":   "esc",
	"pageup":   "pgup",
	"pagedown": "pgdown",
	"del":      "delete",
}

var namedKeys = map[string]bool{
	"enter": true, "tab": true, "space": true, "esc": true,
	"backspace": true, "delete": true, "insert": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pgup": true, "pgdown": true,
}

// ParseChord parses a config-file chord spec like "Ctrl+Shift+T" or
// "alt+Left". Modifier aliases (control, option, meta, win, cmd) are
// accepted; a single uppercase letter folds into the Shift modifier.
func ParseChord(s string) (Chord, error) {
	var c Chord
	key := ""
	for _, tok := range strings.Split(s, "+") {
		tok = strings.TrimSpace(tok)
		switch strings.ToLower(tok) {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		case "super", "meta", "win", "cmd":
			c.Super = true
		case "":
			return Chord{}, &MalformedChordError{Chord: s, Reason: "empty key token"}
		default:
			if key != "" {
				return Chord{}, &MalformedChordError{Chord: s, Reason: "more than one base key"}
			}
			key = tok
		}
	}
	if key == "" {
		return Chord{}, &MalformedChordError{Chord: s, Reason: "no base key"}
	}
	if len(key) == 1 {
		r := rune(key[0])
		if unicode.IsUpper(r) {
			c.Shift = true
			r = unicode.ToLower(r)
		}
		c.Key = string(r)
		return c, nil
	}
	low := strings.ToLower(key)
	if alias, ok := keyAliases[low]; ok {
		low = alias
	}
	if !namedKeys[low] && !isFunctionKey(low) {
		return Chord{}, &MalformedChordError{Chord: s, Reason: fmt.Sprintf("unknown key %q", key)}
	}
	c.Key = low
	return c, nil
}

func isFunctionKey(s string) bool {
	if len(s) < 2 || s[0] != 'f' {
		return false
	}
	n := 0
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n >= 1 && n <= 20
}

// ── Keymap ─────────────────────────────────────────────────────────

// Keymap is the resolved chord table. It is built once per config
// snapshot and never mutated, so lookups need no locking.
type Keymap struct {
	byChord  map[Chord]Action
	byAction [numActions]Chord
}

func defaultBindings() map[Action]Chord {
	ctrlShift := func(k string) Chord { return Chord{Ctrl: true, Shift: true, Key: k} }
	alt := func(k string) Chord { return Chord{Alt: true, Key: k} }
	// Letter chords must survive the trip through a terminal: Ctrl+Shift
	// is only deliverable where the shifted fold (below) applies, and
	// folding is off-limits for bare-Ctrl bytes the shell itself uses.
	// Everything that cannot ride a foldable Ctrl+Shift chord lives on
	// Alt, alongside the focus and tab chords.
	m := map[Action]Chord{
		ActionNewTab:          ctrlShift("t"),
		ActionCloseTab:        alt("w"),
		ActionRenameTab:       alt("r"),
		ActionClosePanel:      {Ctrl: true, Key: "d"},
		ActionSplitVertical:   ctrlShift("v"),
		ActionSplitHorizontal: ctrlShift("h"),
		ActionCopy:            alt("c"),
		ActionPaste:           alt("v"),
		ActionReloadConfig:    alt("l"),
		ActionShowKeybindings: alt("k"),
		ActionFocusLeft:       alt("left"),
		ActionFocusRight:      alt("right"),
		ActionFocusUp:         alt("up"),
		ActionFocusDown:       alt("down"),
	}
	for i := 0; i < 9; i++ {
		m[ActionTab1+Action(i)] = alt(string(rune('1' + i)))
	}
	return m
}

// BuildKeymap merges user overrides into the default bindings and
// rejects the result if any two actions share a chord. Overrides map
// action names to chord specs, as written in the config file.
func BuildKeymap(overrides map[string]string) (*Keymap, error) {
	bindings := defaultBindings()
	for name, spec := range overrides {
		action, ok := ActionByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown keybinding action %q", name)
		}
		chord, err := ParseChord(spec)
		if err != nil {
			if mce, isMCE := err.(*MalformedChordError); isMCE {
				mce.Action = name
			}
			return nil, err
		}
		bindings[action] = chord
	}

	km := &Keymap{byChord: make(map[Chord]Action, numActions)}
	for _, action := range allActions() {
		chord := bindings[action]
		if prev, taken := km.byChord[chord]; taken {
			return nil, &ConflictError{Chord: chord, First: prev, Second: action}
		}
		km.byChord[chord] = action
		km.byAction[action] = chord
	}
	return km, nil
}

// Resolve maps a chord to its action, if any.
func (km *Keymap) Resolve(c Chord) (Action, bool) {
	a, ok := km.byChord[c]
	return a, ok
}

// Bare-Ctrl bytes the shell layer claims for line editing, history,
// signals, and flow control. These are never folded: capturing
// Ctrl+C or Ctrl+R for a Ctrl+Shift binding would take SIGINT and
// reverse search away from the running shell. An explicit bare-Ctrl
// binding (like the Ctrl+D default) still resolves exactly.
var shellClaimedCtrl = map[string]bool{
	"a": true, "b": true, "c": true, "d": true, "e": true, "f": true,
	"g": true, "j": true, "k": true, "l": true, "m": true, "n": true,
	"p": true, "q": true, "r": true, "s": true, "u": true, "w": true,
	"x": true, "y": true, "z": true,
}

// ResolveKey resolves a chord as delivered by a terminal. Terminals
// cannot report Shift together with Ctrl+letter, so an unmatched Ctrl
// chord is retried with Shift set. The retry skips keys the shell
// claims as bare-Ctrl bytes; those always forward unresolved.
func (km *Keymap) ResolveKey(c Chord) (Action, bool) {
	if a, ok := km.byChord[c]; ok {
		return a, true
	}
	if c.Ctrl && !c.Shift && len(c.Key) == 1 && !shellClaimedCtrl[c.Key] {
		c.Shift = true
		if a, ok := km.byChord[c]; ok {
			return a, true
		}
	}
	return 0, false
}

// ChordFor returns the chord bound to an action. Every action always
// has one: defaults cover the full set and overrides only replace.
func (km *Keymap) ChordFor(a Action) Chord {
	return km.byAction[a]
}

// ── Key Decoding ───────────────────────────────────────────────────

var specialKeyChords = map[tea.KeyType]Chord{
	tea.KeyEnter:          {Key: "enter"},
	tea.KeyTab:            {Key: "tab"},
	tea.KeySpace:          {Key: "space"},
	tea.KeyEsc:            {Key: "esc"},
	tea.KeyBackspace:      {Key: "backspace"},
	tea.KeyDelete:         {Key: "delete"},
	tea.KeyInsert:         {Key: "insert"},
	tea.KeyHome:           {Key: "home"},
	tea.KeyEnd:            {Key: "end"},
	tea.KeyPgUp:           {Key: "pgup"},
	tea.KeyPgDown:         {Key: "pgdown"},
	tea.KeyUp:             {Key: "up"},
	tea.KeyDown:           {Key: "down"},
	tea.KeyLeft:           {Key: "left"},
	tea.KeyRight:          {Key: "right"},
	tea.KeyShiftTab:       {Shift: true, Key: "tab"},
	tea.KeyShiftUp:        {Shift: true, Key: "up"},
	tea.KeyShiftDown:      {Shift: true, Key: "down"},
	tea.KeyShiftLeft:      {Shift: true, Key: "left"},
	tea.KeyShiftRight:     {Shift: true, Key: "right"},
	tea.KeyCtrlUp:         {Ctrl: true, Key: "up"},
	tea.KeyCtrlDown:       {Ctrl: true, Key: "down"},
	tea.KeyCtrlLeft:       {Ctrl: true, Key: "left"},
	tea.KeyCtrlRight:      {Ctrl: true, Key: "right"},
	tea.KeyCtrlShiftUp:    {Ctrl: true, Shift: true, Key: "up"},
	tea.KeyCtrlShiftDown:  {Ctrl: true, Shift: true, Key: "down"},
	tea.KeyCtrlShiftLeft:  {Ctrl: true, Shift: true, Key: "left"},
	tea.KeyCtrlShiftRight: {Ctrl: true, Shift: true, Key: "right"},
	tea.KeyF1:             {Key: "f1"},
	tea.KeyF2:             {Key: "f2"},
	tea.KeyF3:             {Key: "f3"},
	tea.KeyF4:             {Key: "f4"},
	tea.KeyF5:             {Key: "f5"},
	tea.KeyF6:             {Key: "f6"},
	tea.KeyF7:             {Key: "f7"},
	tea.KeyF8:             {Key: "f8"},
	tea.KeyF9:             {Key: "f9"},
	tea.KeyF10:            {Key: "f10"},
	tea.KeyF11:            {Key: "f11"},
	tea.KeyF12:            {Key: "f12"},
}

// chordFromKey turns a bubbletea key message into a Chord for keymap
// lookup. Keys with no chord form (multi-rune paste, exotic specials)
// report false and are forwarded to the shell untouched.
func chordFromKey(msg tea.KeyMsg) (Chord, bool) {
	if c, ok := specialKeyChords[msg.Type]; ok {
		c.Alt = c.Alt || msg.Alt
		return c, true
	}
	switch {
	case msg.Type == tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return Chord{}, false
		}
		r := msg.Runes[0]
		c := Chord{Alt: msg.Alt}
		if unicode.IsUpper(r) {
			c.Shift = true
			r = unicode.ToLower(r)
		}
		c.Key = string(r)
		return c, true
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ:
		return Chord{
			Ctrl: true,
			Alt:  msg.Alt,
			Key:  string(rune('a' + int(msg.Type) - int(tea.KeyCtrlA))),
		}, true
	}
	return Chord{}, false
}

// ── Key Forwarding ─────────────────────────────────────────────────

// VT escape sequences for keys that do not encode as a single byte.
var keySequences = map[tea.KeyType]string{
	tea.KeyUp:             "\x1b[A",
	tea.KeyDown:           "\x1b[B",
	tea.KeyRight:          "\x1b[C",
	tea.KeyLeft:           "\x1b[D",
	tea.KeyShiftTab:       "\x1b[Z",
	tea.KeyShiftUp:        "\x1b[1;2A",
	tea.KeyShiftDown:      "\x1b[1;2B",
	tea.KeyShiftRight:     "\x1b[1;2C",
	tea.KeyShiftLeft:      "\x1b[1;2D",
	tea.KeyCtrlUp:         "\x1b[1;5A",
	tea.KeyCtrlDown:       "\x1b[1;5B",
	tea.KeyCtrlRight:      "\x1b[1;5C",
	tea.KeyCtrlLeft:       "\x1b[1;5D",
	tea.KeyCtrlShiftUp:    "\x1b[1;6A",
	tea.KeyCtrlShiftDown:  "\x1b[1;6B",
	tea.KeyCtrlShiftRight: "\x1b[1;6C",
	tea.KeyCtrlShiftLeft:  "\x1b[1;6D",
	tea.KeyHome:           "\x1b[H",
	tea.KeyEnd:            "\x1b[F",
	tea.KeyInsert:         "\x1b[2~",
	tea.KeyDelete:         "\x1b[3~",
	tea.KeyPgUp:           "\x1b[5~",
	tea.KeyPgDown:         "\x1b[6~",
	tea.KeyShiftHome:      "\x1b[1;2H",
	tea.KeyShiftEnd:       "\x1b[1;2F",
	tea.KeyCtrlHome:       "\x1b[1;5H",
	tea.KeyCtrlEnd:        "\x1b[1;5F",
	tea.KeyCtrlPgUp:       "\x1b[5;5~",
	tea.KeyCtrlPgDown:     "\x1b[6;5~",
	tea.KeyCtrlShiftHome:  "\x1b[1;6H",
	tea.KeyCtrlShiftEnd:   "\x1b[1;6F",
	tea.KeyF1:             "\x1bOP",
	tea.KeyF2:             "\x1bOQ",
	tea.KeyF3:             "\x1bOR",
	tea.KeyF4:             "\x1bOS",
	tea.KeyF5:             "\x1b[15~",
	tea.KeyF6:             "\x1b[17~",
	tea.KeyF7:             "\x1b[18~",
	tea.KeyF8:             "\x1b[19~",
	tea.KeyF9:             "\x1b[20~",
	tea.KeyF10:            "\x1b[21~",
	tea.KeyF11:            "\x1b[23~",
	tea.KeyF12:            "\x1b[24~",
	tea.KeyF13:            "\x1b[25~",
	tea.KeyF14:            "\x1b[26~",
	tea.KeyF15:            "\x1b[28~",
	tea.KeyF16:            "\x1b[29~",
	tea.KeyF17:            "\x1b[31~",
	tea.KeyF18:            "\x1b[32~",
	tea.KeyF19:            "\x1b[33~",
	tea.KeyF20:            "\x1b[34~",
}

// keyToBytes converts an unbound key message to raw bytes for PTY
// forwarding. It must cover all key types bubbletea can parse,
// otherwise keypresses get silently dropped.
func keyToBytes(msg tea.KeyMsg) []byte {
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		b := []byte(string(msg.Runes))
		if len(b) == 0 && msg.Type == tea.KeySpace {
			b = []byte{' '}
		}
		if msg.Alt {
			b = append([]byte{0x1b}, b...)
		}
		return b
	}
	if seq, ok := keySequences[msg.Type]; ok {
		return []byte(seq)
	}
	// Control characters carry their byte value as the key type:
	// Ctrl+A..Z, Enter, Tab, Esc, and Backspace (127) all land here.
	if msg.Type >= 0 && msg.Type < 128 {
		if msg.Alt {
			return []byte{0x1b, byte(msg.Type)}
		}
		return []byte{byte(msg.Type)}
	}
	return nil
}
