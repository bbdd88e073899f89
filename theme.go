package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	toml "github.com/pelletier/go-toml/v2"
)

// ── Theme ──────────────────────────────────────────────────────────

// ThemeParseError reports a theme file that could not be loaded. A
// failed load never produces a partial theme; the previous snapshot
// stays in effect.
type ThemeParseError struct {
	Path   string
	Reason string
}

func (e *ThemeParseError) Error() string {
	return fmt.Sprintf("theme %s: %s", e.Path, e.Reason)
}

// ThemeSnapshot is an immutable color scheme. Reloads build a fresh
// snapshot and swap the pointer; nothing ever mutates one in place.
type ThemeSnapshot struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Cursor     lipgloss.Color
	Palette    [16]lipgloss.Color

	TabActiveBG   lipgloss.Color
	TabActiveFG   lipgloss.Color
	TabInactiveBG lipgloss.Color
	TabInactiveFG lipgloss.Color
}

type rawTheme struct {
	Background string   `toml:"background"`
	Foreground string   `toml:"foreground"`
	Cursor     string   `toml:"cursor"`
	Palette    []string `toml:"palette"`

	TabActiveBG   string `toml:"tab_active_bg"`
	TabActiveFG   string `toml:"tab_active_fg"`
	TabInactiveBG string `toml:"tab_inactive_bg"`
	TabInactiveFG string `toml:"tab_inactive_fg"`
}

// DefaultTheme returns the built-in scheme used when no theme file is
// configured.
func DefaultTheme() *ThemeSnapshot {
	t := &ThemeSnapshot{
		Background:    lipgloss.Color("#1a1b26"),
		Foreground:    lipgloss.Color("#c0caf5"),
		Cursor:        lipgloss.Color("#c0caf5"),
		TabActiveBG:   lipgloss.Color("#7aa2f7"),
		TabActiveFG:   lipgloss.Color("#1a1b26"),
		TabInactiveBG: lipgloss.Color("#292e42"),
		TabInactiveFG: lipgloss.Color("#565f89"),
	}
	for i, hex := range []string{
		"#15161e", "#f7768e", "#9ece6a", "#e0af68",
		"#7aa2f7", "#bb9af7", "#7dcfff", "#a9b1d6",
		"#414868", "#f7768e", "#9ece6a", "#e0af68",
		"#7aa2f7", "#bb9af7", "#7dcfff", "#c0caf5",
	} {
		t.Palette[i] = lipgloss.Color(hex)
	}
	return t
}

// parseHexColor validates a hex color spec. A missing leading '#' is
// tolerated.
func parseHexColor(s string) (lipgloss.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q", s)
	}
	return lipgloss.Color(c.Hex()), nil
}

// LoadTheme parses a theme file. background, foreground, cursor and a
// 16-entry palette are mandatory; any missing key or malformed color
// rejects the whole file. The tab_* keys are optional accents.
func LoadTheme(path string) (*ThemeSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ThemeParseError{Path: path, Reason: err.Error()}
	}
	var raw rawTheme
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ThemeParseError{Path: path, Reason: err.Error()}
	}

	if raw.Palette != nil && len(raw.Palette) != 16 {
		return nil, &ThemeParseError{
			Path:   path,
			Reason: fmt.Sprintf("palette must have exactly 16 entries, got %d", len(raw.Palette)),
		}
	}
	for _, req := range []struct {
		name string
		ok   bool
	}{
		{"background", raw.Background != ""},
		{"foreground", raw.Foreground != ""},
		{"cursor", raw.Cursor != ""},
		{"palette", raw.Palette != nil},
	} {
		if !req.ok {
			return nil, &ThemeParseError{Path: path, Reason: "missing required key " + req.name}
		}
	}

	t := DefaultTheme()
	for _, field := range []struct {
		name string
		spec string
		dst  *lipgloss.Color
	}{
		{"background", raw.Background, &t.Background},
		{"foreground", raw.Foreground, &t.Foreground},
		{"cursor", raw.Cursor, &t.Cursor},
		{"tab_active_bg", raw.TabActiveBG, &t.TabActiveBG},
		{"tab_active_fg", raw.TabActiveFG, &t.TabActiveFG},
		{"tab_inactive_bg", raw.TabInactiveBG, &t.TabInactiveBG},
		{"tab_inactive_fg", raw.TabInactiveFG, &t.TabInactiveFG},
	} {
		if field.spec == "" {
			continue
		}
		c, err := parseHexColor(field.spec)
		if err != nil {
			return nil, &ThemeParseError{Path: path, Reason: fmt.Sprintf("%s: %v", field.name, err)}
		}
		*field.dst = c
	}

	for i, spec := range raw.Palette {
		c, err := parseHexColor(spec)
		if err != nil {
			return nil, &ThemeParseError{Path: path, Reason: fmt.Sprintf("palette[%d]: %v", i, err)}
		}
		t.Palette[i] = c
	}
	return t, nil
}

// ── SGR remapping ──────────────────────────────────────────────────

// ApplySGR rewrites the ANSI color codes in s so the 16 base slots
// and the default foreground and background resolve to this theme's
// colors instead of whatever the outer terminal maps them to. Shell
// output rendered through the emulator passes through here once per
// frame.
func (t *ThemeSnapshot) ApplySGR(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], "\x1b[")
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+j])
		i += j
		end := i + 2
		for end < len(s) && (s[end] == ';' || (s[end] >= '0' && s[end] <= '9')) {
			end++
		}
		if end >= len(s) || s[end] != 'm' {
			b.WriteString(s[i : i+2])
			i += 2
			continue
		}
		b.WriteString("\x1b[")
		b.WriteString(t.remapSGR(s[i+2 : end]))
		b.WriteByte('m')
		i = end + 1
	}
	return b.String()
}

func (t *ThemeSnapshot) remapSGR(params string) string {
	if params == "" {
		return params
	}
	parts := strings.Split(params, ";")
	out := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			out = append(out, parts[i])
			continue
		}
		switch {
		case n >= 30 && n <= 37:
			out = append(out, sgrColor("38", t.Palette[n-30])...)
		case n >= 90 && n <= 97:
			out = append(out, sgrColor("38", t.Palette[n-90+8])...)
		case n >= 40 && n <= 47:
			out = append(out, sgrColor("48", t.Palette[n-40])...)
		case n >= 100 && n <= 107:
			out = append(out, sgrColor("48", t.Palette[n-100+8])...)
		case n == 39:
			out = append(out, sgrColor("38", t.Foreground)...)
		case n == 49:
			out = append(out, sgrColor("48", t.Background)...)
		case n == 38 || n == 48:
			intro := parts[i]
			if i+2 < len(parts) && parts[i+1] == "5" {
				if idx, err := strconv.Atoi(parts[i+2]); err == nil && idx >= 0 && idx < 16 {
					out = append(out, sgrColor(intro, t.Palette[idx])...)
					i += 2
					continue
				}
			}
			// 256-color beyond the base slots and truecolor stay as
			// written; copy the whole extended sequence through.
			out = append(out, parts[i:]...)
			i = len(parts)
		default:
			out = append(out, parts[i])
		}
	}
	return strings.Join(out, ";")
}

// sgrColor renders a truecolor SGR fragment, intro "38" for
// foreground or "48" for background.
func sgrColor(intro string, c lipgloss.Color) []string {
	r, g, b := hexRGB(c)
	return []string{intro, "2", strconv.Itoa(r), strconv.Itoa(g), strconv.Itoa(b)}
}

func hexRGB(c lipgloss.Color) (r, g, b int) {
	s := strings.TrimPrefix(string(c), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
