package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ── Config ─────────────────────────────────────────────────────────

const (
	defaultScrollback = 10000
	defaultFont       = "Fira Code"
	defaultFontSize   = 12
	defaultShell      = "/bin/bash"
	defaultTabTitle   = "Terminal"
)

// TabBarPosition places the tab strip at the top or bottom edge.
type TabBarPosition int

const (
	TabBarTop TabBarPosition = iota
	TabBarBottom
)

// ConfigParseError reports a config file that could not be loaded or
// failed validation. On reload the previous snapshot stays in effect.
type ConfigParseError struct {
	Path   string
	Reason string
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

// ConfigSnapshot is the fully resolved configuration: defaults applied,
// values validated, keybindings compiled. Snapshots are immutable;
// reloads build a new one and swap the pointer wholesale.
type ConfigSnapshot struct {
	ScrollbackLines int
	Font            string
	FontSize        int
	Shell           string
	TabTitle        string
	TabBarPosition  TabBarPosition
	ThemeFile       string // absolute path, empty when unset
	Keybindings     *Keymap
}

// rawConfig mirrors the config file. Pointers distinguish an absent key
// from a zero value.
type rawConfig struct {
	ScrollbackLines *int              `toml:"scrollback_lines"`
	Font            *string           `toml:"font"`
	FontSize        *int              `toml:"font_size"`
	Shell           *string           `toml:"shell"`
	TabTitle        *string           `toml:"tab_title"`
	TabBarPosition  *string           `toml:"tab_bar_position"`
	ThemeFile       *string           `toml:"theme_file"`
	Keybindings     map[string]string `toml:"keybindings"`
}

// configPath returns the canonical config file location,
// <user-config-dir>/termtab/config.toml.
func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "termtab", "config.toml"), nil
}

func defaultShellPath() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return defaultShell
}

// LoadConfig reads and resolves the config file plus its theme. A
// missing file yields pure defaults; a present but broken file is an
// error. themeOverride, when non-empty, replaces the configured theme
// file for the lifetime of the process.
func LoadConfig(path, themeOverride string) (*ConfigSnapshot, *ThemeSnapshot, error) {
	var raw rawConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, nil, &ConfigParseError{Path: path, Reason: err.Error()}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, nil, &ConfigParseError{Path: path, Reason: err.Error()}
		}
	}

	cfg := &ConfigSnapshot{
		ScrollbackLines: defaultScrollback,
		Font:            defaultFont,
		FontSize:        defaultFontSize,
		Shell:           defaultShellPath(),
		TabTitle:        defaultTabTitle,
		TabBarPosition:  TabBarTop,
	}
	if raw.ScrollbackLines != nil {
		cfg.ScrollbackLines = *raw.ScrollbackLines
	}
	if raw.Font != nil {
		cfg.Font = *raw.Font
	}
	if raw.FontSize != nil {
		cfg.FontSize = *raw.FontSize
	}
	if raw.Shell != nil && *raw.Shell != "" {
		cfg.Shell = *raw.Shell
	}
	if raw.TabTitle != nil {
		cfg.TabTitle = *raw.TabTitle
	}
	if raw.TabBarPosition != nil {
		switch *raw.TabBarPosition {
		case "top":
			cfg.TabBarPosition = TabBarTop
		case "bottom":
			cfg.TabBarPosition = TabBarBottom
		default:
			return nil, nil, &ConfigParseError{
				Path:   path,
				Reason: fmt.Sprintf("tab_bar_position must be \"top\" or \"bottom\", got %q", *raw.TabBarPosition),
			}
		}
	}

	if cfg.ScrollbackLines < 1 {
		return nil, nil, &ConfigParseError{Path: path, Reason: "scrollback_lines must be positive"}
	}
	if cfg.FontSize < 1 {
		return nil, nil, &ConfigParseError{Path: path, Reason: "font_size must be positive"}
	}

	// Theme paths resolve relative to the config file's directory.
	themeFile := ""
	if raw.ThemeFile != nil && *raw.ThemeFile != "" {
		themeFile = *raw.ThemeFile
		if !filepath.IsAbs(themeFile) {
			themeFile = filepath.Join(filepath.Dir(path), themeFile)
		}
	}
	if themeOverride != "" {
		themeFile, err = filepath.Abs(themeOverride)
		if err != nil {
			return nil, nil, &ConfigParseError{Path: path, Reason: err.Error()}
		}
	}
	cfg.ThemeFile = themeFile

	km, err := BuildKeymap(raw.Keybindings)
	if err != nil {
		return nil, nil, err
	}
	cfg.Keybindings = km

	theme := DefaultTheme()
	if themeFile != "" {
		theme, err = LoadTheme(themeFile)
		if err != nil {
			return nil, nil, err
		}
	}
	return cfg, theme, nil
}
