package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, theme, err := LoadConfig(path, "")
	require.NoError(t, err)

	require.Equal(t, defaultScrollback, cfg.ScrollbackLines)
	require.Equal(t, defaultFont, cfg.Font)
	require.Equal(t, defaultFontSize, cfg.FontSize)
	require.Equal(t, defaultTabTitle, cfg.TabTitle)
	require.Equal(t, TabBarTop, cfg.TabBarPosition)
	require.NotEmpty(t, cfg.Shell)
	require.NotNil(t, cfg.Keybindings)
	require.Equal(t, DefaultTheme().Background, theme.Background)
}

func TestLoadConfigParsesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
scrollback_lines = 500
font = "JetBrains Mono"
font_size = 14
shell = "/bin/zsh"
tab_title = "Shell"
tab_bar_position = "bottom"

[keybindings]
new_tab = "Ctrl+N"
`)
	cfg, _, err := LoadConfig(path, "")
	require.NoError(t, err)
	require.Equal(t, 500, cfg.ScrollbackLines)
	require.Equal(t, "JetBrains Mono", cfg.Font)
	require.Equal(t, 14, cfg.FontSize)
	require.Equal(t, "/bin/zsh", cfg.Shell)
	require.Equal(t, "Shell", cfg.TabTitle)
	require.Equal(t, TabBarBottom, cfg.TabBarPosition)

	action, ok := cfg.Keybindings.Resolve(Chord{Ctrl: true, Key: "n"})
	require.True(t, ok)
	require.Equal(t, ActionNewTab, action)
}

func TestLoadConfigRejectsBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `scrollback_lines = = 1`)
	_, _, err := LoadConfig(path, "")
	require.Error(t, err)
	require.IsType(t, &ConfigParseError{}, err)
}

func TestLoadConfigRejectsBadTabBarPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `tab_bar_position = "sideways"`)
	_, _, err := LoadConfig(path, "")
	require.Error(t, err)
	require.IsType(t, &ConfigParseError{}, err)
	require.Contains(t, err.Error(), "sideways")
}

func TestLoadConfigRejectsNonPositiveScrollback(t *testing.T) {
	for _, lines := range []string{"-5", "0"} {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, "scrollback_lines = "+lines)
		_, _, err := LoadConfig(path, "")
		require.Error(t, err, "scrollback_lines = %s", lines)
		require.IsType(t, &ConfigParseError{}, err)
	}
}

func TestLoadConfigThemePathRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `theme_file = "mytheme.toml"`)
	writeFile(t, filepath.Join(dir, "mytheme.toml"), themeTOML("#102030"))

	cfg, theme, err := LoadConfig(path, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "mytheme.toml"), cfg.ThemeFile)
	require.Equal(t, "#102030", string(theme.Background))
}

func TestLoadConfigThemeOverrideWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `theme_file = "configured.toml"`)
	writeFile(t, filepath.Join(dir, "configured.toml"), themeTOML("#111111"))
	override := filepath.Join(dir, "override.toml")
	writeFile(t, override, themeTOML("#222222"))

	_, theme, err := LoadConfig(path, override)
	require.NoError(t, err)
	require.Equal(t, "#222222", string(theme.Background))
}

func TestLoadConfigMissingThemeFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `theme_file = "nope.toml"`)
	_, _, err := LoadConfig(path, "")
	require.Error(t, err)
	require.IsType(t, &ThemeParseError{}, err)
}

func TestLoadConfigKeybindingConflictSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[keybindings]
copy = "Ctrl+Shift+T"
`)
	_, _, err := LoadConfig(path, "")
	require.Error(t, err)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestLoadConfigMalformedChordSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[keybindings]
paste = "NotAChord+"
`)
	_, _, err := LoadConfig(path, "")
	require.Error(t, err)
	var mce *MalformedChordError
	require.ErrorAs(t, err, &mce)
	require.Equal(t, "paste", mce.Action)
}
