package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var themeFlag string

var rootCmd = &cobra.Command{
	Use:          "termtab",
	Short:        "A tabbed, splittable terminal multiplexer",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&themeFlag, "theme-file", "",
		"theme file overriding the configured one for this session")
}

// newLogger writes structured logs to the user cache dir. Stdout and
// stderr belong to the TUI, so on any setup failure logging is simply
// dropped.
func newLogger() *zap.Logger {
	base, err := os.UserCacheDir()
	if err != nil {
		return zap.NewNop()
	}
	dir := filepath.Join(base, "termtab")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "termtab.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run() error {
	logger := newLogger()
	defer logger.Sync()

	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, theme, err := LoadConfig(cfgPath, themeFlag)
	if err != nil {
		// Startup has no previous snapshot to fall back on.
		logger.Error("config load failed", zap.Error(err))
		return err
	}
	logger.Info("starting",
		zap.String("config", cfgPath),
		zap.String("shell", cfg.Shell))

	p := tea.NewProgram(
		initialModel(cfg, theme, cfgPath, themeFlag, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	// Sweep any shells still alive, e.g. after an abnormal stop.
	if fm, ok := final.(Model); ok {
		for _, tab := range fm.tabs.Tabs() {
			for _, pane := range tab.tree.Panes() {
				pane.terminate()
				pane.release()
			}
		}
	}
	logger.Info("stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
