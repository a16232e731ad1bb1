package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/config/file"
	"github.com/iguales-labs/policykb-cli/internal/adapters/driving/tui"
	"github.com/iguales-labs/policykb-cli/internal/watch"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for policykb.

Type a question and press Enter to retrieve the most relevant chunks
of the loaded policy document. The KB file is watched and reloaded on
change.

Controls:
  Enter    - Retrieve
  ↑/↓      - Scroll results
  Esc      - Clear input
  Ctrl+C/q - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps stack traces visible after the alt screen
	// is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if kbService == nil {
		return errors.New("kb service not configured")
	}
	if err := ensureKB(cmd.Context()); err != nil {
		return err
	}

	// Live reload while the TUI runs, when a KB path is configured.
	if configStore != nil {
		if path := configStore.GetString(file.KeyKBPath); path != "" {
			if watcher, err := watch.New(path, kbService); err == nil {
				watcher.Start()
				defer func() { _ = watcher.Stop() }()
			}
		}
	}

	app := tui.New(kbService)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
