package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Gotham Task Control - a kanban board for your terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cfgPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", model.DefaultConfigPath(), "Path to the config file")

	rootCmd.AddCommand(listCmd(&cfgPath))
	rootCmd.AddCommand(addCmd(&cfgPath))
	rootCmd.AddCommand(editCmd(&cfgPath))
	rootCmd.AddCommand(moveCmd(&cfgPath))
	rootCmd.AddCommand(rmCmd(&cfgPath))
	rootCmd.AddCommand(summarizeCmd(&cfgPath))
	rootCmd.AddCommand(configCmd(&cfgPath))
	rootCmd.AddCommand(apiKeyCmd())

	return rootCmd
}

// runBoard starts the interactive board. Saves run in the background and
// are drained before returning.
func runBoard(cfgPath string) error {
	e, err := openEnv(cfgPath)
	if err != nil {
		return err
	}
	defer e.Close()

	writer := store.NewAsyncWriter(e.persister, e.logger)
	defer writer.Close()

	b := board.New(writer, board.WithLogger(e.logger))
	requester, configured := e.requester()

	m := app.New(app.Options{
		Board:        b,
		Loader:       e.persister,
		Requester:    requester,
		AIConfigured: configured,
		Logger:       e.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}
