package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"formpilot/cmd/formpilot/ui"
	"formpilot/internal/api"
	"formpilot/internal/session"
)

// runDashboard launches the interactive TUI. It builds its own client
// without the stderr 401 hook, since printing would tear the UI; the app
// notices expired sessions through the error flow instead.
func runDashboard() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := session.NewStore(session.DefaultPath())
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	client := api.NewClient(cfg.ServerURL, store, api.WithLogger(zap.NewNop()))

	watcher, err := session.NewWatcher(store, zap.NewNop())
	if err == nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if startErr := watcher.Start(ctx); startErr != nil {
			_ = watcher.Close()
			watcher = nil
		} else {
			defer watcher.Close()
		}
	} else {
		// No watcher just means external logouts surface as 401s.
		watcher = nil
	}

	app := ui.NewApp(client, store, watcher, cfg, zap.NewNop())
	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
