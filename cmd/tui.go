package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"encore/internal/recommend"
	"encore/internal/shared"
	"encore/internal/ui"
)

// TUI launches the interactive terminal UI for browsing recommendations.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	req := recommend.Request{
		ListenerID: cmd.String("listener"),
		Mode:       recommend.Mode(cmd.String("mode")),
		PlaylistID: cmd.String("playlist-id"),
		ArtistID:   cmd.String("artist-id"),
		ArtistName: cmd.String("artist"),
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine, _, err := r.buildEngine(db)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/encore-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, engine, req)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
