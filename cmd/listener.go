package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"encore/internal/models"
	"encore/internal/repositories"
)

// ListenerAdd registers a listener.
func (r *Runner) ListenerAdd(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	name := cmd.String("name")
	country := cmd.String("country")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	listeners := repositories.NewListenerRepository(db)
	listener := models.NewListener(0, email, name, country)
	if err := listeners.Create(listener); err != nil {
		return fmt.Errorf("failed to register listener: %w", err)
	}

	r.writePlain("✓ Listener registered\n")
	r.writePlain("ID: %s\n", listener.ID())
	return nil
}

// listenerSummary is the JSON row shape for listener list output.
type listenerSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

// ListenerList lists registered listeners.
func (r *Runner) ListenerList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	listeners, err := repositories.NewListenerRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list listeners: %w", err)
	}

	if useJSON {
		rows := make([]listenerSummary, 0, len(listeners))
		for _, l := range listeners {
			rows = append(rows, listenerSummary{
				ID:          l.ID(),
				Email:       l.Email(),
				DisplayName: l.DisplayName(),
				Country:     l.Country(),
			})
		}
		return r.writeJSON(rows, true)
	}

	r.writePlainHeader(fmt.Sprintf("Listeners (%d)", len(listeners)))
	for _, l := range listeners {
		name := l.DisplayName()
		if name == "" {
			name = "(unnamed)"
		}
		r.writePlain("%s  %s  %s\n", l.ID(), name, l.Email())
	}
	return nil
}
