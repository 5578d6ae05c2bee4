package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"encore/internal/repositories"
	"encore/internal/shared"
	"encore/internal/tasks"
)

// Sync refreshes cached taste for one listener or for every registered listener.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	listenerID := cmd.StringArg("listener")
	all := cmd.Bool("all")

	if listenerID == "" && !all {
		return fmt.Errorf("%w: provide a listener id or --all", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := r.buildTasteEngine(db)
	opts := tasks.SyncOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("[%d/%d] %s %s\n", update.Step, update.Total, update.Phase, update.Message)
		}
	}()

	if !all {
		result, err := engine.Sync(ctx, progress, listenerID, opts)
		close(progress)
		<-done
		if err != nil {
			return err
		}
		r.writePlainln("✓ Synced %d tracks and %d artists for %s", result.Tracks, result.Artists, listenerID)
		return nil
	}

	listeners, err := repositories.NewListenerRepository(db).List(nil)
	if err != nil {
		close(progress)
		<-done
		return fmt.Errorf("failed to list listeners: %w", err)
	}
	ids := make([]string, 0, len(listeners))
	for _, l := range listeners {
		ids = append(ids, l.ID())
	}

	result, err := engine.SyncAll(ctx, progress, ids, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Taste Sync")
	r.writePlain("Listeners: %d\n", result.TotalListeners)
	r.writePlain("Succeeded: %d\n", result.Succeeded)
	r.writePlain("Failed: %d\n", result.Failed)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %v\n", res.ListenerID, res.Error)
		}
	}
	return nil
}
