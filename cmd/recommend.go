package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"encore/internal/formatter"
	"encore/internal/recommend"
	"encore/internal/shared"
)

// Recommend runs a recommendation request and prints or exports the result set.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	req := recommend.Request{
		ListenerID: cmd.String("listener"),
		Mode:       recommend.Mode(cmd.String("mode")),
		PlaylistID: cmd.String("playlist-id"),
		ArtistID:   cmd.String("artist-id"),
		ArtistName: cmd.String("artist"),
		Limit:      cmd.Int("limit"),
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine, history, err := r.buildEngine(db)
	if err != nil {
		return err
	}

	r.logger.Info("requesting recommendations",
		"listener_id", req.ListenerID, "mode", req.Mode)

	results, err := engine.Recommend(ctx, req)
	if err != nil {
		return err
	}

	if err := history.RecordResultSet(results.ListenerID, results.RequestID, string(results.Mode), results.Tracks); err != nil {
		r.logger.Warn("failed to record result set", "request_id", results.RequestID, "error", err)
	}

	if export := cmd.String("export"); export != "" {
		return r.exportResults(results, export, cmd.String("output"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Recommendations (%s, %s)", results.Mode, results.Source))
	for i, track := range results.Tracks {
		r.writePlain("%2d. %s - %s\n", i+1, strings.Join(track.Artists, ", "), track.Name)
	}
	if len(results.Tracks) == 0 {
		r.writePlain("No recommendations found. Try 'encore sync %s' first.\n", req.ListenerID)
	}
	return nil
}

// exportResults writes the result set in the requested format.
func (r *Runner) exportResults(results *recommend.ResultSet, format, output string) error {
	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(results, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s and %s\n", result.TracksFile, result.MetadataFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(results, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(results, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	return nil
}
