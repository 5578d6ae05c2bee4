package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"encore/internal/models"
)

// TasteRepository caches a listener's top tracks and artists from the last
// sync. Rows are replaced wholesale per listener; rank preserves the
// upstream ordering. Implements [recommend.TasteSource].
type TasteRepository struct {
	db *sql.DB
}

// NewTasteRepository creates a new [TasteRepository] with the given database connection
func NewTasteRepository(db *sql.DB) *TasteRepository {
	return &TasteRepository{db: db}
}

// ReplaceTopTracks replaces the listener's cached top tracks.
func (r *TasteRepository) ReplaceTopTracks(listenerID string, tracks []models.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM taste_tracks WHERE listener_id = ?", listenerID); err != nil {
		return fmt.Errorf("failed to clear top tracks: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO taste_tracks (listener_id, rank, track_id, track_name, artist_names, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for rank, track := range tracks {
		_, err := tx.Exec(query, listenerID, rank, track.ID, track.Name, strings.Join(track.Artists, ", "), now)
		if err != nil {
			return fmt.Errorf("failed to insert top track: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceTopArtists replaces the listener's cached top artists.
func (r *TasteRepository) ReplaceTopArtists(listenerID string, artists []models.Artist) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM taste_artists WHERE listener_id = ?", listenerID); err != nil {
		return fmt.Errorf("failed to clear top artists: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO taste_artists (listener_id, rank, artist_id, artist_name, synced_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for rank, artist := range artists {
		if _, err := tx.Exec(query, listenerID, rank, artist.ID, artist.Name, now); err != nil {
			return fmt.Errorf("failed to insert top artist: %w", err)
		}
	}

	return tx.Commit()
}

// TopTrackIDs returns the listener's cached top track ids in rank order.
// An unsynced listener yields an empty slice, not an error.
func (r *TasteRepository) TopTrackIDs(listenerID string) ([]string, error) {
	return r.queryIDs("SELECT track_id FROM taste_tracks WHERE listener_id = ? ORDER BY rank ASC", listenerID)
}

// TopArtistIDs returns the listener's cached top artist ids in rank order.
func (r *TasteRepository) TopArtistIDs(listenerID string) ([]string, error) {
	return r.queryIDs("SELECT artist_id FROM taste_artists WHERE listener_id = ? ORDER BY rank ASC", listenerID)
}

func (r *TasteRepository) queryIDs(query, listenerID string) ([]string, error) {
	rows, err := r.db.Query(query, listenerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query taste rows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan taste row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// LastSyncedAt returns the time of the listener's most recent taste sync,
// or the zero time when never synced.
func (r *TasteRepository) LastSyncedAt(listenerID string) (time.Time, error) {
	var synced sql.NullTime
	err := r.db.QueryRow("SELECT MAX(synced_at) FROM taste_tracks WHERE listener_id = ?", listenerID).Scan(&synced)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query sync time: %w", err)
	}
	if !synced.Valid {
		return time.Time{}, nil
	}
	return synced.Time, nil
}
