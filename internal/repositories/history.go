package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"encore/internal/models"
	"encore/internal/shared"
)

// HistoryRepository implements [models.Repository] for [models.Recommendation]
// persistence. Result sets are recorded one row per track so past requests
// can be listed and replayed.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a single recommendation row with generated ID and sequence
func (r *HistoryRepository) Create(rec *models.Recommendation) error {
	sequence, err := NextSequence(r.db, "recommendations")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	rec.SetID(shared.GenerateID())

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO recommendations
			(id, sequence, listener_id, request_id, mode, position, track_id, track_name, artist_names, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, rec.ID(), sequence, rec.ListenerID(), rec.RequestID(), rec.Mode(),
		rec.Position(), rec.TrackID(), rec.TrackName(), rec.ArtistNames(), rec.CreatedAt(), rec.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}

	return nil
}

// RecordResultSet persists every track of a result set in order.
func (r *HistoryRepository) RecordResultSet(listenerID, requestID, mode string, tracks []models.Track) error {
	for position, track := range tracks {
		rec := models.NewRecommendation(0, listenerID, requestID, mode, position, track)
		if err := r.Create(rec); err != nil {
			return fmt.Errorf("failed to record track %d of request %s: %w", position, requestID, err)
		}
	}
	return nil
}

// Get retrieves a recommendation row by ID, excluding soft-deleted rows
func (r *HistoryRepository) Get(id string) (*models.Recommendation, error) {
	query := `
		SELECT id, sequence, listener_id, request_id, mode, position, track_id, track_name, artist_names, created_at, updated_at, deleted_at
		FROM recommendations
		WHERE id = ? AND deleted_at IS NULL
	`

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("recommendation not found: %s", id)
	}

	rec, err := scanRecommendation(rows)
	if err != nil {
		return nil, err
	}
	return rec, rows.Err()
}

// Update modifies an existing recommendation row
func (r *HistoryRepository) Update(rec *models.Recommendation) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	rec.SetUpdatedAt(now)

	query := `
		UPDATE recommendations
		SET position = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, rec.Position(), now, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to update recommendation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("recommendation not found or already deleted: %s", rec.ID())
	}

	return nil
}

// Delete soft-deletes a recommendation row by ID
func (r *HistoryRepository) Delete(id string) error {
	query := `
		UPDATE recommendations
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete recommendation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("recommendation not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves recommendation rows matching the given criteria, ordered
// by request then position. Supported criteria: listener_id, request_id, mode.
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.Recommendation, error) {
	query := `
		SELECT id, sequence, listener_id, request_id, mode, position, track_id, track_name, artist_names, created_at, updated_at, deleted_at
		FROM recommendations
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if listenerID, ok := criteria["listener_id"].(string); ok && listenerID != "" {
		query += " AND listener_id = ?"
		args = append(args, listenerID)
	}
	if requestID, ok := criteria["request_id"].(string); ok && requestID != "" {
		query += " AND request_id = ?"
		args = append(args, requestID)
	}
	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	query += " ORDER BY sequence DESC, position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recs, nil
}

func scanRecommendation(rows *sql.Rows) (*models.Recommendation, error) {
	var (
		id          string
		sequence    int
		listenerID  string
		requestID   string
		mode        string
		position    int
		trackID     string
		trackName   string
		artistNames string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &listenerID, &requestID, &mode, &position,
		&trackID, &trackName, &artistNames, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}

	track := models.Track{ID: trackID, Name: trackName}
	rec := models.NewRecommendation(sequence, listenerID, requestID, mode, position, track)
	rec.SetID(id)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		rec.SetDeletedAt(&deletedAt.Time)
	}

	// artist_names is stored pre-joined; restore it directly.
	rec.SetArtistNames(artistNames)

	return rec, nil
}
