package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"encore/internal/models"
	"encore/internal/shared"
)

// ListenerRepository implements [models.Repository] for [models.Listener] persistence.
type ListenerRepository struct {
	db *sql.DB
}

// NewListenerRepository creates a new [ListenerRepository] with the given database connection
func NewListenerRepository(db *sql.DB) *ListenerRepository {
	return &ListenerRepository{db: db}
}

// Create inserts a new listener into the database with generated ID and sequence
func (r *ListenerRepository) Create(listener *models.Listener) error {
	sequence, err := NextSequence(r.db, "listeners")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	listener.SetSequence(sequence)
	listener.SetID(shared.GenerateID())

	if err := listener.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO listeners (id, sequence, email, display_name, country, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, listener.ID(), sequence, listener.Email(), listener.DisplayName(),
		listener.Country(), listener.CreatedAt(), listener.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert listener: %w", err)
	}

	return nil
}

// Get retrieves a listener by ID, excluding soft-deleted listeners
func (r *ListenerRepository) Get(id string) (*models.Listener, error) {
	query := `
		SELECT id, sequence, email, display_name, country, created_at, updated_at, deleted_at
		FROM listeners
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetByEmail retrieves a listener by email, excluding soft-deleted listeners
func (r *ListenerRepository) GetByEmail(email string) (*models.Listener, error) {
	query := `
		SELECT id, sequence, email, display_name, country, created_at, updated_at, deleted_at
		FROM listeners
		WHERE email = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, email), email)
}

func (r *ListenerRepository) scanOne(row *sql.Row, key string) (*models.Listener, error) {
	var (
		id          string
		sequence    int
		email       string
		displayName string
		country     string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &email, &displayName, &country, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrListenerNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listener: %w", err)
	}

	listener := models.NewListener(sequence, email, displayName, country)
	listener.SetID(id)
	listener.SetCreatedAt(createdAt)
	listener.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		listener.SetDeletedAt(&deletedAt.Time)
	}

	return listener, nil
}

// Update modifies an existing listener in the database
func (r *ListenerRepository) Update(listener *models.Listener) error {
	if err := listener.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	listener.SetUpdatedAt(now)

	query := `
		UPDATE listeners
		SET email = ?, display_name = ?, country = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, listener.Email(), listener.DisplayName(), listener.Country(), now, listener.ID())
	if err != nil {
		return fmt.Errorf("failed to update listener: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrListenerNotFound, listener.ID())
	}

	return nil
}

// Delete soft-deletes a listener by ID
func (r *ListenerRepository) Delete(id string) error {
	query := `
		UPDATE listeners
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete listener: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrListenerNotFound, id)
	}

	return nil
}

// List retrieves all listeners matching the given criteria, excluding soft-deleted listeners
func (r *ListenerRepository) List(criteria map[string]any) ([]*models.Listener, error) {
	query := `
		SELECT id, sequence, email, display_name, country, created_at, updated_at, deleted_at
		FROM listeners
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}
	if country, ok := criteria["country"].(string); ok && country != "" {
		query += " AND country = ?"
		args = append(args, country)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listeners: %w", err)
	}
	defer rows.Close()

	var listeners []*models.Listener
	for rows.Next() {
		var (
			id          string
			sequence    int
			email       string
			displayName string
			country     string
			createdAt   time.Time
			updatedAt   time.Time
			deletedAt   sql.NullTime
		)

		err := rows.Scan(&id, &sequence, &email, &displayName, &country, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listener: %w", err)
		}

		listener := models.NewListener(sequence, email, displayName, country)
		listener.SetID(id)
		listener.SetCreatedAt(createdAt)
		listener.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			listener.SetDeletedAt(&deletedAt.Time)
		}

		listeners = append(listeners, listener)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return listeners, nil
}
