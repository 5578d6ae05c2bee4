package models

import (
	"fmt"
	"strings"
	"time"
)

// Recommendation represents a single recorded track recommendation produced
// for a listener. One row per track per request; rows from the same request
// share a request id and are ordered by position.
type Recommendation struct {
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
	deletedAt   *time.Time
}

// NewRecommendation creates a new Recommendation row. ID assignment is
// deferred to the repository layer.
func NewRecommendation(sequence int, listenerID, requestID, mode string, position int, track Track) *Recommendation {
	now := time.Now()
	return &Recommendation{
		sequence:    sequence,
		listenerID:  listenerID,
		requestID:   requestID,
		mode:        mode,
		position:    position,
		trackID:     track.ID,
		trackName:   track.Name,
		artistNames: strings.Join(track.Artists, ", "),
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *Recommendation) ID() string            { return r.id }
func (r *Recommendation) Sequence() int         { return r.sequence }
func (r *Recommendation) ListenerID() string    { return r.listenerID }
func (r *Recommendation) RequestID() string     { return r.requestID }
func (r *Recommendation) Mode() string          { return r.mode }
func (r *Recommendation) Position() int         { return r.position }
func (r *Recommendation) TrackID() string       { return r.trackID }
func (r *Recommendation) TrackName() string     { return r.trackName }
func (r *Recommendation) ArtistNames() string   { return r.artistNames }
func (r *Recommendation) CreatedAt() time.Time  { return r.createdAt }
func (r *Recommendation) UpdatedAt() time.Time  { return r.updatedAt }
func (r *Recommendation) DeletedAt() *time.Time { return r.deletedAt }

func (r *Recommendation) SetID(id string)           { r.id = id }
func (r *Recommendation) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Recommendation) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Recommendation) SetDeletedAt(t *time.Time) { r.deletedAt = t }
func (r *Recommendation) SetPosition(p int)         { r.position = p }
func (r *Recommendation) SetArtistNames(s string)   { r.artistNames = s }

// Validate checks that the recommendation references a listener and a track.
func (r *Recommendation) Validate() error {
	if r.listenerID == "" {
		return fmt.Errorf("recommendation listener id is required")
	}
	if r.trackID == "" {
		return fmt.Errorf("recommendation track id is required")
	}
	if r.position < 0 {
		return fmt.Errorf("recommendation position must be non-negative: %d", r.position)
	}
	return nil
}
