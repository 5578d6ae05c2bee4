package models

import (
	"fmt"
	"strings"
	"time"
)

// Listener represents a listener account. Credentials, taste rows, and
// recommendation history reference a listener by id.
type Listener struct {
	id          string
	sequence    int
	email       string
	displayName string
	country     string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewListener creates a new Listener with the given sequence, email, display name, and country.
// ID assignment is deferred to the repository layer.
func NewListener(sequence int, email, displayName, country string) *Listener {
	now := time.Now()
	return &Listener{
		sequence:    sequence,
		email:       email,
		displayName: displayName,
		country:     country,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (l *Listener) ID() string            { return l.id }
func (l *Listener) Sequence() int         { return l.sequence }
func (l *Listener) Email() string         { return l.email }
func (l *Listener) DisplayName() string   { return l.displayName }
func (l *Listener) Country() string       { return l.country }
func (l *Listener) CreatedAt() time.Time  { return l.createdAt }
func (l *Listener) UpdatedAt() time.Time  { return l.updatedAt }
func (l *Listener) DeletedAt() *time.Time { return l.deletedAt }

func (l *Listener) SetID(id string)            { l.id = id }
func (l *Listener) SetEmail(email string)      { l.email = email }
func (l *Listener) SetDisplayName(name string) { l.displayName = name }
func (l *Listener) SetCountry(country string)  { l.country = country }
func (l *Listener) SetUpdatedAt(t time.Time)   { l.updatedAt = t }
func (l *Listener) SetDeletedAt(t *time.Time)  { l.deletedAt = t }
func (l *Listener) SetCreatedAt(t time.Time)   { l.createdAt = t }
func (l *Listener) SetSequence(sequence int)   { l.sequence = sequence }

// Validate checks that the listener has an email and a display name.
func (l *Listener) Validate() error {
	if strings.TrimSpace(l.email) == "" {
		return fmt.Errorf("listener email is required")
	}
	if !strings.Contains(l.email, "@") {
		return fmt.Errorf("listener email is invalid: %s", l.email)
	}
	if strings.TrimSpace(l.displayName) == "" {
		return fmt.Errorf("listener display name is required")
	}
	return nil
}
