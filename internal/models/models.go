package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the recommendation service.
// Implementations include Listener and Recommendation.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track represents a catalog track. Value type; never mutated once
// constructed from an upstream response.
type Track struct {
	ID          string   // Catalog identifier
	Name        string   // Track title
	Artists     []string // Credited artist names, in catalog order
	ArtistIDs   []string // Credited artist ids, parallel to Artists
	Album       string   // Album name
	ArtworkURL  string   // Album artwork URL (largest available)
	ExternalURL string   // Link to the track on the upstream service
}

// Artist represents a catalog artist. Value type.
type Artist struct {
	ID         string // Catalog identifier
	Name       string // Artist name
	ArtworkURL string // Artist artwork URL (largest available)
}
