package ui

import (
	"encore/internal/recommend"
)

// resultsFetchedMsg carries the outcome of a recommendation request.
type resultsFetchedMsg struct {
	results *recommend.ResultSet
	err     error
}
