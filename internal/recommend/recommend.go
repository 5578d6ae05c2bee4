// package recommend contains the recommendation-acquisition engine.
//
// The engine obtains track suggestions through one of three strategies
// (general taste, playlist-seeded, artist-seeded) against the primary
// recommendation endpoint, refreshing the listener's credential at most
// once on a 401 and substituting a graph-traversal fallback when the
// endpoint is absent for the account (a 404 capability signal).
package recommend

import (
	"encore/internal/models"
)

// Mode selects the seed strategy for a recommendation request.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModePlaylist Mode = "playlist"
	ModeArtist   Mode = "artist"
)

// Valid reports whether the mode is one of the known strategies.
func (m Mode) Valid() bool {
	switch m {
	case ModeGeneral, ModePlaylist, ModeArtist:
		return true
	}
	return false
}

// Request describes a single recommendation request.
type Request struct {
	ListenerID string
	Mode       Mode

	// PlaylistID is required in playlist mode.
	PlaylistID string

	// ArtistID or ArtistName identifies the seed artist in artist mode.
	// When both are set the id wins.
	ArtistID   string
	ArtistName string

	// Limit bounds the result set size. Zero means the engine default.
	Limit int
}

// Source records which path produced a result set.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// ResultSet is an ordered, deduplicated sequence of recommended tracks.
// It is created fresh per request and may hold fewer than the requested
// number of tracks when the explored graph is exhausted.
type ResultSet struct {
	RequestID  string
	ListenerID string
	Mode       Mode
	Source     Source
	Tracks     []models.Track
}

// TasteSource supplies a listener's known top tracks and artists, whether
// from a prior sync or fetched live. The engine treats both the same.
type TasteSource interface {
	TopTrackIDs(listenerID string) ([]string, error)
	TopArtistIDs(listenerID string) ([]string, error)
}
