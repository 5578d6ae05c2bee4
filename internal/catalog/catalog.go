// package catalog provides access to the upstream music catalog.
//
// The catalog client classifies upstream HTTP failures into the sentinel
// errors in [shared]: 401 becomes [shared.ErrUnauthorized], 404 becomes
// [shared.ErrNotFound], 429 becomes [shared.ErrRateLimited], and server
// errors become [shared.ErrUpstream]. Callers branch on these with
// [errors.Is] rather than inspecting status codes.
package catalog

import (
	"context"

	"encore/internal/models"
)

// Seeds carries the seed entities for a recommendation request.
// At least one of TrackIDs or ArtistIDs must be non-empty.
type Seeds struct {
	TrackIDs  []string
	ArtistIDs []string
}

// Empty reports whether no seeds are set.
func (s Seeds) Empty() bool {
	return len(s.TrackIDs) == 0 && len(s.ArtistIDs) == 0
}

// UserProfile is the authenticated account's profile.
type UserProfile struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
}

// Client is the catalog surface consumed by the recommendation engine and
// the taste sync task. Implemented by [SpotifyClient]; tests substitute
// fakes.
type Client interface {
	// SetToken replaces the bearer token used for subsequent requests.
	SetToken(token string)

	// UserProfile retrieves the authenticated account's profile.
	UserProfile(ctx context.Context) (*UserProfile, error)

	// GetTrack retrieves a single track by id.
	GetTrack(ctx context.Context, trackID string) (models.Track, error)

	// GetSeveralTracks retrieves up to 50 tracks by id. Unknown ids are
	// silently omitted from the result.
	GetSeveralTracks(ctx context.Context, trackIDs []string) ([]models.Track, error)

	// GetArtist retrieves a single artist by id.
	GetArtist(ctx context.Context, artistID string) (models.Artist, error)

	// SearchArtists searches the catalog for artists matching the query.
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)

	// GetArtistTopTracks retrieves an artist's most popular tracks.
	GetArtistTopTracks(ctx context.Context, artistID string) ([]models.Track, error)

	// GetRelatedArtists retrieves artists similar to the given artist.
	GetRelatedArtists(ctx context.Context, artistID string) ([]models.Artist, error)

	// GetPlaylistTracks retrieves the tracks of a playlist. Entries the
	// account cannot address (removed or region-locked) are omitted.
	GetPlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error)

	// GetTopTracks retrieves the account's most listened tracks.
	GetTopTracks(ctx context.Context, limit int) ([]models.Track, error)

	// GetTopArtists retrieves the account's most listened artists.
	GetTopArtists(ctx context.Context, limit int) ([]models.Artist, error)

	// GetRecommendations retrieves recommended tracks for the given seeds.
	GetRecommendations(ctx context.Context, seeds Seeds, limit int) ([]models.Track, error)
}
