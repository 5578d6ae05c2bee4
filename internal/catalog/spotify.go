// Spotify implementation of [Client]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"encore/internal/models"
	"encore/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Popularity   int             `json:"popularity"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type pagedPlaylistTracks struct {
	Items []SpotifyPlaylistTrack `json:"items"`
	Total int                    `json:"total"`
	Next  *string                `json:"next"`
}

type pagedTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}

type pagedArtists struct {
	Items []SpotifyArtist `json:"items"`
	Total int             `json:"total"`
}

// SpotifyClient implements [Client] against the Spotify Web API.
//
// The client holds a bearer token but never refreshes it; credential
// lifecycle is owned by the caller, which swaps tokens in via SetToken.
type SpotifyClient struct {
	baseURL    string
	market     string
	token      string
	httpClient *http.Client
}

var _ Client = (*SpotifyClient)(nil)

// NewSpotifyClient creates a catalog client for the given market.
// Pass nil to use [http.DefaultClient].
func NewSpotifyClient(market string, httpClient *http.Client) *SpotifyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpotifyClient{
		baseURL:    spotifyBaseURL,
		market:     market,
		httpClient: httpClient,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *SpotifyClient) SetBaseURL(base string) { c.baseURL = base }

// SetToken replaces the bearer token used for subsequent requests.
func (c *SpotifyClient) SetToken(token string) { c.token = token }

// doRequest performs an authenticated GET against the Spotify API and
// decodes the JSON response into result. Non-2xx statuses are classified
// into the shared sentinel errors.
func (c *SpotifyClient) doRequest(ctx context.Context, endpoint string, result any) error {
	if c.token == "" {
		return fmt.Errorf("%w: no access token set", shared.ErrUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// classifyStatus maps an HTTP response status to a sentinel error, or nil
// for success.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", shared.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", shared.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			return fmt.Errorf("%w: retry after %ss", shared.ErrRateLimited, retry)
		}
		return fmt.Errorf("%w: status 429", shared.ErrRateLimited)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrUpstream, resp.StatusCode)
	}
}

// UserProfile retrieves the authenticated account's profile.
func (c *SpotifyClient) UserProfile(ctx context.Context) (*UserProfile, error) {
	var user SpotifyUser
	if err := c.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
	}, nil
}

// GetTrack retrieves a single track by id.
func (c *SpotifyClient) GetTrack(ctx context.Context, trackID string) (models.Track, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s%s", url.PathEscape(trackID), c.marketQuery("?"))
	if err := c.doRequest(ctx, endpoint, &track); err != nil {
		return models.Track{}, err
	}
	return toTrack(track), nil
}

// GetSeveralTracks retrieves up to 50 tracks by id. The upstream returns
// null for unknown ids; those entries are omitted.
func (c *SpotifyClient) GetSeveralTracks(ctx context.Context, trackIDs []string) ([]models.Track, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}
	if len(trackIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 track ids allowed", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/tracks?ids=%s%s", url.QueryEscape(strings.Join(trackIDs, ",")), c.marketQuery("&"))

	var response struct {
		Tracks []*SpotifyTrack `json:"tracks"`
	}
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks))
	for _, t := range response.Tracks {
		if t == nil || t.ID == "" {
			continue
		}
		tracks = append(tracks, toTrack(*t))
	}
	return tracks, nil
}

// GetArtist retrieves a single artist by id.
func (c *SpotifyClient) GetArtist(ctx context.Context, artistID string) (models.Artist, error) {
	var artist SpotifyArtist
	if err := c.doRequest(ctx, "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return models.Artist{}, err
	}
	return toArtist(artist), nil
}

// SearchArtists searches the catalog for artists matching the query.
func (c *SpotifyClient) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidArgument)
	}
	limit = clampLimit(limit, 20)

	endpoint := fmt.Sprintf("/search?type=artist&q=%s&limit=%d%s", url.QueryEscape(query), limit, c.marketQuery("&"))

	var response struct {
		Artists pagedArtists `json:"artists"`
	}
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toArtists(response.Artists.Items), nil
}

// GetArtistTopTracks retrieves an artist's most popular tracks.
func (c *SpotifyClient) GetArtistTopTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	market := c.market
	if market == "" {
		market = "US"
	}
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=%s", url.PathEscape(artistID), url.QueryEscape(market))

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toTracks(response.Tracks), nil
}

// GetRelatedArtists retrieves artists similar to the given artist.
func (c *SpotifyClient) GetRelatedArtists(ctx context.Context, artistID string) ([]models.Artist, error) {
	endpoint := fmt.Sprintf("/artists/%s/related-artists", url.PathEscape(artistID))

	var response struct {
		Artists []SpotifyArtist `json:"artists"`
	}
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toArtists(response.Artists), nil
}

// GetPlaylistTracks retrieves the tracks of a playlist. Entries with a null
// track object (removed or unaddressable) are omitted.
func (c *SpotifyClient) GetPlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error) {
	limit = clampLimit(limit, 50)
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d%s", url.PathEscape(playlistID), limit, c.marketQuery("&"))

	var response pagedPlaylistTracks
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, toTrack(*item.Track))
	}
	return tracks, nil
}

// GetTopTracks retrieves the account's most listened tracks.
func (c *SpotifyClient) GetTopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	limit = clampLimit(limit, 20)
	endpoint := fmt.Sprintf("/me/top/tracks?limit=%d", limit)

	var response pagedTracks
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toTracks(response.Items), nil
}

// GetTopArtists retrieves the account's most listened artists.
func (c *SpotifyClient) GetTopArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	limit = clampLimit(limit, 20)
	endpoint := fmt.Sprintf("/me/top/artists?limit=%d", limit)

	var response pagedArtists
	if err := c.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toArtists(response.Items), nil
}

// GetRecommendations retrieves recommended tracks for the given seeds.
// Accounts without access to this endpoint receive a 404 from upstream,
// surfaced as [shared.ErrNotFound].
func (c *SpotifyClient) GetRecommendations(ctx context.Context, seeds Seeds, limit int) ([]models.Track, error) {
	if seeds.Empty() {
		return nil, fmt.Errorf("%w: at least one seed is required", shared.ErrNoSeeds)
	}
	limit = clampLimit(limit, 20)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if len(seeds.TrackIDs) > 0 {
		params.Set("seed_tracks", strings.Join(seeds.TrackIDs, ","))
	}
	if len(seeds.ArtistIDs) > 0 {
		params.Set("seed_artists", strings.Join(seeds.ArtistIDs, ","))
	}
	if c.market != "" {
		params.Set("market", c.market)
	}

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := c.doRequest(ctx, "/recommendations?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	return toTracks(response.Tracks), nil
}

// marketQuery returns the market parameter with the given separator, or an
// empty string when no market is configured.
func (c *SpotifyClient) marketQuery(sep string) string {
	if c.market == "" {
		return ""
	}
	return sep + "market=" + url.QueryEscape(c.market)
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 50 {
		return 50
	}
	return limit
}

// toTrack converts an upstream track to the internal representation,
// keeping the largest artwork and the public link.
func toTrack(t SpotifyTrack) models.Track {
	track := models.Track{
		ID:          t.ID,
		Name:        t.Name,
		Album:       t.Album.Name,
		ExternalURL: t.ExternalURLs.Spotify,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
		track.ArtistIDs = append(track.ArtistIDs, a.ID)
	}
	if len(t.Album.Images) > 0 {
		track.ArtworkURL = t.Album.Images[0].URL
	}
	return track
}

func toTracks(items []SpotifyTrack) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, t := range items {
		if t.ID == "" {
			continue
		}
		tracks = append(tracks, toTrack(t))
	}
	return tracks
}

func toArtist(a SpotifyArtist) models.Artist {
	artist := models.Artist{ID: a.ID, Name: a.Name}
	if len(a.Images) > 0 {
		artist.ArtworkURL = a.Images[0].URL
	}
	return artist
}

func toArtists(items []SpotifyArtist) []models.Artist {
	artists := make([]models.Artist, 0, len(items))
	for _, a := range items {
		if a.ID == "" {
			continue
		}
		artists = append(artists, toArtist(a))
	}
	return artists
}
