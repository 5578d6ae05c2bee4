package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"encore/internal/auth"
	"encore/internal/catalog"
	"encore/internal/models"
	"encore/internal/shared"
)

// Seed assembly bounds. The upstream accepts at most 5 combined seeds.
const (
	generalTrackSeeds  = 3
	generalArtistSeeds = 2
	playlistTrackSeeds = 5
)

// TokenRefresher exchanges a refresh token for a fresh credential.
// Satisfied by [auth.Refresher].
type TokenRefresher interface {
	Refresh(ctx context.Context, cred auth.Credential) (auth.Credential, error)
}

// Engine is the top-level recommendation policy: it assembles seeds for
// the requested mode, calls the primary endpoint, recovers a 401 with a
// single refresh-and-retry, and substitutes the fallback traversal when
// the endpoint is absent for the account.
type Engine struct {
	client       catalog.Client
	resolver     *auth.Resolver
	refresher    TokenRefresher
	taste        TasteSource
	explorer     *Explorer
	shuffler     Shuffler
	defaultLimit int
	logger       *log.Logger
}

// NewEngine creates an Engine. A nil shuffler gets a time-seeded one and a
// zero defaultLimit becomes 20.
func NewEngine(client catalog.Client, resolver *auth.Resolver, refresher TokenRefresher, taste TasteSource, defaultLimit int, shuffler Shuffler, logger *log.Logger) *Engine {
	if shuffler == nil {
		shuffler = NewShuffler()
	}
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		client:       client,
		resolver:     resolver,
		refresher:    refresher,
		taste:        taste,
		explorer:     NewExplorer(client, shuffler, logger),
		shuffler:     shuffler,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Recommend produces a result set for the request. An empty result set is
// not an error; errors mean the request could not even begin or the
// upstream rejected it.
func (e *Engine) Recommend(ctx context.Context, req Request) (*ResultSet, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", shared.ErrInvalidArgument, req.Mode)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}

	if err := e.prepareCredential(ctx, req.ListenerID); err != nil {
		return nil, err
	}

	seeds, err := e.assembleSeeds(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &ResultSet{
		RequestID:  shared.GenerateID(),
		ListenerID: req.ListenerID,
		Mode:       req.Mode,
		Source:     SourcePrimary,
	}

	var tracks []models.Track
	err = e.withAuth(ctx, req.ListenerID, func() error {
		var callErr error
		tracks, callErr = e.client.GetRecommendations(ctx, seeds, limit)
		return callErr
	})

	switch {
	case err == nil:
		result.Tracks = dedupe(tracks, limit)
	case errors.Is(err, shared.ErrNotFound):
		// Capability absence, not an error: this account cannot use the
		// primary endpoint, so synthesize results from the catalog graph.
		e.logger.Info("primary recommendations unavailable, using fallback traversal",
			"listener_id", req.ListenerID, "mode", req.Mode)
		tracks, err = e.explorer.Explore(ctx, seeds, limit)
		if err != nil {
			return nil, err
		}
		result.Source = SourceFallback
		result.Tracks = tracks
	default:
		return nil, err
	}

	e.logger.Debug("recommendation request complete",
		"request_id", result.RequestID, "source", result.Source, "tracks", len(result.Tracks))
	return result, nil
}

// prepareCredential resolves the listener's credential, refreshes it if
// stale, and installs the access token on the catalog client. The local
// expiry is a safety margin only; the upstream's 401 remains authoritative
// and is handled by withAuth.
func (e *Engine) prepareCredential(ctx context.Context, listenerID string) error {
	cred, err := e.resolver.Resolve(listenerID)
	if errors.Is(err, shared.ErrNoCredential) {
		return fmt.Errorf("%w: listener has not authorized", shared.ErrReauthRequired)
	}
	if err != nil {
		return err
	}

	if cred.Stale(time.Now()) {
		cred, err = e.refreshAndPersist(ctx, listenerID, cred)
		if err != nil {
			return err
		}
	}

	e.client.SetToken(cred.AccessToken)
	return nil
}

// withAuth runs a catalog call, recovering a 401 with exactly one refresh
// and one retry. A second 401 is terminal.
func (e *Engine) withAuth(ctx context.Context, listenerID string, call func() error) error {
	err := call()
	if err == nil || !errors.Is(err, shared.ErrUnauthorized) {
		return err
	}

	cred, rerr := e.resolver.Resolve(listenerID)
	if rerr != nil {
		return fmt.Errorf("%w: credential unavailable for refresh", shared.ErrReauthRequired)
	}

	refreshed, rerr := e.refreshAndPersist(ctx, listenerID, cred)
	if rerr != nil {
		return rerr
	}
	e.client.SetToken(refreshed.AccessToken)

	if err := call(); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return fmt.Errorf("%w: credential rejected after refresh", shared.ErrReauthRequired)
		}
		return err
	}
	return nil
}

// refreshAndPersist exchanges the refresh token and writes the new pair
// through the resolver before reuse.
func (e *Engine) refreshAndPersist(ctx context.Context, listenerID string, cred auth.Credential) (auth.Credential, error) {
	refreshed, err := e.refresher.Refresh(ctx, cred)
	if err != nil {
		return auth.Credential{}, err
	}
	if err := e.resolver.Put(listenerID, refreshed); err != nil {
		return auth.Credential{}, err
	}
	return refreshed, nil
}

// assembleSeeds builds the immutable seed series for the request's mode.
// Sampling is repeated on every call so repeated invocations surface
// different seeds for the same listener.
func (e *Engine) assembleSeeds(ctx context.Context, req Request) (catalog.Seeds, error) {
	switch req.Mode {
	case ModeGeneral:
		return e.generalSeeds(req.ListenerID)
	case ModePlaylist:
		return e.playlistSeeds(ctx, req)
	case ModeArtist:
		return e.artistSeeds(ctx, req)
	}
	return catalog.Seeds{}, fmt.Errorf("%w: unknown mode %q", shared.ErrInvalidArgument, req.Mode)
}

func (e *Engine) generalSeeds(listenerID string) (catalog.Seeds, error) {
	trackIDs, err := e.taste.TopTrackIDs(listenerID)
	if err != nil {
		return catalog.Seeds{}, fmt.Errorf("failed to load top tracks: %w", err)
	}
	artistIDs, err := e.taste.TopArtistIDs(listenerID)
	if err != nil {
		return catalog.Seeds{}, fmt.Errorf("failed to load top artists: %w", err)
	}

	if len(trackIDs) == 0 && len(artistIDs) == 0 {
		return catalog.Seeds{}, fmt.Errorf("%w: listener has no known top tracks or artists", shared.ErrNoSeeds)
	}

	return catalog.Seeds{
		TrackIDs:  sample(e.shuffler, trackIDs, generalTrackSeeds),
		ArtistIDs: sample(e.shuffler, artistIDs, generalArtistSeeds),
	}, nil
}

func (e *Engine) playlistSeeds(ctx context.Context, req Request) (catalog.Seeds, error) {
	if req.PlaylistID == "" {
		return catalog.Seeds{}, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var tracks []models.Track
	err := e.withAuth(ctx, req.ListenerID, func() error {
		var callErr error
		tracks, callErr = e.client.GetPlaylistTracks(ctx, req.PlaylistID, 50)
		return callErr
	})
	if err != nil {
		return catalog.Seeds{}, err
	}

	if len(tracks) == 0 {
		return catalog.Seeds{}, fmt.Errorf("%w: %s", shared.ErrEmptyPlaylist, req.PlaylistID)
	}

	trackIDs := make([]string, 0, len(tracks))
	for _, track := range tracks {
		trackIDs = append(trackIDs, track.ID)
	}

	return catalog.Seeds{TrackIDs: sample(e.shuffler, trackIDs, playlistTrackSeeds)}, nil
}

func (e *Engine) artistSeeds(ctx context.Context, req Request) (catalog.Seeds, error) {
	if req.ArtistID != "" {
		var artist models.Artist
		err := e.withAuth(ctx, req.ListenerID, func() error {
			var callErr error
			artist, callErr = e.client.GetArtist(ctx, req.ArtistID)
			return callErr
		})
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.Seeds{}, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, req.ArtistID)
		}
		if err != nil {
			return catalog.Seeds{}, err
		}
		return catalog.Seeds{ArtistIDs: []string{artist.ID}}, nil
	}

	if req.ArtistName == "" {
		return catalog.Seeds{}, fmt.Errorf("%w: artist id or name", shared.ErrMissingArgument)
	}

	var candidates []models.Artist
	err := e.withAuth(ctx, req.ListenerID, func() error {
		var callErr error
		candidates, callErr = e.client.SearchArtists(ctx, req.ArtistName, 10)
		return callErr
	})
	if err != nil {
		return catalog.Seeds{}, err
	}

	match, ok := bestArtistMatch(req.ArtistName, candidates)
	if !ok {
		return catalog.Seeds{}, fmt.Errorf("%w: no catalog match for %q", shared.ErrArtistNotFound, req.ArtistName)
	}

	return catalog.Seeds{ArtistIDs: []string{match.ID}}, nil
}

// dedupe removes duplicate track ids, preserving order, and bounds the
// result to limit.
func dedupe(tracks []models.Track, limit int) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		out = append(out, track)
	}
	return out
}
