package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"encore/internal/auth"
	"encore/internal/catalog"
	"encore/internal/models"
	"encore/internal/shared"
)

// memCredStore is an in-memory auth.Store for engine tests.
type memCredStore struct {
	creds map[string]auth.Credential
}

func (s *memCredStore) Load(listenerID string) (auth.Credential, error) {
	cred, ok := s.creds[listenerID]
	if !ok {
		return auth.Credential{}, shared.ErrNoCredential
	}
	return cred, nil
}

func (s *memCredStore) Save(listenerID string, cred auth.Credential) error {
	s.creds[listenerID] = cred
	return nil
}

// fakeRefresher counts refreshes and hands out a fixed credential.
type fakeRefresher struct {
	calls int
	cred  auth.Credential
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, cred auth.Credential) (auth.Credential, error) {
	f.calls++
	if f.err != nil {
		return auth.Credential{}, f.err
	}
	return f.cred, nil
}

// fakeTaste is a static TasteSource.
type fakeTaste struct {
	trackIDs  []string
	artistIDs []string
}

func (f *fakeTaste) TopTrackIDs(listenerID string) ([]string, error)  { return f.trackIDs, nil }
func (f *fakeTaste) TopArtistIDs(listenerID string) ([]string, error) { return f.artistIDs, nil }

type engineFixture struct {
	client    *fakeClient
	refresher *fakeRefresher
	taste     *fakeTaste
	engine    *Engine
}

func newEngineFixture(t *testing.T, client *fakeClient) *engineFixture {
	t.Helper()

	store := &memCredStore{creds: map[string]auth.Credential{
		"listener": {
			AccessToken:  "valid-token",
			RefreshToken: "rt",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}}
	resolver := auth.NewResolver(store, shared.NewLogger(io.Discard))
	refresher := &fakeRefresher{cred: auth.Credential{
		AccessToken:  "fresh-token",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
	}}
	taste := &fakeTaste{
		trackIDs:  []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10"},
		artistIDs: []string{"a1", "a2", "a3", "a4", "a5"},
	}

	engine := NewEngine(client, resolver, refresher, taste, 20, NewSeededShuffler(42), shared.NewLogger(io.Discard))
	return &engineFixture{client: client, refresher: refresher, taste: taste, engine: engine}
}

func nTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{ID: fmt.Sprintf("rec%d", i)}
	}
	return tracks
}

func TestEngineGeneralMode(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy primary issues exactly one call with bounded seeds", func(t *testing.T) {
		var gotSeeds catalog.Seeds
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				gotSeeds = seeds
				return nTracks(25), nil
			},
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}

		if client.recommendCalls != 1 {
			t.Errorf("expected exactly one primary call, got %d", client.recommendCalls)
		}
		if len(gotSeeds.TrackIDs) > generalTrackSeeds {
			t.Errorf("expected at most %d track seeds, got %d", generalTrackSeeds, len(gotSeeds.TrackIDs))
		}
		if len(gotSeeds.ArtistIDs) > generalArtistSeeds {
			t.Errorf("expected at most %d artist seeds, got %d", generalArtistSeeds, len(gotSeeds.ArtistIDs))
		}
		if len(result.Tracks) > 20 {
			t.Errorf("expected result bounded to 20, got %d", len(result.Tracks))
		}
		if result.Source != SourcePrimary {
			t.Errorf("expected primary source, got %s", result.Source)
		}
		if result.RequestID == "" {
			t.Error("expected a request id")
		}
	})

	t.Run("primary results are deduplicated", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return []models.Track{{ID: "x"}, {ID: "x"}, {ID: "y"}}, nil
			},
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(result.Tracks) != 2 {
			t.Errorf("expected 2 distinct tracks, got %d", len(result.Tracks))
		}
	})

	t.Run("no taste at all yields NoSeeds", func(t *testing.T) {
		client := &fakeClient{}
		f := newEngineFixture(t, client)
		f.taste.trackIDs = nil
		f.taste.artistIDs = nil

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrNoSeeds) {
			t.Errorf("expected no seeds error, got %v", err)
		}
		if client.recommendCalls != 0 {
			t.Errorf("expected no primary calls, got %d", client.recommendCalls)
		}
	})

	t.Run("empty result set is not an error", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, nil
			},
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(result.Tracks) != 0 {
			t.Errorf("expected empty result set, got %d tracks", len(result.Tracks))
		}
	})
}

func TestEngineAuthRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("401 rejected exactly once refreshes once and retries once", func(t *testing.T) {
		client := &fakeClient{}
		client.recommendFn = func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
			if client.token != "fresh-token" {
				return nil, fmt.Errorf("%w: status 401", shared.ErrUnauthorized)
			}
			return nTracks(5), nil
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if f.refresher.calls != 1 {
			t.Errorf("expected exactly one refresh, got %d", f.refresher.calls)
		}
		if client.recommendCalls != 2 {
			t.Errorf("expected one call plus one retry, got %d", client.recommendCalls)
		}
		if len(result.Tracks) != 5 {
			t.Errorf("expected 5 tracks after retry, got %d", len(result.Tracks))
		}
	})

	t.Run("second 401 is terminal", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, fmt.Errorf("%w: status 401", shared.ErrUnauthorized)
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected reauth required, got %v", err)
		}
		if f.refresher.calls != 1 {
			t.Errorf("expected exactly one refresh, got %d", f.refresher.calls)
		}
		if client.recommendCalls != 2 {
			t.Errorf("expected exactly two primary attempts, got %d", client.recommendCalls)
		}
	})

	t.Run("failed refresh surfaces reauth required", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, fmt.Errorf("%w: status 401", shared.ErrUnauthorized)
			},
		}
		f := newEngineFixture(t, client)
		f.refresher.err = fmt.Errorf("%w: refresh grant rejected", shared.ErrReauthRequired)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected reauth required, got %v", err)
		}
	})

	t.Run("unknown listener requires reauth", func(t *testing.T) {
		f := newEngineFixture(t, &fakeClient{})

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "stranger", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected reauth required, got %v", err)
		}
	})

	t.Run("stale credential is refreshed before the first call", func(t *testing.T) {
		var client *fakeClient
		client = &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				if client.token != "fresh-token" {
					return nil, fmt.Errorf("%w: status 401", shared.ErrUnauthorized)
				}
				return nTracks(3), nil
			},
		}

		store := &memCredStore{creds: map[string]auth.Credential{
			"listener": {
				AccessToken:  "stale-token",
				RefreshToken: "rt",
				ExpiresAt:    time.Now().Add(time.Minute),
			},
		}}
		resolver := auth.NewResolver(store, shared.NewLogger(io.Discard))
		refresher := &fakeRefresher{cred: auth.Credential{
			AccessToken:  "fresh-token",
			RefreshToken: "rt",
			ExpiresAt:    time.Now().Add(time.Hour),
		}}
		taste := &fakeTaste{trackIDs: []string{"t1"}}
		engine := NewEngine(client, resolver, refresher, taste, 20, NewSeededShuffler(1), shared.NewLogger(io.Discard))

		result, err := engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if refresher.calls != 1 {
			t.Errorf("expected one proactive refresh, got %d", refresher.calls)
		}
		if client.recommendCalls != 1 {
			t.Errorf("expected a single primary call with the fresh token, got %d", client.recommendCalls)
		}
		if len(result.Tracks) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(result.Tracks))
		}
		if store.creds["listener"].AccessToken != "fresh-token" {
			t.Error("expected refreshed credential persisted")
		}
	})
}

func TestEngineFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("404 switches to the fallback traversal for this request", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, fmt.Errorf("%w: status 404", shared.ErrNotFound)
			},
			severalFn: func(ids []string) ([]models.Track, error) {
				tracks := make([]models.Track, len(ids))
				for i, id := range ids {
					tracks[i] = models.Track{ID: id, ArtistIDs: []string{"artist-" + id}}
				}
				return tracks, nil
			},
			relatedFn: func(id string) ([]models.Artist, error) {
				return []models.Artist{{ID: id + "-rel"}}, nil
			},
			topTracksFn: func(id string) ([]models.Track, error) {
				return []models.Track{{ID: id + "-top1"}, {ID: id + "-top2"}, {ID: id + "-top3"}}, nil
			},
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if client.recommendCalls != 1 {
			t.Errorf("expected no further primary calls after 404, got %d", client.recommendCalls)
		}
		if result.Source != SourceFallback {
			t.Errorf("expected fallback source, got %s", result.Source)
		}
		if len(result.Tracks) == 0 {
			t.Error("expected fallback to produce tracks")
		}
		if len(result.Tracks) > 20 {
			t.Errorf("expected at most 20 tracks, got %d", len(result.Tracks))
		}
	})

	t.Run("rate limit surfaces verbatim with no fallback", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, fmt.Errorf("%w: retry after 30s", shared.ErrRateLimited)
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected rate limited error, got %v", err)
		}
		if client.relatedCalls != 0 || client.topCalls != 0 {
			t.Error("expected no fallback traversal on rate limit")
		}
		if client.recommendCalls != 1 {
			t.Errorf("expected a single primary attempt, got %d", client.recommendCalls)
		}
	})

	t.Run("upstream error surfaces verbatim", func(t *testing.T) {
		client := &fakeClient{
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				return nil, fmt.Errorf("%w: status 502", shared.ErrUpstream)
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeGeneral})
		if !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})
}

func TestEnginePlaylistMode(t *testing.T) {
	ctx := context.Background()

	t.Run("samples up to five addressable tracks", func(t *testing.T) {
		var gotSeeds catalog.Seeds
		client := &fakeClient{
			playlistFn: func(id string) ([]models.Track, error) {
				return nTracks(12), nil
			},
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				gotSeeds = seeds
				return nTracks(10), nil
			},
		}
		f := newEngineFixture(t, client)

		result, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModePlaylist, PlaylistID: "pl1"})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(gotSeeds.TrackIDs) != playlistTrackSeeds {
			t.Errorf("expected %d track seeds, got %d", playlistTrackSeeds, len(gotSeeds.TrackIDs))
		}
		if len(gotSeeds.ArtistIDs) != 0 {
			t.Errorf("expected no artist seeds in playlist mode, got %d", len(gotSeeds.ArtistIDs))
		}
		if len(result.Tracks) != 10 {
			t.Errorf("expected 10 tracks, got %d", len(result.Tracks))
		}
	})

	t.Run("empty playlist fails before any recommendation call", func(t *testing.T) {
		client := &fakeClient{
			playlistFn: func(id string) ([]models.Track, error) {
				return nil, nil
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModePlaylist, PlaylistID: "pl1"})
		if !errors.Is(err, shared.ErrEmptyPlaylist) {
			t.Errorf("expected empty playlist error, got %v", err)
		}
		if client.recommendCalls != 0 {
			t.Errorf("expected no recommendation calls, got %d", client.recommendCalls)
		}
	})

	t.Run("requires a playlist id", func(t *testing.T) {
		f := newEngineFixture(t, &fakeClient{})
		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModePlaylist})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument error, got %v", err)
		}
	})
}

func TestEngineArtistMode(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves an artist by id directly", func(t *testing.T) {
		var gotSeeds catalog.Seeds
		client := &fakeClient{
			artistFn: func(id string) (models.Artist, error) {
				return models.Artist{ID: id, Name: "Seed Artist"}, nil
			},
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				gotSeeds = seeds
				return nTracks(3), nil
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeArtist, ArtistID: "art1"})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(gotSeeds.ArtistIDs) != 1 || gotSeeds.ArtistIDs[0] != "art1" {
			t.Errorf("expected single artist seed art1, got %+v", gotSeeds.ArtistIDs)
		}
	})

	t.Run("unknown artist id yields ArtistNotFound", func(t *testing.T) {
		client := &fakeClient{
			artistFn: func(id string) (models.Artist, error) {
				return models.Artist{}, fmt.Errorf("%w: status 404", shared.ErrNotFound)
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeArtist, ArtistID: "ghost"})
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected artist not found, got %v", err)
		}
	})

	t.Run("resolves an artist by name via search", func(t *testing.T) {
		var gotSeeds catalog.Seeds
		client := &fakeClient{
			searchFn: func(q string) ([]models.Artist, error) {
				return []models.Artist{
					{ID: "a-exact", Name: "Radiohead"},
					{ID: "a-other", Name: "Radio Dept"},
				}, nil
			},
			recommendFn: func(seeds catalog.Seeds, limit int) ([]models.Track, error) {
				gotSeeds = seeds
				return nTracks(3), nil
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeArtist, ArtistName: "radiohead"})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(gotSeeds.ArtistIDs) != 1 || gotSeeds.ArtistIDs[0] != "a-exact" {
			t.Errorf("expected best match a-exact, got %+v", gotSeeds.ArtistIDs)
		}
	})

	t.Run("no catalog match yields ArtistNotFound", func(t *testing.T) {
		client := &fakeClient{
			searchFn: func(q string) ([]models.Artist, error) {
				return nil, nil
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeArtist, ArtistName: "nobody at all"})
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected artist not found, got %v", err)
		}
	})

	t.Run("dissimilar search hits do not count as a match", func(t *testing.T) {
		client := &fakeClient{
			searchFn: func(q string) ([]models.Artist, error) {
				return []models.Artist{{ID: "a1", Name: "Zebra Quartet"}}, nil
			},
		}
		f := newEngineFixture(t, client)

		_, err := f.engine.Recommend(ctx, Request{ListenerID: "listener", Mode: ModeArtist, ArtistName: "Morning Bell"})
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected artist not found for weak match, got %v", err)
		}
	})
}

func TestEngineRequestValidation(t *testing.T) {
	f := newEngineFixture(t, &fakeClient{})

	_, err := f.engine.Recommend(context.Background(), Request{ListenerID: "listener", Mode: "shuffle"})
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected invalid argument error, got %v", err)
	}
}
