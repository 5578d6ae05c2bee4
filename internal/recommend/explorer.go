package recommend

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"encore/internal/catalog"
	"encore/internal/models"
	"encore/internal/shared"
)

// Traversal bounds. Unconstrained traversal could issue hundreds of
// upstream calls per request; these cap the worst case at roughly
// 5 + (5 x 5) + 3 fetches.
const (
	maxSeedArtists      = 5
	maxRelatedPerArtist = 5
	minDrawPerArtist    = 2
	maxDrawPerArtist    = 4
	maxBackfillArtists  = 3
	maxBackfillDraw     = 3
)

// Explorer synthesizes a result set from catalog relationships alone,
// substituting for the primary recommendation endpoint when the account
// lacks access to it. It walks artist -> related-artists -> top-tracks
// with per-call shuffling at every branching point so repeated requests
// against the same seeds do not yield identical results.
type Explorer struct {
	client   catalog.Client
	shuffler Shuffler
	logger   *log.Logger
}

// NewExplorer creates an Explorer. A nil shuffler gets a time-seeded one.
func NewExplorer(client catalog.Client, shuffler Shuffler, logger *log.Logger) *Explorer {
	if shuffler == nil {
		shuffler = NewShuffler()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Explorer{client: client, shuffler: shuffler, logger: logger}
}

// visited tracks consumed track and artist ids for one traversal, to
// prevent cycles and duplicate yields. Discarded at request end.
type visited struct {
	tracks  map[string]struct{}
	artists map[string]struct{}
}

func newVisited() *visited {
	return &visited{
		tracks:  make(map[string]struct{}),
		artists: make(map[string]struct{}),
	}
}

// Explore runs the fallback traversal and returns up to limit tracks.
// A short result is not an error; only total seed absence is, surfaced
// as [shared.ErrNoArtistSeeds].
func (e *Explorer) Explore(ctx context.Context, seeds catalog.Seeds, limit int) ([]models.Track, error) {
	artistIDs, err := e.seedArtists(ctx, seeds)
	if err != nil {
		return nil, err
	}
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: seed series references no artists", shared.ErrNoArtistSeeds)
	}

	order := shuffled(e.shuffler, artistIDs)
	seen := newVisited()
	results := make([]models.Track, 0, limit)

	for _, artistID := range order[:min(maxSeedArtists, len(order))] {
		if len(results) >= limit {
			break
		}
		results = e.visitArtist(ctx, artistID, seen, results, limit)
	}

	// Backfill: revisit seed artists directly, bypassing the related hop,
	// until the limit is reached or candidates run out.
	for _, artistID := range order[:min(maxBackfillArtists, len(order))] {
		if len(results) >= limit {
			break
		}
		results = e.drawTopTracks(ctx, artistID, maxBackfillDraw, seen, results, limit)
	}

	return results, nil
}

// seedArtists extracts the distinct artist ids referenced by the seed
// series: the seed tracks' credited artists plus any seed artists.
func (e *Explorer) seedArtists(ctx context.Context, seeds catalog.Seeds) ([]string, error) {
	set := make(map[string]struct{})
	var ids []string

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := set[id]; ok {
			return
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range seeds.ArtistIDs {
		add(id)
	}

	if len(seeds.TrackIDs) > 0 {
		tracks, err := e.client.GetSeveralTracks(ctx, seeds.TrackIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seed tracks: %w", err)
		}
		for _, track := range tracks {
			for _, artistID := range track.ArtistIDs {
				add(artistID)
			}
		}
	}

	return ids, nil
}

// visitArtist walks one seed artist's related artists and draws tracks
// from each. Branch failures are logged and skipped; traversal continues.
func (e *Explorer) visitArtist(ctx context.Context, artistID string, seen *visited, results []models.Track, limit int) []models.Track {
	seen.artists[artistID] = struct{}{}

	related, err := e.client.GetRelatedArtists(ctx, artistID)
	if err != nil {
		e.logger.Warn("skipping artist branch", "artist_id", artistID, "error", err)
		return results
	}

	order := shuffled(e.shuffler, related)
	taken := 0
	for _, artist := range order {
		if len(results) >= limit || taken >= maxRelatedPerArtist {
			break
		}
		if _, ok := seen.artists[artist.ID]; ok {
			continue
		}
		seen.artists[artist.ID] = struct{}{}
		taken++

		draw := minDrawPerArtist + e.shuffler.IntN(maxDrawPerArtist-minDrawPerArtist+1)
		results = e.drawTopTracks(ctx, artist.ID, draw, seen, results, limit)
	}

	return results
}

// drawTopTracks fetches an artist's top tracks, shuffles them, and appends
// up to draw tracks not already consumed.
func (e *Explorer) drawTopTracks(ctx context.Context, artistID string, draw int, seen *visited, results []models.Track, limit int) []models.Track {
	tracks, err := e.client.GetArtistTopTracks(ctx, artistID)
	if err != nil {
		e.logger.Warn("skipping top tracks", "artist_id", artistID, "error", err)
		return results
	}

	taken := 0
	for _, track := range shuffled(e.shuffler, tracks) {
		if len(results) >= limit || taken >= draw {
			break
		}
		if _, ok := seen.tracks[track.ID]; ok {
			continue
		}
		seen.tracks[track.ID] = struct{}{}
		results = append(results, track)
		taken++
	}

	return results
}
