package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"encore/internal/auth"
	"encore/internal/catalog"
	"encore/internal/models"
	"encore/internal/shared"
)

// TasteStore persists a listener's synced taste. Implemented by
// repositories.TasteRepository.
type TasteStore interface {
	ReplaceTopTracks(listenerID string, tracks []models.Track) error
	ReplaceTopArtists(listenerID string, artists []models.Artist) error
}

// CredentialSource resolves a listener's credential. Implemented by
// auth.Resolver.
type CredentialSource interface {
	Resolve(listenerID string) (auth.Credential, error)
}

// ClientFactory builds a fresh catalog client. Each sync job gets its own
// client so concurrent workers never share a bearer token.
type ClientFactory func() catalog.Client

// SyncOpts contains configuration for taste syncs.
type SyncOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Upstream requests per second across all workers (default: 5)
	TopLimit   int     // Top tracks/artists fetched per listener (default: 50)
}

func (o *SyncOpts) defaults() {
	if o.NumWorkers <= 0 {
		o.NumWorkers = 5
	}
	if o.NumWorkers > 10 {
		o.NumWorkers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
	if o.TopLimit <= 0 {
		o.TopLimit = 50
	}
}

// ListenerSyncResult is the outcome of syncing one listener.
type ListenerSyncResult struct {
	ListenerID string
	Tracks     int
	Artists    int
	Success    bool
	Error      error
}

// SyncResult aggregates a bulk taste sync.
type SyncResult struct {
	TotalListeners int
	Succeeded      int
	Failed         int
	Results        []ListenerSyncResult
}

// TasteEngine syncs listener taste from the catalog into the local cache.
type TasteEngine struct {
	clients ClientFactory
	creds   CredentialSource
	store   TasteStore
	logger  *log.Logger
}

// NewTasteEngine creates a TasteEngine with the provided collaborators.
func NewTasteEngine(clients ClientFactory, creds CredentialSource, store TasteStore, logger *log.Logger) *TasteEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TasteEngine{clients: clients, creds: creds, store: store, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TasteEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync fetches and stores one listener's top tracks and artists.
func (e *TasteEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, listenerID string, opts SyncOpts) (*ListenerSyncResult, error) {
	opts.defaults()
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	result := e.syncListener(ctx, progress, limiter, listenerID, 1, 1, opts)
	if result.Error != nil {
		return &result, result.Error
	}
	return &result, nil
}

// SyncAll syncs many listeners concurrently with a shared rate limiter.
// Individual failures are recorded in the result, not returned as errors.
func (e *TasteEngine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate, listenerIDs []string, opts SyncOpts) (*SyncResult, error) {
	if e.clients == nil || e.creds == nil || e.store == nil {
		return nil, fmt.Errorf("%w: taste engine not initialized", shared.ErrServiceUnavailable)
	}
	opts.defaults()

	result := &SyncResult{
		TotalListeners: len(listenerIDs),
		Results:        make([]ListenerSyncResult, 0, len(listenerIDs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan syncJob, len(listenerIDs))
	results := make(chan ListenerSyncResult, len(listenerIDs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.syncWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	for i, listenerID := range listenerIDs {
		jobs <- syncJob{listenerID: listenerID, step: i + 1, total: len(listenerIDs), progress: progress}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		if res.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

type syncJob struct {
	listenerID string
	step       int
	total      int
	progress   chan<- ProgressUpdate
}

// syncWorker drains the jobs channel, syncing one listener at a time.
func (e *TasteEngine) syncWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan syncJob, results chan<- ListenerSyncResult, limiter *rate.Limiter, opts SyncOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.syncListener(ctx, job.progress, limiter, job.listenerID, job.step, job.total, opts)
	}
}

// syncListener fetches and stores one listener's taste.
func (e *TasteEngine) syncListener(ctx context.Context, progress chan<- ProgressUpdate, limiter *rate.Limiter, listenerID string, step, total int, opts SyncOpts) ListenerSyncResult {
	result := ListenerSyncResult{ListenerID: listenerID}

	fail := func(err error) ListenerSyncResult {
		result.Error = err
		e.sendProgress(progress, syncFailedUpdate(step, total, listenerID, err))
		e.logger.Warn("taste sync failed", "listener_id", listenerID, "error", err)
		return result
	}

	e.sendProgress(progress, resolveCredentialUpdate(step, total, listenerID))
	cred, err := e.creds.Resolve(listenerID)
	if err != nil {
		return fail(fmt.Errorf("failed to resolve credential: %w", err))
	}

	client := e.clients()
	client.SetToken(cred.AccessToken)

	e.sendProgress(progress, fetchTopTracksUpdate(step, total, listenerID))
	if err := limiter.Wait(ctx); err != nil {
		return fail(err)
	}
	tracks, err := client.GetTopTracks(ctx, opts.TopLimit)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch top tracks: %w", err))
	}

	e.sendProgress(progress, fetchTopArtistsUpdate(step, total, listenerID))
	if err := limiter.Wait(ctx); err != nil {
		return fail(err)
	}
	artists, err := client.GetTopArtists(ctx, opts.TopLimit)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch top artists: %w", err))
	}

	if err := e.store.ReplaceTopTracks(listenerID, tracks); err != nil {
		return fail(fmt.Errorf("failed to store top tracks: %w", err))
	}
	if err := e.store.ReplaceTopArtists(listenerID, artists); err != nil {
		return fail(fmt.Errorf("failed to store top artists: %w", err))
	}

	result.Tracks = len(tracks)
	result.Artists = len(artists)
	result.Success = true
	e.sendProgress(progress, syncCompletedUpdate(step, total, listenerID, result.Tracks, result.Artists))
	return result
}
