package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ResolveCredential Phase = iota
	FetchTopTracks
	FetchTopArtists
	StoreTaste
	SyncComplete
)

func (p Phase) String() string {
	switch p {
	case ResolveCredential:
		return "resolve_credential"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchTopArtists:
		return "fetch_top_artists"
	case StoreTaste:
		return "store_taste"
	case SyncComplete:
		return "sync_complete"
	default:
		return ""
	}
}

func resolveCredentialUpdate(step, total int, listenerID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveCredential,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving credential for %s...", step, total, listenerID),
	}
}

func fetchTopTracksUpdate(step, total int, listenerID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top tracks for %s...", step, total, listenerID),
	}
}

func fetchTopArtistsUpdate(step, total int, listenerID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top artists for %s...", step, total, listenerID),
	}
}

func syncCompletedUpdate(step, total int, listenerID string, tracks, artists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks, %d artists)", step, total, listenerID, tracks, artists),
	}
}

func syncFailedUpdate(step, total int, listenerID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, listenerID, err),
	}
}
