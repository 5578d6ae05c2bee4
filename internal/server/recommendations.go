package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"encore/internal/models"
	"encore/internal/recommend"
	"encore/internal/shared"
)

// Recommender runs a recommendation request. Implemented by recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.ResultSet, error)
}

// HistoryRecorder persists and lists past result sets. Implemented by
// repositories.HistoryRepository.
type HistoryRecorder interface {
	RecordResultSet(listenerID, requestID, mode string, tracks []models.Track) error
	List(criteria map[string]any) ([]*models.Recommendation, error)
}

// RecommendationHandler serves the recommendation API.
type RecommendationHandler struct {
	engine  Recommender
	history HistoryRecorder
	logger  *log.Logger
}

// NewRecommendationHandler creates a handler backed by the given engine.
// The history recorder may be nil, in which case result sets are not persisted.
func NewRecommendationHandler(engine Recommender, history HistoryRecorder, logger *log.Logger) *RecommendationHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecommendationHandler{engine: engine, history: history, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *RecommendationHandler) Routes() []string {
	return []string{"/recommendations", "/history", "/healthz"}
}

// ServeHTTP dispatches to the endpoint handlers. Only GET is supported.
func (h *RecommendationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/recommendations":
		h.handleRecommendations(w, r)
	case "/history":
		h.handleHistory(w, r)
	case "/healthz":
		h.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, shared.ErrReauthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrArtistNotFound), errors.Is(err, shared.ErrListenerNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNoSeeds), errors.Is(err, shared.ErrEmptyPlaylist):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *RecommendationHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *RecommendationHandler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

func (h *RecommendationHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := recommend.Request{
		ListenerID: q.Get("listener_id"),
		Mode:       recommend.Mode(q.Get("mode")),
		PlaylistID: q.Get("playlist_id"),
		ArtistID:   q.Get("artist_id"),
		ArtistName: q.Get("artist_name"),
	}
	if req.ListenerID == "" {
		h.writeError(w, shared.ErrMissingArgument)
		return
	}
	if req.Mode == "" {
		req.Mode = recommend.ModeGeneral
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, shared.ErrInvalidArgument)
			return
		}
		req.Limit = limit
	}

	results, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		h.logger.Warn("recommendation request failed",
			"listener_id", req.ListenerID, "mode", req.Mode, "error", err)
		h.writeError(w, err)
		return
	}

	if h.history != nil {
		if err := h.history.RecordResultSet(results.ListenerID, results.RequestID, string(results.Mode), results.Tracks); err != nil {
			h.logger.Warn("failed to record result set", "request_id", results.RequestID, "error", err)
		}
	}

	h.writeJSON(w, http.StatusOK, results)
}

type historyEntry struct {
	RequestID   string `json:"request_id"`
	ListenerID  string `json:"listener_id"`
	Mode        string `json:"mode"`
	Position    int    `json:"position"`
	TrackID     string `json:"track_id"`
	TrackName   string `json:"track_name"`
	ArtistNames string `json:"artist_names"`
}

func (h *RecommendationHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, shared.ErrServiceUnavailable)
		return
	}

	criteria := make(map[string]any)
	q := r.URL.Query()
	for _, key := range []string{"listener_id", "request_id", "mode"} {
		if v := q.Get(key); v != "" {
			criteria[key] = v
		}
	}

	rows, err := h.history.List(criteria)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries := make([]historyEntry, 0, len(rows))
	for _, rec := range rows {
		entries = append(entries, historyEntry{
			RequestID:   rec.RequestID(),
			ListenerID:  rec.ListenerID(),
			Mode:        rec.Mode(),
			Position:    rec.Position(),
			TrackID:     rec.TrackID(),
			TrackName:   rec.TrackName(),
			ArtistNames: rec.ArtistNames(),
		})
	}

	h.writeJSON(w, http.StatusOK, entries)
}

func (h *RecommendationHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
