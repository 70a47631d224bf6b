package handlers

import (
	"net/http"
	"strconv"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
)

// SearchResponse is the result of a track search.
type SearchResponse struct {
	Query  string           `json:"query"`
	Tracks []database.Track `json:"tracks"`
	Count  int              `json:"count"`
}

// ListTracks returns every track ordered by artist and title
func (h *Handlers) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.db.GetTracks(r.Context())
	if err != nil {
		logging.Error("failed to list tracks: %v", err)
		writeJSONError(w, "Failed to list tracks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, tracks)
}

// GetTrack returns one track
func (h *Handlers) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackFromRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, track)
}

// Search finds tracks whose title, artist or album contains q
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	tracks, err := h.db.SearchTracks(r.Context(), query, limit)
	if err != nil {
		logging.Error("search for %q failed: %v", query, err)
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}
	if tracks == nil {
		tracks = []database.Track{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResponse{Query: query, Tracks: tracks, Count: len(tracks)})
}

// GetStats returns the library statistics from the last index run
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.db.GetStats())
}

// TriggerReindex starts a library re-index in the background
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.indexer.IsIndexing() {
		writeJSON(w, map[string]string{
			"status":  "already_running",
			"message": "Indexing is already in progress",
		})
		return
	}

	h.indexer.TriggerIndex()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{
		"status":  "started",
		"message": "Re-indexing started",
	})
}
