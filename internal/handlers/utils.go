package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"

	"github.com/gorilla/mux"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since the status line is already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// queryInt64 parses a required integer query parameter.
func queryInt64(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}
	return v, nil
}

// trackFromRequest loads the track named by the {id} route variable. It
// writes the error response itself and returns false on failure.
func (h *Handlers) trackFromRequest(w http.ResponseWriter, r *http.Request) (database.Track, bool) {
	id := mux.Vars(r)["id"]

	track, err := h.db.GetTrack(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Track not found", http.StatusNotFound)
		return database.Track{}, false
	}
	if err != nil {
		logging.Error("failed to load track %s: %v", id, err)
		writeJSONError(w, "Failed to load track", http.StatusInternalServerError)
		return database.Track{}, false
	}
	return track, true
}
