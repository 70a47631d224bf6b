package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/lyrics"
)

// LyricsResponse is the full lyric document of a track.
type LyricsResponse struct {
	TrackID string            `json:"trackId"`
	Lines   []lyrics.Line     `json:"lines"`
	Text    string            `json:"text"`
	Meta    map[string]string `json:"meta"`
}

// ActiveLyricResponse is the line showing at a playback position.
type ActiveLyricResponse struct {
	PositionMs int64       `json:"positionMs"`
	Line       lyrics.Line `json:"line"`
	Index      int         `json:"index"`
}

// loadIndex reads the track's sidecar. A track without a sidecar gets an
// empty index, the same as an empty sidecar. It writes the error response
// itself and returns nil on failure.
func (h *Handlers) loadIndex(w http.ResponseWriter, track database.Track) *lyrics.Index {
	idx, err := h.lyrics.Load(track)
	if errors.Is(err, fs.ErrNotExist) {
		return lyrics.Parse("")
	}
	if err != nil {
		logging.Warn("failed to load lyrics for %s: %v", track.Path, err)
		writeJSONError(w, "Failed to load lyrics", http.StatusInternalServerError)
		return nil
	}
	return idx
}

// GetLyrics returns the parsed lyric lines of a track
func (h *Handlers) GetLyrics(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackFromRequest(w, r)
	if !ok {
		return
	}

	idx := h.loadIndex(w, track)
	if idx == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, LyricsResponse{
		TrackID: track.ID,
		Lines:   idx.Lines(),
		Text:    lyrics.Render(idx),
		Meta:    idx.Tags(),
	})
}

// GetActiveLyric returns the lyric line showing at ?position=<ms>, or 204
// when the position is before the first line.
func (h *Handlers) GetActiveLyric(w http.ResponseWriter, r *http.Request) {
	position, err := queryInt64(r, "position")
	if err != nil || position < 0 {
		writeJSONError(w, "position must be a non-negative number of milliseconds", http.StatusBadRequest)
		return
	}

	track, ok := h.trackFromRequest(w, r)
	if !ok {
		return
	}

	idx := h.loadIndex(w, track)
	if idx == nil {
		return
	}

	line, i, found := lyrics.ActiveLine(idx, position)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ActiveLyricResponse{PositionMs: position, Line: line, Index: i})
}
