package handlers

import (
	"context"
	"errors"
	"net/http"

	"lrcplayer/internal/logging"
	"lrcplayer/internal/lyrics"
	"lrcplayer/internal/player"

	"github.com/gorilla/mux"
)

// writePlayerError maps controller errors to status codes.
func (h *Handlers) writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, player.ErrInvalidIndex),
		errors.Is(err, player.ErrInvalidVolume),
		errors.Is(err, player.ErrInvalidMode):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, player.ErrEmptyQueue), errors.Is(err, player.ErrNoTrack):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, player.ErrStopped):
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Debug("player command abandoned: %v", err)
		writeJSONError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		logging.Error("player command failed: %v", err)
		writeJSONError(w, "Player error", http.StatusInternalServerError)
	}
}

func (h *Handlers) writePlayerState(w http.ResponseWriter, r *http.Request) {
	state, err := h.player.Snapshot(r.Context())
	if err != nil {
		h.writePlayerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, state)
}

// GetPlayerState returns the current player snapshot
func (h *Handlers) GetPlayerState(w http.ResponseWriter, r *http.Request) {
	h.writePlayerState(w, r)
}

// GetPlayerLyrics returns the lyric lines of the current track
func (h *Handlers) GetPlayerLyrics(w http.ResponseWriter, r *http.Request) {
	idx, err := h.player.Lyrics(r.Context())
	if err != nil {
		h.writePlayerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, LyricsResponse{
		Lines: idx.Lines(),
		Text:  lyrics.Render(idx),
		Meta:  idx.Tags(),
	})
}

// PlayerAction handles the argument-free transport commands
func (h *Handlers) PlayerAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error
	switch mux.Vars(r)["action"] {
	case "play":
		err = h.player.Play(ctx)
	case "pause":
		err = h.player.Pause(ctx)
	case "toggle":
		err = h.player.Toggle(ctx)
	case "next":
		err = h.player.Next(ctx)
	case "previous":
		err = h.player.Previous(ctx)
	default:
		writeJSONError(w, "Unknown action", http.StatusNotFound)
		return
	}

	if err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}

// Seek moves playback to ?position=<ms>
func (h *Handlers) Seek(w http.ResponseWriter, r *http.Request) {
	position, err := queryInt64(r, "position")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.player.Seek(r.Context(), position); err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}

// SetMode changes the playback mode to ?mode=random|loop|sequential
func (h *Handlers) SetMode(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		writeJSONError(w, "missing mode parameter", http.StatusBadRequest)
		return
	}

	if err := h.player.SetMode(r.Context(), player.Mode(mode)); err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}

// Select plays the queue entry at ?index=
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	index, err := queryInt64(r, "index")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.player.Select(r.Context(), int(index)); err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}

// SetVolume sets the volume to ?level=0..100
func (h *Handlers) SetVolume(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt64(r, "level")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.player.SetVolume(r.Context(), int(level)); err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}
