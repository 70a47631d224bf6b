package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/playlist"

	"github.com/gorilla/mux"
)

// PlaylistItem is a playlist entry with the ID of the matching track.
type PlaylistItem struct {
	playlist.Item
	TrackID string `json:"trackId,omitempty"`
}

// PlaylistResponse is a parsed playlist.
type PlaylistResponse struct {
	Name  string         `json:"name"`
	Path  string         `json:"path"`
	Items []PlaylistItem `json:"items"`
	Count int            `json:"count"`
}

// ListPlaylists returns all playlist files found in the library
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.db.GetPlaylists(r.Context())
	if err != nil {
		writeJSONError(w, "Failed to get playlists", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, playlists)
}

// loadPlaylist parses the playlist named by the route and resolves its
// entries to tracks.
func (h *Handlers) loadPlaylist(w http.ResponseWriter, r *http.Request) (*PlaylistResponse, []database.Track, bool) {
	name := mux.Vars(r)["name"]

	p, err := h.db.GetPlaylist(r.Context(), name)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Playlist not found", http.StatusNotFound)
		return nil, nil, false
	}
	if err != nil {
		writeJSONError(w, "Failed to get playlist", http.StatusInternalServerError)
		return nil, nil, false
	}

	pl, err := playlist.Parse(filepath.Join(h.musicDir, filepath.FromSlash(p.Path)), h.musicDir)
	if err != nil {
		logging.Warn("failed to parse playlist %s: %v", p.Path, err)
		writeJSONError(w, "Failed to parse playlist", http.StatusInternalServerError)
		return nil, nil, false
	}

	resp, tracks := h.resolveItems(r.Context(), pl)
	resp.Path = p.Path
	return resp, tracks, true
}

func (h *Handlers) resolveItems(ctx context.Context, pl *playlist.Playlist) (*PlaylistResponse, []database.Track) {
	resp := &PlaylistResponse{
		Name:  pl.Name,
		Items: make([]PlaylistItem, 0, len(pl.Items)),
		Count: pl.Count,
	}

	var tracks []database.Track
	for _, item := range pl.Items {
		pi := PlaylistItem{Item: item}
		if item.Exists {
			if t, err := h.db.GetTrackByPath(ctx, item.Path); err == nil {
				pi.TrackID = t.ID
				tracks = append(tracks, t)
			}
		}
		resp.Items = append(resp.Items, pi)
	}
	return resp, tracks
}

// GetPlaylist returns the contents of a playlist
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	resp, _, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// PlayPlaylist replaces the play queue with the playlist's tracks and
// starts the first one.
func (h *Handlers) PlayPlaylist(w http.ResponseWriter, r *http.Request) {
	_, tracks, ok := h.loadPlaylist(w, r)
	if !ok {
		return
	}
	if len(tracks) == 0 {
		writeJSONError(w, "Playlist has no playable tracks", http.StatusConflict)
		return
	}

	if err := h.player.Replace(r.Context(), tracks); err != nil {
		h.writePlayerError(w, err)
		return
	}
	if err := h.player.Select(r.Context(), 0); err != nil {
		h.writePlayerError(w, err)
		return
	}
	h.writePlayerState(w, r)
}
