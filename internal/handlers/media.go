package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"lrcplayer/internal/artwork"
	"lrcplayer/internal/filesystem"
	"lrcplayer/internal/logging"
)

// StreamTrack serves the audio file of a track. Range requests are
// supported so clients can seek.
func (h *Handlers) StreamTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := h.trackFromRequest(w, r)
	if !ok {
		return
	}

	fullPath := filepath.Join(h.musicDir, filepath.FromSlash(track.Path))
	if !isSubPath(h.musicDir, fullPath) {
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	f, err := filesystem.OpenWithRetry(fullPath, filesystem.DefaultRetryConfig())
	if errors.Is(err, os.ErrNotExist) {
		writeJSONError(w, "Audio file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to open %s: %v", fullPath, err)
		writeJSONError(w, "Failed to open audio file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeJSONError(w, "Failed to stat audio file", http.StatusInternalServerError)
		return
	}

	if track.MimeType != "" {
		w.Header().Set("Content-Type", track.MimeType)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// GetArtwork returns the cover image of a track
func (h *Handlers) GetArtwork(w http.ResponseWriter, r *http.Request) {
	if h.artwork == nil {
		writeJSONError(w, "Artwork is disabled", http.StatusNotFound)
		return
	}

	track, ok := h.trackFromRequest(w, r)
	if !ok {
		return
	}

	data, err := h.artwork.Get(track)
	if errors.Is(err, artwork.ErrNoArtwork) {
		writeJSONError(w, "No artwork for track", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Warn("artwork for %s failed: %v", track.Path, err)
		writeJSONError(w, "Failed to generate artwork", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("artwork write failed: %v", err)
	}
}

func isSubPath(parent, child string) bool {
	parent, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	child, err = filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && (len(rel) < 3 || rel[:3] != ".."+string(filepath.Separator))
}
