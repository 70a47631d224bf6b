package handlers

import (
	"lrcplayer/internal/artwork"
	"lrcplayer/internal/database"
	"lrcplayer/internal/library"
	"lrcplayer/internal/player"
	"lrcplayer/internal/startup"

	"github.com/gorilla/mux"
)

type Handlers struct {
	db       *database.Database
	indexer  *library.Indexer
	player   *player.Controller
	artwork  *artwork.Generator
	lyrics   player.LyricLoader
	musicDir string
}

// New creates the handlers. art may be nil when the artwork cache is
// unavailable.
func New(db *database.Database, idx *library.Indexer, ctrl *player.Controller, art *artwork.Generator, config *startup.Config) *Handlers {
	return &Handlers{
		db:       db,
		indexer:  idx,
		player:   ctrl,
		artwork:  art,
		lyrics:   player.FileLyricLoader{MusicDir: config.MusicDir, Encoding: config.LyricEncoding},
		musicDir: config.MusicDir,
	}
}

// RegisterRoutes adds every API route to r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tracks", h.ListTracks).Methods("GET")
	api.HandleFunc("/tracks/{id}", h.GetTrack).Methods("GET")
	api.HandleFunc("/tracks/{id}/lyrics", h.GetLyrics).Methods("GET")
	api.HandleFunc("/tracks/{id}/lyrics/active", h.GetActiveLyric).Methods("GET")
	api.HandleFunc("/tracks/{id}/artwork", h.GetArtwork).Methods("GET")
	api.HandleFunc("/stream/{id}", h.StreamTrack).Methods("GET", "HEAD")
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/reindex", h.TriggerReindex).Methods("POST")

	api.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	api.HandleFunc("/playlist/{name}", h.GetPlaylist).Methods("GET")
	api.HandleFunc("/playlist/{name}/play", h.PlayPlaylist).Methods("POST")

	api.HandleFunc("/player", h.GetPlayerState).Methods("GET")
	api.HandleFunc("/player/lyrics", h.GetPlayerLyrics).Methods("GET")
	api.HandleFunc("/player/seek", h.Seek).Methods("POST")
	api.HandleFunc("/player/mode", h.SetMode).Methods("POST")
	api.HandleFunc("/player/select", h.Select).Methods("POST")
	api.HandleFunc("/player/volume", h.SetVolume).Methods("POST")
	api.HandleFunc("/player/{action:play|pause|toggle|next|previous}", h.PlayerAction).Methods("POST")
}
