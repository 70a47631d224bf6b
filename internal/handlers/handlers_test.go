package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"lrcplayer/internal/artwork"
	"lrcplayer/internal/database"
	"lrcplayer/internal/library"
	"lrcplayer/internal/player"
	"lrcplayer/internal/startup"

	"github.com/gorilla/mux"
)

type testServer struct {
	router   *mux.Router
	musicDir string
	db       *database.Database
	ctrl     *player.Controller
	tracks   []database.Track
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	musicDir := t.TempDir()
	writeFile(t, filepath.Join(musicDir, "Adele-Hello.mp3"), "not really audio")
	writeFile(t, filepath.Join(musicDir, "Adele-Hello.lrc"), "[ar:Adele]\n[00:01.00]Hello\n[00:05.00]It's me")
	writeFile(t, filepath.Join(musicDir, "Queen-Bicycle.mp3"), "also not audio")
	writeFile(t, filepath.Join(musicDir, "Mix.m3u"), "Adele-Hello.mp3\nmissing.mp3\n")

	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	idx := library.NewIndexer(db, library.NewScanner(musicDir, 2), 0)
	t.Cleanup(idx.Stop)
	if err := idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	tracks, err := db.GetTracks(ctx)
	if err != nil || len(tracks) != 2 {
		t.Fatalf("GetTracks() = %d tracks, %v", len(tracks), err)
	}

	config := &startup.Config{MusicDir: musicDir, LyricEncoding: "auto"}
	loader := player.FileLyricLoader{MusicDir: musicDir, Encoding: "auto"}
	ctrl := player.NewController(player.Config{
		Backend: player.NewClockBackend(3 * time.Minute),
		Lyrics:  loader,
		Mode:    player.ModeLoop,
		Seed:    1,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = ctrl.Run(runCtx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if err := ctrl.Enqueue(ctx, tracks); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	art := artwork.NewGenerator(t.TempDir(), musicDir, 32)

	r := mux.NewRouter()
	New(db, idx, ctrl, art, config).RegisterRoutes(r)

	return &testServer{router: r, musicDir: musicDir, db: db, ctrl: ctrl, tracks: tracks}
}

func (s *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) trackID(t *testing.T, title string) string {
	t.Helper()
	for _, tr := range s.tracks {
		if tr.Title == title {
			return tr.ID
		}
	}
	t.Fatalf("no track titled %q", title)
	return ""
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	tests := []struct {
		target string
		status int
	}{
		{"/health", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/livez", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/version", http.StatusOK},
	}

	for _, tt := range tests {
		rr := s.do(t, http.MethodGet, tt.target)
		if rr.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.target, rr.Code, tt.status)
		}
	}

	health := decode[HealthResponse](t, s.do(t, http.MethodGet, "/health"))
	if health.Status != statusHealthy || health.TracksIndexed != 2 || health.PlaylistsIndexed != 1 {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestTrackEndpoints(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/tracks")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/tracks = %d", rr.Code)
	}
	if tracks := decode[[]database.Track](t, rr); len(tracks) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(tracks))
	}

	id := s.trackID(t, "Hello")
	rr = s.do(t, http.MethodGet, "/api/tracks/"+id)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET track = %d", rr.Code)
	}
	if track := decode[database.Track](t, rr); track.Artist != "Adele" || !track.HasLyrics {
		t.Errorf("unexpected track %+v", track)
	}

	if rr := s.do(t, http.MethodGet, "/api/tracks/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown track = %d, want 404", rr.Code)
	}

	search := decode[SearchResponse](t, s.do(t, http.MethodGet, "/api/search?q=queen"))
	if search.Count != 1 || search.Tracks[0].Title != "Bicycle" {
		t.Errorf("unexpected search result %+v", search)
	}

	stats := decode[database.IndexStats](t, s.do(t, http.MethodGet, "/api/stats"))
	if stats.TotalTracks != 2 {
		t.Errorf("stats.TotalTracks = %d, want 2", stats.TotalTracks)
	}
}

func TestLyricsEndpoints(t *testing.T) {
	t.Parallel()
	s := setupServer(t)
	hello := s.trackID(t, "Hello")

	resp := decode[LyricsResponse](t, s.do(t, http.MethodGet, "/api/tracks/"+hello+"/lyrics"))
	if len(resp.Lines) != 2 || resp.Text != "Hello\nIt's me\n" || resp.Meta["ar"] != "Adele" {
		t.Errorf("unexpected lyrics %+v", resp)
	}

	tests := []struct {
		name   string
		query  string
		status int
		text   string
	}{
		{"before first line", "?position=500", http.StatusNoContent, ""},
		{"first line", "?position=1000", http.StatusOK, "Hello"},
		{"between lines", "?position=4999", http.StatusOK, "Hello"},
		{"second line", "?position=5000", http.StatusOK, "It's me"},
		{"negative", "?position=-1", http.StatusBadRequest, ""},
		{"missing", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodGet, "/api/tracks/"+hello+"/lyrics/active"+tt.query)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.text != "" {
				if got := decode[ActiveLyricResponse](t, rr); got.Line.Text != tt.text {
					t.Errorf("line = %q, want %q", got.Line.Text, tt.text)
				}
			}
		})
	}

	if rr := s.do(t, http.MethodGet, "/api/tracks/nope/lyrics"); rr.Code != http.StatusNotFound {
		t.Errorf("lyrics for unknown track = %d, want 404", rr.Code)
	}
}

// A track without a sidecar answers exactly like one with an empty sidecar.
func TestLyricsMissingMatchesEmpty(t *testing.T) {
	t.Parallel()
	s := setupServer(t)
	bicycle := s.trackID(t, "Bicycle")

	fetch := func() (int, string, int) {
		rr := s.do(t, http.MethodGet, "/api/tracks/"+bicycle+"/lyrics")
		active := s.do(t, http.MethodGet, "/api/tracks/"+bicycle+"/lyrics/active?position=5000")
		return rr.Code, rr.Body.String(), active.Code
	}

	missingCode, missingBody, missingActive := fetch()
	if missingCode != http.StatusOK || missingActive != http.StatusNoContent {
		t.Fatalf("missing sidecar: lyrics=%d active=%d, want 200 and 204", missingCode, missingActive)
	}

	var resp LyricsResponse
	if err := json.Unmarshal([]byte(missingBody), &resp); err != nil {
		t.Fatalf("decode %q: %v", missingBody, err)
	}
	if resp.Lines == nil || len(resp.Lines) != 0 || resp.Text != "" {
		t.Errorf("missing sidecar body = %+v, want no lines and empty text", resp)
	}

	writeFile(t, filepath.Join(s.musicDir, "Queen-Bicycle.lrc"), "")

	emptyCode, emptyBody, emptyActive := fetch()
	if emptyCode != missingCode || emptyBody != missingBody || emptyActive != missingActive {
		t.Errorf("empty sidecar = %d %q %d, missing sidecar = %d %q %d",
			emptyCode, emptyBody, emptyActive, missingCode, missingBody, missingActive)
	}
}

func TestStreamTrack(t *testing.T) {
	t.Parallel()
	s := setupServer(t)
	id := s.trackID(t, "Hello")

	rr := s.do(t, http.MethodGet, "/api/stream/"+id)
	if rr.Code != http.StatusOK {
		t.Fatalf("stream = %d", rr.Code)
	}
	if rr.Body.String() != "not really audio" {
		t.Errorf("body = %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stream/"+id, nil)
	req.Header.Set("Range", "bytes=0-2")
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusPartialContent || rr.Body.String() != "not" {
		t.Errorf("range request = %d %q", rr.Code, rr.Body.String())
	}
}

func TestGetArtworkMissing(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/tracks/"+s.trackID(t, "Hello")+"/artwork")
	if rr.Code != http.StatusNotFound {
		t.Errorf("artwork = %d, want 404", rr.Code)
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/playlists")
	if playlists := decode[[]database.Playlist](t, rr); len(playlists) != 1 || playlists[0].Name != "Mix" {
		t.Fatalf("unexpected playlists %+v", playlists)
	}

	pl := decode[PlaylistResponse](t, s.do(t, http.MethodGet, "/api/playlist/mix"))
	if len(pl.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", pl.Items)
	}
	if pl.Items[0].TrackID != s.trackID(t, "Hello") || pl.Items[1].Exists {
		t.Errorf("unexpected items %+v", pl.Items)
	}

	if rr := s.do(t, http.MethodGet, "/api/playlist/none"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown playlist = %d, want 404", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/api/playlist/Mix/play")
	if rr.Code != http.StatusOK {
		t.Fatalf("play playlist = %d: %s", rr.Code, rr.Body.String())
	}
	st := decode[player.State](t, rr)
	if st.QueueLength != 1 || st.Track == nil || st.Track.Title != "Hello" || st.State != player.StatePlaying {
		t.Errorf("unexpected state after playlist play %+v", st)
	}
}

func TestPlayerEndpoints(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	st := decode[player.State](t, s.do(t, http.MethodGet, "/api/player"))
	if st.QueueLength != 2 || st.Mode != player.ModeLoop {
		t.Fatalf("unexpected initial state %+v", st)
	}

	hello := -1
	for i, tr := range s.tracks {
		if tr.Title == "Hello" {
			hello = i
		}
	}

	rr := s.do(t, http.MethodPost, "/api/player/select?index="+strconv.Itoa(hello))
	if rr.Code != http.StatusOK {
		t.Fatalf("select = %d: %s", rr.Code, rr.Body.String())
	}

	rr = s.do(t, http.MethodPost, "/api/player/seek?position=6000")
	st = decode[player.State](t, rr)
	if st.Lyric == nil || st.Lyric.Text != "It's me" {
		t.Errorf("lyric after seek = %+v", st.Lyric)
	}

	lyr := decode[LyricsResponse](t, s.do(t, http.MethodGet, "/api/player/lyrics"))
	if len(lyr.Lines) != 2 {
		t.Errorf("player lyrics = %+v", lyr)
	}

	st = decode[player.State](t, s.do(t, http.MethodPost, "/api/player/pause"))
	if st.State != player.StatePaused {
		t.Errorf("state after pause = %s", st.State)
	}

	st = decode[player.State](t, s.do(t, http.MethodPost, "/api/player/mode?mode=sequential"))
	if st.Mode != player.ModeSequential {
		t.Errorf("mode = %s", st.Mode)
	}

	st = decode[player.State](t, s.do(t, http.MethodPost, "/api/player/volume?level=80"))
	if st.Volume != 80 {
		t.Errorf("volume = %d", st.Volume)
	}

	errorTests := []struct {
		target string
		status int
	}{
		{"/api/player/volume?level=101", http.StatusBadRequest},
		{"/api/player/volume", http.StatusBadRequest},
		{"/api/player/mode?mode=shuffle-all", http.StatusBadRequest},
		{"/api/player/select?index=9", http.StatusBadRequest},
		{"/api/player/seek?position=abc", http.StatusBadRequest},
	}
	for _, tt := range errorTests {
		if rr := s.do(t, http.MethodPost, tt.target); rr.Code != tt.status {
			t.Errorf("POST %s = %d, want %d", tt.target, rr.Code, tt.status)
		}
	}

	if rr := s.do(t, http.MethodPost, "/api/player/stop"); rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("unknown action = %d", rr.Code)
	}
}

func TestReindexEndpoint(t *testing.T) {
	t.Parallel()
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/reindex")
	if rr.Code != http.StatusAccepted && rr.Code != http.StatusOK {
		t.Fatalf("reindex = %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "started") && !strings.Contains(body, "already_running") {
		t.Errorf("unexpected body %q", body)
	}
}
