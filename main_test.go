package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lrcplayer/internal/database"
	"lrcplayer/internal/handlers"
	"lrcplayer/internal/library"
	"lrcplayer/internal/metrics"
	"lrcplayer/internal/middleware"
	"lrcplayer/internal/player"
	"lrcplayer/internal/startup"
	"lrcplayer/internal/state"
)

type app struct {
	config *startup.Config
	db     *database.Database
	idx    *library.Indexer
	ctrl   *player.Controller
}

func setupApp(t *testing.T) *app {
	t.Helper()

	musicDir := t.TempDir()
	for name, content := range map[string]string{
		"Adele-Hello.mp3":   "x",
		"Adele-Hello.lrc":   "[00:01.00]Hello",
		"Queen-Bicycle.mp3": "x",
	} {
		if err := os.WriteFile(filepath.Join(musicDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	idx := library.NewIndexer(db, library.NewScanner(musicDir, 2), 0)
	t.Cleanup(idx.Stop)

	ctrl := player.NewController(player.Config{Backend: player.NewClockBackend(time.Minute), Seed: 7})
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

	return &app{
		config: &startup.Config{MusicDir: musicDir, LyricEncoding: "auto", LogHealthChecks: true},
		db:     db,
		idx:    idx,
		ctrl:   ctrl,
	}
}

func TestOpenStateStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, backend, err := openStateStore(ctx, &startup.Config{})
	if err != nil || backend != "memory" {
		t.Fatalf("openStateStore() = %s, %v; want memory, nil", backend, err)
	}
	if _, ok := store.(*state.MemoryStore); !ok {
		t.Errorf("store is %T, want *state.MemoryStore", store)
	}

	// Port 1 is never a Redis server; the store must still be usable.
	store, backend, err = openStateStore(ctx, &startup.Config{RedisURL: "redis://127.0.0.1:1/0"})
	if err == nil {
		t.Fatal("expected an error connecting to an unreachable Redis")
	}
	if backend != "memory" || store == nil {
		t.Errorf("fallback = %s %T, want memory store", backend, store)
	}
	if err := store.Save(ctx, state.Resume{TrackID: "a"}); err != nil {
		t.Errorf("fallback store Save() error = %v", err)
	}
}

func TestRefreshQueue(t *testing.T) {
	t.Parallel()
	a := setupApp(t)
	ctx := context.Background()

	a.idx.SetOnIndexComplete(func() { refreshQueue(ctx, a.db, a.ctrl) })
	if err := a.idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	st, err := a.ctrl.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if st.QueueLength != 2 {
		t.Errorf("queue length = %d, want 2", st.QueueLength)
	}

	// A second run must not duplicate the queue.
	if err := a.idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if st, _ := a.ctrl.Snapshot(ctx); st.QueueLength != 2 {
		t.Errorf("queue length after reindex = %d, want 2", st.QueueLength)
	}
}

func TestSetupRouter(t *testing.T) {
	t.Parallel()
	a := setupApp(t)

	router := setupRouter(handlers.New(a.db, a.idx, a.ctrl, nil, a.config))

	routes, err := startup.GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}

	want := map[string]bool{
		"GET /api/tracks":                    false,
		"GET /api/tracks/{id}/lyrics/active": false,
		"GET /api/stream/{id}":               false,
		"POST /api/player/seek":              false,
		"POST /api/playlist/{name}/play":     false,
		"GET /readyz":                        false,
		"POST /api/player/{action:play|pause|toggle|next|previous}": false,
	}
	for _, r := range routes {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestWrapHandler(t *testing.T) {
	t.Parallel()
	a := setupApp(t)

	handler := wrapHandler(setupRouter(handlers.New(a.db, a.idx, a.ctrl, nil, a.config)), a.config)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("GET /livez = %d", rr.Code)
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response has no request ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/player", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /api/player = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestMetricsServer(t *testing.T) {
	t.Parallel()

	srv := newMetricsServer("0")
	for _, path := range []string{"/metrics", "/health"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rr.Code)
		}
	}
}

func TestShutdownWaitsForResumeState(t *testing.T) {
	t.Parallel()
	a := setupApp(t)
	ctx := context.Background()

	store := state.NewMemoryStore()
	ctrl := player.NewController(player.Config{
		Backend: player.NewClockBackend(time.Minute),
		Store:   store,
		Mode:    player.ModeLoop,
		Seed:    3,
	})
	runCtx, stopPlayer := context.WithCancel(ctx)
	playerDone := make(chan struct{})
	go func() {
		_ = ctrl.Run(runCtx)
		close(playerDone)
	}()

	track := database.Track{ID: "abc", Path: "Adele-Hello.mp3", Title: "Hello"}
	if err := ctrl.Enqueue(ctx, []database.Track{track}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := ctrl.Select(ctx, 0); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := ctrl.Pause(ctx); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if err := ctrl.Seek(ctx, 12000); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	svc := &services{
		srv:        srv,
		indexer:    a.idx,
		collector:  metrics.NewCollector(nil, time.Hour),
		stopPlayer: stopPlayer,
		playerDone: playerDone,
		store:      store,
	}
	svc.shutdown()

	select {
	case <-playerDone:
	default:
		t.Fatal("shutdown returned before the player stopped")
	}

	resume, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resume.TrackID != "abc" || resume.PositionMs != 12000 || resume.Mode != "loop" {
		t.Errorf("saved resume = %+v", resume)
	}

	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Serve() = %v, want ErrServerClosed", err)
	}
	if err := ctrl.Next(ctx); !errors.Is(err, player.ErrStopped) {
		t.Errorf("Next() after shutdown = %v, want ErrStopped", err)
	}
}
