package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lrcplayer/internal/artwork"
	"lrcplayer/internal/database"
	"lrcplayer/internal/filesystem"
	"lrcplayer/internal/handlers"
	"lrcplayer/internal/library"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/metrics"
	"lrcplayer/internal/middleware"
	"lrcplayer/internal/player"
	"lrcplayer/internal/startup"
	"lrcplayer/internal/state"
	"lrcplayer/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	collectInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		config.MusicDir:    "music",
		config.CacheDir:    "cache",
		config.DatabaseDir: "database",
	}))

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)

	// Resume state
	store, backend, storeErr := openStateStore(ctx, config)
	startup.LogStateStoreInit(backend, storeErr)

	// Player
	ctrl := player.NewController(player.Config{
		Backend: player.NewClockBackend(0),
		Lyrics:  player.FileLyricLoader{MusicDir: config.MusicDir, Encoding: config.LyricEncoding},
		Store:   store,
		Mode:    config.PlaybackMode,
	})
	playerCtx, stopPlayer := context.WithCancel(ctx)
	playerDone := make(chan struct{})
	go func() {
		defer close(playerDone)
		if err := ctrl.Run(playerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Player stopped: %v", err)
		}
	}()
	startup.LogPlayerInit(config.PlaybackMode, config.LyricEncoding)

	// Indexer
	numWorkers := config.ScanWorkers
	if numWorkers <= 0 {
		numWorkers = workers.ForIO(16)
	}
	startup.LogIndexerInit(config.IndexInterval, numWorkers)
	idx := library.NewIndexer(db, library.NewScanner(config.MusicDir, numWorkers), config.IndexInterval)
	idx.SetOnIndexComplete(func() { refreshQueue(playerCtx, db, ctrl) })
	idx.Start()
	startup.LogIndexerStarted()

	collector := metrics.NewCollector(idx, collectInterval)
	collector.Start()

	var art *artwork.Generator
	if config.ArtworkEnabled {
		art = artwork.NewGenerator(config.ArtworkDir, config.MusicDir, artwork.DefaultSize)
	}

	// Router
	h := handlers.New(db, idx, ctrl, art, config)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           wrapHandler(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // streams can be long
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	svc := &services{
		srv:        srv,
		metricsSrv: metricsSrv,
		indexer:    idx,
		collector:  collector,
		stopPlayer: stopPlayer,
		playerDone: playerDone,
		store:      store,
	}
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sig := waitForSignal()
		startup.LogShutdownInitiated(sig.String())
		svc.shutdown()
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown starts; the remaining steps
	// must finish before the deferred database close runs.
	<-shutdownDone
}

// openStateStore connects to Redis when REDIS_URL is set and falls back to
// memory otherwise. The returned error is the Redis failure, if any; the
// store is always usable.
func openStateStore(ctx context.Context, config *startup.Config) (state.Store, string, error) {
	if config.RedisURL == "" {
		return state.NewMemoryStore(), "memory", nil
	}

	redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := state.NewRedisStore(redisCtx, config.RedisURL, config.RedisPassword)
	if err != nil {
		return state.NewMemoryStore(), "memory", err
	}
	return store, "redis", nil
}

// refreshQueue replaces the play queue with the freshly indexed library.
func refreshQueue(ctx context.Context, db *database.Database, ctrl *player.Controller) {
	tracks, err := db.GetTracks(ctx)
	if err != nil {
		logging.Error("Failed to load tracks for the play queue: %v", err)
		return
	}
	if err := ctrl.Replace(ctx, tracks); err != nil && !errors.Is(err, player.ErrStopped) {
		logging.Warn("Failed to refresh play queue: %v", err)
		return
	}
	logging.Info("Play queue refreshed: %d tracks", len(tracks))
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	// Runs after route matching so the route template is available.
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	return r
}

func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.RequestID(handler)
	return middleware.Compression(middleware.DefaultCompressionConfig())(handler)
}

func newMetricsServer(port string) *http.Server {
	sm := http.NewServeMux()
	sm.Handle("/metrics", promhttp.Handler())
	sm.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              ":" + port,
		Handler:           sm,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// services holds everything stopped on shutdown.
type services struct {
	srv        *http.Server
	metricsSrv *http.Server
	indexer    *library.Indexer
	collector  *metrics.Collector
	stopPlayer context.CancelFunc
	playerDone <-chan struct{}
	store      state.Store
}

func waitForSignal() os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return <-sigChan
}

// shutdown stops every service. It returns once the player has saved its
// resume state and the state store is closed.
func (s *services) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping metrics collector")
	s.collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping indexer")
	s.indexer.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	startup.LogShutdownStep("Stopping player")
	s.stopPlayer()
	select {
	case <-s.playerDone:
		startup.LogShutdownStepComplete("Player stopped, resume state saved")
	case <-ctx.Done():
		logging.Warn("Player did not stop before the shutdown timeout")
	}

	if err := s.store.Close(); err != nil {
		logging.Warn("Failed to close state store: %v", err)
	}

	if s.metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
