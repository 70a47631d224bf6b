package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lrcplayer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lrcplayer_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lrcplayer_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"result"}, // "commit" or "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Library indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_indexer_runs_total",
			Help: "Total number of library index runs",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_indexer_last_run_timestamp",
			Help: "Timestamp of the last library index run",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_indexer_last_run_duration_seconds",
			Help: "Duration of the last library index run in seconds",
		},
	)

	IndexerTracksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_indexer_tracks_processed_total",
			Help: "Total number of audio files processed by the indexer",
		},
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_indexer_errors_total",
			Help: "Total number of indexer errors",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_indexer_running",
			Help: "Whether the indexer is currently running (1 = running, 0 = idle)",
		},
	)

	ScannerTagReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_scanner_tag_reads_total",
			Help: "Total number of audio tag reads by result",
		},
		[]string{"status"}, // "success", "error"
	)

	ScannerWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_scanner_workers",
			Help: "Number of metadata workers used by the last scan",
		},
	)
)

// Library contents
var (
	LibraryTracksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_library_tracks_total",
			Help: "Number of audio tracks in the library",
		},
	)

	LibraryTracksWithLyrics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_library_tracks_with_lyrics",
			Help: "Number of tracks that have a lyric sidecar",
		},
	)

	LibraryPlaylistsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_library_playlists_total",
			Help: "Number of playlist files in the library",
		},
	)
)

// Lyric metrics
var (
	LyricLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_lyric_loads_total",
			Help: "Total number of lyric sidecar loads by result",
		},
		[]string{"status"}, // "success", "missing", "error"
	)

	LyricLinesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_lyric_lines_parsed_total",
			Help: "Total number of timed lyric keys produced",
		},
	)

	LyricLinesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_lyric_lines_dropped_total",
			Help: "Total number of lyric lines ignored as malformed",
		},
	)
)

// Player metrics
var (
	PlayerTrackChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lrcplayer_player_track_changes_total",
			Help: "Total number of track changes",
		},
	)

	PlayerCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_player_commands_total",
			Help: "Total number of player commands",
		},
		[]string{"command"},
	)

	PlayerIsPlaying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_player_playing",
			Help: "Whether the player is currently playing (1 = playing, 0 = paused/stopped)",
		},
	)

	PlayerQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lrcplayer_player_queue_length",
			Help: "Number of tracks in the play queue",
		},
	)
)

// Artwork metrics
var (
	ArtworkRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_artwork_requests_total",
			Help: "Total number of artwork requests by result",
		},
		[]string{"status"}, // "cache_hit", "generated", "not_found", "error"
	)

	ArtworkGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lrcplayer_artwork_generation_duration_seconds",
			Help:    "Artwork decode and resize duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lrcplayer_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lrcplayer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
