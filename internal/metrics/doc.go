// Package metrics provides Prometheus instrumentation for lrcplayer.
//
// All metrics are prefixed with "lrcplayer_" and registered through promauto,
// so importing the package is enough to expose them on the metrics endpoint.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//   - DBQueryTotal / DBQueryDuration: per-operation query outcome and latency
//   - DBTransactionDuration: batch transaction time by commit/rollback
//   - DBConnectionsOpen: open SQLite connections
//
// ## Library Metrics
//   - IndexerRunsTotal, IndexerLastRunTimestamp, IndexerLastRunDuration
//   - IndexerTracksProcessed, IndexerErrors, IndexerIsRunning
//   - ScannerTagReads, ScannerWorkers
//   - LibraryTracksTotal, LibraryTracksWithLyrics, LibraryPlaylistsTotal
//     (refreshed by Collector)
//
// ## Lyric Metrics
//   - LyricLoadsTotal: sidecar loads by result (success/missing/error)
//   - LyricLinesParsed / LyricLinesDropped: parse outcome per line
//
// ## Player Metrics
//   - PlayerTrackChanges, PlayerCommandsTotal, PlayerIsPlaying, PlayerQueueLength
//
// ## Artwork Metrics
//   - ArtworkRequestsTotal, ArtworkGenerationDuration
//
// Call InitializeMetrics once at startup so labelled series exist before
// their first observation.
package metrics
