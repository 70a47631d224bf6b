// Package main provides the entry point for the lrcplayer service.
//
// lrcplayer indexes a music directory, pairs each audio file with its
// timed lyric sidecar (.lrc) and runs a headless player whose queue,
// playback mode and active lyric line are controlled over HTTP.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads .env and environment variables and validates directories
//  2. Database Initialization: Opens the SQLite library index
//  3. Component Initialization:
//     - Resume State: Redis when REDIS_URL is set, in-memory otherwise
//     - Player: Starts the controller goroutine and restores the last session
//     - Indexer: Walks the music directory and refreshes the play queue after each run
//     - Metrics Collector: Publishes library gauges every minute
//     - Artwork: Caches square cover thumbnails when the cache is writable
//  4. HTTP Server Setup: Registers routes and middleware and starts the servers
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM and saves the resume state
//
// # HTTP Server
//
//  1. Main Server (default port 8080):
//     - Library, lyric, playlist and player API under /api
//     - Audio streaming with range requests
//     - Health endpoints (/health, /livez, /readyz)
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Environment Variables
//
//   - MUSIC_DIR: Root directory containing audio and lyric files (default: /music)
//   - CACHE_DIR: Directory for generated artwork (default: /cache)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - INDEX_INTERVAL: Library scan interval (default: 30m)
//   - LYRIC_ENCODING: Sidecar encoding, "auto" or a WHATWG label (default: auto)
//   - PLAYBACK_MODE: random, loop or sequential (default: random)
//   - REDIS_URL, REDIS_PASSWORD: Resume state store (optional)
//   - SCAN_WORKERS: Tag reader goroutines (default: 2 per CPU, at most 16)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// # Graceful Shutdown
//
//  1. Stop accepting new HTTP requests
//  2. Stop metrics collector
//  3. Stop indexer
//  4. Stop the player and save the resume position
//  5. Close the state store
//  6. Shutdown metrics server (if running)
//  7. Close database connections
//
// # Related Packages
//
//   - [lrcplayer/internal/lyrics]: Timed lyric parsing and lookup
//   - [lrcplayer/internal/player]: Play queue and playback modes
//   - [lrcplayer/internal/library]: Music directory scanning and indexing
//   - [lrcplayer/internal/database]: SQLite library index
//   - [lrcplayer/internal/handlers]: HTTP request handlers
//   - [lrcplayer/internal/middleware]: HTTP middleware (logging, metrics, compression)
//   - [lrcplayer/internal/startup]: Configuration and initialization
package main
