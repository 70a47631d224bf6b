// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// A .env file in the working directory is read first; variables that are
// already set take precedence. Supported variables:
//
//   - MUSIC_DIR: Path to the music library (default: /music)
//   - CACHE_DIR: Path to the cache directory for artwork (default: /cache)
//   - DATABASE_DIR: Path to the database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - INDEX_INTERVAL: Full re-index interval as Go duration (default: 30m)
//   - LYRIC_ENCODING: Sidecar text encoding, a WHATWG label or "auto" (default: auto)
//   - PLAYBACK_MODE: random, loop or sequential (default: random)
//   - REDIS_URL: Redis address for resume state; unset keeps state in memory
//   - REDIS_PASSWORD: Redis password, overrides one in REDIS_URL
//   - SCAN_WORKERS: Number of tag-reading workers (default: based on CPUs)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - DEBUG: Shorthand for LOG_LEVEL=debug
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
