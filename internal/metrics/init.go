package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, op := range []string{"initialize_schema", "upsert_track", "upsert_playlist",
		"delete_missing", "get_tracks", "get_track", "get_track_by_path", "search_tracks",
		"get_playlists", "calculate_stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, r := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(r)
	}

	for _, s := range []string{"success", "error"} {
		ScannerTagReads.WithLabelValues(s)
	}

	for _, s := range []string{"success", "missing", "error"} {
		LyricLoadsTotal.WithLabelValues(s)
	}

	for _, c := range []string{"enqueue", "select", "next", "previous", "play", "pause",
		"toggle", "seek", "mode", "volume", "snapshot", "lyrics", "replace"} {
		PlayerCommandsTotal.WithLabelValues(c)
	}

	for _, s := range []string{"cache_hit", "generated", "not_found", "error"} {
		ArtworkRequestsTotal.WithLabelValues(s)
	}
}
