// Package database stores the scanned music library in SQLite.
//
// It holds:
//   - Tracks (audio files with their tag metadata and lyric sidecar)
//   - Playlists found in the music directory
//   - Key/value metadata such as the time of the last index run
//
// The database runs in WAL mode so HTTP reads are not blocked while the
// indexer writes a batch.
package database
