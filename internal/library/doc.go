// Package library scans the music directory and keeps the database index
// current.
//
// The Scanner walks the directory and streams one Result per audio file or
// playlist over a channel; tag reading runs on a bounded worker pool. Track
// titles and artists come from embedded tags, falling back to the
// "Artist-Song" file name convention. Lyric sidecars are found next to each
// track.
//
// The Indexer consumes a scan, upserts in batches, removes entries that
// disappeared from disk and re-runs on a schedule or on demand. Hidden files
// and directories (prefixed with '.') are skipped.
package library
