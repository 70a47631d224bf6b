// Package handlers provides the HTTP API of the lyric player.
//
// It includes handlers for:
//   - Track listing, lookup and search
//   - Timed lyrics and the line active at a given position
//   - Audio streaming with range support and cover artwork
//   - Playlists
//   - Player transport control and state
//   - Health checks, version information and manual re-indexing
package handlers
