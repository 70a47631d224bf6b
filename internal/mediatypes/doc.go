// Package mediatypes holds the file classification rules shared by the
// scanner, the HTTP layer and the player.
//
// It knows which extensions are audio, lyric sidecars, playlists and cover
// images, maps them to MIME types, and locates the files that belong next
// to a track:
//
//	lrc, ok := mediatypes.FindLyricSidecar("/music/Artist-Song.mp3")
//	// "/music/Artist-Song.lrc", true
//
// The package has no dependencies outside the standard library so any
// other package can import it without creating cycles.
package mediatypes
