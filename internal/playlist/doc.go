// Package playlist parses the playlist files found in the music directory.
//
// M3U/M3U8 and Windows Media Player (.wpl) playlists are supported. Entries
// are resolved against the playlist's own directory and then the music
// directory, so playlists written on another machine still find their
// tracks when the file names match.
package playlist
