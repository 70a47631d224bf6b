// Package artwork extracts and caches cover art for tracks.
//
// Covers come from the picture embedded in the audio file's tags or, when
// there is none, from a cover image in the track's folder. They are cropped
// to a square, JPEG-encoded and cached on disk by track ID.
package artwork
