package mediatypes

import (
	"os"
	"path/filepath"
	"strings"
)

// FileType represents the kind of a library file.
type FileType string

const (
	// FileTypeFolder represents a directory.
	FileTypeFolder FileType = "folder"
	// FileTypeAudio represents a playable audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeLyric represents a timed lyric sidecar.
	FileTypeLyric FileType = "lyric"
	// FileTypePlaylist represents a playlist file.
	FileTypePlaylist FileType = "playlist"
	// FileTypeImage represents cover art.
	FileTypeImage FileType = "image"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// AudioExtensions maps file extensions to whether they are playable audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".wma":  true,
	".ape":  true,
}

// LyricExtensions lists sidecar extensions in lookup order.
var LyricExtensions = []string{".lrc", ".LRC", ".txt"}

// PlaylistExtensions maps file extensions to whether they are supported playlist formats.
var PlaylistExtensions = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".wpl":  true,
}

// ImageExtensions maps file extensions to image formats usable as cover art.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// CoverNames are the folder image stems checked when a track has no
// embedded picture.
var CoverNames = []string{"cover", "folder", "front", "album"}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Audio
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".wma":  "audio/x-ms-wma",
	".ape":  "audio/x-ape",

	// Lyrics
	".lrc": "text/plain; charset=utf-8",
	".txt": "text/plain; charset=utf-8",

	// Playlists
	".m3u":  "audio/x-mpegurl",
	".m3u8": "application/vnd.apple.mpegurl",
	".wpl":  "application/vnd.ms-wpl",

	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp3").
func GetFileType(ext string) FileType {
	switch {
	case AudioExtensions[ext]:
		return FileTypeAudio
	case ext == ".lrc":
		return FileTypeLyric
	case PlaylistExtensions[ext]:
		return FileTypePlaylist
	case ImageExtensions[ext]:
		return FileTypeImage
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsAudioFile reports whether name has a playable audio extension.
func IsAudioFile(name string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsPlaylistFile reports whether name has a playlist extension.
func IsPlaylistFile(name string) bool {
	return PlaylistExtensions[strings.ToLower(filepath.Ext(name))]
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LyricSidecarPath returns the conventional ".lrc" path for an audio file:
// same directory, same stem.
func LyricSidecarPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".lrc"
}

// FindLyricSidecar returns the first existing sidecar next to audioPath,
// trying LyricExtensions in order.
func FindLyricSidecar(audioPath string) (string, bool) {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range LyricExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// FindFolderCover returns a cover image in dir, matching CoverNames
// case-insensitively.
func FindFolderCover(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, want := range CoverNames {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if ImageExtensions[ext] && strings.EqualFold(Stem(name), want) {
				return filepath.Join(dir, name), true
			}
		}
	}
	return "", false
}
