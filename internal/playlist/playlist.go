package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Playlist is a parsed playlist file.
type Playlist struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// Item is one playlist entry. Path is relative to the music directory and
// uses forward slashes, matching database.Track.Path.
type Item struct {
	Title    string `json:"title,omitempty"`
	Path     string `json:"path"`
	OrigPath string `json:"origPath"`
	Exists   bool   `json:"exists"`
}

// Parse reads a playlist, choosing the format by extension.
func Parse(path, musicDir string) (*Playlist, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u", ".m3u8":
		return ParseM3U(path, musicDir)
	case ".wpl":
		return ParseWPL(path, musicDir)
	default:
		return nil, fmt.Errorf("unsupported playlist format: %s", filepath.Ext(path))
	}
}

// playlistName falls back to the file stem when a playlist has no title.
func playlistName(title, path string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// resolveEntry locates a playlist entry on disk. It tries the entry as an
// absolute path, then relative to the playlist, then by file name at the
// root of the music directory.
func resolveEntry(src, playlistDir, musicDir string) Item {
	// Handle Windows paths
	srcPath := strings.ReplaceAll(strings.TrimSpace(src), "\\", "/")

	var candidates []string
	if filepath.IsAbs(srcPath) {
		candidates = append(candidates, filepath.Clean(srcPath))
	} else {
		candidates = append(candidates, filepath.Join(playlistDir, filepath.FromSlash(srcPath)))
	}
	candidates = append(candidates, filepath.Join(musicDir, filepath.Base(srcPath)))

	item := Item{OrigPath: src}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		rel, err := filepath.Rel(musicDir, candidate)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		item.Path = filepath.ToSlash(rel)
		item.Exists = true
		return item
	}

	item.Path = filepath.Base(srcPath)
	return item
}
