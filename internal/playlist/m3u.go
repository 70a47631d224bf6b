package playlist

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// ParseM3U reads an M3U or M3U8 playlist. "#EXTINF" titles are attached to
// the entry that follows them; other comment lines are skipped.
func ParseM3U(m3uPath, musicDir string) (*Playlist, error) {
	data, err := os.ReadFile(m3uPath)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	playlist := &Playlist{
		Path:  m3uPath,
		Items: []Item{},
	}

	m3uDir := filepath.Dir(m3uPath)
	var title, pendingTitle string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#PLAYLIST:"):
			title = strings.TrimPrefix(line, "#PLAYLIST:")
		case strings.HasPrefix(line, "#EXTINF:"):
			// #EXTINF:<seconds>,<display title>
			if _, after, ok := strings.Cut(line, ","); ok {
				pendingTitle = strings.TrimSpace(after)
			}
		case strings.HasPrefix(line, "#"):
			continue
		default:
			item := resolveEntry(line, m3uDir, musicDir)
			item.Title = pendingTitle
			pendingTitle = ""
			playlist.Items = append(playlist.Items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	playlist.Name = playlistName(title, m3uPath)
	playlist.Count = len(playlist.Items)
	return playlist, nil
}
