package database

import "time"

// Track is one audio file in the library.
type Track struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album,omitempty"`
	TrackNumber int       `json:"trackNumber,omitempty"`
	Year        int       `json:"year,omitempty"`
	Format      string    `json:"format,omitempty"`
	MimeType    string    `json:"mimeType"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
	LyricPath   string    `json:"-"`
	HasLyrics   bool      `json:"hasLyrics"`
	HasPicture  bool      `json:"hasPicture"`
}

// DisplayName is "Artist - Title", the label a player shows for the track.
func (t Track) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// Playlist is a playlist file found in the music directory.
type Playlist struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// IndexStats summarizes the library after an index run.
type IndexStats struct {
	TotalTracks      int       `json:"totalTracks"`
	TracksWithLyrics int       `json:"tracksWithLyrics"`
	TotalArtists     int       `json:"totalArtists"`
	TotalPlaylists   int       `json:"totalPlaylists"`
	LastIndexed      time.Time `json:"lastIndexed"`
	IndexDuration    string    `json:"indexDuration"`
}
