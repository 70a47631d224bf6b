package player

import (
	"errors"
	"io/fs"
	"path/filepath"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/lyrics"
	"lrcplayer/internal/mediatypes"
)

// LyricLoader produces the lyric index for a track. It must return a
// usable (possibly empty) index even when it also returns an error.
type LyricLoader interface {
	Load(track database.Track) (*lyrics.Index, error)
}

// FileLyricLoader reads sidecar files from the music directory.
type FileLyricLoader struct {
	MusicDir string
	Encoding string
}

// Load reads the track's sidecar. Tracks indexed before their sidecar
// appeared are checked on disk as well.
func (l FileLyricLoader) Load(track database.Track) (*lyrics.Index, error) {
	var path string
	if track.LyricPath != "" {
		path = filepath.Join(l.MusicDir, filepath.FromSlash(track.LyricPath))
	} else {
		audio := filepath.Join(l.MusicDir, filepath.FromSlash(track.Path))
		found, ok := mediatypes.FindLyricSidecar(audio)
		if !ok {
			return lyrics.Parse(""), fs.ErrNotExist
		}
		path = found
	}

	idx, err := lyrics.LoadFile(path, l.Encoding)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to load lyrics for %s: %v", track.Path, err)
	}
	return idx, err
}
