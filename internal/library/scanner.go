package library

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"golang.org/x/crypto/blake2b"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/mediatypes"
	"lrcplayer/internal/metrics"
	"lrcplayer/internal/workers"
)

// UnknownArtist is used when neither tags nor the file name give an artist.
const UnknownArtist = "Unknown Artist"

// Result is one message from a scan: either a track or a playlist.
type Result struct {
	Track    *database.Track
	Playlist *database.Playlist
}

// Scanner walks a music directory and reads audio metadata.
type Scanner struct {
	musicDir string
	workers  int
}

// NewScanner creates a scanner for musicDir. A worker count of zero or
// less picks one from the CPU count.
func NewScanner(musicDir string, numWorkers int) *Scanner {
	if numWorkers <= 0 {
		numWorkers = workers.ForIO(16)
	}
	return &Scanner{musicDir: musicDir, workers: numWorkers}
}

// MusicDir returns the directory being scanned.
func (s *Scanner) MusicDir() string {
	return s.musicDir
}

// Scan walks the music directory and streams one Result per audio file or
// playlist. The channel is closed when the walk finishes or ctx is done.
func (s *Scanner) Scan(ctx context.Context) <-chan Result {
	out := make(chan Result, s.workers*2)
	jobs := make(chan string, s.workers*4)

	metrics.ScannerWorkers.Set(float64(s.workers))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		s.walk(ctx, jobs, out)
	}()

	tracks := workers.Process(ctx, s.workers, jobs, s.readTrack)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for t := range tracks {
			select {
			case out <- Result{Track: t}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// walk sends audio paths to jobs and emits playlists directly.
func (s *Scanner) walk(ctx context.Context, jobs chan<- string, out chan<- Result) {
	err := filepath.WalkDir(s.musicDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			metrics.IndexerErrors.Inc()
			return nil
		}

		if path != s.musicDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		switch {
		case mediatypes.IsAudioFile(path):
			select {
			case jobs <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		case mediatypes.IsPlaylistFile(path):
			if p, ok := s.playlistFor(path, d); ok {
				select {
				case out <- Result{Playlist: p}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Walk of %s failed: %v", s.musicDir, err)
		metrics.IndexerErrors.Inc()
	}
}

func (s *Scanner) playlistFor(path string, d fs.DirEntry) (*database.Playlist, bool) {
	info, err := d.Info()
	if err != nil {
		return nil, false
	}
	rel, err := s.relPath(path)
	if err != nil {
		return nil, false
	}
	return &database.Playlist{
		Name:    mediatypes.Stem(path),
		Path:    rel,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}

func (s *Scanner) relPath(path string) (string, error) {
	rel, err := filepath.Rel(s.musicDir, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// readTrack builds a Track from tags, falling back to the file name.
func (s *Scanner) readTrack(path string) (*database.Track, bool) {
	info, err := os.Stat(path)
	if err != nil {
		logging.Warn("Cannot stat %s: %v", path, err)
		return nil, false
	}
	rel, err := s.relPath(path)
	if err != nil {
		return nil, false
	}

	ext := strings.ToLower(filepath.Ext(path))
	t := &database.Track{
		ID:       TrackID(rel),
		Path:     rel,
		Format:   strings.TrimPrefix(ext, "."),
		MimeType: mediatypes.GetMimeType(ext),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}

	readTags(path, t)

	artist, title := SplitStem(mediatypes.Stem(path))
	if t.Title == "" {
		t.Title = title
	}
	if t.Artist == "" {
		t.Artist = artist
	}

	if lrc, ok := mediatypes.FindLyricSidecar(path); ok {
		if relLrc, err := s.relPath(lrc); err == nil {
			t.LyricPath = relLrc
			t.HasLyrics = true
		}
	}

	metrics.IndexerTracksProcessed.Inc()
	return t, true
}

func readTags(path string, t *database.Track) {
	f, err := os.Open(path)
	if err != nil {
		metrics.ScannerTagReads.WithLabelValues("error").Inc()
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			logging.Debug("Tag read error: %s: %v", filepath.Base(path), err)
		}
		metrics.ScannerTagReads.WithLabelValues("error").Inc()
		return
	}
	metrics.ScannerTagReads.WithLabelValues("success").Inc()

	t.Title = strings.TrimSpace(m.Title())
	t.Artist = strings.TrimSpace(m.Artist())
	if t.Artist == "" {
		t.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	t.Album = strings.TrimSpace(m.Album())
	t.TrackNumber, _ = m.Track()
	t.Year = m.Year()
	t.HasPicture = m.Picture() != nil
}

// SplitStem derives artist and title from a file stem of the form
// "Artist-Song". The split happens at the first hyphen. Stems without a
// hyphen, or with an empty side, give UnknownArtist and the whole stem.
func SplitStem(stem string) (artist, title string) {
	before, after, ok := strings.Cut(stem, "-")
	artist, title = strings.TrimSpace(before), strings.TrimSpace(after)
	if !ok || artist == "" || title == "" {
		return UnknownArtist, strings.TrimSpace(stem)
	}
	return artist, title
}

// TrackID is the stable identifier for a library-relative path: the hex
// BLAKE2b-128 digest of the path.
func TrackID(relPath string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(filepath.ToSlash(relPath)))
	return hex.EncodeToString(h.Sum(nil))
}
