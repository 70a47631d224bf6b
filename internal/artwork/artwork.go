package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/mediatypes"
	"lrcplayer/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge length of generated covers in pixels.
const DefaultSize = 300

// ErrNoArtwork is returned when a track has neither an embedded picture nor
// a folder cover.
var ErrNoArtwork = errors.New("no artwork found")

// Generator produces cover images.
type Generator struct {
	cacheDir string
	musicDir string
	size     int
	mu       sync.Mutex
}

// NewGenerator creates a Generator that caches into cacheDir. Track paths
// are resolved against musicDir.
func NewGenerator(cacheDir, musicDir string, size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logging.Warn("Artwork: failed to create cache dir: %v", err)
	}
	return &Generator{
		cacheDir: cacheDir,
		musicDir: musicDir,
		size:     size,
	}
}

func (g *Generator) cachePath(trackID string) string {
	return filepath.Join(g.cacheDir, fmt.Sprintf("%s_%d.jpg", trackID, g.size))
}

// Get returns the JPEG cover for track.
func (g *Generator) Get(track database.Track) ([]byte, error) {
	cachePath := g.cachePath(track.ID)

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("cache_hit").Inc()
		return data, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("cache_hit").Inc()
		return data, nil
	}

	start := time.Now()
	img, err := g.source(track)
	if err != nil {
		if errors.Is(err, ErrNoArtwork) {
			metrics.ArtworkRequestsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	cover := imaging.Fill(img, g.size, g.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cover, &jpeg.Options{Quality: 85}); err != nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	metrics.ArtworkGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.ArtworkRequestsTotal.WithLabelValues("generated").Inc()

	if err := os.WriteFile(cachePath, buf.Bytes(), 0644); err != nil {
		logging.Warn("Failed to cache artwork %s: %v", cachePath, err)
	} else {
		logging.Debug("Artwork cached: %s", cachePath)
	}

	return buf.Bytes(), nil
}

// Invalidate removes the cached cover for trackID.
func (g *Generator) Invalidate(trackID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := os.Remove(g.cachePath(trackID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (g *Generator) source(track database.Track) (image.Image, error) {
	fullPath := filepath.Join(g.musicDir, filepath.FromSlash(track.Path))

	img, err := embeddedPicture(fullPath)
	if err == nil {
		return img, nil
	}
	logging.Debug("No embedded artwork for %s: %v", track.Path, err)

	coverPath, ok := mediatypes.FindFolderCover(filepath.Dir(fullPath))
	if !ok {
		return nil, ErrNoArtwork
	}

	img, err = imaging.Open(coverPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open cover %s: %w", coverPath, err)
	}
	return img, nil
}

func embeddedPicture(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, ErrNoArtwork
	}

	img, format, err := image.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded %s picture: %w", pic.MIMEType, err)
	}
	logging.Debug("Decoded embedded %s artwork for %s", format, filepath.Base(path))
	return img, nil
}
