package artwork

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"lrcplayer/internal/database"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func setupLibrary(t *testing.T, withCover bool) (musicDir string, track database.Track) {
	t.Helper()

	musicDir = t.TempDir()
	album := filepath.Join(musicDir, "Album")
	if err := os.MkdirAll(album, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(album, "Artist-Song.mp3"), []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if withCover {
		writePNG(t, filepath.Join(album, "cover.png"), 120, 80)
	}

	return musicDir, database.Track{ID: "abc123", Path: "Album/Artist-Song.mp3"}
}

func TestGetFromFolderCover(t *testing.T) {
	t.Parallel()

	musicDir, track := setupLibrary(t, true)
	cacheDir := t.TempDir()
	g := NewGenerator(cacheDir, musicDir, 64)

	data, err := g.Get(track)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("artwork size = %dx%d, want 64x64", b.Dx(), b.Dy())
	}

	if _, err := os.Stat(g.cachePath(track.ID)); err != nil {
		t.Errorf("expected cached file: %v", err)
	}

	again, err := g.Get(track)
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("cached artwork differs from generated artwork")
	}
}

func TestGetNoArtwork(t *testing.T) {
	t.Parallel()

	musicDir, track := setupLibrary(t, false)
	g := NewGenerator(t.TempDir(), musicDir, 0)

	if g.size != DefaultSize {
		t.Errorf("size = %d, want %d", g.size, DefaultSize)
	}

	_, err := g.Get(track)
	if !errors.Is(err, ErrNoArtwork) {
		t.Errorf("Get() error = %v, want ErrNoArtwork", err)
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	musicDir, track := setupLibrary(t, true)
	g := NewGenerator(t.TempDir(), musicDir, 32)

	if _, err := g.Get(track); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := g.Invalidate(track.ID); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := os.Stat(g.cachePath(track.ID)); !os.IsNotExist(err) {
		t.Errorf("cache file still present: %v", err)
	}
	if err := g.Invalidate("missing"); err != nil {
		t.Errorf("Invalidate() of unknown id = %v", err)
	}
}

func TestGetCorruptCover(t *testing.T) {
	t.Parallel()

	musicDir, track := setupLibrary(t, false)
	if err := os.WriteFile(filepath.Join(musicDir, "Album", "folder.jpg"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(t.TempDir(), musicDir, 32)
	_, err := g.Get(track)
	if err == nil || errors.Is(err, ErrNoArtwork) {
		t.Errorf("Get() error = %v, want decode failure", err)
	}
}
