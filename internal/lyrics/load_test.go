package lyrics

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Artist-Song.lrc")
	if err := os.WriteFile(path, []byte("[ti:Song]\n[00:01.00]A\nbad\n[00:03.00]B\n"), 0o644); err != nil {
		t.Fatalf("failed to write lyric file: %v", err)
	}

	idx, err := LoadFile(path, EncodingAuto)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
	if idx.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", idx.Dropped())
	}
	if v, _ := idx.Tag("ti"); v != "Song" {
		t.Errorf("ti tag = %q", v)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	idx, err := LoadFile(filepath.Join(t.TempDir(), "missing.lrc"), EncodingAuto)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if idx == nil || idx.Len() != 0 {
		t.Error("missing file should still give an empty index")
	}
	if Render(idx) != "" {
		t.Error("empty index should render as empty text")
	}
}

func TestLoadFileBadEncoding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.lrc")
	if err := os.WriteFile(path, []byte("[00:01.00]A"), 0o644); err != nil {
		t.Fatalf("failed to write lyric file: %v", err)
	}

	idx, err := LoadFile(path, "not-an-encoding")
	if err == nil {
		t.Error("expected error for unknown encoding")
	}
	if idx.Len() != 0 {
		t.Error("failed load should give an empty index")
	}
}
