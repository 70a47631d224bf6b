package playlist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// musicDirWithTracks creates a music directory holding a couple of audio files.
func musicDirWithTracks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Artist-Song.mp3"), "a")
	writeFile(t, filepath.Join(dir, "album", "Other-Tune.flac"), "b")
	return dir
}

func TestParseM3U(t *testing.T) {
	t.Parallel()

	music := musicDirWithTracks(t)
	m3u := filepath.Join(music, "mix.m3u8")
	writeFile(t, m3u, "\xef\xbb\xbf#EXTM3U\n#PLAYLIST:Evening Mix\n"+
		"#EXTINF:215,Artist - Song\nArtist-Song.mp3\n\n"+
		"# a comment\nalbum\\Other-Tune.flac\n"+
		"missing.mp3\n")

	pl, err := ParseM3U(m3u, music)
	if err != nil {
		t.Fatalf("ParseM3U() error = %v", err)
	}

	if pl.Name != "Evening Mix" {
		t.Errorf("Name = %q", pl.Name)
	}
	if pl.Count != 3 || len(pl.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", pl.Count)
	}

	tests := []struct {
		title  string
		path   string
		exists bool
	}{
		{"Artist - Song", "Artist-Song.mp3", true},
		{"", "album/Other-Tune.flac", true},
		{"", "missing.mp3", false},
	}
	for i, want := range tests {
		got := pl.Items[i]
		if got.Title != want.title || got.Path != want.path || got.Exists != want.exists {
			t.Errorf("item %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestParseM3UNameFromFile(t *testing.T) {
	t.Parallel()

	music := musicDirWithTracks(t)
	m3u := filepath.Join(music, "Road Trip.m3u")
	writeFile(t, m3u, "Artist-Song.mp3\n")

	pl, err := Parse(m3u, music)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pl.Name != "Road Trip" {
		t.Errorf("Name = %q, want Road Trip", pl.Name)
	}
}

func TestParseWPL(t *testing.T) {
	t.Parallel()

	music := musicDirWithTracks(t)
	wpl := filepath.Join(music, "lists", "favs.wpl")
	writeFile(t, wpl, `<?xml version="1.0"?>
<smil>
  <head><title>Favourites</title></head>
  <body>
    <seq>
      <media src="..\album\Other-Tune.flac"/>
      <media src="C:\Users\me\Music\Artist-Song.mp3"/>
      <media src="gone.mp3"/>
    </seq>
  </body>
</smil>`)

	pl, err := Parse(wpl, music)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if pl.Name != "Favourites" || pl.Count != 3 {
		t.Fatalf("unexpected playlist %+v", pl)
	}

	if pl.Items[0].Path != "album/Other-Tune.flac" || !pl.Items[0].Exists {
		t.Errorf("relative entry = %+v", pl.Items[0])
	}
	if pl.Items[1].Path != "Artist-Song.mp3" || !pl.Items[1].Exists {
		t.Errorf("foreign absolute entry = %+v", pl.Items[1])
	}
	if pl.Items[2].Exists {
		t.Errorf("missing entry should not exist: %+v", pl.Items[2])
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Parse(filepath.Join(dir, "x.pls"), dir); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := Parse(filepath.Join(dir, "none.m3u"), dir); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.wpl")
	writeFile(t, bad, "<smil><head>")
	if _, err := Parse(bad, dir); err == nil {
		t.Error("expected error for malformed WPL")
	}
}

func TestResolveEntryOutsideMusicDir(t *testing.T) {
	t.Parallel()

	music := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "secret.mp3"), "x")

	item := resolveEntry(filepath.Join(outside, "secret.mp3"), music, music)
	if item.Exists {
		t.Errorf("entries outside the music directory must not resolve: %+v", item)
	}
}
