package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lrcplayer/internal/database"
)

func setupIndexer(t *testing.T, musicDir string) (*Indexer, *database.Database) {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	idx := NewIndexer(db, NewScanner(musicDir, 2), 0)
	t.Cleanup(idx.Stop)
	return idx, db
}

func TestIndex(t *testing.T) {
	t.Parallel()

	dir := buildLibrary(t)
	idx, db := setupIndexer(t, dir)
	ctx := context.Background()

	completed := make(chan struct{}, 1)
	idx.SetOnIndexComplete(func() { completed <- struct{}{} })

	if idx.IsReady() {
		t.Error("indexer should not be ready before the first run")
	}
	if err := idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	select {
	case <-completed:
	default:
		t.Error("completion callback was not called")
	}

	tracks, err := db.GetTracks(ctx)
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}

	playlists, _ := db.GetPlaylists(ctx)
	if len(playlists) != 1 {
		t.Errorf("expected 1 playlist, got %d", len(playlists))
	}

	stats := idx.LibraryStats()
	if stats.TotalTracks != 2 || stats.TracksWithLyric != 1 || stats.TotalPlaylists != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	health := idx.GetHealthStatus()
	if !health.Ready || health.Indexing || health.TracksIndexed != 2 || health.PlaylistsIndexed != 1 {
		t.Errorf("unexpected health %+v", health)
	}
	if health.IndexProgress != nil {
		t.Error("progress should only be reported while indexing")
	}

	last, err := db.GetLastIndexRun(ctx)
	if err != nil || last.IsZero() {
		t.Errorf("last index run not recorded: %v, %v", last, err)
	}
}

func TestIndexRemovesMissingTracks(t *testing.T) {
	t.Parallel()

	dir := buildLibrary(t)
	idx, db := setupIndexer(t, dir)
	ctx := context.Background()

	if err := idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "album", "Instrumental.flac")); err != nil {
		t.Fatalf("failed to remove track: %v", err)
	}

	// updated_at has one-second resolution.
	time.Sleep(1100 * time.Millisecond)

	if err := idx.Index(ctx); err != nil {
		t.Fatalf("second Index() error = %v", err)
	}

	tracks, _ := db.GetTracks(ctx)
	if len(tracks) != 1 || tracks[0].Path != "Adele-Hello.mp3" {
		t.Errorf("expected only Adele-Hello.mp3 to remain, got %+v", tracks)
	}
}

func TestIndexCancelledKeepsExistingRows(t *testing.T) {
	t.Parallel()

	dir := buildLibrary(t)
	idx, db := setupIndexer(t, dir)

	if err := idx.Index(context.Background()); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Index(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	tracks, _ := db.GetTracks(context.Background())
	if len(tracks) != 2 {
		t.Errorf("cancelled run must not delete tracks, got %d", len(tracks))
	}
}

func TestTryStartIndexing(t *testing.T) {
	t.Parallel()

	idx := NewIndexer(nil, NewScanner(t.TempDir(), 1), 0)

	if !idx.tryStartIndexing() {
		t.Fatal("first start should succeed")
	}
	if idx.tryStartIndexing() {
		t.Error("second start should be refused while indexing")
	}
	if !idx.IsIndexing() {
		t.Error("IsIndexing should be true")
	}

	// A concurrent Index call returns immediately without touching the db.
	if err := idx.Index(context.Background()); err != nil {
		t.Errorf("Index() during a run = %v", err)
	}

	idx.finishIndexing()
	if idx.IsIndexing() || !idx.IsReady() {
		t.Error("finishIndexing should clear the flag and mark ready")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	idx := NewIndexer(nil, NewScanner(t.TempDir(), 1), time.Hour)
	idx.Stop()
	idx.Stop()
}
