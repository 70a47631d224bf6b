package library

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/metrics"
)

const (
	// Number of tracks to collect before committing a batch
	batchSize = 200

	// Delay between batches so HTTP reads get a turn
	batchDelay = 5 * time.Millisecond
)

// Indexer keeps the database in step with the music directory.
type Indexer struct {
	db                   *database.Database
	scanner              *Scanner
	indexInterval        time.Duration
	stopChan             chan struct{}
	stopOnce             sync.Once
	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	tracksIndexed    atomic.Int64
	playlistsIndexed atomic.Int64
	indexProgress    atomic.Value

	onIndexComplete func()
}

// IndexProgress tracks the current indexing progress
type IndexProgress struct {
	TracksIndexed    int64     `json:"tracksIndexed"`
	PlaylistsIndexed int64     `json:"playlistsIndexed"`
	IsIndexing       bool      `json:"isIndexing"`
	StartedAt        time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool           `json:"ready"`
	Indexing          bool           `json:"indexing"`
	StartTime         time.Time      `json:"startTime"`
	Uptime            string         `json:"uptime"`
	LastIndexed       time.Time      `json:"lastIndexed,omitempty"`
	InitialIndexError string         `json:"initialIndexError,omitempty"`
	TracksIndexed     int64          `json:"tracksIndexed"`
	PlaylistsIndexed  int64          `json:"playlistsIndexed"`
	IndexProgress     *IndexProgress `json:"indexProgress,omitempty"`
}

// NewIndexer creates an Indexer. An interval of zero disables periodic
// re-indexing.
func NewIndexer(db *database.Database, scanner *Scanner, indexInterval time.Duration) *Indexer {
	idx := &Indexer{
		db:            db,
		scanner:       scanner,
		indexInterval: indexInterval,
		stopChan:      make(chan struct{}),
		startTime:     time.Now(),
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// SetOnIndexComplete sets a callback invoked after each successful run.
func (idx *Indexer) SetOnIndexComplete(callback func()) {
	idx.onIndexComplete = callback
}

// Start runs the initial index in the background and schedules periodic
// re-indexing.
func (idx *Indexer) Start() {
	go func() {
		logging.Info("Starting initial library index in background...")
		if err := idx.Index(context.Background()); err != nil {
			logging.Error("Initial index error: %v", err)
			idx.indexMu.Lock()
			idx.initialIndexError = err
			idx.indexMu.Unlock()
		}
	}()

	if idx.indexInterval > 0 {
		go idx.periodicIndex()
	}
}

// Stop cancels any running index and stops the schedule.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() { close(idx.stopChan) })
}

// IsReady reports whether the initial index has finished.
func (idx *Indexer) IsReady() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.initialIndexComplete
}

// Index performs a full scan. Concurrent calls return immediately while a
// run is in progress.
func (idx *Indexer) Index(ctx context.Context) error {
	if !idx.tryStartIndexing() {
		logging.Info("Index already in progress, skipping...")
		return nil
	}
	defer idx.finishIndexing()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-idx.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)
	metrics.IndexerRunsTotal.Inc()

	startTime := time.Now()
	logging.Info("Starting library indexing of %s...", idx.scanner.MusicDir())

	idx.resetCounters(startTime)

	if err := idx.consume(idx.scanner.Scan(ctx), startTime); err != nil {
		metrics.IndexerErrors.Inc()
		return err
	}

	// A cancelled scan saw only part of the library; keep what we have.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("index cancelled: %w", err)
	}

	if err := idx.cleanupMissing(startTime); err != nil {
		logging.Error("Error cleaning up missing tracks: %v", err)
		metrics.IndexerErrors.Inc()
	}

	idx.finalizeIndex(ctx, startTime)

	metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexerLastRunDuration.Set(time.Since(startTime).Seconds())

	return nil
}

// consume drains scan results into the database in batches.
func (idx *Indexer) consume(results <-chan Result, startTime time.Time) error {
	tracks := make([]database.Track, 0, batchSize)
	var playlists []database.Playlist

	flush := func() {
		if err := idx.processBatch(tracks, playlists); err != nil {
			logging.Error("Error processing batch: %v", err)
			metrics.IndexerErrors.Inc()
		}
		tracks = tracks[:0]
		playlists = playlists[:0]
		idx.updateProgress(startTime)
	}

	for r := range results {
		switch {
		case r.Track != nil:
			tracks = append(tracks, *r.Track)
			idx.tracksIndexed.Add(1)
		case r.Playlist != nil:
			playlists = append(playlists, *r.Playlist)
			idx.playlistsIndexed.Add(1)
		}

		if len(tracks) >= batchSize {
			flush()
			time.Sleep(batchDelay)

			if n := idx.tracksIndexed.Load(); n%1000 == 0 {
				logging.Info("Indexed %d tracks...", n)
			}
		}
	}

	if len(tracks) > 0 || len(playlists) > 0 {
		flush()
	}

	return nil
}

// processBatch writes tracks and playlists in a single transaction.
func (idx *Indexer) processBatch(tracks []database.Track, playlists []database.Playlist) error {
	tx, err := idx.db.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	for i := range tracks {
		if err := idx.db.UpsertTrack(tx, &tracks[i]); err != nil {
			logging.Warn("Error upserting track %s: %v", tracks[i].Path, err)
		}
	}
	for i := range playlists {
		if err := idx.db.UpsertPlaylist(tx, &playlists[i]); err != nil {
			logging.Warn("Error upserting playlist %s: %v", playlists[i].Path, err)
		}
	}

	if err := idx.db.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// cleanupMissing removes rows not seen since indexTime.
func (idx *Indexer) cleanupMissing(indexTime time.Time) error {
	tx, err := idx.db.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}

	deleted, err := idx.db.DeleteMissing(tx, indexTime)
	if err != nil {
		if endErr := idx.db.EndBatch(tx, err); endErr != nil {
			logging.Error("failed to end batch after cleanup error: %v", endErr)
		}
		return err
	}

	if err := idx.db.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if deleted > 0 {
		logging.Info("Removed %d missing tracks and playlists from index", deleted)
	}
	return nil
}

func (idx *Indexer) finalizeIndex(ctx context.Context, startTime time.Time) {
	duration := time.Since(startTime)
	now := time.Now()

	idx.indexMu.Lock()
	idx.lastIndexTime = now
	idx.indexMu.Unlock()

	tracks, playlists := idx.tracksIndexed.Load(), idx.playlistsIndexed.Load()
	idx.indexProgress.Store(IndexProgress{
		TracksIndexed:    tracks,
		PlaylistsIndexed: playlists,
	})

	stats, err := idx.db.CalculateStats(ctx)
	if err != nil {
		logging.Warn("Failed to calculate library stats: %v", err)
	}
	stats.LastIndexed = now
	stats.IndexDuration = duration.String()
	idx.db.UpdateStats(stats)

	if err := idx.db.SetLastIndexRun(ctx, now); err != nil {
		logging.Warn("Failed to record index time: %v", err)
	}

	logging.Info("Index complete: %d tracks, %d playlists in %v", tracks, playlists, duration)

	if idx.onIndexComplete != nil {
		idx.onIndexComplete()
	}
}

func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

func (idx *Indexer) finishIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	idx.isIndexing = false
	idx.initialIndexComplete = true
}

func (idx *Indexer) resetCounters(startTime time.Time) {
	idx.tracksIndexed.Store(0)
	idx.playlistsIndexed.Store(0)
	idx.indexProgress.Store(IndexProgress{
		IsIndexing: true,
		StartedAt:  startTime,
	})
}

func (idx *Indexer) updateProgress(startTime time.Time) {
	idx.indexProgress.Store(IndexProgress{
		TracksIndexed:    idx.tracksIndexed.Load(),
		PlaylistsIndexed: idx.playlistsIndexed.Load(),
		IsIndexing:       true,
		StartedAt:        startTime,
	})
}

func (idx *Indexer) periodicIndex() {
	ticker := time.NewTicker(idx.indexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-index triggered")
			if err := idx.Index(context.Background()); err != nil {
				logging.Error("periodic re-index failed: %v", err)
			}
		case <-idx.stopChan:
			return
		}
	}
}

// TriggerIndex starts a re-index in the background.
func (idx *Indexer) TriggerIndex() {
	go func() {
		if err := idx.Index(context.Background()); err != nil {
			logging.Error("manually triggered re-index failed: %v", err)
		}
	}()
}

// IsIndexing returns whether an index run is in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns the time of the last completed run.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// GetProgress returns the current indexing progress.
func (idx *Indexer) GetProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	progress := idx.GetProgress()

	status := HealthStatus{
		Ready:            idx.initialIndexComplete,
		Indexing:         idx.isIndexing,
		StartTime:        idx.startTime,
		Uptime:           time.Since(idx.startTime).String(),
		LastIndexed:      idx.lastIndexTime,
		TracksIndexed:    idx.tracksIndexed.Load(),
		PlaylistsIndexed: idx.playlistsIndexed.Load(),
	}

	if idx.isIndexing {
		status.IndexProgress = &progress
	}
	if idx.initialIndexError != nil {
		status.InitialIndexError = idx.initialIndexError.Error()
	}

	return status
}

// LibraryStats reports the cached library counts for the metrics collector.
func (idx *Indexer) LibraryStats() metrics.Stats {
	s := idx.db.GetStats()
	return metrics.Stats{
		TotalTracks:     s.TotalTracks,
		TracksWithLyric: s.TracksWithLyrics,
		TotalPlaylists:  s.TotalPlaylists,
	}
}
