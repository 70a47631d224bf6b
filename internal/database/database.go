package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"lrcplayer/internal/logging"
	"lrcplayer/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a track or playlist does not exist.
var ErrNotFound = errors.New("not found")

// Database manages the library database.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   IndexStats
	statsMu sync.RWMutex
	txStart time.Time
}

// New opens (creating if needed) the database FILE at dbPath. The parent
// directory must already exist and be writable; startup.LoadConfig checks
// this before New is called.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout avoids "database is locked" while the indexer holds a batch
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		artist TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		track_number INTEGER NOT NULL DEFAULT 0,
		year INTEGER NOT NULL DEFAULT 0,
		format TEXT NOT NULL DEFAULT '',
		mime_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL,
		lyric_path TEXT NOT NULL DEFAULT '',
		has_picture INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_artist_title ON tracks(artist COLLATE NOCASE, title COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_updated_at ON tracks(updated_at);

	CREATE TABLE IF NOT EXISTS playlists (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_playlists_name ON playlists(name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch starts a transaction for batch writes.
// The caller is responsible for calling EndBatch when done.
func (d *Database) BeginBatch() (*sql.Tx, error) {
	d.mu.Lock()
	txStart := time.Now()

	// Transaction lifetime is managed by EndBatch, not a timeout.
	tx, err := d.db.BeginTx(context.Background(), nil)
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}

	d.txStart = txStart

	return tx, nil
}

// EndBatch commits the transaction, or rolls it back when err is non-nil.
func (d *Database) EndBatch(tx *sql.Tx, err error) error {
	duration := time.Since(d.txStart).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// UpsertTrack inserts or updates a track within a transaction and marks it
// as seen by the current index run.
func (d *Database) UpsertTrack(tx *sql.Tx, t *Track) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_track", start, err) }()

	query := `
	INSERT INTO tracks (id, path, title, artist, album, track_number, year, format,
		mime_type, size, mod_time, lyric_path, has_picture, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(id) DO UPDATE SET
		path = excluded.path,
		title = excluded.title,
		artist = excluded.artist,
		album = excluded.album,
		track_number = excluded.track_number,
		year = excluded.year,
		format = excluded.format,
		mime_type = excluded.mime_type,
		size = excluded.size,
		mod_time = excluded.mod_time,
		lyric_path = excluded.lyric_path,
		has_picture = excluded.has_picture,
		updated_at = strftime('%s', 'now')
	`

	// The transaction controls the operation's lifecycle.
	_, err = tx.ExecContext(context.Background(), query,
		t.ID, t.Path, t.Title, t.Artist, t.Album, t.TrackNumber, t.Year, t.Format,
		t.MimeType, t.Size, t.ModTime.Unix(), t.LyricPath, boolToInt(t.HasPicture),
	)
	return err
}

// UpsertPlaylist inserts or updates a playlist within a transaction.
func (d *Database) UpsertPlaylist(tx *sql.Tx, p *Playlist) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_playlist", start, err) }()

	_, err = tx.ExecContext(context.Background(), `
	INSERT INTO playlists (path, name, size, mod_time, updated_at)
	VALUES (?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(path) DO UPDATE SET
		name = excluded.name,
		size = excluded.size,
		mod_time = excluded.mod_time,
		updated_at = strftime('%s', 'now')
	`, p.Path, p.Name, p.Size, p.ModTime.Unix())
	return err
}

// DeleteMissing removes tracks and playlists that weren't seen since
// cutoffTime. Must be called within a transaction.
func (d *Database) DeleteMissing(tx *sql.Tx, cutoffTime time.Time) (deleted int64, err error) {
	start := time.Now()
	defer func() { recordQuery("delete_missing", start, err) }()

	for _, table := range []string{"tracks", "playlists"} {
		result, execErr := tx.ExecContext(context.Background(),
			"DELETE FROM "+table+" WHERE updated_at < ?", cutoffTime.Unix())
		if execErr != nil {
			return deleted, execErr
		}
		n, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			return deleted, rowsErr
		}
		deleted += n
	}
	return deleted, nil
}

// UpdateStats updates the cached statistics.
func (d *Database) UpdateStats(stats IndexStats) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats = stats
}

// GetStats returns the cached index statistics.
func (d *Database) GetStats() IndexStats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.stats
}

// CalculateStats counts the library contents.
func (d *Database) CalculateStats(ctx context.Context) (stats IndexStats, err error) {
	start := time.Now()
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM tracks", &stats.TotalTracks},
		{"SELECT COUNT(*) FROM tracks WHERE lyric_path != ''", &stats.TracksWithLyrics},
		{"SELECT COUNT(DISTINCT artist COLLATE NOCASE) FROM tracks WHERE artist != ''", &stats.TotalArtists},
		{"SELECT COUNT(*) FROM playlists", &stats.TotalPlaylists},
	}

	for _, q := range queries {
		if err = d.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// Ping checks that the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		if path == dbPath {
			continue
		}
		if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", path, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", path)
		}
	}

	return nil
}
