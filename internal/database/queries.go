package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const trackColumns = `id, path, title, artist, album, track_number, year, format,
	mime_type, size, mod_time, lyric_path, has_picture`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var t Track
	var modTime int64
	var hasPicture int

	if err := row.Scan(
		&t.ID, &t.Path, &t.Title, &t.Artist, &t.Album, &t.TrackNumber, &t.Year, &t.Format,
		&t.MimeType, &t.Size, &modTime, &t.LyricPath, &hasPicture,
	); err != nil {
		return t, err
	}

	t.ModTime = time.Unix(modTime, 0)
	t.HasLyrics = t.LyricPath != ""
	t.HasPicture = hasPicture != 0
	return t, nil
}

func collectTracks(rows *sql.Rows) ([]Track, error) {
	defer rows.Close()

	tracks := []Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// GetTracks returns every track ordered by artist, then title.
func (d *Database) GetTracks(ctx context.Context) (tracks []Track, err error) {
	start := time.Now()
	defer func() { recordQuery("get_tracks", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		ORDER BY artist COLLATE NOCASE, title COLLATE NOCASE, path
	`)
	if err != nil {
		return nil, err
	}
	return collectTracks(rows)
}

// GetTrack returns the track with the given ID or ErrNotFound.
func (d *Database) GetTrack(ctx context.Context, id string) (t Track, err error) {
	start := time.Now()
	defer func() { recordQuery("get_track", start, err) }()

	return d.getTrackWhere(ctx, "id = ?", id)
}

// GetTrackByPath returns the track stored under a library-relative path.
func (d *Database) GetTrackByPath(ctx context.Context, path string) (t Track, err error) {
	start := time.Now()
	defer func() { recordQuery("get_track_by_path", start, err) }()

	return d.getTrackWhere(ctx, "path = ?", path)
}

func (d *Database) getTrackWhere(ctx context.Context, where string, arg any) (Track, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+trackColumns+" FROM tracks WHERE "+where, arg)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// SearchTracks matches query against title, artist, album and path,
// case-insensitively. A limit of zero or less means 50.
func (d *Database) SearchTracks(ctx context.Context, query string, limit int) (tracks []Track, err error) {
	start := time.Now()
	defer func() { recordQuery("search_tracks", start, err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return []Track{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pattern := "%" + escapeLike(query) + "%"
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE title LIKE ?1 ESCAPE '\'
		   OR artist LIKE ?1 ESCAPE '\'
		   OR album LIKE ?1 ESCAPE '\'
		   OR path LIKE ?1 ESCAPE '\'
		ORDER BY
			CASE WHEN title LIKE ?1 ESCAPE '\' THEN 0 ELSE 1 END,
			artist COLLATE NOCASE, title COLLATE NOCASE
		LIMIT ?2
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collectTracks(rows)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// GetPlaylists returns all playlists ordered by name.
func (d *Database) GetPlaylists(ctx context.Context) (playlists []Playlist, err error) {
	start := time.Now()
	defer func() { recordQuery("get_playlists", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT path, name, size, mod_time
		FROM playlists
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists = []Playlist{}
	for rows.Next() {
		var p Playlist
		var modTime int64
		if err := rows.Scan(&p.Path, &p.Name, &p.Size, &modTime); err != nil {
			return nil, err
		}
		p.ModTime = time.Unix(modTime, 0)
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// GetPlaylist returns the playlist with the given name (case-insensitive).
func (d *Database) GetPlaylist(ctx context.Context, name string) (Playlist, error) {
	playlists, err := d.GetPlaylists(ctx)
	if err != nil {
		return Playlist{}, err
	}
	for _, p := range playlists {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Playlist{}, ErrNotFound
}
