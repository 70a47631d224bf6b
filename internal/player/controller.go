package player

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"time"

	"lrcplayer/internal/database"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/lyrics"
	"lrcplayer/internal/metrics"
	"lrcplayer/internal/state"
)

var (
	// ErrStopped is returned by commands sent after Run has returned.
	ErrStopped = errors.New("player is not running")
	// ErrNoTrack is returned when a command needs a current track.
	ErrNoTrack = errors.New("no track selected")
	// ErrEmptyQueue is returned when the queue has nothing to play.
	ErrEmptyQueue = errors.New("queue is empty")
	// ErrInvalidIndex is returned by Select for out-of-range positions.
	ErrInvalidIndex = errors.New("queue index out of range")
	// ErrInvalidVolume is returned by SetVolume outside 0..100.
	ErrInvalidVolume = errors.New("volume must be between 0 and 100")
)

const (
	defaultTick = 200 * time.Millisecond
	saveEvery   = 10 * time.Second
)

// State is an immutable snapshot of the player.
type State struct {
	Track       *database.Track `json:"track,omitempty"`
	QueueIndex  int             `json:"queueIndex"`
	QueueLength int             `json:"queueLength"`
	State       PlaybackState   `json:"state"`
	Mode        Mode            `json:"mode"`
	Volume      int             `json:"volume"`
	PositionMs  int64           `json:"positionMs"`
	DurationMs  int64           `json:"durationMs"`
	Progress    string          `json:"progress"`
	HasLyrics   bool            `json:"hasLyrics"`
	Lyric       *lyrics.Line    `json:"lyric,omitempty"`
	LyricIndex  int             `json:"lyricIndex"`
}

// Config configures a Controller.
type Config struct {
	Backend Backend
	Lyrics  LyricLoader
	Store   state.Store
	Mode    Mode
	// Volume is the starting level, 0..100. Nil or out of range selects
	// DefaultVolume; 0 starts muted.
	Volume       *int
	TickInterval time.Duration
	Seed         uint64
}

type command struct {
	name  string
	apply func() error
	done  chan error
}

// Controller owns the play queue. Every mutation is a message handled by
// the goroutine running Run, so no queue state is shared between
// goroutines.
type Controller struct {
	cmds    chan command
	stopped chan struct{}

	backend Backend
	loader  LyricLoader
	store   state.Store
	tick    time.Duration
	rng     *rand.Rand

	// Owned by the Run goroutine.
	queue     []database.Track
	current   int
	history   []int
	mode      Mode
	volume    int
	playing   bool
	index     *lyrics.Index
	activeIdx int
	resume    *state.Resume
	lastSaved time.Time
}

// NewController creates a Controller. Run must be started before any
// command is sent.
func NewController(cfg Config) *Controller {
	if cfg.Backend == nil {
		cfg.Backend = NewClockBackend(0)
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	volume := DefaultVolume
	if cfg.Volume != nil && *cfg.Volume >= 0 && *cfg.Volume <= 100 {
		volume = *cfg.Volume
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTick
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Controller{
		cmds:      make(chan command),
		stopped:   make(chan struct{}),
		backend:   cfg.Backend,
		loader:    cfg.Lyrics,
		store:     cfg.Store,
		tick:      cfg.TickInterval,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		current:   -1,
		mode:      cfg.Mode,
		volume:    volume,
		activeIdx: -1,
	}
}

// Run processes commands and polls the backend until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)

	c.restore(ctx)
	if err := c.backend.SetVolume(c.volume); err != nil {
		logging.Warn("Failed to set initial volume: %v", err)
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.save(context.Background())
			return ctx.Err()
		case cmd := <-c.cmds:
			cmd.done <- cmd.apply()
		case <-ticker.C:
			c.onTick(ctx)
		}
	}
}

// do sends fn to the Run goroutine and waits for its result.
func (c *Controller) do(ctx context.Context, name string, fn func() error) error {
	metrics.PlayerCommandsTotal.WithLabelValues(name).Inc()

	cmd := command{name: name, apply: fn, done: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue appends tracks to the queue.
func (c *Controller) Enqueue(ctx context.Context, tracks []database.Track) error {
	added := append([]database.Track(nil), tracks...)
	return c.do(ctx, "enqueue", func() error {
		c.queue = append(c.queue, added...)
		metrics.PlayerQueueLength.Set(float64(len(c.queue)))
		c.applyResume()
		return nil
	})
}

// Replace swaps the queue for tracks. When the current track is still in
// the new queue it stays current and keeps playing; otherwise playback
// stops. History is cleared.
func (c *Controller) Replace(ctx context.Context, tracks []database.Track) error {
	next := append([]database.Track(nil), tracks...)
	return c.do(ctx, "replace", func() error {
		currentID := ""
		if c.current >= 0 {
			currentID = c.queue[c.current].ID
		}

		c.queue = next
		c.history = nil
		c.current = -1
		for i, t := range c.queue {
			if currentID != "" && t.ID == currentID {
				c.current = i
				break
			}
		}

		if c.current < 0 && currentID != "" {
			if err := c.backend.Pause(); err != nil {
				logging.Warn("Failed to pause backend: %v", err)
			}
			c.setPlaying(false)
			c.index = nil
			c.activeIdx = -1
		}

		metrics.PlayerQueueLength.Set(float64(len(c.queue)))
		c.applyResume()
		return nil
	})
}

// Select makes the track at index current and starts playing it.
func (c *Controller) Select(ctx context.Context, index int) error {
	return c.do(ctx, "select", func() error {
		if index < 0 || index >= len(c.queue) {
			return ErrInvalidIndex
		}
		c.pushHistory()
		if err := c.load(index); err != nil {
			return err
		}
		return c.play()
	})
}

// Next skips to the following track according to the mode.
func (c *Controller) Next(ctx context.Context) error {
	return c.do(ctx, "next", func() error {
		return c.advance(false)
	})
}

// Previous returns to the previously played track, or the one before the
// current in queue order when there is no history.
func (c *Controller) Previous(ctx context.Context) error {
	return c.do(ctx, "previous", func() error {
		if len(c.queue) == 0 {
			return ErrEmptyQueue
		}

		var i int
		if n := len(c.history); n > 0 {
			i = c.history[n-1]
			c.history = c.history[:n-1]
		} else {
			switch c.mode {
			case ModeRandom:
				i = c.randomOther()
			case ModeSequential:
				i = max(c.current-1, 0)
			default:
				i = (c.current - 1 + len(c.queue)) % len(c.queue)
			}
		}

		if err := c.load(i); err != nil {
			return err
		}
		return c.play()
	})
}

// Play resumes playback, starting a track if none is selected.
func (c *Controller) Play(ctx context.Context) error {
	return c.do(ctx, "play", c.play)
}

// Pause pauses playback.
func (c *Controller) Pause(ctx context.Context) error {
	return c.do(ctx, "pause", c.pause)
}

// Toggle switches between playing and paused.
func (c *Controller) Toggle(ctx context.Context) error {
	return c.do(ctx, "toggle", func() error {
		if c.playing {
			return c.pause()
		}
		return c.play()
	})
}

// Seek moves to positionMs within the current track.
func (c *Controller) Seek(ctx context.Context, positionMs int64) error {
	return c.do(ctx, "seek", func() error {
		if c.current < 0 {
			return ErrNoTrack
		}
		if positionMs < 0 {
			positionMs = 0
		}
		if d := c.backend.Duration(); d > 0 && positionMs > d {
			positionMs = d
		}
		if err := c.backend.SeekTo(positionMs); err != nil {
			return fmt.Errorf("backend seek: %w", err)
		}
		c.updateActive()
		return nil
	})
}

// SetMode changes the playback mode.
func (c *Controller) SetMode(ctx context.Context, mode Mode) error {
	return c.do(ctx, "mode", func() error {
		m, err := ParseMode(string(mode))
		if err != nil {
			return err
		}
		c.mode = m
		logging.Debug("Playback mode set to %s", m)
		return nil
	})
}

// SetVolume sets the volume, 0..100.
func (c *Controller) SetVolume(ctx context.Context, level int) error {
	return c.do(ctx, "volume", func() error {
		if level < 0 || level > 100 {
			return ErrInvalidVolume
		}
		if err := c.backend.SetVolume(level); err != nil {
			return fmt.Errorf("backend volume: %w", err)
		}
		c.volume = level
		return nil
	})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	var s State
	err := c.do(ctx, "snapshot", func() error {
		s = c.snapshot()
		return nil
	})
	return s, err
}

// Lyrics returns the lyric index of the current track.
func (c *Controller) Lyrics(ctx context.Context) (*lyrics.Index, error) {
	var idx *lyrics.Index
	err := c.do(ctx, "lyrics", func() error {
		idx = c.index
		return nil
	})
	return idx, err
}

func (c *Controller) snapshot() State {
	s := State{
		QueueIndex:  c.current,
		QueueLength: len(c.queue),
		State:       StateStopped,
		Mode:        c.mode,
		Volume:      c.volume,
		LyricIndex:  -1,
	}

	if c.current < 0 {
		s.Progress = FormatProgress(0, 0)
		return s
	}

	track := c.queue[c.current]
	s.Track = &track
	if c.playing {
		s.State = StatePlaying
	} else {
		s.State = StatePaused
	}
	s.PositionMs = c.backend.Position()
	s.DurationMs = c.backend.Duration()
	s.Progress = FormatProgress(s.PositionMs, s.DurationMs)
	s.HasLyrics = c.index.Len() > 0

	if line, i, ok := lyrics.ActiveLine(c.index, s.PositionMs); ok {
		s.Lyric = &line
		s.LyricIndex = i
	}
	return s
}

func (c *Controller) play() error {
	if c.current < 0 {
		if len(c.queue) == 0 {
			return ErrEmptyQueue
		}
		first := 0
		if c.mode == ModeRandom {
			first = c.rng.IntN(len(c.queue))
		}
		if err := c.load(first); err != nil {
			return err
		}
	}

	if err := c.backend.Play(); err != nil {
		return fmt.Errorf("backend play: %w", err)
	}
	c.setPlaying(true)
	return nil
}

func (c *Controller) pause() error {
	if c.current < 0 {
		return nil
	}
	if err := c.backend.Pause(); err != nil {
		return fmt.Errorf("backend pause: %w", err)
	}
	c.setPlaying(false)
	c.save(context.Background())
	return nil
}

func (c *Controller) setPlaying(playing bool) {
	c.playing = playing
	if playing {
		metrics.PlayerIsPlaying.Set(1)
	} else {
		metrics.PlayerIsPlaying.Set(0)
	}
}

// advance moves to the next track. At the end of a sequential queue the
// player stops; auto is true when the move was caused by a track ending.
func (c *Controller) advance(auto bool) error {
	if len(c.queue) == 0 {
		return ErrEmptyQueue
	}

	var next int
	switch c.mode {
	case ModeRandom:
		next = c.randomOther()
	case ModeSequential:
		next = c.current + 1
		if next >= len(c.queue) {
			if auto {
				logging.Debug("End of queue reached")
			}
			if err := c.backend.Pause(); err != nil {
				return err
			}
			c.setPlaying(false)
			return nil
		}
	default:
		next = (c.current + 1) % len(c.queue)
	}

	c.pushHistory()
	if err := c.load(next); err != nil {
		return err
	}
	return c.play()
}

// randomOther picks a random index other than the current one when the
// queue has more than one track.
func (c *Controller) randomOther() int {
	n := len(c.queue)
	if n <= 1 || c.current < 0 {
		return c.rng.IntN(n)
	}
	i := c.rng.IntN(n - 1)
	if i >= c.current {
		i++
	}
	return i
}

func (c *Controller) pushHistory() {
	if c.current < 0 {
		return
	}
	c.history = append(c.history, c.current)
	if len(c.history) > 100 {
		c.history = c.history[len(c.history)-100:]
	}
}

// load makes queue[i] current and swaps in a fresh lyric index.
func (c *Controller) load(i int) error {
	track := c.queue[i]
	if err := c.backend.Load(track); err != nil {
		return fmt.Errorf("backend load %s: %w", track.Path, err)
	}
	if err := c.backend.SetVolume(c.volume); err != nil {
		logging.Warn("Failed to apply volume: %v", err)
	}

	c.current = i
	c.index = c.loadLyrics(track)
	c.activeIdx = -1
	metrics.PlayerTrackChanges.Inc()
	logging.Info("Now playing: %s (%d lyric lines)", track.DisplayName(), c.index.Len())

	c.save(context.Background())
	return nil
}

func (c *Controller) loadLyrics(track database.Track) *lyrics.Index {
	if c.loader == nil {
		return lyrics.Parse("")
	}
	idx, err := c.loader.Load(track)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Debug("Lyrics unavailable for %s: %v", track.Path, err)
	}
	if idx == nil {
		idx = lyrics.Parse("")
	}
	return idx
}

func (c *Controller) onTick(ctx context.Context) {
	if c.current < 0 || !c.playing {
		return
	}

	if c.backend.Finished() {
		if err := c.advance(true); err != nil {
			logging.Warn("Failed to advance to next track: %v", err)
		}
		return
	}

	c.updateActive()

	if time.Since(c.lastSaved) >= saveEvery {
		c.save(ctx)
	}
}

func (c *Controller) updateActive() {
	line, i, ok := lyrics.ActiveLine(c.index, c.backend.Position())
	if !ok {
		c.activeIdx = -1
		return
	}
	if i != c.activeIdx {
		c.activeIdx = i
		logging.Debug("Lyric [%02d:%02d] %s", line.Second/60, line.Second%60, line.Text)
	}
}

// restore reads the saved resume point. The track is selected once a
// matching track is enqueued.
func (c *Controller) restore(ctx context.Context) {
	if c.store == nil {
		return
	}
	r, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrNoState) {
			logging.Warn("Failed to load resume state: %v", err)
		}
		return
	}

	if m, err := ParseMode(r.Mode); err == nil {
		c.mode = m
	}
	if r.Volume >= 0 && r.Volume <= 100 {
		c.volume = r.Volume
	}
	if r.TrackID != "" {
		c.resume = &r
	}
	logging.Info("Restored player state: mode=%s volume=%d", c.mode, c.volume)
}

func (c *Controller) applyResume() {
	if c.resume == nil || c.current >= 0 {
		return
	}
	for i, t := range c.queue {
		if t.ID != c.resume.TrackID {
			continue
		}
		pos := c.resume.PositionMs
		c.resume = nil
		if err := c.load(i); err != nil {
			logging.Warn("Failed to restore track: %v", err)
			return
		}
		if err := c.backend.SeekTo(pos); err != nil {
			logging.Warn("Failed to restore position: %v", err)
		}
		return
	}
}

func (c *Controller) save(ctx context.Context) {
	if c.store == nil || c.current < 0 {
		return
	}
	c.lastSaved = time.Now()

	r := state.Resume{
		TrackID:    c.queue[c.current].ID,
		PositionMs: c.backend.Position(),
		Mode:       string(c.mode),
		Volume:     c.volume,
		SavedAt:    c.lastSaved,
	}
	if err := c.store.Save(ctx, r); err != nil {
		logging.Warn("Failed to save player state: %v", err)
	}
}
