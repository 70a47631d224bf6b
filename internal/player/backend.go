package player

import (
	"sync"
	"time"

	"lrcplayer/internal/database"
)

// Backend plays audio. Decoding and output live outside this package;
// the controller only drives a Backend and polls it.
type Backend interface {
	Load(track database.Track) error
	Play() error
	Pause() error
	SeekTo(positionMs int64) error
	Position() int64
	Duration() int64
	SetVolume(level int) error
	Finished() bool
}

// ClockBackend is a Backend that produces no sound: position advances with
// the wall clock while playing. It drives lyric display for headless
// servers where the client does the actual playback, and it is what the
// tests use.
type ClockBackend struct {
	mu              sync.Mutex
	now             func() time.Time
	defaultDuration time.Duration

	loaded    bool
	playing   bool
	duration  int64
	offset    int64
	startedAt time.Time
	volume    int
}

// NewClockBackend creates a ClockBackend where every track lasts
// defaultDuration. A zero duration means tracks never finish on their own.
func NewClockBackend(defaultDuration time.Duration) *ClockBackend {
	return &ClockBackend{
		now:             time.Now,
		defaultDuration: defaultDuration,
		volume:          DefaultVolume,
	}
}

// SetClock replaces the time source.
func (b *ClockBackend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

func (b *ClockBackend) Load(track database.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loaded = true
	b.playing = false
	b.offset = 0
	b.duration = b.defaultDuration.Milliseconds()
	return nil
}

func (b *ClockBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded || b.playing {
		return nil
	}
	b.playing = true
	b.startedAt = b.now()
	return nil
}

func (b *ClockBackend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.offset = b.positionLocked()
	b.playing = false
	return nil
}

func (b *ClockBackend) SeekTo(positionMs int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if positionMs < 0 {
		positionMs = 0
	}
	b.offset = positionMs
	b.startedAt = b.now()
	return nil
}

func (b *ClockBackend) Position() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionLocked()
}

func (b *ClockBackend) positionLocked() int64 {
	pos := b.offset
	if b.playing {
		pos += b.now().Sub(b.startedAt).Milliseconds()
	}
	if b.duration > 0 && pos > b.duration {
		pos = b.duration
	}
	return pos
}

func (b *ClockBackend) Duration() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *ClockBackend) SetVolume(level int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = level
	return nil
}

// Volume returns the last level set.
func (b *ClockBackend) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *ClockBackend) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded && b.duration > 0 && b.positionLocked() >= b.duration
}
