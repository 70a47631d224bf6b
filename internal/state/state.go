package state

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoState is returned by Load when nothing has been saved yet.
var ErrNoState = errors.New("no saved player state")

// Resume is what the player needs to pick up where it left off.
type Resume struct {
	TrackID    string    `json:"trackId"`
	PositionMs int64     `json:"positionMs"`
	Mode       string    `json:"mode"`
	Volume     int       `json:"volume"`
	SavedAt    time.Time `json:"savedAt"`
}

// Store persists Resume across restarts.
type Store interface {
	Load(ctx context.Context) (Resume, error)
	Save(ctx context.Context, r Resume) error
	Close() error
}

// MemoryStore keeps state in process memory. It is used when no Redis
// server is configured and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	state *Resume
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved state or ErrNoState.
func (m *MemoryStore) Load(ctx context.Context) (Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return Resume{}, ErrNoState
	}
	return *m.state, nil
}

// Save replaces the stored state.
func (m *MemoryStore) Save(ctx context.Context, r Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.SavedAt.IsZero() {
		r.SavedAt = time.Now()
	}
	m.state = &r
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
