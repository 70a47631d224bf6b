package player

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned for unknown playback mode names.
var ErrInvalidMode = errors.New("unknown playback mode")

// Mode decides which track follows the current one.
type Mode string

const (
	// ModeRandom picks another track at random.
	ModeRandom Mode = "random"
	// ModeLoop plays the queue in order and wraps around.
	ModeLoop Mode = "loop"
	// ModeSequential plays the queue in order and stops after the last track.
	ModeSequential Mode = "sequential"
)

// DefaultMode matches the shuffle-on-start behaviour of the player.
const DefaultMode = ModeRandom

// DefaultVolume is the starting volume, 0..100.
const DefaultVolume = 50

// ParseMode converts a mode name. "shuffle" and "repeat" are accepted as
// aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "shuffle":
		return ModeRandom, nil
	case "loop", "repeat":
		return ModeLoop, nil
	case "sequential", "order":
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidMode, s)
	}
}

// PlaybackState is the transport state.
type PlaybackState string

const (
	StateStopped PlaybackState = "stopped"
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
)

// FormatProgress renders position and duration as "MM:SS/MM:SS".
func FormatProgress(positionMs, durationMs int64) string {
	cur := positionMs / 1000
	total := durationMs / 1000
	if cur < 0 {
		cur = 0
	}
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d/%02d:%02d", cur/60, cur%60, total/60, total%60)
}
