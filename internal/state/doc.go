// Package state persists the player's resume point: the current track,
// its position, the playback mode and the volume.
//
// RedisStore is used when REDIS_URL is set; otherwise MemoryStore keeps the
// state for the life of the process.
package state
