// Package player implements the play queue and transport controller.
//
// A Controller owns the queue, the current track, its lyric index and the
// playback mode. All of that state belongs to the goroutine running
// Controller.Run; the exported methods send commands to it and wait for
// the reply, so HTTP handlers and the terminal viewer can drive the same
// player concurrently.
//
// Audio output is abstracted behind Backend. ClockBackend advances a
// virtual position with the wall clock, which is enough to keep the lyric
// display in sync when the client does the actual playback.
package player
