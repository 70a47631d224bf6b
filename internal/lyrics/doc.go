// Package lyrics parses time-tagged lyric documents (the ".lrc" sidecar
// format) and answers "which line is showing now" queries.
//
// A document has one entry per line:
//
//	[00:12.34]First line
//	[00:17.80][01:02.10]A chorus line shared by two timestamps
//
// Parse turns the text into an immutable Index keyed by whole seconds.
// Malformed lines are dropped rather than reported, so one bad line never
// hides the rest of the lyrics. ID tags such as [ar:...] and [ti:...] are
// kept separately and never become timed lines.
//
// Render produces the plain text of all lines in time order, and Active /
// ActiveLine perform a predecessor search for a playback position given in
// milliseconds.
//
// Parse works on already-decoded text. Decode converts raw sidecar bytes
// using golang.org/x/text (UTF-8, GBK and the other WHATWG encodings), and
// LoadFile combines reading, decoding and parsing.
package lyrics
