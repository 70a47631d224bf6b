// Command lrcview prints timed lyric files from the command line.
//
// Usage:
//
//	lrcview [--encoding NAME] <command> [args]
//
// Commands:
//
//	render FILE   Print every lyric line in ascending time order.
//
//	at FILE MS    Print the line that is showing MS milliseconds into the
//	              song. Nothing is printed before the first line.
//
//	follow FILE   Play the lyrics against the wall clock. On a terminal the
//	              current line is redrawn in place; when piped, each line is
//	              printed once as it becomes active.
//
//	tracks        List the tracks indexed by the server. Tracks with a lyric
//	              sidecar are marked with '*'.
//
// The --encoding flag accepts "auto" (UTF-8, falling back to GBK) or any
// WHATWG encoding label such as "gbk", "big5" or "shift_jis".
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
package main
