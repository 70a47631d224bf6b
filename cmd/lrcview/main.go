package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"lrcplayer/internal/database"
	"lrcplayer/internal/lyrics"
	"lrcplayer/internal/player"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
	// How often follow redraws the active line
	followInterval = 100 * time.Millisecond
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("lrcview", flag.ContinueOnError)
	fset.SetOutput(stderr)
	encoding := fset.String("encoding", lyrics.EncodingAuto, "lyric file encoding (auto, utf-8, gbk, big5, ...)")
	fset.Usage = func() { printUsage(stderr) }

	if err := fset.Parse(args); err != nil {
		return 2
	}
	if fset.NArg() < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := fset.Arg(0), fset.Args()[1:]

	var err error
	switch command {
	case "render":
		err = renderCmd(stdout, rest, *encoding)
	case "at":
		err = atCmd(stdout, rest, *encoding)
	case "follow":
		err = followCmd(ctx, stdout, rest, *encoding)
	case "tracks":
		err = tracksCmd(ctx, stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// sanitizeCommand replaces anything outside [a-zA-Z0-9_-] with '_' so user
// input is safe to echo.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "lrcview - lrcplayer lyric viewer")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: lrcview [--encoding NAME] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render FILE      - Print every lyric line in time order")
	fmt.Fprintln(w, "  at FILE MS       - Print the line showing at MS milliseconds")
	fmt.Fprintln(w, "  follow FILE      - Show lyrics in real time until interrupted")
	fmt.Fprintln(w, "  tracks           - List indexed tracks and whether they have lyrics")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

// load reads a lyric file. A missing file is an error here, unlike in the
// player.
func load(path, encoding string) (*lyrics.Index, error) {
	idx, err := lyrics.LoadFile(path, encoding)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("lyric file not found: %s", path)
	}
	return idx, err
}

func renderCmd(w io.Writer, args []string, encoding string) error {
	if len(args) != 1 {
		return errors.New("render takes exactly one FILE")
	}
	idx, err := load(args[0], encoding)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, lyrics.Render(idx))
	return err
}

func atCmd(w io.Writer, args []string, encoding string) error {
	if len(args) != 2 {
		return errors.New("at takes FILE and MS")
	}
	ms, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || ms < 0 {
		return fmt.Errorf("invalid position %q", args[1])
	}
	idx, err := load(args[0], encoding)
	if err != nil {
		return err
	}
	if text, ok := lyrics.Active(idx, ms); ok {
		fmt.Fprintln(w, text)
	}
	return nil
}

// followCmd prints lines as their time arrives. On a terminal the current
// line is redrawn in place with the elapsed time; otherwise each new line
// is printed once.
func followCmd(ctx context.Context, w io.Writer, args []string, encoding string) error {
	if len(args) != 1 {
		return errors.New("follow takes exactly one FILE")
	}
	idx, err := load(args[0], encoding)
	if err != nil {
		return err
	}

	interactive := isTerminal(w)
	lines := idx.Lines()
	var end int64
	if n := len(lines); n > 0 {
		end = int64(lines[n-1].Second+1) * 1000
	}

	start := time.Now()
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	last := -1
	for {
		pos := time.Since(start).Milliseconds()
		if line, i, ok := lyrics.ActiveLine(idx, pos); ok {
			if interactive {
				fmt.Fprintf(w, "\r\033[K[%s] %s", player.FormatProgress(pos, end), line.Text)
			} else if i != last {
				fmt.Fprintln(w, line.Text)
			}
			last = i
		}

		if pos >= end {
			if interactive {
				fmt.Fprintln(w)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			if interactive {
				fmt.Fprintln(w)
			}
			return nil
		case <-ticker.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func tracksCmd(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "lrcplayer.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database (DATABASE_DIR=%s): %w", databaseDir, err)
	}
	defer db.Close()

	return listTracks(ctx, w, db)
}

func listTracks(ctx context.Context, w io.Writer, db *database.Database) error {
	tracks, err := db.GetTracks(ctx)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		mark := " "
		if t.HasLyrics {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, t.ID, t.DisplayName())
	}
	fmt.Fprintf(w, "%d tracks\n", len(tracks))
	return nil
}
