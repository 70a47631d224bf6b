package lyrics

import (
	"errors"
	"fmt"
	"io/fs"

	"lrcplayer/internal/filesystem"
	"lrcplayer/internal/logging"
	"lrcplayer/internal/metrics"
)

// LoadFile reads, decodes and parses a lyric sidecar. A missing file is
// reported as an error wrapping fs.ErrNotExist together with an empty,
// usable index, so callers that treat "no lyrics" and "empty lyrics" alike
// can ignore the error.
func LoadFile(path, encodingName string) (*Index, error) {
	raw, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.LyricLoadsTotal.WithLabelValues("missing").Inc()
			return Parse(""), err
		}
		metrics.LyricLoadsTotal.WithLabelValues("error").Inc()
		return Parse(""), fmt.Errorf("failed to read lyric file: %w", err)
	}

	text, err := Decode(raw, encodingName)
	if err != nil {
		metrics.LyricLoadsTotal.WithLabelValues("error").Inc()
		return Parse(""), err
	}

	idx := Parse(text)

	metrics.LyricLoadsTotal.WithLabelValues("success").Inc()
	metrics.LyricLinesParsed.Add(float64(idx.Len()))
	metrics.LyricLinesDropped.Add(float64(idx.Dropped()))

	if idx.Dropped() > 0 {
		logging.Debug("Lyrics %s: %d lines, %d malformed lines ignored", path, idx.Len(), idx.Dropped())
	}

	return idx, nil
}
