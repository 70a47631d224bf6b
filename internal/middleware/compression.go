package middleware

import (
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig selects which API responses are gzipped.
type CompressionConfig struct {
	// MinSize is the smallest body worth compressing.
	MinSize int
	// Level is a compress/gzip level.
	Level int
	// Prefixes limits compression to these request paths.
	Prefixes []string
	// SkipPrefixes wins over Prefixes. Audio streams and artwork are
	// already compressed and must keep exact byte ranges.
	SkipPrefixes []string
	// Types are the media types that are compressed.
	Types []string
}

// DefaultCompressionConfig compresses the JSON and plain-text lyric
// responses of the API.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:      1024,
		Level:        gzip.DefaultCompression,
		Prefixes:     []string{"/api/"},
		SkipPrefixes: []string{"/api/stream/"},
		Types:        []string{"application/json", "text/plain"},
	}
}

func (c CompressionConfig) wantsPath(path string) bool {
	for _, p := range c.SkipPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	for _, p := range c.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (c CompressionConfig) wantsType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, t := range c.Types {
		if mediaType == t {
			return true
		}
	}
	return false
}

// acceptsGzip reports whether the client lists gzip (or *) without q=0.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		if q, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				continue
			}
		}
		return true
	}
	return false
}

var gzipPools sync.Map // level -> *sync.Pool

func gzipPool(level int) *sync.Pool {
	if p, ok := gzipPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			w, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				w = gzip.NewWriter(io.Discard)
			}
			return w
		},
	})
	return p.(*sync.Pool)
}

// compressWriter holds the first MinSize bytes back until it knows whether
// the response qualifies.
type compressWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	status  int
	pending []byte
	decided bool
	gz      *gzip.Writer
}

func (cw *compressWriter) WriteHeader(status int) {
	if cw.decided || cw.status != 0 {
		return
	}
	cw.status = status
}

func (cw *compressWriter) Write(p []byte) (int, error) {
	if cw.decided {
		if cw.gz != nil {
			return cw.gz.Write(p)
		}
		return cw.ResponseWriter.Write(p)
	}

	cw.pending = append(cw.pending, p...)
	if len(cw.pending) >= cw.config.MinSize {
		if err := cw.decide(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// decide sends the header, starting gzip when the body is large enough
// and of a compressible type, then writes what was held back.
func (cw *compressWriter) decide() error {
	cw.decided = true
	if cw.status == 0 {
		cw.status = http.StatusOK
	}

	h := cw.Header()
	compress := len(cw.pending) >= cw.config.MinSize &&
		cw.status == http.StatusOK &&
		h.Get("Content-Encoding") == "" &&
		cw.config.wantsType(h.Get("Content-Type"))
	h.Add("Vary", "Accept-Encoding")

	if compress {
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		cw.gz = gzipPool(cw.config.Level).Get().(*gzip.Writer)
		cw.gz.Reset(cw.ResponseWriter)
	}

	cw.ResponseWriter.WriteHeader(cw.status)
	pending := cw.pending
	cw.pending = nil
	if len(pending) == 0 {
		return nil
	}
	var err error
	if cw.gz != nil {
		_, err = cw.gz.Write(pending)
	} else {
		_, err = cw.ResponseWriter.Write(pending)
	}
	return err
}

func (cw *compressWriter) Flush() {
	if !cw.decided {
		_ = cw.decide()
	}
	if cw.gz != nil {
		_ = cw.gz.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) close() error {
	if !cw.decided {
		if err := cw.decide(); err != nil {
			return err
		}
	}
	if cw.gz == nil {
		return nil
	}
	err := cw.gz.Close()
	gzipPool(cw.config.Level).Put(cw.gz)
	cw.gz = nil
	return err
}

// Compression gzips API responses that match config. Audio streams, HEAD
// and Range requests pass through untouched.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead ||
				r.Header.Get("Range") != "" ||
				!config.wantsPath(r.URL.Path) ||
				!acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{ResponseWriter: w, config: config}
			defer cw.close()
			next.ServeHTTP(cw, r)
		})
	}
}
