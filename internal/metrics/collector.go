package metrics

import (
	"time"

	"lrcplayer/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	LibraryStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	TotalTracks     int
	TracksWithLyric int
	TotalPlaylists  int
}

// Collector periodically collects and updates library gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.LibraryStats()

	LibraryTracksTotal.Set(float64(stats.TotalTracks))
	LibraryTracksWithLyrics.Set(float64(stats.TracksWithLyric))
	LibraryPlaylistsTotal.Set(float64(stats.TotalPlaylists))

	logging.Debug("Metrics collected: tracks=%d, with lyrics=%d, playlists=%d",
		stats.TotalTracks, stats.TracksWithLyric, stats.TotalPlaylists)
}
