// SPDX-License-Identifier: MIT

// Package metrics holds the prometheus collectors of a generator run.
//
// The generator is a one-shot job, so nothing is served over HTTP; the
// registry is exported with WriteTextfile for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the private registry all generator collectors are registered with.
var Registry = prometheus.NewRegistry()

var (
	sourceChannels = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Name: "mytv_source_channels",
		Help: "Number of #EXTINF entries per playlist source (last run)",
	}, []string{"source"})

	sourceFailuresTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "mytv_source_failures_total",
		Help: "Playlist source fetch failures by source and reason",
	}, []string{"source", "reason"}) // reason=timeout|network|http_4xx|http_5xx|error

	uniqueIDs = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mytv_unique_ids",
		Help: "Distinct tvg-id values across all fetched playlists (last run)",
	})

	catalogEntries = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Name: "mytv_catalog_entries",
		Help: "Entries loaded per metadata catalog (last run)",
	}, []string{"catalog"}) // catalog=registry|guide_index

	catalogFailuresTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "mytv_catalog_failures_total",
		Help: "Metadata catalog load failures",
	}, []string{"catalog"})

	epgMatched = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mytv_epg_matched_channels",
		Help: "Channels sent to the epg-fetcher with guide site metadata (last run)",
	})

	epgDispatchTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "mytv_epg_dispatch_total",
		Help: "Enrichment dispatch attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure|skipped_disabled|skipped_empty

	epgBytes = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mytv_epg_bytes",
		Help: "Size of the gzip guide-data artifact written (last run)",
	})

	playlistBytes = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mytv_playlist_bytes",
		Help: "Size of the combined playlist written (last run)",
	})

	runDurationSeconds = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "mytv_run_duration_seconds",
		Help:    "Wall time of a full generator run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)

func RecordSourceChannels(source string, n int) { sourceChannels.WithLabelValues(source).Set(float64(n)) }

func IncSourceFailure(source, reason string) {
	sourceFailuresTotal.WithLabelValues(source, reason).Inc()
}

func RecordUniqueIDs(n int) { uniqueIDs.Set(float64(n)) }

func RecordCatalogEntries(catalog string, n int) {
	catalogEntries.WithLabelValues(catalog).Set(float64(n))
}

func IncCatalogFailure(catalog string) { catalogFailuresTotal.WithLabelValues(catalog).Inc() }

func RecordEPGMatched(n int) { epgMatched.Set(float64(n)) }

func IncEPGDispatch(outcome string) { epgDispatchTotal.WithLabelValues(outcome).Inc() }

func RecordEPGBytes(n int64) { epgBytes.Set(float64(n)) }

func RecordPlaylistBytes(n int64) { playlistBytes.Set(float64(n)) }

func ObserveRunDuration(seconds float64) { runDurationSeconds.Observe(seconds) }

// WriteTextfile atomically writes the registry in text exposition format to path.
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
