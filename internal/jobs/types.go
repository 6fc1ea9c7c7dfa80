// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"time"

	"github.com/ManuGH/mytv/internal/catalog"
	"github.com/ManuGH/mytv/internal/config"
	"github.com/ManuGH/mytv/internal/epg"
	"github.com/ManuGH/mytv/internal/platform/httpx"
	"github.com/ManuGH/mytv/internal/playlist"
	"github.com/ManuGH/mytv/internal/source"
)

// Output file names inside the output directory.
const (
	PlaylistFile = "playlist.m3u8"
	GuideFile    = "epg.xml.gz"
)

// SourceFetcher downloads the declared playlist sources.
type SourceFetcher interface {
	FetchAll(ctx context.Context, descriptors []source.Descriptor) []source.Result
}

// MetadataResolver loads the registry and guide index lookups.
type MetadataResolver interface {
	Load(ctx context.Context) catalog.Lookups
}

// GuideDispatcher requests guide data for a set of channel identifiers.
type GuideDispatcher interface {
	Dispatch(ctx context.Context, ids playlist.IDSet, lookups catalog.Lookups) (*epg.Guide, error)
}

// Deps holds the collaborators of a generator run
type Deps struct {
	Fetcher    SourceFetcher
	Resolver   MetadataResolver
	Dispatcher GuideDispatcher
	Clock      func() time.Time
}

// NewDeps wires the production collaborators for cfg.
func NewDeps(cfg config.AppConfig) Deps {
	fetcher := source.NewFetcher(httpx.NewClient(cfg.FetchTimeout), cfg.FetchTimeout, cfg.HTTPRPS)
	return Deps{
		Fetcher:    fetcher,
		Resolver:   catalog.NewResolver(fetcher, cfg.RegistryURL, cfg.GuideIndexURL),
		Dispatcher: epg.NewDispatcher(httpx.NewClient(cfg.EPGTimeout), cfg.EPGFetcherURL, cfg.CountryCode, cfg.EPGTimeout),
		Clock:      time.Now,
	}
}

// SourceStatus is the outcome of one playlist source.
type SourceStatus struct {
	Label   string `json:"label"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// Status summarizes a finished generator run.
type Status struct {
	RunID     string         `json:"run_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Sources   []SourceStatus `json:"sources"`

	TotalEntries    int `json:"total_entries"`
	UniqueIDs       int `json:"unique_ids"`
	RegistryEntries int `json:"registry_entries"`
	GuideEntries    int `json:"guide_entries"`
	Matched         int `json:"matched"`

	PlaylistPath  string `json:"playlist_path"`
	PlaylistBytes int64  `json:"playlist_bytes"`
	// Sections are the playlist section headings in document order.
	Sections []string `json:"sections"`

	EPGWritten bool   `json:"epg_written"`
	EPGPath    string `json:"epg_path,omitempty"`
	EPGBytes   int64  `json:"epg_bytes,omitempty"`
	// EPGOutcome is the dispatch outcome: success, failure, skipped_disabled
	// or skipped_empty.
	EPGOutcome string `json:"epg_outcome"`
	EPGError   string `json:"epg_error,omitempty"`
}

// Duration returns the wall time of the run.
func (s *Status) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

// FailedSources returns the labels of the sources that could not be fetched.
func (s *Status) FailedSources() []string {
	var out []string
	for _, src := range s.Sources {
		if src.Error != "" {
			out = append(out, src.Label)
		}
	}
	return out
}
