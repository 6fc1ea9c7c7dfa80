// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ManuGH/mytv/internal/config"
	"github.com/ManuGH/mytv/internal/epg"
	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/ManuGH/mytv/internal/metrics"
	"github.com/ManuGH/mytv/internal/playlist"
	"github.com/ManuGH/mytv/internal/source"
	"github.com/ManuGH/mytv/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Generate runs one full cycle: fetch sources → aggregate → write playlist →
// load catalogs → dispatch to the epg-fetcher → write guide.
//
// Remote failures only degrade the output. The returned error is non-nil only
// for invalid configuration or when an output file cannot be written.
func Generate(ctx context.Context, cfg config.AppConfig, deps Deps) (*Status, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	if xglog.RunIDFromContext(ctx) == "" {
		ctx = xglog.ContextWithRunID(ctx, uuid.NewString())
	}
	ctx, span := telemetry.Tracer().Start(ctx, "mytv.generate")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "jobs")
	status := &Status{RunID: xglog.RunIDFromContext(ctx), StartTime: deps.Clock()}
	span.SetAttributes(attribute.String("run.id", status.RunID), attribute.String("country", cfg.CountryCode))

	logger.Info().
		Str(xglog.FieldEvent, "generate.start").
		Str("country", cfg.CountryCode).
		Bool("epg_enabled", cfg.EPGFetcherURL != "").
		Msg("starting playlist generation")

	if err := PrepareOutputDir(cfg.OutputDir); err != nil {
		return nil, err
	}

	// Playlists
	results := deps.Fetcher.FetchAll(ctx, source.Defaults(cfg.IPTVBase, cfg.CountryCode))
	sources := make([]playlist.Source, 0, len(results))
	for _, r := range results {
		st := SourceStatus{Label: r.Label, Entries: r.Entries}
		if r.Err != nil {
			st.Error = r.Err.Error()
		} else {
			sources = append(sources, playlist.Source{Label: r.Label, Body: r.Body})
		}
		status.TotalEntries += r.Entries
		status.Sources = append(status.Sources, st)
	}

	combined := aggregate(ctx, cfg.CountryCode, sources)
	status.UniqueIDs = combined.IDs.Len()
	status.Sections = combined.Sections
	metrics.RecordUniqueIDs(status.UniqueIDs)

	status.PlaylistPath = filepath.Join(cfg.OutputDir, PlaylistFile)
	size, err := WritePlaylist(ctx, status.PlaylistPath, combined.Text)
	if err != nil {
		return nil, err
	}
	status.PlaylistBytes = size
	metrics.RecordPlaylistBytes(size)
	logger.Info().
		Str(xglog.FieldEvent, "playlist.saved").
		Str(xglog.FieldPath, status.PlaylistPath).
		Int(xglog.FieldEntries, status.TotalEntries).
		Int("unique_ids", status.UniqueIDs).
		Strs("sections", combined.Sections).
		Int(xglog.FieldBytes, int(size)).
		Msgf("Playlist: %d channels, %d unique IDs", status.TotalEntries, status.UniqueIDs)

	// Guide
	lookups := deps.Resolver.Load(ctx)
	status.RegistryEntries = len(lookups.Registry)
	status.GuideEntries = len(lookups.Guide)

	guide, err := deps.Dispatcher.Dispatch(ctx, combined.IDs, lookups)
	status.EPGOutcome = epg.Outcome(err)
	if err != nil {
		if !epg.Skipped(err) {
			status.EPGError = err.Error()
		}
	} else {
		status.Matched = guide.Matched
		if err := writeGuide(ctx, filepath.Join(cfg.OutputDir, GuideFile), guide, status); err != nil {
			return nil, err
		}
	}

	status.EndTime = deps.Clock()
	metrics.ObserveRunDuration(status.Duration().Seconds())
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldPath, cfg.MetricsTextfile).Msg("metrics textfile export failed")
		}
	}

	logger.Info().
		Str(xglog.FieldEvent, "generate.success").
		Strs("failed_sources", status.FailedSources()).
		Str("epg_outcome", status.EPGOutcome).
		Dur("duration", status.Duration()).
		Msg("Done.")
	return status, nil
}

func aggregate(ctx context.Context, countryCode string, sources []playlist.Source) playlist.Combined {
	_, span := telemetry.StartStage(ctx, "aggregate")
	defer span.End()

	combined := playlist.Aggregate(countryCode, sources)
	span.SetAttributes(
		attribute.Int("sources.ok", len(sources)),
		attribute.Int("ids.unique", combined.IDs.Len()),
		attribute.StringSlice("sections", combined.Sections),
	)
	return combined
}

func writeGuide(ctx context.Context, path string, guide *epg.Guide, status *Status) error {
	logger := xglog.WithComponentFromContext(ctx, "jobs")

	size, err := WriteGuide(ctx, path, guide.Data)
	if err != nil {
		return err
	}
	status.EPGWritten = true
	status.EPGPath = path
	status.EPGBytes = size
	metrics.RecordEPGBytes(size)

	ev := logger.Info().
		Str(xglog.FieldEvent, "epg.saved").
		Str(xglog.FieldPath, path).
		Int64(xglog.FieldBytes, size).
		Int("matched", guide.Matched)
	if summary, err := epg.Summarize(guide.Data); err != nil {
		logger.Warn().Err(err).Str(xglog.FieldPath, path).Msg("guide data is not readable XMLTV")
	} else {
		ev = ev.Str("generator", summary.Generator).
			Int("xmltv_channels", summary.Channels).
			Int("xmltv_programmes", summary.Programmes)
	}
	ev.Msgf("EPG saved: %d KB", size/1024)
	return nil
}
