// SPDX-License-Identifier: MIT

package catalog

import (
	"bytes"
	"context"

	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/ManuGH/mytv/internal/metrics"
	"github.com/ManuGH/mytv/internal/telemetry"
)

// Catalog names used in logs and metrics.
const (
	NameRegistry   = "registry"
	NameGuideIndex = "guide_index"
)

// Getter downloads a remote document.
type Getter interface {
	Get(ctx context.Context, label, url string) ([]byte, error)
}

// Lookups are the two identifier-keyed catalogs of a run. Either may be empty.
type Lookups struct {
	Registry Registry
	Guide    GuideIndex
}

// Resolver loads the registry and the guide index.
type Resolver struct {
	getter        Getter
	registryURL   string
	guideIndexURL string
}

// NewResolver returns a Resolver reading both catalogs through getter.
func NewResolver(getter Getter, registryURL, guideIndexURL string) *Resolver {
	return &Resolver{getter: getter, registryURL: registryURL, guideIndexURL: guideIndexURL}
}

// Load fetches and parses both catalogs. Each load is independent: a failure
// leaves that catalog empty, is logged, and never affects the other one.
func (r *Resolver) Load(ctx context.Context) Lookups {
	ctx, span := telemetry.StartStage(ctx, "resolve")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "catalog")

	registry, err := r.loadRegistry(ctx)
	if err != nil {
		metrics.IncCatalogFailure(NameRegistry)
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "catalog.failed").
			Str("catalog", NameRegistry).
			Msg("channel database failed")
		registry = Registry{}
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "catalog.loaded").
			Str("catalog", NameRegistry).
			Int(xglog.FieldEntries, len(registry)).
			Msg("channel database loaded")
	}
	metrics.RecordCatalogEntries(NameRegistry, len(registry))
	span.AddEvent("catalog.registry", telemetry.EventAttributes(telemetry.CatalogAttributes(NameRegistry, len(registry))...))

	guide, err := r.loadGuideIndex(ctx)
	if err != nil {
		metrics.IncCatalogFailure(NameGuideIndex)
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "catalog.failed").
			Str("catalog", NameGuideIndex).
			Msg("EPG channels list failed")
		guide = GuideIndex{}
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "catalog.loaded").
			Str("catalog", NameGuideIndex).
			Int(xglog.FieldEntries, len(guide)).
			Msg("EPG channels list loaded")
	}
	metrics.RecordCatalogEntries(NameGuideIndex, len(guide))
	span.AddEvent("catalog.guide_index", telemetry.EventAttributes(telemetry.CatalogAttributes(NameGuideIndex, len(guide))...))

	return Lookups{Registry: registry, Guide: guide}
}

func (r *Resolver) loadRegistry(ctx context.Context) (Registry, error) {
	body, err := r.getter.Get(ctx, NameRegistry, r.registryURL)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(bytes.NewReader(body))
}

func (r *Resolver) loadGuideIndex(ctx context.Context) (GuideIndex, error) {
	body, err := r.getter.Get(ctx, NameGuideIndex, r.guideIndexURL)
	if err != nil {
		return nil, err
	}
	return ParseGuideIndex(bytes.NewReader(body))
}
