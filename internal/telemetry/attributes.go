// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the pipeline.
const (
	StageKey = "pipeline.stage"

	SourceLabelKey   = "source.label"
	SourceEntriesKey = "source.entries"

	CatalogNameKey    = "catalog.name"
	CatalogEntriesKey = "catalog.entries"

	EPGChannelsKey = "epg.channels"
	EPGMatchedKey  = "epg.matched"
	EPGBytesKey    = "epg.bytes"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// StageAttributes creates pipeline stage attributes.
func StageAttributes(stage string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(StageKey, stage)}
}

// SourceAttributes describes one fetched playlist source.
func SourceAttributes(label string, entries int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SourceLabelKey, label),
		attribute.Int(SourceEntriesKey, entries),
	}
}

// CatalogAttributes describes one loaded metadata catalog.
func CatalogAttributes(name string, entries int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CatalogNameKey, name),
		attribute.Int(CatalogEntriesKey, entries),
	}
}

// EPGAttributes describes an enrichment dispatch.
func EPGAttributes(channels, matched int, bytes int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(EPGChannelsKey, channels),
		attribute.Int(EPGMatchedKey, matched),
		attribute.Int64(EPGBytesKey, bytes),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// EventAttributes adapts attributes for span.AddEvent.
func EventAttributes(attrs ...attribute.KeyValue) trace.EventOption {
	return trace.WithAttributes(attrs...)
}
