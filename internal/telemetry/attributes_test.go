// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func findAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSourceAttributes(t *testing.T) {
	attrs := SourceAttributes("news", 12)
	if v, ok := findAttr(attrs, SourceLabelKey); !ok || v.AsString() != "news" {
		t.Errorf("source.label = %v", v)
	}
	if v, ok := findAttr(attrs, SourceEntriesKey); !ok || v.AsInt64() != 12 {
		t.Errorf("source.entries = %v", v)
	}
}

func TestEPGAttributes(t *testing.T) {
	attrs := EPGAttributes(10, 4, 2048)
	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}
	if v, _ := findAttr(attrs, EPGMatchedKey); v.AsInt64() != 4 {
		t.Errorf("epg.matched = %v", v)
	}
	if v, _ := findAttr(attrs, EPGBytesKey); v.AsInt64() != 2048 {
		t.Errorf("epg.bytes = %v", v)
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("timeout")
	if v, _ := findAttr(attrs, ErrorKey); !v.AsBool() {
		t.Error("error attribute must be true")
	}
	if v, _ := findAttr(attrs, ErrorTypeKey); v.AsString() != "timeout" {
		t.Errorf("error.type = %v", v)
	}
}
