// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldRunID   = "run_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"

	// Source fields
	FieldLabel   = "label"
	FieldURL     = "url"
	FieldReason  = "reason"
	FieldStatus  = "status"
	FieldEntries = "entries"

	// Output fields
	FieldPath  = "path"
	FieldBytes = "bytes"
)
