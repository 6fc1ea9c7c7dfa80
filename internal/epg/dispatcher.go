// SPDX-License-Identifier: MIT

package epg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/mytv/internal/catalog"
	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/ManuGH/mytv/internal/metrics"
	platformnet "github.com/ManuGH/mytv/internal/platform/net"
	"github.com/ManuGH/mytv/internal/playlist"
	"github.com/ManuGH/mytv/internal/telemetry"
	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultTimeout bounds the whole epg-fetcher request.
	DefaultTimeout = 120 * time.Second
	// MaxResponseBytes caps the guide data accepted from the epg-fetcher.
	MaxResponseBytes = 512 << 20
)

// Guide is the guide data returned by a successful dispatch. Data is always a
// gzip stream.
type Guide struct {
	Data []byte
	// Precompressed is true when the fetcher already answered with gzip and
	// Data holds its body verbatim.
	Precompressed bool
	Channels      int
	Matched       int
}

// Dispatcher sends enriched channel lists to the epg-fetcher.
type Dispatcher struct {
	client      *http.Client
	endpoint    string
	countryCode string
	timeout     time.Duration
}

// NewDispatcher returns a Dispatcher posting to endpoint. An empty endpoint
// yields a Dispatcher whose Dispatch always returns ErrDisabled.
func NewDispatcher(client *http.Client, endpoint, countryCode string, timeout time.Duration) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{client: client, endpoint: endpoint, countryCode: countryCode, timeout: timeout}
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool { return d.endpoint != "" }

// Dispatch enriches ids from lookups, posts them and returns the guide data.
// Every failure is local to this stage; callers treat any error as "no guide".
func (d *Dispatcher) Dispatch(ctx context.Context, ids playlist.IDSet, lookups catalog.Lookups) (*Guide, error) {
	ctx, span := telemetry.StartStage(ctx, "dispatch")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "epg")

	guide, err := d.dispatch(ctx, ids, lookups)
	metrics.IncEPGDispatch(Outcome(err))

	switch {
	case err == nil:
		span.SetAttributes(telemetry.EPGAttributes(guide.Channels, guide.Matched, int64(len(guide.Data)))...)
		logger.Info().
			Str(xglog.FieldEvent, "epg.received").
			Int(xglog.FieldBytes, len(guide.Data)).
			Bool("precompressed", guide.Precompressed).
			Msg("guide data received")
	case Skipped(err):
		span.AddEvent("epg.skipped", telemetry.EventAttributes(telemetry.ErrorAttributes(Outcome(err))...))
		if errors.Is(err, ErrDisabled) {
			logger.Info().Str(xglog.FieldEvent, "epg.skipped").Str(xglog.FieldReason, "disabled").
				Msg("EPG_FETCHER_URL not set - skipping")
		} else {
			logger.Info().Str(xglog.FieldEvent, "epg.skipped").Str(xglog.FieldReason, "no_channels").
				Msg("No channel IDs found - skipping EPG")
		}
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "epg dispatch failed")
		ev := logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "epg.failed").
			Str(xglog.FieldURL, platformnet.SanitizeURL(d.endpoint))
		var de *DispatchError
		if errors.As(err, &de) && de.Status != 0 {
			ev = ev.Int(xglog.FieldStatus, de.Status)
		}
		ev.Msg("EPG fetch failed")
	}
	return guide, err
}

func (d *Dispatcher) dispatch(ctx context.Context, ids playlist.IDSet, lookups catalog.Lookups) (*Guide, error) {
	if !d.Enabled() {
		return nil, ErrDisabled
	}
	if ids.Len() == 0 {
		return nil, ErrNoChannels
	}

	entries, matched := Enrich(ids, lookups)
	metrics.RecordEPGMatched(matched)
	logger := xglog.WithComponentFromContext(ctx, "epg")
	logger.Info().
		Str(xglog.FieldEvent, "epg.sending").
		Int(xglog.FieldEntries, len(entries)).
		Int("matched", matched).
		Msgf("Sending %d channels (%d with full metadata) to epg-fetcher", len(entries), matched)

	payload, err := json.Marshal(NewRequest(entries, d.countryCode))
	if err != nil {
		return nil, fmt.Errorf("encode epg request: %w", err)
	}

	body, precompressed, err := d.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	data := body
	if !precompressed {
		if data, err = compress(body); err != nil {
			return nil, fmt.Errorf("compress guide data: %w", err)
		}
	}
	return &Guide{Data: data, Precompressed: precompressed, Channels: len(entries), Matched: matched}, nil
}

func (d *Dispatcher) post(ctx context.Context, payload []byte) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, &DispatchError{Sentinel: ErrUnavailable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	// Setting Accept-Encoding ourselves disables the transport's transparent
	// decompression, so a gzip body is read as sent.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, false, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, false, &DispatchError{Sentinel: ErrStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, false, transportError(err)
	}
	if len(body) > MaxResponseBytes {
		return nil, false, &DispatchError{
			Sentinel: ErrBadResponse,
			Err:      fmt.Errorf("body exceeds %d bytes", MaxResponseBytes),
		}
	}
	return body, IsGzipDeclared(resp.Header), nil
}

// IsGzipDeclared reports whether the response headers declare a gzip body,
// either through Content-Encoding or Content-Type.
func IsGzipDeclared(h http.Header) bool {
	ce := strings.ToLower(h.Get("Content-Encoding"))
	ct := strings.ToLower(h.Get("Content-Type"))
	return strings.Contains(ce, "gzip") || strings.Contains(ct, "gzip")
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
