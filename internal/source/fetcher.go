// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/ManuGH/mytv/internal/metrics"
	platformnet "github.com/ManuGH/mytv/internal/platform/net"
	"github.com/ManuGH/mytv/internal/playlist"
	"github.com/ManuGH/mytv/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// MaxBodyBytes caps every downloaded document.
const MaxBodyBytes = 64 << 20

// Fetcher performs the one-shot GET requests of a run. Every call is attempted
// exactly once; there is no retry.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewFetcher returns a Fetcher bounding each request by timeout. rps > 0 paces
// outbound requests; rps <= 0 leaves them unpaced.
func NewFetcher(client *http.Client, timeout time.Duration, rps float64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{client: client, timeout: timeout}
	if rps > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return f
}

// Get downloads url and returns the body as UTF-8. label only annotates errors.
func (f *Fetcher) Get(ctx context.Context, label, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, wrapError(label, url, err, 0)
		}
	}

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Sentinel: ErrUnavailable, Label: label, URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, wrapError(label, url, err, 0)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, wrapError(label, url, nil, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, wrapError(label, url, err, 0)
		}
		return nil, &FetchError{Sentinel: ErrBadResponse, Label: label, URL: url, Err: err}
	}
	if len(body) > MaxBodyBytes {
		return nil, &FetchError{
			Sentinel: ErrBadResponse,
			Label:    label,
			URL:      url,
			Err:      fmt.Errorf("body exceeds %d bytes", MaxBodyBytes),
		}
	}
	text, err := ToUTF8(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{Sentinel: ErrBadResponse, Label: label, URL: url, Err: fmt.Errorf("decode charset: %w", err)}
	}
	return text, nil
}

// Fetch downloads one playlist source and counts its entries.
func (f *Fetcher) Fetch(ctx context.Context, d Descriptor) Result {
	body, err := f.Get(ctx, d.Label, d.URL)
	if err != nil {
		return Result{Descriptor: d, Err: err}
	}
	text := string(body)
	return Result{Descriptor: d, Body: text, Entries: playlist.CountEntries(text)}
}

// FetchAll fetches every descriptor sequentially, in order. Failures are logged
// and recorded but never stop the remaining sources.
func (f *Fetcher) FetchAll(ctx context.Context, descriptors []Descriptor) []Result {
	ctx, span := telemetry.StartStage(ctx, "fetch")
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "source")
	results := make([]Result, 0, len(descriptors))
	failed := 0

	for _, d := range descriptors {
		res := f.Fetch(ctx, d)
		results = append(results, res)

		if !res.OK() {
			failed++
			reason := Reason(res.Err)
			metrics.IncSourceFailure(d.Label, reason)
			metrics.RecordSourceChannels(d.Label, 0)
			span.AddEvent("source.failed", telemetry.EventAttributes(telemetry.SourceAttributes(d.Label, 0)...))
			logger.Warn().
				Err(res.Err).
				Str(xglog.FieldEvent, "source.failed").
				Str(xglog.FieldLabel, d.Label).
				Str(xglog.FieldURL, platformnet.SanitizeURL(d.URL)).
				Str(xglog.FieldReason, reason).
				Msg("playlist source failed")
			continue
		}

		metrics.RecordSourceChannels(d.Label, res.Entries)
		span.AddEvent("source.fetched", telemetry.EventAttributes(telemetry.SourceAttributes(d.Label, res.Entries)...))
		items := playlist.ParseEntries(res.Body)
		withID := 0
		for _, it := range items {
			if it.TvgID != "" {
				withID++
			}
		}
		logger.Info().
			Str(xglog.FieldEvent, "source.fetched").
			Str(xglog.FieldLabel, d.Label).
			Int(xglog.FieldEntries, res.Entries).
			Int("with_tvg_id", withID).
			Msg("playlist source fetched")
	}

	if failed == len(descriptors) && failed > 0 {
		span.SetStatus(codes.Error, "all playlist sources failed")
	}
	return results
}
