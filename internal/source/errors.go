// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrTimeout     = errors.New("upstream: request timed out")
	ErrStatus      = errors.New("upstream: non-success status")
	ErrBadResponse = errors.New("upstream: unreadable or oversized response")
)

// FetchError wraps a sentinel with the context of the failed request.
type FetchError struct {
	Sentinel error
	Label    string
	URL      string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %v", e.Label, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying transport error.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func wrapError(label, url string, err error, status int) error {
	fe := &FetchError{Label: label, URL: url, Status: status, Err: err}
	switch {
	case err != nil && isTimeout(err):
		fe.Sentinel = ErrTimeout
	case err != nil:
		fe.Sentinel = ErrUnavailable
	default:
		fe.Sentinel = ErrStatus
	}
	return fe
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Reason classifies a fetch error into a low-cardinality label for logs and metrics.
func Reason(err error) string {
	if err == nil {
		return "ok"
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Status > 0 {
		if fe.Status >= http.StatusInternalServerError {
			return "http_5xx"
		}
		return "http_4xx"
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "network"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	}
	return "error"
}
