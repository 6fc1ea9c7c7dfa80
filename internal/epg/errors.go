// SPDX-License-Identifier: MIT

package epg

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrDisabled is returned when no epg-fetcher endpoint is configured.
	ErrDisabled = errors.New("epg: fetcher endpoint not configured")
	// ErrNoChannels is returned when there is nothing to enrich.
	ErrNoChannels = errors.New("epg: no channel identifiers")

	ErrUnavailable = errors.New("epg: fetcher unreachable")
	ErrTimeout     = errors.New("epg: fetcher timed out")
	ErrStatus      = errors.New("epg: fetcher returned non-success status")
	ErrBadResponse = errors.New("epg: unreadable or oversized response")
)

// DispatchError describes a failed request to the epg-fetcher.
type DispatchError struct {
	Sentinel error
	Status   int
	Err      error
}

func (e *DispatchError) Error() string {
	msg := e.Sentinel.Error()
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DispatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func transportError(err error) *DispatchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &DispatchError{Sentinel: ErrTimeout, Err: err}
	}
	return &DispatchError{Sentinel: ErrUnavailable, Err: err}
}

// Outcome maps a Dispatch result to the dispatch metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDisabled):
		return "skipped_disabled"
	case errors.Is(err, ErrNoChannels):
		return "skipped_empty"
	}
	return "failure"
}

// Skipped reports whether err means the stage did not run at all.
func Skipped(err error) bool {
	return errors.Is(err, ErrDisabled) || errors.Is(err, ErrNoChannels)
}
