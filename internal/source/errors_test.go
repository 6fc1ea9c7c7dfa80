// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
)

func TestWrapError_Sentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		sentinel error
		reason   string
	}{
		{name: "HTTP 404", status: http.StatusNotFound, sentinel: ErrStatus, reason: "http_4xx"},
		{name: "HTTP 503", status: http.StatusServiceUnavailable, sentinel: ErrStatus, reason: "http_5xx"},
		{name: "Network Timeout", err: &net.DNSError{IsTimeout: true}, sentinel: ErrTimeout, reason: "timeout"},
		{name: "Context Timeout", err: context.DeadlineExceeded, sentinel: ErrTimeout, reason: "timeout"},
		{name: "Connection refused", err: errors.New("connect: connection refused"), sentinel: ErrUnavailable, reason: "network"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := wrapError("news", "http://x/news.m3u", tc.err, tc.status)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Errorf("expected sentinel %v, got %v", tc.sentinel, wrapped)
			}
			if tc.err != nil && !errors.Is(wrapped, tc.err) {
				t.Errorf("expected underlying error to stay reachable, got %v", wrapped)
			}
			if got := Reason(wrapped); got != tc.reason {
				t.Errorf("Reason = %q, want %q", got, tc.reason)
			}

			var fe *FetchError
			if !errors.As(wrapped, &fe) {
				t.Fatal("expected error to be *FetchError")
			}
			if fe.Label != "news" {
				t.Errorf("expected label 'news', got %s", fe.Label)
			}
		})
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := wrapError("sports", "http://x", nil, 502)
	want := "fetch sports: upstream: non-success status (HTTP 502)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestReason_Nil(t *testing.T) {
	if got := Reason(nil); got != "ok" {
		t.Errorf("Reason(nil) = %q", got)
	}
}
