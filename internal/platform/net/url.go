// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package net holds URL helpers shared by configuration and the HTTP callers.
package net

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SanitizeURL removes user info and masks query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	if parsedURL.RawQuery != "" {
		parsedURL.RawQuery = "redacted"
	}
	return parsedURL.String()
}

// ParseHTTPURL validates an absolute HTTP/HTTPS URL.
// It enforces:
//   - Scheme must be "http" or "https" (case-insensitive)
//   - Host must be non-empty
//   - No fragment
//
// Embedded credentials are accepted; use SanitizeURL before logging.
func ParseHTTPURL(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty URL")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", SanitizeURL(s), err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL %q is missing host", SanitizeURL(s))
	}
	if u.Fragment != "" {
		return nil, fmt.Errorf("URL %q must not contain a fragment", SanitizeURL(s))
	}
	return u, nil
}
