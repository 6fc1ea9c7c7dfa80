// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	platformnet "github.com/ManuGH/mytv/internal/platform/net"
)

// Validate checks the effective configuration. Any failure is fatal for the run.
func Validate(cfg AppConfig) error {
	if !isCountryCode(cfg.CountryCode) {
		return fmt.Errorf("%w: country code %q must be non-empty and contain only letters, digits, '_' or '-'", ErrInvalidConfig, cfg.CountryCode)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalidConfig)
	}
	urls := []struct {
		name     string
		raw      string
		optional bool
	}{
		{name: "iptv base", raw: cfg.IPTVBase},
		{name: "registry URL", raw: cfg.RegistryURL},
		{name: "guide index URL", raw: cfg.GuideIndexURL},
		{name: "epg fetcher URL", raw: cfg.EPGFetcherURL, optional: true},
	}
	for _, u := range urls {
		if u.optional && u.raw == "" {
			continue
		}
		if _, err := platformnet.ParseHTTPURL(u.raw); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, u.name, err)
		}
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive, got %s", ErrInvalidConfig, cfg.FetchTimeout)
	}
	if cfg.EPGTimeout <= 0 {
		return fmt.Errorf("%w: epg timeout must be positive, got %s", ErrInvalidConfig, cfg.EPGTimeout)
	}
	switch cfg.Tracing.Exporter {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("%w: unsupported tracing exporter %q (supported: grpc, http)", ErrInvalidConfig, cfg.Tracing.Exporter)
	}
	return nil
}

// isCountryCode accepts any token that is safe as a path segment of the
// countries/<code>.m3u playlist, including non-ISO codes such as "int".
func isCountryCode(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
