// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/mytv/internal/log"
	"gopkg.in/yaml.v3"
)

// Environment keys. COUNTRY_CODE and EPG_FETCHER_URL keep their historical
// unprefixed names because CI workflows set them directly.
const (
	envPrefix = "MYTV_"

	EnvConfigPath      = "MYTV_CONFIG"
	EnvCountryCode     = "COUNTRY_CODE"
	EnvEPGFetcherURL   = "EPG_FETCHER_URL"
	EnvOutputDir       = "MYTV_OUTPUT_DIR"
	EnvIPTVBase        = "MYTV_IPTV_BASE"
	EnvRegistryURL     = "MYTV_REGISTRY_URL"
	EnvGuideIndexURL   = "MYTV_GUIDE_INDEX_URL"
	EnvFetchTimeout    = "MYTV_FETCH_TIMEOUT"
	EnvEPGTimeout      = "MYTV_EPG_TIMEOUT"
	EnvHTTPRPS         = "MYTV_HTTP_RPS"
	EnvMetricsTextfile = "MYTV_METRICS_TEXTFILE"
	EnvLogLevel        = "LOG_LEVEL"
	EnvOTelExporter    = "MYTV_OTEL_EXPORTER"
	EnvOTelEndpoint    = "MYTV_OTEL_ENDPOINT"
	EnvOTelSampling    = "MYTV_OTEL_SAMPLING_RATE"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      strings.TrimSpace(configPath),
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)
	for _, key := range l.UnknownEnvKeys(os.Environ()) {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Msg("ignoring unknown MYTV_* environment variable")
	}
	normalize(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// UnknownEnvKeys returns the MYTV_-prefixed keys of environ that the loader
// did not read, sorted. Call it after Load.
func (l *Loader) UnknownEnvKeys(environ []string) []string {
	var out []string
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, envPrefix) || key == EnvConfigPath {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		CountryCode:   DefaultCountryCode,
		OutputDir:     DefaultOutputDir,
		IPTVBase:      DefaultIPTVBase,
		RegistryURL:   DefaultRegistryURL,
		GuideIndexURL: DefaultGuideIndexURL,
		FetchTimeout:  DefaultFetchTimeout,
		EPGTimeout:    DefaultEPGTimeout,
		LogLevel:      DefaultLogLevel,
		Tracing:       TracingConfig{SamplingRate: 1.0},
	}
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	setString(&dst.CountryCode, src.CountryCode)
	setString(&dst.EPGFetcherURL, src.EPGFetcherURL)
	setString(&dst.OutputDir, src.OutputDir)
	setString(&dst.IPTVBase, src.IPTVBase)
	setString(&dst.RegistryURL, src.RegistryURL)
	setString(&dst.GuideIndexURL, src.GuideIndexURL)
	setString(&dst.MetricsTextfile, src.MetricsTextfile)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.Tracing.Exporter, src.Tracing.Exporter)
	setString(&dst.Tracing.Endpoint, src.Tracing.Endpoint)
	if src.FetchTimeout != 0 {
		dst.FetchTimeout = src.FetchTimeout
	}
	if src.EPGTimeout != 0 {
		dst.EPGTimeout = src.EPGTimeout
	}
	if src.HTTPRPS != 0 {
		dst.HTTPRPS = src.HTTPRPS
	}
	if src.Tracing.SamplingRate != 0 {
		dst.Tracing.SamplingRate = src.Tracing.SamplingRate
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.CountryCode = l.envString(EnvCountryCode, cfg.CountryCode)
	cfg.EPGFetcherURL = l.envString(EnvEPGFetcherURL, cfg.EPGFetcherURL)
	cfg.OutputDir = l.envString(EnvOutputDir, cfg.OutputDir)
	cfg.IPTVBase = l.envString(EnvIPTVBase, cfg.IPTVBase)
	cfg.RegistryURL = l.envString(EnvRegistryURL, cfg.RegistryURL)
	cfg.GuideIndexURL = l.envString(EnvGuideIndexURL, cfg.GuideIndexURL)
	cfg.FetchTimeout = l.envDuration(EnvFetchTimeout, cfg.FetchTimeout)
	cfg.EPGTimeout = l.envDuration(EnvEPGTimeout, cfg.EPGTimeout)
	cfg.HTTPRPS = l.envFloat(EnvHTTPRPS, cfg.HTTPRPS)
	cfg.MetricsTextfile = l.envString(EnvMetricsTextfile, cfg.MetricsTextfile)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Tracing.Exporter = l.envString(EnvOTelExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvOTelEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat(EnvOTelSampling, cfg.Tracing.SamplingRate)
}

func normalize(cfg *AppConfig) {
	cfg.CountryCode = strings.TrimSpace(cfg.CountryCode)
	cfg.EPGFetcherURL = strings.TrimSpace(cfg.EPGFetcherURL)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	cfg.IPTVBase = strings.TrimRight(strings.TrimSpace(cfg.IPTVBase), "/")
	cfg.Tracing.Exporter = strings.ToLower(strings.TrimSpace(cfg.Tracing.Exporter))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
