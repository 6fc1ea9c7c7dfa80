// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const (
	DefaultCountryCode   = "us"
	DefaultOutputDir     = "docs"
	DefaultIPTVBase      = "https://iptv-org.github.io/iptv"
	DefaultRegistryURL   = "https://raw.githubusercontent.com/iptv-org/database/master/data/channels.csv"
	DefaultGuideIndexURL = "https://iptv-org.github.io/epg/channels.json"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultEPGTimeout    = 120 * time.Second
	DefaultLogLevel      = "info"
)

// AppConfig is the effective configuration of one generator run.
type AppConfig struct {
	Version string

	CountryCode   string
	EPGFetcherURL string // empty disables guide enrichment
	OutputDir     string

	IPTVBase      string
	RegistryURL   string
	GuideIndexURL string

	FetchTimeout time.Duration
	EPGTimeout   time.Duration
	HTTPRPS      float64 // <= 0 means unlimited

	MetricsTextfile string
	LogLevel        string

	Tracing TracingConfig
}

// TracingConfig selects the OTLP exporter. An empty Exporter disables tracing.
type TracingConfig struct {
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML file layout. Zero values leave the default in place.
type FileConfig struct {
	CountryCode     string            `yaml:"countryCode,omitempty"`
	EPGFetcherURL   string            `yaml:"epgFetcherURL,omitempty"`
	OutputDir       string            `yaml:"outputDir,omitempty"`
	IPTVBase        string            `yaml:"iptvBase,omitempty"`
	RegistryURL     string            `yaml:"registryURL,omitempty"`
	GuideIndexURL   string            `yaml:"guideIndexURL,omitempty"`
	FetchTimeout    time.Duration     `yaml:"fetchTimeout,omitempty"`
	EPGTimeout      time.Duration     `yaml:"epgTimeout,omitempty"`
	HTTPRPS         float64           `yaml:"httpRPS,omitempty"`
	MetricsTextfile string            `yaml:"metricsTextfile,omitempty"`
	LogLevel        string            `yaml:"logLevel,omitempty"`
	Tracing         FileTracingConfig `yaml:"tracing,omitempty"`
}

type FileTracingConfig struct {
	Exporter     string  `yaml:"exporter,omitempty"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}
