// SPDX-License-Identifier: MIT

// Package kodi builds the pvr.iptvsimple add-on settings that point Kodi at
// the generated playlist and guide.
package kodi

import (
	"errors"
	"fmt"
	"strings"
)

// AddonID is the Kodi add-on the settings belong to.
const AddonID = "pvr.iptvsimple"

// LogoBaseURL is where channel logos are resolved from.
const LogoBaseURL = "https://iptv-org.github.io/iptv/logos/"

// Mode selects whether Kodi reads the artifacts from disk or over HTTP.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// ErrUnknownMode is returned by ParseMode for anything but local or remote.
var ErrUnknownMode = errors.New("kodi: unknown source mode")

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLocal, ModeRemote:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (expected local or remote)", ErrUnknownMode, s)
}

// Setting is one add-on setting.
type Setting struct {
	ID    string
	Value string
}

// Settings is an ordered list of add-on settings.
type Settings []Setting

// Get returns the value of id.
func (s Settings) Get(id string) (string, bool) {
	for _, st := range s {
		if st.ID == id {
			return st.Value, true
		}
	}
	return "", false
}

// Build returns the settings for mode. playlist and guide are file paths in
// local mode and URLs in remote mode.
func Build(mode Mode, playlist, guide string) (Settings, error) {
	if playlist == "" || guide == "" {
		return nil, errors.New("kodi: playlist and guide locations are required")
	}

	var s Settings
	switch mode {
	case ModeLocal:
		s = Settings{
			{ID: "m3uPathType", Value: "0"},
			{ID: "m3uPath", Value: playlist},
			{ID: "epgPathType", Value: "0"},
			{ID: "epgPath", Value: guide},
		}
	case ModeRemote:
		s = Settings{
			{ID: "m3uPathType", Value: "1"},
			{ID: "m3uUrl", Value: playlist},
			{ID: "epgPathType", Value: "1"},
			{ID: "epgUrl", Value: guide},
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return append(s,
		Setting{ID: "m3uCache", Value: "true"},
		Setting{ID: "m3uRefreshMode", Value: "2"},
		Setting{ID: "m3uRefreshIntervalMins", Value: "60"},
		Setting{ID: "epgCache", Value: "true"},
		Setting{ID: "logoPathType", Value: "1"},
		Setting{ID: "logoBaseUrl", Value: LogoBaseURL},
	), nil
}

// Sink receives settings one at a time.
type Sink interface {
	SetSetting(id, value string) error
}

// Apply writes every setting to sink in order and stops at the first error.
func Apply(sink Sink, settings Settings) error {
	for _, s := range settings {
		if err := sink.SetSetting(s.ID, s.Value); err != nil {
			return fmt.Errorf("set %s: %w", s.ID, err)
		}
	}
	return nil
}

// MapSink collects settings in memory.
type MapSink map[string]string

func (m MapSink) SetSetting(id, value string) error {
	m[id] = value
	return nil
}
