// SPDX-License-Identifier: MIT

// Package catalog loads the channel registry and the guide channel index used
// to enrich playlist identifiers.
package catalog

import (
	"fmt"
	"io"
	"strings"
)

const (
	registryMinFields = 7
	registryNameField = 1
	registryLangField = 6
	langSeparator     = ";"
)

// Channel is the registry metadata of one channel.
type Channel struct {
	Name string
	Lang string
}

// Registry maps channel identifiers to registry metadata.
type Registry map[string]Channel

// ParseRegistry parses the registry CSV. The header row is skipped, records
// with fewer than seven fields or an empty identifier are dropped, and only the
// first of several ';'-separated languages is kept.
func ParseRegistry(r io.Reader) (Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	out := make(Registry)
	text := strings.TrimSpace(string(data))
	if text == "" {
		return out, nil
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines[1:] {
		fields := SplitRecord(line)
		if len(fields) < registryMinFields {
			continue
		}
		id := cleanField(fields[0])
		if id == "" {
			continue
		}
		lang, _, _ := strings.Cut(cleanField(fields[registryLangField]), langSeparator)
		out[id] = Channel{
			Name: cleanField(fields[registryNameField]),
			Lang: strings.TrimSpace(lang),
		}
	}
	return out, nil
}

// SplitRecord splits one CSV line on every comma followed by an even number
// of '"' characters up to the end of the line. For well-formed records those
// are exactly the commas outside quoted fields. Fields are returned raw,
// quotes included.
func SplitRecord(line string) []string {
	right := strings.Count(line, `"`)
	fields := make([]string, 0, 16)
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			right--
		case ',':
			if right%2 == 0 {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

// cleanField trims whitespace and then every leading and trailing '"'.
// Escaped quotes inside the value are left doubled.
func cleanField(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"`)
}
