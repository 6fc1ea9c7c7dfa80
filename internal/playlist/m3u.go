// SPDX-License-Identifier: MIT

// Package playlist merges M3U playlists and extracts their channel identifiers.
package playlist

import (
	"bufio"
	"regexp"
	"strings"
)

const (
	// Header is the M3U document marker.
	Header = "#EXTM3U"
	// EntryMarker starts every playlist entry.
	EntryMarker = "#EXTINF"
)

var (
	tvgIDAttr = regexp.MustCompile(`tvg-id="([^"]+)"`)
	attrPair  = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)
)

// Item is the structural view of one #EXTINF entry.
type Item struct {
	Name    string
	TvgID   string
	TvgLogo string
	Group   string
	URL     string
}

// CountEntries returns the number of entry markers in body.
func CountEntries(body string) int {
	return strings.Count(body, EntryMarker)
}

// ExtractIDs returns every non-empty tvg-id value in body, in document order,
// duplicates included.
func ExtractIDs(body string) []string {
	matches := tvgIDAttr.FindAllStringSubmatch(body, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if id := strings.TrimSpace(m[1]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParseEntries parses the #EXTINF entries of body. Entries without a following
// URL line keep an empty URL.
func ParseEntries(body string) []Item {
	var items []Item
	var cur *Item

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, EntryMarker):
			if cur != nil {
				items = append(items, *cur)
			}
			it := parseExtinf(line)
			cur = &it
		case strings.HasPrefix(line, "#"):
			continue
		case cur != nil:
			cur.URL = line
			items = append(items, *cur)
			cur = nil
		}
	}
	if cur != nil {
		items = append(items, *cur)
	}
	return items
}

func parseExtinf(line string) Item {
	var it Item
	for _, m := range attrPair.FindAllStringSubmatch(line, -1) {
		switch m[1] {
		case "tvg-id":
			it.TvgID = strings.TrimSpace(m[2])
		case "tvg-logo":
			it.TvgLogo = m[2]
		case "group-title":
			it.Group = m[2]
		}
	}
	if i := nameSeparator(line); i >= 0 {
		it.Name = strings.TrimSpace(line[i+1:])
	}
	return it
}

// nameSeparator returns the index of the first comma outside quoted attribute values.
func nameSeparator(line string) int {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return i
			}
		}
	}
	return -1
}
