// SPDX-License-Identifier: MIT

// Package source retrieves the remote M3U playlists the generator merges.
package source

import (
	"fmt"
	"strings"
)

// Labels of the declared playlist sources.
const (
	LabelCountry = "country"
	LabelNews    = "news"
	LabelMovies  = "movies"
	LabelSports  = "sports"
)

// Descriptor names one remote playlist endpoint.
type Descriptor struct {
	Label string
	URL   string
}

// Result is the outcome of fetching one Descriptor. A failed fetch carries Err
// and contributes no body and no entries.
type Result struct {
	Descriptor
	Body    string
	Entries int
	Err     error
}

// OK reports whether the source was fetched successfully.
func (r Result) OK() bool { return r.Err == nil }

// Defaults returns the declared sources in section order: the country playlist
// first, then the fixed categories.
func Defaults(iptvBase, countryCode string) []Descriptor {
	base := strings.TrimRight(iptvBase, "/")
	cc := strings.ToLower(countryCode)
	return []Descriptor{
		{Label: LabelCountry, URL: fmt.Sprintf("%s/countries/%s.m3u", base, cc)},
		{Label: LabelNews, URL: base + "/categories/news.m3u"},
		{Label: LabelMovies, URL: base + "/categories/movies.m3u"},
		{Label: LabelSports, URL: base + "/categories/sports.m3u"},
	}
}
