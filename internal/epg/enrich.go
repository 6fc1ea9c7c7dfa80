// SPDX-License-Identifier: MIT

// Package epg enriches channel identifiers with catalog metadata and requests
// the matching guide data from an external epg-fetcher service.
package epg

import (
	"encoding/json"

	"github.com/ManuGH/mytv/internal/catalog"
	"github.com/ManuGH/mytv/internal/playlist"
)

// RequestLang is the language sent with every enrichment request.
const RequestLang = "en"

// Entry is one channel sent to the epg-fetcher. Registry fields are present
// when the identifier is known to the registry; guide fields when it is known
// to the guide index.
type Entry struct {
	XMLTVID string
	Name    string
	Lang    string
	Site    string
	SiteID  string

	InRegistry bool
	InGuide    bool
}

type entryWire struct {
	XMLTVID string  `json:"xmltv_id"`
	Name    *string `json:"name,omitempty"`
	Lang    *string `json:"lang,omitempty"`
	Site    *string `json:"site,omitempty"`
	SiteID  *string `json:"site_id,omitempty"`
}

// MarshalJSON emits the registry and guide keys only for the catalogs the
// identifier was found in. Empty values from a matching catalog are kept.
func (e Entry) MarshalJSON() ([]byte, error) {
	w := entryWire{XMLTVID: e.XMLTVID}
	if e.InRegistry {
		w.Name, w.Lang = &e.Name, &e.Lang
	}
	if e.InGuide {
		w.Site, w.SiteID = &e.Site, &e.SiteID
	}
	return json.Marshal(w)
}

// Request is the body POSTed to the epg-fetcher.
type Request struct {
	Channels []Entry `json:"channels"`
	Country  string  `json:"country"`
	Lang     string  `json:"lang"`
}

// Enrich builds one Entry per identifier, in sorted identifier order. matched
// counts the identifiers found in the guide index.
func Enrich(ids playlist.IDSet, lookups catalog.Lookups) ([]Entry, int) {
	sorted := ids.Sorted()
	entries := make([]Entry, 0, len(sorted))
	matched := 0

	for _, id := range sorted {
		e := Entry{XMLTVID: id}
		if ch, ok := lookups.Registry[id]; ok {
			e.Name, e.Lang, e.InRegistry = ch.Name, ch.Lang, true
		}
		if g, ok := lookups.Guide[id]; ok {
			e.Site, e.SiteID, e.InGuide = g.Site, g.SiteID, true
			matched++
		}
		entries = append(entries, e)
	}
	return entries, matched
}

// NewRequest assembles the request for countryCode.
func NewRequest(entries []Entry, countryCode string) Request {
	if entries == nil {
		entries = []Entry{}
	}
	return Request{Channels: entries, Country: countryCode, Lang: RequestLang}
}
