// SPDX-License-Identifier: MIT

package playlist

import (
	"sort"
	"strings"
)

// CountryLabel is the source label rendered as "LOCAL - <CC>".
const CountryLabel = "country"

const bannerRule = "# ======================================"

// Source is one successfully fetched playlist body.
type Source struct {
	Label string
	Body  string
}

// Combined is the merged playlist document of a run.
type Combined struct {
	Text     string
	IDs      IDSet
	Sections []string // headings in document order
}

// IDSet is a set of channel identifiers.
type IDSet map[string]struct{}

func (s IDSet) Add(id string) { s[id] = struct{}{} }

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

// Sorted returns the identifiers in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Heading returns the banner heading for a source label.
func Heading(countryCode, label string) string {
	if label == CountryLabel {
		return "LOCAL - " + strings.ToUpper(countryCode)
	}
	return strings.ToUpper(label)
}

// Banner renders the section comment block for heading.
func Banner(heading string) string {
	return bannerRule + "\n# " + heading + "\n" + bannerRule + "\n"
}

// Aggregate merges sources, in the given order, into one M3U document and
// collects the distinct tvg-id values across all of them. With no sources the
// document is the bare header.
func Aggregate(countryCode string, sources []Source) Combined {
	var b strings.Builder
	b.WriteString(Header + "\n\n")

	ids := make(IDSet)
	sections := make([]string, 0, len(sources))

	for _, src := range sources {
		heading := Heading(countryCode, src.Label)
		sections = append(sections, heading)

		b.WriteString(Banner(heading))
		b.WriteString(stripHeader(src.Body))
		b.WriteString("\n\n")

		for _, id := range ExtractIDs(src.Body) {
			ids.Add(id)
		}
	}

	return Combined{Text: b.String(), IDs: ids, Sections: sections}
}

// stripHeader drops every #EXTM3U line, including header attributes such as
// x-tvg-url that only apply to the source document, and trims the result.
func stripHeader(body string) string {
	if !strings.Contains(body, Header) {
		return strings.TrimSpace(body)
	}
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), Header) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
