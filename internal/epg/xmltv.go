// SPDX-License-Identifier: MIT

package epg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// maxSummaryBytes bounds the decompressed document Summarize will scan.
const maxSummaryBytes = 1 << 30

// Summary counts the top-level elements of an XMLTV document.
type Summary struct {
	Generator  string
	Channels   int
	Programmes int
}

// Summarize scans gzip-encoded XMLTV guide data and counts its channel and
// programme elements. The scan is structural only: element contents are not
// decoded and entities declared in a DOCTYPE are never expanded.
func Summarize(gz []byte) (Summary, error) {
	zr, err := gzip.NewReader(bytes.NewReader(gz))
	if err != nil {
		return Summary{}, fmt.Errorf("open guide data: %w", err)
	}
	defer func() { _ = zr.Close() }()

	dec := xml.NewDecoder(io.LimitReader(zr, maxSummaryBytes))
	dec.Strict = true
	dec.Entity = make(map[string]string)

	var (
		s     Summary
		depth int
		root  bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, fmt.Errorf("decode xmltv: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				if t.Name.Local != "tv" {
					return s, fmt.Errorf("decode xmltv: unexpected root element <%s>", t.Name.Local)
				}
				root = true
				for _, a := range t.Attr {
					if a.Name.Local == "generator-info-name" {
						s.Generator = a.Value
					}
				}
			case depth == 2 && t.Name.Local == "channel":
				s.Channels++
			case depth == 2 && t.Name.Local == "programme":
				s.Programmes++
			}
		case xml.EndElement:
			depth--
		}
	}

	if !root {
		return s, errors.New("decode xmltv: missing <tv> root element")
	}
	return s, nil
}
