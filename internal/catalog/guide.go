// SPDX-License-Identifier: MIT

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// GuideChannel locates a channel's schedule on a guide provider site.
type GuideChannel struct {
	Site   string
	SiteID string
}

// GuideIndex maps xmltv identifiers to their guide provider location.
type GuideIndex map[string]GuideChannel

// ParseGuideIndex decodes the guide channel index, a JSON array of objects.
// Objects without a non-empty xmltv_id are skipped; missing or null site and
// site_id become empty strings. The array is decoded element by element.
func ParseGuideIndex(r io.Reader) (GuideIndex, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode guide index: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errors.New("decode guide index: expected JSON array")
	}

	out := make(GuideIndex)
	for dec.More() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("decode guide index entry %d: %w", len(out), err)
		}
		id := stringValue(obj["xmltv_id"])
		if id == "" {
			continue
		}
		out[id] = GuideChannel{
			Site:   stringValue(obj["site"]),
			SiteID: stringValue(obj["site_id"]),
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode guide index: %w", err)
	}
	return out, nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
