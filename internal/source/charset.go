// SPDX-License-Identifier: MIT

package source

import (
	"bytes"
	"mime"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

var replacementChar = []byte(string(utf8.RuneError))

// ToUTF8 converts a downloaded body to UTF-8. A charset declared in
// contentType wins. Without one, valid UTF-8 is returned unchanged and
// anything else is decoded with the sniffed encoding (windows-1252 when
// nothing better is found). The result is always valid UTF-8.
func ToUTF8(body []byte, contentType string) ([]byte, error) {
	enc, name := declaredEncoding(contentType)
	if enc == nil {
		if utf8.Valid(body) {
			return body, nil
		}
		enc, name, _ = charset.DetermineEncoding(body, "")
	}
	if name == "utf-8" {
		return bytes.ToValidUTF8(body, replacementChar), nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, err
	}
	return bytes.ToValidUTF8(out, replacementChar), nil
}

// declaredEncoding returns the encoding named by the charset parameter of a
// Content-Type header, or nil when there is none or it is unknown.
func declaredEncoding(contentType string) (encoding.Encoding, string) {
	if contentType == "" {
		return nil, ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ""
	}
	cs := params["charset"]
	if cs == "" {
		return nil, ""
	}
	return charset.Lookup(cs)
}
