// SPDX-License-Identifier: MIT

package source

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{name: "declared latin1", body: "T\xe9l\xe9", contentType: "text/plain; charset=iso-8859-1", want: "Télé"},
		{name: "declared windows-1252", body: "\x93Caf\xe9\x94", contentType: "audio/x-mpegurl; charset=windows-1252", want: "“Café”"},
		{name: "declared utf-8", body: "Télé", contentType: "text/plain; charset=UTF-8", want: "Télé"},
		{name: "declared utf-8 with invalid bytes", body: "ok\xff", contentType: "text/plain; charset=utf-8", want: "ok�"},
		{name: "undeclared utf-8", body: "Télé", contentType: "audio/x-mpegurl", want: "Télé"},
		{name: "undeclared latin1", body: "T\xe9l\xe9", want: "Télé"},
		{name: "unknown charset falls back to sniffing", body: "T\xe9l\xe9", contentType: "text/plain; charset=bogus", want: "Télé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUTF8([]byte(tt.body), tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, utf8.Valid(got))
		})
	}
}

func TestToUTF8_UndeclaredUTF8AfterLongASCIIPrefix(t *testing.T) {
	body := []byte(strings.Repeat("#EXTINF:-1 tvg-id=\"a.us\",A\n", 100) + "#EXTINF:-1 tvg-id=\"b.fr\",Télé 1\n")

	got, err := ToUTF8(body, "")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(body, got), "valid UTF-8 must pass through byte for byte")
}
