// SPDX-License-Identifier: MIT

package playlist

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Document(t *testing.T) {
	sources := []Source{
		{Label: "country", Body: "#EXTM3U\n#EXTINF:-1 tvg-id=\"abc\",ABC\nhttp://a\n"},
		{Label: "news", Body: "#EXTM3U x-tvg-url=\"https://epg.example/guide.xml\"\n#EXTINF:-1 tvg-id=\"n1\",N1\nhttp://n\n\n"},
	}

	got := Aggregate("ca", sources)

	want := "#EXTM3U\n\n" +
		"# ======================================\n# LOCAL - CA\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"abc\",ABC\nhttp://a\n\n" +
		"# ======================================\n# NEWS\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"n1\",N1\nhttp://n\n\n"
	if diff := cmp.Diff(want, got.Text); diff != "" {
		t.Fatalf("combined document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"LOCAL - CA", "NEWS"}, got.Sections)
	assert.Equal(t, []string{"abc", "n1"}, got.IDs.Sorted())
}

func TestAggregate_DeduplicatesAcrossSources(t *testing.T) {
	sources := []Source{
		{Label: "country", Body: `#EXTINF:-1 tvg-id="abc",A` + "\n"},
		{Label: "news", Body: `#EXTINF:-1 tvg-id="abc",A` + "\n" + `#EXTINF:-1 tvg-id="abc",A again` + "\n"},
		{Label: "sports", Body: `#EXTINF:-1 tvg-id="xyz",X` + "\n"},
	}

	got := Aggregate("us", sources)

	require.Equal(t, 2, got.IDs.Len())
	assert.True(t, got.IDs.Has("abc"))
	assert.True(t, got.IDs.Has("xyz"))
	assert.Equal(t, 4, CountEntries(got.Text))
}

func TestAggregate_ZeroSources(t *testing.T) {
	got := Aggregate("us", nil)

	assert.Equal(t, "#EXTM3U\n\n", got.Text)
	assert.Zero(t, got.IDs.Len())
	assert.Empty(t, got.Sections)
}

func TestAggregate_SectionOrderFollowsInput(t *testing.T) {
	sources := []Source{
		{Label: "country", Body: "#EXTINF:-1,a\nhttp://a"},
		{Label: "movies", Body: "#EXTINF:-1,m\nhttp://m"},
		{Label: "sports", Body: "#EXTINF:-1,s\nhttp://s"},
	}

	got := Aggregate("de", sources)

	iLocal := strings.Index(got.Text, "# LOCAL - DE")
	iMovies := strings.Index(got.Text, "# MOVIES")
	iSports := strings.Index(got.Text, "# SPORTS")
	require.True(t, iLocal > 0 && iMovies > iLocal && iSports > iMovies, "sections out of order:\n%s", got.Text)
	assert.Equal(t, 3, strings.Count(got.Text, "# LOCAL - DE\n")+strings.Count(got.Text, "# MOVIES\n")+strings.Count(got.Text, "# SPORTS\n"))
	assert.Equal(t, 1, strings.Count(got.Text, Header))
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "LOCAL - US", Heading("us", "country"))
	assert.Equal(t, "SPORTS", Heading("us", "sports"))
}
