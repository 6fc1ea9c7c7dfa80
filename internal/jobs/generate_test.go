// SPDX-License-Identifier: MIT

package jobs

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ManuGH/mytv/internal/config"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	countryM3U = "#EXTM3U x-tvg-url=\"http://guide\"\n#EXTINF:-1 tvg-id=\"abc.us\",ABC\nhttp://abc\n#EXTINF:-1 tvg-id=\"cbs.us\",CBS\nhttp://cbs\n"
	newsM3U    = "#EXTM3U\n#EXTINF:-1 tvg-id=\"cnn.us\",CNN\nhttp://cnn\n#EXTINF:-1 tvg-id=\"abc.us\",ABC News\nhttp://abc2\n"
	moviesM3U  = "#EXTM3U\n#EXTINF:-1 tvg-id=\"\",Unknown\nhttp://m\n"
	sportsM3U  = "#EXTM3U\n#EXTINF:-1 tvg-id=\"espn.us\",ESPN\nhttp://espn\n"

	registryCSV = "id,name,alt_names,network,owners,country,languages\n" +
		"abc.us,ABC,,,,US,eng\n" +
		"cnn.us,\"CNN, International\",,,,US,eng;spa\n"
	guideJSON = `[{"xmltv_id":"abc.us","site":"tvguide.com","site_id":"1"},{"xmltv_id":"espn.us","site":"espn.com"},{"site":"x"}]`

	guideXML = `<?xml version="1.0"?><tv><channel id="abc.us"/><programme channel="abc.us" start="x" stop="y"><title>T</title></programme></tv>`
)

type upstream struct {
	srv      *httptest.Server
	handlers map[string]http.HandlerFunc
	epgCalls atomic.Int32
	epgBody  atomic.Value
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, body) }
}

func hang(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{handlers: map[string]http.HandlerFunc{
		"/iptv/countries/us.m3u":      text(countryM3U),
		"/iptv/categories/news.m3u":   text(newsM3U),
		"/iptv/categories/movies.m3u": text(moviesM3U),
		"/iptv/categories/sports.m3u": text(sportsM3U),
		"/db/channels.csv":            text(registryCSV),
		"/epg/channels.json":          text(guideJSON),
		"/fetch": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, guideXML)
		},
	}}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fetch" {
			u.epgCalls.Add(1)
			body, _ := io.ReadAll(r.Body)
			u.epgBody.Store(body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		h, ok := u.handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) config(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.OutputDir = filepath.Join(t.TempDir(), "docs")
	cfg.IPTVBase = u.srv.URL + "/iptv"
	cfg.RegistryURL = u.srv.URL + "/db/channels.csv"
	cfg.GuideIndexURL = u.srv.URL + "/epg/channels.json"
	cfg.EPGFetcherURL = u.srv.URL + "/fetch"
	cfg.FetchTimeout = 2 * time.Second
	cfg.EPGTimeout = 2 * time.Second
	return cfg
}

func generate(t *testing.T, cfg config.AppConfig) *Status {
	t.Helper()
	deps := NewDeps(cfg)
	status, err := Generate(t.Context(), cfg, deps)
	require.NoError(t, err)
	return status
}

func readPlaylist(t *testing.T, cfg config.AppConfig) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, PlaylistFile))
	require.NoError(t, err)
	return string(b)
}

func TestGenerate_FullRun(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config(t)

	status := generate(t, cfg)

	want := "#EXTM3U\n\n" +
		"# ======================================\n# LOCAL - US\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"abc.us\",ABC\nhttp://abc\n#EXTINF:-1 tvg-id=\"cbs.us\",CBS\nhttp://cbs\n\n" +
		"# ======================================\n# NEWS\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"cnn.us\",CNN\nhttp://cnn\n#EXTINF:-1 tvg-id=\"abc.us\",ABC News\nhttp://abc2\n\n" +
		"# ======================================\n# MOVIES\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"\",Unknown\nhttp://m\n\n" +
		"# ======================================\n# SPORTS\n# ======================================\n" +
		"#EXTINF:-1 tvg-id=\"espn.us\",ESPN\nhttp://espn\n\n"
	assert.Equal(t, want, readPlaylist(t, cfg))

	assert.Equal(t, 6, status.TotalEntries)
	assert.Equal(t, 4, status.UniqueIDs)
	assert.Equal(t, 2, status.RegistryEntries)
	assert.Equal(t, 2, status.GuideEntries)
	assert.Equal(t, 2, status.Matched)
	assert.Empty(t, status.FailedSources())
	assert.NotEmpty(t, status.RunID)
	assert.Equal(t, []string{"LOCAL - US", "NEWS", "MOVIES", "SPORTS"}, status.Sections)

	assert.True(t, status.EPGWritten)
	assert.Equal(t, "success", status.EPGOutcome)
	gz, err := os.ReadFile(filepath.Join(cfg.OutputDir, GuideFile))
	require.NoError(t, err)
	assert.EqualValues(t, len(gz), status.EPGBytes)
	zr, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, guideXML, string(raw))

	var req struct {
		Channels []map[string]string `json:"channels"`
		Country  string              `json:"country"`
		Lang     string              `json:"lang"`
	}
	require.NoError(t, json.Unmarshal(u.epgBody.Load().([]byte), &req))
	assert.Equal(t, "us", req.Country)
	assert.Equal(t, "en", req.Lang)
	require.Len(t, req.Channels, 4)
	assert.Equal(t, map[string]string{"xmltv_id": "abc.us", "name": "ABC", "lang": "eng", "site": "tvguide.com", "site_id": "1"}, req.Channels[0])
	assert.Equal(t, map[string]string{"xmltv_id": "cbs.us"}, req.Channels[1])
	assert.Equal(t, map[string]string{"xmltv_id": "cnn.us", "name": "CNN, International", "lang": "eng"}, req.Channels[2])
	assert.Equal(t, map[string]string{"xmltv_id": "espn.us", "site": "espn.com", "site_id": ""}, req.Channels[3])
}

func TestGenerate_PlaylistIsUTF8ForLatin1Source(t *testing.T) {
	u := newUpstream(t)
	u.handlers["/iptv/categories/news.m3u"] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		_, _ = io.WriteString(w, "#EXTM3U\n#EXTINF:-1 tvg-id=\"tf1.fr\",T\xe9l\xe9\nhttp://tf1\n")
	}
	cfg := u.config(t)

	generate(t, cfg)

	out := readPlaylist(t, cfg)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "# NEWS\n# ======================================\n#EXTINF:-1 tvg-id=\"tf1.fr\",Télé\nhttp://tf1\n\n")
}

func TestGenerate_CountryCodeKeptAsConfigured(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config(t)
	cfg.CountryCode = "US"

	status := generate(t, cfg)

	assert.Empty(t, status.FailedSources(), "country playlist path is lowercased")
	assert.Contains(t, readPlaylist(t, cfg), "# LOCAL - US\n")

	var req struct {
		Country string `json:"country"`
	}
	require.NoError(t, json.Unmarshal(u.epgBody.Load().([]byte), &req))
	assert.Equal(t, "US", req.Country)
}

func TestGenerate_SourceTimeoutDegrades(t *testing.T) {
	u := newUpstream(t)
	u.handlers["/iptv/categories/movies.m3u"] = hang
	cfg := u.config(t)
	cfg.FetchTimeout = 200 * time.Millisecond

	status := generate(t, cfg)

	out := readPlaylist(t, cfg)
	assert.Equal(t, 3, strings.Count(out, "# ======================================\n# "))
	assert.NotContains(t, out, "# MOVIES")
	assert.Equal(t, []string{"movies"}, status.FailedSources())
	assert.Equal(t, []string{"LOCAL - US", "NEWS", "SPORTS"}, status.Sections)
	assert.True(t, status.EPGWritten)
}

func TestGenerate_AllSourcesFail(t *testing.T) {
	u := newUpstream(t)
	for _, p := range []string{"/iptv/countries/us.m3u", "/iptv/categories/news.m3u", "/iptv/categories/movies.m3u", "/iptv/categories/sports.m3u"} {
		delete(u.handlers, p)
	}
	cfg := u.config(t)

	status := generate(t, cfg)

	assert.Equal(t, "#EXTM3U\n\n", readPlaylist(t, cfg))
	assert.Len(t, status.FailedSources(), 4)
	assert.Zero(t, status.UniqueIDs)
	assert.Equal(t, "skipped_empty", status.EPGOutcome)
	assert.Zero(t, u.epgCalls.Load())
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, GuideFile))
}

func TestGenerate_NoIdentifiersSkipsGuide(t *testing.T) {
	u := newUpstream(t)
	for _, p := range []string{"/iptv/countries/us.m3u", "/iptv/categories/news.m3u", "/iptv/categories/sports.m3u"} {
		u.handlers[p] = text(moviesM3U)
	}
	cfg := u.config(t)

	status := generate(t, cfg)

	assert.Empty(t, status.FailedSources())
	assert.Zero(t, status.UniqueIDs)
	assert.Equal(t, "skipped_empty", status.EPGOutcome)
	assert.Zero(t, u.epgCalls.Load())
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, GuideFile))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, PlaylistFile))
}

func TestGenerate_EnrichmentDisabled(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config(t)
	cfg.EPGFetcherURL = ""

	status := generate(t, cfg)

	assert.Equal(t, "skipped_disabled", status.EPGOutcome)
	assert.Zero(t, u.epgCalls.Load())
	assert.False(t, status.EPGWritten)
}

func TestGenerate_EnrichmentFailureKeepsPlaylist(t *testing.T) {
	u := newUpstream(t)
	u.handlers["/fetch"] = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}
	cfg := u.config(t)

	status := generate(t, cfg)

	assert.Equal(t, "failure", status.EPGOutcome)
	assert.Contains(t, status.EPGError, "HTTP 503")
	assert.False(t, status.EPGWritten)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, GuideFile))
	assert.Contains(t, readPlaylist(t, cfg), "# LOCAL - US")
}

func TestGenerate_CatalogFailuresStillDispatch(t *testing.T) {
	u := newUpstream(t)
	delete(u.handlers, "/db/channels.csv")
	u.handlers["/epg/channels.json"] = text(`{"not":"an array"}`)
	cfg := u.config(t)

	status := generate(t, cfg)

	assert.Zero(t, status.RegistryEntries)
	assert.Zero(t, status.GuideEntries)
	assert.Zero(t, status.Matched)
	assert.True(t, status.EPGWritten)
	assert.EqualValues(t, 1, u.epgCalls.Load())
}

func TestGenerate_MetricsTextfile(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config(t)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "textfile", "mytv.prom")

	generate(t, cfg)

	b, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "mytv_unique_ids 4")
	assert.Contains(t, string(b), `mytv_epg_dispatch_total{outcome="success"}`)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = filepath.Join(t.TempDir(), "docs")
	cfg.CountryCode = "u s"

	_, err := Generate(t.Context(), cfg, Deps{})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestGenerate_OutputNotWritable(t *testing.T) {
	u := newUpstream(t)
	cfg := u.config(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.OutputDir = filepath.Join(blocker, "docs")

	_, err := Generate(t.Context(), cfg, NewDeps(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output dir")
}
