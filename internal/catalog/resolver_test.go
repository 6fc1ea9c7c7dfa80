// SPDX-License-Identifier: MIT

package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/mytv/internal/catalog"
	"github.com/ManuGH/mytv/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter map[string]struct {
	body string
	err  error
}

func (f fakeGetter) Get(_ context.Context, _, url string) ([]byte, error) {
	r, ok := f[url]
	if !ok {
		return nil, errors.New("unexpected url " + url)
	}
	return []byte(r.body), r.err
}

func TestResolverLoad_Both(t *testing.T) {
	getter := fakeGetter{
		"reg":   {body: "id,name,a,b,c,d,languages\nCNN.us,CNN,,,,,eng\n"},
		"guide": {body: `[{"xmltv_id":"CNN.us","site":"tvguide.com","site_id":"9"}]`},
	}

	got := catalog.NewResolver(getter, "reg", "guide").Load(context.Background())

	assert.Equal(t, catalog.Channel{Name: "CNN", Lang: "eng"}, got.Registry["CNN.us"])
	assert.Equal(t, catalog.GuideChannel{Site: "tvguide.com", SiteID: "9"}, got.Guide["CNN.us"])
}

func TestResolverLoad_FailuresAreIndependent(t *testing.T) {
	tests := []struct {
		name         string
		getter       fakeGetter
		wantRegistry int
		wantGuide    int
	}{
		{
			name: "registry fetch fails",
			getter: fakeGetter{
				"reg":   {err: errors.New("boom")},
				"guide": {body: `[{"xmltv_id":"a"},{"xmltv_id":"b"}]`},
			},
			wantRegistry: 0,
			wantGuide:    2,
		},
		{
			name: "guide index is malformed",
			getter: fakeGetter{
				"reg":   {body: "h\na,A,,,,,eng\n"},
				"guide": {body: `{"not":"an array"}`},
			},
			wantRegistry: 1,
			wantGuide:    0,
		},
		{
			name: "both fail",
			getter: fakeGetter{
				"reg":   {err: errors.New("boom")},
				"guide": {err: errors.New("boom")},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := catalog.NewResolver(tc.getter, "reg", "guide").Load(context.Background())
			require.NotNil(t, got.Registry)
			require.NotNil(t, got.Guide)
			assert.Len(t, got.Registry, tc.wantRegistry)
			assert.Len(t, got.Guide, tc.wantGuide)
		})
	}
}

func TestResolverLoad_OverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.csv", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/channels.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"xmltv_id":"abc","site":"s","site_id":"1"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := source.NewFetcher(srv.Client(), 5*time.Second, 0)
	got := catalog.NewResolver(fetcher, srv.URL+"/channels.csv", srv.URL+"/channels.json").Load(context.Background())

	assert.Empty(t, got.Registry)
	assert.Equal(t, catalog.GuideChannel{Site: "s", SiteID: "1"}, got.Guide["abc"])
}

func TestResolverLoad_RegistryCharsetDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=iso-8859-1")
		_, _ = w.Write([]byte("id,name,a,b,c,d,languages\nTF1.fr,T\xe9l\xe9 1,,,,,fra\n"))
	}))
	defer srv.Close()

	fetcher := source.NewFetcher(srv.Client(), 5*time.Second, 0)
	got := catalog.NewResolver(fetcher, srv.URL+"/channels.csv", srv.URL+"/channels.json").Load(context.Background())

	assert.Equal(t, catalog.Channel{Name: "Télé 1", Lang: "fra"}, got.Registry["TF1.fr"])
}
