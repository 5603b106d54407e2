package appstore

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

func TestFetchUsesStorefront(t *testing.T) {
	got := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query()
		fmt.Fprint(w, `{"resultCount":2,"results":[{"trackName":"Running Tracker"},{"trackName":"Couch to 5K"}]}`)
	}))
	defer srv.Close()

	res, err := locale.Default().Resolve(Family, "MC")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.ViaFallback {
		t.Fatalf("MC should resolve via fallback")
	}
	a := New(providers.NewClient(providers.ClientOptions{}))
	a.BaseURL = srv.URL
	items, err := a.Fetch(context.Background(), providers.Query{Keyword: "running", Language: "fr", Country: "MC", Market: &res})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := []string{"Running Tracker", "Couch to 5K"}; !reflect.DeepEqual(items, want) {
		t.Errorf("items = %q, want %q", items, want)
	}
	q := <-got
	if q.Get("country") != "fr" || q.Get("entity") != "software" {
		t.Errorf("unexpected query %v", q)
	}
}

func TestFetchMissingResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorMessage":"Invalid value(s) for key(s): [country]"}`)
	}))
	defer srv.Close()

	res, _ := locale.Default().Resolve(Family, "US")
	a := New(providers.NewClient(providers.ClientOptions{}))
	a.BaseURL = srv.URL
	_, err := a.Fetch(context.Background(), providers.Query{Keyword: "x", Language: "en", Country: "US", Market: &res})
	if kind := providers.KindOf(err); kind != suggest.ErrMalformedResponse {
		t.Fatalf("kind = %q, want malformed_response", kind)
	}
}
