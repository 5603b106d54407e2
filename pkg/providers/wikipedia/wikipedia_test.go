package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/sw33tLie/kwscope/pkg/providers"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

var query = providers.Query{Keyword: "shoes", Language: "en", Country: "US"}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a := New(providers.NewClient(providers.ClientOptions{}))
	a.BaseURL = srv.URL
	return a
}

func TestFetch(t *testing.T) {
	got := make(chan url.Values, 1)
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query()
		fmt.Fprint(w, `["shoes",["shoes for women","shoes nike"],["",""],["",""]]`)
	})

	items, err := a.Fetch(context.Background(), query)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := []string{"shoes for women", "shoes nike"}; !reflect.DeepEqual(items, want) {
		t.Errorf("items = %q, want %q", items, want)
	}
	q := <-got
	if got := q.Get("search"); got != "shoes" {
		t.Errorf("search = %q, want %q", got, "shoes")
	}
	if got := q.Get("action"); got != "opensearch" {
		t.Errorf("action = %q, want %q", got, "opensearch")
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    suggest.ErrorKind
	}{
		{"malformed", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"error":`) }, suggest.ErrMalformedResponse},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }, suggest.ErrRateLimited},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }, suggest.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, tt.handler)
			_, err := a.Fetch(context.Background(), query)
			if kind := providers.KindOf(err); kind != tt.want {
				t.Fatalf("kind = %q, want %q (err %v)", kind, tt.want, err)
			}
		})
	}
}
