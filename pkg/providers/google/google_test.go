package google

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

func TestFetchVerticals(t *testing.T) {
	tests := []struct {
		name   string
		new    func(*providers.Client) *Adapter
		wantID suggest.ProviderID
		wantDS string
	}{
		{"web", NewWeb, IDWeb, ""},
		{"youtube", NewYouTube, IDYouTube, "yt"},
		{"shopping", NewShopping, IDShopping, "sh"},
		{"news", NewNews, IDNews, "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan url.Values, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got <- r.URL.Query()
				w.Header().Set("Content-Type", "text/javascript; charset=UTF-8")
				fmt.Fprint(w, `["running shoes",["running shoes women","running shoes men"]]`)
			}))
			defer srv.Close()

			a := tt.new(providers.NewClient(providers.ClientOptions{}))
			a.BaseURL = srv.URL
			if a.ID() != tt.wantID {
				t.Fatalf("ID() = %q, want %q", a.ID(), tt.wantID)
			}
			items, err := a.Fetch(context.Background(), providers.Query{Keyword: "running shoes", Language: "en", Country: "US"})
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			want := []string{"running shoes women", "running shoes men"}
			if !reflect.DeepEqual(items, want) {
				t.Errorf("items = %q, want %q", items, want)
			}
			q := <-got
			if q.Get("q") != "running shoes" || q.Get("hl") != "en" || q.Get("gl") != "us" || q.Get("client") != "firefox" {
				t.Errorf("unexpected query %v", q)
			}
			if q.Get("ds") != tt.wantDS {
				t.Errorf("ds = %q, want %q", q.Get("ds"), tt.wantDS)
			}
		})
	}
}

func TestFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>captcha</html>`)
	}))
	defer srv.Close()

	a := NewWeb(providers.NewClient(providers.ClientOptions{}))
	a.BaseURL = srv.URL
	_, err := a.Fetch(context.Background(), providers.Query{Keyword: "x", Language: "en", Country: "US"})
	if providers.KindOf(err) != suggest.ErrMalformedResponse {
		t.Fatalf("err = %v, want malformed_response", err)
	}
}
