package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sw33tLie/kwscope/pkg/dispatch"
	"github.com/sw33tLie/kwscope/pkg/storage"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := New(Config{
		Allowed:  []string{"google", "bing"},
		BaseURLs: map[string]string{"google": srv.URL + "/google", "bing": srv.URL + "/bing"},
		SERPURL:  srv.URL + "/serp?q={q}",
		DBPath:   filepath.Join(t.TempDir(), "history.db"),
	}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestSuggestRecordsHistory(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/google":
			w.Write([]byte(`["running shoes",["running shoes for men","running shoes women"]]`))
		case "/bing":
			w.Write([]byte(`["running shoes",["Running Shoes For Men","best running shoes"]]`))
		default:
			http.NotFound(w, r)
		}
	})

	resp, err := a.Suggest(context.Background(), suggest.Request{Keyword: "running shoes", Language: "en", Country: "US"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if resp.Summary.TotalKeywords != 3 {
		t.Errorf("TotalKeywords = %d, want 3", resp.Summary.TotalKeywords)
	}

	recs, err := a.DB.ListRecent(context.Background(), storage.ListOptions{WithProviders: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].RequestID != resp.Metadata.RequestID || recs[0].Failed {
		t.Errorf("unexpected record %+v", recs[0])
	}
	if len(recs[0].Providers) != 2 {
		t.Errorf("stored %d provider outcomes, want 2", len(recs[0].Providers))
	}
}

func TestSuggestRecordsFailure(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := a.Suggest(context.Background(), suggest.Request{Keyword: "x", Language: "en", Country: "US"})
	if !errors.Is(err, dispatch.ErrNoUsableProviders) {
		t.Fatalf("err = %v, want ErrNoUsableProviders", err)
	}
	recs, err := a.DB.ListRecent(context.Background(), storage.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || !recs[0].Failed {
		t.Fatalf("want one failed record, got %+v", recs)
	}
}

func TestSuggestInvalidInputNotRecorded(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s", r.URL)
	})

	_, err := a.Suggest(context.Background(), suggest.Request{Keyword: "  ", Language: "en", Country: "US"})
	if !errors.Is(err, suggest.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	recs, _ := a.DB.ListRecent(context.Background(), storage.ListOptions{})
	if len(recs) != 0 {
		t.Fatalf("invalid request was recorded: %+v", recs)
	}
}

func TestNewRejectsUnknownAllowedProvider(t *testing.T) {
	_, err := New(Config{Allowed: []string{"altavista"}, NoCache: true}, quietLogger())
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestProviders(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	list := a.Providers()
	if len(list) != a.Registry.Len() {
		t.Fatalf("got %d providers, want %d", len(list), a.Registry.Len())
	}
	allowed := 0
	for _, p := range list {
		if p.Allowed {
			allowed++
		}
		if p.Breaker.Open {
			t.Errorf("%s breaker unexpectedly open", p.ID)
		}
	}
	if allowed != 2 {
		t.Errorf("%d allowed providers, want 2", allowed)
	}
}

func TestScoreValidatesLocale(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})

	if _, err := a.Score(context.Background(), "shoes", "english", "US"); !errors.Is(err, suggest.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	score, err := a.Score(context.Background(), "shoes", "en", "us")
	if err != nil {
		t.Fatal(err)
	}
	if score.Value < 0 || score.Value > 100 {
		t.Errorf("score %d out of range", score.Value)
	}
}

func TestSchedule(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {})

	c, err := a.Schedule("@every 1m", "@daily", 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(c.Entries()); n != 2 {
		t.Errorf("%d jobs scheduled, want 2", n)
	}

	c, err = a.Schedule("@every 1m", "@daily", 0)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(c.Entries()); n != 1 {
		t.Errorf("%d jobs scheduled without retention, want 1", n)
	}

	if _, err := a.Schedule("every minute", "", 0); err == nil {
		t.Error("expected an error for a bad spec")
	}
}
