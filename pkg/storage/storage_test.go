package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResponse(id string) *suggest.AggregatedResponse {
	return &suggest.AggregatedResponse{
		Keyword:    "running shoes",
		Language:   "en",
		Country:    "US",
		Summary:    suggest.Summary{TotalKeywords: 3, TotalEstimatedVolume: 2500},
		Difficulty: &suggest.DifficultyScore{Value: 61},
		Metadata: suggest.Metadata{
			RequestID: id,
			Partial:   true,
			Providers: []suggest.ProviderStatus{
				{Provider: "google", Status: suggest.StatusOK, LatencyMS: 120, Items: 2},
				{Provider: "bing", Status: suggest.StatusFailed, Error: suggest.ErrTimeout, LatencyMS: 5000},
				{Provider: "amazon", Status: suggest.StatusCached, Items: 4, MarketplaceID: "ATVPDKIKX0DER"},
			},
		},
	}
}

func TestInsertAndListRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := RecordFromResponse(sampleResponse("req1"))
	first.OccurredAt = base
	second := RecordFromResponse(sampleResponse("req2"))
	second.OccurredAt = base.Add(time.Minute)
	second.Keyword = "trail shoes"
	second.Difficulty = nil
	for _, r := range []Record{first, second} {
		if err := db.Insert(ctx, r); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := db.ListRecent(ctx, ListOptions{WithProviders: true})
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 || got[0].RequestID != "req2" || got[1].RequestID != "req1" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Difficulty != nil || got[1].Difficulty == nil || *got[1].Difficulty != 61 {
		t.Errorf("difficulty not round-tripped")
	}
	if !got[1].OccurredAt.Equal(base) {
		t.Errorf("OccurredAt = %v, want %v", got[1].OccurredAt, base)
	}
	if !reflect.DeepEqual(got[1].Providers, first.Providers) {
		t.Errorf("providers = %+v\nwant %+v", got[1].Providers, first.Providers)
	}

	filtered, err := db.ListRecent(ctx, ListOptions{Keyword: "trail"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Keyword != "trail shoes" || filtered[0].Providers != nil {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if err := db.Insert(ctx, RecordFromResponse(sampleResponse(id))); err != nil {
			t.Fatal(err)
		}
	}
	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []ProviderStats{
		{Provider: "amazon", Calls: 2, Cached: 2},
		{Provider: "bing", Calls: 2, Failed: 2},
		{Provider: "google", Calls: 2, OK: 2, AvgLatencyMS: 120},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Fatalf("stats = %+v\nwant %+v", stats, want)
	}
}

func TestPrune(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	old := RecordFromResponse(sampleResponse("old"))
	old.OccurredAt = now.Add(-40 * 24 * time.Hour)
	fresh := RecordFromResponse(sampleResponse("fresh"))
	fresh.OccurredAt = now.Add(-time.Hour)
	for _, r := range []Record{old, fresh} {
		if err := db.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.Prune(ctx, 30*24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("Prune = %d, %v; want 1", n, err)
	}
	stats, _ := db.GetStats(ctx)
	for _, s := range stats {
		if s.Calls != 1 {
			t.Errorf("%s has %d calls after prune; outcomes should cascade", s.Provider, s.Calls)
		}
	}
}

func TestInsertDuplicateRequestID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := RecordFromResponse(sampleResponse("dup"))
	if err := db.Insert(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(ctx, r); err == nil {
		t.Fatal("expected unique violation")
	}
	got, _ := db.ListRecent(ctx, ListOptions{WithProviders: true})
	if len(got) != 1 || len(got[0].Providers) != 3 {
		t.Fatalf("failed insert must roll back, got %+v", got)
	}
}

func TestOpenUnreachablePath(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "missing", "history.db"))
	if err == nil {
		db.Close()
		t.Fatal("expected an error for a path in a missing directory")
	}
	if db != nil {
		t.Errorf("got a handle alongside error %v", err)
	}
}
