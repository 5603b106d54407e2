package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

func TestAppConfigDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()
	viper.Set("providers.priority", []string{"bing", "google"})

	cfg := appConfig()
	if cfg.Dispatch.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s", cfg.Dispatch.Timeout)
	}
	if cfg.Dispatch.MergeOverhead != 250*time.Millisecond {
		t.Errorf("MergeOverhead = %s", cfg.Dispatch.MergeOverhead)
	}
	if cfg.Dispatch.Retry.Attempts != 1 || cfg.Dispatch.BreakerThreshold != 5 {
		t.Errorf("unexpected dispatch config %+v", cfg.Dispatch)
	}
	if cfg.CacheTTL != 30*time.Minute || cfg.CacheMaxEntries != 4096 {
		t.Errorf("unexpected cache config %s/%d", cfg.CacheTTL, cfg.CacheMaxEntries)
	}
	if len(cfg.Dispatch.Priority) != 2 || cfg.Dispatch.Priority[0] != "bing" {
		t.Errorf("Priority = %v", cfg.Dispatch.Priority)
	}
	if cfg.DBPath != "" || len(cfg.Allowed) != 0 {
		t.Errorf("history and entitlement should be off by default: %+v", cfg)
	}
}

func TestPrintResponse(t *testing.T) {
	resp := &suggest.AggregatedResponse{
		Keyword: "shoes",
		Categories: map[suggest.Category][]suggest.NormalizedSuggestion{
			suggest.CategoryGeneral: {
				{Keyword: "shoes for men", Sources: suggest.NewProviderSet("google", "bing"), EstimatedVolume: 1600},
			},
			suggest.CategoryQuestions: {
				{Keyword: "how to clean shoes", Sources: suggest.NewProviderSet("google"), EstimatedVolume: 600},
			},
		},
		Summary:    suggest.Summary{TotalKeywords: 2, TotalEstimatedVolume: 2200},
		Difficulty: &suggest.DifficultyScore{Value: 72, Reasoning: []string{"Final score 72."}, Signals: suggest.Signals{EstimatedCompetition: suggest.CompetitionHigh}},
		Flagged:    []string{"cheap shoes"},
	}

	var buf bytes.Buffer
	printResponse(&buf, resp)
	out := buf.String()
	for _, want := range []string{"shoes for men", "how to clean shoes", "2200", "72/100 (high competition)", "Flagged: cheap shoes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "shoes for men") > strings.Index(out, "how to clean shoes") {
		t.Error("categories should print in display order")
	}
}

func TestPrintStatuses(t *testing.T) {
	var buf bytes.Buffer
	printStatuses(&buf, []suggest.ProviderStatus{
		{Provider: "amazon", Status: suggest.StatusOK, LatencyMS: 120, Items: 8, MarketplaceID: "A1PA6795UKMFR9", ViaFallback: true},
		{Provider: "bing", Status: suggest.StatusFailed, Error: suggest.ErrRateLimited},
	})
	out := buf.String()
	for _, want := range []string{"A1PA6795UKMFR9 (fallback)", "rate_limited", "120ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
