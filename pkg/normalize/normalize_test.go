package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes", "running shoes"},
		{"  running \t  shoes ", "running shoes"},
		{"Café Crème", "cafe creme"},
		{"CAFE   CREME", "cafe creme"},
		{"Straße", "strasse"},
		{"Łódź hotels", "lodz hotels"},
		{"København", "kobenhavn"},
		{"Đà Nẵng", "da nang"},
		{"Œuvre Æble", "oeuvre aeble"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func ok(id suggest.ProviderID, items ...string) suggest.ProviderResult {
	return suggest.ProviderResult{Provider: id, RawItems: items}
}

func TestMergeBasicAggregation(t *testing.T) {
	n := New([]suggest.ProviderID{"google", "bing"})
	merged := n.Merge([]suggest.ProviderResult{
		ok("bing", "running shoes sale", "Running Shoes Men"),
		ok("google", "running shoes men", "best running shoes"),
	})
	if len(merged) != 3 {
		t.Fatalf("got %d suggestions, want 3: %+v", len(merged), merged)
	}
	first := merged[0]
	if first.Keyword != "running shoes men" || first.FirstSeenProvider != "google" || first.RankHint != 0 {
		t.Errorf("first = %+v, want google's casing and rank", first)
	}
	if !first.Sources.Has("google") || !first.Sources.Has("bing") {
		t.Errorf("sources = %v, want both providers", first.Sources.Sorted())
	}
	if merged[2].Keyword != "running shoes sale" || merged[2].RankHint != 0 {
		t.Errorf("third = %+v", merged[2])
	}
}

func TestMergeDedupAcrossForms(t *testing.T) {
	n := New([]suggest.ProviderID{"a", "b", "c"})
	merged := n.Merge([]suggest.ProviderResult{
		ok("a", "Crème Brûlée"),
		ok("b", "creme   brulee"),
		ok("c", " CRÈME BRÛLÉE "),
	})
	if len(merged) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(merged))
	}
	if got := merged[0].Sources.Sorted(); !reflect.DeepEqual(got, []suggest.ProviderID{"a", "b", "c"}) {
		t.Errorf("sources = %v", got)
	}
	if merged[0].Keyword != "Crème Brûlée" {
		t.Errorf("keyword = %q, want first-seen casing", merged[0].Keyword)
	}
}

func TestMergeDedupStrokeLetters(t *testing.T) {
	n := New([]suggest.ProviderID{"a", "b"})
	merged := n.Merge([]suggest.ProviderResult{
		ok("a", "Łódź hotels", "København airport"),
		ok("b", "lodz hotels", "kobenhavn airport"),
	})
	if len(merged) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(merged), merged)
	}
	for _, m := range merged {
		if len(m.Sources) != 2 {
			t.Errorf("%q has sources %v, want both", m.Keyword, m.Sources.Sorted())
		}
	}
}

func TestMergeDeterministic(t *testing.T) {
	n := New([]suggest.ProviderID{"google", "bing", "amazon"})
	in := []suggest.ProviderResult{
		ok("amazon", "shoes", "Shoes Women", "shoe rack"),
		ok("bing", "shoes women", "shoes for men"),
		{Provider: "yahoo", Error: suggest.ErrTimeout},
		ok("google", "shoes near me", "SHOES"),
		ok("duckduckgo", "shoes sale"),
	}
	reversed := make([]suggest.ProviderResult, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}
	a, _ := json.Marshal(n.Merge(in))
	b, _ := json.Marshal(n.Merge(reversed))
	if string(a) != string(b) {
		t.Fatalf("merge not deterministic:\n%s\n%s", a, b)
	}
}

func TestMergeUnlistedProvidersAfterListed(t *testing.T) {
	n := New([]suggest.ProviderID{"google"})
	merged := n.Merge([]suggest.ProviderResult{
		ok("zeta", "x"),
		ok("alpha", "x", "y"),
		ok("google", "z"),
	})
	want := []string{"z", "x", "y"}
	var got []string
	for _, s := range merged {
		got = append(got, s.Keyword)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %q, want %q", got, want)
	}
	if merged[1].FirstSeenProvider != "alpha" {
		t.Errorf("x first seen by %q, want alpha", merged[1].FirstSeenProvider)
	}
}

func TestMergeEmpty(t *testing.T) {
	merged := New(nil).Merge([]suggest.ProviderResult{ok("a"), {Provider: "b", Error: suggest.ErrRateLimited, RawItems: []string{"ignored"}}})
	if merged == nil || len(merged) != 0 {
		t.Fatalf("merged = %#v, want empty non-nil", merged)
	}
}

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		keyword, lang string
		want          bool
	}{
		{"how to tie running shoes", "en", true},
		{"running shoes", "en", false},
		{"running shoes worth it?", "en", true},
		{"Wie reinige ich Laufschuhe", "de", true},
		{"Où acheter des chaussures", "fr", true},
		{"cómo limpiar zapatillas", "es", true},
		{"what shoes", "ja", true},
		{"whatever shoes", "en", false},
	}
	for _, tt := range tests {
		if got := IsQuestion(tt.keyword, tt.lang); got != tt.want {
			t.Errorf("IsQuestion(%q, %s) = %v, want %v", tt.keyword, tt.lang, got, tt.want)
		}
	}
}

func TestCategorize(t *testing.T) {
	n := New([]suggest.ProviderID{"google", "amazon", "wikipedia"})
	merged := n.Merge([]suggest.ProviderResult{
		ok("google", "running shoes men", "how to choose running shoes"),
		ok("amazon", "running shoes women", "running shoes men"),
		ok("wikipedia", "Running shoe"),
	})
	cats := map[suggest.ProviderID]suggest.Category{
		"google":    suggest.CategoryGeneral,
		"amazon":    suggest.CategoryMarketplace,
		"wikipedia": suggest.CategoryReference,
	}
	got := Categorize(merged, "en", func(id suggest.ProviderID) suggest.Category { return cats[id] })

	if len(got) != len(suggest.Categories) {
		t.Fatalf("got %d categories, want all %d", len(got), len(suggest.Categories))
	}
	check := func(c suggest.Category, want ...string) {
		t.Helper()
		var kws []string
		for _, s := range got[c] {
			kws = append(kws, s.Keyword)
		}
		if !reflect.DeepEqual(kws, want) {
			t.Errorf("%s = %q, want %q", c, kws, want)
		}
	}
	check(suggest.CategoryGeneral, "running shoes men")
	check(suggest.CategoryQuestions, "how to choose running shoes")
	check(suggest.CategoryMarketplace, "running shoes women")
	check(suggest.CategoryReference, "Running shoe")
	if len(got[suggest.CategoryApps]) != 0 {
		t.Errorf("apps should be empty")
	}
}

func TestCategorizeSortsBySourcesThenRank(t *testing.T) {
	list := []suggest.NormalizedSuggestion{
		{Keyword: "a", Key: "a", Sources: suggest.NewProviderSet("p"), FirstSeenProvider: "p", RankHint: 0},
		{Keyword: "b", Key: "b", Sources: suggest.NewProviderSet("p", "q"), FirstSeenProvider: "p", RankHint: 3},
		{Keyword: "c", Key: "c", Sources: suggest.NewProviderSet("p"), FirstSeenProvider: "p", RankHint: 0},
		{Keyword: "d", Key: "d", Sources: suggest.NewProviderSet("p"), FirstSeenProvider: "p", RankHint: 1},
	}
	got := Categorize(list, "en", nil)[suggest.CategoryGeneral]
	var kws []string
	for _, s := range got {
		kws = append(kws, s.Keyword)
	}
	if want := []string{"b", "a", "c", "d"}; !reflect.DeepEqual(kws, want) {
		t.Fatalf("order = %q, want %q", kws, want)
	}
}

func TestEstimateVolume(t *testing.T) {
	s := suggest.NormalizedSuggestion{Key: "running shoes", Sources: suggest.NewProviderSet("a"), RankHint: 0}
	v1 := EstimateVolume(s)
	if v1 != EstimateVolume(s) {
		t.Fatal("volume not stable")
	}
	if v1 < 1020 || v1 > 1380 {
		t.Errorf("rank 0 volume = %d, want within jitter of 1200", v1)
	}
	deep := s
	deep.RankHint = 50
	if v := EstimateVolume(deep); v < 127 || v > 173 {
		t.Errorf("deep rank volume = %d, want near the 150 floor", v)
	}
	multi := s
	multi.Sources = suggest.NewProviderSet("a", "b", "c")
	if EstimateVolume(multi) <= v1 {
		t.Errorf("multi-source volume should exceed single-source")
	}

	list := []suggest.NormalizedSuggestion{s, deep}
	sum := AssignVolumes(list)
	if sum.TotalKeywords != 2 || sum.TotalEstimatedVolume != list[0].EstimatedVolume+list[1].EstimatedVolume {
		t.Errorf("summary = %+v", sum)
	}
}

func TestFlag(t *testing.T) {
	list := []suggest.NormalizedSuggestion{
		{Keyword: "Free Shipping Shoes", Key: "free shipping shoes"},
		{Keyword: "freestyle shoes", Key: "freestyle shoes"},
		{Keyword: "shoes best seller", Key: "shoes best seller"},
		{Keyword: "running shoes", Key: "running shoes"},
	}
	want := []string{"Free Shipping Shoes", "shoes best seller"}
	if got := Flag(list); !reflect.DeepEqual(got, want) {
		t.Fatalf("Flag() = %q, want %q", got, want)
	}
}
