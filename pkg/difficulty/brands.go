package difficulty

import (
	"net/url"
	"sort"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// DefaultBrands are registrable-domain labels of large brands that tend to
// dominate result pages.
var DefaultBrands = []string{
	"amazon", "walmart", "ebay", "target", "bestbuy", "costco", "homedepot", "lowes", "ikea",
	"etsy", "alibaba", "aliexpress", "temu", "shein", "zalando", "otto", "mediamarkt",
	"nike", "adidas", "apple", "samsung", "microsoft", "google", "youtube", "wikipedia",
	"facebook", "instagram", "pinterest", "reddit", "quora", "linkedin", "tiktok",
	"macys", "nordstrom", "zappos", "decathlon", "rei", "dickssportinggoods",
	"tripadvisor", "booking", "expedia", "yelp", "imdb",
	"nytimes", "forbes", "cnn", "bbc", "theguardian", "webmd", "healthline", "mayoclinic",
}

// BrandMatcher recognizes brand domains.
type BrandMatcher struct {
	labels map[string]struct{}
}

// NewBrandMatcher builds a matcher over labels, e.g. "amazon" matches
// amazon.com and smile.amazon.co.uk.
func NewBrandMatcher(labels []string) *BrandMatcher {
	m := &BrandMatcher{labels: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			m.labels[l] = struct{}{}
		}
	}
	return m
}

// Brand returns the brand label of rawURL, or "" when it is not a brand.
func (m *BrandMatcher) Brand(rawURL string) string {
	label := registrableLabel(rawURL)
	if _, ok := m.labels[label]; ok {
		return label
	}
	return ""
}

// Brands returns the distinct brands among urls, sorted.
func (m *BrandMatcher) Brands(urls []string) []string {
	seen := map[string]struct{}{}
	for _, u := range urls {
		if b := m.Brand(u); b != "" {
			seen[b] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// registrableLabel returns the leftmost label of the registrable domain:
// https://www.amazon.co.uk/dp/x -> amazon.
func registrableLabel(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain, err := publicsuffix.Domain(strings.ToLower(u.Hostname()))
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return domain[:i]
	}
	return domain
}
