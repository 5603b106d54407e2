package difficulty

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sw33tLie/kwscope/pkg/providers"
)

// SERP is the competitive snapshot of one result page.
type SERP struct {
	// ResultURLs are the organic result links in rank order.
	ResultURLs []string
	// Features are the rich result features present, sorted.
	Features []string
}

// Empty reports whether the page carried no usable signal.
func (s *SERP) Empty() bool {
	return s == nil || (len(s.ResultURLs) == 0 && len(s.Features) == 0)
}

// SignalSource fetches the result page snapshot for a keyword.
type SignalSource interface {
	Fetch(ctx context.Context, keyword, language, country string) (*SERP, error)
}

const (
	DefaultSERPURL        = "https://html.duckduckgo.com/html/?q={q}&kl={country}-{lang}"
	DefaultResultSelector = "a.result__a, div.g a[href^='http']:has(h3), li.b_algo h2 a"
	DefaultTopN           = 10
	serpProvider          = "serp"
)

// DefaultFeatureSelectors maps each rich feature to the selectors that
// reveal it on a result page.
var DefaultFeatureSelectors = map[string]string{
	"knowledge_panel":  ".kp-wholepage, .knowledge-panel, .module--about, [data-feature='knowledge_panel']",
	"shopping":         ".commercial-unit-desktop-top, .pla-unit, .module--products, [data-feature='shopping']",
	"featured_snippet": ".xpdopen, .featured-snippet, .zci--answer, [data-feature='featured_snippet']",
	"video":            "video-voyager, .video-result, .module--videos, [data-feature='video']",
	"local_pack":       ".local-pack, .module--places, [data-feature='local_pack']",
	"news":             ".news-result, .module--news, [data-feature='news']",
	"people_also_ask":  ".related-question-pair, [data-feature='people_also_ask']",
	"images":           "#imagebox_bigimages, .image-pack, .module--images, [data-feature='images']",
}

// HTMLSource scrapes a search result page with CSS selectors.
type HTMLSource struct {
	client *providers.Client

	// URL is a template with {q}, {lang} and {country} placeholders.
	URL              string
	ResultSelector   string
	FeatureSelectors map[string]string
	TopN             int
}

// NewHTMLSource returns a source using the default selectors. An empty
// urlTemplate uses DefaultSERPURL.
func NewHTMLSource(c *providers.Client, urlTemplate string) *HTMLSource {
	if urlTemplate == "" {
		urlTemplate = DefaultSERPURL
	}
	return &HTMLSource{
		client:           c,
		URL:              urlTemplate,
		ResultSelector:   DefaultResultSelector,
		FeatureSelectors: DefaultFeatureSelectors,
		TopN:             DefaultTopN,
	}
}

func (s *HTMLSource) Fetch(ctx context.Context, keyword, language, country string) (*SERP, error) {
	target := providers.Expand(s.URL, map[string]string{
		"q":       url.QueryEscape(keyword),
		"lang":    strings.ToLower(language),
		"country": strings.ToLower(country),
	})
	body, err := s.client.Get(ctx, serpProvider, target,
		providers.Header{Name: "Accept", Value: "text/html"},
		providers.Header{Name: "Accept-Language", Value: language + "-" + strings.ToUpper(country)})
	if err != nil {
		return nil, err
	}
	return ParseSERP(bytes.NewReader(body), s.ResultSelector, s.FeatureSelectors, s.TopN)
}

// ParseSERP extracts up to topN result links and the present features.
func ParseSERP(r io.Reader, resultSelector string, features map[string]string, topN int) (*SERP, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, providers.Malformed(serpProvider, "parse result page: %v", err)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	serp := &SERP{}
	seen := map[string]struct{}{}
	doc.Find(resultSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		link := resolveHref(href)
		if link == "" {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}
		serp.ResultURLs = append(serp.ResultURLs, link)
		return len(serp.ResultURLs) < topN
	})

	for name, selector := range features {
		if doc.Find(selector).Length() > 0 {
			serp.Features = append(serp.Features, name)
		}
	}
	sort.Strings(serp.Features)
	return serp, nil
}

// resolveHref unwraps redirect links (DuckDuckGo uddg, Google /url?q=) and
// drops anything that is not an absolute http(s) URL.
func resolveHref(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range []string{"uddg", "q", "url"} {
		if (strings.HasSuffix(u.Path, "/l/") || u.Path == "/url") && q.Get(key) != "" {
			return resolveHref(q.Get(key))
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
