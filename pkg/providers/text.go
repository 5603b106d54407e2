package providers

import (
	"strings"

	"golang.org/x/net/html"
)

// Clean strips markup and entities from raw upstream strings, collapses
// whitespace and drops empty items. Order is kept.
func Clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.ContainsAny(s, "<&") {
			s = stripMarkup(s)
		}
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
