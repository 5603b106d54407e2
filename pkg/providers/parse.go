package providers

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// Strings extracts the string array at path from a JSON body. An empty body
// is an empty result; invalid JSON or a missing or non-array path is a
// MalformedResponse.
func Strings(id suggest.ProviderID, body []byte, path string) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []string{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, Malformed(id, "invalid JSON body")
	}
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return nil, Malformed(id, "missing %q", path)
	}
	if !res.IsArray() {
		return nil, Malformed(id, "%q is not an array", path)
	}
	out := make([]string, 0, len(res.Array()))
	res.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			out = append(out, v.String())
		}
		return true
	})
	return Clean(out), nil
}

// StringsOrEmpty is Strings for upstreams that omit the key entirely when
// they have no suggestions.
func StringsOrEmpty(id suggest.ProviderID, body []byte, path string) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && gjson.ValidBytes(trimmed) && !gjson.GetBytes(trimmed, path).Exists() {
		return []string{}, nil
	}
	return Strings(id, body, path)
}

// OpenSearch parses the OpenSearch suggestions format:
// ["query", ["s1", "s2", ...], ...].
func OpenSearch(id suggest.ProviderID, body []byte) ([]string, error) {
	return Strings(id, body, "1")
}

// Expand substitutes {name} placeholders in a base URL template.
func Expand(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

// WithQuery appends encoded parameters to base.
func WithQuery(base string, params url.Values) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}
