package suggest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// MaxKeywordLength is the longest accepted keyword, in characters.
const MaxKeywordLength = 200

// countryLookupAlias maps common aliases back to ISO codes.
var countryLookupAlias = map[string]string{
	"UK": "GB",
}

// NormalizeKeyword trims a keyword and validates its length.
func NormalizeKeyword(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(keyword); n > MaxKeywordLength {
		return "", fmt.Errorf("%w: keyword is %d characters, max %d", ErrInvalidInput, n, MaxKeywordLength)
	}
	return keyword, nil
}

// NormalizeLanguage validates an ISO-639-1 code and returns it lowercased.
func NormalizeLanguage(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) != 2 {
		return "", fmt.Errorf("%w: language %q is not a two-letter code", ErrInvalidInput, code)
	}
	if _, err := language.ParseBase(code); err != nil {
		return "", fmt.Errorf("%w: language %q: %v", ErrInvalidInput, code, err)
	}
	return code, nil
}

// NormalizeCountry validates an ISO-3166-1 alpha-2 code and returns it
// uppercased. Known aliases such as UK are mapped to their ISO code.
func NormalizeCountry(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if canonical, ok := countryLookupAlias[code]; ok {
		code = canonical
	}
	if len(code) != 2 {
		return "", fmt.Errorf("%w: country %q is not a two-letter code", ErrInvalidInput, code)
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("%w: unknown country %q", ErrInvalidInput, code)
	}
	return code, nil
}

// Normalized validates r and returns a copy with trimmed keyword and
// canonical language and country codes. Provider ids are trimmed,
// lowercased and deduplicated in order.
func (r Request) Normalized() (Request, error) {
	var err error
	out := r
	if out.Keyword, err = NormalizeKeyword(r.Keyword); err != nil {
		return Request{}, err
	}
	if out.Language, err = NormalizeLanguage(r.Language); err != nil {
		return Request{}, err
	}
	if out.Country, err = NormalizeCountry(r.Country); err != nil {
		return Request{}, err
	}
	out.Providers = nil
	seen := map[ProviderID]struct{}{}
	for _, p := range r.Providers {
		id := ProviderID(strings.ToLower(strings.TrimSpace(string(p))))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.Providers = append(out.Providers, id)
	}
	return out, nil
}
