package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed marketplaces.yaml
var defaultTable []byte

var (
	// ErrFallbackCycle means a fallback declaration eventually points back to
	// itself.
	ErrFallbackCycle = errors.New("fallback cycle")
	// ErrFallbackChain means a fallback points at another fallback-only entry.
	// Only a single hop is allowed.
	ErrFallbackChain = errors.New("fallback chain longer than one hop")
	// ErrIncompleteEntry means an entry has neither a marketplace nor a fallback.
	ErrIncompleteEntry = errors.New("incomplete marketplace entry")
)

// TableEntry is one configured row of a family table.
type TableEntry struct {
	Country       string `yaml:"country"`
	Host          string `yaml:"host,omitempty"`
	MarketplaceID string `yaml:"marketplace_id,omitempty"`
	Fallback      string `yaml:"fallback,omitempty"`
}

func (e TableEntry) direct() bool { return e.Host != "" && e.MarketplaceID != "" }

// Table maps an adapter family to its configured rows.
type Table map[string][]TableEntry

// DefaultTable returns the embedded marketplace table.
func DefaultTable() (Table, error) {
	return ParseTable(defaultTable)
}

// ParseTable decodes a YAML marketplace table.
func ParseTable(b []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse marketplace table: %w", err)
	}
	for family, rows := range t {
		for i := range rows {
			rows[i].Country = strings.ToUpper(strings.TrimSpace(rows[i].Country))
			rows[i].Fallback = strings.ToUpper(strings.TrimSpace(rows[i].Fallback))
			rows[i].Host = strings.TrimSpace(rows[i].Host)
			rows[i].MarketplaceID = strings.TrimSpace(rows[i].MarketplaceID)
		}
		t[family] = rows
	}
	return t, nil
}

// LoadTable reads a table from path. An empty path yields the embedded
// default.
func LoadTable(path string) (Table, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTable()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return ParseTable(b)
}

// Families returns the family names in lexical order.
func (t Table) Families() []string {
	out := make([]string, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Validate reports every problem in the table. A resolver built from a table
// that fails validation still works; broken rows simply resolve to
// not-supported.
func (t Table) Validate() error {
	var errs []error
	for _, family := range t.Families() {
		_, problems := t.compile(family)
		errs = append(errs, problems...)
	}
	return errors.Join(errs...)
}

// compile turns the rows of one family into direct entries plus single-hop
// fallback links, dropping anything that cannot resolve.
func (t Table) compile(family string) (map[string]Resolution, []error) {
	rows := t[family]
	byCountry := make(map[string]TableEntry, len(rows))
	var problems []error
	for _, row := range rows {
		if len(row.Country) != 2 {
			problems = append(problems, fmt.Errorf("%s: country %q is not a two-letter code", family, row.Country))
			continue
		}
		if _, dup := byCountry[row.Country]; dup {
			problems = append(problems, fmt.Errorf("%s/%s: duplicate entry", family, row.Country))
			continue
		}
		switch {
		case row.direct() && row.Fallback != "":
			problems = append(problems, fmt.Errorf("%s/%s: entry has both a marketplace and a fallback", family, row.Country))
			continue
		case !row.direct() && row.Fallback == "":
			problems = append(problems, fmt.Errorf("%s/%s: %w", family, row.Country, ErrIncompleteEntry))
			continue
		}
		byCountry[row.Country] = row
	}

	out := make(map[string]Resolution, len(byCountry))
	for country, row := range byCountry {
		if row.direct() {
			out[country] = Resolution{
				Family:    family,
				Requested: country,
				Entry:     Entry{Country: country, Host: row.Host, MarketplaceID: row.MarketplaceID},
			}
			continue
		}
		if err := checkFallback(byCountry, country); err != nil {
			problems = append(problems, fmt.Errorf("%s/%s: %w", family, country, err))
			continue
		}
		target := byCountry[row.Fallback]
		out[country] = Resolution{
			Family:    family,
			Requested: country,
			Entry: Entry{
				Country:       country,
				Host:          target.Host,
				MarketplaceID: target.MarketplaceID,
			},
			ViaFallback: true,
			ServedBy:    target.Country,
		}
	}
	return out, problems
}

// checkFallback walks the fallback links from country and fails on cycles,
// dangling targets, or more than one hop.
func checkFallback(byCountry map[string]TableEntry, country string) error {
	visited := map[string]struct{}{country: {}}
	hops := 0
	current := byCountry[country]
	for !current.direct() {
		next := current.Fallback
		if _, seen := visited[next]; seen {
			return fmt.Errorf("%w via %s", ErrFallbackCycle, next)
		}
		target, ok := byCountry[next]
		if !ok {
			return fmt.Errorf("fallback %s has no entry", next)
		}
		visited[next] = struct{}{}
		hops++
		current = target
	}
	if hops > 1 {
		return fmt.Errorf("%w (%d hops)", ErrFallbackChain, hops)
	}
	return nil
}
