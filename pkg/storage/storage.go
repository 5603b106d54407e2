// Package storage keeps a sqlite history of aggregated requests and their
// per-provider outcomes.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const timeLayout = "2006-01-02 15:04:05"

type DB struct {
	sql *sql.DB
	now func() time.Time
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS requests (
  id             INTEGER PRIMARY KEY,
  request_id     TEXT NOT NULL UNIQUE,
  occurred_at    TEXT NOT NULL,
  keyword        TEXT NOT NULL,
  language       TEXT NOT NULL,
  country        TEXT NOT NULL,
  total_keywords INTEGER NOT NULL DEFAULT 0,
  total_volume   INTEGER NOT NULL DEFAULT 0,
  difficulty     INTEGER,
  partial        INTEGER NOT NULL CHECK (partial IN (0,1)),
  via_fallback   INTEGER NOT NULL CHECK (via_fallback IN (0,1)),
  failed         INTEGER NOT NULL CHECK (failed IN (0,1)),
  elapsed_ms     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_requests_time ON requests(occurred_at);
CREATE INDEX IF NOT EXISTS idx_requests_keyword ON requests(keyword);
CREATE TABLE IF NOT EXISTS provider_outcomes (
  id             INTEGER PRIMARY KEY,
  request_ref    INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
  provider       TEXT NOT NULL,
  status         TEXT NOT NULL CHECK (status IN ('ok','cached','failed','skipped')),
  error          TEXT,
  latency_ms     INTEGER NOT NULL DEFAULT 0,
  items          INTEGER NOT NULL DEFAULT 0,
  marketplace_id TEXT,
  via_fallback   INTEGER NOT NULL CHECK (via_fallback IN (0,1))
);
CREATE INDEX IF NOT EXISTS idx_outcomes_request ON provider_outcomes(request_ref);
CREATE INDEX IF NOT EXISTS idx_outcomes_provider ON provider_outcomes(provider);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Record is one stored request.
type Record struct {
	RequestID     string                   `json:"request_id"`
	OccurredAt    time.Time                `json:"occurred_at"`
	Keyword       string                   `json:"keyword"`
	Language      string                   `json:"language"`
	Country       string                   `json:"country"`
	TotalKeywords int                      `json:"total_keywords"`
	TotalVolume   int                      `json:"total_estimated_volume"`
	Difficulty    *int                     `json:"difficulty,omitempty"`
	Partial       bool                     `json:"partial"`
	ViaFallback   bool                     `json:"via_fallback"`
	Failed        bool                     `json:"failed"`
	ElapsedMS     int64                    `json:"elapsed_ms"`
	Providers     []suggest.ProviderStatus `json:"providers,omitempty"`
}

// RecordFromResponse builds the history row of a successful request.
func RecordFromResponse(resp *suggest.AggregatedResponse) Record {
	r := Record{
		RequestID:     resp.Metadata.RequestID,
		Keyword:       resp.Keyword,
		Language:      resp.Language,
		Country:       resp.Country,
		TotalKeywords: resp.Summary.TotalKeywords,
		TotalVolume:   resp.Summary.TotalEstimatedVolume,
		Partial:       resp.Metadata.Partial,
		ViaFallback:   resp.Metadata.ViaFallback,
		ElapsedMS:     resp.Metadata.ElapsedMS,
		Providers:     resp.Metadata.Providers,
	}
	if resp.Difficulty != nil {
		v := resp.Difficulty.Value
		r.Difficulty = &v
	}
	return r
}

// Insert stores r and its provider outcomes in one transaction.
func (d *DB) Insert(ctx context.Context, r Record) (err error) {
	if r.OccurredAt.IsZero() {
		r.OccurredAt = d.now()
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var difficulty interface{}
	if r.Difficulty != nil {
		difficulty = *r.Difficulty
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO requests(request_id, occurred_at, keyword, language, country, total_keywords, total_volume, difficulty, partial, via_fallback, failed, elapsed_ms) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.RequestID, r.OccurredAt.UTC().Format(timeLayout), r.Keyword, r.Language, r.Country, r.TotalKeywords, r.TotalVolume, difficulty,
		boolToInt(r.Partial), boolToInt(r.ViaFallback), boolToInt(r.Failed), r.ElapsedMS)
	if err != nil {
		return err
	}
	ref, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range r.Providers {
		_, err = tx.ExecContext(ctx, `INSERT INTO provider_outcomes(request_ref, provider, status, error, latency_ms, items, marketplace_id, via_fallback) VALUES(?,?,?,?,?,?,?,?)`,
			ref, string(p.Provider), p.Status, nullIfEmpty(string(p.Error)), p.LatencyMS, p.Items, nullIfEmpty(p.MarketplaceID), boolToInt(p.ViaFallback))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListOptions controls selection when listing history.
type ListOptions struct {
	Keyword string
	Since   time.Time
	Limit   int
	// WithProviders loads the per-provider outcomes of every record.
	WithProviders bool
}

// ListRecent returns the most recent requests first.
func (d *DB) ListRecent(ctx context.Context, opts ListOptions) ([]Record, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.Keyword != "" {
		where += " AND keyword LIKE ?"
		args = append(args, "%"+opts.Keyword+"%")
	}
	if !opts.Since.IsZero() {
		where += " AND occurred_at >= ?"
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	args = append(args, opts.Limit)

	q := "SELECT id, request_id, occurred_at, keyword, language, country, total_keywords, total_volume, difficulty, partial, via_fallback, failed, elapsed_ms FROM requests " + where + " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	var refs []int64
	for rows.Next() {
		var (
			r                        Record
			ref                      int64
			occurred                 string
			difficulty               sql.NullInt64
			partial, fallback, fails int
		)
		if err := rows.Scan(&ref, &r.RequestID, &occurred, &r.Keyword, &r.Language, &r.Country, &r.TotalKeywords, &r.TotalVolume, &difficulty, &partial, &fallback, &fails, &r.ElapsedMS); err != nil {
			return nil, err
		}
		r.OccurredAt = parseTimestamp(occurred)
		if difficulty.Valid {
			v := int(difficulty.Int64)
			r.Difficulty = &v
		}
		r.Partial, r.ViaFallback, r.Failed = partial == 1, fallback == 1, fails == 1
		out = append(out, r)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if opts.WithProviders {
		for i, ref := range refs {
			if out[i].Providers, err = d.outcomes(ctx, ref); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (d *DB) outcomes(ctx context.Context, ref int64) ([]suggest.ProviderStatus, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT provider, status, error, latency_ms, items, marketplace_id, via_fallback FROM provider_outcomes WHERE request_ref = ? ORDER BY id", ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []suggest.ProviderStatus
	for rows.Next() {
		var (
			p             suggest.ProviderStatus
			provider      string
			errNS, market sql.NullString
			fallback      int
		)
		if err := rows.Scan(&provider, &p.Status, &errNS, &p.LatencyMS, &p.Items, &market, &fallback); err != nil {
			return nil, err
		}
		p.Provider = suggest.ProviderID(provider)
		p.Error = suggest.ErrorKind(errNS.String)
		p.MarketplaceID = market.String
		p.ViaFallback = fallback == 1
		out = append(out, p)
	}
	return out, rows.Err()
}

type ProviderStats struct {
	Provider     string  `json:"provider"`
	Calls        int     `json:"calls"`
	OK           int     `json:"ok"`
	Cached       int     `json:"cached"`
	Failed       int     `json:"failed"`
	Skipped      int     `json:"skipped"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// GetStats aggregates outcomes per provider. Average latency only counts
// live successful calls.
func (d *DB) GetStats(ctx context.Context) ([]ProviderStats, error) {
	query := `
		SELECT
			provider,
			COUNT(*),
			SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'cached' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END),
			COALESCE(AVG(CASE WHEN status = 'ok' THEN latency_ms END), 0)
		FROM
			provider_outcomes
		GROUP BY
			provider
		ORDER BY
			provider;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ProviderStats
	for rows.Next() {
		var s ProviderStats
		if err := rows.Scan(&s.Provider, &s.Calls, &s.OK, &s.Cached, &s.Failed, &s.Skipped, &s.AvgLatencyMS); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Prune deletes requests older than age and returns how many were removed.
func (d *DB) Prune(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := d.now().Add(-age).UTC().Format(timeLayout)
	res, err := d.sql.ExecContext(ctx, "DELETE FROM requests WHERE occurred_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// parseTimestamp reads both the sqlite CURRENT_TIMESTAMP layout and RFC3339.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
