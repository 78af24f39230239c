package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"market-intel/internal/types"
)

// SQLite keeps the latest report per key plus the full JSON record, so
// retrieval re-serializes to exactly the bytes that were derived.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers are not blocked by the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_reports (
			symbol       TEXT NOT NULL,
			exchange     TEXT NOT NULL,
			trend        TEXT,
			valuation    TEXT,
			risk         TEXT,
			momentum     TEXT,
			last_updated TEXT NOT NULL,
			record       TEXT NOT NULL,
			stored_at    INTEGER NOT NULL,
			PRIMARY KEY (symbol, exchange)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_updated ON stock_reports(last_updated)`,

		`CREATE TABLE IF NOT EXISTS news_reports (
			id           TEXT PRIMARY KEY,
			headline     TEXT NOT NULL,
			source       TEXT,
			published_at TEXT,
			scope        TEXT,
			news_type    TEXT,
			direction    TEXT,
			confidence   REAL,
			record       TEXT NOT NULL,
			stored_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news_reports(published_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// NewsID derives the stable identifier for a news record from its
// headline and publication time.
func NewsID(headline, publishedAt string) string {
	sum := sha1.Sum([]byte(headline + "|" + publishedAt))
	return hex.EncodeToString(sum[:])
}

func (s *SQLite) SaveStockReport(ctx context.Context, report types.StockReport) error {
	record, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal stock report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO stock_reports
		(symbol, exchange, trend, valuation, risk, momentum, last_updated, record, stored_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, exchange) DO UPDATE SET
			trend=excluded.trend, valuation=excluded.valuation,
			risk=excluded.risk, momentum=excluded.momentum,
			last_updated=excluded.last_updated, record=excluded.record,
			stored_at=excluded.stored_at`,
		report.Symbol, report.Exchange,
		string(report.Signals.Trend), string(report.Signals.Valuation),
		string(report.Signals.Risk), string(report.Signals.Momentum),
		report.LastUpdated, string(record), time.Now().Unix(),
	)
	return err
}

func (s *SQLite) StockReport(ctx context.Context, symbol, exchange string) (types.StockReport, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM stock_reports WHERE symbol = ? AND exchange = ?`,
		symbol, exchange).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StockReport{}, fmt.Errorf("%w: no stored report for %s:%s", types.ErrDataUnavailable, exchange, symbol)
	}
	if err != nil {
		return types.StockReport{}, fmt.Errorf("query stock report: %w", err)
	}

	var report types.StockReport
	if err := json.Unmarshal([]byte(record), &report); err != nil {
		return types.StockReport{}, fmt.Errorf("unmarshal stock report: %w", err)
	}
	return report, nil
}

func (s *SQLite) SaveNewsReport(ctx context.Context, report types.NewsReport) error {
	record, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal news report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO news_reports
		(id, headline, source, published_at, scope, news_type, direction, confidence, record, stored_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			scope=excluded.scope, news_type=excluded.news_type,
			direction=excluded.direction, confidence=excluded.confidence,
			record=excluded.record, stored_at=excluded.stored_at`,
		NewsID(report.Headline, report.PublishedAt),
		report.Headline, report.Source, report.PublishedAt,
		string(report.Scope), string(report.NewsType),
		string(report.Impact.Direction), report.Impact.Confidence,
		string(record), time.Now().Unix(),
	)
	return err
}

func (s *SQLite) NewsReport(ctx context.Context, id string) (types.NewsReport, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM news_reports WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NewsReport{}, fmt.Errorf("%w: no stored news report %s", types.ErrDataUnavailable, id)
	}
	if err != nil {
		return types.NewsReport{}, fmt.Errorf("query news report: %w", err)
	}

	var report types.NewsReport
	if err := json.Unmarshal([]byte(record), &report); err != nil {
		return types.NewsReport{}, fmt.Errorf("unmarshal news report: %w", err)
	}
	return report, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
