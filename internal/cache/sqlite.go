package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketLens/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the cache to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		// busy_timeout is per connection, so it goes in the DSN
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite cache opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol     TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     INTEGER,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_fetched ON bars(fetched_at)`,

		`CREATE TABLE IF NOT EXISTS cache_entries (
			symbol     TEXT PRIMARY KEY,
			query      TEXT    NOT NULL,
			bar_count  INTEGER NOT NULL,
			first_date TEXT    NOT NULL,
			last_date  TEXT    NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT    NOT NULL,
			period     TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pref_symbol ON user_preferences(symbol)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Entry(ctx context.Context, symbol string) (Entry, error) {
	var (
		e           Entry
		first, last string
		fetched     int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT symbol, query, bar_count, first_date, last_date, fetched_at
		 FROM cache_entries WHERE symbol = ?`, symbol,
	).Scan(&e.Symbol, &e.Query, &e.BarCount, &first, &last, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %s: %w", symbol, err)
	}
	if e.FirstDate, err = time.Parse(model.DateLayout, first); err != nil {
		return Entry{}, fmt.Errorf("%w: %s first_date: %v", ErrCacheInconsistency, symbol, err)
	}
	if e.LastDate, err = time.Parse(model.DateLayout, last); err != nil {
		return Entry{}, fmt.Errorf("%w: %s last_date: %v", ErrCacheInconsistency, symbol, err)
	}
	e.FetchedAt = time.UnixMilli(fetched).UTC()
	return e, nil
}

func (s *SQLiteStore) Bars(ctx context.Context, e Entry) (model.BarSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, open, high, low, close, volume FROM bars
		 WHERE symbol = ? AND date BETWEEN ? AND ?
		 ORDER BY date`,
		e.Symbol, e.FirstDate.Format(model.DateLayout), e.LastDate.Format(model.DateLayout))
	if err != nil {
		return model.BarSeries{}, fmt.Errorf("read bars %s: %w", e.Symbol, err)
	}
	defer rows.Close()

	bars := make([]model.Bar, 0, e.BarCount)
	for rows.Next() {
		var (
			b    model.Bar
			date string
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return model.BarSeries{}, fmt.Errorf("scan bar %s: %w", e.Symbol, err)
		}
		if b.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return model.BarSeries{}, fmt.Errorf("%w: %s date %q", ErrCacheInconsistency, e.Symbol, date)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return model.BarSeries{}, fmt.Errorf("read bars %s: %w", e.Symbol, err)
	}
	if err := checkConsistency(e, bars); err != nil {
		return model.BarSeries{}, err
	}
	return seriesFor(e, bars), nil
}

func (s *SQLiteStore) Save(ctx context.Context, symbol string, q model.Query, series model.BarSeries, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if n := len(series.Bars); n > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bars WHERE symbol = ? AND date >= ? AND date <= ?`,
			symbol, series.Bars[0].Date.Format(model.DateLayout), series.Bars[n-1].Date.Format(model.DateLayout),
		); err != nil {
			return fmt.Errorf("clear window %s: %w", symbol, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bars
		(symbol, date, open, high, low, close, volume, fetched_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	ts := fetchedAt.UnixMilli()
	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date.Format(model.DateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume, ts); err != nil {
			return fmt.Errorf("upsert bar %s %s: %w", symbol, b.Date.Format(model.DateLayout), err)
		}
	}

	e := newEntry(symbol, q, series, fetchedAt)
	if _, err := tx.ExecContext(ctx, `INSERT INTO cache_entries
		(symbol, query, bar_count, first_date, last_date, fetched_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			query = excluded.query, bar_count = excluded.bar_count,
			first_date = excluded.first_date, last_date = excluded.last_date,
			fetched_at = excluded.fetched_at`,
		e.Symbol, e.Query, e.BarCount,
		e.FirstDate.Format(model.DateLayout), e.LastDate.Format(model.DateLayout), ts,
	); err != nil {
		return fmt.Errorf("upsert entry %s: %w", symbol, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SavePreference(ctx context.Context, symbol string, q model.Query, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (symbol, period, created_at) VALUES (?,?,?)`,
		symbol, q.String(), at.UnixMilli())
	return err
}

func (s *SQLiteStore) EvictBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ts := cutoff.UnixMilli()
	res, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE fetched_at < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("evict entries: %w", err)
	}
	n, _ := res.RowsAffected()
	if _, err := tx.ExecContext(ctx, `DELETE FROM bars WHERE fetched_at < ?`, ts); err != nil {
		return 0, fmt.Errorf("evict bars: %w", err)
	}
	return n, tx.Commit()
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite cache")
	return s.db.Close()
}
