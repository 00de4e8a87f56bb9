package viewstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS daily_views (
	code  TEXT   NOT NULL,
	day   DATE   NOT NULL DEFAULT CURRENT_DATE,
	count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (code, day)
)`

	incrementSQL = `INSERT INTO daily_views (code, day, count) VALUES ($1, CURRENT_DATE, 1)
ON CONFLICT (code, day) DO UPDATE SET count = daily_views.count + 1`

	weeklySQL = `SELECT code, SUM(count)::BIGINT AS total_views FROM daily_views
WHERE day > CURRENT_DATE - $1::INT GROUP BY code`

	totalSQL = `SELECT code, SUM(count)::BIGINT FROM daily_views GROUP BY code`

	getSQL = `SELECT COALESCE(SUM(count), 0)::BIGINT FROM daily_views WHERE code = $1 AND day = CURRENT_DATE`

	setSQL = `INSERT INTO daily_views (code, day, count) VALUES ($1, CURRENT_DATE, $2)
ON CONFLICT (code, day) DO UPDATE SET count = EXCLUDED.count`
)

// PostgresStore keeps one row per code and day. All returns the totals of
// the last window days and falls back to all-time totals when that query
// fails.
type PostgresStore struct {
	pool   *pgxpool.Pool
	window int
	logger logger.Logger
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithWindowDays sets the ranking window. The default is seven days.
func WithWindowDays(days int) PostgresOption {
	return func(s *PostgresStore) {
		if days > 0 {
			s.window = days
		}
	}
}

// WithPostgresLogger sets a custom logger.
func WithPostgresLogger(l logger.Logger) PostgresOption {
	return func(s *PostgresStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPostgresStore connects to url and ensures the schema exists.
func NewPostgresStore(ctx context.Context, url string, opts ...PostgresOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	s := &PostgresStore{pool: pool, window: 7}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("viewstore")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// All implements Store.
func (s *PostgresStore) All(ctx context.Context) ([]model.ViewCount, error) {
	out, err := s.collect(ctx, weeklySQL, s.window)
	if err == nil {
		observe("postgres", "all", nil)
		return out, nil
	}
	s.logger.Warn(ctx, "weekly views unavailable, using totals", logger.Error(err))
	out, err = s.collect(ctx, totalSQL)
	observe("postgres", "all", err)
	return out, err
}

func (s *PostgresStore) collect(ctx context.Context, query string, args ...any) ([]model.ViewCount, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ViewCount, error) {
		var c model.ViewCount
		err := row.Scan(&c.Code, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan views: %w", err)
	}
	return out, nil
}

// Increment implements Store with an upsert on today's row.
func (s *PostgresStore) Increment(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	_, err := s.pool.Exec(ctx, incrementSQL, code)
	observe("postgres", "increment", err)
	if err != nil {
		return fmt.Errorf("increment %s: %w", code, err)
	}
	return nil
}

// Get implements ReadWriter with today's count of code, the row Set writes.
func (s *PostgresStore) Get(ctx context.Context, code string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, getSQL, code).Scan(&n); err != nil {
		return 0, fmt.Errorf("get %s: %w", code, err)
	}
	return n, nil
}

// Set implements ReadWriter by overwriting today's row.
func (s *PostgresStore) Set(ctx context.Context, code string, n int64) error {
	if _, err := s.pool.Exec(ctx, setSQL, code, n); err != nil {
		return fmt.Errorf("set %s: %w", code, err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
