// Package postgres provides a Postgres-backed resolution store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbellgrove/linkweaver/internal/store"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for resolution rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// ResolutionStore writes resolution rows into Postgres.
type ResolutionStore struct {
	pool  execCloser
	table string
}

// New creates a Postgres-backed ResolutionStore using the provided config.
func New(ctx context.Context, cfg Config) (*ResolutionStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "resolutions"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ResolutionStore{pool: pool, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool execCloser, table string) (*ResolutionStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "resolutions"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ResolutionStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ResolutionStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoreResolution inserts a resolution row into Postgres.
func (s *ResolutionStore) StoreResolution(ctx context.Context, record store.ResolutionRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("resolution store is not configured")
	}
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	visitsJSON, err := json.Marshal(record.Visits)
	if err != nil {
		return fmt.Errorf("marshal visits: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	origin_url,
	final_url,
	status,
	hops,
	content_type,
	title,
	error_text,
	resolved_at,
	visits
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)`, s.table)

	args := []any{
		record.ID,
		record.OriginURL,
		record.FinalURL,
		record.Status,
		record.Hops,
		record.ContentType,
		record.Title,
		record.ErrorText,
		record.ResolvedAt,
		visitsJSON,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}
