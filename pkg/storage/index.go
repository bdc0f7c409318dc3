// Package storage is the SQLite side of kashif: the FTS5 full-text index of
// the corpus, the usage counters and the moderation queue. All of them live in
// a single database file whose schema is bootstrapped by pkg/db.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/kashif/pkg/db"
	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("storage")

const defaultQueryTimeout = 5 * time.Second

// Index wraps the SQLite database holding the corpus.
type Index struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// Option configures an Index.
type Option func(*Index)

// WithQueryTimeout bounds every database round-trip.
func WithQueryTimeout(d time.Duration) Option {
	return func(i *Index) {
		if d > 0 {
			i.queryTimeout = d
		}
	}
}

// Open opens (creating if needed) the index at dbPath and applies pending
// migrations.
func Open(dbPath string, opts ...Option) (*Index, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	idx := &Index{
		db:           sqlDB,
		path:         dbPath,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.path
}

// DB returns the underlying connection for migrations tooling.
func (i *Index) DB() *sql.DB {
	return i.db
}

func (i *Index) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, i.queryTimeout)
}

// Optimize merges FTS5 b-tree segments and refreshes planner statistics.
func (i *Index) Optimize(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, "INSERT INTO documents_fts(documents_fts) VALUES('optimize')"); err != nil {
		return fmt.Errorf("optimizing fts index: %w", err)
	}
	if _, err := i.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("running pragma optimize: %w", err)
	}
	return nil
}

// WALCheckpoint truncates the write-ahead log.
func (i *Index) WALCheckpoint(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

func (i *Index) Analyze(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "ANALYZE")
	return err
}

func (i *Index) Vacuum(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "VACUUM")
	return err
}

// IntegrityCheck runs SQLite's integrity check and returns an error
// describing the first problem found.
func (i *Index) IntegrityCheck(ctx context.Context) error {
	var result string
	if err := i.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// FTSIntegrityCheck verifies the full-text index against its content.
func (i *Index) FTSIntegrityCheck(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "INSERT INTO documents_fts(documents_fts) VALUES('integrity-check')")
	return err
}

// FTSRebuild rebuilds the full-text index from the stored content.
func (i *Index) FTSRebuild(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "INSERT INTO documents_fts(documents_fts) VALUES('rebuild')")
	return err
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Warnf("failed to close rows: %v", err)
	}
}
