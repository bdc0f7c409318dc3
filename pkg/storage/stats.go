package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Usage counter keys.
const (
	StatSearchCount = "search_count"
	StatUserCount   = "user_count"
	StatStartUsage  = "start_usage"
)

// IncrementStat adds one to the named counter, creating it when missing.
func (i *Index) IncrementStat(ctx context.Context, key string) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	_, err := i.db.ExecContext(ctx, `
		INSERT INTO stats (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`, key)
	if err != nil {
		return fmt.Errorf("incrementing %s: %w", key, err)
	}
	return nil
}

// Stat returns the value of the named counter, zero when it does not exist.
func (i *Index) Stat(ctx context.Context, key string) (int64, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var value int64
	err := i.db.QueryRowContext(ctx, "SELECT value FROM stats WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Stats returns every counter.
func (i *Index) Stats(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, "SELECT key, value FROM stats ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	defer closeRows(rows)

	stats := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning stat: %w", err)
		}
		stats[key] = value
	}
	return stats, rows.Err()
}

// LogUser records a user id. The user counter only grows the first time an id
// is seen. It reports whether the user is new.
func (i *Index) LogUser(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO users (user_id) VALUES (?)", userID)
	if err != nil {
		return false, fmt.Errorf("logging user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stats (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`, StatUserCount); err != nil {
		return false, fmt.Errorf("incrementing user count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing user: %w", err)
	}
	return true, nil
}
