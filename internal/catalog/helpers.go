package catalog

import (
	"context"
	"database/sql"
	"time"
)

type scanner interface{ Scan(dest ...any) error }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func now() (time.Time, string) {
	ts := time.Now().UTC()
	return ts, ts.Format(time.RFC3339Nano)
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw.String); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// insert runs an INSERT and returns the new row id.
func insert(ctx context.Context, db execer, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
