package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists readings to a SQLite database
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// status and history commands read while the agent writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	util.LogDebugf("History recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usage_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			fetched_at        INTEGER NOT NULL,
			session_pct       REAL,
			session_resets_at TEXT,
			weekly_pct        REAL,
			weekly_resets_at  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_fetched_at ON usage_snapshots(fetched_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record inserts one reading
func (r *SQLiteRecorder) Record(ctx context.Context, snapshot model.UsageSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	sessionPct, sessionReset := windowColumns(snapshot.Session)
	weeklyPct, weeklyReset := windowColumns(snapshot.Weekly)

	_, err := r.db.ExecContext(ctx, `INSERT INTO usage_snapshots
		(fetched_at, session_pct, session_resets_at, weekly_pct, weekly_resets_at)
		VALUES (?,?,?,?,?)`,
		fetchedAt.UnixMilli(), sessionPct, sessionReset, weeklyPct, weeklyReset,
	)
	if err != nil {
		return fmt.Errorf("insert usage snapshot: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, fetched_at, session_pct, session_resets_at, weekly_pct, weekly_resets_at
		FROM usage_snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query usage snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                         Entry
			fetchedAt                 int64
			sessionPct, weeklyPct     sql.NullFloat64
			sessionReset, weeklyReset sql.NullString
		)
		if err := rows.Scan(&e.ID, &fetchedAt, &sessionPct, &sessionReset, &weeklyPct, &weeklyReset); err != nil {
			return nil, fmt.Errorf("scan usage snapshot: %w", err)
		}
		e.FetchedAt = time.UnixMilli(fetchedAt)
		if sessionPct.Valid {
			v := sessionPct.Float64
			e.Session = &v
		}
		if weeklyPct.Valid {
			v := weeklyPct.Float64
			e.Weekly = &v
		}
		e.SessionResetsAt = sessionReset.String
		e.WeeklyResetsAt = weeklyReset.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries fetched before olderThan
func (r *SQLiteRecorder) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM usage_snapshots WHERE fetched_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune usage snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) Close() error {
	util.LogDebug("Closing history recorder")
	return r.db.Close()
}

func windowColumns(w *model.UsageWindow) (sql.NullFloat64, sql.NullString) {
	if w == nil {
		return sql.NullFloat64{}, sql.NullString{}
	}
	return sql.NullFloat64{Float64: w.Utilization, Valid: true},
		sql.NullString{String: w.ResetsAt, Valid: w.ResetsAt != ""}
}
