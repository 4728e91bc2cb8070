// Package sqlite stores the task collection in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/storage"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Store struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func Open(dbPath string, retention time.Duration, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:        db,
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	task_name TEXT NOT NULL,
	task_type TEXT NOT NULL,
	deadline TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	is_deleted INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS snapshot_meta (
	singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
	saved_at TEXT NOT NULL,
	expires_at TEXT DEFAULT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) Load(ctx context.Context) ([]task.Record, error) {
	expired, err := s.expired(ctx)
	if err != nil {
		return nil, err
	}
	if expired {
		logger.Info("Storage: Snapshot expired, starting empty")
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_name, task_type, deadline, priority, completed, is_deleted FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var records []task.Record
	for rows.Next() {
		var r task.Record
		var taskType, priority string
		var completed, deleted int
		if err := rows.Scan(&r.ID, &r.TaskName, &taskType, &r.Deadline, &priority, &completed, &deleted); err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrMalformed, err)
		}
		r.TaskType = task.Category(taskType)
		r.Priority = task.Priority(priority)
		r.Completed = completed == 1
		r.IsDeleted = deleted == 1
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return records, nil
}

func (s *Store) expired(ctx context.Context) (bool, error) {
	var expiresAt sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT expires_at FROM snapshot_meta WHERE singleton = 1;`).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query snapshot meta: %w", err)
	}
	if !expiresAt.Valid {
		return false, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, expiresAt.String)
	if err != nil {
		return false, fmt.Errorf("%w: expires_at %q", storage.ErrMalformed, expiresAt.String)
	}
	return s.now().After(parsed), nil
}

// Save replaces every row in one transaction.
func (s *Store) Save(ctx context.Context, records []task.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks;`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks (position, id, task_name, task_type, deadline, priority, completed, is_deleted) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, i, r.ID, r.TaskName, string(r.TaskType), r.Deadline, string(r.Priority),
			boolToInt(r.Completed), boolToInt(r.IsDeleted)); err != nil {
			return fmt.Errorf("insert task %s: %w", r.ID, err)
		}
	}

	now := s.now()
	var expiresAt any
	if s.retention > 0 {
		expiresAt = now.Add(s.retention).UTC().Format(time.RFC3339Nano)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (singleton, saved_at, expires_at) VALUES (1, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET saved_at = excluded.saved_at, expires_at = excluded.expires_at;`,
		now.UTC().Format(time.RFC3339Nano), expiresAt); err != nil {
		return fmt.Errorf("write snapshot meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug("Storage: Snapshot written to sqlite", zap.Int("count", len(records)))
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
