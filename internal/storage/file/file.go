// Package file stores the task collection as a JSON document on disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/storage"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type envelope struct {
	SavedAt   time.Time     `json:"saved_at"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	Tasks     []task.Record `json:"tasks"`
}

type Store struct {
	path      string
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

// New returns a store at path. A snapshot older than retention loads as
// empty; zero retention keeps snapshots forever.
func New(path string, retention time.Duration, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("file path is empty")
	}
	s := &Store{
		path:      path,
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) ([]task.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrMalformed, s.path, err)
	}

	if env.ExpiresAt != nil && s.now().After(*env.ExpiresAt) {
		logger.Info("Storage: Snapshot expired, starting empty",
			zap.String("path", s.path),
			zap.String("saved", humanize.Time(env.SavedAt)))
		return nil, nil
	}
	return env.Tasks, nil
}

func (s *Store) Save(ctx context.Context, records []task.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []task.Record{}
	}

	now := s.now()
	env := envelope{
		SavedAt: now,
		Tasks:   records,
	}
	if s.retention > 0 {
		expires := now.Add(s.retention)
		env.ExpiresAt = &expires
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
