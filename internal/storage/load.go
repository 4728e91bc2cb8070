package storage

import (
	"context"
	"errors"
	"fmt"

	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/service"

	"go.uber.org/zap"
)

type Loader interface {
	Load(ctx context.Context, records []task.Record) (service.LoadResult, error)
}

// LoadInto hydrates l from p. Stored data that cannot be decoded is dropped
// and the session starts empty. A store that cannot be read at all also
// starts empty and saver, when given, is switched to memory only. Only a
// failure of l itself is returned.
func LoadInto(ctx context.Context, p Persister, l Loader, saver *Saver) (service.LoadResult, error) {
	records, err := p.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrMalformed):
		logger.Warn("Storage: Stored tasks are unreadable, starting empty",
			zap.Error(service.NewPersistenceError("load", err)))
		records = nil
	default:
		logger.Warn("Storage: Failed to load tasks, starting empty",
			zap.Error(service.NewPersistenceError("load", err)))
		records = nil
		if saver != nil {
			saver.DisablePersistence(err)
		}
	}

	result, err := l.Load(ctx, records)
	if err != nil {
		return service.LoadResult{}, fmt.Errorf("load tasks: %w", err)
	}
	return result, nil
}
