// Package storage connects the task service to a durable store: loading the
// collection at startup and saving it after every change.
package storage

import (
	"context"
	"errors"
	"sync"

	"tasklist/internal/models/task"
)

// ErrMalformed is returned by a Persister whose stored data cannot be decoded.
var ErrMalformed = errors.New("stored tasks are malformed")

type Persister interface {
	// Load returns the stored collection in authoritative order. Nothing
	// stored, or an expired snapshot, yields an empty collection.
	Load(ctx context.Context) ([]task.Record, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, records []task.Record) error
	Close() error
}

// Memory keeps the last saved collection in process memory.
type Memory struct {
	mtx     sync.RWMutex
	records []task.Record
	saves   int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]task.Record, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return append([]task.Record(nil), m.records...), nil
}

func (m *Memory) Save(ctx context.Context, records []task.Record) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.records = append([]task.Record(nil), records...)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.saves
}

func (m *Memory) Close() error {
	return nil
}
