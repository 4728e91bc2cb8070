package inmemory

import (
	"context"
	"sync"
	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	repo "tasklist/internal/repository"

	"go.uber.org/zap"
)

// TaskStorage keeps every task, deleted or not, in one authoritative order.
// Tasks are copied on the way in and out so callers work on drafts.
type TaskStorage struct {
	storage map[string]*task.Task
	mtx     *sync.RWMutex
	ids     []string
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[string]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.storage) != len(s.ids) {
		logger.Warn("Repository: Index out of sync",
			zap.Int("tasks", len(s.storage)),
			zap.Int("ids", len(s.ids)))
		return repo.ErrInvalidOrder
	}
	return nil
}

// Create appends the task to the end of the order.
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToCreate.ID]; ok {
		return repo.ErrDuplicateID
	}

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

// Update replaces the stored fields without moving the task.
func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	stored := *taskToUpdate
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *taskToGet
	return &found, nil
}

// soft delete only flips the flag, the task keeps its place in the order
func (s *TaskStorage) DeleteSoft(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskExisted, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	taskExisted.IsDeleted = true
	return nil
}

// full removal from the storage and the order
func (s *TaskStorage) DeleteFull(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// GetAll returns copies of every task in authoritative order.
func (s *TaskStorage) GetAll(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		found := *s.storage[id]
		res = append(res, &found)
	}
	return res, nil
}

// Reorder replaces the order atomically. ids must be a permutation of the
// stored ids.
func (s *TaskStorage) Reorder(ctx context.Context, ids []string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(ids) != len(s.ids) {
		return repo.ErrInvalidOrder
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.storage[id]; !ok {
			return repo.ErrInvalidOrder
		}
		if _, dup := seen[id]; dup {
			return repo.ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}

	s.ids = append(make([]string, 0, len(ids)), ids...)
	return nil
}

// Replace swaps the whole collection, keeping the given order.
func (s *TaskStorage) Replace(ctx context.Context, tasks []*task.Task) error {
	storage := make(map[string]*task.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := storage[t.ID]; ok {
			return repo.ErrDuplicateID
		}
		stored := *t
		storage[stored.ID] = &stored
		ids = append(ids, stored.ID)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage = storage
	s.ids = ids
	return nil
}
