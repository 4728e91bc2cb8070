package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/priority"
	rep "tasklist/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// business rules live here; the repository only stores and orders tasks

// TaskService owns every task mutation. Mutations are serialized by a single
// writer lock and each committed one is published to subscribers in order.
type TaskService struct {
	repo TaskRepository
	now  func() time.Time

	mtx sync.Mutex
	seq uint64

	listenersMtx sync.Mutex
	listeners    []subscription
	nextListener uint64
}

func NewTaskService(repo TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service's notion of the current time.
func (s *TaskService) Now() time.Time {
	return s.now()
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// Tasks returns a copy of the collection in authoritative order.
func (s *TaskService) Tasks(ctx context.Context) ([]task.Task, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return derefAll(all), nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, s.translate(err, id)
	}
	return *found, nil
}

func (s *TaskService) AddTask(ctx context.Context, name string, category task.Category, deadline task.Date) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	created := task.Task{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Category: category,
		Deadline: deadline,
	}
	if err := validateFields(created); err != nil {
		return task.Task{}, err
	}
	if err := validateDeadline(deadline, now); err != nil {
		return task.Task{}, err
	}
	created.Priority = priority.Classify(deadline, now)

	if err := s.repo.Create(ctx, &created); err != nil {
		return task.Task{}, s.translate(err, created.ID)
	}

	logger.Info("Service: Task created",
		zap.String("task_id", created.ID),
		zap.String("priority", string(created.Priority)))

	s.publish(ctx, OpAdd, created.ID)
	return created, nil
}

// EditTask applies the options to the task and re-derives its priority. The
// result must pass the same checks as a new task, so an overdue task cannot
// be saved until its deadline is moved or cleared.
func (s *TaskService) EditTask(ctx context.Context, id string, options ...task.TaskOption) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, s.translate(err, id)
	}

	draft := *existing
	for _, opt := range options {
		if opt != nil {
			opt(&draft)
		}
	}
	if err := validateFields(draft); err != nil {
		return task.Task{}, err
	}

	now := s.now()
	if err := validateDeadline(draft.Deadline, now); err != nil {
		return task.Task{}, err
	}
	draft.Priority = priority.Classify(draft.Deadline, now)

	if err := s.repo.Update(ctx, &draft); err != nil {
		return task.Task{}, s.translate(err, id)
	}

	s.publish(ctx, OpEdit, id)
	return draft, nil
}

// SetCompleted is idempotent: setting the current value succeeds without
// publishing a change.
func (s *TaskService) SetCompleted(ctx context.Context, id string, value bool) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.setCompleted(ctx, id, func(bool) bool { return value })
}

func (s *TaskService) ToggleCompletion(ctx context.Context, id string) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.setCompleted(ctx, id, func(current bool) bool { return !current })
}

func (s *TaskService) setCompleted(ctx context.Context, id string, next func(bool) bool) (task.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, s.translate(err, id)
	}

	value := next(existing.Completed)
	if existing.Completed == value {
		return *existing, nil
	}

	existing.Completed = value
	if existing.Live() {
		existing.Priority = priority.Classify(existing.Deadline, s.now())
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return task.Task{}, s.translate(err, id)
	}

	s.publish(ctx, OpComplete, id)
	return *existing, nil
}

// SoftDelete moves the task to the recycle bin; deleting twice is a no-op.
func (s *TaskService) SoftDelete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.translate(err, id)
	}
	if existing.IsDeleted {
		return nil
	}

	if err := s.repo.DeleteSoft(ctx, id); err != nil {
		return s.translate(err, id)
	}

	logger.Info("Service: Task moved to recycle bin", zap.String("task_id", id))
	s.publish(ctx, OpSoftDelete, id)
	return nil
}

// RestoreTask takes the task out of the recycle bin; restoring an active task
// is a no-op.
func (s *TaskService) RestoreTask(ctx context.Context, id string) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, s.translate(err, id)
	}
	if !existing.IsDeleted {
		return *existing, nil
	}

	existing.IsDeleted = false
	if existing.Live() {
		existing.Priority = priority.Classify(existing.Deadline, s.now())
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return task.Task{}, s.translate(err, id)
	}

	logger.Info("Service: Task restored", zap.String("task_id", id))
	s.publish(ctx, OpRestore, id)
	return *existing, nil
}

// PurgeTask permanently removes a task that is already in the recycle bin.
func (s *TaskService) PurgeTask(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.translate(err, id)
	}
	if !existing.IsDeleted {
		logger.Info("Service: Purge refused for active task", zap.String("task_id", id))
		return NewPreconditionError(id, "task must be in the recycle bin before it can be purged")
	}

	if err := s.repo.DeleteFull(ctx, id); err != nil {
		return s.translate(err, id)
	}

	logger.Info("Service: Task purged", zap.String("task_id", id))
	s.publish(ctx, OpPurge, id)
	return nil
}

// Reorder replaces the authoritative order. ids must be a permutation of
// every stored task id, deleted ones included.
func (s *TaskService) Reorder(ctx context.Context, ids []string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.repo.Reorder(ctx, ids); err != nil {
		return s.translate(err, "")
	}

	s.publish(ctx, OpReorder, "")
	return nil
}

// RefreshPriority re-derives the priority of one active, incomplete task with
// a deadline. Other tasks keep their frozen priority. It reports whether the
// stored priority changed.
func (s *TaskService) RefreshPriority(ctx context.Context, id string) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, s.translate(err, id)
	}
	if !existing.Live() || existing.Deadline.IsZero() {
		return false, nil
	}

	derived := priority.Classify(existing.Deadline, s.now())
	if derived == existing.Priority {
		return false, nil
	}

	previous := existing.Priority
	existing.Priority = derived
	if err := s.repo.Update(ctx, existing); err != nil {
		return false, s.translate(err, id)
	}

	logger.Info("Service: Priority refreshed",
		zap.String("task_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(derived)))

	s.publish(ctx, OpRefresh, id)
	return true, nil
}

type LoadResult struct {
	Loaded  int
	Skipped int
}

// Load replaces the collection with previously persisted records. Records
// that cannot be converted, or repeat an id, are skipped.
func (s *TaskService) Load(ctx context.Context, records []task.Record) (LoadResult, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	seen := make(map[string]struct{}, len(records))
	tasks := make([]*task.Task, 0, len(records))
	result := LoadResult{}

	for i, record := range records {
		loaded, err := task.FromRecord(record)
		if err == nil {
			if _, dup := seen[loaded.ID]; dup {
				err = fmt.Errorf("%w: id %s", rep.ErrDuplicateID, loaded.ID)
			}
		}
		if err != nil {
			logger.Warn("Service: Skipping stored task", zap.Int("index", i), zap.Error(err))
			result.Skipped++
			continue
		}

		seen[loaded.ID] = struct{}{}
		if loaded.Live() {
			loaded.Priority = priority.Classify(loaded.Deadline, now)
		}
		tasks = append(tasks, &loaded)
	}

	if err := s.repo.Replace(ctx, tasks); err != nil {
		return LoadResult{}, fmt.Errorf("replace tasks: %w", err)
	}
	result.Loaded = len(tasks)

	logger.Info("Service: Tasks loaded",
		zap.Int("loaded", result.Loaded),
		zap.Int("skipped", result.Skipped))

	s.publish(ctx, OpLoad, "")
	return result, nil
}

func (s *TaskService) publish(ctx context.Context, op Op, id string) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		logger.Error("Service: Snapshot for change notification failed", err, zap.String("op", string(op)))
		return
	}

	s.seq++
	s.notify(Change{
		Seq:    s.seq,
		Op:     op,
		TaskID: id,
		Tasks:  derefAll(all),
	})
}

func (s *TaskService) translate(err error, id string) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: Task not found", zap.String("target_id", id))
		return NewNotFound(id)
	case errors.Is(err, rep.ErrInvalidOrder):
		return NewValidationError("order", "order must list every task exactly once")
	case errors.Is(err, rep.ErrDuplicateID):
		return NewValidationError("id", "task id already exists")
	default:
		return fmt.Errorf("repository: %w", err)
	}
}

func validateFields(t task.Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("taskName", "name cannot be empty")
	}
	if !t.Category.IsValid() {
		return NewValidationError("taskType", fmt.Sprintf("unknown category %q", t.Category))
	}
	return nil
}

func validateDeadline(deadline task.Date, now time.Time) error {
	if deadline.IsZero() {
		return nil
	}
	if deadline.Before(task.DateOf(now)) {
		return NewValidationError("deadline", "deadline cannot be in the past")
	}
	return nil
}

func derefAll(tasks []*task.Task) []task.Task {
	res := make([]task.Task, len(tasks))
	for i, t := range tasks {
		res[i] = *t
	}
	return res
}
