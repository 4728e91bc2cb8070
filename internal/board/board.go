// Package board is the operation surface the presentation layer talks to. It
// accepts raw user input, forwards mutations to the task service and keeps the
// derived views current from the service's change notifications.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/reorder"
	"tasklist/internal/service"
	"tasklist/internal/view"

	"go.uber.org/zap"
)

type TaskStore interface {
	Subscribe(service.Listener) func()
	Now() time.Time
	Tasks(context.Context) ([]task.Task, error)
	AddTask(ctx context.Context, name string, category task.Category, deadline task.Date) (task.Task, error)
	EditTask(ctx context.Context, id string, options ...task.TaskOption) (task.Task, error)
	SetCompleted(ctx context.Context, id string, value bool) (task.Task, error)
	ToggleCompletion(ctx context.Context, id string) (task.Task, error)
	SoftDelete(ctx context.Context, id string) error
	RestoreTask(ctx context.Context, id string) (task.Task, error)
	PurgeTask(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

// State is a consistent read of the board.
type State struct {
	Seq      uint64
	Query    view.Query
	Views    view.Views
	Progress view.Progress
	Now      time.Time
}

type Board struct {
	store TaskStore

	mtx   sync.RWMutex
	seq   uint64
	tasks []task.Task
	query view.Query
	views view.Views

	unsubscribe func()
}

// NewBoard subscribes to store and takes the initial snapshot.
func NewBoard(ctx context.Context, store TaskStore) (*Board, error) {
	b := &Board{
		store: store,
		query: view.Query{Category: view.CategoryAll},
	}
	b.views = view.Project(nil, b.query)
	b.unsubscribe = store.Subscribe(b.onChange)

	all, err := store.Tasks(ctx)
	if err != nil {
		b.unsubscribe()
		return nil, fmt.Errorf("board snapshot: %w", err)
	}

	b.mtx.Lock()
	// a change delivered meanwhile is newer than this read
	if b.seq == 0 {
		b.tasks = all
		b.views = view.Project(all, b.query)
	}
	b.mtx.Unlock()

	return b, nil
}

// Close stops following the store.
func (b *Board) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func (b *Board) onChange(c service.Change) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if c.Seq <= b.seq {
		return
	}
	b.seq = c.Seq
	b.tasks = c.Tasks
	b.views = view.Project(c.Tasks, b.query)

	logger.Debug("Board: Views recomputed",
		zap.Uint64("seq", c.Seq),
		zap.String("op", string(c.Op)),
		zap.Int("incomplete", len(b.views.Incomplete)),
		zap.Int("complete", len(b.views.Complete)),
		zap.Int("deleted", len(b.views.Deleted)))
}

func (b *Board) State() State {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	return State{
		Seq:      b.seq,
		Query:    b.query,
		Views:    b.views,
		Progress: view.ProgressOf(b.tasks),
		Now:      b.store.Now(),
	}
}

// Seq is the sequence number of the last change the board has applied.
func (b *Board) Seq() uint64 {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return b.seq
}

func (b *Board) Views() view.Views {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return b.views
}

func (b *Board) Progress() view.Progress {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return view.ProgressOf(b.tasks)
}

func (b *Board) SetSearch(query string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.query.Search = query
	b.views = view.Project(b.tasks, b.query)
}

// SetCategoryFilter accepts a category name or "All".
func (b *Board) SetCategoryFilter(category string) error {
	parsed, err := view.ParseCategoryFilter(category)
	if err != nil {
		return service.NewValidationError("category", err.Error())
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.query.Category = parsed
	b.views = view.Project(b.tasks, b.query)
	return nil
}

func (b *Board) AddTask(ctx context.Context, name, category, deadline string) (task.Task, error) {
	c, d, err := parseInput(category, deadline)
	if err != nil {
		return task.Task{}, err
	}
	return b.store.AddTask(ctx, name, c, d)
}

// EditTask replaces the user-editable fields of a task.
func (b *Board) EditTask(ctx context.Context, id, name, category, deadline string) (task.Task, error) {
	c, d, err := parseInput(category, deadline)
	if err != nil {
		return task.Task{}, err
	}
	return b.store.EditTask(ctx, id,
		task.WithName(name),
		task.WithCategory(c),
		task.WithDeadline(d),
	)
}

func (b *Board) ToggleCompletion(ctx context.Context, id string) (task.Task, error) {
	return b.store.ToggleCompletion(ctx, id)
}

func (b *Board) SoftDelete(ctx context.Context, id string) error {
	return b.store.SoftDelete(ctx, id)
}

func (b *Board) Restore(ctx context.Context, id string) (task.Task, error) {
	return b.store.RestoreTask(ctx, id)
}

func (b *Board) Purge(ctx context.Context, id string) error {
	return b.store.PurgeTask(ctx, id)
}

// Reorder resolves a drag of sourceID onto targetID against the views as they
// are now and applies the result.
func (b *Board) Reorder(ctx context.Context, sourceID, targetID string) (reorder.Outcome, error) {
	b.mtx.RLock()
	all := b.tasks
	views := b.views
	b.mtx.RUnlock()

	outcome := reorder.Resolve(all, views, sourceID, targetID)
	logger.Debug("Board: Drag resolved",
		zap.String("source_id", sourceID),
		zap.String("target_id", targetID),
		zap.String("outcome", outcome.Kind.String()))

	switch outcome.Kind {
	case reorder.Move:
		if err := b.store.Reorder(ctx, outcome.Sequence); err != nil {
			return reorder.Outcome{}, err
		}
	case reorder.StatusChange:
		if _, err := b.store.SetCompleted(ctx, outcome.TaskID, outcome.Completed); err != nil {
			return reorder.Outcome{}, err
		}
	}
	return outcome, nil
}

func parseInput(category, deadline string) (task.Category, task.Date, error) {
	c, err := task.ParseCategory(category)
	if err != nil {
		return "", task.Date{}, service.NewValidationError("taskType", err.Error())
	}
	d, err := task.ParseDate(deadline)
	if err != nil {
		return "", task.Date{}, service.NewValidationError("deadline", "invalid deadline format")
	}
	return c, d, nil
}
