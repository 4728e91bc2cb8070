package handlers

import (
	"context"
	"tasklist/internal/board"
	"tasklist/internal/models/task"
	"tasklist/internal/reorder"
)

type Board interface {
	State() board.State
	AddTask(ctx context.Context, name, category, deadline string) (task.Task, error)
	EditTask(ctx context.Context, id, name, category, deadline string) (task.Task, error)
	ToggleCompletion(ctx context.Context, id string) (task.Task, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (task.Task, error)
	Purge(ctx context.Context, id string) error
	Reorder(ctx context.Context, sourceID, targetID string) (reorder.Outcome, error)
	SetSearch(query string)
	SetCategoryFilter(category string) error
}

type HealthChecker interface {
	HealthCheck(context.Context) error
}
