package service

import (
	"context"
	"tasklist/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, string) (*task.Task, error)
	DeleteSoft(context.Context, string) error
	DeleteFull(context.Context, string) error
	GetAll(context.Context) ([]*task.Task, error)
	Reorder(context.Context, []string) error
	Replace(context.Context, []*task.Task) error
}
