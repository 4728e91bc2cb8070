package task

import "strings"

// TaskOption changes one user-editable field of a task draft.
type TaskOption func(*Task)

func WithName(name string) TaskOption {
	return func(task *Task) {
		task.Name = strings.TrimSpace(name)
	}
}

func WithCategory(category Category) TaskOption {
	return func(task *Task) {
		task.Category = category
	}
}

// WithDeadline sets the deadline; the zero Date clears it.
func WithDeadline(deadline Date) TaskOption {
	return func(task *Task) {
		task.Deadline = deadline
	}
}
