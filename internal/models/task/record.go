package task

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRecord = errors.New("invalid task record")

// Record is the persisted form of a Task.
type Record struct {
	ID        string   `json:"id"`
	TaskName  string   `json:"taskName"`
	TaskType  Category `json:"taskType"`
	Deadline  string   `json:"deadline"`
	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`
	IsDeleted bool     `json:"isDeleted"`
}

func ToRecord(t Task) Record {
	return Record{
		ID:        t.ID,
		TaskName:  t.Name,
		TaskType:  t.Category,
		Deadline:  t.Deadline.String(),
		Priority:  t.Priority,
		Completed: t.Completed,
		IsDeleted: t.IsDeleted,
	}
}

func ToRecords(tasks []Task) []Record {
	records := make([]Record, len(tasks))
	for i, t := range tasks {
		records[i] = ToRecord(t)
	}
	return records
}

// FromRecord converts a stored record back into a Task, rejecting records
// that could not have been produced by ToRecord.
func FromRecord(r Record) (Task, error) {
	if r.ID == "" {
		return Task{}, fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.TaskName) == "" {
		return Task{}, fmt.Errorf("%w: id %s: empty task name", ErrInvalidRecord, r.ID)
	}
	if !r.TaskType.IsValid() {
		return Task{}, fmt.Errorf("%w: id %s: unknown task type %q", ErrInvalidRecord, r.ID, r.TaskType)
	}
	if !r.Priority.IsValid() {
		return Task{}, fmt.Errorf("%w: id %s: unknown priority %q", ErrInvalidRecord, r.ID, r.Priority)
	}
	deadline, err := ParseDate(r.Deadline)
	if err != nil {
		return Task{}, fmt.Errorf("%w: id %s: %w", ErrInvalidRecord, r.ID, err)
	}
	return Task{
		ID:        r.ID,
		Name:      r.TaskName,
		Category:  r.TaskType,
		Deadline:  deadline,
		Priority:  r.Priority,
		Completed: r.Completed,
		IsDeleted: r.IsDeleted,
	}, nil
}
