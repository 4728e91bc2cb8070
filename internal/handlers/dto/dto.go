package dto

import (
	"tasklist/internal/board"
	"tasklist/internal/models/task"
	"tasklist/internal/view"
	"time"
)

type TaskRequest struct {
	TaskName string `json:"taskName"`
	TaskType string `json:"taskType"`
	Deadline string `json:"deadline"`
}

type ReorderRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type CategoryRequest struct {
	Category string `json:"category"`
}

type TaskResponse struct {
	ID        string `json:"id"`
	TaskName  string `json:"taskName"`
	TaskType  string `json:"taskType"`
	Deadline  string `json:"deadline"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
	IsDeleted bool   `json:"isDeleted"`
	Overdue   bool   `json:"overdue"`
	DueLabel  string `json:"dueLabel"`
}

type ProgressResponse struct {
	Completed int     `json:"completed"`
	Active    int     `json:"active"`
	Ratio     float64 `json:"ratio"`
	Percent   int     `json:"percent"`
}

type BoardResponse struct {
	Incomplete []TaskResponse   `json:"incomplete"`
	Complete   []TaskResponse   `json:"complete"`
	Deleted    []TaskResponse   `json:"deleted"`
	Progress   ProgressResponse `json:"progress"`
	Search     string           `json:"search"`
	Category   string           `json:"category"`
}

func FromTask(t task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		TaskName:  t.Name,
		TaskType:  string(t.Category),
		Deadline:  t.Deadline.String(),
		Priority:  string(t.Priority),
		Completed: t.Completed,
		IsDeleted: t.IsDeleted,
		Overdue:   t.Overdue(now),
		DueLabel:  t.DueLabel(now),
	}
}

func FromTaskList(tasks []task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

func FromProgress(p view.Progress) ProgressResponse {
	return ProgressResponse{
		Completed: p.Completed,
		Active:    p.Active,
		Ratio:     p.Ratio,
		Percent:   p.Percent,
	}
}

func FromState(s board.State) BoardResponse {
	return BoardResponse{
		Incomplete: FromTaskList(s.Views.Incomplete, s.Now),
		Complete:   FromTaskList(s.Views.Complete, s.Now),
		Deleted:    FromTaskList(s.Views.Deleted, s.Now),
		Progress:   FromProgress(s.Progress),
		Search:     s.Query.Search,
		Category:   s.Query.Category,
	}
}
