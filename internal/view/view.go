// Package view derives the read-only subsets of the task collection that the
// presentation layer displays. Nothing here mutates the collection.
package view

import (
	"math"
	"strings"

	"tasklist/internal/models/task"
)

// CategoryAll disables the category filter.
const CategoryAll = "All"

type Query struct {
	Search   string
	Category string
}

// ParseCategoryFilter accepts "All" or a category name, case-insensitively.
func ParseCategoryFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, CategoryAll) {
		return CategoryAll, nil
	}
	c, err := task.ParseCategory(s)
	if err != nil {
		return "", err
	}
	return string(c), nil
}

func (q Query) matches(t task.Task) bool {
	if q.Category != "" && q.Category != CategoryAll && string(t.Category) != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Search))
}

// Views holds every derived subset. Each slice keeps the relative order of the
// authoritative sequence.
type Views struct {
	Active     []task.Task
	Visible    []task.Task
	Incomplete []task.Task
	Complete   []task.Task
	Deleted    []task.Task
}

// Project partitions tasks for q. The recycle bin ignores the query.
func Project(tasks []task.Task, q Query) Views {
	v := Views{
		Active:     []task.Task{},
		Visible:    []task.Task{},
		Incomplete: []task.Task{},
		Complete:   []task.Task{},
		Deleted:    []task.Task{},
	}

	for _, t := range tasks {
		if t.IsDeleted {
			v.Deleted = append(v.Deleted, t)
			continue
		}
		v.Active = append(v.Active, t)
		if !q.matches(t) {
			continue
		}
		v.Visible = append(v.Visible, t)
		if t.Completed {
			v.Complete = append(v.Complete, t)
		} else {
			v.Incomplete = append(v.Incomplete, t)
		}
	}
	return v
}

type Progress struct {
	Completed int
	Active    int
	Ratio     float64
	Percent   int
}

// ProgressOf counts completion over all active tasks, ignoring any query.
// With no active tasks the ratio is 0.
func ProgressOf(tasks []task.Task) Progress {
	p := Progress{}
	for _, t := range tasks {
		if t.IsDeleted {
			continue
		}
		p.Active++
		if t.Completed {
			p.Completed++
		}
	}
	if p.Active > 0 {
		p.Ratio = float64(p.Completed) / float64(p.Active)
		p.Percent = int(math.Round(p.Ratio * 100))
	}
	return p
}
