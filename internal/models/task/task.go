package task

import (
	"fmt"
	"strings"
)

type Task struct {
	ID        string
	Name      string
	Category  Category
	Deadline  Date
	Priority  Priority
	Completed bool
	IsDeleted bool
}

// Active reports whether the task is outside the recycle bin.
func (t Task) Active() bool {
	return !t.IsDeleted
}

// Live reports whether the task's priority still follows the clock.
func (t Task) Live() bool {
	return !t.IsDeleted && !t.Completed
}

type Category string

const CategoryWork Category = "Work"
const CategoryAssignment Category = "Assignment"
const CategoryPersonal Category = "Personal"
const CategoryOther Category = "Other"

func Categories() []Category {
	return []Category{CategoryWork, CategoryAssignment, CategoryPersonal, CategoryOther}
}

func (c Category) IsValid() bool {
	for _, valid := range Categories() {
		if c == valid {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Priority string

const PriorityUrgent Priority = "Urgent"
const PriorityHigh Priority = "High"
const PriorityMedium Priority = "Medium"
const PriorityLow Priority = "Low"

// Priorities returns the tiers from most to least pressing.
func Priorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) IsValid() bool {
	for _, valid := range Priorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank orders priorities, 0 being the most pressing.
func (p Priority) Rank() int {
	for i, valid := range Priorities() {
		if p == valid {
			return i
		}
	}
	return len(Priorities())
}
