// Package priority derives a task's priority tier from its deadline.
package priority

import (
	"time"

	"tasklist/internal/models/task"
)

const (
	HighWithinDays   = 3
	MediumWithinDays = 7
)

// Classify maps a deadline to a priority tier as seen at now. Days are
// counted between calendar days in now's location, so the tier only changes
// at midnight. A zero deadline is Low.
func Classify(deadline task.Date, now time.Time) task.Priority {
	if deadline.IsZero() {
		return task.PriorityLow
	}

	diffDays := task.DateOf(now).DaysUntil(deadline)
	switch {
	case diffDays < 1:
		return task.PriorityUrgent
	case diffDays <= HighWithinDays:
		return task.PriorityHigh
	case diffDays <= MediumWithinDays:
		return task.PriorityMedium
	default:
		return task.PriorityLow
	}
}
