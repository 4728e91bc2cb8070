package service

import "time"

type Option func(*TaskService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		if now != nil {
			s.now = now
		}
	}
}
