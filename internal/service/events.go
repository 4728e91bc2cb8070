package service

import "tasklist/internal/models/task"

type Op string

const (
	OpLoad       Op = "load"
	OpAdd        Op = "add"
	OpEdit       Op = "edit"
	OpComplete   Op = "complete"
	OpSoftDelete Op = "soft_delete"
	OpRestore    Op = "restore"
	OpPurge      Op = "purge"
	OpReorder    Op = "reorder"
	OpRefresh    Op = "refresh_priority"
)

// Change describes one committed mutation. Tasks is a copy of the whole
// collection, in authoritative order, as it stood right after the mutation.
type Change struct {
	Seq    uint64
	Op     Op
	TaskID string
	Tasks  []task.Task
}

// Listener receives changes synchronously, in commit order, while the
// writer lock is held. It must not call back into mutating methods.
type Listener func(Change)

type subscription struct {
	id uint64
	fn Listener
}

// Subscribe registers fn for every future change and returns a func that
// removes it.
func (s *TaskService) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMtx.Lock()
	defer s.listenersMtx.Unlock()

	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.listenersMtx.Lock()
		defer s.listenersMtx.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *TaskService) notify(change Change) {
	s.listenersMtx.Lock()
	subs := append([]subscription(nil), s.listeners...)
	s.listenersMtx.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}
