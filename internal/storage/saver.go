package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/service"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries   = 4
	defaultFlushTimeout = 5 * time.Second
)

// Saver persists the collection after every committed change. Changes are
// coalesced: only the newest snapshot waiting to be written is kept. When a
// save keeps failing the session continues in memory only.
type Saver struct {
	persister    Persister
	newBackOff   func() backoff.BackOff
	flushTimeout time.Duration

	mtx     sync.Mutex
	pending []task.Record
	seq     uint64
	dirty   bool

	// serializes writes between Run and Flush
	writeMtx sync.Mutex

	wake       chan struct{}
	memoryOnly atomic.Bool
}

type SaverOption func(*Saver)

// WithBackOff sets the retry policy used for each save.
func WithBackOff(newBackOff func() backoff.BackOff) SaverOption {
	return func(s *Saver) {
		if newBackOff != nil {
			s.newBackOff = newBackOff
		}
	}
}

// WithFlushTimeout bounds the final save made when Run stops.
func WithFlushTimeout(d time.Duration) SaverOption {
	return func(s *Saver) {
		if d > 0 {
			s.flushTimeout = d
		}
	}
}

func NewSaver(p Persister, opts ...SaverOption) *Saver {
	s := &Saver{
		persister:    p,
		flushTimeout: defaultFlushTimeout,
		wake:         make(chan struct{}, 1),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return backoff.WithMaxRetries(b, defaultMaxRetries)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange is a service.Listener. It never blocks on I/O.
func (s *Saver) OnChange(c service.Change) {
	if s.memoryOnly.Load() {
		return
	}

	s.mtx.Lock()
	if c.Seq < s.seq {
		s.mtx.Unlock()
		return
	}
	s.pending = task.ToRecords(c.Tasks)
	s.seq = c.Seq
	s.dirty = true
	s.mtx.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// MemoryOnly reports whether saving has been given up for this session.
func (s *Saver) MemoryOnly() bool {
	return s.memoryOnly.Load()
}

// DisablePersistence switches the session to memory only.
func (s *Saver) DisablePersistence(cause error) {
	if s.memoryOnly.Swap(true) {
		return
	}
	s.mtx.Lock()
	s.pending = nil
	s.dirty = false
	s.mtx.Unlock()

	logger.Warn("Storage: Continuing in memory only, changes will not be saved",
		zap.Error(service.NewPersistenceError("save", cause)))
}

// Run writes pending snapshots until ctx is done, then makes one last
// bounded attempt to write whatever is still pending.
func (s *Saver) Run(ctx context.Context) error {
	logger.Info("Storage: Saver started")
	for {
		select {
		case <-s.wake:
			if ctx.Err() == nil {
				s.flush(ctx)
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flushTimeout)
			defer cancel()
			s.flush(flushCtx)
			logger.Info("Storage: Saver stopped")
			return nil
		}
	}
}

// Flush writes the pending snapshot, if any, before returning.
func (s *Saver) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *Saver) flush(ctx context.Context) error {
	s.writeMtx.Lock()
	defer s.writeMtx.Unlock()

	s.mtx.Lock()
	if !s.dirty || s.memoryOnly.Load() {
		s.mtx.Unlock()
		return nil
	}
	records := s.pending
	seq := s.seq
	s.dirty = false
	s.mtx.Unlock()

	start := time.Now()
	attempts := 0
	operation := func() error {
		attempts++
		return s.persister.Save(ctx, records)
	}
	notify := func(err error, wait time.Duration) {
		logger.Debug("Storage: Save failed, retrying",
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(s.newBackOff(), ctx), notify)
	if err != nil && ctx.Err() != nil {
		s.requeue(records, seq)
		logger.Debug("Storage: Save interrupted, snapshot kept pending",
			zap.Uint64("seq", seq),
			zap.Error(err))
		return service.NewPersistenceError("save", err)
	}
	if err != nil {
		s.DisablePersistence(err)
		return service.NewPersistenceError("save", err)
	}

	logger.Debug("Storage: Tasks saved",
		zap.Uint64("seq", seq),
		zap.Int("count", len(records)),
		zap.Int("attempts", attempts),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// requeue puts back a snapshot whose save was cut short, unless a newer one
// has arrived in the meantime.
func (s *Saver) requeue(records []task.Record, seq uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.dirty {
		return
	}
	s.pending = records
	s.seq = seq
	s.dirty = true
}
