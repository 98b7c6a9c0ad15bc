package core

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimitStore is a fixed-window RateLimitStore held in process
// memory. Each API instance keeps its own counters.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type rateWindow struct {
	start  time.Time
	length time.Duration
	count  int
}

var _ RateLimitStore = (*MemoryRateLimitStore)(nil)

// NewMemoryRateLimitStore creates a store. When sweepEvery is positive a
// background goroutine drops expired windows at that interval until Close.
func NewMemoryRateLimitStore(sweepEvery time.Duration) *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

// IncrementAndCheck counts one request for key in its current window.
func (s *MemoryRateLimitStore) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.start.Add(w.length)) {
		w = &rateWindow{start: now, length: window}
		s.windows[key] = w
	}
	w.count++

	return RateLimitResult{
		Allowed:   w.count <= limit,
		Remaining: max(limit-w.count, 0),
		ResetAt:   w.start.Add(w.length),
	}, nil
}

// Sweep removes windows that have ended and returns how many were dropped.
func (s *MemoryRateLimitStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, w := range s.windows {
		if !now.Before(w.start.Add(w.length)) {
			delete(s.windows, key)
			dropped++
		}
	}
	return dropped
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (s *MemoryRateLimitStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryRateLimitStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}
