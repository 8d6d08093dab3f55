package ratelimit

import (
	"context"
	"sync"
)

// Semaphore is a bounded concurrency gate whose limit can be resized at
// runtime (the circuit breaker shrinks it in Throttle/HalfOpen).
type Semaphore struct {
	mu    sync.Mutex
	slots chan struct{}
	limit int
}

// NewSemaphore creates a semaphore with the given initial limit.
func NewSemaphore(limit int) *Semaphore {
	if limit < 1 {
		limit = 1
	}
	return &Semaphore{
		slots: make(chan struct{}, limit),
		limit: limit,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot. Safe to call even if Acquire never succeeded only
// when paired correctly by the caller; callers must release exactly once
// per successful Acquire.
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// Resize changes the limit. Existing holders are unaffected; the new limit
// takes effect for subsequent acquisitions. Shrinking does not evict
// current holders, it only reduces future concurrency.
func (s *Semaphore) Resize(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < 1 {
		limit = 1
	}
	if limit == s.limit {
		return
	}
	newSlots := make(chan struct{}, limit)
	occupied := len(s.slots)
	for i := 0; i < occupied && i < limit; i++ {
		newSlots <- struct{}{}
	}
	s.slots = newSlots
	s.limit = limit
}

// Limit returns the current configured limit.
func (s *Semaphore) Limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}
