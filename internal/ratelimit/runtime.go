package ratelimit

import (
	"context"
	"time"

	"github.com/anivault/anivault/internal/apperr"
)

// Runtime is the full rate-limit runtime for one upstream target (TMDB):
// token bucket + semaphore + circuit breaker, composed per the request
// lifecycle in the component design.
type Runtime struct {
	Bucket  *TokenBucket
	Sem     *Semaphore
	Circuit *Circuit

	SemTimeout  time.Duration
	MaxCooldown time.Duration
}

// NewRuntime builds a Runtime with the default tunables.
func NewRuntime(name string) *Runtime {
	bucket := NewTokenBucket(DefaultCapacity, DefaultRate)
	sem := NewSemaphore(DefaultConcurrency)
	return &Runtime{
		Bucket:      bucket,
		Sem:         sem,
		Circuit:     NewCircuit(name, bucket, sem),
		SemTimeout:  DefaultSemTimeout,
		MaxCooldown: DefaultMaxCooldown,
	}
}

// Lease represents one acquired slot; callers must call Release exactly
// once, regardless of outcome.
type Lease struct {
	rt        *Runtime
	semHeld   bool
}

// Acquire runs steps 1-4 of the request lifecycle: state check, semaphore
// acquisition (bounded by SemTimeout or ctx), and token consumption.
func (rt *Runtime) Acquire(ctx context.Context) (*Lease, error) {
	if !rt.Circuit.Allow() {
		state := rt.Circuit.State()
		return nil, apperr.New(apperr.KindBlocked, "rate-limit runtime is blocking outbound calls").
			WithField("state", string(state))
	}

	semCtx, cancel := context.WithTimeout(ctx, rt.SemTimeout)
	defer cancel()
	if err := rt.Sem.Acquire(semCtx); err != nil {
		return nil, apperr.Wrap(apperr.KindBlocked, err, "semaphore acquisition timed out")
	}

	deadline := make(chan time.Time)
	go func() {
		<-semCtx.Done()
		close(deadline)
	}()
	if !rt.Bucket.Acquire(deadline) {
		rt.Sem.Release()
		return nil, apperr.New(apperr.KindBlocked, "token bucket acquisition timed out")
	}

	return &Lease{rt: rt, semHeld: true}, nil
}

// Release unconditionally frees the semaphore slot. Safe to call once.
func (l *Lease) Release() {
	if l == nil || !l.semHeld {
		return
	}
	l.semHeld = false
	l.rt.Sem.Release()
}

// RecordResponse records the outcome of the upstream call in the circuit
// breaker. On a 429 it also empties the token bucket and, when the
// Retry-After header parses, sleeps the circuit (see Circuit.ForceSleep) in
// addition to the sliding-window evaluation. It does not itself wait or back
// off on 429, 5xx or network errors.
func (rt *Runtime) RecordResponse(statusCode int, networkErr bool, retryAfterHeader string) {
	rt.Circuit.RecordOutcome(statusCode, networkErr)

	if statusCode == 429 {
		rt.Bucket.Reset()
		if d, ok := ParseRetryAfter(retryAfterHeader, time.Now(), rt.MaxCooldown); ok {
			rt.Circuit.ForceSleep(time.Now().Add(d))
		}
	}
}
