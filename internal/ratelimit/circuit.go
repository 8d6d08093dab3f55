package ratelimit

import (
	"sync"
	"time"

	"github.com/anivault/anivault/internal/metrics"
	"github.com/anivault/anivault/internal/model"
)

// Default tunables per the rate-limit runtime design.
const (
	DefaultCapacity     = 35.0
	DefaultRate         = 35.0
	DefaultConcurrency  = 4
	DefaultSemTimeout   = 30 * time.Second
	DefaultWindow       = 30 * time.Second
	DefaultWindowRecords = 300
	DefaultMinCooldown  = 5 * time.Second
	DefaultMaxCooldown  = 300 * time.Second
)

// Circuit is the five-state FSM guarding the TMDB client. The sliding-window
// transitions (Normal→Throttle, Throttle→Sleep/HalfOpen) require their
// trigger condition to hold on two successive evaluations (hysteresis) before
// they are confirmed; HalfOpen outcomes, the Sleep wake timer and the manual
// transitions take effect immediately.
type Circuit struct {
	mu sync.Mutex

	name  string
	state model.CircuitState
	clock clock

	bucket *TokenBucket
	sem    *Semaphore
	window *slidingWindow

	baseRate     float64
	baseCapacity float64
	baseSem      int

	wakeAt time.Time

	pendingTrigger string
	pendingState   model.CircuitState
	pendingCount   int

	halfOpenSuccesses int
	cooldown          time.Duration
}

// NewCircuit builds a Circuit wired to the given bucket and semaphore.
func NewCircuit(name string, bucket *TokenBucket, sem *Semaphore) *Circuit {
	c := &Circuit{
		name:         name,
		state:        model.CircuitNormal,
		clock:        realClock{},
		bucket:       bucket,
		sem:          sem,
		window:       newSlidingWindow(DefaultWindow, DefaultWindowRecords),
		baseRate:     DefaultRate,
		baseCapacity: DefaultCapacity,
		baseSem:      DefaultConcurrency,
		cooldown:     DefaultMinCooldown,
	}
	metrics.SetCircuitBreakerState(name, string(c.state))
	return c
}

// State returns the current state.
func (c *Circuit) State() model.CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Allow reports whether a request may proceed given the current state. Sleep
// and CacheOnly block all outbound calls.
func (c *Circuit) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == model.CircuitSleep && !c.wakeAt.IsZero() && !c.clock.Now().Before(c.wakeAt) {
		c.transition(model.CircuitHalfOpen, "wake_timer")
	}
	return c.state != model.CircuitSleep && c.state != model.CircuitCacheOnly
}

// RecordOutcome updates the sliding window and re-evaluates the FSM.
func (c *Circuit) RecordOutcome(statusCode int, networkErr bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := classify(statusCode, networkErr)
	c.window.add(kind)

	if c.state == model.CircuitHalfOpen {
		switch kind {
		case outcomeOK:
			c.halfOpenSuccesses++
			if c.halfOpenSuccesses >= 5 {
				c.transition(model.CircuitNormal, "half_open_recovered")
			}
		case outcomeRateLimited, outcomeServerError, outcomeNetworkError:
			c.cooldown *= 2
			if c.cooldown > DefaultMaxCooldown {
				c.cooldown = DefaultMaxCooldown
			}
			c.enterSleep()
		}
		return
	}

	c.evaluate()
}

func classify(statusCode int, networkErr bool) outcomeKind {
	switch {
	case networkErr:
		return outcomeNetworkError
	case statusCode == 429:
		return outcomeRateLimited
	case statusCode >= 500:
		return outcomeServerError
	case statusCode >= 400:
		return outcomeClientError
	default:
		return outcomeOK
	}
}

// evaluate checks trigger conditions for the current state and requires two
// consecutive confirmations (hysteresis) before transitioning.
func (c *Circuit) evaluate() {
	ratio, total := c.window.errorRatio()
	consec429 := c.window.consecutive429()

	switch c.state {
	case model.CircuitNormal:
		if total > 0 && (ratio >= 0.20 || consec429 >= 3) {
			c.confirmAndTransition(model.CircuitThrottle, "error_ratio_or_429")
		} else {
			c.resetPending()
		}
	case model.CircuitThrottle:
		successRun := c.window.trailingSuccessRun()
		if consec429 >= 5 || ratio >= 0.60 {
			c.confirmAndTransition(model.CircuitSleep, "sustained_failure")
		} else if successRun >= 10 && ratio < 0.10 {
			c.confirmAndTransition(model.CircuitHalfOpen, "recovering")
		} else {
			c.resetPending()
		}
	default:
		c.resetPending()
	}
}

func (c *Circuit) resetPending() {
	c.pendingTrigger = ""
	c.pendingCount = 0
}

// confirmAndTransition implements the two-successive-evaluations hysteresis:
// the first time a trigger fires it is recorded as pending; only on the
// second consecutive occurrence does the transition happen.
func (c *Circuit) confirmAndTransition(to model.CircuitState, trigger string) {
	if c.pendingTrigger == trigger && c.pendingState == to {
		c.pendingCount++
	} else {
		c.pendingTrigger = trigger
		c.pendingState = to
		c.pendingCount = 1
	}
	if c.pendingCount >= 2 {
		c.transition(to, trigger)
		c.resetPending()
	}
}

func (c *Circuit) enterSleep() {
	c.transition(model.CircuitSleep, "half_open_failure")
}

func (c *Circuit) transition(to model.CircuitState, trigger string) {
	if c.state == to {
		return
	}
	from := c.state
	c.state = to

	switch to {
	case model.CircuitNormal:
		c.bucket.SetRate(c.baseRate)
		c.sem.Resize(c.baseSem)
		c.cooldown = DefaultMinCooldown
		c.window.reset()
	case model.CircuitThrottle:
		rate := c.baseRate / 2
		if rate < 5 {
			rate = 5
		}
		c.bucket.SetRate(rate)
		semSize := c.baseSem / 2
		if semSize < 1 {
			semSize = 1
		}
		c.sem.Resize(semSize)
	case model.CircuitSleep:
		c.wakeAt = c.clock.Now().Add(c.cooldown)
		c.bucket.Reset()
	case model.CircuitHalfOpen:
		rate := c.bucket.Tokens()
		if rate > 3 {
			rate = 3
		}
		c.bucket.SetRate(rate)
		c.sem.Resize(1)
		c.halfOpenSuccesses = 0
	case model.CircuitCacheOnly:
		c.bucket.SetRate(0)
	}

	metrics.SetCircuitBreakerState(c.name, string(to))
	metrics.RecordCircuitBreakerTrip(c.name, trigger)
	_ = from
}

// ForceSleep manually sleeps the circuit until the given time or the end of
// the current cooldown, whichever is later, used after parsing a TMDB
// Retry-After header on a 429.
func (c *Circuit) ForceSleep(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(model.CircuitSleep, "retry_after")
	if until.After(c.wakeAt) {
		c.wakeAt = until
	}
}

// EnterCacheOnly manually forces cache-only mode; exited via ExitCacheOnly.
func (c *Circuit) EnterCacheOnly() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(model.CircuitCacheOnly, "manual")
}

// ExitCacheOnly returns from CacheOnly to Sleep, from which the normal wake
// timer resumes the HalfOpen probe.
func (c *Circuit) ExitCacheOnly() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != model.CircuitCacheOnly {
		return
	}
	c.wakeAt = c.clock.Now().Add(c.cooldown)
	c.transition(model.CircuitSleep, "cache_only_exit")
}

// Snapshot returns a diagnostics view of the circuit's current state.
func (c *Circuit) Snapshot() model.RateLimitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	ratio, total := c.window.errorRatio()
	return model.RateLimitState{
		Tokens:          c.bucket.Tokens(),
		Capacity:        c.baseCapacity,
		RefillRate:      c.baseRate,
		State:           c.state,
		WindowErrors:    int(ratio * float64(total)),
		WindowTotal:     total,
		ConsecutiveFail: c.window.consecutive429(),
		RetryAfter:      c.wakeAt,
	}
}
