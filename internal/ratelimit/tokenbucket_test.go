package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_StartsFull(t *testing.T) {
	b := NewTokenBucket(10, 5)
	assert.InDelta(t, 10.0, b.Tokens(), 0.01)
}

func TestTokenBucket_TryAcquireDeductsOneToken(t *testing.T) {
	b := NewTokenBucket(10, 5)
	assert.True(t, b.TryAcquire())
	assert.InDelta(t, 9.0, b.Tokens(), 0.01)
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	b := NewTokenBucket(10, 5)
	b.clock = clk
	b.lastAt = clk.now

	for i := 0; i < 10; i++ {
		assert.True(t, b.TryAcquire())
	}
	assert.False(t, b.TryAcquire(), "bucket should be empty")

	clk.Advance(1 * time.Second)
	assert.True(t, b.TryAcquire(), "should refill ~5 tokens after 1s at rate=5")
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	b := NewTokenBucket(10, 100)
	b.clock = clk
	b.lastAt = clk.now

	clk.Advance(10 * time.Second)
	assert.InDelta(t, 10.0, b.Tokens(), 0.01)
}

func TestTokenBucket_ResetDrainsToEmpty(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	b := NewTokenBucket(10, 5)
	b.clock = clk
	b.Reset()
	b.lastAt = clk.now
	assert.Equal(t, 0.0, b.Tokens())
}

func TestTokenBucket_SetRateChangesRefillSpeed(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	b := NewTokenBucket(10, 5)
	b.clock = clk
	b.lastAt = clk.now
	b.Reset()
	b.lastAt = clk.now

	b.SetRate(1)
	clk.Advance(1 * time.Second)
	assert.InDelta(t, 1.0, b.Tokens(), 0.01)
}
