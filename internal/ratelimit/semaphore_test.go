package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_LimitsConcurrency(t *testing.T) {
	s := NewSemaphore(2)
	ctx := context.Background()
	require.NoError(t, s.Acquire(ctx))
	require.NoError(t, s.Acquire(ctx))

	ctxTimeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := s.Acquire(ctxTimeout)
	assert.Error(t, err, "third acquisition should block until a slot frees")
}

func TestSemaphore_ReleaseFreesASlot(t *testing.T) {
	s := NewSemaphore(1)
	ctx := context.Background()
	require.NoError(t, s.Acquire(ctx))
	s.Release()
	require.NoError(t, s.Acquire(ctx))
}

func TestSemaphore_ResizeChangesLimit(t *testing.T) {
	s := NewSemaphore(4)
	s.Resize(1)
	assert.Equal(t, 1, s.Limit())
}
