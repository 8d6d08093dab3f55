package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindow_ErrorRatioExcludesClientErrors(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	w := newSlidingWindow(30*time.Second, 300)
	w.clock = clk

	w.add(outcomeOK)
	w.add(outcomeClientError)
	w.add(outcomeClientError)
	w.add(outcomeServerError)

	ratio, total := w.errorRatio()
	assert.Equal(t, 2, total) // only OK + 5xx count
	assert.InDelta(t, 0.5, ratio, 0.01)
}

func TestSlidingWindow_PrunesOldRecordsByDuration(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	w := newSlidingWindow(10*time.Second, 300)
	w.clock = clk

	w.add(outcomeServerError)
	clk.Advance(11 * time.Second)
	w.add(outcomeOK)

	ratio, total := w.errorRatio()
	assert.Equal(t, 1, total)
	assert.Equal(t, 0.0, ratio)
}

func TestSlidingWindow_BoundedByMaxRecords(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	w := newSlidingWindow(time.Hour, 5)
	w.clock = clk

	for i := 0; i < 10; i++ {
		w.add(outcomeOK)
	}
	assert.Len(t, w.records, 5)
}

func TestSlidingWindow_Consecutive429(t *testing.T) {
	clk := &fakeClock{now: time.Now()}
	w := newSlidingWindow(time.Hour, 300)
	w.clock = clk

	w.add(outcomeOK)
	w.add(outcomeRateLimited)
	w.add(outcomeRateLimited)
	assert.Equal(t, 2, w.consecutive429())
}
