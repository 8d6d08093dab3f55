package ratelimit

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// ParseRetryAfter parses the Retry-After header (numeric seconds or an
// HTTP-date) relative to now, applying a clock-skew guard: any computed
// delay below 1s is raised to 1s, and any delay above maxCooldown is capped.
func ParseRetryAfter(header string, now time.Time, maxCooldown time.Duration) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return clampDelay(time.Duration(secs)*time.Second, maxCooldown), true
	}
	if t, err := http.ParseTime(header); err == nil {
		return clampDelay(t.Sub(now), maxCooldown), true
	}
	return 0, false
}

func clampDelay(d, maxCooldown time.Duration) time.Duration {
	if d < time.Second {
		d = time.Second
	}
	if d > maxCooldown {
		d = maxCooldown
	}
	return d
}

// FullJitterBackoff returns a randomized delay for an attempt (1-indexed)
// when no Retry-After header was supplied: uniform(0, min(30, 1.5*2^(n-1))).
func FullJitterBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	capSec := math.Min(30, 1.5*math.Pow(2, float64(attempt-1)))
	delay := rand.Float64() * capSec
	return time.Duration(delay * float64(time.Second))
}
