package model

import "time"

// CacheEntry is one row of the content-addressed TMDB response cache.
type CacheEntry struct {
	CacheKey    string
	KeyHash     string
	Category    string
	Subcategory string
	Payload     []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
	HitCount    int64
	PayloadSize int64
}

// Expired reports whether the entry is expired as of now. The boundary is
// inclusive: an entry expires exactly at ExpiresAt.
func (c CacheEntry) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// CacheStats summarizes cache store activity for diagnostics.
type CacheStats struct {
	Entries      int64
	Hits         int64
	Misses       int64
	ExpiredCount int64
	TotalSize    int64
}
