package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/anivault/anivault/internal/apperr"
	sqlitex "github.com/anivault/anivault/internal/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(dbPath, sqlitex.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// testHash returns a 64-character hex key hash, the length the schema
// requires of key_hash.
func testHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"title":"My Show"}`)
	require.NoError(t, s.Put(ctx, "key1", testHash("key1"), "search", "tv", payload, time.Hour))

	got, ok, err := s.Get(ctx, "key1", "search")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, string(payload), string(got))
}

func TestGet_MissingReturnsNotOK(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get(context.Background(), "nope", "search")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_ExpiredEntryTreatedAsMiss(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "key1", testHash("key1"), "search", "tv", json.RawMessage(`{}`), -time.Second))

	_, ok, err := s.Get(ctx, "key1", "search")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPut_RejectsCredentialLeak(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"api_key":"aaaaaaaaaaaaaaaaaaaaaaaa"}`)
	err := s.Put(ctx, "leaky", "hashleaky", "search", "", payload, time.Hour)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPolicyViolation))

	_, ok, getErr := s.Get(ctx, "leaky", "search")
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestPurgeExpired_RemovesOnlyExpiredEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "expired", testHash("expired"), "search", "", json.RawMessage(`{}`), -time.Second))
	require.NoError(t, s.Put(ctx, "fresh", testHash("fresh"), "search", "", json.RawMessage(`{}`), time.Hour))

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := s.Get(ctx, "fresh", "search")
	assert.True(t, ok)
}

func TestStats_ReflectsEntryCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", testHash("a"), "search", "", json.RawMessage(`{}`), time.Hour))
	require.NoError(t, s.Put(ctx, "b", testHash("b"), "search", "", json.RawMessage(`{}`), time.Hour))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Entries)
}

func TestStats_CountsMissesAndExpiredEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "fresh", testHash("fresh"), "search", "", json.RawMessage(`{}`), time.Hour))
	require.NoError(t, s.Put(ctx, "stale", testHash("stale"), "search", "", json.RawMessage(`{}`), -time.Second))

	_, ok, err := s.Get(ctx, "fresh", "search")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.Get(ctx, "does-not-exist", "search")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get(ctx, "stale", "search")
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.ExpiredCount)
}
