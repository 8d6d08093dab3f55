// Package cache implements the content-addressed, TTL-expiring TMDB
// response cache backed by SQLite in WAL mode.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/model"
	sqlitex "github.com/anivault/anivault/internal/persistence/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cache_key TEXT UNIQUE NOT NULL CHECK(length(cache_key) > 0),
	key_hash TEXT UNIQUE NOT NULL CHECK(length(key_hash) = 64),
	category TEXT NOT NULL,
	subcategory TEXT,
	payload TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME,
	hit_count INTEGER DEFAULT 0,
	last_accessed_at DATETIME,
	payload_size INTEGER
);
CREATE INDEX IF NOT EXISTS idx_cache_key_hash ON cache(key_hash);
CREATE INDEX IF NOT EXISTS idx_cache_category ON cache(category);
CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at);
`

// Store is the persistent, content-addressed cache store.
type Store struct {
	db     *sql.DB
	misses atomic.Int64 // process-local; hits/entries/size are derived from the table, misses have no row to attribute to
}

// Open opens (creating if necessary) the SQLite-backed cache at path,
// restricting file permissions to the owner.
func Open(path string, cfg sqlitex.Config) (*Store, error) {
	db, err := sqlitex.Open(path, cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "open cache database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.KindStorageFailure, err, "create cache schema")
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Chmod(p, 0o600); err != nil && !os.IsNotExist(err) {
			_ = db.Close()
			return nil, apperr.Wrap(apperr.KindStorageFailure, err, "restrict cache file permissions")
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var credentialKeyRe = regexp.MustCompile(`(?i)api[_-]?key|token|password`)
var credentialValueRe = regexp.MustCompile(`^[A-Za-z0-9]{24,}$`)

// looksLikeCredentialLeak walks a JSON payload looking for a key matching
// a credential-like name whose value matches a high-entropy token shape.
func looksLikeCredentialLeak(raw json.RawMessage) bool {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return false
	}
	return scanForCredential(generic)
}

func scanForCredential(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if credentialKeyRe.MatchString(k) {
				if s, ok := val.(string); ok && credentialValueRe.MatchString(s) {
					return true
				}
			}
			if scanForCredential(val) {
				return true
			}
		}
	case []any:
		for _, el := range t {
			if scanForCredential(el) {
				return true
			}
		}
	}
	return false
}

// Put inserts or replaces an entry. It rejects payloads that look like a
// leaked credential with a PolicyViolation error.
func (s *Store) Put(ctx context.Context, cacheKey, keyHash, category, subcategory string, payload json.RawMessage, ttl time.Duration) error {
	if looksLikeCredentialLeak(payload) {
		return apperr.New(apperr.KindPolicyViolation, "payload contains a credential-like field").
			WithField("cache_key", cacheKey)
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache (cache_key, key_hash, category, subcategory, payload, created_at, expires_at, hit_count, last_accessed_at, payload_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			key_hash = excluded.key_hash,
			category = excluded.category,
			subcategory = excluded.subcategory,
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			payload_size = excluded.payload_size
	`, cacheKey, keyHash, category, subcategory, string(payload), now, expires, len(payload))
	if err != nil {
		return apperr.Wrap(apperr.KindStorageFailure, err, "write cache entry")
	}
	return nil
}

// Get returns the payload for cacheKey within category if present and
// unexpired. It increments the hit count and updates last_accessed_at.
func (s *Store) Get(ctx context.Context, cacheKey, category string) (json.RawMessage, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload, expires_at FROM cache WHERE cache_key = ? AND category = ?
	`, cacheKey, category)

	var payload string
	var expiresAt sql.NullTime
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			s.misses.Add(1)
			return nil, false, nil
		}
		return nil, false, apperr.Wrap(apperr.KindStorageFailure, err, "read cache entry")
	}

	now := time.Now().UTC()
	if expiresAt.Valid && !now.Before(expiresAt.Time) {
		s.misses.Add(1)
		return nil, false, nil
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE cache SET hit_count = hit_count + 1, last_accessed_at = ? WHERE cache_key = ?
	`, now, cacheKey); err != nil {
		return nil, false, apperr.Wrap(apperr.KindStorageFailure, err, "update cache hit count")
	}

	return json.RawMessage(payload), true, nil
}

// PurgeExpired deletes all entries whose expiry is in the past, returning
// the count removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, apperr.Wrap(apperr.KindStorageFailure, err, "purge expired cache entries")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(apperr.KindStorageFailure, err, "count purged cache entries")
	}
	return n, nil
}

// Stats returns aggregate cache store statistics.
func (s *Store) Stats(ctx context.Context) (model.CacheStats, error) {
	var stats model.CacheStats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(payload_size), 0), COALESCE(SUM(hit_count), 0)
		FROM cache
	`)
	var hits int64
	if err := row.Scan(&stats.Entries, &stats.TotalSize, &hits); err != nil {
		return stats, apperr.Wrap(apperr.KindStorageFailure, err, "read cache stats")
	}
	stats.Hits = hits
	stats.Misses = s.misses.Load()

	expiredRow := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cache WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, time.Now().UTC())
	if err := expiredRow.Scan(&stats.ExpiredCount); err != nil {
		return stats, apperr.Wrap(apperr.KindStorageFailure, err, "read expired cache count")
	}

	return stats, nil
}

// FromModel converts a model.CacheEntry into arguments for Put, useful when
// replaying journal or test fixtures.
func FromModel(e model.CacheEntry) (cacheKey, keyHash, category, subcategory string, payload json.RawMessage, ttl time.Duration) {
	return e.CacheKey, e.KeyHash, e.Category, e.Subcategory, e.Payload, time.Until(e.ExpiresAt)
}
