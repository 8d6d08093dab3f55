package tmdbclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/anivault/anivault/internal/cache"
	sqlitex "github.com/anivault/anivault/internal/persistence/sqlite"
	"github.com/anivault/anivault/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), sqlitex.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rt := ratelimit.NewRuntime("test-tmdb")
	c := New(srv.URL, "test-key", store, rt)
	return c, srv
}

func TestSearchTV_CachesResponseAcrossCalls(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	ctx := context.Background()
	_, err := c.SearchTV(ctx, "my show", 2020, "en-US")
	require.NoError(t, err)
	_, err = c.SearchTV(ctx, "my show", 2020, "en-US")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call should be served from cache")
}

func TestDetails_PropagatesClientErrorOnNon429FourXX(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message":"not found"}`))
	})

	_, err := c.Details(context.Background(), "tv", 12345)
	require.Error(t, err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 404, clientErr.Status)
}
