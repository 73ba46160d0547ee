package cli

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leasekit/pkg/gatekeeper"
	"github.com/dmitrymomot/leasekit/pkg/logger"
	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
)

func newTestRouter(t *testing.T, upstream http.Handler) http.Handler {
	t.Helper()

	store := ratelimiter.NewMemoryStore()
	t.Cleanup(store.Close)

	cfg := gatekeeper.DefaultConfig()
	cfg.SiteDomain = "example.com"
	gk, err := gatekeeper.NewFromConfig(cfg, store, gatekeeper.WithLogger(logger.Noop()))
	require.NoError(t, err)

	return newRouter(gk, upstream, logger.Noop())
}

func TestRouter(t *testing.T) {
	t.Parallel()

	var hits int
	router := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("upstream"))
	}))

	t.Run("health probe bypasses the gatekeeper", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		r.Header.Set("User-Agent", "python-requests/2.31")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ALIVE", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("Cache-Control"))
	})

	t.Run("blocked bot never reaches upstream", func(t *testing.T) {
		before := hits
		r := httptest.NewRequest(http.MethodGet, "/listings", nil)
		r.Header.Set("User-Agent", "python-requests/2.31")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, before, hits)
	})

	t.Run("browser request is forwarded and decorated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/listings", nil)
		r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Safari/605.1.15")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "upstream", w.Body.String())
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})
}

func TestProxy(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream-Path", r.URL.Path)
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		_, _ = w.Write([]byte(r.Header.Get("X-Forwarded-For")))
	}))
	defer backend.Close()

	target, err := url.Parse(backend.URL)
	require.NoError(t, err)

	router := newTestRouter(t, newProxy(target, logger.Noop()))

	r := httptest.NewRequest(http.MethodGet, "/apartments/42", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/126.0")
	r.RemoteAddr = "198.51.100.23:40000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/apartments/42", w.Header().Get("X-Upstream-Path"))
	assert.Equal(t, "198.51.100.23", w.Body.String())
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
