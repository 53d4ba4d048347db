package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/colocetudiant/internal/config"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResponseCache(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 20,
	}, rdb)

	calls := 0
	fail := true
	e := echo.New()
	e.GET("/v1/annonces", func(c echo.Context) error {
		calls++
		if fail {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_not_initialized"})
		}
		return c.JSON(http.StatusOK, []string{"a"})
	}, rc.Middleware())

	// errors are never cached
	rec := do(e, http.MethodGet, "/v1/annonces", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	fail = false
	rec = do(e, http.MethodGet, "/v1/annonces", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = do(e, http.MethodGet, "/v1/annonces", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `["a"]`, rec.Body.String())
	assert.Equal(t, 2, calls)

	// a different query is a different entry
	do(e, http.MethodGet, "/v1/annonces?ville=Lyon", nil)
	assert.Equal(t, 3, calls)

	require.NoError(t, rc.Purge(context.Background()))
	rec = do(e, http.MethodGet, "/v1/annonces", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 4, calls)
}

func TestResponseCacheKeysOnConcretePath(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 20,
	}, rdb)
	e := echo.New()
	e.GET("/v1/annonces/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	}, rc.Middleware())

	rec := do(e, http.MethodGet, "/v1/annonces/1", nil)
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/v1/annonces/2", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"2"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/v1/annonces/1", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	assert.NoError(t, rc.Purge(context.Background()))

	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, rc.Middleware())
	rec := do(e, http.MethodGet, "/", nil)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRateLimit(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "test:rl",
	}
	e := echo.New()
	e.POST("/v1/annonces/description", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(cfg, rdb, nil))

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/v1/annonces/description", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(e, http.MethodPost, "/v1/annonces/description", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(cfg, rdb, nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", nil).Code)
	}
}

type users map[string]model.User

func (u users) GetByID(_ context.Context, id string) (*model.User, error) {
	if v, ok := u[id]; ok {
		return &v, nil
	}
	return nil, nil
}

type brokenUsers struct{}

func (brokenUsers) GetByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("connection refused")
}

func TestAuthRestoreFailure(t *testing.T) {
	bob := model.User{ID: "u2", Username: "bob", Role: model.RoleUser}
	mgr := session.NewManager(session.NewMemoryStore(), brokenUsers{}, time.Hour, nil)
	auth := Auth{Secret: "s3cret", Sessions: mgr}

	sid, _, err := mgr.Login(context.Background(), bob)
	require.NoError(t, err)
	tok, err := utils.NewAccessToken("s3cret", "u2", "user", sid, time.Hour)
	require.NoError(t, err)
	bearer := http.Header{"Authorization": {"Bearer " + tok.Token}}

	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.JSON(http.StatusOK, State(c)) }, auth.Optional())
	e.GET("/private", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, auth.Required())

	rec := do(e, http.MethodGet, "/me", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null,"is_authenticated":false}`, rec.Body.String())

	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodGet, "/private", bearer).Code)
}

func TestAuth(t *testing.T) {
	ctx := context.Background()
	bob := model.User{ID: "u2", Username: "bob", Role: model.RoleUser}
	known := users{"u2": bob}
	mgr := session.NewManager(session.NewMemoryStore(), known, time.Hour, nil)
	auth := Auth{Secret: "s3cret", Sessions: mgr}

	sid, _, err := mgr.Login(ctx, bob)
	require.NoError(t, err)
	tok, err := utils.NewAccessToken("s3cret", "u2", "user", sid, time.Hour)
	require.NoError(t, err)
	bearer := http.Header{"Authorization": {"Bearer " + tok.Token}}

	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.JSON(http.StatusOK, State(c)) }, auth.Optional())
	e.GET("/private", func(c echo.Context) error { return c.String(http.StatusOK, CurrentUser(c).Username) }, auth.Required())
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, auth.Required(), RequireRole("admin"))

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/private", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/private", http.Header{"Authorization": {"Bearer junk"}}).Code)

	rec := do(e, http.MethodGet, "/private", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/admin", bearer).Code)

	rec = do(e, http.MethodGet, "/me", nil)
	assert.JSONEq(t, `{"user":null,"is_authenticated":false}`, rec.Body.String())

	// promoting the stored user takes effect without a new token
	bob.Role = model.RoleAdmin
	known["u2"] = bob
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/admin", bearer).Code)

	require.NoError(t, mgr.Logout(ctx, sid))
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/private", bearer).Code)
	rec = do(e, http.MethodGet, "/me", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_authenticated":false`)
}
