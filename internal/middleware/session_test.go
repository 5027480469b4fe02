package middleware_test

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/testhelpers"
)

func TestSessionRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)
	users := service.NewUserService(db)
	sm := middleware.NewSessionManager("test-secret", users)

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	r := gin.New()
	r.Use(sm.Resolve())
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, sm.Login(c, user))
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if u, ok := middleware.UserFrom(c); ok {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.Status(http.StatusUnauthorized)
	})
	r.POST("/logout", func(c *gin.Context) {
		require.NoError(t, sm.Logout(c))
		c.Status(http.StatusNoContent)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(ts.URL + "/whoami")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.Post(ts.URL+"/login", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/whoami")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post(ts.URL+"/logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/whoami")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestResolveClearsStaleSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)
	users := service.NewUserService(db)
	sm := middleware.NewSessionManager("test-secret", users)

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	r := gin.New()
	r.Use(sm.Resolve())
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, sm.Login(c, user))
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if _, ok := middleware.UserFrom(c); ok {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Post(ts.URL+"/login", "", nil)
	require.NoError(t, err)
	resp.Body.Close()

	// The account disappears while the cookie is still valid.
	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	resp, err = client.Get(ts.URL + "/whoami")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := middleware.NewMetrics()

	r := gin.New()
	r.Use(metrics.Count())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	for _, path := range []string{"/ok", "/ok", "/bad"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SuccessfulRequests.WithLabelValues("/ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BadRequests.WithLabelValues("/bad")))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNoCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.NoCache())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}
