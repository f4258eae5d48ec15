package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestCachePage(t *testing.T) {
	store, err := cache.NewLRUCache(16)
	require.NoError(t, err)

	calls := 0
	r := gin.New()
	r.GET("/", CachePage(store, time.Minute), func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "render %d", calls)
	})

	first := get(r, "/")
	assert.Equal(t, "render 1", first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get(headerCache))

	second := get(r, "/")
	assert.Equal(t, "render 1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get(headerCache))
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))

	assert.Equal(t, "render 2", get(r, "/?page=2").Body.String(), "query string is part of the key")

	require.NoError(t, store.Clear(t.Context()))
	assert.Equal(t, "render 3", get(r, "/").Body.String())
}

func TestCachePageSkipsErrors(t *testing.T) {
	store, err := cache.NewLRUCache(16)
	require.NoError(t, err)

	calls := 0
	r := gin.New()
	r.GET("/", CachePage(store, time.Minute), func(c *gin.Context) {
		calls++
		c.String(http.StatusInternalServerError, "boom")
	})

	get(r, "/")
	get(r, "/")
	assert.Equal(t, 2, calls)
}

func TestCachePageKeysByViewer(t *testing.T) {
	store, err := cache.NewLRUCache(16)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			c.Set(CheckUserKey, &models.User{ID: 7, Username: "leo"})
		}
	})
	r.GET("/", CachePage(store, time.Minute), func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, "hello %s", user.Username)
			return
		}
		c.String(http.StatusOK, "hello guest")
	})

	assert.Equal(t, "hello guest", get(r, "/").Body.String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Test-User", "1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "hello leo", w.Body.String())
}

func TestAuthRequiredRedirectsGuests(t *testing.T) {
	r := gin.New()
	r.GET("/create/", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "form")
	})

	w := get(r, "/create/?x=1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F%3Fx%3D1", w.Header().Get("Location"))
}

func TestMetricsCountsRoutes(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/groups/", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/groups/", "200"))
	get(r, "/groups/")
	get(r, "/missing")
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/groups/", "200")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")), 1.0)
}
