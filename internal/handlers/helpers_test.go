package handlers_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/router"
	"yatube/internal/storage"
	"yatube/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type app struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	cache  *cache.LRUCache
	store  *storage.LocalStorage
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.NewDB(t)
	pageCache, err := cache.NewLRUCache(64)
	require.NoError(t, err)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		Env:           "test",
		SiteName:      "Yatube",
		SiteURL:       "http://testserver",
		SessionSecret: "test-session-secret",
		PostPerPage:   10,
		IndexCacheTTL: 20 * time.Second,
		CacheSize:     64,
		MaxUploadMB:   1,
	}
	engine, err := router.New(router.Deps{
		Config:  cfg,
		DB:      conn,
		Cache:   pageCache,
		Storage: store,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	return &app{t: t, engine: engine, db: conn, cache: pageCache, store: store}
}

// client carries session cookies between requests.
type client struct {
	app     *app
	cookies map[string]*http.Cookie
}

func (a *app) guest() *client {
	return &client{app: a, cookies: map[string]*http.Cookie{}}
}

// login signs in through the real login form.
func (a *app) login(username string) *client {
	a.t.Helper()
	c := a.guest()
	w := c.postForm("/auth/login/", url.Values{"username": {username}, "password": {testutil.Password}})
	require.Equal(a.t, http.StatusFound, w.Code, w.Body.String())
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.app.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// postMultipart sends values plus one file per entry in files (field name -> content).
func (c *client) postMultipart(target string, values url.Values, files map[string][]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(c.app.t, mw.WriteField(k, v))
		}
	}
	for field, data := range files {
		part, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(c.app.t, err)
		_, err = io.Copy(part, bytes.NewReader(data))
		require.NoError(c.app.t, err)
	}
	require.NoError(c.app.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func countCards(body string) int {
	return strings.Count(body, `class="post-card"`)
}
