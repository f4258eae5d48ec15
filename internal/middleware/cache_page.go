package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yatube/internal/cache"
	"yatube/internal/logging"

	"github.com/gin-gonic/gin"
)

const headerCache = "X-Cache"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCacheKey identifies a cached response: the request URI plus the viewer,
// so pages rendered for one user are never served to another.
func PageCacheKey(c *gin.Context) string {
	return fmt.Sprintf("%s:%d", c.Request.URL.RequestURI(), ViewerID(c))
}

// CachePage serves GET responses from store and stores successful ones for ttl.
// Writes elsewhere do not invalidate entries; they expire or are cleared.
func CachePage(store cache.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || ttl <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := PageCacheKey(c)

		page, err := store.Get(ctx, key)
		if err == nil {
			PageCacheLookups.WithLabelValues("hit").Inc()
			c.Header(headerCache, "HIT")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("page cache read failed")
		}
		PageCacheLookups.WithLabelValues("miss").Inc()

		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Header(headerCache, "MISS")
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		entry := &cache.Page{
			Status:      http.StatusOK,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		if err := store.Set(ctx, key, entry, ttl); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("page cache write failed")
		}
	}
}
