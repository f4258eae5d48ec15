package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"yatube/internal/services"
	"yatube/internal/storage"

	"github.com/gin-gonic/gin"
)

const hotlinkSVG = `<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%" height="100%" fill="#f8f9fa"/>
  <text x="50%" y="50%" font-family="Arial" font-size="14" fill="#6c757d" text-anchor="middle">
    Изображение доступно только на сайте
  </text>
</svg>`

const presignTTL = 15 * time.Minute

// MediaHandler serves uploaded post images.
type MediaHandler struct {
	store storage.Storage
}

func NewMediaHandler(store storage.Storage) *MediaHandler {
	return &MediaHandler{store: store}
}

// Serve streams /media/<key> from storage, or redirects to a presigned URL
// when the backend supports it.
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, services.ImagePrefix) || strings.Contains(key, "..") {
		notFound(c)
		return
	}

	if !isAllowedRequest(c) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Data(http.StatusOK, "image/svg+xml", []byte(hotlinkSVG))
		return
	}

	ctx := c.Request.Context()
	if presigner, ok := h.store.(storage.Presigner); ok {
		exists, err := h.store.Exists(ctx, key)
		if err != nil {
			serverError(c, err)
			return
		}
		if !exists {
			notFound(c)
			return
		}
		url, err := presigner.GetURL(ctx, key, presignTTL)
		if err != nil {
			serverError(c, err)
			return
		}
		c.Redirect(http.StatusFound, url)
		return
	}

	rc, err := h.store.Read(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=604800")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Vary", "Sec-Fetch-Site, Sec-Fetch-Mode")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// isAllowedRequest uses Sec-Fetch-* headers to refuse cross-site embedding.
// Requests without the headers, same-site requests and navigations pass.
func isAllowedRequest(c *gin.Context) bool {
	switch c.GetHeader("Sec-Fetch-Site") {
	case "", "same-origin", "same-site", "none":
		return true
	}
	return c.GetHeader("Sec-Fetch-Mode") == "navigate"
}
