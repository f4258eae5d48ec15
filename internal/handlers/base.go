package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"yatube/internal/logging"
	"yatube/internal/middleware"

	"github.com/gin-gonic/gin"
)

const siteNameKey = "site_name"

// SiteContext exposes the site name to every rendered page.
func SiteContext(siteName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(siteNameKey, siteName)
		c.Next()
	}
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["SiteName"] = c.GetString(siteNameKey)

	c.HTML(code, name, obj)
}

// RenderError renders the error page with the given status.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Code": code, "Error": message})
	c.Abort()
}

func notFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "Страница не найдена.")
}

// serverError logs err with the request logger and renders a 500 page.
func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	logging.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	RenderError(c, http.StatusInternalServerError, "Что-то пошло не так. Попробуйте позже.")
}

// NoRoute renders the 404 page for unmatched paths.
func NoRoute(c *gin.Context) {
	notFound(c)
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postPath(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
