package router

import (
	"fmt"
	"io/fs"
	"net/http"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handlers"
	"yatube/internal/logging"
	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const sessionName = "yatube_session"

// Deps are the shared services the HTTP layer is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   cache.PageCache
	Storage storage.Storage
	Logger  zerolog.Logger
}

// New builds the gin engine with middleware, templates and routes.
func New(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.RedirectTrailingSlash = true

	renderer, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(staticFS))

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		Secure:   d.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	r.Use(
		logging.GinMiddleware(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logging.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("recovered from panic")
			handlers.RenderError(c, http.StatusInternalServerError, "Что-то пошло не так. Попробуйте позже.")
		}),
		middleware.Metrics(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/media/", "/metrics"})),
		sessions.Sessions(sessionName, store),
		handlers.SiteContext(d.Config.SiteName),
		middleware.LoadUser(d.DB),
	)

	RegisterRoutes(r, d)
	return r, nil
}

// RegisterRoutes wires handlers to paths.
func RegisterRoutes(r *gin.Engine, d Deps) {
	perPage := d.Config.PostPerPage
	follows := services.NewFollowService(d.DB)
	uploader := services.NewImageUploader(d.Storage, d.Config.MaxUploadBytes())

	postHandler := handlers.NewPostHandler(d.DB, uploader, perPage)
	groupHandler := handlers.NewGroupHandler(d.DB, perPage)
	profileHandler := handlers.NewProfileHandler(d.DB, follows, perPage)
	authHandler := handlers.NewAuthHandler(d.DB)
	mediaHandler := handlers.NewMediaHandler(d.Storage)
	seoHandler := handlers.NewSEOHandler(d.DB, d.Config.SiteURL)

	// Public routes
	r.GET("/", middleware.CachePage(d.Cache, d.Config.IndexCacheTTL), postHandler.Index)
	r.GET("/groups/", groupHandler.List)
	r.GET("/group/:slug/", groupHandler.Posts)
	r.GET("/profile/:username/", profileHandler.Profile)
	r.GET("/posts/:id/", postHandler.Detail)
	r.GET("/media/*key", mediaHandler.Serve)

	r.GET("/auth/signup/", authHandler.ShowSignup)
	r.POST("/auth/signup/", authHandler.Signup)
	r.GET("/auth/login/", authHandler.ShowLogin)
	r.POST("/auth/login/", authHandler.Login)
	r.POST("/auth/logout/", authHandler.Logout)

	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Login required
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.POST("/posts/:id/delete/", postHandler.Delete)
		authorized.POST("/posts/:id/comment/", postHandler.AddComment)
		authorized.POST("/posts/:id/comments/:cid/delete/", postHandler.DeleteComment)

		authorized.GET("/follow/", profileHandler.FollowIndex)
		authorized.POST("/profile/:username/follow/", profileHandler.Follow)
		authorized.POST("/profile/:username/unfollow/", profileHandler.Unfollow)
	}

	r.NoRoute(handlers.NoRoute)
}
