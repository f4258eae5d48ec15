package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler serves author profiles, subscriptions and the follow feed.
type ProfileHandler struct {
	db      *gorm.DB
	follows *services.FollowService
	perPage int
}

func NewProfileHandler(db *gorm.DB, follows *services.FollowService, perPage int) *ProfileHandler {
	return &ProfileHandler{db: db, follows: follows, perPage: perPage}
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, ok := h.loadAuthor(c)
	if !ok {
		return
	}

	query := h.db.WithContext(ctx).Model(&models.Post{}).Where("posts.author_id = ?", author.ID)
	page, err := utils.Paginate[models.Post](query, c.Query("page"), h.perPage,
		models.WithPostRelations, models.PostsNewestFirst)
	if err != nil {
		serverError(c, fmt.Errorf("list author posts: %w", err))
		return
	}

	stats, err := h.follows.Stats(ctx, author.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	viewerID := middleware.ViewerID(c)
	following, err := h.follows.IsFollowing(ctx, viewerID, author.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":         author,
		"Page":           page,
		"ShowGroup":      true,
		"PostCount":      page.Count,
		"Followers":      stats.Followers,
		"FollowingCount": stats.Following,
		"Following":      following,
		"IsSelf":         viewerID == author.ID,
	})
}

// Follow subscribes the viewer to the author. Following yourself is silently ignored.
func (h *ProfileHandler) Follow(c *gin.Context) {
	author, ok := h.loadAuthor(c)
	if !ok {
		return
	}

	err := h.follows.Follow(c.Request.Context(), middleware.ViewerID(c), author.ID)
	if err != nil && !errors.Is(err, services.ErrSelfFollow) {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(author.Username))
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")

	err := h.follows.Unfollow(c.Request.Context(), middleware.ViewerID(c), username)
	if errors.Is(err, services.ErrFollowNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(username))
}

// FollowIndex lists posts of the authors the viewer follows.
func (h *ProfileHandler) FollowIndex(c *gin.Context) {
	query := h.follows.FeedQuery(c.Request.Context(), middleware.ViewerID(c))
	page, err := utils.Paginate[models.Post](query, c.Query("page"), h.perPage,
		models.WithPostRelations, models.PostsNewestFirst)
	if err != nil {
		serverError(c, fmt.Errorf("list feed: %w", err))
		return
	}

	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Page":      page,
		"ShowGroup": true,
	})
}

func (h *ProfileHandler) loadAuthor(c *gin.Context) (*models.User, bool) {
	var author models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", c.Param("username")).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
		return nil, false
	}
	if err != nil {
		serverError(c, fmt.Errorf("load author: %w", err))
		return nil, false
	}
	return &author, true
}
