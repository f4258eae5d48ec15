package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	db      *gorm.DB
	perPage int
}

func NewGroupHandler(db *gorm.DB, perPage int) *GroupHandler {
	return &GroupHandler{db: db, perPage: perPage}
}

// List shows every group.
func (h *GroupHandler) List(c *gin.Context) {
	var groups []models.Group
	if err := h.db.WithContext(c.Request.Context()).Order("title ASC").Find(&groups).Error; err != nil {
		serverError(c, fmt.Errorf("list groups: %w", err))
		return
	}

	Render(c, http.StatusOK, "posts/groups.html", gin.H{
		"Groups": groups,
	})
}

// Posts lists the posts of the group identified by :slug.
func (h *GroupHandler) Posts(c *gin.Context) {
	conn := h.db.WithContext(c.Request.Context())

	var group models.Group
	err := conn.Where("slug = ?", c.Param("slug")).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		serverError(c, fmt.Errorf("load group: %w", err))
		return
	}

	query := conn.Model(&models.Post{}).Where("posts.group_id = ?", group.ID)
	page, err := utils.Paginate[models.Post](query, c.Query("page"), h.perPage,
		models.WithPostRelations, models.PostsNewestFirst)
	if err != nil {
		serverError(c, fmt.Errorf("list group posts: %w", err))
		return
	}

	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Group":       group,
		"Page":        page,
		"Description": group.Description,
	})
}
