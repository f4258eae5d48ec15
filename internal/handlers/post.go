package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/internal/forms"
	"yatube/internal/logging"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	db       *gorm.DB
	uploader *services.ImageUploader
	perPage  int
}

func NewPostHandler(db *gorm.DB, uploader *services.ImageUploader, perPage int) *PostHandler {
	return &PostHandler{db: db, uploader: uploader, perPage: perPage}
}

// Index lists every post, newest first. The route is wrapped in the page cache.
func (h *PostHandler) Index(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Post{})
	page, err := utils.Paginate[models.Post](query, c.Query("page"), h.perPage,
		models.WithPostRelations, models.PostsNewestFirst)
	if err != nil {
		serverError(c, fmt.Errorf("list posts: %w", err))
		return
	}

	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Page":      page,
		"ShowGroup": true,
	})
}

// Detail shows one post with its comments and the comment form.
func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	h.renderDetail(c, post, forms.NewCommentForm())
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, forms.NewPostForm(nil), nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	form := forms.BindPostForm(c)
	valid, err := form.Validate(ctx, h.db)
	if err != nil {
		serverError(c, fmt.Errorf("validate post: %w", err))
		return
	}

	var imageKey string
	if valid && form.Image != nil {
		if imageKey, err = h.saveImage(c, form); err != nil {
			serverError(c, err)
			return
		}
		valid = !form.Errors.Any()
	}
	if !valid {
		h.renderForm(c, form, nil)
		return
	}

	post := models.Post{
		Text:     form.Text,
		GroupID:  form.GroupID,
		AuthorID: user.ID,
		Image:    imageKey,
	}
	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		h.removeImage(c, imageKey)
		serverError(c, fmt.Errorf("create post: %w", err))
		return
	}

	logging.Ctx(ctx).Info().Uint("post_id", post.ID).Msg("post created")
	c.Redirect(http.StatusFound, profilePath(user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != middleware.ViewerID(c) {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}
	h.renderForm(c, forms.NewPostForm(post), post)
}

// Update saves an edited post. Only the author may edit; others are sent back to the post.
func (h *PostHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	if post.AuthorID != middleware.ViewerID(c) {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	form := forms.BindPostForm(c)
	valid, err := form.Validate(ctx, h.db)
	if err != nil {
		serverError(c, fmt.Errorf("validate post: %w", err))
		return
	}

	oldImage := post.Image
	newImage := oldImage
	if form.ImageClear {
		newImage = ""
	}
	if valid && form.Image != nil {
		key, err := h.saveImage(c, form)
		if err != nil {
			serverError(c, err)
			return
		}
		if key != "" {
			newImage = key
		}
		valid = !form.Errors.Any()
	}
	if !valid {
		h.renderForm(c, form, post)
		return
	}

	err = h.db.WithContext(ctx).Model(post).
		Select("Text", "GroupID", "Image").
		Updates(models.Post{Text: form.Text, GroupID: form.GroupID, Image: newImage}).Error
	if err != nil {
		if newImage != oldImage {
			h.removeImage(c, newImage)
		}
		serverError(c, fmt.Errorf("update post: %w", err))
		return
	}
	if newImage != oldImage {
		h.removeImage(c, oldImage)
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	if err := h.db.WithContext(ctx).Delete(&models.Post{}, post.ID).Error; err != nil {
		serverError(c, fmt.Errorf("delete post: %w", err))
		return
	}
	h.removeImage(c, post.Image)

	logging.Ctx(ctx).Info().Uint("post_id", post.ID).Msg("post deleted")
	c.Redirect(http.StatusFound, profilePath(user.Username))
}

// AddComment stores a comment; an invalid one re-renders the post with the errors.
func (h *PostHandler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	form := forms.BindCommentForm(c)
	if !form.Validate() {
		h.renderDetail(c, post, form)
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: middleware.ViewerID(c),
		Text:     form.Text,
	}
	if err := h.db.WithContext(ctx).Create(&comment).Error; err != nil {
		serverError(c, fmt.Errorf("create comment: %w", err))
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	postID, ok1 := paramID(c, "id")
	commentID, ok2 := paramID(c, "cid")
	if !ok1 || !ok2 {
		notFound(c)
		return
	}

	var comment models.Comment
	err := h.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		serverError(c, fmt.Errorf("load comment: %w", err))
		return
	}

	if comment.AuthorID == middleware.ViewerID(c) {
		if err := h.db.WithContext(ctx).Delete(&comment).Error; err != nil {
			serverError(c, fmt.Errorf("delete comment: %w", err))
			return
		}
	}
	c.Redirect(http.StatusFound, postPath(postID))
}

// loadPost fetches the post named by :id with its author and group, rendering 404 when missing.
func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		notFound(c)
		return nil, false
	}

	var post models.Post
	err := h.db.WithContext(c.Request.Context()).Scopes(models.WithPostRelations).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c)
		return nil, false
	}
	if err != nil {
		serverError(c, fmt.Errorf("load post %d: %w", id, err))
		return nil, false
	}
	return &post, true
}

func (h *PostHandler) renderDetail(c *gin.Context, post *models.Post, form *forms.CommentForm) {
	conn := h.db.WithContext(c.Request.Context())

	var authorPosts int64
	if err := conn.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&authorPosts).Error; err != nil {
		serverError(c, fmt.Errorf("count author posts: %w", err))
		return
	}

	var comments []models.Comment
	err := conn.Preload("Author").
		Where("post_id = ?", post.ID).
		Scopes(models.CommentsNewestFirst).
		Find(&comments).Error
	if err != nil {
		serverError(c, fmt.Errorf("list comments: %w", err))
		return
	}

	postHTML := utils.RenderMarkdown(post.Text)
	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":            post,
		"PostHTML":        postHTML,
		"Description":     utils.PlainText(postHTML, 160),
		"AuthorPostCount": authorPosts,
		"Comments":        comments,
		"Form":            form,
		"IsAuthor":        post.AuthorID == middleware.ViewerID(c),
	})
}

func (h *PostHandler) renderForm(c *gin.Context, form *forms.PostForm, post *models.Post) {
	var groups []models.Group
	if err := h.db.WithContext(c.Request.Context()).Order("title").Find(&groups).Error; err != nil {
		serverError(c, fmt.Errorf("list groups: %w", err))
		return
	}

	Render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"Form":   form,
		"Groups": groups,
		"Post":   post,
		"IsEdit": post != nil,
	})
}

// saveImage uploads the form's image. Rejected files become form errors and
// return an empty key; only infrastructure failures return an error.
func (h *PostHandler) saveImage(c *gin.Context, form *forms.PostForm) (string, error) {
	res, err := h.uploader.UploadFile(c.Request.Context(), form.Image)
	switch {
	case errors.Is(err, services.ErrNotImage):
		form.Errors.Add("image", "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением.")
		return "", nil
	case errors.Is(err, services.ErrImageTooLarge):
		form.Errors.Add("image", "Файл слишком большой.")
		return "", nil
	case err != nil:
		return "", fmt.Errorf("upload image: %w", err)
	}
	return res.Key, nil
}

func (h *PostHandler) removeImage(c *gin.Context, key string) {
	if err := h.uploader.Remove(c.Request.Context(), key); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Str("key", key).Msg("failed to remove image")
	}
}
