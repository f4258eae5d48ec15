package forms

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostForm is the create/edit post form: text, optional group, optional image.
type PostForm struct {
	Text       string `form:"text" validate:"required"`
	Group      string `form:"group"`
	ImageClear bool   `form:"image-clear"`

	Image   *multipart.FileHeader `form:"-"`
	GroupID *uint                 `form:"-"`
	Errors  FieldErrors           `form:"-"`
}

// NewPostForm prefills the form from an existing post.
func NewPostForm(post *models.Post) *PostForm {
	f := &PostForm{Errors: FieldErrors{}}
	if post == nil {
		return f
	}
	f.Text = post.Text
	if post.GroupID != nil {
		f.GroupID = post.GroupID
		f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return f
}

// BindPostForm reads the submitted fields and the optional image upload.
func BindPostForm(c *gin.Context) *PostForm {
	f := &PostForm{
		Text:       c.PostForm("text"),
		Group:      strings.TrimSpace(c.PostForm("group")),
		ImageClear: c.PostForm("image-clear") != "",
		Errors:     FieldErrors{},
	}

	header, err := c.FormFile("image")
	switch {
	case err == nil:
		f.Image = header
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		f.Errors.Add("image", "Не удалось прочитать файл.")
	}
	return f
}

// Validate checks the fields and that the chosen group exists.
func (f *PostForm) Validate(ctx context.Context, db *gorm.DB) (bool, error) {
	f.Text = strings.TrimSpace(f.Text)
	check(f, f.Errors)

	f.GroupID = nil
	if f.Group != "" {
		id, err := strconv.ParseUint(f.Group, 10, 64)
		if err != nil {
			f.Errors.Add("group", invalidChoice)
			return false, nil
		}

		var count int64
		err = db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&count).Error
		if err != nil {
			return false, err
		}
		if count == 0 {
			f.Errors.Add("group", invalidChoice)
		} else {
			gid := uint(id)
			f.GroupID = &gid
		}
	}
	return !f.Errors.Any(), nil
}

const invalidChoice = "Выберите корректный вариант. Вашего варианта нет среди допустимых значений."

// CommentForm holds a comment's text.
type CommentForm struct {
	Text   string      `form:"text" validate:"required"`
	Errors FieldErrors `form:"-"`
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: FieldErrors{}}
}

func BindCommentForm(c *gin.Context) *CommentForm {
	return &CommentForm{Text: c.PostForm("text"), Errors: FieldErrors{}}
}

func (f *CommentForm) Validate() bool {
	f.Text = strings.TrimSpace(f.Text)
	check(f, f.Errors)
	return !f.Errors.Any()
}
