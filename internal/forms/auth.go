package forms

import (
	"context"
	"strings"

	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SignupForm registers a new user.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8,max=128"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`

	Errors FieldErrors `form:"-"`
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: FieldErrors{}}
}

func BindSignupForm(c *gin.Context) *SignupForm {
	f := NewSignupForm()
	if err := c.ShouldBind(f); err != nil {
		f.Errors.Add("__all__", "Некорректные данные формы.")
	}
	return f
}

// Validate checks the fields and that the username is still free.
func (f *SignupForm) Validate(ctx context.Context, db *gorm.DB) (bool, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	check(f, f.Errors)

	if f.Username != "" && !f.Errors.Has("username") {
		var count int64
		err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", f.Username).Count(&count).Error
		if err != nil {
			return false, err
		}
		if count > 0 {
			f.Errors.Add("username", "Пользователь с таким именем уже существует.")
		}
	}
	return !f.Errors.Any(), nil
}

// LoginForm authenticates by username and password.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`

	Errors FieldErrors `form:"-"`
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: FieldErrors{}}
}

func BindLoginForm(c *gin.Context) *LoginForm {
	f := NewLoginForm("")
	if err := c.ShouldBind(f); err != nil {
		f.Errors.Add("__all__", "Некорректные данные формы.")
	}
	return f
}

func (f *LoginForm) Validate() bool {
	f.Username = strings.TrimSpace(f.Username)
	check(f, f.Errors)
	return !f.Errors.Any()
}
