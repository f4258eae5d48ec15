package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"yatube/internal/forms"
	"yatube/internal/logging"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const invalidLogin = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Form": forms.NewSignupForm()})
}

// Signup creates the account and logs the new user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx := c.Request.Context()
	form := forms.BindSignupForm(c)

	valid, err := form.Validate(ctx, h.db)
	if err != nil {
		serverError(c, fmt.Errorf("validate signup: %w", err))
		return
	}
	if !valid {
		Render(c, http.StatusOK, "auth/signup.html", gin.H{"Form": form})
		return
	}

	hash, err := services.HashPassword(form.Password1)
	if err != nil {
		serverError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	user := models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  hash,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race for the username between validation and insert.
		if h.usernameTaken(c, form.Username) {
			form.Errors.Add("username", "Пользователь с таким именем уже существует.")
			Render(c, http.StatusOK, "auth/signup.html", gin.H{"Form": form})
			return
		}
		serverError(c, fmt.Errorf("create user: %w", err))
		return
	}

	logging.Ctx(ctx).Info().Uint(logging.FieldUserID, user.ID).Msg("user signed up")
	if err := h.login(c, &user); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Form": forms.NewLoginForm(c.Query("next"))})
}

func (h *AuthHandler) Login(c *gin.Context) {
	form := forms.BindLoginForm(c)
	if !form.Validate() {
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Form": form})
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", form.Username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(c, fmt.Errorf("load user: %w", err))
		return
	}
	if err != nil || !services.CheckPasswordHash(form.Password, user.Password) {
		form.Errors.Add("__all__", invalidLogin)
		Render(c, http.StatusOK, "auth/login.html", gin.H{"Form": form})
		return
	}

	if err := h.login(c, &user); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		serverError(c, fmt.Errorf("save session: %w", err))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (h *AuthHandler) usernameTaken(c *gin.Context, username string) bool {
	var count int64
	h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("username = ?", username).Count(&count)
	return count > 0
}

// safeNext only allows local paths, so login cannot redirect off-site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
