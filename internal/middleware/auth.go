package middleware

import (
	"net/http"
	"net/url"

	"yatube/internal/logging"
	"yatube/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
	LoginPath      = "/auth/login/"
)

// AuthRequired sends guests to the login page, remembering where they were going.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the user from the session and sets it on the context.
// A session pointing at a deleted user is cleared.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserKey).(uint)
		if !ok {
			c.Next()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Uint(logging.FieldUserID, userID).Msg("dropping stale session")
			session.Clear()
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(CheckUserKey, &user)
		c.Set(logging.ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil for guests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// ViewerID is the logged-in user's ID, 0 for guests.
func ViewerID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
