// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every user made by CreateUser.
const Password = "Sup3r-secret!"

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	conn, err := db.OpenSQLite(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// CreateUser stores a user whose password is Password.
func CreateUser(t *testing.T, conn *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := services.HashPassword(Password)
	require.NoError(t, err)

	user := &models.User{Username: username, Email: username + "@example.com", Password: hash}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// CreateGroup stores a group with the given slug.
func CreateGroup(t *testing.T, conn *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Группа " + slug, Slug: slug, Description: "Описание " + slug}
	require.NoError(t, conn.Create(group).Error)
	return group
}

// CreatePost stores a post by author, optionally in group.
func CreatePost(t *testing.T, conn *gorm.DB, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, conn.Create(post).Error)
	return post
}
