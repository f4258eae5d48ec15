package db_test

import (
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSeedsGroupsOnce(t *testing.T) {
	conn := testutil.NewDB(t)

	var groups []models.Group
	require.NoError(t, conn.Order("id").Find(&groups).Error)
	require.Len(t, groups, 3)
	assert.Equal(t, "leo", groups[0].Slug)
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	conn := testutil.NewDB(t)
	author := testutil.CreateUser(t, conn, "author")
	group := testutil.CreateGroup(t, conn, "test-slug")
	post := testutil.CreatePost(t, conn, author, group, "Пост в группе")

	require.NoError(t, conn.Delete(&models.Group{}, group.ID).Error)

	var reloaded models.Post
	require.NoError(t, conn.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.GroupID)
	assert.Equal(t, "Пост в группе", reloaded.Text)
}

func TestDeleteUserCascades(t *testing.T) {
	conn := testutil.NewDB(t)
	author := testutil.CreateUser(t, conn, "author")
	reader := testutil.CreateUser(t, conn, "reader")
	post := testutil.CreatePost(t, conn, author, nil, "Текст")
	otherPost := testutil.CreatePost(t, conn, reader, nil, "Чужой пост")

	require.NoError(t, conn.Create(&models.Comment{PostID: otherPost.ID, AuthorID: author.ID, Text: "комментарий"}).Error)
	require.NoError(t, conn.Create(&models.Follow{UserID: reader.ID, AuthorID: author.ID}).Error)
	require.NoError(t, conn.Create(&models.Follow{UserID: author.ID, AuthorID: reader.ID}).Error)

	require.NoError(t, conn.Delete(&models.User{}, author.ID).Error)

	var count int64
	conn.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	assert.Zero(t, count, "author's posts are deleted")
	conn.Model(&models.Comment{}).Where("author_id = ?", author.ID).Count(&count)
	assert.Zero(t, count, "author's comments are deleted")
	conn.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count, "follow edges in both directions are deleted")
	conn.Model(&models.Post{}).Where("id = ?", otherPost.ID).Count(&count)
	assert.Equal(t, int64(1), count, "other users' posts survive")
}

func TestDeletePostCascadesComments(t *testing.T) {
	conn := testutil.NewDB(t)
	author := testutil.CreateUser(t, conn, "author")
	post := testutil.CreatePost(t, conn, author, nil, "Текст")
	require.NoError(t, conn.Create(&models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "первый"}).Error)

	require.NoError(t, conn.Delete(&models.Post{}, post.ID).Error)

	var count int64
	conn.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestFollowConstraints(t *testing.T) {
	conn := testutil.NewDB(t)
	user := testutil.CreateUser(t, conn, "follower")
	author := testutil.CreateUser(t, conn, "author")

	require.NoError(t, conn.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
	assert.Error(t, conn.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error, "pair is unique")
	assert.Error(t, conn.Create(&models.Follow{UserID: user.ID, AuthorID: user.ID}).Error, "self-follow is rejected")
}

func TestPostRequiresExistingAuthor(t *testing.T) {
	conn := testutil.NewDB(t)
	err := conn.Create(&models.Post{Text: "без автора", AuthorID: 999}).Error
	assert.Error(t, err)
}
