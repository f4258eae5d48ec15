package seed_test

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/seed"
	"yatube/internal/services"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederRun(t *testing.T) {
	conn := testutil.NewDB(t)
	s := seed.NewSeeder(conn, 42)

	sum, err := s.Run(context.Background(), seed.Options{Users: 4, PostsPerUser: 3, Comments: 5, Follows: 50})
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Users: 4, Posts: 12, Comments: 5, Follows: 12}, sum, "follows are capped at n*(n-1)")

	var posts, selfFollows int64
	conn.Model(&models.Post{}).Count(&posts)
	conn.Model(&models.Follow{}).Where("user_id = author_id").Count(&selfFollows)
	assert.Equal(t, int64(12), posts)
	assert.Zero(t, selfFollows)

	var user models.User
	require.NoError(t, conn.First(&user).Error)
	assert.True(t, services.CheckPasswordHash(seed.DefaultPassword, user.Password))
}

func TestSeederClean(t *testing.T) {
	conn := testutil.NewDB(t)
	testutil.CreatePost(t, conn, testutil.CreateUser(t, conn, "old"), nil, "старый пост")

	_, err := seed.NewSeeder(conn, 1).Run(context.Background(), seed.Options{Users: 2, PostsPerUser: 1, Clean: true})
	require.NoError(t, err)

	var users, groups int64
	conn.Model(&models.User{}).Where("username = ?", "old").Count(&users)
	conn.Model(&models.Group{}).Count(&groups)
	assert.Zero(t, users)
	assert.Equal(t, int64(3), groups, "groups survive a clean run")
}
