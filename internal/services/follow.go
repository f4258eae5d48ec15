package services

import (
	"context"
	"errors"
	"fmt"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSelfFollow     = errors.New("users cannot follow themselves")
	ErrFollowNotFound = errors.New("follow relation not found")
)

// FollowService manages subscriptions between users and authors.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes userID to authorID. Following an author twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

// Unfollow removes the subscription of userID to the author called username.
// ErrFollowNotFound covers both an unknown author and a missing pair.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) error {
	var follow models.Follow
	err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = follows.author_id").
		Where("follows.user_id = ? AND users.username = ?", userID, username).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFollowNotFound
	}
	if err != nil {
		return fmt.Errorf("find follow: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&follow).Error; err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// IsFollowing reports whether userID follows authorID. Zero userID means an anonymous viewer.
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 || userID == authorID {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

// FollowStats holds subscription counters shown on a profile.
type FollowStats struct {
	Followers int64
	Following int64
}

func (s *FollowService) Stats(ctx context.Context, userID uint) (FollowStats, error) {
	var stats FollowStats
	conn := s.db.WithContext(ctx)
	if err := conn.Model(&models.Follow{}).Where("author_id = ?", userID).Count(&stats.Followers).Error; err != nil {
		return stats, fmt.Errorf("count followers: %w", err)
	}
	if err := conn.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&stats.Following).Error; err != nil {
		return stats, fmt.Errorf("count following: %w", err)
	}
	return stats, nil
}

// FeedQuery selects posts written by the authors userID follows.
func (s *FollowService) FeedQuery(ctx context.Context, userID uint) *gorm.DB {
	authors := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	return s.db.WithContext(ctx).Model(&models.Post{}).Where("posts.author_id IN (?)", authors)
}
