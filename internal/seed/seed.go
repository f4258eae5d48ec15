// Package seed fills the database with demo users, posts, comments and follows.
package seed

import (
	"context"
	"fmt"

	"yatube/internal/logging"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Users        int
	PostsPerUser int
	Comments     int
	Follows      int
	Clean        bool
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Follows  int
}

type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder returns a seeder whose output is reproducible for a non-zero seed.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, faker: gofakeit.New(seed)}
}

// Run creates the requested amount of data inside one transaction.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	hash, err := services.HashPassword(DefaultPassword)
	if err != nil {
		return sum, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clean {
			if err := clearData(tx); err != nil {
				return err
			}
		}

		var groups []models.Group
		if err := tx.Find(&groups).Error; err != nil {
			return fmt.Errorf("load groups: %w", err)
		}

		users, err := s.createUsers(tx, opts.Users, hash)
		if err != nil {
			return err
		}
		sum.Users = len(users)

		posts, err := s.createPosts(tx, users, groups, opts.PostsPerUser)
		if err != nil {
			return err
		}
		sum.Posts = len(posts)

		if sum.Comments, err = s.createComments(tx, users, posts, opts.Comments); err != nil {
			return err
		}
		sum.Follows, err = s.createFollows(tx, users, opts.Follows)
		return err
	})
	if err != nil {
		return Summary{}, err
	}

	logging.Ctx(ctx).Info().
		Int("users", sum.Users).
		Int("posts", sum.Posts).
		Int("comments", sum.Comments).
		Int("follows", sum.Follows).
		Msg("database seeded")
	return sum, nil
}

// clearData removes everything but the groups. Order follows the foreign keys.
func clearData(tx *gorm.DB) error {
	for _, model := range []any{&models.Follow{}, &models.Comment{}, &models.Post{}, &models.User{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers(tx *gorm.DB, n int, hash string) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, models.User{
			Username:  fmt.Sprintf("%s_%d", s.faker.Username(), i),
			FirstName: s.faker.FirstName(),
			LastName:  s.faker.LastName(),
			Email:     s.faker.Email(),
			Password:  hash,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := tx.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) createPosts(tx *gorm.DB, users []models.User, groups []models.Group, perUser int) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(users)*perUser)
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			post := models.Post{
				Text:     s.faker.Paragraph(s.faker.Number(1, 3), 4, 12, "\n\n"),
				AuthorID: u.ID,
			}
			// Roughly two posts in three belong to a group.
			if len(groups) > 0 && s.faker.Number(0, 2) > 0 {
				gid := groups[s.faker.Number(0, len(groups)-1)].ID
				post.GroupID = &gid
			}
			posts = append(posts, post)
		}
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := tx.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

func (s *Seeder) createComments(tx *gorm.DB, users []models.User, posts []models.Post, n int) (int, error) {
	if len(users) == 0 || len(posts) == 0 || n <= 0 {
		return 0, nil
	}

	comments := make([]models.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, models.Comment{
			PostID:   posts[s.faker.Number(0, len(posts)-1)].ID,
			AuthorID: users[s.faker.Number(0, len(users)-1)].ID,
			Text:     s.faker.Sentence(s.faker.Number(3, 15)),
		})
	}
	if err := tx.CreateInBatches(&comments, 100).Error; err != nil {
		return 0, fmt.Errorf("create comments: %w", err)
	}
	return len(comments), nil
}

// createFollows adds up to n distinct edges; self-follows and duplicates are skipped.
func (s *Seeder) createFollows(tx *gorm.DB, users []models.User, n int) (int, error) {
	if len(users) < 2 || n <= 0 {
		return 0, nil
	}

	maxEdges := len(users) * (len(users) - 1)
	if n > maxEdges {
		n = maxEdges
	}

	seen := make(map[[2]uint]bool, n)
	follows := make([]models.Follow, 0, n)
	for len(follows) < n {
		from := users[s.faker.Number(0, len(users)-1)].ID
		to := users[s.faker.Number(0, len(users)-1)].ID
		key := [2]uint{from, to}
		if from == to || seen[key] {
			continue
		}
		seen[key] = true
		follows = append(follows, models.Follow{UserID: from, AuthorID: to})
	}
	if err := tx.CreateInBatches(&follows, 100).Error; err != nil {
		return 0, fmt.Errorf("create follows: %w", err)
	}
	return len(follows), nil
}
