// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"picstream/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	Users    int
	Posts    int
	Clean    bool
	Password string
}

// DefaultOptions produces a moderately populated development database.
func DefaultOptions() Options {
	return Options{
		Users:    25,
		Posts:    100,
		Clean:    true,
		Password: "password123",
	}
}

// Seeder builds domain entities and persists them to the database.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Dependents go first so foreign keys
// never dangle mid-wipe.
func (s *Seeder) ClearAll() error {
	tables := []string{"likes", "saved_posts", "comments", "follows", "posts", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// Run populates the database per the given options: users with a follow
// mesh, posts spread over the past weeks, then likes, saves, and comments.
func (s *Seeder) Run(opts Options) error {
	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(opts.Users, opts.Password)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if err := s.createFollowMesh(users); err != nil {
		return fmt.Errorf("seeding follows: %w", err)
	}

	posts, err := s.createPosts(users, opts.Posts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := s.createEngagement(users, posts); err != nil {
		return fmt.Errorf("seeding engagement: %w", err)
	}

	log.Printf("Seeded %d users and %d posts", len(users), len(posts))
	return nil
}

func (s *Seeder) createUsers(count int, password string) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:    gofakeit.Email(),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(10),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		})
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// createFollowMesh gives each user a handful of follows so feeds have
// content. Self-follows are skipped and duplicates collapse on the unique
// edge index.
func (s *Seeder) createFollowMesh(users []models.User) error {
	for _, follower := range users {
		n := s.rand.Intn(8) + 2
		for i := 0; i < n; i++ {
			followee := users[s.rand.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			err := s.db.Exec(
				"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (follower_id, followee_id) DO NOTHING",
				follower.ID, followee.ID,
			).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) createPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		creator := users[s.rand.Intn(len(users))]
		post := models.Post{
			CreatorID: creator.ID,
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Caption:   gofakeit.Sentence(s.rand.Intn(12) + 3),
		}
		// realistic created_at spread over the past 60 days
		daysBack := s.rand.Intn(60)
		hoursBack := s.rand.Intn(24)
		post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
		posts = append(posts, post)
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) createEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		likes := s.rand.Intn(len(users)/2 + 1)
		for i := 0; i < likes; i++ {
			user := users[s.rand.Intn(len(users))]
			err := s.db.Exec(
				"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
				user.ID, post.ID,
			).Error
			if err != nil {
				return err
			}
		}

		if s.rand.Intn(4) == 0 {
			saver := users[s.rand.Intn(len(users))]
			err := s.db.Exec(
				"INSERT INTO saved_posts (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, post_id) DO NOTHING",
				saver.ID, post.ID,
			).Error
			if err != nil {
				return err
			}
		}

		comments := s.rand.Intn(5)
		for i := 0; i < comments; i++ {
			commenter := users[s.rand.Intn(len(users))]
			comment := models.Comment{
				UserID:  commenter.ID,
				PostID:  post.ID,
				Message: gofakeit.Sentence(s.rand.Intn(10) + 2),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
