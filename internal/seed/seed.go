package seed

import (
	"context"
	"fmt"
	"log/slog"

	"cookfeed/internal/middleware"
	"cookfeed/internal/models"

	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumItems    int
	ShouldClean bool
	Password    string
	// Seed fixes the fake data generator. Zero means random.
	Seed int64
}

// Result counts what Seed created.
type Result struct {
	Users int
	Posts int
	Items int
}

// Seed fills the database with demo users, posts and shopping items.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	var res Result
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}

	if opts.ShouldClean {
		if err := Clear(ctx, db); err != nil {
			return res, err
		}
	}

	f, err := NewFactory(db, opts.Password, opts.Seed)
	if err != nil {
		return res, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return res, err
		}
		users = append(users, u)
	}
	res.Users = len(users)

	for i := range opts.NumPosts {
		// Posts without an owner exercise the Anonymous fallback.
		var owner *models.User
		if len(users) > 0 && i%7 != 6 {
			owner = users[i%len(users)]
		}
		if _, err := f.CreatePost(ctx, owner); err != nil {
			return res, err
		}
		res.Posts++
	}

	for range opts.NumItems {
		if _, err := f.CreateItem(ctx); err != nil {
			return res, err
		}
		res.Items++
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", res.Users), slog.Int("posts", res.Posts), slog.Int("items", res.Items))
	return res, nil
}

// Clear removes all rows from the application tables, children first.
func Clear(ctx context.Context, db *gorm.DB) error {
	for _, model := range []any{&models.Post{}, &models.ShoppingItem{}, &models.User{}} {
		if err := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
