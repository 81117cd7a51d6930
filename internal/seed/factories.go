// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"cookfeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var recipeEmojis = []string{"🍲", "🥗", "🍝", "🥘", "🍰", "🥞", "🍛", "🌮", "🥧", "🍜"}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	rnd          *rand.Rand
	passwordHash string
	maxDays      int
}

// NewFactory creates a Factory bound to db. Every user it creates shares
// password. A zero seed picks a random one.
func NewFactory(db *gorm.DB, password string, seed int64) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:           db,
		faker:        gofakeit.New(seed),
		rnd:          rand.New(rand.NewSource(seed)),
		passwordHash: string(hash),
		maxDays:      60,
	}, nil
}

// CreateUser persists a user with a unique fake username and email.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	suffix := f.faker.Number(1000, 9999)
	username := strings.ToLower(fmt.Sprintf("%s%s%d", first, last[:1], suffix))

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.passwordHash,
	}
	for _, o := range overrides {
		o(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildPost returns an unsaved recipe post owned by user with a created_at
// spread over the last few weeks.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	ingredients := make([]string, 0, 5)
	for range 3 + f.rnd.Intn(3) {
		ingredients = append(ingredients, strings.ToLower(f.faker.Vegetable()))
	}

	post := &models.Post{
		Title:       fmt.Sprintf("%s %s", f.faker.Adjective(), f.faker.Dinner()),
		Description: f.faker.Sentence(12),
		Ingredients: strings.Join(ingredients, ", "),
		Method:      f.faker.Paragraph(1, 4, 10, " "),
		Emoji:       recipeEmojis[f.rnd.Intn(len(recipeEmojis))],
		Reactions:   f.rnd.Intn(25),
		CreatedAt:   time.Now().Add(-time.Duration(f.rnd.Intn(f.maxDays*24*60)) * time.Minute),
	}
	if user != nil {
		id := user.ID
		post.UserID = &id
		post.Username = user.Username
	}
	if f.rnd.Intn(3) == 0 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
	}

	for _, o := range overrides {
		o(post)
	}
	return post
}

// CreatePost persists a post built by BuildPost.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateItem persists a shopping list entry.
func (f *Factory) CreateItem(ctx context.Context, overrides ...func(*models.ShoppingItem)) (*models.ShoppingItem, error) {
	item := &models.ShoppingItem{
		Text:    fmt.Sprintf("%d %s", 1+f.rnd.Intn(4), strings.ToLower(f.faker.Fruit())),
		Checked: f.rnd.Intn(4) == 0,
	}
	for _, o := range overrides {
		o(item)
	}
	if err := f.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}
