package service

import (
	"context"
	"errors"
	"testing"

	"cookfeed/internal/media"
	"cookfeed/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithPostsFn func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithPosts(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithPostsFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

// memoryUserRepo keeps users in a slice so register/login round trips can be tested.
func memoryUserRepo() *userRepoStub {
	var users []*models.User
	find := func(match func(*models.User) bool) *models.User {
		for _, u := range users {
			if match(u) {
				return u
			}
		}
		return nil
	}
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if u := find(func(u *models.User) bool { return u.ID == id }); u != nil {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByIDWithPostsFn: func(_ context.Context, id uint) (*models.User, error) {
			if u := find(func(u *models.User) bool { return u.ID == id }); u != nil {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return find(func(u *models.User) bool { return u.Username == name }), nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return find(func(u *models.User) bool { return u.Email == email }), nil
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = uint(len(users) + 1)
			users = append(users, u)
			return nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn      func(context.Context) ([]models.Post, error)
	createFn    func(context.Context, *models.Post) error
	incrementFn func(context.Context, uint) (int, error)
}

func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) { return s.listFn(ctx) }
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) IncrementReactions(ctx context.Context, id uint) (int, error) {
	return s.incrementFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:      func(context.Context) ([]models.Post, error) { return []models.Post{}, nil },
		createFn:    func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		incrementFn: func(context.Context, uint) (int, error) { return 1, nil },
	}
}

// shoppingRepoStub is a stub for repository.ShoppingRepository.
type shoppingRepoStub struct {
	listFn   func(context.Context) ([]models.ShoppingItem, error)
	createFn func(context.Context, *models.ShoppingItem) error
	toggleFn func(context.Context, uint) (*models.ShoppingItem, error)
	deleteFn func(context.Context, uint) error
}

func (s *shoppingRepoStub) List(ctx context.Context) ([]models.ShoppingItem, error) {
	return s.listFn(ctx)
}
func (s *shoppingRepoStub) Create(ctx context.Context, item *models.ShoppingItem) error {
	return s.createFn(ctx, item)
}
func (s *shoppingRepoStub) Toggle(ctx context.Context, id uint) (*models.ShoppingItem, error) {
	return s.toggleFn(ctx, id)
}
func (s *shoppingRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// uploaderStub is a media.Uploader with a canned result.
type uploaderStub struct {
	ref   string
	err   error
	calls []media.Image
}

func (u *uploaderStub) Upload(_ context.Context, img media.Image) (string, error) {
	u.calls = append(u.calls, img)
	return u.ref, u.err
}
func (u *uploaderStub) Backend() string { return "stub" }

// completerStub is an assistant.Completer with a canned result.
type completerStub struct {
	reply     string
	err       error
	system    string
	user      string
	maxTokens int
	calls     int
}

func (c *completerStub) Complete(_ context.Context, system, user string, maxTokens int) (string, error) {
	c.calls++
	c.system, c.user, c.maxTokens = system, user, maxTokens
	return c.reply, c.err
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
