// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"cookfeed/internal/models"
	"cookfeed/internal/observability"
	"cookfeed/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// errInvalidCredentials is shared by unknown users and wrong passwords so the
// response does not reveal which usernames exist.
var errInvalidCredentials = models.NewUnauthorizedError("Invalid username or password")

type AuthService struct {
	users      repository.UserRepository
	bcryptCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewAuthService(users repository.UserRepository, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, bcryptCost: bcryptCost}
}

// Register creates a user with a bcrypt hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		observability.AuthEvents.WithLabelValues("register", "invalid").Inc()
		return nil, models.NewValidationError("Username, email and password are required")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthEvents.WithLabelValues("register", "conflict").Inc()
		return nil, models.NewConflictError("Username already taken")
	}
	existing, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthEvents.WithLabelValues("register", "conflict").Inc()
		return nil, models.NewConflictError("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration can still win the unique index
		if models.IsCode(err, models.CodeConflict) {
			observability.AuthEvents.WithLabelValues("register", "conflict").Inc()
		}
		return nil, err
	}

	observability.AuthEvents.WithLabelValues("register", "ok").Inc()
	return user, nil
}

// Login returns the user when username and password match.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		observability.AuthEvents.WithLabelValues("login", "invalid").Inc()
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.AuthEvents.WithLabelValues("login", "rejected").Inc()
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewInternalError(err)
		}
		observability.AuthEvents.WithLabelValues("login", "rejected").Inc()
		return nil, errInvalidCredentials
	}

	observability.AuthEvents.WithLabelValues("login", "ok").Inc()
	return user, nil
}

// CurrentUser resolves the user behind a session. A user that no longer
// exists yields nil, nil so the caller can drop the session.
func (s *AuthService) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, nil
	}
	return user, err
}

// Profile loads the user with their posts.
func (s *AuthService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByIDWithPosts(ctx, id)
}
