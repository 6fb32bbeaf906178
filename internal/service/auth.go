// Package service holds the business rules of the todo system.
package service

import (
	"context" // Request scoped operations
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // String manipulation
	"time"    // Time durations

	"todo_system/internal/domain"     // Importing domain models
	"todo_system/internal/repository" // Data access
	"todo_system/internal/utils"      // JWT and cache helpers

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// dummyHash is compared against when the username is unknown so both login
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *domain.User `json:"user"`
}

// AuthService defines identity operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(token string) (uint, error)
	Profile(ctx context.Context, userID uint) (*domain.User, error)
}

type authService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
	hashCost  int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(users repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) AuthService {
	return &authService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	verr := &domain.ValidationError{}
	if username == "" {
		verr.Add("username", "is required")
	}
	if email == "" {
		verr.Add("email", "is required")
	}
	if input.Password == "" {
		verr.Add("password", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// Pre-check both unique columns; the unique indexes still guard the insert race
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{Username: username, Email: email, Password: string(hash)} // Create user model
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password)) // Same cost as a real comparison
		return nil, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, s.jwtSecret, s.jwtExpiry) // Generate JWT token
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtExpiry / time.Second),
		User:        user,
	}, nil
}

func (s *authService) Authenticate(token string) (uint, error) {
	if token == "" {
		return 0, domain.ErrUnauthorized
	}
	claims, err := utils.ParseJWT(token, s.jwtSecret)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return claims.UserID, nil
}

func (s *authService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
