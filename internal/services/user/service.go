// Package user provides user management plumbing around the repositories.
package user

import (
	"context"
	"errors"
	"strings"

	"payflow/internal/models"
	"payflow/internal/repositories"
)

// Service errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidName    = errors.New("name is required")
	ErrInvalidEmail   = errors.New("a valid email is required")
	ErrDuplicateEmail = errors.New("email is already registered")
)

// Service manages users.
type Service struct {
	repo repositories.UserRepository
}

// NewService creates a user service.
func NewService(repo repositories.UserRepository) *Service {
	if repo == nil {
		panic("user repository is required")
	}
	return &Service{repo: repo}
}

// CreateUser registers a new user.
func (s *Service) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	if err := validate(name, email); err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser changes a user's name and email.
func (s *Service) UpdateUser(ctx context.Context, id uint, name, email string) (*models.User, error) {
	if err := validate(name, email); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func validate(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
