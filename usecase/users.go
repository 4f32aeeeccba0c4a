package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/repository"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/services"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("missing required fields")
	ErrDuplicateUser = errors.New("user already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a caller cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UsersRepository interface {
	AddUser(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type UserService struct {
	Repo   UsersRepository
	Tokens *services.TokenService
}

// Register stores a new user with a hashed password and returns the user
// together with a freshly signed session token.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := services.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		UserID:    uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hashed,
		CreatedAt: time.Now(),
	}

	if err := s.Repo.AddUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", err
	}

	token, err := s.Tokens.Generate(user.UserID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and returns the user plus a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := services.VerifyPassword(user.Password, password)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Generate(user.UserID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
