package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/race-registration/internal/auth"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (string, error)
	Signin(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	key      []byte
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, key []byte) AuthService {
	return &authService{userRepo: userRepo, key: key, now: time.Now}
}

// Signup creates a regular, non-admin account and signs it in.
func (s *authService) Signup(ctx context.Context, in SignupInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Username == "" || in.Email == "":
		return "", invalid("username and email are required")
	case len(in.Password) < MinPasswordLength:
		return "", invalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrUserExists
		}
		return "", persistence("create user", err)
	}
	return auth.GenerateToken(user.ID, user.Username, false, s.key, s.now())
}

func (s *authService) Signin(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", persistence("find user", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(user.ID, user.Username, user.IsAdmin, s.key, s.now())
}
