package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/storage"
	"go.uber.org/zap"
)

// ProfileInput updates the caller's own profile. A nil BirthDate and a nil
// Photo keep the stored values.
type ProfileInput struct {
	UserID    uint
	FirstName string
	LastName  string
	BirthDate *time.Time
	Photo     io.Reader
	PhotoName string
}

type ProfileService interface {
	Profile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error)
	Photo(ctx context.Context, userID uint) (*Document, error)
}

type profileService struct {
	userRepo repository.UserRepository
	docs     DocumentStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewProfileService(userRepo repository.UserRepository, docs DocumentStore, logger *zap.Logger) ProfileService {
	return &profileService{userRepo: userRepo, docs: docs, logger: logger, now: time.Now}
}

func (s *profileService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "find user")
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	if in.BirthDate != nil && !in.BirthDate.Before(s.now()) {
		return nil, invalid("birth date must be in the past")
	}
	if in.Photo != nil && !storage.IsImage(in.PhotoName) {
		return nil, invalid("photo must be a jpg, png or webp image")
	}

	user, err := s.Profile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	if in.BirthDate != nil {
		user.BirthDate = in.BirthDate
	}

	oldPhoto := user.PhotoPath
	newPhoto := ""
	if in.Photo != nil {
		newPhoto = storage.UserPhotoPath(user.Username, in.PhotoName)
		if err := s.docs.Save(newPhoto, in.Photo); err != nil {
			return nil, persistence("save profile photo", err)
		}
		user.PhotoPath = newPhoto
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if newPhoto != "" {
			s.removeFile(newPhoto)
		}
		return nil, persistence("update profile", err)
	}
	if newPhoto != "" && oldPhoto != "" {
		s.removeFile(oldPhoto)
	}

	s.logger.Info("profile updated", zap.Uint("user_id", user.ID), zap.Bool("new_photo", newPhoto != ""))
	return user, nil
}

func (s *profileService) Photo(ctx context.Context, userID uint) (*Document, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PhotoPath == "" {
		return nil, ErrDocumentNotFound
	}
	body, err := s.docs.Open(user.PhotoPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}
		return nil, persistence("open profile photo", err)
	}
	return &Document{Name: path.Base(user.PhotoPath), Body: body}, nil
}

func (s *profileService) removeFile(relPath string) {
	if err := s.docs.Remove(relPath); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", relPath), zap.Error(err))
	}
}
