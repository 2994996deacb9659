package service

import (
	"context"
	"strings"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
)

const LatestReviews = 5

type ReviewService interface {
	AddReview(ctx context.Context, slug string, authorID uint, text string) (*models.Review, error)
	ListByEvent(ctx context.Context, slug string) ([]models.Review, error)
	Latest(ctx context.Context) ([]models.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	eventRepo  repository.EventRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, eventRepo repository.EventRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, eventRepo: eventRepo}
}

func (s *reviewService) AddReview(ctx context.Context, slug string, authorID uint, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("review text is required")
	}
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}

	review := &models.Review{EventID: event.ID, AuthorID: authorID, Text: text}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, persistence("create review", err)
	}
	return review, nil
}

func (s *reviewService) ListByEvent(ctx context.Context, slug string) ([]models.Review, error) {
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}
	reviews, err := s.reviewRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, persistence("list reviews", err)
	}
	return reviews, nil
}

func (s *reviewService) Latest(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.reviewRepo.Latest(ctx, LatestReviews)
	if err != nil {
		return nil, persistence("latest reviews", err)
	}
	return reviews, nil
}
