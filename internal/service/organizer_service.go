package service

import (
	"context"
	"strings"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"go.uber.org/zap"
)

type CreateOrganizerInput struct {
	UserID         uint
	Contact        string
	PaymentDetails string
	EventIDs       []uint
}

// OrganizerService manages organizers. An organizer sees the full registrant
// list of every event attached to it.
type OrganizerService interface {
	CreateOrganizer(ctx context.Context, in CreateOrganizerInput) (*models.Organizer, error)
	AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) (*models.Organizer, error)
}

type organizerService struct {
	organizerRepo repository.OrganizerRepository
	userRepo      repository.UserRepository
	eventRepo     repository.EventRepository
	logger        *zap.Logger
}

func NewOrganizerService(
	organizerRepo repository.OrganizerRepository,
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	logger *zap.Logger,
) OrganizerService {
	return &organizerService{
		organizerRepo: organizerRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		logger:        logger,
	}
}

func (s *organizerService) CreateOrganizer(ctx context.Context, in CreateOrganizerInput) (*models.Organizer, error) {
	in.Contact = strings.TrimSpace(in.Contact)
	if in.Contact == "" {
		return nil, invalid("contact is required")
	}
	if _, err := s.userRepo.FindByID(ctx, in.UserID); err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "find user")
	}
	ids := uniqueIDs(in.EventIDs)
	if err := s.checkEvents(ctx, ids); err != nil {
		return nil, err
	}

	org := &models.Organizer{
		UserID:         in.UserID,
		Contact:        in.Contact,
		PaymentDetails: in.PaymentDetails,
	}
	if err := s.organizerRepo.Create(ctx, org); err != nil {
		return nil, persistence("create organizer", err)
	}
	if err := s.organizerRepo.AttachEvents(ctx, org.ID, ids); err != nil {
		return nil, persistence("attach events", err)
	}

	s.logger.Info("organizer created",
		zap.Uint("organizer_id", org.ID),
		zap.Uint("user_id", org.UserID),
		zap.Int("events", len(ids)),
	)
	return s.reload(ctx, org.ID)
}

func (s *organizerService) AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) (*models.Organizer, error) {
	ids := uniqueIDs(eventIDs)
	if len(ids) == 0 {
		return nil, invalid("at least one event is required")
	}
	if _, err := s.organizerRepo.FindByID(ctx, organizerID); err != nil {
		return nil, notFoundOr(err, ErrOrganizerNotFound, "find organizer")
	}
	if err := s.checkEvents(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.organizerRepo.AttachEvents(ctx, organizerID, ids); err != nil {
		return nil, persistence("attach events", err)
	}

	s.logger.Info("events attached to organizer",
		zap.Uint("organizer_id", organizerID),
		zap.Uints("event_ids", ids),
	)
	return s.reload(ctx, organizerID)
}

func (s *organizerService) checkEvents(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if _, err := s.eventRepo.FindByID(ctx, id); err != nil {
			return notFoundOr(err, ErrEventNotFound, "find event")
		}
	}
	return nil
}

func (s *organizerService) reload(ctx context.Context, id uint) (*models.Organizer, error) {
	org, err := s.organizerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrOrganizerNotFound, "find organizer")
	}
	return org, nil
}
