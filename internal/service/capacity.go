package service

import (
	"context"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
)

// FreeSlots is total capacity minus active registrations. It is not clamped:
// a negative result means the event was oversubscribed.
func FreeSlots(totalSlots int, active int64) int {
	return totalSlots - int(active)
}

type CapacityService interface {
	FreeSlots(ctx context.Context, event *models.Event) (int, error)
}

type capacityService struct {
	regRepo repository.RegistrationRepository
}

func NewCapacityService(regRepo repository.RegistrationRepository) CapacityService {
	return &capacityService{regRepo: regRepo}
}

func (s *capacityService) FreeSlots(ctx context.Context, event *models.Event) (int, error) {
	active, err := s.regRepo.CountActive(ctx, nil, event.ID)
	if err != nil {
		return 0, persistence("count active registrations", err)
	}
	return FreeSlots(event.TotalSlots, active), nil
}
