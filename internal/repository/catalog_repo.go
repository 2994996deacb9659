package repository

import (
	"context"

	"github.com/Eursukkul/race-registration/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RaceTypeRepository interface {
	Create(ctx context.Context, rt *models.RaceType) error
	FindByIDs(ctx context.Context, ids []uint) ([]models.RaceType, error)
}

type raceTypeRepository struct {
	db *gorm.DB
}

func NewRaceTypeRepository(db *gorm.DB) RaceTypeRepository {
	return &raceTypeRepository{db: db}
}

func (r *raceTypeRepository) Create(ctx context.Context, rt *models.RaceType) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *raceTypeRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.RaceType, error) {
	var races []models.RaceType
	if len(ids) == 0 {
		return races, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&races).Error
	return races, err
}

type LocationRepository interface {
	Create(ctx context.Context, loc *models.Location) error
	FindByID(ctx context.Context, id uint) (*models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, loc *models.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepository) FindByID(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

type OrganizerRepository interface {
	Create(ctx context.Context, org *models.Organizer) error
	FindByID(ctx context.Context, id uint) (*models.Organizer, error)
	AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) error
	IsOrganizer(ctx context.Context, userID, eventID uint) (bool, error)
}

type organizerRepository struct {
	db *gorm.DB
}

func NewOrganizerRepository(db *gorm.DB) OrganizerRepository {
	return &organizerRepository{db: db}
}

func (r *organizerRepository) Create(ctx context.Context, org *models.Organizer) error {
	return r.db.WithContext(ctx).Omit("Events").Create(org).Error
}

func (r *organizerRepository) FindByID(ctx context.Context, id uint) (*models.Organizer, error) {
	var org models.Organizer
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("events.id ASC") }).
		First(&org, id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// AttachEvents links the organizer to the events. Links that already exist are kept as they are.
func (r *organizerRepository) AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) error {
	if len(eventIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(eventIDs))
	for i, id := range eventIDs {
		rows[i] = map[string]any{"organizer_id": organizerID, "event_id": id}
	}
	return r.db.WithContext(ctx).
		Table("organizer_events").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).Error
}

func (r *organizerRepository) IsOrganizer(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Organizer{}).
		Joins("JOIN organizer_events oe ON oe.organizer_id = organizers.id").
		Where("organizers.user_id = ? AND oe.event_id = ?", userID, eventID).
		Count(&count).Error
	return count > 0, err
}
