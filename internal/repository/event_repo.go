package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventFilter string

const (
	FilterAll      EventFilter = "all"
	FilterUpcoming EventFilter = "upcoming"
	FilterPast     EventFilter = "past"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	LoadRaceTypes(ctx context.Context, tx *gorm.DB, event *models.Event) error
	List(ctx context.Context, filter EventFilter, today time.Time, offset, limit int) ([]models.Event, int64, error)
	RaceTypes(ctx context.Context, eventID uint) ([]models.RaceType, error)
	UpdateImage(ctx context.Context, id uint, imagePath string) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit("Location", "RaceTypes.*").Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("RaceTypes", func(db *gorm.DB) *gorm.DB { return db.Order("race_types.distance_km ASC, race_types.id ASC") }).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB { return db.Order("start_time ASC") }).
		Where("slug = ?", slug).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) LoadRaceTypes(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if tx == nil {
		tx = r.db
	}
	event.RaceTypes = nil
	return tx.WithContext(ctx).Model(event).Association("RaceTypes").Find(&event.RaceTypes)
}

// List compares by calendar date: today is midnight of the current day, so an
// event starting earlier today is still upcoming.
func (r *eventRepository) List(ctx context.Context, filter EventFilter, today time.Time, offset, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})
	switch filter {
	case FilterUpcoming:
		q = q.Where("start_at >= ?", today)
	case FilterPast:
		q = q.Where("start_at < ?", today)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := q.Preload("Location").
		Order("start_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) RaceTypes(ctx context.Context, eventID uint) ([]models.RaceType, error) {
	var races []models.RaceType
	err := r.db.WithContext(ctx).
		Joins("JOIN event_race_types ert ON ert.race_type_id = race_types.id").
		Where("ert.event_id = ?", eventID).
		Order("race_types.distance_km ASC, race_types.id ASC").
		Find(&races).Error
	return races, err
}

func (r *eventRepository) UpdateImage(ctx context.Context, id uint, imagePath string) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("image_path", imagePath).Error
}
