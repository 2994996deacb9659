package repository

import (
	"context"

	"github.com/Eursukkul/race-registration/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationRepository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	ExistsForTriple(ctx context.Context, tx *gorm.DB, userID, eventID, raceTypeID uint) (bool, error)
	CountActive(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error
	SetPaymentConfirmed(ctx context.Context, tx *gorm.DB, id uint, confirmed bool) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Registration, int64, error)
	ListByEvent(ctx context.Context, eventID uint, activeOnly bool) ([]models.Registration, error)
	ListActiveForExport(ctx context.Context, eventID *uint) ([]models.Registration, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// conn returns tx when the caller runs inside a transaction, the pool otherwise.
func (r *registrationRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *registrationRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	return r.conn(tx).WithContext(ctx).Omit("User", "Event", "RaceType").Create(reg).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.conn(tx).WithContext(ctx).
		Preload("Event").
		Preload("RaceType").
		First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByIDForUpdate reads the registration's latest committed state and locks
// the row until tx ends.
func (r *registrationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("RaceType").
		First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ExistsForTriple ignores is_active: a cancelled registration still blocks a new one.
func (r *registrationRepository) ExistsForTriple(ctx context.Context, tx *gorm.DB, userID, eventID, raceTypeID uint) (bool, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ? AND race_type_id = ?", userID, eventID, raceTypeID).
		Count(&count).Error
	return count > 0, err
}

func (r *registrationRepository) CountActive(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND is_active = ?", eventID, true).
		Count(&count).Error
	return count, err
}

func (r *registrationRepository) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	return r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// SetPaymentConfirmed returns gorm.ErrRecordNotFound when no registration has the id.
func (r *registrationRepository) SetPaymentConfirmed(ctx context.Context, tx *gorm.DB, id uint, confirmed bool) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Update("payment_confirmed", confirmed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Registration, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.Registration{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var regs []models.Registration
	err := q.Preload("Event").
		Preload("RaceType").
		Order("registered_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID uint, activeOnly bool) ([]models.Registration, error) {
	var regs []models.Registration
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("RaceType").
		Where("event_id = ?", eventID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("race_type_id ASC, registered_at ASC").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) ListActiveForExport(ctx context.Context, eventID *uint) ([]models.Registration, error) {
	var regs []models.Registration
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Preload("RaceType").
		Where("is_active = ?", true)
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	if err := q.Order("event_id ASC, race_type_id ASC, id ASC").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}
