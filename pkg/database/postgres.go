package database

import (
	"fmt"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	return db, nil
}

// Migrate creates tables in dependency order. The unique index on
// registrations(user_id, event_id, race_type_id) comes from the model tags
// and covers inactive rows too.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.RaceType{},
		&models.Event{},
		&models.ScheduleItem{},
		&models.Organizer{},
		&models.Registration{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := db.Exec(`
		DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'events_total_slots_positive') THEN
				ALTER TABLE events ADD CONSTRAINT events_total_slots_positive CHECK (total_slots > 0);
			END IF;
		END $$`).Error; err != nil {
		return fmt.Errorf("events constraint: %w", err)
	}
	return nil
}
