package models

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventTrail    EventType = "trail"
	EventCross    EventType = "cross"
	EventMountain EventType = "mountain"
	EventRoad     EventType = "road"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTrail, EventCross, EventMountain, EventRoad:
		return true
	}
	return false
}

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Rules       string    `gorm:"type:text;not null" json:"rules"`
	Type        EventType `gorm:"type:varchar(50);not null" json:"event_type"`
	StartAt     time.Time `gorm:"not null;index" json:"start_at"`
	TotalSlots  int       `gorm:"not null" json:"total_slots"`
	ImagePath   string    `json:"image_path,omitempty"`
	LocationID  uint      `gorm:"not null" json:"location_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Location  *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	RaceTypes []RaceType     `gorm:"many2many:event_race_types;" json:"race_types,omitempty"`
	Schedule  []ScheduleItem `gorm:"foreignKey:EventID" json:"schedule,omitempty"`
}

// HasRaceType reports whether raceTypeID is one of the event's race types.
// RaceTypes must be loaded.
func (e *Event) HasRaceType(raceTypeID uint) bool {
	for _, rt := range e.RaceTypes {
		if rt.ID == raceTypeID {
			return true
		}
	}
	return false
}

// DaysLeft counts calendar days between now and the event start.
func (e *Event) DaysLeft(now time.Time) int {
	y, m, d := e.StartAt.In(now.Location()).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(start.Sub(today).Hours() / 24)
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type RaceType struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Gender          Gender  `gorm:"type:varchar(1);not null" json:"gender"`
	MinAge          int     `gorm:"not null" json:"min_age"`
	DistanceKm      int     `gorm:"not null" json:"distance_km"`
	RegistrationFee float64 `gorm:"type:numeric(10,2);not null" json:"registration_fee"`
}

// Label is the human-readable race name used in lookups and exports.
func (r RaceType) Label() string {
	return fmt.Sprintf("%d km %s %d+ (fee %.2f)", r.DistanceKm, r.Gender, r.MinAge, r.RegistrationFee)
}

type Location struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Street      string   `gorm:"not null" json:"street"`
	HouseNumber string   `json:"house_number,omitempty"`
	City        string   `gorm:"not null" json:"city"`
	PostalCode  string   `gorm:"type:varchar(6);not null" json:"postal_code"`
	Country     string   `gorm:"not null" json:"country"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

func (l Location) String() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s", l.Street, l.HouseNumber, l.City, l.PostalCode, l.Country)
}

type ScheduleItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	EventID     uint   `gorm:"not null;index" json:"event_id"`
	StartTime   string `gorm:"type:varchar(5);not null" json:"start_time"`
	Description string `gorm:"not null" json:"description"`
}

type Organizer struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"not null;index" json:"user_id"`
	Contact        string `json:"contact"`
	PaymentDetails string `gorm:"type:text" json:"payment_details"`

	Events []Event `gorm:"many2many:organizer_events;" json:"-"`
}
