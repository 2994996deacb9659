package models

import "time"

type TShirtSize string

const (
	SizeSmall  TShirtSize = "S"
	SizeMedium TShirtSize = "M"
	SizeLarge  TShirtSize = "L"
)

func (s TShirtSize) Valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

type Registration struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex:idx_registration_triple" json:"user_id"`
	EventID          uint       `gorm:"not null;uniqueIndex:idx_registration_triple;index" json:"event_id"`
	RaceTypeID       uint       `gorm:"not null;uniqueIndex:idx_registration_triple" json:"race_type_id"`
	PaymentDocument  string     `gorm:"not null" json:"payment_document"`
	PhoneNumber      string     `gorm:"type:varchar(32)" json:"phone_number,omitempty"`
	DateOfBirth      time.Time  `gorm:"type:date;not null" json:"date_of_birth"`
	City             string     `gorm:"not null" json:"city"`
	Club             string     `json:"club,omitempty"`
	TShirtSize       TShirtSize `gorm:"type:varchar(3);not null" json:"tshirt_size"`
	PaymentConfirmed bool       `gorm:"not null;default:false" json:"payment_confirmed"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	RegisteredAt     time.Time  `gorm:"autoCreateTime" json:"registered_at"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event    *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	RaceType *RaceType `gorm:"foreignKey:RaceTypeID" json:"race_type,omitempty"`
}
