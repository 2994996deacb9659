package models

import "time"

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Event  *Event `gorm:"foreignKey:EventID" json:"-"`
}
