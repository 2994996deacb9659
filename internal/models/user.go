package models

import (
	"strings"
	"time"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	PhotoPath string     `json:"photo_path,omitempty"`
	IsAdmin   bool       `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time  `json:"created_at"`
}

// DisplayName falls back to the username when no full name is set.
func (u *User) DisplayName() string {
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Username
}
