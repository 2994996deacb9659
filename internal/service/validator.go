package service

import (
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
)

// Eligibility is everything the registration rules look at.
// Event.RaceTypes must be loaded.
type Eligibility struct {
	Event             *models.Event
	RaceTypeID        uint
	AlreadyRegistered bool
	Now               time.Time
}

// ValidateRegistration applies the registration rules in order and returns
// the first rejection, or nil to accept. Prior registrations count as
// duplicates whether or not they are still active.
func ValidateRegistration(in Eligibility) error {
	if in.Event == nil {
		return ErrEventNotFound
	}
	if !in.Event.StartAt.After(in.Now) {
		return ErrEventClosed
	}
	if !in.Event.HasRaceType(in.RaceTypeID) {
		return ErrRaceNotInEvent
	}
	if in.AlreadyRegistered {
		return ErrDuplicateRegistration
	}
	return nil
}

// CanToggle reports whether the owner may still flip a registration of event.
func CanToggle(event *models.Event, now time.Time) error {
	if !event.StartAt.After(now) {
		return ErrEventAlreadyStarted
	}
	return nil
}
