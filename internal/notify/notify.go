// Package notify delivers registration lifecycle signals to downstream sinks.
// Delivery is best-effort: sinks report errors, callers log and move on.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
)

type Kind string

const (
	RegistrationCreated Kind = "registration.created"
	RegistrationToggled Kind = "registration.toggled"
)

type Notification struct {
	Kind           Kind      `json:"kind"`
	RegistrationID uint      `json:"registration_id"`
	UserID         uint      `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	UserEmail      string    `json:"user_email,omitempty"`
	EventID        uint      `json:"event_id"`
	EventTitle     string    `json:"event_title"`
	EventSlug      string    `json:"event_slug"`
	EventStartAt   time.Time `json:"event_start_at"`
	RaceTypeID     uint      `json:"race_type_id"`
	RaceLabel      string    `json:"race_label"`
	Active         bool      `json:"active"`
	FreeSlots      int       `json:"free_slots"`
	At             time.Time `json:"at"`
}

// FromRegistration builds a notification; Event, RaceType and User may be nil.
func FromRegistration(kind Kind, reg *models.Registration, freeSlots int, at time.Time) Notification {
	n := Notification{
		Kind:           kind,
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		EventID:        reg.EventID,
		RaceTypeID:     reg.RaceTypeID,
		Active:         reg.IsActive,
		FreeSlots:      freeSlots,
		At:             at,
	}
	if reg.Event != nil {
		n.EventTitle = reg.Event.Title
		n.EventSlug = reg.Event.Slug
		n.EventStartAt = reg.Event.StartAt
	}
	if reg.RaceType != nil {
		n.RaceLabel = reg.RaceType.Label()
	}
	if reg.User != nil {
		n.UserName = reg.User.DisplayName()
		n.UserEmail = reg.User.Email
	}
	return n
}

// Summary is the one-line text used by human-facing sinks.
func (n Notification) Summary() string {
	switch n.Kind {
	case RegistrationCreated:
		return fmt.Sprintf("New registration #%d: %s, %s (%s). Free slots: %d",
			n.RegistrationID, n.EventTitle, n.RaceLabel, n.who(), n.FreeSlots)
	case RegistrationToggled:
		state := "cancelled"
		if n.Active {
			state = "restored"
		}
		return fmt.Sprintf("Registration #%d %s: %s, %s (%s). Free slots: %d",
			n.RegistrationID, state, n.EventTitle, n.RaceLabel, n.who(), n.FreeSlots)
	default:
		return fmt.Sprintf("%s: registration #%d", n.Kind, n.RegistrationID)
	}
}

func (n Notification) who() string {
	if n.UserName != "" {
		return n.UserName
	}
	return fmt.Sprintf("user %d", n.UserID)
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

