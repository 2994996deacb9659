package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them so
// handlers can map by kind with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrPersistence     = errors.New("storage failure")
	ErrExternalService = errors.New("external service unavailable")
)

var (
	ErrEventClosed           = fmt.Errorf("%w: registration for this event is closed", ErrValidation)
	ErrRaceNotInEvent        = fmt.Errorf("%w: race type is not part of this event", ErrValidation)
	ErrDuplicateRegistration = fmt.Errorf("%w: already registered for this race in this event", ErrValidation)
	ErrEventAlreadyStarted   = fmt.Errorf("%w: event has already started", ErrValidation)
	ErrEventFull             = fmt.Errorf("%w: event has no free slots", ErrValidation)
	ErrInvalidInput          = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrUserExists            = fmt.Errorf("%w: username or email is already taken", ErrValidation)

	ErrNotOwner = fmt.Errorf("%w: registration belongs to another user", ErrForbidden)

	ErrEventNotFound        = fmt.Errorf("%w: event", ErrNotFound)
	ErrRaceTypeNotFound     = fmt.Errorf("%w: race type", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("%w: registration", ErrNotFound)
	ErrLocationNotFound     = fmt.Errorf("%w: location", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrOrganizerNotFound    = fmt.Errorf("%w: organizer", ErrNotFound)
	ErrDocumentNotFound     = fmt.Errorf("%w: document", ErrNotFound)
)

// persistence wraps a storage error so callers see ErrPersistence while the
// original cause stays available for logging.
func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// ErrInvalidCredentials does not say which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")
