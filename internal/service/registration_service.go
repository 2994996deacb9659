package service

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/notify"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/storage"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const RegistrationsPerPage = 5

// DocumentStore persists uploaded files: payment documents, event images and
// profile photos.
type DocumentStore interface {
	Save(relPath string, r io.Reader) error
	Open(relPath string) (io.ReadCloser, error)
	Remove(relPath string) error
}

// Document is an opened stored file. The caller closes Body.
type Document struct {
	Name string
	Body io.ReadCloser
}

type RegisterInput struct {
	UserID       uint
	EventID      uint
	RaceTypeID   uint
	PhoneNumber  string
	DateOfBirth  time.Time
	City         string
	Club         string
	TShirtSize   models.TShirtSize
	Document     io.Reader
	DocumentName string
}

// Viewer identifies who is looking at an event's registrations.
// UserID is zero for anonymous requests.
type Viewer struct {
	UserID uint
	Admin  bool
}

type RaceGroup struct {
	RaceType      models.RaceType       `json:"race_type"`
	Registrations []models.Registration `json:"registrations"`
}

// EventRegistrations is an event's registrant list. Full is set for admins and
// the event's organizers; everyone else gets the public fields only.
type EventRegistrations struct {
	Event      *models.Event `json:"event"`
	FreeSlots  int           `json:"free_slots"`
	ActiveOnly bool          `json:"active_only"`
	Full       bool          `json:"full"`
	Groups     []RaceGroup   `json:"groups"`
}

type RegistrationOptions struct {
	EnforceCapacity  bool
	PublicActiveOnly bool
	PhoneRegion      string
	Now              func() time.Time
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Registration, error)
	Toggle(ctx context.Context, id, userID uint) (*models.Registration, error)
	Get(ctx context.Context, id, userID uint) (*models.Registration, error)
	ListByUser(ctx context.Context, userID uint, page int) (*Page[models.Registration], error)
	ListByEvent(ctx context.Context, slug string, viewer Viewer) (*EventRegistrations, error)
	PaymentDocument(ctx context.Context, id uint, viewer Viewer) (*Document, error)
	ConfirmPayment(ctx context.Context, id uint, confirmed bool) (*models.Registration, error)
}

type registrationService struct {
	regRepo       repository.RegistrationRepository
	eventRepo     repository.EventRepository
	organizerRepo repository.OrganizerRepository
	userRepo      repository.UserRepository
	capacity      CapacityService
	docs          DocumentStore
	notifier      notify.Notifier
	logger        *zap.Logger
	opts          RegistrationOptions
}

func NewRegistrationService(
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	organizerRepo repository.OrganizerRepository,
	userRepo repository.UserRepository,
	docs DocumentStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	opts RegistrationOptions,
) RegistrationService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &registrationService{
		regRepo:       regRepo,
		eventRepo:     eventRepo,
		organizerRepo: organizerRepo,
		userRepo:      userRepo,
		capacity:      NewCapacityService(regRepo),
		docs:          docs,
		notifier:      notifier,
		logger:        logger,
		opts:          opts,
	}
}

func (s *registrationService) Register(ctx context.Context, in RegisterInput) (*models.Registration, error) {
	phone, err := s.checkInput(&in)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	var (
		result  *models.Registration
		docPath string
	)

	err = s.regRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// Lock the event row so concurrent registrations for it serialize.
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, in.EventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound, "lock event")
		}
		if err := s.eventRepo.LoadRaceTypes(ctx, tx, event); err != nil {
			return persistence("load race types", err)
		}

		exists, err := s.regRepo.ExistsForTriple(ctx, tx, in.UserID, in.EventID, in.RaceTypeID)
		if err != nil {
			return persistence("check duplicate registration", err)
		}

		if err := ValidateRegistration(Eligibility{
			Event:             event,
			RaceTypeID:        in.RaceTypeID,
			AlreadyRegistered: exists,
			Now:               now,
		}); err != nil {
			return err
		}

		if s.opts.EnforceCapacity {
			if err := s.ensureFreeSlot(ctx, tx, event); err != nil {
				return err
			}
		}

		docPath = storage.PaymentDocumentPath(event.Slug, in.DocumentName)
		if err := s.docs.Save(docPath, in.Document); err != nil {
			return persistence("save payment document", err)
		}

		reg := &models.Registration{
			UserID:          in.UserID,
			EventID:         in.EventID,
			RaceTypeID:      in.RaceTypeID,
			PaymentDocument: docPath,
			PhoneNumber:     phone,
			DateOfBirth:     in.DateOfBirth,
			City:            in.City,
			Club:            in.Club,
			TShirtSize:      in.TShirtSize,
			IsActive:        true,
		}
		if err := s.regRepo.Create(ctx, tx, reg); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRegistration
			}
			return persistence("create registration", err)
		}

		reg.Event = event
		reg.RaceType = raceTypeOf(event, in.RaceTypeID)
		result = reg
		return nil
	})
	if err != nil {
		if docPath != "" {
			if rmErr := s.docs.Remove(docPath); rmErr != nil {
				s.logger.Warn("failed to remove orphaned payment document",
					zap.String("path", docPath), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	s.logger.Info("registration created",
		zap.Uint("registration_id", result.ID),
		zap.Uint("user_id", result.UserID),
		zap.Uint("event_id", result.EventID),
		zap.Uint("race_type_id", result.RaceTypeID),
	)
	s.publish(ctx, notify.RegistrationCreated, result)
	return result, nil
}

func (s *registrationService) Toggle(ctx context.Context, id, userID uint) (*models.Registration, error) {
	var result *models.Registration

	err := s.regRepo.Transaction(ctx, func(tx *gorm.DB) error {
		current, err := s.regRepo.FindByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, ErrRegistrationNotFound, "find registration")
		}
		if current.UserID != userID {
			return ErrNotOwner
		}

		// Event first, then the registration: the same lock order as Register.
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, current.EventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound, "lock event")
		}
		if err := CanToggle(event, s.opts.Now()); err != nil {
			return err
		}

		// Re-read under the lock: the flip starts from the latest committed state.
		reg, err := s.regRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, ErrRegistrationNotFound, "lock registration")
		}

		active := !reg.IsActive
		if active && s.opts.EnforceCapacity {
			if err := s.ensureFreeSlot(ctx, tx, event); err != nil {
				return err
			}
		}
		if err := s.regRepo.SetActive(ctx, tx, reg.ID, active); err != nil {
			return persistence("toggle registration", err)
		}

		reg.IsActive = active
		reg.Event = event
		result = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration toggled",
		zap.Uint("registration_id", result.ID),
		zap.Bool("active", result.IsActive),
	)
	s.publish(ctx, notify.RegistrationToggled, result)
	return result, nil
}

// Get hides registrations of other users behind ErrRegistrationNotFound.
func (s *registrationService) Get(ctx context.Context, id, userID uint) (*models.Registration, error) {
	reg, err := s.regRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound, "find registration")
	}
	if reg.UserID != userID {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *registrationService) ListByUser(ctx context.Context, userID uint, page int) (*Page[models.Registration], error) {
	page, offset := pageBounds(page, RegistrationsPerPage)
	regs, total, err := s.regRepo.ListByUser(ctx, userID, offset, RegistrationsPerPage)
	if err != nil {
		return nil, persistence("list user registrations", err)
	}
	return newPage(regs, page, RegistrationsPerPage, total), nil
}

func (s *registrationService) ListByEvent(ctx context.Context, slug string, viewer Viewer) (*EventRegistrations, error) {
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}

	privileged, err := s.privileged(ctx, viewer, event.ID)
	if err != nil {
		return nil, err
	}
	activeOnly := s.opts.PublicActiveOnly && !privileged

	regs, err := s.regRepo.ListByEvent(ctx, event.ID, activeOnly)
	if err != nil {
		return nil, persistence("list event registrations", err)
	}
	free, err := s.capacity.FreeSlots(ctx, event)
	if err != nil {
		return nil, err
	}

	return &EventRegistrations{
		Event:      event,
		FreeSlots:  free,
		ActiveOnly: activeOnly,
		Full:       privileged,
		Groups:     groupByRace(event.RaceTypes, regs),
	}, nil
}

// PaymentDocument opens the receipt for the registration's owner, an admin or
// one of the event's organizers. Anyone else gets ErrRegistrationNotFound.
func (s *registrationService) PaymentDocument(ctx context.Context, id uint, viewer Viewer) (*Document, error) {
	if viewer.UserID == 0 {
		return nil, ErrRegistrationNotFound
	}
	reg, err := s.regRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound, "find registration")
	}
	if reg.UserID != viewer.UserID {
		allowed, err := s.privileged(ctx, viewer, reg.EventID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRegistrationNotFound
		}
	}
	if reg.PaymentDocument == "" {
		return nil, ErrDocumentNotFound
	}

	body, err := s.docs.Open(reg.PaymentDocument)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}
		return nil, persistence("open payment document", err)
	}
	return &Document{Name: path.Base(reg.PaymentDocument), Body: body}, nil
}

func (s *registrationService) ConfirmPayment(ctx context.Context, id uint, confirmed bool) (*models.Registration, error) {
	if err := s.regRepo.SetPaymentConfirmed(ctx, nil, id, confirmed); err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound, "confirm payment")
	}
	reg, err := s.regRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound, "find registration")
	}

	s.logger.Info("payment confirmation changed",
		zap.Uint("registration_id", reg.ID),
		zap.Bool("confirmed", reg.PaymentConfirmed),
	)
	return reg, nil
}

// privileged reports whether viewer sees the full registrant list of the event.
func (s *registrationService) privileged(ctx context.Context, viewer Viewer, eventID uint) (bool, error) {
	if viewer.Admin {
		return true, nil
	}
	if viewer.UserID == 0 {
		return false, nil
	}
	organizer, err := s.organizerRepo.IsOrganizer(ctx, viewer.UserID, eventID)
	if err != nil {
		return false, persistence("check organizer", err)
	}
	return organizer, nil
}

// groupByRace keeps the event's race type order. Registrations for a race
// type no longer attached to the event get a trailing group of their own.
func groupByRace(races []models.RaceType, regs []models.Registration) []RaceGroup {
	groups := make([]RaceGroup, 0, len(races))
	index := make(map[uint]int, len(races))
	for _, rt := range races {
		index[rt.ID] = len(groups)
		groups = append(groups, RaceGroup{RaceType: rt, Registrations: []models.Registration{}})
	}
	for _, reg := range regs {
		i, ok := index[reg.RaceTypeID]
		if !ok {
			rt := models.RaceType{ID: reg.RaceTypeID}
			if reg.RaceType != nil {
				rt = *reg.RaceType
			}
			i = len(groups)
			index[reg.RaceTypeID] = i
			groups = append(groups, RaceGroup{RaceType: rt})
		}
		groups[i].Registrations = append(groups[i].Registrations, reg)
	}
	return groups
}

func (s *registrationService) ensureFreeSlot(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	active, err := s.regRepo.CountActive(ctx, tx, event.ID)
	if err != nil {
		return persistence("count active registrations", err)
	}
	if FreeSlots(event.TotalSlots, active) <= 0 {
		return ErrEventFull
	}
	return nil
}

// publish runs after commit; its failures never reach the caller.
func (s *registrationService) publish(ctx context.Context, kind notify.Kind, reg *models.Registration) {
	free := 0
	if reg.Event != nil {
		var err error
		if free, err = s.capacity.FreeSlots(ctx, reg.Event); err != nil {
			s.logger.Warn("free slots unavailable for notification", zap.Error(err))
		}
	}
	if reg.User == nil && s.userRepo != nil {
		if user, err := s.userRepo.FindByID(ctx, reg.UserID); err == nil {
			reg.User = user
		}
	}

	n := notify.FromRegistration(kind, reg, free, s.opts.Now())
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed",
			zap.String("kind", string(kind)),
			zap.Uint("registration_id", reg.ID),
			zap.Error(err),
		)
	}
}

// checkInput normalizes the free-form fields and returns the phone number in E.164.
func (s *registrationService) checkInput(in *RegisterInput) (string, error) {
	if in.UserID == 0 {
		return "", invalid("user is required")
	}
	if in.EventID == 0 || in.RaceTypeID == 0 {
		return "", invalid("event and race type are required")
	}
	if in.Document == nil || strings.TrimSpace(in.DocumentName) == "" {
		return "", invalid("payment document is required")
	}
	if !in.TShirtSize.Valid() {
		return "", invalid("t-shirt size must be one of S, M, L")
	}
	if in.DateOfBirth.IsZero() || !in.DateOfBirth.Before(s.opts.Now()) {
		return "", invalid("date of birth must be in the past")
	}
	in.City = strings.TrimSpace(in.City)
	if in.City == "" {
		return "", invalid("city is required")
	}
	in.Club = strings.TrimSpace(in.Club)
	return normalizePhone(in.PhoneNumber, s.opts.PhoneRegion)
}

func normalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", invalid("phone number is not valid")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func raceTypeOf(event *models.Event, id uint) *models.RaceType {
	for i := range event.RaceTypes {
		if event.RaceTypes[i].ID == id {
			return &event.RaceTypes[i]
		}
	}
	return nil
}

// notFoundOr maps gorm's missing-row error to notFound and anything else to a persistence error.
func notFoundOr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return persistence(op, err)
}
