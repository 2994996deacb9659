package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Eursukkul/race-registration/internal/geocode"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/storage"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EventsPerPage = 6

var allowedDistances = map[int]bool{5: true, 10: true, 15: true, 20: true}

type Geocoder interface {
	Lookup(ctx context.Context, addr geocode.Address) (*geocode.Point, error)
}

type EventSummary struct {
	models.Event
	FreeSlots int `json:"free_slots"`
}

type EventDetail struct {
	*models.Event
	FreeSlots int `json:"free_slots"`
	DaysLeft  int `json:"days_left"`
}

type ScheduleInput struct {
	StartTime   string
	Description string
}

type CreateEventInput struct {
	Title       string
	Slug        string
	Description string
	Rules       string
	Type        models.EventType
	StartAt     time.Time
	TotalSlots  int
	LocationID  uint
	RaceTypeIDs []uint
	Schedule    []ScheduleInput
}

type EventService interface {
	ListEvents(ctx context.Context, filter repository.EventFilter, page int) (*Page[EventSummary], error)
	GetEvent(ctx context.Context, slug string) (*EventDetail, error)
	RaceTypesForEvent(ctx context.Context, eventID uint) ([]models.RaceType, error)
	CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error)
	CreateLocation(ctx context.Context, loc *models.Location) error
	CreateRaceType(ctx context.Context, rt *models.RaceType) error
	SetImage(ctx context.Context, eventID uint, filename string, r io.Reader) (*models.Event, error)
}

type eventService struct {
	eventRepo    repository.EventRepository
	raceTypeRepo repository.RaceTypeRepository
	locationRepo repository.LocationRepository
	capacity     CapacityService
	geocoder     Geocoder
	images       DocumentStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewEventService(
	eventRepo repository.EventRepository,
	raceTypeRepo repository.RaceTypeRepository,
	locationRepo repository.LocationRepository,
	capacity CapacityService,
	geocoder Geocoder,
	images DocumentStore,
	logger *zap.Logger,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		raceTypeRepo: raceTypeRepo,
		locationRepo: locationRepo,
		capacity:     capacity,
		geocoder:     geocoder,
		images:       images,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter repository.EventFilter, page int) (*Page[EventSummary], error) {
	switch filter {
	case repository.FilterAll, repository.FilterUpcoming, repository.FilterPast:
	case "":
		filter = repository.FilterUpcoming
	default:
		return nil, invalid("filter must be one of upcoming, past, all")
	}

	page, offset := pageBounds(page, EventsPerPage)
	events, total, err := s.eventRepo.List(ctx, filter, startOfDay(s.now()), offset, EventsPerPage)
	if err != nil {
		return nil, persistence("list events", err)
	}

	items := make([]EventSummary, 0, len(events))
	for i := range events {
		free, err := s.capacity.FreeSlots(ctx, &events[i])
		if err != nil {
			return nil, err
		}
		items = append(items, EventSummary{Event: events[i], FreeSlots: free})
	}
	return newPage(items, page, EventsPerPage, total), nil
}

func (s *eventService) GetEvent(ctx context.Context, slug string) (*EventDetail, error) {
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}
	free, err := s.capacity.FreeSlots(ctx, event)
	if err != nil {
		return nil, err
	}
	return &EventDetail{Event: event, FreeSlots: free, DaysLeft: event.DaysLeft(s.now())}, nil
}

func (s *eventService) RaceTypesForEvent(ctx context.Context, eventID uint) ([]models.RaceType, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}
	races, err := s.eventRepo.RaceTypes(ctx, eventID)
	if err != nil {
		return nil, persistence("list race types", err)
	}
	return races, nil
}

func (s *eventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return nil, invalid("title is required")
	case !in.Type.Valid():
		return nil, invalid("event type must be one of trail, cross, mountain, road")
	case in.TotalSlots <= 0:
		return nil, invalid("total slots must be positive")
	case in.StartAt.IsZero():
		return nil, invalid("start time is required")
	case len(in.RaceTypeIDs) == 0:
		return nil, invalid("at least one race type is required")
	}

	eventSlug := slug.Make(in.Slug)
	if eventSlug == "" {
		eventSlug = slug.Make(in.Title)
	}

	if _, err := s.locationRepo.FindByID(ctx, in.LocationID); err != nil {
		return nil, notFoundOr(err, ErrLocationNotFound, "find location")
	}

	ids := uniqueIDs(in.RaceTypeIDs)
	races, err := s.raceTypeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, persistence("find race types", err)
	}
	if len(races) != len(ids) {
		return nil, ErrRaceTypeNotFound
	}

	schedule := make([]models.ScheduleItem, 0, len(in.Schedule))
	for _, item := range in.Schedule {
		if _, err := time.Parse("15:04", item.StartTime); err != nil {
			return nil, invalid("schedule start time must be HH:MM")
		}
		schedule = append(schedule, models.ScheduleItem{StartTime: item.StartTime, Description: item.Description})
	}

	event := &models.Event{
		Title:       in.Title,
		Slug:        eventSlug,
		Description: in.Description,
		Rules:       in.Rules,
		Type:        in.Type,
		StartAt:     in.StartAt,
		TotalSlots:  in.TotalSlots,
		LocationID:  in.LocationID,
		RaceTypes:   races,
		Schedule:    schedule,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("an event with slug " + eventSlug + " already exists")
		}
		return nil, persistence("create event", err)
	}

	s.logger.Info("event created", zap.Uint("event_id", event.ID), zap.String("slug", event.Slug))
	return event, nil
}

// CreateLocation geocodes the address when coordinates are missing. A failed
// lookup is logged and the location is saved without coordinates.
func (s *eventService) CreateLocation(ctx context.Context, loc *models.Location) error {
	if strings.TrimSpace(loc.Street) == "" || strings.TrimSpace(loc.City) == "" || strings.TrimSpace(loc.Country) == "" {
		return invalid("street, city and country are required")
	}
	if len(loc.PostalCode) > 6 {
		return invalid("postal code must be at most 6 characters")
	}

	if !loc.HasCoordinates() && s.geocoder != nil {
		point, err := s.geocoder.Lookup(ctx, geocode.Address{
			Street:      loc.Street,
			HouseNumber: loc.HouseNumber,
			City:        loc.City,
			PostalCode:  loc.PostalCode,
			Country:     loc.Country,
		})
		switch {
		case err != nil:
			s.logger.Warn("geocoding failed", zap.String("address", loc.String()), zap.Error(err))
			loc.Latitude, loc.Longitude = nil, nil
		case point == nil:
			s.logger.Info("address not found by geocoder", zap.String("address", loc.String()))
			loc.Latitude, loc.Longitude = nil, nil
		default:
			loc.Latitude, loc.Longitude = &point.Lat, &point.Lon
		}
	}

	if err := s.locationRepo.Create(ctx, loc); err != nil {
		return persistence("create location", err)
	}
	return nil
}

func (s *eventService) CreateRaceType(ctx context.Context, rt *models.RaceType) error {
	switch {
	case !rt.Gender.Valid():
		return invalid("gender must be M or F")
	case !allowedDistances[rt.DistanceKm]:
		return invalid("distance must be one of 5, 10, 15, 20 km")
	case rt.MinAge < 0:
		return invalid("minimum age must not be negative")
	case rt.RegistrationFee < 0:
		return invalid("registration fee must not be negative")
	}
	if err := s.raceTypeRepo.Create(ctx, rt); err != nil {
		return persistence("create race type", err)
	}
	return nil
}

// SetImage stores the upload under events/image/<slug>/ and replaces the
// event's previous image.
func (s *eventService) SetImage(ctx context.Context, eventID uint, filename string, r io.Reader) (*models.Event, error) {
	if !storage.IsImage(filename) {
		return nil, invalid("image must be a jpg, png or webp file")
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound, "find event")
	}

	imagePath := storage.EventImagePath(event.Slug, filename)
	if err := s.images.Save(imagePath, r); err != nil {
		return nil, persistence("save event image", err)
	}
	if err := s.eventRepo.UpdateImage(ctx, event.ID, imagePath); err != nil {
		s.removeImage(imagePath)
		return nil, persistence("update event image", err)
	}
	if event.ImagePath != "" {
		s.removeImage(event.ImagePath)
	}

	event.ImagePath = imagePath
	s.logger.Info("event image updated", zap.Uint("event_id", event.ID), zap.String("path", imagePath))
	return event, nil
}

func (s *eventService) removeImage(relPath string) {
	if err := s.images.Remove(relPath); err != nil {
		s.logger.Warn("failed to remove event image", zap.String("path", relPath), zap.Error(err))
	}
}

// startOfDay truncates t to midnight in t's own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
