package handler

import (
	"context"
	"io"

	"github.com/Eursukkul/race-registration/internal/middleware"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = middleware.NewRequestValidator()
	return e
}

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	registerFn    func(ctx context.Context, in service.RegisterInput) (*models.Registration, error)
	toggleFn      func(ctx context.Context, id, userID uint) (*models.Registration, error)
	getFn         func(ctx context.Context, id, userID uint) (*models.Registration, error)
	listByUserFn  func(ctx context.Context, userID uint, page int) (*service.Page[models.Registration], error)
	listByEventFn func(ctx context.Context, slug string, viewer service.Viewer) (*service.EventRegistrations, error)
	documentFn    func(ctx context.Context, id uint, viewer service.Viewer) (*service.Document, error)
	confirmFn     func(ctx context.Context, id uint, confirmed bool) (*models.Registration, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, in service.RegisterInput) (*models.Registration, error) {
	return m.registerFn(ctx, in)
}
func (m *mockRegistrationService) Toggle(ctx context.Context, id, userID uint) (*models.Registration, error) {
	return m.toggleFn(ctx, id, userID)
}
func (m *mockRegistrationService) Get(ctx context.Context, id, userID uint) (*models.Registration, error) {
	return m.getFn(ctx, id, userID)
}
func (m *mockRegistrationService) ListByUser(ctx context.Context, userID uint, page int) (*service.Page[models.Registration], error) {
	return m.listByUserFn(ctx, userID, page)
}
func (m *mockRegistrationService) ListByEvent(ctx context.Context, slug string, viewer service.Viewer) (*service.EventRegistrations, error) {
	return m.listByEventFn(ctx, slug, viewer)
}
func (m *mockRegistrationService) PaymentDocument(ctx context.Context, id uint, viewer service.Viewer) (*service.Document, error) {
	return m.documentFn(ctx, id, viewer)
}
func (m *mockRegistrationService) ConfirmPayment(ctx context.Context, id uint, confirmed bool) (*models.Registration, error) {
	return m.confirmFn(ctx, id, confirmed)
}

// --- Mock EventService ---

type mockEventService struct {
	listFn           func(ctx context.Context, filter repository.EventFilter, page int) (*service.Page[service.EventSummary], error)
	getFn            func(ctx context.Context, slug string) (*service.EventDetail, error)
	raceTypesFn      func(ctx context.Context, eventID uint) ([]models.RaceType, error)
	createEventFn    func(ctx context.Context, in service.CreateEventInput) (*models.Event, error)
	createLocationFn func(ctx context.Context, loc *models.Location) error
	createRaceTypeFn func(ctx context.Context, rt *models.RaceType) error
	setImageFn       func(ctx context.Context, eventID uint, filename string, r io.Reader) (*models.Event, error)
}

func (m *mockEventService) ListEvents(ctx context.Context, filter repository.EventFilter, page int) (*service.Page[service.EventSummary], error) {
	return m.listFn(ctx, filter, page)
}
func (m *mockEventService) GetEvent(ctx context.Context, slug string) (*service.EventDetail, error) {
	return m.getFn(ctx, slug)
}
func (m *mockEventService) RaceTypesForEvent(ctx context.Context, eventID uint) ([]models.RaceType, error) {
	return m.raceTypesFn(ctx, eventID)
}
func (m *mockEventService) CreateEvent(ctx context.Context, in service.CreateEventInput) (*models.Event, error) {
	return m.createEventFn(ctx, in)
}
func (m *mockEventService) CreateLocation(ctx context.Context, loc *models.Location) error {
	return m.createLocationFn(ctx, loc)
}
func (m *mockEventService) CreateRaceType(ctx context.Context, rt *models.RaceType) error {
	return m.createRaceTypeFn(ctx, rt)
}
func (m *mockEventService) SetImage(ctx context.Context, eventID uint, filename string, r io.Reader) (*models.Event, error) {
	return m.setImageFn(ctx, eventID, filename, r)
}

// --- Mock ExportService ---

type mockExportService struct {
	csvFn    func(ctx context.Context, w io.Writer, eventID *uint) (int, error)
	sheetsFn func(ctx context.Context, eventID *uint) (int, error)
}

func (m *mockExportService) WriteCSV(ctx context.Context, w io.Writer, eventID *uint) (int, error) {
	return m.csvFn(ctx, w, eventID)
}
func (m *mockExportService) ExportSheets(ctx context.Context, eventID *uint) (int, error) {
	return m.sheetsFn(ctx, eventID)
}

// --- Mock ReviewService / AuthService ---

type mockReviewService struct {
	addFn    func(ctx context.Context, slug string, authorID uint, text string) (*models.Review, error)
	listFn   func(ctx context.Context, slug string) ([]models.Review, error)
	latestFn func(ctx context.Context) ([]models.Review, error)
}

func (m *mockReviewService) AddReview(ctx context.Context, slug string, authorID uint, text string) (*models.Review, error) {
	return m.addFn(ctx, slug, authorID, text)
}
func (m *mockReviewService) ListByEvent(ctx context.Context, slug string) ([]models.Review, error) {
	return m.listFn(ctx, slug)
}
func (m *mockReviewService) Latest(ctx context.Context) ([]models.Review, error) {
	return m.latestFn(ctx)
}

type mockAuthService struct {
	signupFn func(ctx context.Context, in service.SignupInput) (string, error)
	signinFn func(ctx context.Context, username, password string) (string, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in service.SignupInput) (string, error) {
	return m.signupFn(ctx, in)
}
func (m *mockAuthService) Signin(ctx context.Context, username, password string) (string, error) {
	return m.signinFn(ctx, username, password)
}

// --- Mock OrganizerService / ProfileService ---

type mockOrganizerService struct {
	createFn func(ctx context.Context, in service.CreateOrganizerInput) (*models.Organizer, error)
	attachFn func(ctx context.Context, organizerID uint, eventIDs []uint) (*models.Organizer, error)
}

func (m *mockOrganizerService) CreateOrganizer(ctx context.Context, in service.CreateOrganizerInput) (*models.Organizer, error) {
	return m.createFn(ctx, in)
}
func (m *mockOrganizerService) AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) (*models.Organizer, error) {
	return m.attachFn(ctx, organizerID, eventIDs)
}

type mockProfileService struct {
	profileFn func(ctx context.Context, userID uint) (*models.User, error)
	updateFn  func(ctx context.Context, in service.ProfileInput) (*models.User, error)
	photoFn   func(ctx context.Context, userID uint) (*service.Document, error)
}

func (m *mockProfileService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return m.profileFn(ctx, userID)
}
func (m *mockProfileService) UpdateProfile(ctx context.Context, in service.ProfileInput) (*models.User, error) {
	return m.updateFn(ctx, in)
}
func (m *mockProfileService) Photo(ctx context.Context, userID uint) (*service.Document, error) {
	return m.photoFn(ctx, userID)
}
