package service

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/Eursukkul/race-registration/internal/geocode"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/notify"
	"github.com/Eursukkul/race-registration/internal/repository"
	"gorm.io/gorm"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn        func(ctx context.Context, event *models.Event) error
	findByIDFn      func(ctx context.Context, id uint) (*models.Event, error)
	findBySlugFn    func(ctx context.Context, slug string) (*models.Event, error)
	forUpdateFn     func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	loadRaceTypesFn func(ctx context.Context, tx *gorm.DB, event *models.Event) error
	listFn          func(ctx context.Context, filter repository.EventFilter, now time.Time, offset, limit int) ([]models.Event, int64, error)
	raceTypesFn     func(ctx context.Context, eventID uint) ([]models.RaceType, error)
	updateImageFn   func(ctx context.Context, id uint, imagePath string) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return m.findBySlugFn(ctx, slug)
}
func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return m.forUpdateFn(ctx, tx, id)
}
func (m *mockEventRepo) LoadRaceTypes(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if m.loadRaceTypesFn == nil {
		return nil
	}
	return m.loadRaceTypesFn(ctx, tx, event)
}
func (m *mockEventRepo) List(ctx context.Context, filter repository.EventFilter, now time.Time, offset, limit int) ([]models.Event, int64, error) {
	return m.listFn(ctx, filter, now, offset, limit)
}
func (m *mockEventRepo) RaceTypes(ctx context.Context, eventID uint) ([]models.RaceType, error) {
	return m.raceTypesFn(ctx, eventID)
}
func (m *mockEventRepo) UpdateImage(ctx context.Context, id uint, imagePath string) error {
	return m.updateImageFn(ctx, id, imagePath)
}

// --- Mock RegistrationRepository ---

// mockRegRepo runs Transaction callbacks with a nil tx.
type mockRegRepo struct {
	createFn      func(ctx context.Context, tx *gorm.DB, reg *models.Registration) error
	findByIDFn    func(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	lockFn        func(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	existsFn      func(ctx context.Context, tx *gorm.DB, userID, eventID, raceTypeID uint) (bool, error)
	countActiveFn func(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	setActiveFn   func(ctx context.Context, tx *gorm.DB, id uint, active bool) error
	setPaymentFn  func(ctx context.Context, tx *gorm.DB, id uint, confirmed bool) error
	listByUserFn  func(ctx context.Context, userID uint, offset, limit int) ([]models.Registration, int64, error)
	listByEventFn func(ctx context.Context, eventID uint, activeOnly bool) ([]models.Registration, error)
	exportFn      func(ctx context.Context, eventID *uint) ([]models.Registration, error)
}

func (m *mockRegRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (m *mockRegRepo) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	return m.createFn(ctx, tx, reg)
}
func (m *mockRegRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	return m.findByIDFn(ctx, tx, id)
}
func (m *mockRegRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	if m.lockFn == nil {
		return m.findByIDFn(ctx, tx, id)
	}
	return m.lockFn(ctx, tx, id)
}
func (m *mockRegRepo) ExistsForTriple(ctx context.Context, tx *gorm.DB, userID, eventID, raceTypeID uint) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(ctx, tx, userID, eventID, raceTypeID)
}
func (m *mockRegRepo) CountActive(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	if m.countActiveFn == nil {
		return 0, nil
	}
	return m.countActiveFn(ctx, tx, eventID)
}
func (m *mockRegRepo) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	return m.setActiveFn(ctx, tx, id, active)
}
func (m *mockRegRepo) SetPaymentConfirmed(ctx context.Context, tx *gorm.DB, id uint, confirmed bool) error {
	return m.setPaymentFn(ctx, tx, id, confirmed)
}
func (m *mockRegRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Registration, int64, error) {
	return m.listByUserFn(ctx, userID, offset, limit)
}
func (m *mockRegRepo) ListByEvent(ctx context.Context, eventID uint, activeOnly bool) ([]models.Registration, error) {
	return m.listByEventFn(ctx, eventID, activeOnly)
}
func (m *mockRegRepo) ListActiveForExport(ctx context.Context, eventID *uint) ([]models.Registration, error) {
	return m.exportFn(ctx, eventID)
}

// --- Mock catalog repositories ---

type mockOrganizerRepo struct {
	createFn      func(ctx context.Context, org *models.Organizer) error
	findByIDFn    func(ctx context.Context, id uint) (*models.Organizer, error)
	attachFn      func(ctx context.Context, organizerID uint, eventIDs []uint) error
	isOrganizerFn func(ctx context.Context, userID, eventID uint) (bool, error)
}

func (m *mockOrganizerRepo) Create(ctx context.Context, org *models.Organizer) error {
	return m.createFn(ctx, org)
}
func (m *mockOrganizerRepo) FindByID(ctx context.Context, id uint) (*models.Organizer, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockOrganizerRepo) AttachEvents(ctx context.Context, organizerID uint, eventIDs []uint) error {
	return m.attachFn(ctx, organizerID, eventIDs)
}

func (m *mockOrganizerRepo) IsOrganizer(ctx context.Context, userID, eventID uint) (bool, error) {
	return m.isOrganizerFn(ctx, userID, eventID)
}

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn         func(ctx context.Context, user *models.User) error
	updateProfileFn  func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.findByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findByUsernameFn(ctx, username)
}
func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.createFn(ctx, user)
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.updateProfileFn(ctx, user)
}
func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) error { return nil }

type mockRaceTypeRepo struct {
	createFn    func(ctx context.Context, rt *models.RaceType) error
	findByIDsFn func(ctx context.Context, ids []uint) ([]models.RaceType, error)
}

func (m *mockRaceTypeRepo) Create(ctx context.Context, rt *models.RaceType) error {
	return m.createFn(ctx, rt)
}
func (m *mockRaceTypeRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.RaceType, error) {
	return m.findByIDsFn(ctx, ids)
}

type mockLocationRepo struct {
	createFn   func(ctx context.Context, loc *models.Location) error
	findByIDFn func(ctx context.Context, id uint) (*models.Location, error)
}

func (m *mockLocationRepo) Create(ctx context.Context, loc *models.Location) error {
	return m.createFn(ctx, loc)
}
func (m *mockLocationRepo) FindByID(ctx context.Context, id uint) (*models.Location, error) {
	return m.findByIDFn(ctx, id)
}

type mockReviewRepo struct {
	createFn      func(ctx context.Context, review *models.Review) error
	listByEventFn func(ctx context.Context, eventID uint) ([]models.Review, error)
	latestFn      func(ctx context.Context, limit int) ([]models.Review, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return m.createFn(ctx, review)
}
func (m *mockReviewRepo) ListByEvent(ctx context.Context, eventID uint) ([]models.Review, error) {
	return m.listByEventFn(ctx, eventID)
}
func (m *mockReviewRepo) Latest(ctx context.Context, limit int) ([]models.Review, error) {
	return m.latestFn(ctx, limit)
}

// --- Fakes ---

type fakeDocs struct {
	saved   map[string]string
	removed []string
	saveErr error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{saved: map[string]string{}}
}

func (f *fakeDocs) Save(relPath string, r io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.saved[relPath] = string(b)
	return nil
}

func (f *fakeDocs) Open(relPath string) (io.ReadCloser, error) {
	content, ok := f.saved[relPath]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeDocs) Remove(relPath string) error {
	f.removed = append(f.removed, relPath)
	delete(f.saved, relPath)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

type fakeGeocoder struct {
	point *geocode.Point
	err   error
	calls int
}

func (f *fakeGeocoder) Lookup(ctx context.Context, addr geocode.Address) (*geocode.Point, error) {
	f.calls++
	return f.point, f.err
}
