package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/middleware"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registrationForm(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		fw, err := w.CreateFormFile("payment_document", "receipt.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF receipt"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"event_id":      "1",
		"race_type_id":  "10",
		"phone_number":  "+79123456789",
		"date_of_birth": "1990-05-17",
		"city":          "Kazan",
		"tshirt_size":   "M",
	}
}

func newRegisterContext(t *testing.T, fields map[string]string, withFile bool, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	body, contentType := registrationForm(t, fields, withFile)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	if userID != 0 {
		middleware.SetIdentity(c, userID, false)
	}
	return c, rec
}

func TestRegister_Handler_Success(t *testing.T) {
	svc := &mockRegistrationService{
		registerFn: func(ctx context.Context, in service.RegisterInput) (*models.Registration, error) {
			assert.Equal(t, uint(5), in.UserID)
			assert.Equal(t, uint(1), in.EventID)
			assert.Equal(t, uint(10), in.RaceTypeID)
			assert.Equal(t, models.SizeMedium, in.TShirtSize)
			assert.Equal(t, "1990-05-17", in.DateOfBirth.Format("2006-01-02"))
			assert.Equal(t, "receipt.pdf", in.DocumentName)
			content, err := io.ReadAll(in.Document)
			assert.NoError(t, err)
			assert.Equal(t, "%PDF receipt", string(content))

			return &models.Registration{
				ID:           7,
				UserID:       in.UserID,
				EventID:      in.EventID,
				RaceTypeID:   in.RaceTypeID,
				DateOfBirth:  in.DateOfBirth,
				City:         in.City,
				TShirtSize:   in.TShirtSize,
				IsActive:     true,
				RegisteredAt: time.Now(),
				Event:        &models.Event{Title: "Volga Cross", Slug: "volga-cross"},
				RaceType:     &models.RaceType{ID: 10, DistanceKm: 10, Gender: models.GenderFemale, MinAge: 18},
			}, nil
		},
	}
	c, rec := newRegisterContext(t, validFields(), true, 5)

	err := NewRegistrationHandler(svc).Register(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.ID)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "volga-cross", resp.EventSlug)
	assert.Equal(t, "1990-05-17", resp.DateOfBirth)
}

func TestRegister_Handler_Unauthenticated(t *testing.T) {
	c, _ := newRegisterContext(t, validFields(), true, 0)

	err := NewRegistrationHandler(&mockRegistrationService{}).Register(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRegister_Handler_MissingFile(t *testing.T) {
	c, _ := newRegisterContext(t, validFields(), false, 5)

	err := NewRegistrationHandler(&mockRegistrationService{}).Register(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRegister_Handler_InvalidForm(t *testing.T) {
	for _, field := range []string{"tshirt_size", "date_of_birth", "city", "event_id"} {
		t.Run(field, func(t *testing.T) {
			fields := validFields()
			switch field {
			case "tshirt_size":
				fields[field] = "XXL"
			case "date_of_birth":
				fields[field] = "17.05.1990"
			default:
				delete(fields, field)
			}
			c, _ := newRegisterContext(t, fields, true, 5)

			err := NewRegistrationHandler(&mockRegistrationService{}).Register(c)

			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Code)
		})
	}
}

func TestRegister_Handler_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrEventClosed, http.StatusBadRequest},
		{service.ErrRaceNotInEvent, http.StatusBadRequest},
		{service.ErrDuplicateRegistration, http.StatusConflict},
		{service.ErrEventFull, http.StatusBadRequest},
		{service.ErrEventNotFound, http.StatusNotFound},
		{service.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &mockRegistrationService{
				registerFn: func(ctx context.Context, in service.RegisterInput) (*models.Registration, error) {
					return nil, tt.err
				},
			}
			c, _ := newRegisterContext(t, validFields(), true, 5)

			err := NewRegistrationHandler(svc).Register(c)

			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.code, he.Code)
			if tt.code == http.StatusInternalServerError {
				assert.Equal(t, http.StatusText(http.StatusInternalServerError), he.Message)
			}
		})
	}
}

func newIDContext(method, target, id string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if userID != 0 {
		middleware.SetIdentity(c, userID, false)
	}
	return c, rec
}

func TestToggle_Handler_Success(t *testing.T) {
	svc := &mockRegistrationService{
		toggleFn: func(ctx context.Context, id, userID uint) (*models.Registration, error) {
			assert.Equal(t, uint(3), id)
			assert.Equal(t, uint(5), userID)
			return &models.Registration{ID: 3, UserID: 5, IsActive: false}, nil
		},
	}
	c, rec := newIDContext(http.MethodPost, "/api/v1/registrations/3/toggle", "3", 5)

	err := NewRegistrationHandler(svc).Toggle(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsActive)
}

func TestToggle_Handler_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrNotOwner, http.StatusForbidden},
		{service.ErrRegistrationNotFound, http.StatusNotFound},
		{service.ErrEventAlreadyStarted, http.StatusBadRequest},
	}
	for _, tt := range tests {
		svc := &mockRegistrationService{
			toggleFn: func(ctx context.Context, id, userID uint) (*models.Registration, error) { return nil, tt.err },
		}
		c, _ := newIDContext(http.MethodPost, "/api/v1/registrations/3/toggle", "3", 5)

		err := NewRegistrationHandler(svc).Toggle(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, tt.code, he.Code, tt.err.Error())
	}
}

func TestToggle_Handler_InvalidID(t *testing.T) {
	c, _ := newIDContext(http.MethodPost, "/api/v1/registrations/abc/toggle", "abc", 5)

	err := NewRegistrationHandler(&mockRegistrationService{}).Toggle(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGet_Handler_NotFound(t *testing.T) {
	svc := &mockRegistrationService{
		getFn: func(ctx context.Context, id, userID uint) (*models.Registration, error) {
			return nil, service.ErrRegistrationNotFound
		},
	}
	c, _ := newIDContext(http.MethodGet, "/api/v1/registrations/9", "9", 5)

	err := NewRegistrationHandler(svc).Get(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListMine_Handler(t *testing.T) {
	svc := &mockRegistrationService{
		listByUserFn: func(ctx context.Context, userID uint, page int) (*service.Page[models.Registration], error) {
			assert.Equal(t, 2, page)
			return &service.Page[models.Registration]{
				Items:   []models.Registration{{ID: 6}, {ID: 7}},
				Number:  2,
				PerPage: 5,
				Total:   7,
				Pages:   2,
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations?page=2", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	middleware.SetIdentity(c, 5, false)

	err := NewRegistrationHandler(svc).ListMine(c)

	require.NoError(t, err)
	var resp dto.PageResponse[dto.RegistrationResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, int64(7), resp.Total)
	assert.Len(t, resp.Items, 2)
}

func TestListEventRegistrations_Handler_PassesViewer(t *testing.T) {
	svc := &mockRegistrationService{
		listByEventFn: func(ctx context.Context, slug string, viewer service.Viewer) (*service.EventRegistrations, error) {
			assert.Equal(t, "volga-cross", slug)
			assert.Equal(t, service.Viewer{UserID: 8, Admin: true}, viewer)
			return &service.EventRegistrations{
				Event:     &models.Event{ID: 1, Slug: slug},
				FreeSlots: 9,
				Full:      true,
				Groups: []service.RaceGroup{{
					RaceType: models.RaceType{ID: 10},
					Registrations: []models.Registration{
						{ID: 1, PhoneNumber: "+79123456789", PaymentDocument: "uploads/payment_docs/x/abc.pdf"},
						{ID: 2},
					},
				}},
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/volga-cross/registrations", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("volga-cross")
	middleware.SetIdentity(c, 8, true)

	err := NewRegistrationHandler(svc).ListEventRegistrations(c)

	require.NoError(t, err)
	var resp dto.EventRegistrationsResponse[dto.RegistrationResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.FreeSlots)
	assert.True(t, resp.Full)
	require.Len(t, resp.Groups, 1)
	require.Len(t, resp.Groups[0].Registrations, 2)
	assert.Equal(t, "+79123456789", resp.Groups[0].Registrations[0].PhoneNumber)
	assert.Equal(t, "/api/v1/registrations/1/document", resp.Groups[0].Registrations[0].DocumentURL)
}

func TestListEventRegistrations_Handler_AnonymousGetsPublicFields(t *testing.T) {
	svc := &mockRegistrationService{
		listByEventFn: func(ctx context.Context, slug string, viewer service.Viewer) (*service.EventRegistrations, error) {
			assert.Equal(t, service.Viewer{}, viewer)
			return &service.EventRegistrations{
				Event:      &models.Event{ID: 1, Slug: slug},
				FreeSlots:  9,
				ActiveOnly: true,
				Groups: []service.RaceGroup{{
					RaceType: models.RaceType{ID: 10, DistanceKm: 10, Gender: models.GenderFemale, MinAge: 18},
					Registrations: []models.Registration{{
						ID:              1,
						PaymentDocument: "uploads/payment_docs/x/abc.pdf",
						PhoneNumber:     "+79123456789",
						DateOfBirth:     time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
						City:            "Kazan",
						Club:            "Volga Runners",
						TShirtSize:      models.SizeMedium,
						IsActive:        true,
						User:            &models.User{Username: "anna", FirstName: "Anna", LastName: "Petrova"},
						RaceType:        &models.RaceType{ID: 10, DistanceKm: 10, Gender: models.GenderFemale, MinAge: 18},
					}},
				}},
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/volga-cross/registrations", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("volga-cross")

	require.NoError(t, NewRegistrationHandler(svc).ListEventRegistrations(c))

	body := rec.Body.String()
	for _, leak := range []string{"payment_document", "abc.pdf", "phone_number", "+79123456789", "date_of_birth", "1990-05-17", "tshirt_size", "user_id"} {
		assert.NotContains(t, body, leak)
	}

	var resp dto.EventRegistrationsResponse[dto.EventRegistrantResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Full)
	require.Len(t, resp.Groups, 1)
	require.Len(t, resp.Groups[0].Registrations, 1)
	got := resp.Groups[0].Registrations[0]
	assert.Equal(t, "Anna Petrova", got.Participant)
	assert.Equal(t, "Kazan", got.City)
	assert.Equal(t, "Volga Runners", got.Club)
	assert.Equal(t, "10 km F 18+ (fee 0.00)", got.RaceType)
	assert.True(t, got.IsActive)
}

func TestDocument_Handler_StreamsFile(t *testing.T) {
	svc := &mockRegistrationService{
		documentFn: func(ctx context.Context, id uint, viewer service.Viewer) (*service.Document, error) {
			assert.Equal(t, uint(3), id)
			assert.Equal(t, service.Viewer{UserID: 5}, viewer)
			return &service.Document{Name: "abc.pdf", Body: io.NopCloser(bytes.NewBufferString("%PDF receipt"))}, nil
		},
	}
	c, rec := newIDContext(http.MethodGet, "/api/v1/registrations/3/document", "3", 5)

	require.NoError(t, NewRegistrationHandler(svc).Document(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="abc.pdf"`)
	assert.Equal(t, "%PDF receipt", rec.Body.String())
}

func TestDocument_Handler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		err    error
		code   int
	}{
		{"anonymous", 0, nil, http.StatusUnauthorized},
		{"someone else's receipt", 5, service.ErrRegistrationNotFound, http.StatusNotFound},
		{"file missing", 5, service.ErrDocumentNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRegistrationService{
				documentFn: func(ctx context.Context, id uint, viewer service.Viewer) (*service.Document, error) {
					return nil, tt.err
				},
			}
			c, _ := newIDContext(http.MethodGet, "/api/v1/registrations/3/document", "3", tt.userID)

			he, ok := NewRegistrationHandler(svc).Document(c).(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}
