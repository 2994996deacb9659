package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	events        service.EventService
	exports       service.ExportService
	organizers    service.OrganizerService
	registrations service.RegistrationService
}

func NewAdminHandler(
	events service.EventService,
	exports service.ExportService,
	organizers service.OrganizerService,
	registrations service.RegistrationService,
) *AdminHandler {
	return &AdminHandler{events: events, exports: exports, organizers: organizers, registrations: registrations}
}

// RegisterRoutes expects g to already carry the authentication and admin middleware.
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/locations", h.CreateLocation)
	g.POST("/race-types", h.CreateRaceType)
	g.POST("/events", h.CreateEvent)
	g.POST("/events/:id/image", h.SetEventImage)
	g.POST("/organizers", h.CreateOrganizer)
	g.POST("/organizers/:id/events", h.AttachOrganizerEvents)
	g.POST("/registrations/:id/payment", h.ConfirmPayment)
	g.GET("/exports/registrations.csv", h.ExportCSV)
	g.POST("/exports/sheets", h.ExportSheets)
}

func (h *AdminHandler) CreateLocation(c echo.Context) error {
	var req dto.CreateLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loc := &models.Location{
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := h.events.CreateLocation(c.Request().Context(), loc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToLocationResponse(loc))
}

func (h *AdminHandler) CreateRaceType(c echo.Context) error {
	var req dto.CreateRaceTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rt := &models.RaceType{
		Gender:          models.Gender(req.Gender),
		MinAge:          req.MinAge,
		DistanceKm:      req.DistanceKm,
		RegistrationFee: req.RegistrationFee,
	}
	if err := h.events.CreateRaceType(c.Request().Context(), rt); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToRaceTypeResponse(rt))
}

func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.CreateEventInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Rules:       req.Rules,
		Type:        models.EventType(req.EventType),
		StartAt:     req.StartAt,
		TotalSlots:  req.TotalSlots,
		LocationID:  req.LocationID,
		RaceTypeIDs: req.RaceTypeIDs,
	}
	for _, item := range req.Schedule {
		in.Schedule = append(in.Schedule, service.ScheduleInput{StartTime: item.StartTime, Description: item.Description})
	}

	event, err := h.events.CreateEvent(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(&service.EventSummary{Event: *event, FreeSlots: event.TotalSlots}))
}

// SetEventImage takes a multipart form with the picture in the "image" field.
func (h *AdminHandler) SetEventImage(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read image")
	}
	defer file.Close()

	event, err := h.events.SetImage(c.Request().Context(), id, fh.Filename, file)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(&service.EventSummary{Event: *event}))
}

func (h *AdminHandler) CreateOrganizer(c echo.Context) error {
	var req dto.CreateOrganizerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	org, err := h.organizers.CreateOrganizer(c.Request().Context(), service.CreateOrganizerInput{
		UserID:         req.UserID,
		Contact:        req.Contact,
		PaymentDetails: req.PaymentDetails,
		EventIDs:       req.EventIDs,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToOrganizerResponse(org))
}

func (h *AdminHandler) AttachOrganizerEvents(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AttachEventsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	org, err := h.organizers.AttachEvents(c.Request().Context(), id, req.EventIDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToOrganizerResponse(org))
}

func (h *AdminHandler) ConfirmPayment(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ConfirmPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reg, err := h.registrations.ConfirmPayment(c.Request().Context(), id, *req.Confirmed)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AdminHandler) ExportCSV(c echo.Context) error {
	eventID, err := optionalEventID(c)
	if err != nil {
		return err
	}

	// Buffer first so a failed query can still produce a JSON error.
	var buf bytes.Buffer
	if _, err := h.exports.WriteCSV(c.Request().Context(), &buf, eventID); err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="registrations.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AdminHandler) ExportSheets(c echo.Context) error {
	eventID, err := optionalEventID(c)
	if err != nil {
		return err
	}

	rows, err := h.exports.ExportSheets(c.Request().Context(), eventID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ExportResponse{Rows: rows})
}

func optionalEventID(c echo.Context) (*uint, error) {
	raw := c.QueryParam("event_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid event_id")
	}
	v := uint(id)
	return &v, nil
}
