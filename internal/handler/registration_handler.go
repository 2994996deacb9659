package handler

import (
	"net/http"
	"time"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/middleware"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// RegisterRoutes wires the registration endpoints. auth must require a
// token, optionalAuth only identifies the caller when one is present.
func (h *RegistrationHandler) RegisterRoutes(api *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	api.GET("/events/:slug/registrations", h.ListEventRegistrations, optionalAuth)

	regs := api.Group("/registrations", auth)
	regs.POST("", h.Register)
	regs.GET("", h.ListMine)
	regs.GET("/:id", h.Get)
	regs.POST("/:id/toggle", h.Toggle)
	regs.GET("/:id/document", h.Document)
}

func (h *RegistrationHandler) Register(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var form dto.RegistrationForm
	if err := bindAndValidate(c, &form); err != nil {
		return err
	}
	dob, err := time.Parse("2006-01-02", form.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}

	fh, err := c.FormFile("payment_document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_document file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read payment_document")
	}
	defer file.Close()

	reg, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		UserID:       userID,
		EventID:      form.EventID,
		RaceTypeID:   form.RaceTypeID,
		PhoneNumber:  form.PhoneNumber,
		DateOfBirth:  dob,
		City:         form.City,
		Club:         form.Club,
		TShirtSize:   models.TShirtSize(form.TShirtSize),
		Document:     file,
		DocumentName: fh.Filename,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToRegistrationResponse(reg))
}

func (h *RegistrationHandler) Toggle(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	reg, err := h.svc.Toggle(c.Request().Context(), id, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *RegistrationHandler) Get(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	reg, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *RegistrationHandler) ListMine(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	page, err := h.svc.ListByUser(c.Request().Context(), userID, pageParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPageResponse(page, dto.ToRegistrationResponse))
}

func (h *RegistrationHandler) ListEventRegistrations(c echo.Context) error {
	viewer := service.Viewer{Admin: middleware.IsAdmin(c)}
	if id, ok := middleware.UserID(c); ok {
		viewer.UserID = id
	}

	result, err := h.svc.ListByEvent(c.Request().Context(), c.Param("slug"), viewer)
	if err != nil {
		return httpError(err)
	}
	if result.Full {
		return c.JSON(http.StatusOK, dto.ToEventRegistrationsResponse(result, dto.ToRegistrationResponse))
	}
	return c.JSON(http.StatusOK, dto.ToEventRegistrationsResponse(result, dto.ToEventRegistrantResponse))
}

// Document streams the payment receipt to its owner, an admin or an organizer of the event.
func (h *RegistrationHandler) Document(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.svc.PaymentDocument(c.Request().Context(), id, service.Viewer{UserID: userID, Admin: middleware.IsAdmin(c)})
	if err != nil {
		return httpError(err)
	}
	return streamDocument(c, doc)
}
