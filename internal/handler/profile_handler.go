package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// RegisterRoutes expects g to already require authentication.
func (h *ProfileHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.PUT("", h.Update)
	g.GET("/photo", h.Photo)
}

func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.svc.Profile(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// Update takes a multipart form. The "photo" file field is optional.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var form dto.ProfileForm
	if err := bindAndValidate(c, &form); err != nil {
		return err
	}
	in := service.ProfileInput{UserID: userID, FirstName: form.FirstName, LastName: form.LastName}
	if form.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", form.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		}
		in.BirthDate = &birth
	}

	fh, err := c.FormFile("photo")
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read photo")
		}
		defer file.Close()
		in.Photo, in.PhotoName = file, fh.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *ProfileHandler) Photo(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	doc, err := h.svc.Photo(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return streamDocument(c, doc)
}
