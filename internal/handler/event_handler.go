package handler

import (
	"net/http"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListEvents)
	g.GET("/:slug", h.GetEvent)
	g.GET("/:id/races", h.RaceTypes)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	filter := repository.EventFilter(c.QueryParam("filter"))
	page, err := h.svc.ListEvents(c.Request().Context(), filter, pageParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPageResponse(page, dto.ToEventResponse))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	detail, err := h.svc.GetEvent(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventDetailResponse(detail))
}

func (h *EventHandler) RaceTypes(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	races, err := h.svc.RaceTypesForEvent(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRaceTypeResponses(races))
}
