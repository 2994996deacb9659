package handler

import (
	"net/http"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func (h *ReviewHandler) RegisterRoutes(api *echo.Group, auth echo.MiddlewareFunc) {
	api.GET("/events/:slug/reviews", h.ListByEvent)
	api.POST("/events/:slug/reviews", h.Create, auth)
	api.GET("/reviews/latest", h.Latest)
}

func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := h.svc.AddReview(c.Request().Context(), c.Param("slug"), userID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToReviewResponse(review))
}

func (h *ReviewHandler) ListByEvent(c echo.Context) error {
	reviews, err := h.svc.ListByEvent(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReviewResponses(reviews))
}

func (h *ReviewHandler) Latest(c echo.Context) error {
	reviews, err := h.svc.Latest(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReviewResponses(reviews))
}
