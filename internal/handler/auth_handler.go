package handler

import (
	"net/http"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.Signin)
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.svc.Signup(c.Request().Context(), service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.TokenResponse{Token: token})
}

func (h *AuthHandler) Signin(c echo.Context) error {
	var req dto.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.svc.Signin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
