package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eursukkul/race-registration/internal/dto"
	"github.com/Eursukkul/race-registration/internal/middleware"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview_Handler(t *testing.T) {
	svc := &mockReviewService{
		addFn: func(ctx context.Context, slug string, authorID uint, text string) (*models.Review, error) {
			assert.Equal(t, "volga-cross", slug)
			assert.Equal(t, uint(5), authorID)
			return &models.Review{ID: 1, EventID: 1, AuthorID: authorID, Text: text, Author: &models.User{Username: "anna"}}, nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/api/v1/events/volga-cross/reviews", `{"text":"Well marked course"}`)
	c.SetParamNames("slug")
	c.SetParamValues("volga-cross")
	middleware.SetIdentity(c, 5, false)

	require.NoError(t, NewReviewHandler(svc).Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.ReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "anna", resp.Author)
	assert.Equal(t, "Well marked course", resp.Text)
}

func TestCreateReview_Handler_EmptyText(t *testing.T) {
	c, _ := jsonContext(http.MethodPost, "/api/v1/events/volga-cross/reviews", `{"text":""}`)
	middleware.SetIdentity(c, 5, false)

	he, ok := NewReviewHandler(&mockReviewService{}).Create(c).(*echo.HTTPError)

	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLatestReviews_Handler(t *testing.T) {
	svc := &mockReviewService{
		latestFn: func(ctx context.Context) ([]models.Review, error) {
			return []models.Review{{ID: 1}, {ID: 2}}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/latest", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, NewReviewHandler(svc).Latest(newEcho().NewContext(req, rec)))
	var resp []dto.ReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestSignin_Handler(t *testing.T) {
	svc := &mockAuthService{
		signinFn: func(ctx context.Context, username, password string) (string, error) {
			if username == "anna" && password == "s3cret" {
				return "token-123", nil
			}
			return "", service.ErrInvalidCredentials
		},
	}

	c, rec := jsonContext(http.MethodPost, "/api/v1/auth/signin", `{"username":"anna","password":"s3cret"}`)
	require.NoError(t, NewAuthHandler(svc).Signin(c))
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "token-123", resp.Token)

	c, _ = jsonContext(http.MethodPost, "/api/v1/auth/signin", `{"username":"anna","password":"nope"}`)
	he, ok := NewAuthHandler(svc).Signin(c).(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	c, _ = jsonContext(http.MethodPost, "/api/v1/auth/signin", `{"username":"anna"}`)
	he, ok = NewAuthHandler(svc).Signin(c).(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
