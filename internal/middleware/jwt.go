package middleware

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/race-registration/internal/auth"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxAdmin    = "is_admin"
)

// JWT rejects requests without a valid bearer token and stores the caller
// identity on the echo context.
func JWT(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			claims, err := auth.ParseToken(token, key)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalJWT identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalJWT(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c.Request()); token != "" {
				if claims, err := auth.ParseToken(token, key); err == nil {
					setIdentity(c, claims)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin must run after JWT.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func IsAdmin(c echo.Context) bool {
	admin, _ := c.Get(ctxAdmin).(bool)
	return admin
}

// SetIdentity is exported for handler tests that bypass token parsing.
func SetIdentity(c echo.Context, userID uint, admin bool) {
	c.Set(ctxUserID, userID)
	c.Set(ctxAdmin, admin)
}

func setIdentity(c echo.Context, claims *auth.Claims) {
	SetIdentity(c, claims.UserID, claims.Admin)
	c.Set(ctxUsername, claims.Username)
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if h == "" {
		return ""
	}
	if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return h
}
