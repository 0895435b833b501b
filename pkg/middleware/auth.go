package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is the echo context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// AccessTokenVerifier validates a bearer access token and returns the user ID.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (uint, error)
}

// CSRFValidator checks a CSRF token issued earlier in the session.
type CSRFValidator interface {
	ValidateToken(token string) bool
}

// NewJWTAuthMiddleware rejects requests without a valid bearer access token.
func NewJWTAuthMiddleware(verifier AccessTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c.Request())
			if token == "" {
				return c.JSON(http.StatusUnauthorized, Response{
					Status:  http.StatusUnauthorized,
					Message: "Missing or malformed authorization header",
				})
			}

			userID, err := verifier.VerifyAccessToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token",
				})
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

// NewCSRFMiddleware requires a valid X-CSRF-Token header on state-changing methods.
func NewCSRFMiddleware(validator CSRFValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
				token := c.Request().Header.Get("X-CSRF-Token")
				if token == "" || !validator.ValidateToken(token) {
					return c.JSON(http.StatusForbidden, Response{
						Status:  http.StatusForbidden,
						Message: "Missing or invalid CSRF token",
					})
				}
			}
			return next(c)
		}
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
