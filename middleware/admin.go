package middleware

import (
	"net/http"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the plain admin API key
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey rejects requests whose X-Admin-Key does not match the configured bcrypt
// hash. With no hash configured every request is rejected.
func RequireAdminKey(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(AdminKeyHeader)
			if key == "" || cfg.AdminAPIKeyHash == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin key required")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminAPIKeyHash), []byte(key)); err != nil {
				services.Monitor.TrackFailedAdminKey(c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin key")
			}
			c.Set(ContextKeyAdmin, true)
			return next(c)
		}
	}
}

// ContextKeyAdmin marks requests authenticated with the admin key
const ContextKeyAdmin = "admin"

// IsAdmin reports whether the request passed RequireAdminKey
func IsAdmin(c echo.Context) bool {
	ok, _ := c.Get(ContextKeyAdmin).(bool)
	return ok
}
