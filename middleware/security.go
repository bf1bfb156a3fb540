package middleware

import (
	"github.com/labstack/echo/v4"
)

// previewCSP blocks every script in rendered documents; styles are inline in the templates
const previewCSP = "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'self'"

// PreviewHeaders locks down HTML document previews, which embed landlord-entered text
func PreviewHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", previewCSP)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}
