package middleware

import (
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditContext records who made the request for audit logging. Cases are anonymous, so
// landlords are identified by IP and user agent; admin requests are marked as such.
// Register it after RequireAdminKey on admin routes.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := services.AuditContext{
				ActorType: models.ActorLandlord,
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}
			if IsAdmin(c) {
				ctx.ActorType = models.ActorAdmin
			}

			c.Set(ContextKeyAuditContext, ctx)
			return next(c)
		}
	}
}

// GetAuditContext retrieves the audit context from the request
func GetAuditContext(c echo.Context) services.AuditContext {
	if ctx, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return ctx
	}
	return services.AuditContext{ActorType: models.ActorLandlord, IPAddress: c.RealIP()}
}
