package handlers

import (
	"landlord_docs_app_go/config"
	"landlord_docs_app_go/middleware"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the API. Generation and preview routes share the stricter limit.
func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	e.GET("/healthz", HealthHandler)

	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())
	api.Use(middleware.Locale(cfg))
	api.Use(middleware.AuditContext())
	{
		api.POST("/cases", CreateCaseHandler)
		api.GET("/cases/:id", GetCaseHandler)
		api.PATCH("/cases/:id/steps/:step", UpdateCaseStepHandler)
		api.GET("/cases/:id/route", ResolveCaseRouteHandler)
		api.GET("/cases/:id/arrears.xlsx", ArrearsScheduleHandler)
		api.POST("/cases/:id/arrears/import", ImportArrearsHandler)

		api.POST("/route/resolve", ResolveRouteHandler)
		api.POST("/notice/dates", NoticeDatesHandler)
		api.POST("/money-claim/quote", MoneyClaimQuoteHandler)
		api.GET("/jurisdiction", JurisdictionHandler)
		api.GET("/templates", TemplatesHandler)
		api.GET("/grounds", GroundsHandler)

		api.GET("/packs/:id", GetPackHandler)
		api.GET("/documents/:id/download", DownloadDocumentHandler)
	}

	generation := api.Group("")
	generation.Use(middleware.GenerationRateLimiter.Middleware())
	{
		generation.GET("/cases/:id/preview/:template", PreviewDocumentHandler, middleware.PreviewHeaders())
		generation.GET("/cases/:id/preview/:template/thumbnail.png", PreviewThumbnailHandler)
		generation.POST("/cases/:id/generate", GeneratePackHandler)
	}

	admin := e.Group("/api/admin")
	admin.Use(middleware.RequireAdminKey(cfg))
	admin.Use(middleware.AuditContext())
	{
		admin.GET("/audit", AdminAuditLogsHandler)
		admin.DELETE("/cases/:id", AdminDeleteCaseHandler)
		admin.GET("/alerts", AdminSecurityAlertsHandler)
	}
}
