package handlers

import (
	"net/http"
	"strconv"
	"time"

	"landlord_docs_app_go/db"
	"landlord_docs_app_go/middleware"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
)

// AdminAuditLogsHandler returns filtered, paginated audit logs
func AdminAuditLogsHandler(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	filters := services.AuditLogFilters{
		CaseID:       c.QueryParam("case_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		t, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return respondError(c, services.NewValidationError("date_from", "must be YYYY-MM-DD"))
		}
		filters.DateFrom = t
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		t, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return respondError(c, services.NewValidationError("date_to", "must be YYYY-MM-DD"))
		}
		filters.DateTo = t.Add(24*time.Hour - time.Second) // End of day
	}

	logs, total, err := services.ListAuditLogs(db.DB, filters, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}

// AdminDeleteCaseHandler soft deletes a case and removes its files
func AdminDeleteCaseHandler(c echo.Context) error {
	id := c.Param("id")
	removed, err := services.DeleteCase(c.Request().Context(), db.DB, services.Storage, id)
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDelete,
		ResourceType: "Case",
		ResourceID:   id,
		CaseID:       id,
		Description:  "Case deleted by admin",
	})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted":       true,
		"files_removed": removed,
	})
}

// AdminSecurityAlertsHandler lists recent alerts for repeated invalid admin keys
func AdminSecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Monitor.RecentAlerts())
}
