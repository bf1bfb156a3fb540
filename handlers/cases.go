package handlers

import (
	"errors"
	"io"
	"net/http"

	"landlord_docs_app_go/db"
	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/middleware"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
)

const maxStepBody = 1 << 20

// CreateCaseHandler starts a new draft case
func CreateCaseHandler(c echo.Context) error {
	var in services.CreateCaseInput
	if err := c.Bind(&in); err != nil {
		return respondError(c, services.NewValidationError("body", "must be valid JSON"))
	}
	if in.Locale == "" {
		in.Locale = middleware.GetLocale(c)
	}

	caseRecord, err := services.CreateCase(db.DB, Validator, in)
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionCreate,
		ResourceType: "Case",
		ResourceID:   caseRecord.ID,
		CaseID:       caseRecord.ID,
		Description:  "Case created for " + string(caseRecord.Product),
	})
	return c.JSON(http.StatusCreated, caseRecord)
}

// GetCaseHandler returns a case with its facts and packs
func GetCaseHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	packs, err := services.ListPacks(db.DB, caseRecord.ID)
	if err != nil {
		return respondError(c, err)
	}
	caseRecord.Packs = packs
	return c.JSON(http.StatusOK, caseRecord)
}

// UpdateCaseStepHandler validates one wizard step and merges it into the case
func UpdateCaseStepHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxStepBody))
	if err != nil {
		return respondError(c, services.NewValidationError("body", "could not be read"))
	}

	step := c.Param("step")
	oldFacts := caseRecord.Facts
	if err := services.ApplyStep(db.DB, Validator, caseRecord, step, raw); err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: "Case",
		ResourceID:   caseRecord.ID,
		CaseID:       caseRecord.ID,
		Description:  "Step " + step + " saved",
		OldValues:    oldFacts,
		NewValues:    caseRecord.Facts,
	})
	return c.JSON(http.StatusOK, caseRecord)
}

// ResolveCaseRouteHandler decides the route, dates and documents for a stored case
func ResolveCaseRouteHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	res, err := Assembler.Resolve(caseRecord)
	if recErr := services.RecordResolution(db.DB, caseRecord, res.Decision); recErr != nil {
		return respondError(c, recErr)
	}
	if errors.Is(err, legal.ErrRouteBlocked) {
		return respondBlocked(c, res.Decision)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
