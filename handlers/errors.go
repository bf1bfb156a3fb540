package handlers

import (
	"errors"
	"log"
	"net/http"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/middleware"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"
	"landlord_docs_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// errorResponse is the body of every API error
type errorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Reasons  []string          `json:"reasons,omitempty"`
	Decision *legal.Decision   `json:"decision,omitempty"`
}

func translate(c echo.Context, key string) string {
	return i18n.Translate(middleware.GetLocale(c), key)
}

// respondError maps service and domain errors to HTTP status codes
func respondError(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: translate(c, "errors.invalid_request"), Fields: verr.Fields})
	case errors.Is(err, services.ErrCaseNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: translate(c, "errors.case_not_found")})
	case errors.Is(err, services.ErrPackNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: translate(c, "errors.pack_not_found")})
	case errors.Is(err, services.ErrDocumentNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: translate(c, "errors.document_not_found")})
	case errors.Is(err, services.ErrTemplateNotInPack):
		return c.JSON(http.StatusNotFound, errorResponse{Error: translate(c, "errors.unknown_template")})
	case errors.Is(err, services.ErrUnknownStep):
		return c.JSON(http.StatusNotFound, errorResponse{Error: translate(c, "errors.unknown_step")})
	case errors.Is(err, legal.ErrInvalidPostcode),
		errors.Is(err, legal.ErrJurisdictionUnknown),
		errors.Is(err, legal.ErrNoServiceDate),
		errors.Is(err, legal.ErrUnknownServiceRule),
		errors.Is(err, legal.ErrNoTemplates),
		errors.Is(err, legal.ErrClaimTooLarge):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, legal.ErrRouteBlocked):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: translate(c, "errors.route_blocked")})
	case errors.Is(err, legal.ErrUnsupportedJurisdiction):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: translate(c, "errors.internal")})
}

// respondBlocked explains why no documents can be produced
func respondBlocked(c echo.Context, d legal.Decision) error {
	return c.JSON(http.StatusUnprocessableEntity, errorResponse{
		Error:    translate(c, "errors.route_blocked"),
		Reasons:  d.Blockers,
		Decision: &d,
	})
}

// ErrorHandler renders echo errors (routing, binding, rate limits, admin auth) as JSON
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		if he.Code == http.StatusTooManyRequests {
			msg = translate(c, "errors.rate_limited")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, errorResponse{Error: msg})
		}
		if err != nil {
			log.Printf("[HTTP] Failed to write error response: %v", err)
		}
		return
	}
	if err := respondError(c, err); err != nil {
		log.Printf("[HTTP] Failed to write error response: %v", err)
	}
}

// respondCaseError is respondError with blocked routes explained from the case's decision
func respondCaseError(c echo.Context, caseRecord *models.Case, err error) error {
	if errors.Is(err, legal.ErrRouteBlocked) {
		res, rerr := Assembler.Resolve(caseRecord)
		if res.Decision.Blocked() {
			return respondBlocked(c, res.Decision)
		}
		if rerr != nil {
			err = rerr
		}
	}
	return respondError(c, err)
}
