package handlers

import (
	"errors"
	"net/http"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
)

// bindFacts decodes a facts payload for the stateless endpoints
func bindFacts(c echo.Context) (legal.Facts, error) {
	var f legal.Facts
	if err := c.Bind(&f); err != nil {
		return f, services.NewValidationError("body", "must be valid JSON facts")
	}
	if f.Product == "" {
		return f, services.NewValidationError("product", "is required")
	}
	if err := Validator.Validate(&f.Service); err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			fields := make(map[string]string, len(verr.Fields))
			for name, msg := range verr.Fields {
				fields["service."+name] = msg
			}
			verr.Fields = fields
		}
		return f, err
	}
	return f, nil
}

func resolveOptions() legal.ResolveOptions {
	opts := Assembler.Options
	opts.ReferenceDate = Assembler.Today()
	return opts
}

// ResolveRouteHandler resolves posted facts without storing anything
func ResolveRouteHandler(c echo.Context) error {
	f, err := bindFacts(c)
	if err != nil {
		return respondError(c, err)
	}
	d := legal.ResolveRoute(f, resolveOptions())
	if d.Blocked() {
		return respondBlocked(c, d)
	}
	return c.JSON(http.StatusOK, d)
}

// NoticeDatesHandler calculates notice expiry and proceedings dates for posted facts
func NoticeDatesHandler(c echo.Context) error {
	f, err := bindFacts(c)
	if err != nil {
		return respondError(c, err)
	}
	d := legal.ResolveRoute(f, resolveOptions())
	if d.Blocked() {
		return respondBlocked(c, d)
	}
	dates, err := legal.CalculateNoticeDates(d, f, Assembler.Today())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"decision": d,
		"dates":    dates,
	})
}

// MoneyClaimQuoteHandler totals arrears, interest and the court fee for posted facts
func MoneyClaimQuoteHandler(c echo.Context) error {
	f, err := bindFacts(c)
	if err != nil {
		return respondError(c, err)
	}
	quote, err := legal.QuoteMoneyClaim(f, Assembler.Today())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// JurisdictionHandler detects the jurisdiction from a postcode, with an optional
// declared fallback
func JurisdictionHandler(c echo.Context) error {
	var declared legal.Jurisdiction
	if raw := c.QueryParam("declared"); raw != "" {
		j, err := legal.ParseJurisdiction(raw)
		if err != nil {
			return respondError(c, services.NewValidationError("declared", err.Error()))
		}
		declared = j
	}
	detection, err := legal.DetectJurisdiction(c.QueryParam("postcode"), declared)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detection)
}

// TemplatesHandler lists the documents a product and route would produce.
// arrears=true includes the arrears schedule.
func TemplatesHandler(c echo.Context) error {
	product := legal.Product(c.QueryParam("product"))
	if product.Kind() == "" {
		return respondError(c, services.NewValidationError("product", "is not a known product"))
	}
	j := legal.JurisdictionEngland
	if raw := c.QueryParam("jurisdiction"); raw != "" {
		parsed, err := legal.ParseJurisdiction(raw)
		if err != nil {
			return respondError(c, services.NewValidationError("jurisdiction", err.Error()))
		}
		j = parsed
	}

	d := legal.Decision{Product: product, Jurisdiction: j, Route: legal.Route(c.QueryParam("route"))}
	var f legal.Facts
	if c.QueryParam("arrears") == "true" {
		d.Grounds = []legal.SelectedGround{{Ground: legal.Ground{Arrears: true}}}
		f.Arrears.DeclaredPence = 1
	}

	refs, err := legal.SelectTemplates(product, d, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, refs)
}

// GroundsHandler returns the possession grounds for a jurisdiction
func GroundsHandler(c echo.Context) error {
	j, err := legal.ParseJurisdiction(c.QueryParam("jurisdiction"))
	if err != nil {
		return respondError(c, services.NewValidationError("jurisdiction", err.Error()))
	}
	cat := Assembler.Options.Catalogue
	if cat == nil {
		cat = legal.DefaultCatalogue()
	}
	return c.JSON(http.StatusOK, cat.ForJurisdiction(j))
}
