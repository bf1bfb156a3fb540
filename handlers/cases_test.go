package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	setupTestDB(t)
	e := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/healthz", nil)
	statusOf(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateCaseHandler(t *testing.T) {
	setupTestDB(t)
	e := setupServer(t)

	t.Run("Success", func(t *testing.T) {
		body := `{"product":"complete_pack","route":"section_8","postcode":"ls28 7hf","email":"tariq@example.com"}`
		rec := doRequest(e, http.MethodPost, "/api/cases", strings.NewReader(body))
		statusOf(t, rec, http.StatusCreated)

		var c models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "LS28 7HF", c.Postcode)
		assert.Equal(t, models.CaseStatusDraft, c.Status)
	})

	t.Run("Welsh locale from header", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/cases", strings.NewReader(`{"product":"notice_only"}`), "Accept-Language", "cy")
		statusOf(t, rec, http.StatusCreated)
		var c models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, "cy", c.Locale)
	})

	t.Run("ValidationError", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/cases", strings.NewReader(`{"product":"lease","email":"nope"}`))
		statusOf(t, rec, http.StatusBadRequest)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request", resp.Error)
		assert.Contains(t, resp.Fields, "product")
		assert.Contains(t, resp.Fields, "email")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/cases", strings.NewReader(`{"product":`))
		statusOf(t, rec, http.StatusBadRequest)
	})
}

func TestGetCaseHandler(t *testing.T) {
	setupTestDB(t)
	e := setupServer(t)
	c := createCase(t, sampleFacts())

	rec := doRequest(e, http.MethodGet, "/api/cases/"+c.ID, nil)
	statusOf(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "35 Woodhall Park Avenue")

	rec = doRequest(e, http.MethodGet, "/api/cases/missing", nil)
	statusOf(t, rec, http.StatusNotFound)
	assert.JSONEq(t, `{"error":"Case not found"}`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/api/cases/missing", nil, "Accept-Language", "cy")
	statusOf(t, rec, http.StatusNotFound)
	assert.NotContains(t, rec.Body.String(), "errors.case_not_found")
}

func TestUpdateCaseStepHandler(t *testing.T) {
	setupTestDB(t)
	e := setupServer(t)
	c := createCase(t, legal.Facts{Product: legal.ProductNoticeOnly})

	t.Run("Success", func(t *testing.T) {
		body := `{"address_line1":"35 Woodhall Park Avenue","town":"Pudsey","postcode":"ls287hf"}`
		rec := doRequest(e, http.MethodPatch, "/api/cases/"+c.ID+"/steps/property", strings.NewReader(body))
		statusOf(t, rec, http.StatusOK)

		var updated models.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "LS28 7HF", updated.Facts.Property.Postcode)
		assert.Equal(t, []string{"property"}, updated.CompletedSteps)
	})

	t.Run("Invalid", func(t *testing.T) {
		rec := doRequest(e, http.MethodPatch, "/api/cases/"+c.ID+"/steps/tenants", strings.NewReader(`{"tenants":[]}`))
		statusOf(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), `"tenants"`)
	})

	t.Run("UnknownStep", func(t *testing.T) {
		rec := doRequest(e, http.MethodPatch, "/api/cases/"+c.ID+"/steps/pets", strings.NewReader(`{}`))
		statusOf(t, rec, http.StatusNotFound)
	})

	t.Run("MissingCase", func(t *testing.T) {
		rec := doRequest(e, http.MethodPatch, "/api/cases/missing/steps/property", strings.NewReader(`{}`))
		statusOf(t, rec, http.StatusNotFound)
	})
}

func TestResolveCaseRouteHandler(t *testing.T) {
	setupTestDB(t)
	e := setupServer(t)

	t.Run("Section8", func(t *testing.T) {
		c := createCase(t, sampleFacts())
		rec := doRequest(e, http.MethodGet, "/api/cases/"+c.ID+"/route", nil)
		statusOf(t, rec, http.StatusOK)

		var resp struct {
			Decision  legal.Decision      `json:"decision"`
			Dates     legal.NoticeDates   `json:"dates"`
			Templates []legal.TemplateRef `json:"templates"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, legal.RouteSection8, resp.Decision.Route)
		assert.Equal(t, legal.JurisdictionEngland, resp.Decision.Jurisdiction)
		assert.Equal(t, "2026-01-15", resp.Dates.EarliestProceedings.String())
		assert.Equal(t, "form_3", resp.Templates[0].Key)
	})

	t.Run("Blocked", func(t *testing.T) {
		facts := sampleFacts()
		facts.Product = legal.ProductNoticeOnly
		facts.Property.Postcode = "BT1 1AA"
		c := createCase(t, facts)

		rec := doRequest(e, http.MethodGet, "/api/cases/"+c.ID+"/route", nil)
		statusOf(t, rec, http.StatusUnprocessableEntity)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Reasons)
		require.NotNil(t, resp.Decision)
		assert.Equal(t, legal.JurisdictionNorthernIreland, resp.Decision.Jurisdiction)
	})
}
