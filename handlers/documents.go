package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"landlord_docs_app_go/db"
	"landlord_docs_app_go/middleware"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"
	"landlord_docs_app_go/templates/partials"

	"github.com/labstack/echo/v4"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	signedURLTTL    = 15 * time.Minute
)

// PreviewDocumentHandler shows a watermarked HTML preview of one document
func PreviewDocumentHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	preview, err := Assembler.Preview(caseRecord, c.Param("template"))
	if err != nil {
		return respondCaseError(c, caseRecord, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionPreview,
		ResourceType: "Case",
		ResourceID:   caseRecord.ID,
		CaseID:       caseRecord.ID,
		Description:  "Previewed " + preview.Template.Key,
	})

	view := partials.PreviewView{
		Title:    preview.Template.Title,
		Route:    preview.Decision.Route,
		Salvaged: preview.Decision.Salvaged,
		Warnings: preview.Decision.Warnings,
		HTML:     preview.HTML,
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return partials.PreviewPage(view).Render(c.Request().Context(), c.Response())
}

// PreviewThumbnailHandler returns a PNG of the first page of a document preview
func PreviewThumbnailHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	png, err := Assembler.PreviewThumbnail(c.Request().Context(), caseRecord, c.Param("template"))
	if err != nil {
		return respondCaseError(c, caseRecord, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}

// GeneratePackHandler renders and stores every document for the case
func GeneratePackHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	pack, err := Assembler.GeneratePack(c.Request().Context(), caseRecord)
	if err != nil && !errors.Is(err, services.ErrPackFailed) {
		return respondCaseError(c, caseRecord, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionGenerate,
		ResourceType: "DocumentPack",
		ResourceID:   pack.ID,
		CaseID:       caseRecord.ID,
		Description:  fmt.Sprintf("Generated %s pack (%s)", pack.Route, pack.Status),
	})

	if errors.Is(err, services.ErrPackFailed) {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": translate(c, "errors.internal"),
			"pack":  pack,
		})
	}

	if caseRecord.ContactEmail != "" {
		cfg := getConfig(c)
		services.SendEmailAsync(cfg, services.PackReadyEmailFor(cfg.AppURL, caseRecord, pack))
	}
	return c.JSON(http.StatusCreated, pack)
}

// GetPackHandler returns a pack and its documents. Browsers asking for HTML get the
// summary partial.
func GetPackHandler(c echo.Context) error {
	pack, err := services.GetPack(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if _, err := services.GetCase(db.DB, pack.CaseID); err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return respondError(c, services.ErrPackNotFound)
		}
		return respondError(c, err)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML) {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		return partials.PackSummary(pack).Render(c.Request().Context(), c.Response())
	}
	return c.JSON(http.StatusOK, pack)
}

// DownloadDocumentHandler streams a generated PDF, or redirects to a signed URL when the
// storage provider supports it
func DownloadDocumentHandler(c echo.Context) error {
	doc, err := services.GetDocument(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDownload,
		ResourceType: "GeneratedDocument",
		ResourceID:   doc.ID,
		CaseID:       doc.CaseID,
		Description:  "Downloaded " + doc.FileName,
	})

	ctx := c.Request().Context()
	if services.Storage.Redirects() {
		url, err := services.Storage.GetSignedURL(ctx, doc.StorageKey, signedURLTTL)
		if err != nil {
			return respondError(c, err)
		}
		return c.Redirect(http.StatusFound, url)
	}

	reader, contentType, err := services.OpenDocument(ctx, services.Storage, doc)
	if err != nil {
		return respondError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Stream(http.StatusOK, contentType, reader)
}

// ArrearsScheduleHandler downloads the arrears schedule as a spreadsheet
func ArrearsScheduleHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	buf, err := services.ArrearsScheduleXLSX(caseRecord)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="arrears-schedule.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportArrearsHandler replaces the case's arrears entries with an uploaded schedule
func ImportArrearsHandler(c echo.Context) error {
	caseRecord, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, services.NewValidationError("file", "is required"))
	}
	if err := services.ValidateSpreadsheetUpload(file); err != nil {
		return respondError(c, services.NewValidationError("file", err.Error()))
	}
	src, err := file.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	entries, err := services.ImportArrearsXLSX(io.LimitReader(src, services.MaxSpreadsheetUpload))
	if err != nil {
		return respondError(c, services.NewValidationError("file", err.Error()))
	}

	arrears := caseRecord.Facts.Arrears
	arrears.Entries = entries
	raw, err := json.Marshal(arrears)
	if err != nil {
		return respondError(c, err)
	}
	if err := services.ApplyStep(db.DB, Validator, caseRecord, "arrears", raw); err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: "Case",
		ResourceID:   caseRecord.ID,
		CaseID:       caseRecord.ID,
		Description:  fmt.Sprintf("Imported %d arrears entries", len(entries)),
	})
	return c.JSON(http.StatusOK, caseRecord)
}
