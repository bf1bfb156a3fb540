package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrPackFailed        = errors.New("no documents could be rendered")
	ErrTemplateNotInPack = errors.New("template is not part of this case's documents")
)

const thumbnailWidth = 240

// Resolution is everything derived from a case's facts before rendering
type Resolution struct {
	Decision  legal.Decision      `json:"decision"`
	Dates     legal.NoticeDates   `json:"dates"`
	Quote     *legal.ClaimQuote   `json:"quote,omitempty"`
	Templates []legal.TemplateRef `json:"templates"`
	Today     legal.Date          `json:"-"`
}

// Assembler renders document packs and previews for cases
type Assembler struct {
	DB          *gorm.DB
	Storage     StorageProvider
	Renderer    Renderer
	Concurrency int
	Options     legal.ResolveOptions
	PDF         PDFOptions
	Now         func() time.Time
}

// NewAssembler builds an assembler from configuration
func NewAssembler(db *gorm.DB, storage StorageProvider, renderer Renderer, cfg *config.Config) *Assembler {
	return &Assembler{
		DB:          db,
		Storage:     storage,
		Renderer:    renderer,
		Concurrency: cfg.RenderConcurrency,
		Options:     legal.ResolveOptions{Section21AbolitionDate: cfg.Section21AbolitionDate},
		PDF:         DefaultPDFOptions(),
	}
}

// Today is the current date in London, or from Now when set
func (a *Assembler) Today() legal.Date {
	if a.Now != nil {
		return legal.DateOf(a.Now())
	}
	return legal.DateOf(time.Now().In(LondonLocation()))
}

// Resolve decides the route, dates and documents for a case. Blocked cases return an
// error wrapping legal.ErrRouteBlocked together with the decision.
func (a *Assembler) Resolve(c *models.Case) (Resolution, error) {
	today := a.Today()
	opts := a.Options
	opts.ReferenceDate = today

	res := Resolution{Today: today}
	res.Decision = legal.ResolveRoute(c.Facts, opts)
	if res.Decision.Blocked() {
		return res, res.Decision.Err()
	}

	switch res.Decision.Product.Kind() {
	case legal.KindEviction, legal.KindMoney:
		dates, err := legal.CalculateNoticeDates(res.Decision, c.Facts, today)
		if err != nil {
			return res, fmt.Errorf("failed to calculate notice dates: %w", err)
		}
		res.Dates = dates
	}

	if res.Decision.Product.Kind() == legal.KindMoney {
		quote, err := legal.QuoteMoneyClaim(c.Facts, today)
		if err != nil {
			return res, fmt.Errorf("failed to quote claim: %w", err)
		}
		res.Quote = &quote
	}

	refs, err := legal.SelectTemplates(res.Decision.Product, res.Decision, c.Facts)
	if err != nil {
		return res, err
	}
	res.Templates = refs
	return res, nil
}

func (res Resolution) documentData(c *models.Case, preview bool) DocumentData {
	var quote legal.ClaimQuote
	if res.Quote != nil {
		quote = *res.Quote
	}
	data := BuildDocumentData(c, res.Decision, res.Dates, quote, res.Today)
	data.Preview = preview
	return data
}

func (res Resolution) template(key string) (legal.TemplateRef, bool) {
	for _, ref := range res.Templates {
		if ref.Key == key {
			return ref, true
		}
	}
	return legal.TemplateRef{}, false
}

// GeneratePack renders every document for the case, stores the PDFs and records the pack.
// A failed document does not stop the others.
func (a *Assembler) GeneratePack(ctx context.Context, c *models.Case) (*models.DocumentPack, error) {
	res, err := a.Resolve(c)
	if err != nil {
		return nil, err
	}
	d := res.Decision

	pack := &models.DocumentPack{
		CaseID:       c.ID,
		Product:      d.Product,
		Jurisdiction: d.Jurisdiction,
		Route:        d.Route,
		Salvaged:     d.Salvaged,
		Status:       models.PackStatusPending,
		Warnings:     d.Warnings,
		NoticeDates:  res.Dates,
		ContactEmail: c.ContactEmail,
		Locale:       c.Locale,
	}
	if !res.Dates.ExpiryDate.IsZero() {
		expiry := res.Dates.ExpiryDate.Time
		pack.NoticeExpiry = &expiry
	}
	if err := a.DB.Create(pack).Error; err != nil {
		return nil, fmt.Errorf("failed to create pack: %w", err)
	}

	data := res.documentData(c, false)
	docs := make([]models.GeneratedDocument, len(res.Templates))

	limit := a.Concurrency
	if limit <= 0 {
		limit = 3
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ref := range res.Templates {
		g.Go(func() error {
			docs[i] = a.renderDocument(gctx, c.ID, pack.ID, i+1, ref, data)
			return nil
		})
	}
	_ = g.Wait()

	rendered := 0
	for _, doc := range docs {
		if doc.Status == models.DocumentStatusRendered {
			rendered++
		}
	}
	switch {
	case rendered == len(docs):
		pack.Status = models.PackStatusComplete
	case rendered == 0:
		pack.Status = models.PackStatusFailed
	default:
		pack.Status = models.PackStatusPartial
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if len(docs) > 0 {
			if err := tx.Create(&docs).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(pack).Update("status", pack.Status).Error; err != nil {
			return err
		}
		if pack.Status == models.PackStatusFailed {
			return nil
		}
		c.Status = models.CaseStatusGenerated
		c.Resolution = d
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record pack: %w", err)
	}
	pack.Documents = docs

	log.Printf("[PACK] Case %s: %s pack %s (%d/%d documents, route %s)", c.ID, pack.Status, pack.ID, rendered, len(docs), d.Route)
	if pack.Status == models.PackStatusFailed {
		return pack, ErrPackFailed
	}
	return pack, nil
}

func (a *Assembler) renderDocument(ctx context.Context, caseID, packID string, position int, ref legal.TemplateRef, data DocumentData) models.GeneratedDocument {
	doc := models.GeneratedDocument{
		PackID:      packID,
		CaseID:      caseID,
		TemplateKey: ref.Key,
		Title:       ref.Title,
		Kind:        ref.Kind,
		Position:    position,
		FileName:    SafeFileName(ref.Title, ".pdf"),
		MimeType:    "application/pdf",
	}
	fail := func(stage string, err error) models.GeneratedDocument {
		log.Printf("[PACK] Failed to %s %s for case %s: %v", stage, ref.Key, caseID, err)
		doc.Status = models.DocumentStatusFailed
		doc.ErrorMessage = fmt.Sprintf("%s: %v", stage, err)
		return doc
	}

	body, err := RenderDocument(ref, data)
	if err != nil {
		return fail("render", err)
	}
	html := WrapHTMLForPDF(body, ref.Title, false)

	pdf, err := a.Renderer.PDF(ctx, html, a.PDF)
	if err != nil {
		return fail("print", err)
	}

	key := PackDocumentKey(caseID, packID, position, doc.FileName)
	stored, err := a.Storage.Put(ctx, key, pdf, doc.MimeType)
	if err != nil {
		return fail("store", err)
	}
	doc.StorageKey = stored.Key
	doc.FileSize = stored.FileSize
	doc.Status = models.DocumentStatusRendered

	// A missing thumbnail does not fail the document
	png, err := a.Renderer.Thumbnail(ctx, html, thumbnailWidth)
	if err != nil {
		log.Printf("[PACK] Thumbnail for %s failed: %v", ref.Key, err)
		return doc
	}
	thumbKey := strings.TrimSuffix(key, ".pdf") + ".png"
	if _, err := a.Storage.Put(ctx, thumbKey, png, "image/png"); err != nil {
		log.Printf("[PACK] Storing thumbnail for %s failed: %v", ref.Key, err)
		return doc
	}
	doc.ThumbnailKey = thumbKey
	return doc
}

// PreviewDocument is a watermarked document ready to display
type PreviewDocument struct {
	Template legal.TemplateRef
	Decision legal.Decision
	HTML     string
}

// Preview renders one of the case's documents with the preview watermark
func (a *Assembler) Preview(c *models.Case, templateKey string) (*PreviewDocument, error) {
	res, err := a.Resolve(c)
	if err != nil {
		return nil, err
	}
	ref, ok := res.template(templateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotInPack, templateKey)
	}

	body, err := RenderDocument(ref, res.documentData(c, true))
	if err != nil {
		return nil, err
	}
	return &PreviewDocument{
		Template: ref,
		Decision: res.Decision,
		HTML:     WrapHTMLForPDF(body, ref.Title, true),
	}, nil
}

// PreviewThumbnail renders a watermarked thumbnail, stores it and records it for cleanup
func (a *Assembler) PreviewThumbnail(ctx context.Context, c *models.Case, templateKey string) ([]byte, error) {
	preview, err := a.Preview(c, templateKey)
	if err != nil {
		return nil, err
	}
	png, err := a.Renderer.Thumbnail(ctx, preview.HTML, thumbnailWidth)
	if err != nil {
		return nil, err
	}

	key := PreviewKey(c.ID, templateKey)
	if _, err := a.Storage.Put(ctx, key, png, "image/png"); err != nil {
		log.Printf("[PACK] Failed to store preview %s: %v", key, err)
		return png, nil
	}
	artifact := models.PreviewArtifact{CaseID: c.ID, TemplateKey: templateKey, StorageKey: key, FileSize: int64(len(png))}
	if err := a.DB.Create(&artifact).Error; err != nil {
		log.Printf("[PACK] Failed to record preview %s: %v", key, err)
	}
	return png, nil
}

// LondonLocation is the zone legal dates and schedules are counted in
var LondonLocation = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		log.Printf("[PACK] Europe/London zone unavailable, using UTC: %v", err)
		return time.UTC
	}
	return loc
})
