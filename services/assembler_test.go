package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(t *testing.T, renderer Renderer) (*Assembler, *LocalStorage) {
	t.Helper()
	storage := NewLocalStorage(t.TempDir())
	return &Assembler{
		DB:          setupTestDB(t),
		Storage:     storage,
		Renderer:    renderer,
		Concurrency: 2,
		PDF:         DefaultPDFOptions(),
		Now:         fixedNow,
	}, storage
}

func TestResolveSection8Pack(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{})
	c := createSampleCase(t, a.DB, sampleFacts())

	res, err := a.Resolve(c)
	require.NoError(t, err)

	assert.Equal(t, legal.RouteSection8, res.Decision.Route)
	assert.Equal(t, []string{"8", "10", "11"}, res.Decision.GroundCodes())
	assert.Equal(t, "2026-01-15", res.Dates.EarliestProceedings.String())
	assert.Nil(t, res.Quote)

	keys := make([]string, len(res.Templates))
	for i, ref := range res.Templates {
		keys[i] = ref.Key
	}
	assert.Equal(t, []string{"form_3", "n215", "n5", "n119", "witness_statement", "arrears_schedule", "service_guidance"}, keys)
}

func TestResolveBlocked(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{})
	facts := sampleFacts()
	facts.Grounds = nil
	facts.Arrears = legal.Arrears{}
	c := createSampleCase(t, a.DB, facts)

	res, err := a.Resolve(c)
	assert.ErrorIs(t, err, legal.ErrRouteBlocked)
	assert.NotEmpty(t, res.Decision.Blockers)
	assert.Empty(t, res.Templates)
}

func TestResolveMoneyClaimQuote(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{})
	facts := sampleFacts()
	facts.Product = legal.ProductMoneyClaim
	facts.RequestedRoute = ""
	c := createSampleCase(t, a.DB, facts)

	res, err := a.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, legal.RouteMoneyClaim, res.Decision.Route)
	require.NotNil(t, res.Quote)
	assert.Equal(t, int64(3000_00), res.Quote.ArrearsPence)
	assert.Greater(t, res.Quote.CourtFeePence, int64(0))
}

func TestGeneratePack(t *testing.T) {
	renderer := &fakeRenderer{}
	a, storage := newTestAssembler(t, renderer)
	c := createSampleCase(t, a.DB, sampleFacts())

	pack, err := a.GeneratePack(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, models.PackStatusComplete, pack.Status)
	assert.Equal(t, legal.RouteSection8, pack.Route)
	require.NotNil(t, pack.NoticeExpiry)
	assert.Len(t, pack.Documents, 7)
	assert.Len(t, renderer.printed, 7)

	for i, doc := range pack.Documents {
		assert.Equal(t, i+1, doc.Position)
		assert.Equal(t, models.DocumentStatusRendered, doc.Status)
		assert.True(t, strings.HasPrefix(doc.StorageKey, "cases/"+c.ID+"/packs/"+pack.ID+"/"))
		assert.NotEmpty(t, doc.ThumbnailKey)

		rc, contentType, err := storage.Get(context.Background(), doc.StorageKey)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, "application/pdf", contentType)
	}

	var stored models.DocumentPack
	require.NoError(t, a.DB.Preload("Documents").First(&stored, "id = ?", pack.ID).Error)
	assert.Equal(t, models.PackStatusComplete, stored.Status)
	assert.Len(t, stored.Documents, 7)
	assert.Equal(t, "2026-01-15", stored.NoticeDates.EarliestProceedings.String())

	var reloaded models.Case
	require.NoError(t, a.DB.First(&reloaded, "id = ?", c.ID).Error)
	assert.Equal(t, models.CaseStatusGenerated, reloaded.Status)
	assert.Equal(t, legal.RouteSection8, reloaded.Resolution.Route)
}

func TestGeneratePackPartial(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{failFor: []string{"WITNESS STATEMENT"}})
	c := createSampleCase(t, a.DB, sampleFacts())

	pack, err := a.GeneratePack(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, models.PackStatusPartial, pack.Status)

	failed := 0
	for _, doc := range pack.Documents {
		if doc.Status == models.DocumentStatusFailed {
			failed++
			assert.Equal(t, "witness_statement", doc.TemplateKey)
			assert.Contains(t, doc.ErrorMessage, "chrome crashed")
			assert.Empty(t, doc.StorageKey)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestGeneratePackAllFail(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{failFor: []string{"<!DOCTYPE html>"}})
	c := createSampleCase(t, a.DB, sampleFacts())

	pack, err := a.GeneratePack(context.Background(), c)
	assert.ErrorIs(t, err, ErrPackFailed)
	require.NotNil(t, pack)
	assert.Equal(t, models.PackStatusFailed, pack.Status)

	var reloaded models.Case
	require.NoError(t, a.DB.First(&reloaded, "id = ?", c.ID).Error)
	assert.Equal(t, models.CaseStatusDraft, reloaded.Status)
}

func TestGeneratePackStorageFailure(t *testing.T) {
	storage := new(MockStorageProvider)
	storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("bucket unavailable"))

	a, _ := newTestAssembler(t, &fakeRenderer{})
	a.Storage = storage
	c := createSampleCase(t, a.DB, sampleFacts())

	pack, err := a.GeneratePack(context.Background(), c)
	assert.ErrorIs(t, err, ErrPackFailed)
	for _, doc := range pack.Documents {
		assert.Contains(t, doc.ErrorMessage, "store: bucket unavailable")
	}
}

func TestPreview(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeRenderer{})
	c := createSampleCase(t, a.DB, sampleFacts())

	preview, err := a.Preview(c, "form_3")
	require.NoError(t, err)
	assert.Contains(t, preview.HTML, `<div class="watermark">PREVIEW</div>`)
	assert.Contains(t, preview.HTML, "FORM NO. 3")

	_, err = a.Preview(c, "form_6a")
	assert.ErrorIs(t, err, ErrTemplateNotInPack)
}

func TestPreviewThumbnailRecordsArtifact(t *testing.T) {
	a, storage := newTestAssembler(t, &fakeRenderer{})
	c := createSampleCase(t, a.DB, sampleFacts())

	png, err := a.PreviewThumbnail(context.Background(), c, "n119")
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	var artifacts []models.PreviewArtifact
	require.NoError(t, a.DB.Find(&artifacts, "case_id = ?", c.ID).Error)
	require.Len(t, artifacts, 1)
	assert.True(t, strings.HasPrefix(artifacts[0].StorageKey, "cases/"+c.ID+"/previews/n119_"))

	rc, _, err := storage.Get(context.Background(), artifacts[0].StorageKey)
	require.NoError(t, err)
	rc.Close()
}
