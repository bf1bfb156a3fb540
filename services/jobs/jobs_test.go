package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Case{}, &models.DocumentPack{}, &models.PreviewArtifact{}, &models.AuditLog{}))
	t.Cleanup(func() {
		services.WaitForAuditEvents()
		sqlDB.Close()
	})
	return db
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Put(ctx context.Context, key string, data []byte, contentType string) (*services.StorageResult, error) {
	args := m.Called(ctx, key, data, contentType)
	return nil, args.Error(1)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	return nil, args.String(1), args.Error(2)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *mockStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Redirects() bool { return false }

func createCase(t *testing.T, db *gorm.DB, status models.CaseStatus, updated time.Time) *models.Case {
	t.Helper()
	c := &models.Case{
		Status:       status,
		ContactEmail: "tariq@example.com",
		Locale:       "en",
		UpdatedAt:    updated,
		Facts: legal.Facts{
			Product:  legal.ProductNoticeOnly,
			Landlord: legal.Party{Name: "Tariq Mohammed"},
			Property: legal.Property{AddressLine1: "35 Woodhall Park Avenue", Town: "Pudsey", Postcode: "LS28 7HF"},
		},
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createPack(t *testing.T, db *gorm.DB, c *models.Case, status models.PackStatus, expiry time.Time, reminded *time.Time) *models.DocumentPack {
	t.Helper()
	p := &models.DocumentPack{
		CaseID:         c.ID,
		Product:        legal.ProductNoticeOnly,
		Jurisdiction:   legal.JurisdictionEngland,
		Route:          legal.RouteSection8,
		Status:         status,
		ContactEmail:   c.ContactEmail,
		Locale:         "en",
		NoticeExpiry:   &expiry,
		ReminderSentAt: reminded,
		NoticeDates:    legal.NoticeDates{ExpiryDate: legal.DateOf(expiry)},
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestSendNoticeExpiryReminders(t *testing.T) {
	db := setupJobsTestDB(t)
	cfg := &config.Config{AppURL: "http://test.com", EmailTestMode: true}
	now := time.Date(2026, time.January, 16, 7, 0, 0, 0, time.UTC)
	c := createCase(t, db, models.CaseStatusGenerated, now)

	due := createPack(t, db, c, models.PackStatusComplete, now.Add(-24*time.Hour), nil)
	alreadySent := now.Add(-time.Hour)
	reminded := createPack(t, db, c, models.PackStatusComplete, now.Add(-24*time.Hour), &alreadySent)
	future := createPack(t, db, c, models.PackStatusComplete, now.Add(48*time.Hour), nil)
	failed := createPack(t, db, c, models.PackStatusFailed, now.Add(-24*time.Hour), nil)

	sent := SendNoticeExpiryReminders(db, cfg, now)
	assert.Equal(t, 1, sent)

	reload := func(id string) models.DocumentPack {
		var p models.DocumentPack
		require.NoError(t, db.First(&p, "id = ?", id).Error)
		return p
	}
	assert.NotNil(t, reload(due.ID).ReminderSentAt)

	for _, id := range []string{future.ID, failed.ID} {
		assert.Nil(t, reload(id).ReminderSentAt, id)
	}
	remindedPack := reload(reminded.ID)
	require.NotNil(t, remindedPack.ReminderSentAt)
	assert.WithinDuration(t, alreadySent, *remindedPack.ReminderSentAt, time.Second)

	// Nothing left on a second run
	assert.Equal(t, 0, SendNoticeExpiryReminders(db, cfg, now))

	services.WaitForAuditEvents()
	var count int64
	db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionRemind).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRemindersSkipDeletedCases(t *testing.T) {
	db := setupJobsTestDB(t)
	cfg := &config.Config{AppURL: "http://test.com", EmailTestMode: true}
	now := time.Now().UTC()
	c := createCase(t, db, models.CaseStatusGenerated, now)
	createPack(t, db, c, models.PackStatusComplete, now.Add(-time.Hour), nil)
	require.NoError(t, db.Delete(c).Error)

	assert.Equal(t, 0, SendNoticeExpiryReminders(db, cfg, now))
}

func TestCleanupPreviews(t *testing.T) {
	db := setupJobsTestDB(t)
	now := time.Now().UTC()
	c := createCase(t, db, models.CaseStatusDraft, now)

	old := models.PreviewArtifact{CaseID: c.ID, TemplateKey: "form_3", StorageKey: "cases/x/previews/old.png", CreatedAt: now.Add(-48 * time.Hour)}
	stuck := models.PreviewArtifact{CaseID: c.ID, TemplateKey: "n5", StorageKey: "cases/x/previews/stuck.png", CreatedAt: now.Add(-48 * time.Hour)}
	fresh := models.PreviewArtifact{CaseID: c.ID, TemplateKey: "form_3", StorageKey: "cases/x/previews/new.png", CreatedAt: now}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&stuck).Error)
	require.NoError(t, db.Create(&fresh).Error)

	storage := new(mockStorage)
	storage.On("Delete", mock.Anything, old.StorageKey).Return(nil)
	storage.On("Delete", mock.Anything, stuck.StorageKey).Return(errors.New("timeout"))

	removed, err := CleanupPreviews(context.Background(), db, storage, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	storage.AssertExpectations(t)

	var keys []string
	db.Model(&models.PreviewArtifact{}).Order("storage_key").Pluck("storage_key", &keys)
	assert.Equal(t, []string{fresh.StorageKey, stuck.StorageKey}, keys)
}

func TestCleanupDrafts(t *testing.T) {
	db := setupJobsTestDB(t)
	now := time.Now().UTC()

	stale := createCase(t, db, models.CaseStatusDraft, now.AddDate(0, 0, -40))
	recent := createCase(t, db, models.CaseStatusDraft, now.AddDate(0, 0, -2))
	generated := createCase(t, db, models.CaseStatusGenerated, now.AddDate(0, 0, -40))

	storage := new(mockStorage)
	storage.On("DeletePrefix", mock.Anything, services.CasePrefix(stale.ID)).Return(2, nil)

	deleted, err := CleanupDrafts(context.Background(), db, storage, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	storage.AssertExpectations(t)

	_, err = services.GetCase(db, stale.ID)
	assert.ErrorIs(t, err, services.ErrCaseNotFound)
	for _, id := range []string{recent.ID, generated.ID} {
		_, err = services.GetCase(db, id)
		assert.NoError(t, err)
	}
}

func TestSchedulerStop(t *testing.T) {
	ignore := goleak.IgnoreCurrent()

	s, err := StartScheduler(nil, &config.Config{}, nil)
	require.NoError(t, err)
	s.Stop()

	goleak.VerifyNone(t, ignore)
}
