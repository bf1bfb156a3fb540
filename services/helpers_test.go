package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a shared-cache in-memory database so background goroutines see the
// same tables as the test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Case{},
		&models.DocumentPack{},
		&models.GeneratedDocument{},
		&models.PreviewArtifact{},
		&models.AuditLog{},
	))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// MockStorageProvider is a mock implementation of StorageProvider
type MockStorageProvider struct {
	mock.Mock
}

func (m *MockStorageProvider) Put(ctx context.Context, key string, data []byte, contentType string) (*StorageResult, error) {
	args := m.Called(ctx, key, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StorageResult), args.Error(1)
}

func (m *MockStorageProvider) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockStorageProvider) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorageProvider) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *MockStorageProvider) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockStorageProvider) Redirects() bool {
	return m.Called().Bool(0)
}

// fakeRenderer returns the HTML as the "PDF" and fails for titles listed in failFor
type fakeRenderer struct {
	mu      sync.Mutex
	failFor []string
	printed []string
}

func (r *fakeRenderer) PDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	for _, f := range r.failFor {
		if strings.Contains(html, f) {
			return nil, errors.New("chrome crashed")
		}
	}
	r.mu.Lock()
	r.printed = append(r.printed, html)
	r.mu.Unlock()
	return []byte("%PDF-1.7 " + html), nil
}

func (r *fakeRenderer) Thumbnail(ctx context.Context, html string, width int) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

// sampleFacts is a Section 8 rent arrears case in Pudsey
func sampleFacts() legal.Facts {
	return legal.Facts{
		Product:        legal.ProductCompletePack,
		RequestedRoute: legal.RouteSection8,
		Property: legal.Property{
			AddressLine1: "35 Woodhall Park Avenue",
			Town:         "Pudsey",
			Postcode:     "LS28 7HF",
			HasGas:       true,
		},
		Landlord: legal.Party{Name: "Tariq Mohammed", Address: "1 Example Street, Leeds, LS1 1AA", Phone: "07123 456789"},
		Tenants:  []legal.Party{{Name: "Sonia Shezadi"}},
		Tenancy: legal.Tenancy{
			Type:          legal.TenancyPeriodic,
			StartDate:     legal.MustParseDate("2024-06-01"),
			RentPence:     1500_00,
			RentFrequency: legal.RentMonthly,
			DepositPence:  1500_00,
		},
		Compliance: legal.Compliance{
			DepositTaken:         true,
			DepositReceivedDate:  legal.MustParseDate("2024-06-01"),
			DepositProtectedDate: legal.MustParseDate("2024-06-10"),
			PrescribedInfoGiven:  true,
			GasSafetyGiven:       true,
			EPCGiven:             true,
			HowToRentGiven:       true,
		},
		Grounds: []legal.GroundClaim{
			{Code: "8", Particulars: "The tenant has not paid rent since November 2025.\n<script>alert(1)</script>Two months are unpaid."},
			{Code: "10"},
			{Code: "11"},
		},
		Arrears: legal.Arrears{Entries: []legal.ArrearsEntry{
			{PeriodStart: legal.MustParseDate("2025-11-01"), PeriodEnd: legal.MustParseDate("2025-11-30"), DueDate: legal.MustParseDate("2025-11-01"), DuePence: 1500_00},
			{PeriodStart: legal.MustParseDate("2025-12-01"), PeriodEnd: legal.MustParseDate("2025-12-31"), DueDate: legal.MustParseDate("2025-12-01"), DuePence: 1500_00},
		}},
		Service: legal.Service{Date: legal.MustParseDate("2026-01-01"), Method: legal.ServiceHand},
	}
}

func createSampleCase(t *testing.T, db *gorm.DB, facts legal.Facts) *models.Case {
	t.Helper()
	c := &models.Case{Facts: facts, ContactEmail: "tariq@example.com", Locale: "en"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func fixedNow() time.Time {
	return time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
}
