package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/db"
	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminKey = "test-admin-key"

// fakeRenderer stands in for Chrome; it fails for documents containing failFor
type fakeRenderer struct {
	failFor string
}

func (r *fakeRenderer) PDF(ctx context.Context, html string, opts services.PDFOptions) ([]byte, error) {
	if r.failFor != "" && strings.Contains(html, r.failFor) {
		return nil, errors.New("chrome crashed")
	}
	return []byte("%PDF-1.7 test"), nil
}

func (r *fakeRenderer) Thumbnail(ctx context.Context, html string, width int) ([]byte, error) {
	return []byte("\x89PNG test"), nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	testDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(
		&models.Case{},
		&models.DocumentPack{},
		&models.GeneratedDocument{},
		&models.PreviewArtifact{},
		&models.AuditLog{},
	))

	// Set globals
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	Assembler = &services.Assembler{
		DB:          testDB,
		Storage:     services.Storage,
		Renderer:    &fakeRenderer{},
		Concurrency: 2,
		PDF:         services.DefaultPDFOptions(),
		Now:         func() time.Time { return time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC) },
	}

	t.Cleanup(func() {
		services.WaitForAuditEvents()
		sqlDB.Close()
	})
	return testDB
}

// setupServer builds the full router the way the server does
func setupServer(t *testing.T) *echo.Echo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{Environment: "test", EmailTestMode: true, AppURL: "http://test.local", AdminAPIKeyHash: string(hash)}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	RegisterRoutes(e, cfg)
	return e
}

var clientSeq atomic.Int64

// doRequest sends a request from a fresh client IP so the shared rate limiters never trip.
// headers are name/value pairs and may override the IP.
func doRequest(e *echo.Echo, method, path string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	n := clientSeq.Add(1)
	req.Header.Set(echo.HeaderXRealIP, fmt.Sprintf("10.%d.%d.%d", (n>>16)&255, (n>>8)&255, n&255))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// sampleFacts is a Section 8 rent arrears case in Pudsey
func sampleFacts() legal.Facts {
	return legal.Facts{
		Product:        legal.ProductCompletePack,
		RequestedRoute: legal.RouteSection8,
		Property:       legal.Property{AddressLine1: "35 Woodhall Park Avenue", Town: "Pudsey", Postcode: "LS28 7HF"},
		Landlord:       legal.Party{Name: "Tariq Mohammed", Address: "1 Example Street, Leeds, LS1 1AA"},
		Tenants:        []legal.Party{{Name: "Sonia Shezadi"}},
		Tenancy: legal.Tenancy{
			Type:          legal.TenancyPeriodic,
			StartDate:     legal.MustParseDate("2024-06-01"),
			RentPence:     1500_00,
			RentFrequency: legal.RentMonthly,
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
		Grounds: []legal.GroundClaim{{Code: "8"}, {Code: "10"}, {Code: "11"}},
		Arrears: legal.Arrears{Entries: []legal.ArrearsEntry{
			{PeriodStart: legal.MustParseDate("2025-11-01"), PeriodEnd: legal.MustParseDate("2025-11-30"), DueDate: legal.MustParseDate("2025-11-01"), DuePence: 1500_00},
			{PeriodStart: legal.MustParseDate("2025-12-01"), PeriodEnd: legal.MustParseDate("2025-12-31"), DueDate: legal.MustParseDate("2025-12-01"), DuePence: 1500_00},
		}},
		Service: legal.Service{Date: legal.MustParseDate("2026-01-01"), Method: legal.ServiceHand},
	}
}

func createCase(t *testing.T, facts legal.Facts) *models.Case {
	t.Helper()
	c := &models.Case{Facts: facts, ContactEmail: "tariq@example.com", Locale: "en"}
	require.NoError(t, db.DB.Create(c).Error)
	return c
}

func statusOf(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}

