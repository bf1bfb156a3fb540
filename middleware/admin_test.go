package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRequireAdminKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-admin-key"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{AdminAPIKeyHash: string(hash)}

	e := echo.New()
	handler := RequireAdminKey(cfg)(func(c echo.Context) error {
		assert.True(t, IsAdmin(c))
		return c.NoContent(http.StatusNoContent)
	})

	call := func(cfg *config.Config, key string) error {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
		if key != "" {
			req.Header.Set(AdminKeyHeader, key)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		return RequireAdminKey(cfg)(func(c echo.Context) error { return nil })(c)
	}

	t.Run("valid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
		req.Header.Set(AdminKeyHeader, "s3cret-admin-key")
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	for name, tc := range map[string]struct {
		cfg *config.Config
		key string
	}{
		"missing header": {cfg, ""},
		"wrong key":      {cfg, "guess"},
		"no hash set":    {&config.Config{}, "s3cret-admin-key"},
	} {
		t.Run(name, func(t *testing.T) {
			err := call(tc.cfg, tc.key)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestRequireAdminKeyTracksFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-admin-key"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{AdminAPIKeyHash: string(hash)}

	saved := services.Monitor
	services.Monitor = services.NewSecurityMonitor()
	defer func() { services.Monitor = saved }()

	e := echo.New()
	mw := RequireAdminKey(cfg)(func(c echo.Context) error { return nil })
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
		req.Header.Set(AdminKeyHeader, "guess")
		req.Header.Set(echo.HeaderXRealIP, "203.0.113.50")
		require.Error(t, mw(e.NewContext(req, httptest.NewRecorder())))
	}

	alerts := services.Monitor.RecentAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "203.0.113.50", alerts[0].IP)
}

func TestIsAdminDefault(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.False(t, IsAdmin(c))
}

func TestPreviewHeaders(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := PreviewHeaders()(func(c echo.Context) error { return c.HTML(http.StatusOK, "<p>x</p>") })(c)
	require.NoError(t, err)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
