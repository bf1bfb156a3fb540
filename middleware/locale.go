package middleware

import (
	"net/http"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

const ContextKeyLocale = "locale"

var localeMatcher = language.NewMatcher([]language.Tag{language.English, language.MustParse("cy")})

// Locale picks the response language for emails and previews.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Default ("en")
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var lang string
			if q := c.QueryParam("lang"); q != "" {
				lang = i18n.Normalize(q)
				SetLanguageCookie(c, cfg, lang)
			} else if cookie, err := c.Cookie("lang"); err == nil {
				lang = i18n.Normalize(cookie.Value)
			} else {
				lang = acceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set(ContextKeyLocale, lang)
			// templ components read the locale from the request context
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

func acceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.DefaultLocale
	}
	tag, _, _ := localeMatcher.Match(tags...)
	base, _ := tag.Base()
	return i18n.Normalize(base.String())
}

// SetLanguageCookie remembers the chosen language for a year
func SetLanguageCookie(c echo.Context, cfg *config.Config, lang string) {
	c.SetCookie(&http.Cookie{
		Name:     "lang",
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.Environment == "production",
	})
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get(ContextKeyLocale).(string); ok {
		return lang
	}
	return i18n.DefaultLocale
}
