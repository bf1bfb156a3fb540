package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	nested := map[string]interface{}{
		"email": map[string]interface{}{
			"subject": map[string]interface{}{
				"pack_ready": "Ready",
			},
		},
		"count": 123,
	}

	flat := make(map[string]string)
	flatten("", nested, flat)

	assert.Equal(t, "Ready", flat["email.subject.pack_ready"])
	assert.Equal(t, "123", flat["count"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Hello World", format("Hello World"))
	assert.Equal(t, "Hello Sonia", format("Hello {name}", map[string]interface{}{"name": "Sonia"}))
	assert.Equal(t, "Hello {name}", format("Hello {name}", map[string]interface{}{"other": "x"}))
	assert.Equal(t, "3 of 7", format("{done} of {total}", map[string]interface{}{"done": 3, "total": 7}))
}

func TestLoadEmbeddedLocales(t *testing.T) {
	require.NoError(t, Load())
	assert.Equal(t, []string{"cy", "en"}, Locales())

	mutex.RLock()
	defer mutex.RUnlock()
	for key := range translations["en"] {
		_, ok := translations["cy"][key]
		assert.True(t, ok, "cy is missing %s", key)
	}
}

func TestTranslate(t *testing.T) {
	args := map[string]interface{}{"address": "35 Woodhall Park Avenue"}

	assert.Equal(t, "Your documents for 35 Woodhall Park Avenue are ready",
		Translate("en", "email.subject.pack_ready", args))
	assert.Equal(t, "Mae eich dogfennau ar gyfer 35 Woodhall Park Avenue yn barod",
		Translate("cy", "email.subject.pack_ready", args))

	t.Run("unknown locale falls back to English", func(t *testing.T) {
		assert.Equal(t, "Case not found", Translate("fr", "errors.case_not_found"))
	})

	t.Run("missing key returns the key", func(t *testing.T) {
		assert.Equal(t, "missing.key", Translate("cy", "missing.key"))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cy", Normalize("cy-GB"))
	assert.Equal(t, "cy", Normalize(" CY "))
	assert.Equal(t, "en", Normalize("en-GB,en;q=0.9"))
	assert.Equal(t, "en", Normalize("fr"))
	assert.Equal(t, "en", Normalize(""))
}

func TestLocaleContext(t *testing.T) {
	assert.Equal(t, "en", GetLocale(context.Background()))

	ctx := WithLocale(context.Background(), "cy-GB")
	assert.Equal(t, "cy", GetLocale(ctx))
	assert.Equal(t, "Rhagolwg", T(ctx, "preview.title"))
}
