package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landlord_docs_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	err error
}

func (s *stubRenderer) PDF(ctx context.Context, html string, opts services.PDFOptions) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

func (s *stubRenderer) Thumbnail(ctx context.Context, html string, width int) ([]byte, error) {
	return nil, errors.New("not used")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWriteFixturesHTMLOnly(t *testing.T) {
	dir := t.TempDir()
	written, err := writeFixtures(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "form-3-section-8.html"),
		filepath.Join(dir, "form-6a-section-21.html"),
	}, written)

	form3 := readFile(t, written[0])
	assert.Contains(t, form3, "Sonia Shezadi")
	assert.Contains(t, form3, "Tariq Mohammed")
	assert.Contains(t, form3, "35 Woodhall Park Avenue")
	assert.Contains(t, form3, "LS28 7HF")
	assert.Contains(t, form3, "15/01/2026")
	assert.Contains(t, form3, "Ground 8")
	assert.Contains(t, form3, "persistent arrears")

	form6a := readFile(t, written[1])
	assert.Contains(t, form6a, "Sonia Shezadi")
	assert.Contains(t, form6a, "14/07/2026")
}

func TestWriteFixturesWithPDF(t *testing.T) {
	dir := t.TempDir()
	written, err := writeFixtures(context.Background(), dir, &stubRenderer{})
	require.NoError(t, err)
	require.Len(t, written, 4)

	for _, p := range written {
		if strings.HasSuffix(p, ".pdf") {
			assert.True(t, strings.HasPrefix(readFile(t, p), "%PDF-"), p)
		}
	}
}

func TestWriteFixturesRendererFailure(t *testing.T) {
	_, err := writeFixtures(context.Background(), t.TempDir(), &stubRenderer{err: errors.New("chrome missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Form 3")
}

func TestFixturesResolveWithoutSalvage(t *testing.T) {
	for _, fx := range fixtures() {
		t.Run(fx.Name, func(t *testing.T) {
			_, ref, err := renderFixture(fx)
			require.NoError(t, err)
			assert.Equal(t, fx.TemplateKey, ref.Key)
		})
	}
}
