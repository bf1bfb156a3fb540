package services

import (
	"strings"
	"testing"

	"landlord_docs_app_go/legal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocumentData(t *testing.T) DocumentData {
	t.Helper()
	facts := sampleFacts()
	d := legal.ResolveRoute(facts, legal.ResolveOptions{ReferenceDate: legal.DateOf(fixedNow())})
	require.False(t, d.Blocked(), d.Blockers)
	dates, err := legal.CalculateNoticeDates(d, facts, legal.Date{})
	require.NoError(t, err)

	c := createCaseValue(facts)
	return BuildDocumentData(c, d, dates, legal.ClaimQuote{ArrearsPence: 3000_00, ClaimPence: 3000_00, CourtFeePence: 115_00, TotalPence: 3115_00, Online: true}, legal.DateOf(fixedNow()))
}

func TestEveryTemplateRenders(t *testing.T) {
	data := sampleDocumentData(t)

	for _, ref := range legal.AllTemplates() {
		t.Run(ref.Key, func(t *testing.T) {
			body, err := RenderDocument(ref, data)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(body))
			assert.NotContains(t, body, "<no value>")
		})
	}
}

func TestRenderForm3(t *testing.T) {
	ref, ok := legal.TemplateByKey("form_3")
	require.True(t, ok)

	body, err := RenderDocument(ref, sampleDocumentData(t))
	require.NoError(t, err)

	assert.Contains(t, body, "FORM NO. 3")
	assert.Contains(t, body, "Sonia Shezadi")
	assert.Contains(t, body, "35 Woodhall Park Avenue, Pudsey, LS28 7HF")
	assert.Contains(t, body, "Grounds 8, 10 and 11")
	assert.Contains(t, body, "15/01/2026")
	assert.Contains(t, body, "£3,000.00")
	assert.NotContains(t, body, "<script>")
}

func TestRenderForm6A(t *testing.T) {
	ref, _ := legal.TemplateByKey("form_6a")
	data := sampleDocumentData(t)
	data.Dates = legal.NoticeDates{
		ServiceDate:       legal.MustParseDate("2025-12-22"),
		ExpiryDate:        legal.MustParseDate("2026-07-14"),
		LatestProceedings: legal.MustParseDate("2026-06-22"),
	}

	body, err := RenderDocument(ref, data)
	require.NoError(t, err)
	assert.Contains(t, body, "FORM NO. 6A")
	assert.Contains(t, body, "14/07/2026")
	assert.Contains(t, body, "This notice was served on: 22/12/2025")
}

func TestRenderDocumentUnknownTemplate(t *testing.T) {
	_, err := RenderDocument(legal.TemplateRef{Key: "nope", Path: "notices/nope.html"}, DocumentData{})
	assert.Error(t, err)
}

func TestWrapHTMLForPDF(t *testing.T) {
	t.Run("final documents", func(t *testing.T) {
		html := WrapHTMLForPDF("<p>Body</p>", "Form 3 & notes", false)
		assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
		assert.Contains(t, html, "<title>Form 3 &amp; notes</title>")
		assert.Contains(t, html, "size: A4")
		assert.Contains(t, html, "<p>Body</p>")
		assert.NotContains(t, html, `class="watermark"`)
	})

	t.Run("preview", func(t *testing.T) {
		html := WrapHTMLForPDF("<p>Body</p>", "Form 3", true)
		assert.Contains(t, html, `<div class="watermark">PREVIEW</div>`)
	})
}

func TestNl2br(t *testing.T) {
	assert.Equal(t, "a<br>b &lt;i&gt;", string(nl2br("a\r\nb <i>")))
}
