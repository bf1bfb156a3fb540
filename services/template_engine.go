package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"strings"

	"landlord_docs_app_go/legal"
)

//go:embed templates/documents
var documentFS embed.FS

var templateFuncs = template.FuncMap{
	"gbp":      legal.FormatGBP,
	"date":     func(d legal.Date) string { return d.UK() },
	"longdate": func(d legal.Date) string { return d.Long() },
	"upper":    strings.ToUpper,
	"join":     func(sep string, items []string) string { return strings.Join(items, sep) },
	"nl2br":    nl2br,
	"add":      func(a, b int) int { return a + b },
}

var documentTemplates = template.Must(
	template.New("documents").Funcs(templateFuncs).ParseFS(documentFS,
		"templates/documents/*.html",
		"templates/documents/*/*.html",
	),
)

// nl2br escapes text and turns newlines into <br> tags
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// RenderDocument executes a document template and returns the body HTML
func RenderDocument(ref legal.TemplateRef, data DocumentData) (string, error) {
	name := path.Base(ref.Path)
	if documentTemplates.Lookup(name) == nil {
		return "", fmt.Errorf("template %s not found", ref.Path)
	}
	data.Title = ref.Title

	var buf bytes.Buffer
	if err := documentTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", ref.Key, err)
	}
	return buf.String(), nil
}

// WrapHTMLForPDF wraps a rendered document with A4 legal styles. Previews get a watermark.
func WrapHTMLForPDF(content, title string, preview bool) string {
	watermark := ""
	if preview {
		watermark = `<div class="watermark">PREVIEW</div>`
	}

	return `<!DOCTYPE html>
<html lang="en-GB">
<head>
    <meta charset="UTF-8">
    <title>` + template.HTMLEscapeString(title) + `</title>
    <style>
        @page {
            size: A4;
            margin: 2cm;
        }
        body {
            font-family: Arial, Helvetica, sans-serif;
            font-size: 11pt;
            line-height: 1.45;
            color: #000;
        }
        .header {
            text-align: center;
            margin-bottom: 18pt;
        }
        .form-no {
            font-weight: bold;
            text-align: right;
        }
        h1 {
            font-size: 15pt;
            font-weight: bold;
            margin: 6pt 0;
        }
        h2 {
            font-size: 12pt;
            font-weight: bold;
            margin: 12pt 0 6pt;
        }
        .section {
            margin-bottom: 14pt;
            page-break-inside: avoid;
        }
        .section-num {
            font-weight: bold;
        }
        .field-value {
            border: 1px solid #000;
            padding: 6pt 8pt;
            margin-top: 4pt;
            min-height: 14pt;
        }
        .ground-text {
            white-space: pre-wrap;
            font-size: 10pt;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin: 8pt 0;
        }
        th, td {
            border: 1px solid #000;
            padding: 4pt 6pt;
            text-align: left;
            vertical-align: top;
        }
        td.amount, th.amount {
            text-align: right;
        }
        .signature-block {
            margin-top: 24pt;
            page-break-inside: avoid;
        }
        .signature-line {
            border-top: 1px solid #000;
            width: 7cm;
            margin-top: 30pt;
            padding-top: 4pt;
        }
        .checkbox {
            font-family: "Courier New", monospace;
        }
        .note {
            font-size: 9pt;
            font-style: italic;
        }
        .watermark {
            position: fixed;
            top: 40%;
            left: 0;
            width: 100%;
            text-align: center;
            font-size: 96pt;
            font-weight: bold;
            color: rgba(200, 0, 0, 0.15);
            transform: rotate(-35deg);
            z-index: 1000;
            pointer-events: none;
        }
    </style>
</head>
<body>
` + watermark + content + `
</body>
</html>`
}
