package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services/i18n"

	"github.com/resend/resend-go/v2"
)

//go:embed templates/emails
var emailFS embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// buildEmailWithFallback renders the localised template, falling back to English
func buildEmailWithFallback(templateName string, lang string, tmplData interface{}, toEmail string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, lang, tmplData)
	if err != nil {
		log.Printf("Error loading %s email template for lang %s: %v", templateName, lang, err)
		if lang != i18n.DefaultLocale {
			htmlBody, textBody, err = loadTemplate(templateName, i18n.DefaultLocale, tmplData)
			if err != nil {
				log.Printf("Error loading default 'en' template for %s: %v", templateName, err)
			}
		}
	}

	return &Email{
		To:       []string{toEmail},
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// loadTemplate renders templateName_lang.html/.txt, or templateName.html/.txt when the
// localised file does not exist
func loadTemplate(templateName string, lang string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, []byte, error) {
		name := fmt.Sprintf("templates/emails/%s_%s%s", templateName, lang, ext)
		content, err := emailFS.ReadFile(name)
		if err == nil {
			return name, content, nil
		}
		name = "templates/emails/" + templateName + ext
		content, err = emailFS.ReadFile(name)
		if err != nil {
			return name, nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		return name, content, nil
	}

	name, content, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	name, content, err = read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		log.Printf("Email logged (test mode, not sent)")
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in test mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends a copy of the email in a goroutine so handlers do not wait on Resend
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func() {
		if err := SendEmail(cfg, emailCopy); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}()
}

// PackReadyEmailData contains data for the pack ready email template
type PackReadyEmailData struct {
	Name       string
	Address    string
	Route      string
	Documents  []string
	Partial    bool
	Salvaged   bool
	ExpiryDate string
	Link       string
}

// BuildPackReadyEmail tells the landlord their documents are ready
func BuildPackReadyEmail(toEmail, lang string, data PackReadyEmailData) *Email {
	email := buildEmailWithFallback("pack_ready", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.pack_ready", map[string]interface{}{
		"address": data.Address,
	})
	return email
}

// PackReadyEmailFor fills the pack ready email from a generated pack
func PackReadyEmailFor(appURL string, c *models.Case, pack *models.DocumentPack) *Email {
	data := PackReadyEmailData{
		Name:     c.Facts.Landlord.Name,
		Address:  c.PropertyAddress,
		Route:    pack.Route.Label(),
		Partial:  pack.Status == models.PackStatusPartial,
		Salvaged: pack.Salvaged,
		Link:     fmt.Sprintf("%s/api/packs/%s", strings.TrimRight(appURL, "/"), pack.ID),
	}
	for _, doc := range pack.Documents {
		if doc.Status == models.DocumentStatusRendered {
			data.Documents = append(data.Documents, doc.Title)
		}
	}
	if !pack.NoticeDates.ExpiryDate.IsZero() {
		data.ExpiryDate = pack.NoticeDates.ExpiryDate.Long()
	}
	return BuildPackReadyEmail(c.ContactEmail, i18n.Normalize(c.Locale), data)
}

// NoticeExpiryEmailData contains data for the notice expiry reminder
type NoticeExpiryEmailData struct {
	Name       string
	Address    string
	ExpiryDate string
	Earliest   string
	Latest     string
	Link       string
}

// BuildNoticeExpiryEmail reminds the landlord that a notice has expired
func BuildNoticeExpiryEmail(toEmail, lang string, data NoticeExpiryEmailData) *Email {
	email := buildEmailWithFallback("notice_expiry", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.notice_expiry", map[string]interface{}{
		"address": data.Address,
		"date":    data.ExpiryDate,
	})
	return email
}

// NoticeExpiryEmailFor fills the reminder from a pack and its case
func NoticeExpiryEmailFor(appURL string, c *models.Case, pack *models.DocumentPack) *Email {
	dates := pack.NoticeDates
	data := NoticeExpiryEmailData{
		Name:       c.Facts.Landlord.Name,
		Address:    c.PropertyAddress,
		ExpiryDate: dates.ExpiryDate.Long(),
		Earliest:   dates.EarliestProceedings.Long(),
		Latest:     dates.LatestProceedings.Long(),
		Link:       fmt.Sprintf("%s/api/packs/%s", strings.TrimRight(appURL, "/"), pack.ID),
	}
	to := pack.ContactEmail
	if to == "" {
		to = c.ContactEmail
	}
	lang := pack.Locale
	if lang == "" {
		lang = c.Locale
	}
	return BuildNoticeExpiryEmail(to, i18n.Normalize(lang), data)
}
