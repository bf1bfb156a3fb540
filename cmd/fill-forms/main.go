package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"github.com/spf13/cobra"
)

// fixture is one completed notice written to the output directory
type fixture struct {
	Name        string
	FileStem    string
	TemplateKey string
	Facts       legal.Facts
	// Expiry is the leaving date given on the notice when it is later than the minimum
	Expiry legal.Date
}

var (
	outputDir  string
	htmlOnly   bool
	chromePath string
)

var rootCmd = &cobra.Command{
	Use:   "fill-forms",
	Short: "Write completed Form 3 and Form 6A fixtures",
	Long: `Renders a Section 8 Form 3 and a Section 21 Form 6A for the sample tenancy at
35 Woodhall Park Avenue, Pudsey, and writes HTML and PDF copies to the output directory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var renderer services.Renderer
		if !htmlOnly {
			renderer = services.NewChromeRenderer(chromePath)
		}
		written, err := writeFixtures(cmd.Context(), outputDir, renderer)
		if err != nil {
			return err
		}
		for _, f := range written {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "output/forms", "directory to write the forms to")
	rootCmd.Flags().BoolVar(&htmlOnly, "html-only", false, "skip PDF rendering")
	rootCmd.Flags().StringVar(&chromePath, "chrome", os.Getenv("CHROME_PATH"), "Chrome binary used for PDFs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

const s8Particulars = `The tenant has failed to pay rent since November 2025. As of the date of this notice, rent arrears total £3,000.00 (representing 2 months unpaid rent at £1,500.00 per month).

The tenant has been in persistent arrears for the past 6 months despite multiple requests for payment. Letters were sent on 15/10/2025, 01/11/2025, and 15/11/2025 requesting payment of the outstanding rent.

The mandatory Ground 8 threshold is met as more than 2 months rent remains unpaid.`

func sampleParties() (legal.Property, legal.Party, []legal.Party) {
	return legal.Property{AddressLine1: "35 Woodhall Park Avenue", Town: "Pudsey", Postcode: "LS28 7HF"},
		legal.Party{Name: "Tariq Mohammed", Address: "35 Woodhall Park Avenue, Pudsey, LS28 7HF", Phone: "07700 900123"},
		[]legal.Party{{Name: "Sonia Shezadi"}}
}

func compliantTenancy() legal.Compliance {
	return legal.Compliance{
		DepositTaken:         true,
		DepositReceivedDate:  legal.MustParseDate("2025-07-14"),
		DepositProtectedDate: legal.MustParseDate("2025-07-20"),
		PrescribedInfoGiven:  true,
		GasSafetyGiven:       true,
		EPCGiven:             true,
		HowToRentGiven:       true,
	}
}

func fixtures() []fixture {
	property, landlord, tenants := sampleParties()
	tenancy := legal.Tenancy{
		Type:          legal.TenancyPeriodic,
		StartDate:     legal.MustParseDate("2025-07-14"),
		RentPence:     1500_00,
		RentFrequency: legal.RentMonthly,
		RentDueDay:    1,
		DepositPence:  1500_00,
	}

	s8 := legal.Facts{
		Product:        legal.ProductNoticeOnly,
		RequestedRoute: legal.RouteSection8,
		Property:       property,
		Landlord:       landlord,
		Tenants:        tenants,
		Tenancy:        tenancy,
		Compliance:     compliantTenancy(),
		Grounds: []legal.GroundClaim{
			{Code: "8", Particulars: s8Particulars},
			{Code: "10"},
			{Code: "11"},
		},
		Arrears: legal.Arrears{Entries: []legal.ArrearsEntry{
			{PeriodStart: legal.MustParseDate("2025-11-01"), PeriodEnd: legal.MustParseDate("2025-11-30"), DueDate: legal.MustParseDate("2025-11-01"), DuePence: 1500_00},
			{PeriodStart: legal.MustParseDate("2025-12-01"), PeriodEnd: legal.MustParseDate("2025-12-31"), DueDate: legal.MustParseDate("2025-12-01"), DuePence: 1500_00},
		}},
		Service: legal.Service{Date: legal.MustParseDate("2026-01-01"), Method: legal.ServiceHand},
	}

	s21 := s8
	s21.RequestedRoute = legal.RouteSection21
	s21.Grounds = nil
	s21.Arrears = legal.Arrears{}
	s21.Tenancy.Type = legal.TenancyFixedTerm
	s21.Tenancy.FixedTermEnd = legal.MustParseDate("2026-07-13")
	s21.Service = legal.Service{Date: legal.MustParseDate("2025-12-22"), Method: legal.ServiceHand}

	return []fixture{
		{Name: "Section 8 Form 3", FileStem: "form-3-section-8", TemplateKey: "form_3", Facts: s8},
		{Name: "Section 21 Form 6A", FileStem: "form-6a-section-21", TemplateKey: "form_6a", Facts: s21, Expiry: legal.MustParseDate("2026-07-14")},
	}
}

// renderFixture resolves the facts and renders the notice HTML
func renderFixture(fx fixture) (string, legal.TemplateRef, error) {
	served := fx.Facts.Service.Date
	assembler := &services.Assembler{
		PDF: services.DefaultPDFOptions(),
		Now: func() time.Time { return served.Time },
	}
	c := &models.Case{ID: fx.FileStem, Facts: fx.Facts}
	c.SyncFromFacts()

	res, err := assembler.Resolve(c)
	if err != nil {
		return "", legal.TemplateRef{}, fmt.Errorf("%s: %w", fx.Name, err)
	}
	if res.Decision.Salvaged {
		return "", legal.TemplateRef{}, fmt.Errorf("%s: route was changed to %s", fx.Name, res.Decision.Route)
	}
	ref, ok := legal.TemplateByKey(fx.TemplateKey)
	if !ok {
		return "", legal.TemplateRef{}, fmt.Errorf("%s: unknown template %s", fx.Name, fx.TemplateKey)
	}

	dates := res.Dates
	if !fx.Expiry.IsZero() && fx.Expiry.After(dates.ExpiryDate) {
		dates.ExpiryDate = fx.Expiry
		if dates.EarliestProceedings.Before(fx.Expiry.AddDays(1)) {
			dates.EarliestProceedings = fx.Expiry.AddDays(1)
		}
	}

	data := services.BuildDocumentData(c, res.Decision, dates, legal.ClaimQuote{}, res.Today)
	body, err := services.RenderDocument(ref, data)
	if err != nil {
		return "", ref, fmt.Errorf("%s: %w", fx.Name, err)
	}
	return services.WrapHTMLForPDF(body, ref.Title, false), ref, nil
}

// writeFixtures writes every fixture and fails if any expected file is missing afterwards.
// A nil renderer writes HTML only.
func writeFixtures(ctx context.Context, dir string, renderer services.Renderer) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var expected []string
	for _, fx := range fixtures() {
		html, _, err := renderFixture(fx)
		if err != nil {
			return nil, err
		}

		htmlPath := filepath.Join(dir, fx.FileStem+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", htmlPath, err)
		}
		expected = append(expected, htmlPath)
		log.Printf("[FORMS] Wrote %s", htmlPath)

		if renderer == nil {
			continue
		}
		pdf, err := renderer.PDF(ctx, html, services.DefaultPDFOptions())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fx.Name, err)
		}
		pdfPath := filepath.Join(dir, fx.FileStem+".pdf")
		if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", pdfPath, err)
		}
		expected = append(expected, pdfPath)
		log.Printf("[FORMS] Wrote %s (%d bytes)", pdfPath, len(pdf))
	}

	var missing []string
	for _, p := range expected {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing output files: %v", missing)
	}
	return expected, nil
}
