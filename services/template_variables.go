package services

import (
	"fmt"
	"html/template"
	"strings"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"github.com/microcosm-cc/bluemonday"
)

// DocumentData is the view model every document template renders from
type DocumentData struct {
	CaseID    string
	Reference string
	Title     string
	Preview   bool

	Product           legal.Product
	Jurisdiction      legal.Jurisdiction
	JurisdictionLabel string
	Route             legal.Route
	RouteLabel        string
	Salvaged          bool
	Premium           bool

	PropertyAddress string
	Property        legal.Property
	Landlord        legal.Party
	LandlordNames   string
	JointLandlord   bool
	Agent           *legal.Party
	Tenants         []legal.Party
	TenantNames     string

	Tenancy       legal.Tenancy
	TenancyType   string
	RentPence     int64
	RentUnit      string
	DepositPence  int64
	Compliance    legal.Compliance
	ServiceMethod string

	Grounds    []GroundView
	GroundList string

	Arrears         []ArrearsRow
	ArrearsPence    int64
	MonthsInArrears string

	Dates legal.NoticeDates
	Claim legal.ClaimQuote
	// DamagesDetails is sanitised free text
	DamagesDetails template.HTML

	Warnings []string
	Today    legal.Date
}

// GroundView is a selected ground as printed on a notice
type GroundView struct {
	Code         string
	Label        string
	Title        string
	Text         string
	Mandatory    bool
	Derived      bool
	NoticePeriod string
	Particulars  template.HTML
}

// ArrearsRow is one line of the rent schedule with its running balance
type ArrearsRow struct {
	PeriodStart  legal.Date
	PeriodEnd    legal.Date
	DueDate      legal.Date
	DuePence     int64
	PaidPence    int64
	BalancePence int64
}

var particularsPolicy = bluemonday.UGCPolicy()

// sanitizeText strips unsafe markup from landlord free text and keeps line breaks
func sanitizeText(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	clean := particularsPolicy.Sanitize(s)
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

// BuildDocumentData flattens a case and its decision into template fields
func BuildDocumentData(c *models.Case, d legal.Decision, dates legal.NoticeDates, quote legal.ClaimQuote, today legal.Date) DocumentData {
	f := c.Facts

	data := DocumentData{
		CaseID:            c.ID,
		Reference:         caseReference(c.ID),
		Product:           d.Product,
		Jurisdiction:      d.Jurisdiction,
		JurisdictionLabel: d.Jurisdiction.Label(),
		Route:             d.Route,
		RouteLabel:        d.Route.Label(),
		Salvaged:          d.Salvaged,
		Premium:           d.Product == legal.ProductASTPremium,
		PropertyAddress:   f.Property.Address(),
		Property:          f.Property,
		Landlord:          f.Landlord,
		LandlordNames:     f.LandlordNames(),
		JointLandlord:     len(f.JointLandlords) > 0,
		Agent:             f.Agent,
		Tenants:           f.Tenants,
		TenantNames:       f.TenantNames(),
		Tenancy:           f.Tenancy,
		TenancyType:       tenancyTypeLabel(f.Tenancy.Type),
		RentPence:         f.Tenancy.RentPence,
		RentUnit:          rentUnit(f.Tenancy.RentFrequency),
		DepositPence:      f.Tenancy.DepositPence,
		Compliance:        f.Compliance,
		ServiceMethod:     serviceMethodLabel(f.Service.Method),
		ArrearsPence:      f.Arrears.TotalPence(),
		Dates:             dates,
		Claim:             quote,
		DamagesDetails:    sanitizeText(f.Claim.DamagesDetails),
		Warnings:          d.Warnings,
		Today:             today,
	}

	if m := legal.MonthsInArrears(f.Arrears, f.Tenancy); m > 0 {
		data.MonthsInArrears = fmt.Sprintf("%.1f", m)
	}

	codes := make([]string, 0, len(d.Grounds))
	for _, g := range d.Grounds {
		data.Grounds = append(data.Grounds, GroundView{
			Code:         g.Code,
			Label:        g.Label(),
			Title:        g.Title,
			Text:         strings.TrimSpace(g.Text),
			Mandatory:    g.Mandatory,
			Derived:      g.Derived,
			NoticePeriod: g.Notice.String(),
			Particulars:  sanitizeText(g.Particulars),
		})
		codes = append(codes, g.Code)
	}
	data.GroundList = listWithAnd(codes)

	var balance int64
	for _, e := range f.Arrears.Sorted() {
		balance += e.DuePence - e.PaidPence
		data.Arrears = append(data.Arrears, ArrearsRow{
			PeriodStart:  e.PeriodStart,
			PeriodEnd:    e.PeriodEnd,
			DueDate:      e.DueDate,
			DuePence:     e.DuePence,
			PaidPence:    e.PaidPence,
			BalancePence: balance,
		})
	}

	return data
}

func caseReference(id string) string {
	ref := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return "LD-" + ref
}

func listWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func rentUnit(freq legal.RentFrequency) string {
	switch freq {
	case legal.RentWeekly:
		return "per week"
	case legal.RentFortnightly:
		return "per fortnight"
	case legal.RentQuarterly:
		return "per quarter"
	case legal.RentYearly:
		return "per year"
	}
	return "per month"
}

func tenancyTypeLabel(t legal.TenancyType) string {
	switch t {
	case legal.TenancyFixedTerm:
		return "fixed term"
	case legal.TenancyPeriodic:
		return "periodic"
	}
	return ""
}

func serviceMethodLabel(m legal.ServiceMethod) string {
	switch m {
	case legal.ServiceHand:
		return "by hand to the tenant"
	case legal.ServiceLetterbox:
		return "by leaving it at the property"
	case legal.ServiceFirstClass:
		return "by first class post"
	case legal.ServiceRecordedPost:
		return "by recorded delivery"
	case legal.ServiceEmail:
		return "by email"
	}
	return ""
}
