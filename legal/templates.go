package legal

import (
	"errors"
	"fmt"
)

var ErrNoTemplates = errors.New("no templates for this product and route")

// TemplateKind groups documents in a pack
type TemplateKind string

const (
	KindNotice    TemplateKind = "notice"
	KindCourtForm TemplateKind = "court_form"
	KindLetter    TemplateKind = "letter"
	KindSchedule  TemplateKind = "schedule"
	KindGuidance  TemplateKind = "guidance"
	KindContract  TemplateKind = "agreement"
)

// TemplateRef points at one embedded document template
type TemplateRef struct {
	Key   string       `json:"key"`
	Path  string       `json:"path"`
	Title string       `json:"title"`
	Kind  TemplateKind `json:"kind"`
}

var templateRefs = map[string]TemplateRef{}

func register(key, path, title string, kind TemplateKind) {
	templateRefs[key] = TemplateRef{Key: key, Path: path, Title: title, Kind: kind}
}

func init() {
	register("form_6a", "notices/form_6a.html", "Form 6A: Notice seeking possession of a property let on an assured shorthold tenancy", KindNotice)
	register("form_3", "notices/form_3.html", "Form 3: Notice seeking possession of a property let on an assured tenancy", KindNotice)
	register("rhw17", "notices/rhw17.html", "Form RHW17: Notice under section 173 of the Renting Homes (Wales) Act 2016", KindNotice)
	register("rhw23", "notices/rhw23.html", "Form RHW23: Notice before making a possession claim", KindNotice)
	register("notice_to_leave", "notices/notice_to_leave.html", "Notice to Leave", KindNotice)

	register("n5b", "court/n5b.html", "Form N5B: Claim for possession of property (accelerated procedure)", KindCourtForm)
	register("n5", "court/n5.html", "Form N5: Claim for possession of property", KindCourtForm)
	register("n119", "court/n119.html", "Form N119: Particulars of claim for possession (rented residential premises)", KindCourtForm)
	register("n215", "court/n215.html", "Form N215: Certificate of service", KindCourtForm)
	register("form_e", "court/form_e.html", "Form E: Application for an eviction order", KindCourtForm)
	register("n1", "court/n1.html", "Form N1: Claim form", KindCourtForm)
	register("particulars_of_claim", "court/particulars_of_claim.html", "Particulars of claim", KindCourtForm)
	register("simple_procedure_3a", "court/simple_procedure_3a.html", "Form 3A: Simple Procedure claim form", KindCourtForm)
	register("witness_statement", "court/witness_statement.html", "Witness statement", KindCourtForm)

	register("letter_before_claim", "letters/letter_before_claim.html", "Letter before claim", KindLetter)
	register("arrears_schedule", "schedules/arrears_schedule.html", "Rent arrears schedule", KindSchedule)
	register("service_guidance", "guidance/service_guidance.html", "How to serve your notice", KindGuidance)

	register("ast", "agreements/ast.html", AgreementTitle(ProductASTStandard), KindContract)
	register("occupation_contract", "agreements/occupation_contract.html", AgreementTitle(ProductOccupationContract), KindContract)
	register("prt", "agreements/prt.html", AgreementTitle(ProductPRT), KindContract)
}

// TemplateByKey returns a registered template
func TemplateByKey(key string) (TemplateRef, bool) {
	ref, ok := templateRefs[key]
	return ref, ok
}

// AllTemplates lists every registered template
func AllTemplates() []TemplateRef {
	out := make([]TemplateRef, 0, len(templateRefs))
	for _, ref := range templateRefs {
		out = append(out, ref)
	}
	return out
}

// NoticeTemplateKey returns the notice form for a route
func NoticeTemplateKey(r Route) string {
	switch r {
	case RouteSection21:
		return "form_6a"
	case RouteSection8:
		return "form_3"
	case RouteSection173:
		return "rhw17"
	case RouteFaultBased:
		return "rhw23"
	case RouteNoticeToLeave:
		return "notice_to_leave"
	}
	return ""
}

// SelectTemplates lists the documents in a pack, in the order they should be read.
// Blocked decisions produce no documents.
func SelectTemplates(product Product, d Decision, f Facts) ([]TemplateRef, error) {
	if d.Blocked() {
		return nil, d.Err()
	}

	var keys []string

	switch product.Kind() {
	case KindEviction:
		notice := NoticeTemplateKey(d.Route)
		if notice == "" {
			return nil, fmt.Errorf("%w: %s for %s", ErrNoTemplates, product, d.Route)
		}
		keys = append(keys, notice)
		if product == ProductCompletePack {
			keys = append(keys, courtKeys(d)...)
		}
		if d.HasArrearsGround() {
			keys = append(keys, "arrears_schedule")
		}
		keys = append(keys, "service_guidance")

	case KindMoney:
		if d.Route == RouteSimpleProcedure {
			keys = append(keys, "letter_before_claim", "simple_procedure_3a")
		} else {
			keys = append(keys, "letter_before_claim", "n1", "particulars_of_claim")
		}
		if len(f.Arrears.Entries) > 0 || f.Arrears.TotalPence() > 0 {
			keys = append(keys, "arrears_schedule")
		}

	case KindAgreement:
		switch d.Product {
		case ProductASTStandard, ProductASTPremium:
			keys = append(keys, "ast")
		case ProductOccupationContract:
			keys = append(keys, "occupation_contract")
		case ProductPRT:
			keys = append(keys, "prt")
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplates, product)
	}
	refs := make([]TemplateRef, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, templateRefs[k])
	}
	return refs, nil
}

// courtKeys returns the court or tribunal forms that follow a notice
func courtKeys(d Decision) []string {
	switch d.Jurisdiction {
	case JurisdictionScotland:
		return []string{"form_e"}
	case JurisdictionWales:
		return []string{"n215", "n5", "n119", "witness_statement"}
	}
	if d.Route == RouteSection21 {
		return []string{"n215", "n5b", "witness_statement"}
	}
	return []string{"n215", "n5", "n119", "witness_statement"}
}
