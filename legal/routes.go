package legal

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRouteBlocked = errors.New("route is blocked")

// ResolveOptions carries the context a decision depends on besides the facts
type ResolveOptions struct {
	// ReferenceDate stands in for the service date when none has been entered yet
	ReferenceDate Date
	// Section21AbolitionDate disables Section 21 for notices served on or after it
	Section21AbolitionDate Date
	Catalogue              *Catalogue
}

// SelectedGround is a catalogue ground the documents will rely on
type SelectedGround struct {
	Ground
	Particulars string `json:"particulars,omitempty"`
	Derived     bool   `json:"derived,omitempty"`
}

// Decision is the outcome of route resolution
type Decision struct {
	RequestedProduct Product          `json:"requested_product"`
	Product          Product          `json:"product"`
	Jurisdiction     Jurisdiction     `json:"jurisdiction,omitempty"`
	RequestedRoute   Route            `json:"requested_route"`
	Route            Route            `json:"route,omitempty"`
	Salvaged         bool             `json:"salvaged"`
	Grounds          []SelectedGround `json:"grounds,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	Blockers         []string         `json:"blockers,omitempty"`
}

// Blocked reports whether no documents can be produced
func (d Decision) Blocked() bool {
	return len(d.Blockers) > 0
}

// HasArrearsGround reports whether any selected ground is rent based
func (d Decision) HasArrearsGround() bool {
	for _, g := range d.Grounds {
		if g.Arrears {
			return true
		}
	}
	return false
}

// GroundCodes lists the selected codes, e.g. ["8","10","11"]
func (d Decision) GroundCodes() []string {
	codes := make([]string, len(d.Grounds))
	for i, g := range d.Grounds {
		codes[i] = g.Code
	}
	return codes
}

// Err returns ErrRouteBlocked wrapped with the blockers, or nil
func (d Decision) Err() error {
	if !d.Blocked() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRouteBlocked, strings.Join(d.Blockers, "; "))
}

type resolver struct {
	f           Facts
	opts        ResolveOptions
	cat         *Catalogue
	d           *Decision
	serviceDate Date
}

// ResolveRoute decides which statutory route, grounds and product apply to the facts.
// Requests for a route from the wrong jurisdiction, or for a route the facts cannot
// support, are salvaged into the nearest valid route when the facts allow it and blocked
// otherwise.
func ResolveRoute(f Facts, opts ResolveOptions) Decision {
	d := Decision{
		RequestedProduct: f.Product,
		Product:          f.Product,
		RequestedRoute:   f.RequestedRoute,
	}
	if d.RequestedRoute == "" {
		d.RequestedRoute = RouteAuto
	}

	cat := opts.Catalogue
	if cat == nil {
		cat = DefaultCatalogue()
	}
	r := &resolver{f: f, opts: opts, cat: cat, d: &d, serviceDate: f.Service.Date}
	if r.serviceDate.IsZero() {
		r.serviceDate = opts.ReferenceDate
	}

	kind := f.Product.Kind()
	if kind == "" {
		d.Blockers = append(d.Blockers, fmt.Sprintf("Unknown product %q.", f.Product))
		return d
	}

	det, err := DetectJurisdiction(f.Property.Postcode, f.DeclaredJurisdiction)
	if err != nil {
		d.Blockers = append(d.Blockers, "We could not tell which part of the UK the property is in. Enter the property postcode.")
		return d
	}
	d.Jurisdiction = det.Jurisdiction
	d.Warnings = append(d.Warnings, det.Warnings...)
	if !d.Jurisdiction.Supported() {
		d.Blockers = append(d.Blockers, fmt.Sprintf("Documents for properties in %s are not available.", d.Jurisdiction.Label()))
		return d
	}

	switch kind {
	case KindEviction:
		r.resolveEviction()
	case KindMoney:
		r.resolveMoneyClaim()
	case KindAgreement:
		r.resolveAgreement()
	}
	return d
}

func (r *resolver) warn(format string, args ...interface{}) {
	r.d.Warnings = append(r.d.Warnings, fmt.Sprintf(format, args...))
}

func (r *resolver) block(format string, args ...interface{}) {
	r.d.Blockers = append(r.d.Blockers, fmt.Sprintf(format, args...))
}

// nativeEvictionRoute translates a requested route into the equivalent route for the
// property's jurisdiction. Auto is passed through.
func nativeEvictionRoute(j Jurisdiction, requested Route) (Route, bool) {
	switch j {
	case JurisdictionScotland:
		return RouteNoticeToLeave, true
	case JurisdictionWales:
		switch requested {
		case RouteSection21, RouteSection173:
			return RouteSection173, true
		case RouteSection8, RouteFaultBased:
			return RouteFaultBased, true
		case RouteAuto, RouteNoticeToLeave:
			return RouteAuto, true
		}
	case JurisdictionEngland:
		switch requested {
		case RouteSection21, RouteSection173:
			return RouteSection21, true
		case RouteSection8, RouteFaultBased:
			return RouteSection8, true
		case RouteAuto, RouteNoticeToLeave:
			return RouteAuto, true
		}
	}
	return "", false
}

func (r *resolver) resolveEviction() {
	requested := r.d.RequestedRoute
	route, ok := nativeEvictionRoute(r.d.Jurisdiction, requested)
	if !ok {
		r.block("%s cannot be used to end a tenancy.", requested.Label())
		return
	}
	if route != RouteAuto && requested != RouteAuto && route != requested {
		r.d.Salvaged = true
		r.warn("%s does not apply to properties in %s; a %s has been prepared instead.",
			requested.Label(), r.d.Jurisdiction.Label(), route.Label())
	}

	switch r.d.Jurisdiction {
	case JurisdictionEngland:
		r.resolveEngland(route)
	case JurisdictionWales:
		r.resolveWales(route)
	case JurisdictionScotland:
		r.resolveScotland()
	}

	// A Notice to Leave request outside Scotland is resolved from the facts
	if requested == RouteNoticeToLeave && r.d.Jurisdiction != JurisdictionScotland {
		if r.d.Route == "" || r.d.Blocked() {
			r.warn("%s does not apply to properties in %s.", requested.Label(), r.d.Jurisdiction.Label())
			return
		}
		r.d.Salvaged = true
		r.warn("%s does not apply to properties in %s; a %s has been prepared instead.",
			requested.Label(), r.d.Jurisdiction.Label(), r.d.Route.Label())
	}
}

// canRelyOnGrounds reports whether a grounds-based route is possible
func (r *resolver) canRelyOnGrounds() bool {
	return len(r.f.Grounds) > 0 || r.f.Arrears.TotalPence() > 0
}

// salvageTo switches the decision to a fallback route and records why
func (r *resolver) salvageTo(route Route, from Route, problems []string) {
	r.d.Route = route
	if r.d.RequestedRoute != RouteAuto {
		r.d.Salvaged = true
	}
	r.warn("A %s cannot be used (%s); a %s has been prepared instead.",
		from.Label(), strings.Join(problems, "; "), route.Label())
}

func (r *resolver) resolveEngland(route Route) {
	if route == RouteAuto {
		route = RouteSection8
		if len(r.f.Grounds) == 0 {
			route = RouteSection21
		}
	}

	if route == RouteSection21 {
		problems := r.section21Problems()
		if len(problems) == 0 {
			r.d.Route = RouteSection21
			r.warnFixedTermRunning()
			return
		}
		if !r.canRelyOnGrounds() {
			for _, p := range problems {
				r.block("Section 21 notice is not valid: %s.", p)
			}
			return
		}
		r.salvageTo(RouteSection8, RouteSection21, problems)
	}

	r.d.Route = RouteSection8
	r.selectEnglandGrounds()
}

// warnFixedTermRunning flags a fixed term that outlasts the two-month notice
func (r *resolver) warnFixedTermRunning() {
	t := r.f.Tenancy
	if t.Type != TenancyFixedTerm || t.FixedTermEnd.IsZero() || r.serviceDate.IsZero() {
		return
	}
	if t.FixedTermEnd.After(r.serviceDate.AddMonths(2)) {
		r.warn("The fixed term runs until %s, more than two months after service; a possession order cannot take effect before the fixed term ends.",
			t.FixedTermEnd.Long())
	}
}

// section21Problems lists every reason a Section 21 notice would be invalid
func (r *resolver) section21Problems() []string {
	var problems []string
	c := r.f.Compliance

	if c.DepositTaken {
		switch {
		case c.DepositProtectedDate.IsZero():
			problems = append(problems, "the deposit has not been protected in a government-approved scheme")
		case !c.DepositReceivedDate.IsZero() && c.DepositProtectedDate.After(c.DepositReceivedDate.AddDays(30)):
			problems = append(problems, "the deposit was protected more than 30 days after it was received")
		}
		if !c.PrescribedInfoGiven {
			problems = append(problems, "the deposit prescribed information has not been given to the tenant")
		}
	}
	if r.f.Property.HasGas && !c.GasSafetyGiven {
		problems = append(problems, "a gas safety record has not been given to the tenant")
	}
	if !c.EPCGiven {
		problems = append(problems, "an Energy Performance Certificate has not been given to the tenant")
	}
	if !c.HowToRentGiven {
		problems = append(problems, "the How to Rent guide has not been given to the tenant")
	}
	if c.LicenceRequired && !c.Licensed {
		problems = append(problems, "the property needs a licence and is not licensed")
	}

	start := r.f.Tenancy.StartDate
	if !start.IsZero() && !r.serviceDate.IsZero() && r.serviceDate.Before(start.AddMonths(4)) {
		problems = append(problems, fmt.Sprintf("it cannot be served in the first four months of the tenancy (not before %s)", start.AddMonths(4).Long()))
	}
	if imp := c.ImprovementNoticeDate; !imp.IsZero() && !r.serviceDate.IsZero() && r.serviceDate.Before(imp.AddMonths(6)) {
		problems = append(problems, "an improvement notice was served in the last six months (retaliatory eviction protection)")
	}
	if ab := r.opts.Section21AbolitionDate; !ab.IsZero() && !r.serviceDate.IsZero() && !r.serviceDate.Before(ab) {
		problems = append(problems, fmt.Sprintf("Section 21 was abolished for notices served from %s", ab.Long()))
	}
	return problems
}

// arrearsParticulars explains the arrears for a ground that was added automatically
func (r *resolver) arrearsParticulars() string {
	total := r.f.Arrears.TotalPence()
	months := MonthsInArrears(r.f.Arrears, r.f.Tenancy)
	text := fmt.Sprintf("At the date of this notice the rent arrears total %s", FormatGBP(total))
	if months > 0 {
		text += fmt.Sprintf(", representing %.1f months' rent at %s per %s",
			months, FormatGBP(r.f.Tenancy.RentPence), frequencyUnit(r.f.Tenancy.RentFrequency))
	}
	return text + "."
}

func frequencyUnit(f RentFrequency) string {
	switch f {
	case RentWeekly:
		return "week"
	case RentFortnightly:
		return "fortnight"
	case RentQuarterly:
		return "quarter"
	case RentYearly:
		return "year"
	}
	return "month"
}

// addGround appends a catalogue ground once
func (r *resolver) addGround(code, particulars string, derived bool) bool {
	g, ok := r.cat.Lookup(r.d.Jurisdiction, code)
	if !ok {
		return false
	}
	for _, existing := range r.d.Grounds {
		if existing.Code == g.Code {
			return true
		}
	}
	if particulars == "" && g.Arrears {
		particulars = r.arrearsParticulars()
	}
	r.d.Grounds = append(r.d.Grounds, SelectedGround{Ground: g, Particulars: particulars, Derived: derived})
	return true
}

func (r *resolver) selectEnglandGrounds() {
	serious := MeetsSeriousArrearsThreshold(r.f.Arrears, r.f.Tenancy)
	total := r.f.Arrears.TotalPence()

	claims := r.f.Grounds
	if len(claims) == 0 && total > 0 {
		derived := []string{}
		if serious {
			r.addGround("8", "", true)
			derived = append(derived, "8")
		}
		r.addGround("10", "", true)
		r.addGround("11", "", true)
		derived = append(derived, "10", "11")
		r.warn("Grounds %s were added from the rent arrears you entered.", joinWithAnd(derived))
	}

	for _, claim := range claims {
		g, ok := r.cat.Lookup(JurisdictionEngland, claim.Code)
		if !ok {
			r.warn("%q is not a Housing Act 1988 ground and has been left out.", claim.Code)
			continue
		}
		code := g.Code
		switch code {
		case "8":
			if !serious {
				r.warn("Ground 8 needs at least two months' (or eight weeks') rent unpaid and has been left out; Grounds 10 and 11 can still be used.")
				continue
			}
		case "10":
			if total <= 0 {
				r.warn("Ground 10 needs some rent to be unpaid and has been left out.")
				continue
			}
		}
		r.addGround(code, claim.Particulars, false)
	}

	if len(r.d.Grounds) == 0 {
		r.block("A Section 8 notice needs at least one ground for possession.")
	}
}

func (r *resolver) resolveWales(route Route) {
	if route == RouteAuto {
		route = RouteFaultBased
		if len(r.f.Grounds) == 0 {
			route = RouteSection173
		}
	}

	if route == RouteSection173 {
		problems := r.section173Problems()
		if len(problems) == 0 {
			r.d.Route = RouteSection173
			return
		}
		if !r.canRelyOnGrounds() {
			for _, p := range problems {
				r.block("Section 173 notice is not valid: %s.", p)
			}
			return
		}
		r.salvageTo(RouteFaultBased, RouteSection173, problems)
	}

	r.d.Route = RouteFaultBased
	r.selectWalesGrounds()
}

func (r *resolver) section173Problems() []string {
	var problems []string
	c := r.f.Compliance

	if !c.WrittenStatementGiven {
		problems = append(problems, "a written statement of the occupation contract has not been given")
	}
	if c.DepositTaken && (c.DepositProtectedDate.IsZero() || !c.PrescribedInfoGiven) {
		problems = append(problems, "the deposit has not been protected with prescribed information given")
	}
	if r.f.Property.HasGas && !c.GasSafetyGiven {
		problems = append(problems, "a gas safety record has not been given to the contract-holder")
	}
	if !c.EPCGiven {
		problems = append(problems, "an Energy Performance Certificate has not been given to the contract-holder")
	}
	if !c.ElectricalSafetyGiven {
		problems = append(problems, "an electrical condition report has not been given to the contract-holder")
	}
	start := r.f.Tenancy.StartDate
	if !start.IsZero() && !r.serviceDate.IsZero() && r.serviceDate.Before(start.AddMonths(6)) {
		problems = append(problems, fmt.Sprintf("it cannot be given within six months of the occupation date (not before %s)", start.AddMonths(6).Long()))
	}
	return problems
}

// walesCodeFor maps a requested code (Welsh or English) onto a Welsh section
func walesCodeFor(code string, serious bool) (string, bool) {
	switch strings.ToLower(code) {
	case "s157", "157":
		if serious {
			return "s157", false
		}
		return "s159", true
	case "s159", "159":
		return "s159", false
	case "s161", "161":
		return "s161", false
	case "s170", "170":
		return "s170", false
	case "8", "10", "11":
		if serious {
			return "s157", true
		}
		return "s159", true
	case "14", "14za", "7a":
		return "s170", true
	case "":
		return "", false
	}
	return "s159", true
}

func (r *resolver) selectWalesGrounds() {
	serious := MeetsSeriousArrearsThreshold(r.f.Arrears, r.f.Tenancy)
	total := r.f.Arrears.TotalPence()

	if len(r.f.Grounds) == 0 && total > 0 {
		if serious {
			r.addGround("s157", "", true)
		} else {
			r.addGround("s159", "", true)
		}
		r.warn("A rent arrears ground was added from the arrears you entered.")
	}

	for _, claim := range r.f.Grounds {
		code, converted := walesCodeFor(CanonicalGroundCode(claim.Code), serious)
		if code == "" {
			continue
		}
		if converted {
			g, _ := r.cat.Lookup(JurisdictionWales, code)
			r.warn("Ground %s has been converted to %s (%s) under the Renting Homes (Wales) Act 2016.", claim.Code, g.Label(), strings.ToLower(g.Title))
		}
		r.addGround(code, claim.Particulars, false)
	}

	if len(r.d.Grounds) == 0 {
		r.block("A possession notice for breach of contract needs at least one ground.")
	}
}

func (r *resolver) resolveScotland() {
	r.d.Route = RouteNoticeToLeave
	requested := r.d.RequestedRoute
	fromEngland := requested != RouteAuto && requested != RouteNoticeToLeave
	c := r.f.Compliance

	if !c.LandlordRegistered {
		r.warn("You must be registered as a landlord with the local council; the Tribunal can refuse an eviction order otherwise.")
	}

	threeMonths := ThreeMonthsArrears(r.f.Arrears, r.f.Tenancy)
	if len(r.f.Grounds) == 0 && threeMonths {
		r.addGround("12", "", true)
		r.warn("Ground 12 (rent arrears) was added from the arrears you entered.")
	}

	for _, claim := range r.f.Grounds {
		code := CanonicalGroundCode(claim.Code)
		if fromEngland {
			switch code {
			case "8", "10", "11", "S157", "S159":
				code = "12"
			default:
				r.warn("Ground %s has no Scottish equivalent and has been left out; choose from the eviction grounds in Schedule 3.", claim.Code)
				continue
			}
		}
		g, ok := r.cat.Lookup(JurisdictionScotland, code)
		if !ok {
			r.warn("%q is not a Scottish eviction ground and has been left out.", claim.Code)
			continue
		}
		code = g.Code
		if code == "12" && !threeMonths {
			r.warn("Ground 12 needs rent arrears for three or more consecutive months and has been left out.")
			continue
		}
		r.addGround(code, claim.Particulars, false)
	}

	for _, g := range r.d.Grounds {
		if (g.Code == "12" || g.Code == "12A") && !c.PreActionRequirementsMet {
			r.block("Before relying on rent arrears you must meet the pre-action requirements (clear information, a reasonable payment plan and signposting to advice).")
			break
		}
	}

	if len(r.d.Grounds) == 0 {
		r.block("A Notice to Leave needs at least one eviction ground.")
	}
}

func (r *resolver) resolveMoneyClaim() {
	requested := r.d.RequestedRoute
	route := RouteMoneyClaim
	if r.d.Jurisdiction == JurisdictionScotland {
		route = RouteSimpleProcedure
	}
	r.d.Route = route
	if requested != RouteAuto && requested != route {
		r.d.Salvaged = true
		r.warn("%s is not available for properties in %s; a %s has been prepared instead.",
			requested.Label(), r.d.Jurisdiction.Label(), route.Label())
	}

	claim := r.f.Arrears.TotalPence() + r.f.Claim.OtherDamagesPence
	if claim <= 0 {
		r.block("A money claim needs unpaid rent or other damages to claim.")
		return
	}
	if route == RouteMoneyClaim && claim > MCOLMaxClaimPence {
		r.warn("Claims over %s cannot be made through Money Claim Online and must be issued on paper.", FormatGBP(MCOLMaxClaimPence))
	}
	if route == RouteSimpleProcedure && claim > 5000_00 {
		r.warn("Simple Procedure covers claims up to £5,000; larger claims use Ordinary Cause in the Sheriff Court.")
	}
}

// agreementFor returns the agreement product that applies in j
func agreementFor(j Jurisdiction, requested Product) Product {
	switch j {
	case JurisdictionWales:
		return ProductOccupationContract
	case JurisdictionScotland:
		return ProductPRT
	}
	if requested == ProductASTPremium {
		return ProductASTPremium
	}
	return ProductASTStandard
}

func (r *resolver) resolveAgreement() {
	r.d.Route = RouteAgreement
	product := agreementFor(r.d.Jurisdiction, r.f.Product)
	if product != r.f.Product {
		r.d.Product = product
		r.d.Salvaged = true
		r.warn("%s uses a different tenancy agreement; a %s has been prepared instead.",
			r.d.Jurisdiction.Label(), AgreementTitle(product))
	}
	if r.f.Product == ProductASTPremium && product != ProductASTPremium {
		r.warn("Premium clauses are written for English assured shorthold tenancies and are not included.")
	}
}

// AgreementTitle names the agreement a product produces
func AgreementTitle(p Product) string {
	switch p {
	case ProductASTStandard:
		return "Assured Shorthold Tenancy Agreement"
	case ProductASTPremium:
		return "Assured Shorthold Tenancy Agreement (Premium)"
	case ProductPRT:
		return "Private Residential Tenancy Agreement"
	case ProductOccupationContract:
		return "Standard Occupation Contract"
	}
	return string(p)
}
