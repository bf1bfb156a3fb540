package legal

import "strings"

// Product is what the landlord is buying from the wizard
type Product string

const (
	ProductNoticeOnly         Product = "notice_only"
	ProductCompletePack       Product = "complete_pack"
	ProductMoneyClaim         Product = "money_claim"
	ProductASTStandard        Product = "ast_standard"
	ProductASTPremium         Product = "ast_premium"
	ProductPRT                Product = "prt"
	ProductOccupationContract Product = "occupation_contract"
)

// ProductKind groups products by the decision tree they go through
type ProductKind string

const (
	KindEviction  ProductKind = "eviction"
	KindMoney     ProductKind = "money"
	KindAgreement ProductKind = "agreement"
)

// Kind returns the decision tree a product belongs to, or "" for unknown products
func (p Product) Kind() ProductKind {
	switch p {
	case ProductNoticeOnly, ProductCompletePack:
		return KindEviction
	case ProductMoneyClaim:
		return KindMoney
	case ProductASTStandard, ProductASTPremium, ProductPRT, ProductOccupationContract:
		return KindAgreement
	}
	return ""
}

// Route is a statutory procedure a document set follows
type Route string

const (
	RouteAuto            Route = "auto"
	RouteSection21       Route = "section_21"
	RouteSection8        Route = "section_8"
	RouteSection173      Route = "section_173"
	RouteFaultBased      Route = "fault_based"
	RouteNoticeToLeave   Route = "notice_to_leave"
	RouteMoneyClaim      Route = "money_claim"
	RouteSimpleProcedure Route = "simple_procedure"
	RouteAgreement       Route = "agreement"
)

// Label is the name shown to landlords
func (r Route) Label() string {
	switch r {
	case RouteSection21:
		return "Section 21 (no-fault) notice"
	case RouteSection8:
		return "Section 8 (grounds-based) notice"
	case RouteSection173:
		return "Section 173 (no-fault) notice"
	case RouteFaultBased:
		return "Breach of contract possession notice"
	case RouteNoticeToLeave:
		return "Notice to Leave"
	case RouteMoneyClaim:
		return "Money claim (MCOL)"
	case RouteSimpleProcedure:
		return "Simple Procedure claim"
	case RouteAgreement:
		return "Tenancy agreement"
	case RouteAuto:
		return "Automatic"
	}
	return string(r)
}

// RentFrequency is how often rent falls due
type RentFrequency string

const (
	RentWeekly      RentFrequency = "weekly"
	RentFortnightly RentFrequency = "fortnightly"
	RentMonthly     RentFrequency = "monthly"
	RentQuarterly   RentFrequency = "quarterly"
	RentYearly      RentFrequency = "yearly"
)

// TenancyType describes the current state of the tenancy or contract
type TenancyType string

const (
	TenancyFixedTerm TenancyType = "fixed_term"
	TenancyPeriodic  TenancyType = "periodic"
)

// ServiceMethod is how a notice is given to the tenant
type ServiceMethod string

const (
	ServiceHand         ServiceMethod = "hand"
	ServiceLetterbox    ServiceMethod = "letterbox"
	ServiceFirstClass   ServiceMethod = "first_class_post"
	ServiceEmail        ServiceMethod = "email"
	ServiceRecordedPost ServiceMethod = "recorded_post"
)

// Party is a landlord, agent or tenant
type Party struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// Property holds the let property details
type Property struct {
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2,omitempty" validate:"max=200"`
	Town         string `json:"town" validate:"required,max=100"`
	Postcode     string `json:"postcode" validate:"required,max=10"`
	HasGas       bool   `json:"has_gas"`
	IsHMO        bool   `json:"is_hmo"`
}

// Address renders the property address on one line
func (p Property) Address() string {
	parts := []string{}
	for _, s := range []string{p.AddressLine1, p.AddressLine2, p.Town, p.Postcode} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Tenancy captures the tenancy or occupation contract terms
type Tenancy struct {
	Type          TenancyType   `json:"type" validate:"omitempty,oneof=fixed_term periodic"`
	StartDate     Date          `json:"start_date"`
	FixedTermEnd  Date          `json:"fixed_term_end,omitempty"`
	RentPence     int64         `json:"rent_pence" validate:"gte=0"`
	RentFrequency RentFrequency `json:"rent_frequency" validate:"omitempty,oneof=weekly fortnightly monthly quarterly yearly"`
	RentDueDay    int           `json:"rent_due_day,omitempty" validate:"gte=0,lte=31"`
	DepositPence  int64         `json:"deposit_pence" validate:"gte=0"`
}

// Compliance records the statutory prerequisites that decide route validity
type Compliance struct {
	DepositTaken             bool `json:"deposit_taken"`
	DepositReceivedDate      Date `json:"deposit_received_date,omitempty"`
	DepositProtectedDate     Date `json:"deposit_protected_date,omitempty"`
	PrescribedInfoGiven      bool `json:"prescribed_info_given"`
	GasSafetyGiven           bool `json:"gas_safety_given"`
	EPCGiven                 bool `json:"epc_given"`
	HowToRentGiven           bool `json:"how_to_rent_given"`
	ElectricalSafetyGiven    bool `json:"electrical_safety_given"`
	LicenceRequired          bool `json:"licence_required"`
	Licensed                 bool `json:"licensed"`
	ImprovementNoticeDate    Date `json:"improvement_notice_date,omitempty"`
	WrittenStatementGiven    bool `json:"written_statement_given"`
	LandlordRegistered       bool `json:"landlord_registered"`
	PreActionRequirementsMet bool `json:"pre_action_requirements_met"`
}

// GroundClaim is a ground the landlord wants to rely on, with their explanation
type GroundClaim struct {
	Code        string `json:"code" validate:"required,max=8"`
	Particulars string `json:"particulars,omitempty" validate:"max=10000"`
}

// Service describes when and how the notice will be given
type Service struct {
	Date   Date          `json:"date"`
	Method ServiceMethod `json:"method" validate:"omitempty,oneof=hand letterbox first_class_post email recorded_post"`
}

// Claim holds extra money claim details beyond rent arrears
type Claim struct {
	OtherDamagesPence int64  `json:"other_damages_pence" validate:"gte=0"`
	DamagesDetails    string `json:"damages_details,omitempty" validate:"max=5000"`
	ClaimInterest     bool   `json:"claim_interest"`
}

// Facts is everything the wizard has collected for a case
type Facts struct {
	Product              Product       `json:"product"`
	RequestedRoute       Route         `json:"requested_route,omitempty"`
	DeclaredJurisdiction Jurisdiction  `json:"declared_jurisdiction,omitempty"`
	Property             Property      `json:"property"`
	Landlord             Party         `json:"landlord"`
	JointLandlords       []Party       `json:"joint_landlords,omitempty"`
	Agent                *Party        `json:"agent,omitempty"`
	Tenants              []Party       `json:"tenants,omitempty"`
	Tenancy              Tenancy       `json:"tenancy"`
	Compliance           Compliance    `json:"compliance"`
	Grounds              []GroundClaim `json:"grounds,omitempty"`
	Arrears              Arrears       `json:"arrears"`
	Service              Service       `json:"service"`
	Claim                Claim         `json:"claim"`
}

// TenantNames joins the tenant names for use on forms
func (f Facts) TenantNames() string {
	names := make([]string, 0, len(f.Tenants))
	for _, t := range f.Tenants {
		if n := strings.TrimSpace(t.Name); n != "" {
			names = append(names, n)
		}
	}
	return joinWithAnd(names)
}

// LandlordNames joins the landlord and any joint landlords
func (f Facts) LandlordNames() string {
	names := []string{}
	if n := strings.TrimSpace(f.Landlord.Name); n != "" {
		names = append(names, n)
	}
	for _, l := range f.JointLandlords {
		if n := strings.TrimSpace(l.Name); n != "" {
			names = append(names, n)
		}
	}
	return joinWithAnd(names)
}

// HasGroundCode reports whether the landlord asked for the given ground
func (f Facts) HasGroundCode(code string) bool {
	for _, g := range f.Grounds {
		if strings.EqualFold(g.Code, code) {
			return true
		}
	}
	return false
}

// joinWithAnd renders ["a","b","c"] as "a, b and c"
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
