package legal

import (
	"errors"
	"fmt"
)

var (
	ErrNoServiceDate      = errors.New("a service date is needed to calculate notice dates")
	ErrNoNoticeForRoute   = errors.New("route has no notice period")
	ErrUnknownServiceRule = errors.New("unknown service method")
)

// Notice to Leave periods (Private Housing (Tenancies) (Scotland) Act 2016 s62)
const (
	NoticeToLeaveShortDays = 28
	NoticeToLeaveLongDays  = 84
)

// LetterBeforeClaimDays is the response window under the Pre-Action Protocol for Debt Claims
const LetterBeforeClaimDays = 30

// DeemedServiceDate returns the day a notice is treated as received
func DeemedServiceDate(j Jurisdiction, served Date, method ServiceMethod) (Date, error) {
	if j == JurisdictionScotland {
		switch method {
		case ServiceHand, ServiceLetterbox, "":
			return served, nil
		case ServiceFirstClass, ServiceRecordedPost, ServiceEmail:
			return served.AddDays(2), nil
		}
		return Date{}, fmt.Errorf("%w: %q", ErrUnknownServiceRule, method)
	}

	cal := CalendarFor(j)
	switch method {
	case ServiceHand, "":
		return served, nil
	case ServiceLetterbox, ServiceEmail:
		return cal.NextWorkingDay(served), nil
	case ServiceFirstClass, ServiceRecordedPost:
		return cal.AddWorkingDays(served, 2), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrUnknownServiceRule, method)
}

// NoticeDates are the key dates printed on a notice and its guidance
type NoticeDates struct {
	Route               Route    `json:"route"`
	ServiceDate         Date     `json:"service_date"`
	ServiceMethod       string   `json:"service_method"`
	DeemedServiceDate   Date     `json:"deemed_service_date"`
	NoticePeriod        string   `json:"notice_period"`
	ExpiryDate          Date     `json:"expiry_date"`
	EarliestProceedings Date     `json:"earliest_proceedings"`
	LatestProceedings   Date     `json:"latest_proceedings,omitempty"`
	Notes               []string `json:"notes,omitempty"`
}

// CalculateNoticeDates works out expiry and proceedings dates for the decided route.
// When the facts have no service date, fallback is used instead.
func CalculateNoticeDates(d Decision, f Facts, fallback Date) (NoticeDates, error) {
	served := f.Service.Date
	if served.IsZero() {
		served = fallback
	}
	if served.IsZero() {
		return NoticeDates{}, ErrNoServiceDate
	}
	method := f.Service.Method
	if method == "" {
		method = ServiceHand
	}

	deemed, err := DeemedServiceDate(d.Jurisdiction, served, method)
	if err != nil {
		return NoticeDates{}, err
	}
	nd := NoticeDates{
		Route:             d.Route,
		ServiceDate:       served,
		ServiceMethod:     string(method),
		DeemedServiceDate: deemed,
	}

	switch d.Route {
	case RouteSection21:
		section21Dates(&nd, f)
	case RouteSection8, RouteFaultBased:
		groundDates(&nd, d)
	case RouteSection173:
		nd.NoticePeriod = "6 months"
		nd.ExpiryDate = deemed.AddMonths(6)
		nd.EarliestProceedings = nd.ExpiryDate.AddDays(1)
		nd.LatestProceedings = nd.ExpiryDate.AddMonths(2)
	case RouteNoticeToLeave:
		noticeToLeaveDates(&nd, d, f)
	case RouteMoneyClaim, RouteSimpleProcedure:
		nd.NoticePeriod = fmt.Sprintf("%d days", LetterBeforeClaimDays)
		nd.ExpiryDate = deemed.AddDays(LetterBeforeClaimDays)
		nd.EarliestProceedings = nd.ExpiryDate.AddDays(1)
	default:
		return NoticeDates{}, fmt.Errorf("%w: %s", ErrNoNoticeForRoute, d.Route)
	}
	return nd, nil
}

func section21Dates(nd *NoticeDates, f Facts) {
	expiry := nd.DeemedServiceDate.AddMonths(2)
	nd.NoticePeriod = "2 months"

	if start := f.Tenancy.StartDate; !start.IsZero() {
		if floor := start.AddMonths(4); floor.After(expiry) {
			expiry = floor
			nd.Notes = append(nd.Notes, "Expiry moved to four months after the tenancy started.")
		}
	}
	if f.Tenancy.Type == TenancyPeriodic {
		var periodMonths int
		switch f.Tenancy.RentFrequency {
		case RentQuarterly:
			periodMonths = 3
		case RentYearly:
			periodMonths = 6
		}
		if periodMonths > 0 {
			if p := nd.DeemedServiceDate.AddMonths(periodMonths); p.After(expiry) {
				expiry = p
				nd.NoticePeriod = fmt.Sprintf("%d months", periodMonths)
			}
		}
	}
	nd.ExpiryDate = expiry
	nd.EarliestProceedings = expiry.AddDays(1)

	if end := f.Tenancy.FixedTermEnd; f.Tenancy.Type == TenancyFixedTerm && !end.IsZero() && !end.Before(expiry) {
		nd.EarliestProceedings = end.AddDays(1)
		nd.Notes = append(nd.Notes, fmt.Sprintf("Proceedings cannot start before the fixed term ends on %s.", end.Long()))
	}

	nd.LatestProceedings = nd.ServiceDate.AddMonths(6)
	if !nd.LatestProceedings.After(expiry) {
		nd.LatestProceedings = expiry.AddMonths(4)
	}
}

// groundDates uses the longest notice period among the selected grounds
func groundDates(nd *NoticeDates, d Decision) {
	earliest := nd.DeemedServiceDate
	period := NoticePeriod{}
	for _, g := range d.Grounds {
		if end := g.Notice.From(nd.DeemedServiceDate); end.After(earliest) {
			earliest = end
			period = g.Notice
		}
	}
	nd.NoticePeriod = period.String()
	nd.ExpiryDate = earliest
	nd.EarliestProceedings = earliest
	if period.Immediate() {
		nd.Notes = append(nd.Notes, "Proceedings can begin as soon as the notice has been served.")
	}

	if d.Route == RouteSection8 {
		nd.LatestProceedings = nd.ServiceDate.AddMonths(12)
	} else {
		nd.LatestProceedings = nd.ServiceDate.AddMonths(6)
	}
}

func noticeToLeaveDates(nd *NoticeDates, d Decision, f Facts) {
	days := NoticeToLeaveLongDays
	if start := f.Tenancy.StartDate; !start.IsZero() && !start.AddMonths(6).Before(nd.ServiceDate) {
		days = NoticeToLeaveShortDays
		nd.Notes = append(nd.Notes, "The tenant has lived in the property for six months or less, so 28 days' notice applies.")
	} else if len(d.Grounds) > 0 && allShortGrounds(d.Grounds) {
		days = NoticeToLeaveShortDays
	}

	nd.NoticePeriod = fmt.Sprintf("%d days", days)
	nd.ExpiryDate = nd.DeemedServiceDate.AddDays(days + 1)
	nd.EarliestProceedings = nd.ExpiryDate
	nd.LatestProceedings = nd.ExpiryDate.AddMonths(6)
}

func allShortGrounds(grounds []SelectedGround) bool {
	for _, g := range grounds {
		if g.Notice.Months > 0 || g.Notice.Days > NoticeToLeaveShortDays {
			return false
		}
	}
	return true
}
