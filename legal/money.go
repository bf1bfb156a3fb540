package legal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StatutoryInterestRate is the County Courts Act 1984 s69 rate (8% simple per annum)
const StatutoryInterestRate = 0.08

// MCOLMaxClaimPence is the largest claim Money Claim Online accepts
const MCOLMaxClaimPence int64 = 100_000_00

var ErrClaimTooLarge = errors.New("claim exceeds the Money Claim Online limit")

// FormatGBP renders pence as "£1,234.56"
func FormatGBP(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	pounds := pence / 100
	rest := pence % 100

	digits := fmt.Sprintf("%d", pounds)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s£%s.%02d", sign, b.String(), rest)
}

// ArrearsEntry is one rent period on the schedule
type ArrearsEntry struct {
	PeriodStart Date  `json:"period_start"`
	PeriodEnd   Date  `json:"period_end"`
	DueDate     Date  `json:"due_date"`
	DuePence    int64 `json:"due_pence" validate:"gte=0"`
	PaidPence   int64 `json:"paid_pence" validate:"gte=0"`
}

// Shortfall is what remains unpaid for the period
func (e ArrearsEntry) Shortfall() int64 {
	if e.PaidPence >= e.DuePence {
		return 0
	}
	return e.DuePence - e.PaidPence
}

// Arrears is the rent schedule, or a declared total when no schedule was entered
type Arrears struct {
	Entries       []ArrearsEntry `json:"entries,omitempty" validate:"dive"`
	DeclaredPence int64          `json:"declared_pence,omitempty" validate:"gte=0"`
	AsOf          Date           `json:"as_of,omitempty"`
}

// TotalPence is the outstanding balance: scheduled dues minus payments, or the declared
// figure when there is no schedule.
func (a Arrears) TotalPence() int64 {
	if len(a.Entries) == 0 {
		return a.DeclaredPence
	}
	var due, paid int64
	for _, e := range a.Entries {
		due += e.DuePence
		paid += e.PaidPence
	}
	if paid >= due {
		return 0
	}
	return due - paid
}

// Sorted returns the entries ordered by period start
func (a Arrears) Sorted() []ArrearsEntry {
	out := append([]ArrearsEntry(nil), a.Entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}

// ConsecutiveUnpaidPeriods counts the trailing run of periods with a shortfall
func (a Arrears) ConsecutiveUnpaidPeriods() int {
	entries := a.Sorted()
	run := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Shortfall() == 0 {
			break
		}
		run++
	}
	return run
}

// MonthlyEquivalentPence converts a rent to its monthly equivalent
func MonthlyEquivalentPence(rent int64, freq RentFrequency) int64 {
	switch freq {
	case RentWeekly:
		return rent * 52 / 12
	case RentFortnightly:
		return rent * 26 / 12
	case RentQuarterly:
		return rent / 3
	case RentYearly:
		return rent / 12
	}
	return rent
}

// MonthsInArrears is the outstanding balance expressed in months of rent
func MonthsInArrears(a Arrears, t Tenancy) float64 {
	monthly := MonthlyEquivalentPence(t.RentPence, t.RentFrequency)
	if monthly <= 0 {
		return 0
	}
	return float64(a.TotalPence()) / float64(monthly)
}

// MeetsSeriousArrearsThreshold applies the Housing Act 1988 Ground 8 test, which the
// Renting Homes (Wales) Act 2016 s157 mirrors: eight weeks' rent for weekly or
// fortnightly rent, two months' for monthly, one quarter for quarterly, three months'
// for yearly rent.
func MeetsSeriousArrearsThreshold(a Arrears, t Tenancy) bool {
	total := a.TotalPence()
	if total <= 0 || t.RentPence <= 0 {
		return false
	}
	switch t.RentFrequency {
	case RentWeekly:
		return total >= 8*t.RentPence
	case RentFortnightly:
		return total >= 4*t.RentPence
	case RentQuarterly:
		return total >= t.RentPence
	case RentYearly:
		return total >= t.RentPence*3/12
	}
	return total >= 2*t.RentPence
}

// ThreeMonthsArrears is the Scottish Ground 12 test: arrears for three or more
// consecutive months. A schedule is used when present, otherwise the balance.
func ThreeMonthsArrears(a Arrears, t Tenancy) bool {
	if a.TotalPence() <= 0 {
		return false
	}
	if len(a.Entries) > 0 && (t.RentFrequency == RentMonthly || t.RentFrequency == "") {
		return a.ConsecutiveUnpaidPeriods() >= 3
	}
	return MonthsInArrears(a, t) >= 3
}

// InterestPence computes simple interest on each unpaid period from its due date to asOf
func InterestPence(a Arrears, asOf Date, rate float64) int64 {
	if len(a.Entries) == 0 {
		return 0
	}
	var total float64
	for _, e := range a.Entries {
		short := e.Shortfall()
		if short == 0 {
			continue
		}
		from := e.DueDate
		if from.IsZero() {
			from = e.PeriodStart
		}
		days := from.DaysUntil(asOf)
		if days <= 0 {
			continue
		}
		total += float64(short) * rate * float64(days) / 365
	}
	return int64(total + 0.5)
}

// DailyInterestPence is the per-day interest that continues to accrue on a balance
func DailyInterestPence(balance int64, rate float64) float64 {
	return float64(balance) * rate / 365
}

type feeBand struct {
	upTo   int64
	online int64
	paper  int64
}

// Civil Proceedings Fees Order bands for money claims (issue fee)
var moneyClaimFeeBands = []feeBand{
	{upTo: 300_00, online: 35_00, paper: 35_00},
	{upTo: 500_00, online: 50_00, paper: 50_00},
	{upTo: 1000_00, online: 70_00, paper: 70_00},
	{upTo: 1500_00, online: 80_00, paper: 80_00},
	{upTo: 3000_00, online: 115_00, paper: 115_00},
	{upTo: 5000_00, online: 205_00, paper: 205_00},
	{upTo: 10000_00, online: 455_00, paper: 455_00},
}

// CourtFee returns the issue fee for a money claim of the given value. Claims above
// £10,000 pay 5% on paper and 4.5% online.
func CourtFee(claimPence int64, online bool) (int64, error) {
	if online && claimPence > MCOLMaxClaimPence {
		return 0, ErrClaimTooLarge
	}
	for _, b := range moneyClaimFeeBands {
		if claimPence <= b.upTo {
			if online {
				return b.online, nil
			}
			return b.paper, nil
		}
	}
	if online {
		return claimPence * 45 / 1000, nil
	}
	fee := claimPence * 5 / 100
	if fee > 10000_00 {
		fee = 10000_00
	}
	return fee, nil
}

// ClaimQuote summarises the amounts on a money claim form
type ClaimQuote struct {
	ArrearsPence       int64   `json:"arrears_pence"`
	OtherDamagesPence  int64   `json:"other_damages_pence"`
	InterestPence      int64   `json:"interest_pence"`
	DailyInterestPence float64 `json:"daily_interest_pence"`
	ClaimPence         int64   `json:"claim_pence"`
	CourtFeePence      int64   `json:"court_fee_pence"`
	TotalPence         int64   `json:"total_pence"`
	AsOf               Date    `json:"as_of"`
	Online             bool    `json:"online"`
}

// QuoteMoneyClaim totals arrears, damages, interest and the court fee
func QuoteMoneyClaim(f Facts, asOf Date) (ClaimQuote, error) {
	q := ClaimQuote{
		ArrearsPence:      f.Arrears.TotalPence(),
		OtherDamagesPence: f.Claim.OtherDamagesPence,
		AsOf:              asOf,
	}
	if f.Claim.ClaimInterest {
		q.InterestPence = InterestPence(f.Arrears, asOf, StatutoryInterestRate)
		q.DailyInterestPence = DailyInterestPence(q.ArrearsPence, StatutoryInterestRate)
	}
	q.ClaimPence = q.ArrearsPence + q.OtherDamagesPence + q.InterestPence

	q.Online = q.ClaimPence <= MCOLMaxClaimPence
	fee, err := CourtFee(q.ClaimPence, q.Online)
	if err != nil {
		return q, err
	}
	q.CourtFeePence = fee
	q.TotalPence = q.ClaimPence + q.CourtFeePence
	return q, nil
}
