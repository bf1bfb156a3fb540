package legal

import "time"

// Bank holidays published by GOV.UK. Extend the tables when new years are announced.
var englandWalesBankHolidays = dateSet(
	"2024-01-01", "2024-03-29", "2024-04-01", "2024-05-06", "2024-05-27", "2024-08-26", "2024-12-25", "2024-12-26",
	"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-05", "2025-05-26", "2025-08-25", "2025-12-25", "2025-12-26",
	"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-04", "2026-05-25", "2026-08-31", "2026-12-25", "2026-12-28",
	"2027-01-01", "2027-03-26", "2027-03-29", "2027-05-03", "2027-05-31", "2027-08-30", "2027-12-27", "2027-12-28",
	"2028-01-03", "2028-04-14", "2028-04-17", "2028-05-01", "2028-05-29", "2028-08-28", "2028-12-25", "2028-12-26",
)

var scotlandBankHolidays = dateSet(
	"2024-01-01", "2024-01-02", "2024-03-29", "2024-05-06", "2024-05-27", "2024-08-05", "2024-12-02", "2024-12-25", "2024-12-26",
	"2025-01-01", "2025-01-02", "2025-04-18", "2025-05-05", "2025-05-26", "2025-08-04", "2025-12-01", "2025-12-25", "2025-12-26",
	"2026-01-01", "2026-01-02", "2026-04-03", "2026-05-04", "2026-05-25", "2026-08-03", "2026-11-30", "2026-12-25", "2026-12-28",
	"2027-01-01", "2027-01-04", "2027-03-26", "2027-05-03", "2027-05-31", "2027-08-02", "2027-11-30", "2027-12-27", "2027-12-28",
	"2028-01-03", "2028-01-04", "2028-04-14", "2028-05-01", "2028-05-29", "2028-08-07", "2028-11-30", "2028-12-25", "2028-12-26",
)

func dateSet(dates ...string) map[string]bool {
	out := make(map[string]bool, len(dates))
	for _, d := range dates {
		out[MustParseDate(d).String()] = true
	}
	return out
}

// Calendar answers working-day questions for one jurisdiction
type Calendar struct {
	holidays map[string]bool
}

// CalendarFor returns the bank holiday calendar that applies in j
func CalendarFor(j Jurisdiction) Calendar {
	if j == JurisdictionScotland {
		return Calendar{holidays: scotlandBankHolidays}
	}
	return Calendar{holidays: englandWalesBankHolidays}
}

// IsBankHoliday reports whether d is a bank holiday
func (c Calendar) IsBankHoliday(d Date) bool {
	return c.holidays[d.String()]
}

// IsWorkingDay reports whether d is a weekday that is not a bank holiday
func (c Calendar) IsWorkingDay(d Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsBankHoliday(d)
}

// AddWorkingDays moves forward n working days from d. Zero returns d unchanged.
func (c Calendar) AddWorkingDays(d Date, n int) Date {
	for n > 0 {
		d = d.AddDays(1)
		if c.IsWorkingDay(d) {
			n--
		}
	}
	return d
}

// NextWorkingDay returns the first working day strictly after d
func (c Calendar) NextWorkingDay(d Date) Date {
	return c.AddWorkingDays(d, 1)
}
