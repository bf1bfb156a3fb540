package legal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Jurisdiction is one of the UK legal systems a property can fall under
type Jurisdiction string

const (
	JurisdictionEngland         Jurisdiction = "england"
	JurisdictionWales           Jurisdiction = "wales"
	JurisdictionScotland        Jurisdiction = "scotland"
	JurisdictionNorthernIreland Jurisdiction = "northern_ireland"
)

var (
	ErrJurisdictionUnknown     = errors.New("jurisdiction could not be determined")
	ErrUnsupportedJurisdiction = errors.New("jurisdiction is not supported")
	ErrInvalidPostcode         = errors.New("invalid UK postcode")
)

// IsValid reports whether j is a known jurisdiction
func (j Jurisdiction) IsValid() bool {
	switch j {
	case JurisdictionEngland, JurisdictionWales, JurisdictionScotland, JurisdictionNorthernIreland:
		return true
	}
	return false
}

// Supported reports whether documents can be produced for j
func (j Jurisdiction) Supported() bool {
	return j == JurisdictionEngland || j == JurisdictionWales || j == JurisdictionScotland
}

// Label returns the human readable name used in documents
func (j Jurisdiction) Label() string {
	switch j {
	case JurisdictionEngland:
		return "England"
	case JurisdictionWales:
		return "Wales"
	case JurisdictionScotland:
		return "Scotland"
	case JurisdictionNorthernIreland:
		return "Northern Ireland"
	}
	return string(j)
}

// ParseJurisdiction accepts the canonical values plus a few common spellings
func ParseJurisdiction(s string) (Jurisdiction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "england", "eng", "en":
		return JurisdictionEngland, nil
	case "wales", "cymru", "wal":
		return JurisdictionWales, nil
	case "scotland", "sco":
		return JurisdictionScotland, nil
	case "northern_ireland", "northern ireland", "ni":
		return JurisdictionNorthernIreland, nil
	case "":
		return "", ErrJurisdictionUnknown
	}
	return "", fmt.Errorf("%w: %q", ErrJurisdictionUnknown, s)
}

// postcodeRegex matches a compact UK postcode: outward code (2-4 chars) + inward code (3 chars)
var postcodeRegex = regexp.MustCompile(`^([A-Z]{1,2}[0-9][A-Z0-9]?)([0-9][A-Z]{2})$`)

// NormalisePostcode uppercases a postcode and puts a single space before the inward code
func NormalisePostcode(raw string) (string, error) {
	compact := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	m := postcodeRegex.FindStringSubmatch(compact)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPostcode, raw)
	}
	return m[1] + " " + m[2], nil
}

// PostcodeArea returns the leading letters of the outward code ("LS28 7HF" -> "LS")
func PostcodeArea(postcode string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(postcode)) {
		if r < 'A' || r > 'Z' {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// postcodeDistrict returns the numeric district of the outward code ("SY16 1AA" -> 16)
func postcodeDistrict(postcode string) int {
	outward := strings.Fields(postcode)
	if len(outward) == 0 {
		return -1
	}
	digits := strings.TrimLeft(outward[0], "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	digits = strings.TrimRightFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return -1
	}
	return n
}

var scottishAreas = map[string]bool{
	"AB": true, "DD": true, "DG": true, "EH": true, "FK": true, "G": true, "HS": true,
	"IV": true, "KA": true, "KW": true, "KY": true, "ML": true, "PA": true, "PH": true,
	"TD": true, "ZE": true,
}

var welshAreas = map[string]bool{
	"CF": true, "LD": true, "LL": true, "NP": true, "SA": true,
}

// JurisdictionForPostcode maps a normalised postcode to its jurisdiction
func JurisdictionForPostcode(postcode string) Jurisdiction {
	area := PostcodeArea(postcode)
	district := postcodeDistrict(postcode)

	switch {
	case area == "BT":
		return JurisdictionNorthernIreland
	case area == "TD":
		// TD12 and TD15 sit on the English side of the border
		if district == 12 || district == 15 {
			return JurisdictionEngland
		}
		return JurisdictionScotland
	case scottishAreas[area]:
		return JurisdictionScotland
	case welshAreas[area]:
		return JurisdictionWales
	case area == "SY":
		if district >= 15 && district <= 25 {
			return JurisdictionWales
		}
		return JurisdictionEngland
	case area == "CH":
		if district >= 5 && district <= 8 {
			return JurisdictionWales
		}
		return JurisdictionEngland
	}
	return JurisdictionEngland
}

// Detection is the outcome of jurisdiction detection
type Detection struct {
	Jurisdiction Jurisdiction `json:"jurisdiction"`
	Postcode     string       `json:"postcode,omitempty"`
	Source       string       `json:"source"` // "postcode" or "declared"
	Warnings     []string     `json:"warnings,omitempty"`
}

// DetectJurisdiction works out the jurisdiction from the property postcode, falling back
// to what the landlord declared. A recognised postcode always wins.
func DetectJurisdiction(postcode string, declared Jurisdiction) (Detection, error) {
	normalised, err := NormalisePostcode(postcode)
	if err == nil {
		j := JurisdictionForPostcode(normalised)
		d := Detection{Jurisdiction: j, Postcode: normalised, Source: "postcode"}
		if declared != "" && declared != j {
			d.Warnings = append(d.Warnings, fmt.Sprintf(
				"Property postcode %s is in %s but %s was selected; %s law has been applied.",
				normalised, j.Label(), declared.Label(), j.Label()))
		}
		return d, nil
	}

	if declared.IsValid() {
		d := Detection{Jurisdiction: declared, Source: "declared"}
		if strings.TrimSpace(postcode) != "" {
			d.Warnings = append(d.Warnings, fmt.Sprintf("Postcode %q was not recognised; using the selected jurisdiction.", postcode))
		}
		return d, nil
	}

	return Detection{}, ErrJurisdictionUnknown
}
