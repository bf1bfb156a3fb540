package legal

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed grounds.yaml
var groundsYAML []byte

// NoticePeriod is a statutory period expressed in days or calendar months
type NoticePeriod struct {
	Days   int `yaml:"days" json:"days,omitempty"`
	Months int `yaml:"months" json:"months,omitempty"`
}

// From returns the date the period ends when it starts on d
func (p NoticePeriod) From(d Date) Date {
	if p.Months > 0 {
		return d.AddMonths(p.Months)
	}
	return d.AddDays(p.Days)
}

// Immediate reports whether proceedings may begin as soon as notice is served
func (p NoticePeriod) Immediate() bool {
	return p.Days == 0 && p.Months == 0
}

func (p NoticePeriod) String() string {
	switch {
	case p.Months == 1:
		return "1 month"
	case p.Months > 1:
		return fmt.Sprintf("%d months", p.Months)
	case p.Days == 0:
		return "immediate"
	case p.Days%7 == 0:
		return fmt.Sprintf("%d weeks", p.Days/7)
	}
	return fmt.Sprintf("%d days", p.Days)
}

// Ground is one statutory possession ground
type Ground struct {
	Jurisdiction Jurisdiction `yaml:"-" json:"jurisdiction"`
	Code         string       `yaml:"code" json:"code"`
	Title        string       `yaml:"title" json:"title"`
	Mandatory    bool         `yaml:"mandatory" json:"mandatory"`
	Arrears      bool         `yaml:"arrears" json:"arrears"`
	Notice       NoticePeriod `yaml:"notice" json:"notice"`
	Text         string       `yaml:"text" json:"text"`
}

// Label reads "Ground 8" or "Section 157"
func (g Ground) Label() string {
	if strings.HasPrefix(g.Code, "s") {
		return "Section " + strings.TrimPrefix(g.Code, "s")
	}
	return "Ground " + g.Code
}

// Catalogue indexes grounds by jurisdiction
type Catalogue struct {
	byJurisdiction map[Jurisdiction][]Ground
}

// ParseCatalogue reads a grounds YAML document
func ParseCatalogue(data []byte) (*Catalogue, error) {
	raw := map[Jurisdiction][]Ground{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse grounds catalogue: %w", err)
	}
	for j, grounds := range raw {
		if !j.IsValid() {
			return nil, fmt.Errorf("grounds catalogue: unknown jurisdiction %q", j)
		}
		for i := range grounds {
			grounds[i].Jurisdiction = j
		}
	}
	return &Catalogue{byJurisdiction: raw}, nil
}

var (
	defaultCatalogue     *Catalogue
	defaultCatalogueErr  error
	defaultCatalogueOnce sync.Once
)

// DefaultCatalogue returns the embedded catalogue. It panics if the embedded YAML is
// broken, which is caught by the package tests.
func DefaultCatalogue() *Catalogue {
	defaultCatalogueOnce.Do(func() {
		defaultCatalogue, defaultCatalogueErr = ParseCatalogue(groundsYAML)
	})
	if defaultCatalogueErr != nil {
		panic(defaultCatalogueErr)
	}
	return defaultCatalogue
}

// ForJurisdiction lists the grounds available in j, in statutory order
func (c *Catalogue) ForJurisdiction(j Jurisdiction) []Ground {
	return append([]Ground(nil), c.byJurisdiction[j]...)
}

// Lookup finds a ground by code. Codes are matched case-insensitively and an optional
// "ground " prefix is ignored.
// CanonicalGroundCode turns "Ground 14a" or " 8 " into the bare upper-case code
func CanonicalGroundCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) > len("ground ") && strings.EqualFold(code[:len("ground ")], "ground ") {
		code = strings.TrimSpace(code[len("ground "):])
	}
	return strings.ToUpper(code)
}

func (c *Catalogue) Lookup(j Jurisdiction, code string) (Ground, bool) {
	code = CanonicalGroundCode(code)
	for _, g := range c.byJurisdiction[j] {
		if strings.EqualFold(g.Code, code) {
			return g, true
		}
	}
	return Ground{}, false
}
