package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"gorm.io/gorm"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrUnknownStep  = errors.New("unknown wizard step")
)

// CreateCaseInput starts a wizard session
type CreateCaseInput struct {
	Product      legal.Product      `json:"product" validate:"required,oneof=notice_only complete_pack money_claim ast_standard ast_premium prt occupation_contract"`
	Route        legal.Route        `json:"route" validate:"omitempty,oneof=auto section_21 section_8 section_173 fault_based notice_to_leave money_claim simple_procedure agreement"`
	Postcode     string             `json:"postcode" validate:"max=10"`
	Jurisdiction legal.Jurisdiction `json:"jurisdiction" validate:"omitempty,oneof=england wales scotland northern_ireland"`
	Email        string             `json:"email" validate:"omitempty,email"`
	Locale       string             `json:"locale" validate:"omitempty,oneof=en cy"`
}

// CreateCase stores a new draft case
func CreateCase(db *gorm.DB, v *Validator, in CreateCaseInput) (*models.Case, error) {
	if err := v.Validate(in); err != nil {
		return nil, err
	}

	c := &models.Case{
		ContactEmail: strings.TrimSpace(in.Email),
		Locale:       in.Locale,
		Facts: legal.Facts{
			Product:              in.Product,
			RequestedRoute:       in.Route,
			DeclaredJurisdiction: in.Jurisdiction,
		},
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if in.Postcode != "" {
		pc, err := legal.NormalisePostcode(in.Postcode)
		if err != nil {
			return nil, NewValidationError("postcode", "is not a valid UK postcode")
		}
		c.Facts.Property.Postcode = pc
	}

	if err := db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	return c, nil
}

// GetCase loads a case by ID
func GetCase(db *gorm.DB, id string) (*models.Case, error) {
	var c models.Case
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

type landlordStep struct {
	Landlord       legal.Party   `json:"landlord" validate:"required"`
	JointLandlords []legal.Party `json:"joint_landlords" validate:"max=3,dive"`
	Agent          *legal.Party  `json:"agent"`
}

type tenantsStep struct {
	Tenants []legal.Party `json:"tenants" validate:"required,min=1,max=6,dive"`
}

type groundsStep struct {
	Route   legal.Route         `json:"route" validate:"omitempty,oneof=auto section_21 section_8 section_173 fault_based notice_to_leave"`
	Grounds []legal.GroundClaim `json:"grounds" validate:"max=20,dive"`
}

// stepHandlers decode, validate and merge one wizard step into the facts
var stepHandlers = map[string]func(v *Validator, raw []byte, f *legal.Facts) error{
	"property": func(v *Validator, raw []byte, f *legal.Facts) error {
		var p legal.Property
		if err := decodeStep(raw, &p); err != nil {
			return err
		}
		if err := v.Validate(p); err != nil {
			return err
		}
		pc, err := legal.NormalisePostcode(p.Postcode)
		if err != nil {
			return NewValidationError("postcode", "is not a valid UK postcode")
		}
		p.Postcode = pc
		f.Property = p
		return nil
	},
	"landlord": func(v *Validator, raw []byte, f *legal.Facts) error {
		var s landlordStep
		if err := decodeStep(raw, &s); err != nil {
			return err
		}
		if err := v.Validate(s); err != nil {
			return err
		}
		f.Landlord, f.JointLandlords, f.Agent = s.Landlord, s.JointLandlords, s.Agent
		return nil
	},
	"tenants": func(v *Validator, raw []byte, f *legal.Facts) error {
		var s tenantsStep
		if err := decodeStep(raw, &s); err != nil {
			return err
		}
		if err := v.Validate(s); err != nil {
			return err
		}
		f.Tenants = s.Tenants
		return nil
	},
	"tenancy": func(v *Validator, raw []byte, f *legal.Facts) error {
		var t legal.Tenancy
		if err := decodeStep(raw, &t); err != nil {
			return err
		}
		if err := v.Validate(t); err != nil {
			return err
		}
		if t.StartDate.IsZero() {
			return NewValidationError("start_date", "is required")
		}
		if !t.FixedTermEnd.IsZero() && !t.FixedTermEnd.After(t.StartDate) {
			return NewValidationError("fixed_term_end", "must be after the start date")
		}
		f.Tenancy = t
		return nil
	},
	"compliance": func(v *Validator, raw []byte, f *legal.Facts) error {
		var c legal.Compliance
		if err := decodeStep(raw, &c); err != nil {
			return err
		}
		f.Compliance = c
		return nil
	},
	"grounds": func(v *Validator, raw []byte, f *legal.Facts) error {
		var s groundsStep
		if err := decodeStep(raw, &s); err != nil {
			return err
		}
		if err := v.Validate(s); err != nil {
			return err
		}
		if s.Route != "" {
			f.RequestedRoute = s.Route
		}
		f.Grounds = s.Grounds
		return nil
	},
	"arrears": func(v *Validator, raw []byte, f *legal.Facts) error {
		var a legal.Arrears
		if err := decodeStep(raw, &a); err != nil {
			return err
		}
		if err := v.Validate(a); err != nil {
			return err
		}
		for i, e := range a.Entries {
			if e.PeriodEnd.Before(e.PeriodStart) {
				return NewValidationError(fmt.Sprintf("entries[%d].period_end", i), "must not be before the period start")
			}
		}
		f.Arrears = a
		return nil
	},
	"service": func(v *Validator, raw []byte, f *legal.Facts) error {
		var s legal.Service
		if err := decodeStep(raw, &s); err != nil {
			return err
		}
		if err := v.Validate(s); err != nil {
			return err
		}
		f.Service = s
		return nil
	},
	"claim": func(v *Validator, raw []byte, f *legal.Facts) error {
		var c legal.Claim
		if err := decodeStep(raw, &c); err != nil {
			return err
		}
		if err := v.Validate(c); err != nil {
			return err
		}
		f.Claim = c
		return nil
	},
}

// requiredSteps lists the steps a product needs before it can be generated
func requiredSteps(p legal.Product) []string {
	switch p.Kind() {
	case legal.KindEviction:
		return []string{"property", "landlord", "tenants", "tenancy", "compliance", "service"}
	case legal.KindMoney:
		return []string{"property", "landlord", "tenants", "tenancy", "arrears"}
	}
	return []string{"property", "landlord", "tenants", "tenancy"}
}

func decodeStep(raw []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewValidationError("body", err.Error())
	}
	return nil
}

// ApplyStep validates a wizard step payload and merges it into the case facts
func ApplyStep(db *gorm.DB, v *Validator, c *models.Case, step string, raw []byte) error {
	apply, ok := stepHandlers[step]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	facts := c.Facts
	if err := apply(v, raw, &facts); err != nil {
		return err
	}
	c.Facts = facts
	c.MarkStepComplete(step)

	if c.Status == models.CaseStatusDraft && stepsComplete(c) {
		c.Status = models.CaseStatusReady
	}
	if err := db.Save(c).Error; err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}
	return nil
}

func stepsComplete(c *models.Case) bool {
	done := make(map[string]bool, len(c.CompletedSteps))
	for _, s := range c.CompletedSteps {
		done[s] = true
	}
	for _, s := range requiredSteps(c.Facts.Product) {
		if !done[s] {
			return false
		}
	}
	return true
}

// RecordResolution stores the latest decision on the case
func RecordResolution(db *gorm.DB, c *models.Case, d legal.Decision) error {
	c.Resolution = d
	c.Jurisdiction = d.Jurisdiction
	if err := db.Save(c).Error; err != nil {
		return fmt.Errorf("failed to save resolution: %w", err)
	}
	return nil
}

// DeleteCase soft deletes a case and removes its stored files
func DeleteCase(ctx context.Context, db *gorm.DB, storage StorageProvider, id string) (int, error) {
	c, err := GetCase(db, id)
	if err != nil {
		return 0, err
	}
	if err := db.Delete(c).Error; err != nil {
		return 0, fmt.Errorf("failed to delete case: %w", err)
	}
	// The case stays deleted even when file removal fails
	removed, err := storage.DeletePrefix(ctx, CasePrefix(c.ID))
	if err != nil {
		log.Printf("[STORAGE] Failed to remove files for case %s: %v", c.ID, err)
	}
	return removed, nil
}
