package models

import (
	"time"

	"landlord_docs_app_go/legal"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseStatus tracks a case through the wizard
type CaseStatus string

const (
	CaseStatusDraft     CaseStatus = "draft"
	CaseStatusReady     CaseStatus = "ready"
	CaseStatusGenerated CaseStatus = "generated"
)

// Case is one landlord's wizard session and the facts collected so far
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Status CaseStatus `gorm:"not null;default:draft;index" json:"status"`

	// Denormalised from Facts for listing and filtering
	Product              legal.Product      `gorm:"not null;index" json:"product"`
	RequestedRoute       legal.Route        `json:"requested_route"`
	DeclaredJurisdiction legal.Jurisdiction `json:"declared_jurisdiction,omitempty"`
	Jurisdiction         legal.Jurisdiction `gorm:"index" json:"jurisdiction,omitempty"`
	Postcode             string             `gorm:"size:10" json:"postcode"`
	PropertyAddress      string             `json:"property_address"`

	ContactEmail string `json:"contact_email,omitempty"`
	Locale       string `gorm:"size:5;default:en" json:"locale"`

	Facts          legal.Facts    `gorm:"serializer:json;type:text" json:"facts"`
	Resolution     legal.Decision `gorm:"serializer:json;type:text" json:"resolution"`
	CompletedSteps []string       `gorm:"serializer:json;type:text" json:"completed_steps"`

	Packs []DocumentPack `gorm:"foreignKey:CaseID" json:"packs,omitempty"`
}

// BeforeCreate generates UUID before creating record
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = CaseStatusDraft
	}
	c.SyncFromFacts()
	return nil
}

// BeforeSave keeps the denormalised columns in step with the facts
func (c *Case) BeforeSave(tx *gorm.DB) error {
	c.SyncFromFacts()
	return nil
}

// SyncFromFacts copies the searchable fields out of Facts
func (c *Case) SyncFromFacts() {
	if c.Facts.Product != "" {
		c.Product = c.Facts.Product
	} else {
		c.Facts.Product = c.Product
	}
	c.RequestedRoute = c.Facts.RequestedRoute
	c.DeclaredJurisdiction = c.Facts.DeclaredJurisdiction
	if pc, err := legal.NormalisePostcode(c.Facts.Property.Postcode); err == nil {
		c.Postcode = pc
	} else {
		c.Postcode = c.Facts.Property.Postcode
	}
	c.PropertyAddress = c.Facts.Property.Address()
}

// MarkStepComplete records a wizard step once
func (c *Case) MarkStepComplete(step string) {
	for _, s := range c.CompletedSteps {
		if s == step {
			return
		}
	}
	c.CompletedSteps = append(c.CompletedSteps, step)
}

// TableName specifies the table name
func (Case) TableName() string {
	return "cases"
}
