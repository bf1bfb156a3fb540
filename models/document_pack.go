package models

import (
	"time"

	"landlord_docs_app_go/legal"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackStatus is the outcome of a generation run
type PackStatus string

const (
	PackStatusPending  PackStatus = "pending"
	PackStatusComplete PackStatus = "complete"
	PackStatusPartial  PackStatus = "partial"
	PackStatusFailed   PackStatus = "failed"
)

// DocumentPack is one generation run for a case
type DocumentPack struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	Product      legal.Product      `gorm:"not null" json:"product"`
	Jurisdiction legal.Jurisdiction `gorm:"not null" json:"jurisdiction"`
	Route        legal.Route        `gorm:"not null" json:"route"`
	Salvaged     bool               `gorm:"not null;default:false" json:"salvaged"`
	Status       PackStatus         `gorm:"not null;default:pending;index" json:"status"`

	Warnings    []string          `gorm:"serializer:json;type:text" json:"warnings,omitempty"`
	NoticeDates legal.NoticeDates `gorm:"serializer:json;type:text" json:"notice_dates"`

	// Reminder scheduling
	NoticeExpiry   *time.Time `gorm:"index" json:"notice_expiry,omitempty"`
	ContactEmail   string     `json:"-"`
	Locale         string     `gorm:"size:5;default:en" json:"-"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	Documents []GeneratedDocument `gorm:"foreignKey:PackID" json:"documents,omitempty"`
}

// BeforeCreate generates UUID before creating record
func (p *DocumentPack) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (DocumentPack) TableName() string {
	return "document_packs"
}

// DocumentStatus is the render outcome for one document
type DocumentStatus string

const (
	DocumentStatusRendered DocumentStatus = "rendered"
	DocumentStatusFailed   DocumentStatus = "failed"
)

// GeneratedDocument is one PDF in a pack
type GeneratedDocument struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PackID string `gorm:"type:uuid;not null;index" json:"pack_id"`
	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`

	TemplateKey string             `gorm:"not null" json:"template_key"`
	Title       string             `gorm:"not null" json:"title"`
	Kind        legal.TemplateKind `gorm:"not null" json:"kind"`
	Position    int                `gorm:"not null;default:0" json:"position"`

	// Storage info
	FileName     string `json:"file_name,omitempty"`
	StorageKey   string `json:"-"`
	ThumbnailKey string `json:"-"`
	MimeType     string `json:"mime_type,omitempty"`
	FileSize     int64  `json:"file_size"`

	Status       DocumentStatus `gorm:"not null" json:"status"`
	ErrorMessage string         `gorm:"type:text" json:"error_message,omitempty"`
}

// BeforeCreate generates UUID before creating record
func (d *GeneratedDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (GeneratedDocument) TableName() string {
	return "generated_documents"
}

// PreviewArtifact tracks a stored preview thumbnail so it can be cleaned up
type PreviewArtifact struct {
	ID          string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	CaseID      string    `gorm:"type:uuid;not null;index" json:"case_id"`
	TemplateKey string    `gorm:"not null" json:"template_key"`
	StorageKey  string    `gorm:"not null" json:"-"`
	FileSize    int64     `json:"file_size"`
}

// BeforeCreate generates UUID before creating record
func (p *PreviewArtifact) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (PreviewArtifact) TableName() string {
	return "preview_artifacts"
}
