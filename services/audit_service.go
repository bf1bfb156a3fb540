package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"landlord_docs_app_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	ActorType  string
	ActorEmail string
	IPAddress  string
	UserAgent  string
}

// SystemAuditContext is used by scheduled jobs
var SystemAuditContext = AuditContext{ActorType: models.ActorSystem}

// AuditEvent describes one audited operation
type AuditEvent struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	CaseID       string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

var auditWG sync.WaitGroup

// LogAuditEvent writes an audit log entry in the background. Failures are logged, never returned.
func LogAuditEvent(db *gorm.DB, ctx AuditContext, ev AuditEvent) {
	auditWG.Add(1)
	go func() {
		defer auditWG.Done()

		entry := models.AuditLog{
			ActorType:    ctx.ActorType,
			ActorEmail:   ctx.ActorEmail,
			ResourceType: ev.ResourceType,
			ResourceID:   ev.ResourceID,
			CaseID:       ev.CaseID,
			Action:       ev.Action,
			Description:  ev.Description,
			OldValues:    marshalAuditValues(ev.OldValues),
			NewValues:    marshalAuditValues(ev.NewValues),
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}
		if entry.ActorType == "" {
			entry.ActorType = models.ActorLandlord
		}

		if err := db.Create(&entry).Error; err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// WaitForAuditEvents blocks until queued audit writes have finished
func WaitForAuditEvents() {
	auditWG.Wait()
}

func marshalAuditValues(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[AUDIT] Failed to encode audit values: %v", err)
		return ""
	}
	return string(b)
}

// AuditLogFilters narrows an audit log query
type AuditLogFilters struct {
	CaseID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
}

// ListAuditLogs returns a page of audit logs, newest first, and the total count
func ListAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := db.Model(&models.AuditLog{})
	if filters.CaseID != "" {
		query = query.Where("case_id = ?", filters.CaseID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
