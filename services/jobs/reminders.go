package jobs

import (
	"log"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"gorm.io/gorm"
)

// SendNoticeExpiryReminders emails every landlord whose notice has expired and who has not
// been reminded yet. Returns the number of reminders sent.
func SendNoticeExpiryReminders(database *gorm.DB, cfg *config.Config, now time.Time) int {
	log.Println("[JOB] Starting notice expiry reminder job...")

	var packs []models.DocumentPack
	err := database.Preload("Case").
		Where("status IN ?", []models.PackStatus{models.PackStatusComplete, models.PackStatusPartial}).
		Where("notice_expiry IS NOT NULL AND notice_expiry <= ?", now).
		Where("reminder_sent_at IS NULL").
		Where("contact_email <> ''").
		Find(&packs).Error
	if err != nil {
		log.Printf("[JOB] Error fetching packs for reminders: %v", err)
		return 0
	}

	log.Printf("[JOB] Found %d notices to remind", len(packs))

	sent := 0
	for i := range packs {
		pack := &packs[i]
		// Deleted cases are not preloaded
		if pack.Case == nil {
			continue
		}

		email := services.NoticeExpiryEmailFor(cfg.AppURL, pack.Case, pack)
		if err := services.SendEmail(cfg, email); err != nil {
			log.Printf("[JOB] Failed to send reminder for pack %s: %v", pack.ID, err)
			continue
		}

		sentAt := time.Now().UTC()
		if err := database.Model(pack).Update("reminder_sent_at", sentAt).Error; err != nil {
			log.Printf("[JOB] Failed to mark reminder sent for pack %s: %v", pack.ID, err)
			continue
		}
		services.LogAuditEvent(database, services.SystemAuditContext, services.AuditEvent{
			Action:       models.AuditActionRemind,
			ResourceType: "DocumentPack",
			ResourceID:   pack.ID,
			CaseID:       pack.CaseID,
			Description:  "Notice expiry reminder sent",
		})
		sent++
	}

	log.Printf("[JOB] Notice expiry reminder job completed, %d sent", sent)
	return sent
}
