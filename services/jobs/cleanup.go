package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/models"
	"landlord_docs_app_go/services"

	"gorm.io/gorm"
)

// RunCleanup removes expired previews and abandoned drafts
func RunCleanup(ctx context.Context, database *gorm.DB, storage services.StorageProvider, cfg *config.Config, now time.Time) {
	previewCutoff := now.Add(-time.Duration(cfg.PreviewRetentionHours) * time.Hour)
	if n, err := CleanupPreviews(ctx, database, storage, previewCutoff); err != nil {
		log.Printf("[JOB] Preview cleanup failed after %d: %v", n, err)
	} else if n > 0 {
		log.Printf("[JOB] Removed %d expired previews", n)
	}

	draftCutoff := now.AddDate(0, 0, -cfg.DraftRetentionDays)
	if n, err := CleanupDrafts(ctx, database, storage, draftCutoff); err != nil {
		log.Printf("[JOB] Draft cleanup failed after %d: %v", n, err)
	} else if n > 0 {
		log.Printf("[JOB] Deleted %d abandoned drafts", n)
	}
}

// CleanupPreviews deletes preview thumbnails created before cutoff. A row is only removed
// once its file is gone, so failures are retried on the next run.
func CleanupPreviews(ctx context.Context, database *gorm.DB, storage services.StorageProvider, cutoff time.Time) (int, error) {
	var previews []models.PreviewArtifact
	if err := database.Where("created_at < ?", cutoff).Find(&previews).Error; err != nil {
		return 0, fmt.Errorf("failed to list previews: %w", err)
	}

	removed := 0
	for _, p := range previews {
		if err := storage.Delete(ctx, p.StorageKey); err != nil {
			log.Printf("[JOB] Failed to delete preview %s: %v", p.StorageKey, err)
			continue
		}
		if err := database.Delete(&p).Error; err != nil {
			return removed, fmt.Errorf("failed to delete preview row %s: %w", p.ID, err)
		}
		removed++
	}
	return removed, nil
}

// CleanupDrafts soft deletes draft cases not touched since cutoff and removes their files
func CleanupDrafts(ctx context.Context, database *gorm.DB, storage services.StorageProvider, cutoff time.Time) (int, error) {
	var ids []string
	err := database.Model(&models.Case{}).
		Where("status = ? AND updated_at < ?", models.CaseStatusDraft, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		if _, err := services.DeleteCase(ctx, database, storage, id); err != nil {
			return deleted, err
		}
		services.LogAuditEvent(database, services.SystemAuditContext, services.AuditEvent{
			Action:       models.AuditActionDelete,
			ResourceType: "Case",
			ResourceID:   id,
			CaseID:       id,
			Description:  "Abandoned draft removed",
		})
		deleted++
	}
	return deleted, nil
}
