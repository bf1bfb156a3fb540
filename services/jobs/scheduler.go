package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"landlord_docs_app_go/config"
	"landlord_docs_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler runs the reminder and cleanup jobs on London time
type Scheduler struct {
	cron *cron.Cron
}

// StartScheduler registers the background jobs and starts the cron runner.
// Reminders go out at 07:00 each day; cleanup runs at the top of every hour.
func StartScheduler(database *gorm.DB, cfg *config.Config, storage services.StorageProvider) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(services.LondonLocation()), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := c.AddFunc("0 7 * * *", func() {
		log.Println("[CRON] Running notice expiry reminders...")
		SendNoticeExpiryReminders(database, cfg, time.Now())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule reminders: %w", err)
	}

	if _, err := c.AddFunc("0 * * * *", func() {
		log.Println("[CRON] Running cleanup...")
		RunCleanup(context.Background(), database, storage, cfg, time.Now())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return &Scheduler{cron: c}, nil
}

// Stop stops scheduling new runs and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[CRON] Scheduler stopped")
}
