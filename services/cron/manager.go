package cron

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/carebridge/api/services"
)

// CronManager manages all scheduled background jobs
type CronManager struct {
	cron      *cron.Cron
	summaries *services.SummaryService
}

// NewCronManager creates a new cron manager
func NewCronManager(summaries *services.SummaryService) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		summaries: summaries,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every 10 minutes: retry summaries for requests still missing one
	_, err := m.cron.AddFunc("0 */10 * * * *", func() {
		m.RetryMissingSummaries()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}
