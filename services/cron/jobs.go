package cron

import (
	"context"
	"log"
	"time"
)

const retrySweepTimeout = 5 * time.Minute

// RetryMissingSummaries attempts summarization for every request that
// still has no summary, typically because the upstream AI call failed
// when the request was created.
func (m *CronManager) RetryMissingSummaries() {
	log.Println("[CRON] Starting job: retry_missing_summaries")

	ctx, cancel := context.WithTimeout(context.Background(), retrySweepTimeout)
	defer cancel()

	created, err := m.summaries.RetryMissing(ctx)
	if err != nil {
		log.Printf("[CRON] Error in job: retry_missing_summaries - %v", err)
		return
	}

	log.Printf("[CRON] Completed job: retry_missing_summaries - %d summaries created", created)
}
