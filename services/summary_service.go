package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services/gemini"
)

const (
	// summaryInstruction is the fixed instruction for ticket summaries
	summaryInstruction = "Summarize the following patient issue in simple terms (3-4 lines). Avoid medical jargon."
	// summaryTimeout bounds a single background summarization attempt
	summaryTimeout = 60 * time.Second
)

// SummaryService generates plain-language summaries for support
// requests. Summarization is best-effort enrichment: a failed attempt
// never affects the request row, and requests left without a summary
// are picked up by the retry sweep.
type SummaryService struct {
	db        *gorm.DB
	generator gemini.Generator
}

// NewSummaryService creates a new summary service
func NewSummaryService(db *gorm.DB, generator gemini.Generator) *SummaryService {
	return &SummaryService{
		db:        db,
		generator: generator,
	}
}

// GenerateForRequest generates and persists a summary for one request.
// It is a no-op when the request already has a summary.
func (s *SummaryService) GenerateForRequest(ctx context.Context, requestID uint) error {
	var request model.PatientRequest
	if err := s.db.Preload("AutoSummary").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if request.AutoSummary != nil {
		return nil
	}

	prompt := fmt.Sprintf("%s\n\nPatient Issue: %s", summaryInstruction, request.Issue)

	content, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return fmt.Errorf("summary generation failed for request %d: %w", requestID, err)
	}

	summary := model.AutoSummary{
		Content:       content,
		GeneratedByAI: true,
		RequestID:     request.ID,
	}
	return s.db.Create(&summary).Error
}

// GenerateAsync fires a background summarization attempt with its own
// timeout, detached from the originating request's lifetime.
func (s *SummaryService) GenerateAsync(requestID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
		defer cancel()

		if err := s.GenerateForRequest(ctx, requestID); err != nil {
			log.Printf("Background summary for request %d failed: %v", requestID, err)
		}
	}()
}

// RetryMissing finds requests that still have no summary and attempts
// to generate one for each. Returns the number of summaries created.
func (s *SummaryService) RetryMissing(ctx context.Context) (int, error) {
	var requests []model.PatientRequest
	err := s.db.
		Joins("LEFT JOIN auto_summaries ON auto_summaries.request_id = patient_requests.id").
		Where("auto_summaries.id IS NULL").
		Find(&requests).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for _, request := range requests {
		if err := s.GenerateForRequest(ctx, request.ID); err != nil {
			log.Printf("Summary retry for request %d failed: %v", request.ID, err)
			continue
		}
		created++
	}

	return created, nil
}
