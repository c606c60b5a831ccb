package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carebridge/api/model"
)

func TestGenerateForRequest_PersistsSummaryOnce(t *testing.T) {
	db := openTestDB(t)
	gen := &fakeGenerator{reply: "Patient has had a fever for two days."}
	svc := NewSummaryService(db, gen)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	request := createTestRequest(t, db, patient, "Fever")

	if err := svc.GenerateForRequest(context.Background(), request.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(gen.lastPrompt, request.Issue) {
		t.Fatalf("prompt does not carry the issue text: %q", gen.lastPrompt)
	}

	var summary model.AutoSummary
	if err := db.Where("request_id = ?", request.ID).First(&summary).Error; err != nil {
		t.Fatalf("load summary: %v", err)
	}
	if !summary.GeneratedByAI {
		t.Fatalf("expected GeneratedByAI true")
	}

	// A second call must not generate again
	if err := svc.GenerateForRequest(context.Background(), request.ID); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", gen.calls)
	}
}

func TestGenerateForRequest_FailureLeavesRequestIntact(t *testing.T) {
	db := openTestDB(t)
	svc := NewSummaryService(db, &fakeGenerator{err: errors.New("quota")})

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	request := createTestRequest(t, db, patient, "Fever")

	if err := svc.GenerateForRequest(context.Background(), request.ID); err == nil {
		t.Fatalf("expected error from failing generator")
	}

	var count int64
	db.Model(&model.AutoSummary{}).Where("request_id = ?", request.ID).Count(&count)
	if count != 0 {
		t.Fatalf("summary persisted despite failure")
	}

	var stored model.PatientRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("request row gone: %v", err)
	}
}

func TestRetryMissing_FillsOnlyGaps(t *testing.T) {
	db := openTestDB(t)
	gen := &fakeGenerator{reply: "retry summary"}
	svc := NewSummaryService(db, gen)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	withSummary := createTestRequest(t, db, patient, "Fever")
	createTestRequest(t, db, patient, "Cough")
	createTestRequest(t, db, patient, "Headache")

	if err := svc.GenerateForRequest(context.Background(), withSummary.ID); err != nil {
		t.Fatalf("seed summary: %v", err)
	}
	gen.calls = 0

	created, err := svc.RetryMissing(context.Background())
	if err != nil {
		t.Fatalf("retry missing: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 summaries created, got %d", created)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", gen.calls)
	}

	var total int64
	db.Model(&model.AutoSummary{}).Count(&total)
	if total != 3 {
		t.Fatalf("expected 3 summaries total, got %d", total)
	}
}
