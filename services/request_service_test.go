package services

import (
	"context"
	"errors"
	"testing"

	"github.com/carebridge/api/model"
)

func TestCreateRequest_PersistsBeforeSummarization(t *testing.T) {
	db := openTestDB(t)

	// A broken AI backend must never block ticket creation
	gen := &fakeGenerator{err: errors.New("upstream down")}
	svc := NewRequestService(db, NewSummaryService(db, gen))

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)

	request, err := svc.Create(patient, CreateRequestInput{
		Title: "Fever",
		Issue: "High fever since yesterday",
		Name:  "Asha",
		Email: "asha@example.com",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	var stored model.PatientRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Fatalf("expected PENDING, got %s", stored.Status)
	}
	if stored.VolunteerID != nil {
		t.Fatalf("expected volunteer unset on creation")
	}
}

func TestResolve_OwnerOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewRequestService(db, NewSummaryService(db, &fakeGenerator{reply: "summary"}))

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	other := createTestUser(t, db, "Ravi", "ravi@example.com", model.RolePatient)
	request := createTestRequest(t, db, patient, "Fever")

	if _, err := svc.Resolve(request.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	var stored model.PatientRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Fatalf("status changed by denied resolve: %s", stored.Status)
	}

	// The owner may resolve a PENDING request directly
	if _, err := svc.Resolve(request.ID, patient.ID); err != nil {
		t.Fatalf("owner resolve: %v", err)
	}
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if stored.Status != model.StatusResolved {
		t.Fatalf("expected RESOLVED, got %s", stored.Status)
	}
}

func TestResolve_TerminalStatesStayClosed(t *testing.T) {
	db := openTestDB(t)
	svc := NewRequestService(db, NewSummaryService(db, &fakeGenerator{reply: "summary"}))

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	request := createTestRequest(t, db, patient, "Fever")

	if _, err := svc.Resolve(request.ID, patient.ID); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := svc.Resolve(request.ID, patient.ID); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus on re-resolve, got %v", err)
	}

	cancelled := createTestRequest(t, db, patient, "Cough")
	if err := db.Model(cancelled).Update("status", model.StatusCancelled).Error; err != nil {
		t.Fatalf("cancel request: %v", err)
	}
	if _, err := svc.Resolve(cancelled.ID, patient.ID); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus on cancelled, got %v", err)
	}
}

func TestGetByID_OwnershipChecked(t *testing.T) {
	db := openTestDB(t)
	svc := NewRequestService(db, NewSummaryService(db, &fakeGenerator{reply: "summary"}))

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	other := createTestUser(t, db, "Ravi", "ravi@example.com", model.RolePatient)
	request := createTestRequest(t, db, patient, "Fever")

	if _, err := svc.GetByID(request.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign request, got %v", err)
	}
	got, err := svc.GetByID(request.ID, patient.ID)
	if err != nil {
		t.Fatalf("get own request: %v", err)
	}
	if got.Title != "Fever" {
		t.Fatalf("unexpected title %q", got.Title)
	}
}

func TestListMine_NewestFirstWithSummaries(t *testing.T) {
	db := openTestDB(t)
	gen := &fakeGenerator{reply: "A short summary."}
	summaries := NewSummaryService(db, gen)
	svc := NewRequestService(db, summaries)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	first := createTestRequest(t, db, patient, "Fever")
	createTestRequest(t, db, patient, "Cough")

	if err := summaries.GenerateForRequest(context.Background(), first.ID); err != nil {
		t.Fatalf("generate summary: %v", err)
	}

	requests, err := svc.ListMine(patient.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}

	var withSummary *model.PatientRequest
	for i := range requests {
		if requests[i].ID == first.ID {
			withSummary = &requests[i]
		}
	}
	if withSummary == nil || withSummary.AutoSummary == nil {
		t.Fatalf("expected summary preloaded on first request")
	}
	if withSummary.AutoSummary.Content != "A short summary." {
		t.Fatalf("unexpected summary content %q", withSummary.AutoSummary.Content)
	}
}
