package services

import (
	"context"
	"testing"

	"github.com/carebridge/api/model"
)

// TestSupportLifecycle walks the full patient/volunteer flow: ticket
// creation with summary, volunteer discovery and claim, messaging with
// unread tracking and read receipts.
func TestSupportLifecycle(t *testing.T) {
	db := openTestDB(t)

	gen := &fakeGenerator{reply: "Patient reports a fever."}
	summaries := NewSummaryService(db, gen)
	requests := NewRequestService(db, summaries)
	assignments := NewAssignmentService(db)
	messages := NewMessageService(db)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	volunteer := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)

	// Patient creates a ticket and the summary lands
	request, err := requests.Create(patient, CreateRequestInput{
		Title: "Fever",
		Issue: "High fever since yesterday",
		Name:  "Asha",
		Email: "asha@example.com",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if err := summaries.GenerateForRequest(context.Background(), request.ID); err != nil {
		t.Fatalf("generate summary: %v", err)
	}

	// Volunteer sees the ticket with its summary, volunteer unset
	available, err := assignments.ListAvailable()
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].Title != "Fever" {
		t.Fatalf("expected the Fever ticket, got %+v", available)
	}
	if available[0].VolunteerID != nil {
		t.Fatalf("expected volunteer unset")
	}
	if available[0].AutoSummary == nil {
		t.Fatalf("expected summary attached")
	}

	// Volunteer claims it; it leaves the available view
	if _, err := assignments.Assign(request.ID, volunteer.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	available, err = assignments.ListAvailable()
	if err != nil {
		t.Fatalf("list available after assign: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("claimed ticket still listed as available")
	}
	mine, err := assignments.ListAssigned(volunteer.ID)
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != request.ID {
		t.Fatalf("claimed ticket missing from volunteer view")
	}

	// Patient messages, volunteer's unread count ticks up
	if _, err := messages.Send(patient, request.ID, "Hello, I need help", model.SenderPatient); err != nil {
		t.Fatalf("send: %v", err)
	}
	count, err := messages.UnreadCount(volunteer)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}

	// Volunteer reads the thread; count drops, read receipt visible
	if _, err := messages.MarkThreadRead(request.ID, volunteer); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	thread, err := messages.List(request.ID, volunteer)
	if err != nil {
		t.Fatalf("list thread: %v", err)
	}
	if len(thread) != 1 || thread[0].Content != "Hello, I need help" {
		t.Fatalf("unexpected thread %+v", thread)
	}

	count, err = messages.UnreadCount(volunteer)
	if err != nil {
		t.Fatalf("unread count after read: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}

	patientView, err := messages.List(request.ID, patient)
	if err != nil {
		t.Fatalf("patient list: %v", err)
	}
	if !patientView[0].IsRead {
		t.Fatalf("patient does not see the read receipt")
	}
}
