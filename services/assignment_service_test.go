package services

import (
	"errors"
	"testing"

	"github.com/carebridge/api/model"
)

func TestAssign_SingleWinner(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentService(db)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	v1 := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)
	v2 := createTestUser(t, db, "Meera", "meera@example.com", model.RoleVolunteer)
	request := createTestRequest(t, db, patient, "Fever")

	assigned, err := svc.Assign(request.ID, v1.ID)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if assigned.Status != model.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", assigned.Status)
	}
	if assigned.VolunteerID == nil || *assigned.VolunteerID != v1.ID {
		t.Fatalf("expected volunteer %d, got %v", v1.ID, assigned.VolunteerID)
	}

	if _, err := svc.Assign(request.ID, v2.ID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned for the loser, got %v", err)
	}

	// The winner's claim must be untouched by the losing attempt
	var stored model.PatientRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if stored.VolunteerID == nil || *stored.VolunteerID != v1.ID {
		t.Fatalf("volunteer changed after lost race: %v", stored.VolunteerID)
	}
}

func TestAssign_RejectsClosedRequest(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentService(db)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	volunteer := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)

	// Resolved before anyone claimed it, so volunteer_id is still NULL
	request := createTestRequest(t, db, patient, "Fever")
	if err := db.Model(request).Update("status", model.StatusResolved).Error; err != nil {
		t.Fatalf("resolve request: %v", err)
	}

	if _, err := svc.Assign(request.ID, volunteer.ID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned for a closed request, got %v", err)
	}

	var stored model.PatientRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if stored.Status != model.StatusResolved {
		t.Fatalf("closed request reopened: %s", stored.Status)
	}
	if stored.VolunteerID != nil {
		t.Fatalf("closed request claimed: %v", stored.VolunteerID)
	}
}

func TestAssign_UnknownRequest(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentService(db)

	volunteer := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)

	if _, err := svc.Assign(9999, volunteer.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAvailable_ExcludesAssignedAndClosed(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentService(db)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	volunteer := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)

	open := createTestRequest(t, db, patient, "Fever")
	claimed := createTestRequest(t, db, patient, "Cough")
	assignVolunteer(t, db, claimed, volunteer)

	resolved := createTestRequest(t, db, patient, "Headache")
	if err := db.Model(resolved).Update("status", model.StatusResolved).Error; err != nil {
		t.Fatalf("resolve request: %v", err)
	}

	available, err := svc.ListAvailable()
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available request, got %d", len(available))
	}
	if available[0].ID != open.ID {
		t.Fatalf("expected request %d, got %d", open.ID, available[0].ID)
	}
	if available[0].User.Email != patient.Email {
		t.Fatalf("expected patient contact preloaded")
	}
}

func TestListAssigned_OnlyOwn(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentService(db)

	patient := createTestUser(t, db, "Asha", "asha@example.com", model.RolePatient)
	v1 := createTestUser(t, db, "Ravi", "ravi@example.com", model.RoleVolunteer)
	v2 := createTestUser(t, db, "Meera", "meera@example.com", model.RoleVolunteer)

	mine := createTestRequest(t, db, patient, "Fever")
	assignVolunteer(t, db, mine, v1)
	other := createTestRequest(t, db, patient, "Cough")
	assignVolunteer(t, db, other, v2)

	assigned, err := svc.ListAssigned(v1.ID)
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != mine.ID {
		t.Fatalf("expected only request %d, got %+v", mine.ID, assigned)
	}
}
