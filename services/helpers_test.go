package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services/gemini"
)

var testDBCounter int64

// openTestDB opens a fresh named in-memory database per test so state
// never leaks between tests.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.PatientRequest{},
		&model.AutoSummary{},
		&model.RequestMessage{},
		&model.ChatSession{},
		&model.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

// fakeGenerator is a test double for the Gemini client
type fakeGenerator struct {
	reply      string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, options ...gemini.Option) (string, error) {
	_ = ctx
	_ = options
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string, role model.UserRole) *model.User {
	t.Helper()

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

func createTestRequest(t *testing.T, db *gorm.DB, patient *model.User, title string) *model.PatientRequest {
	t.Helper()

	request := model.PatientRequest{
		Title:  title,
		Issue:  "test issue for " + title,
		Status: model.StatusPending,
		Name:   patient.Name,
		Email:  patient.Email,
		UserID: patient.ID,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("create request %s: %v", title, err)
	}
	return &request
}

func assignVolunteer(t *testing.T, db *gorm.DB, request *model.PatientRequest, volunteer *model.User) {
	t.Helper()

	err := db.Model(request).Updates(map[string]interface{}{
		"volunteer_id": volunteer.ID,
		"status":       model.StatusInProgress,
	}).Error
	if err != nil {
		t.Fatalf("assign volunteer: %v", err)
	}
	request.VolunteerID = &volunteer.ID
	request.Status = model.StatusInProgress
}
