package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/carebridge/api/model"
)

// RequestService manages the patient support request lifecycle
type RequestService struct {
	db        *gorm.DB
	summaries *SummaryService
}

// NewRequestService creates a new request service
func NewRequestService(db *gorm.DB, summaries *SummaryService) *RequestService {
	return &RequestService{
		db:        db,
		summaries: summaries,
	}
}

// CreateRequestInput holds the fields for a new support request
type CreateRequestInput struct {
	Title string `json:"title" validate:"required,max=255"`
	Issue string `json:"issue" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Age   int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// Create persists a new PENDING request for the patient and fires a
// best-effort background summarization. The request row is committed
// before any AI call happens, so upstream outages never block ticket
// creation.
func (s *RequestService) Create(patient *model.User, input CreateRequestInput) (*model.PatientRequest, error) {
	request := model.PatientRequest{
		Title:  input.Title,
		Issue:  input.Issue,
		Status: model.StatusPending,
		Name:   input.Name,
		Age:    input.Age,
		Email:  input.Email,
		Phone:  input.Phone,
		UserID: patient.ID,
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}

	s.summaries.GenerateAsync(request.ID)

	return &request, nil
}

// ListMine returns the patient's requests, newest first, with their
// summaries preloaded.
func (s *RequestService) ListMine(patientID uint) ([]model.PatientRequest, error) {
	var requests []model.PatientRequest
	err := s.db.
		Preload("AutoSummary").
		Where("user_id = ?", patientID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetByID returns one request, visible only to its owning patient
func (s *RequestService) GetByID(requestID, patientID uint) (*model.PatientRequest, error) {
	var request model.PatientRequest
	err := s.db.
		Preload("AutoSummary").
		Preload("Volunteer").
		Where("id = ? AND user_id = ?", requestID, patientID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// Resolve marks a request RESOLVED. Only the owning patient may
// resolve, and closed requests stay closed. A PENDING request may be
// resolved directly without ever being assigned.
func (s *RequestService) Resolve(requestID, patientID uint) (*model.PatientRequest, error) {
	var request model.PatientRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if request.UserID != patientID {
		return nil, ErrForbidden
	}
	if request.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}

	if err := s.db.Model(&request).Update("status", model.StatusResolved).Error; err != nil {
		return nil, err
	}

	return &request, nil
}
