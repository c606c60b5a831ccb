package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/carebridge/api/model"
)

// AssignmentService binds volunteers to unclaimed support requests
type AssignmentService struct {
	db *gorm.DB
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// ListAvailable returns all unclaimed PENDING requests with their
// summaries and the submitting patient's contact details.
func (s *AssignmentService) ListAvailable() ([]model.PatientRequest, error) {
	var requests []model.PatientRequest
	err := s.db.
		Preload("AutoSummary").
		Preload("User").
		Where("status = ? AND volunteer_id IS NULL", model.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// Assign claims a request for the volunteer. The claim is a single
// conditional update on "still PENDING and volunteer unset", so under
// concurrent callers exactly one volunteer wins and the rest get
// ErrAlreadyAssigned. Requests resolved before anyone claimed them
// stay closed.
func (s *AssignmentService) Assign(requestID, volunteerID uint) (*model.PatientRequest, error) {
	result := s.db.Model(&model.PatientRequest{}).
		Where("id = ? AND volunteer_id IS NULL AND status = ?", requestID, model.StatusPending).
		Updates(map[string]interface{}{
			"volunteer_id": volunteerID,
			"status":       model.StatusInProgress,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a lost race or closed request from a missing one
		var request model.PatientRequest
		if err := s.db.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrAlreadyAssigned
	}

	var request model.PatientRequest
	if err := s.db.Preload("AutoSummary").Preload("User").First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ListAssigned returns the volunteer's claimed requests, newest first
func (s *AssignmentService) ListAssigned(volunteerID uint) ([]model.PatientRequest, error) {
	var requests []model.PatientRequest
	err := s.db.
		Preload("AutoSummary").
		Preload("User").
		Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
