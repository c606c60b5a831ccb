package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/utils/validation"
)

// MessageService handles the per-request message threads between the
// owning patient and the assigned volunteer.
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a new message service
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// senderForRole maps an account role to its thread sender role
func senderForRole(role model.UserRole) (model.MessageSender, bool) {
	switch role {
	case model.RolePatient:
		return model.SenderPatient, true
	case model.RoleVolunteer:
		return model.SenderVolunteer, true
	default:
		return "", false
	}
}

// threadRequest loads a request and checks the caller is one of its two
// thread participants.
func (s *MessageService) threadRequest(requestID uint, caller *model.User) (*model.PatientRequest, error) {
	var request model.PatientRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isPatient := request.UserID == caller.ID
	isVolunteer := request.VolunteerID != nil && *request.VolunteerID == caller.ID
	if !isPatient && !isVolunteer {
		return nil, ErrForbidden
	}

	return &request, nil
}

// Send validates and persists a message on a request's thread. The
// declared sender role must match the caller's account role, the caller
// must be the request's patient or assigned volunteer for that role,
// and a patient cannot message before a volunteer is assigned.
func (s *MessageService) Send(caller *model.User, requestID uint, content string, senderRole model.MessageSender) (*model.RequestMessage, error) {
	trimmed, err := validation.ValidateMessageContent(content)
	if err != nil {
		return nil, err
	}

	callerSender, ok := senderForRole(caller.Role)
	if !ok || callerSender != senderRole {
		return nil, ErrSenderRoleMismatch
	}

	var request model.PatientRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if request.Status == model.StatusCancelled {
		return nil, ErrRequestCancelled
	}

	switch senderRole {
	case model.SenderPatient:
		if request.UserID != caller.ID {
			return nil, ErrForbidden
		}
		if request.VolunteerID == nil {
			return nil, ErrNoVolunteerAssigned
		}
	case model.SenderVolunteer:
		if request.VolunteerID == nil || *request.VolunteerID != caller.ID {
			return nil, ErrForbidden
		}
	}

	message := model.RequestMessage{
		Content:   trimmed,
		Sender:    senderRole,
		SenderID:  caller.ID,
		RequestID: request.ID,
		IsRead:    false,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	// Return with the sender's display name attached
	if err := s.db.Preload("SenderUser").First(&message, message.ID).Error; err != nil {
		return nil, err
	}

	return &message, nil
}

// List returns the full thread for a request in ascending creation
// order. Read-marking is a separate explicit step (MarkThreadRead), not
// a side effect of listing.
func (s *MessageService) List(requestID uint, caller *model.User) ([]model.RequestMessage, error) {
	if _, err := s.threadRequest(requestID, caller); err != nil {
		return nil, err
	}

	var messages []model.RequestMessage
	err := s.db.
		Preload("SenderUser").
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkThreadRead flips every unread counterpart message on the thread
// to read. Idempotent: repeated calls after the first change nothing.
// Returns the number of messages marked.
func (s *MessageService) MarkThreadRead(requestID uint, caller *model.User) (int64, error) {
	if _, err := s.threadRequest(requestID, caller); err != nil {
		return 0, err
	}

	callerSender, ok := senderForRole(caller.Role)
	if !ok {
		return 0, ErrForbidden
	}

	result := s.db.Model(&model.RequestMessage{}).
		Where("request_id = ? AND sender = ? AND is_read = ?", requestID, callerSender.Counterpart(), false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// UnreadCount counts unread counterpart messages across all of the
// caller's owned (patient) or assigned (volunteer) requests.
func (s *MessageService) UnreadCount(caller *model.User) (int64, error) {
	callerSender, ok := senderForRole(caller.Role)
	if !ok {
		return 0, ErrForbidden
	}

	var requestIDs []uint
	query := s.db.Model(&model.PatientRequest{})
	if callerSender == model.SenderPatient {
		query = query.Where("user_id = ?", caller.ID)
	} else {
		query = query.Where("volunteer_id = ?", caller.ID)
	}
	if err := query.Pluck("id", &requestIDs).Error; err != nil {
		return 0, err
	}

	if len(requestIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := s.db.Model(&model.RequestMessage{}).
		Where("request_id IN ? AND sender = ? AND is_read = ?", requestIDs, callerSender.Counterpart(), false).
		Count(&count).Error
	return count, err
}

// Delete removes a message. Only the original sender may delete it.
func (s *MessageService) Delete(messageID, callerID uint) error {
	var message model.RequestMessage
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if message.SenderID != callerID {
		return ErrForbidden
	}

	return s.db.Delete(&message).Error
}
