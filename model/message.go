package model

import (
	"time"
)

// MessageSender is the role a request message was sent as. It must be
// consistent with the request's patient/volunteer identity: a PATIENT
// message's sender is the request owner, a VOLUNTEER message's sender
// is the assigned volunteer.
type MessageSender string

const (
	SenderPatient   MessageSender = "PATIENT"
	SenderVolunteer MessageSender = "VOLUNTEER"
)

// Counterpart returns the opposite side of the conversation
func (s MessageSender) Counterpart() MessageSender {
	if s == SenderPatient {
		return SenderVolunteer
	}
	return SenderPatient
}

// RequestMessage is a single message in a request's thread between the
// owning patient and the assigned volunteer. Only the read flag ever
// changes after creation, and only from false to true.
type RequestMessage struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Sender    MessageSender `gorm:"type:varchar(20);not null" json:"sender"`
	SenderID  uint          `gorm:"not null;index" json:"senderId"`
	RequestID uint          `gorm:"not null;index" json:"requestId"`
	IsRead    bool          `gorm:"default:false" json:"isRead"`

	// Relationships
	Request    PatientRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
	SenderUser User           `gorm:"foreignKey:SenderID" json:"senderUser,omitempty"`
}

// TableName specifies the table name for RequestMessage
func (RequestMessage) TableName() string {
	return "request_messages"
}
