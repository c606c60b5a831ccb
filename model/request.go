package model

import (
	"time"
)

// RequestStatus is the lifecycle state of a support request
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusResolved   RequestStatus = "RESOLVED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// IsTerminal reports whether no further status changes are permitted
func (s RequestStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusCancelled
}

// PatientRequest is a patient-submitted support ticket. The owning
// patient (UserID) is set at creation and never changes; the volunteer
// is set exactly once by assignment.
type PatientRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Title     string        `gorm:"not null" json:"title"`
	Issue     string        `gorm:"type:text;not null" json:"issue"`
	Status    RequestStatus `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`

	// Contact snapshot captured from the creation form
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	UserID      uint  `gorm:"not null;index" json:"userId"`
	VolunteerID *uint `gorm:"index" json:"volunteerId"`

	// Relationships
	User        User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Volunteer   *User            `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	AutoSummary *AutoSummary     `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"autoSummary,omitempty"`
	Messages    []RequestMessage `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PatientRequest
func (PatientRequest) TableName() string {
	return "patient_requests"
}

// AutoSummary is the AI-generated condensation of a request's issue
// text. At most one per request, written once and never updated.
type AutoSummary struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	GeneratedByAI bool      `gorm:"default:true" json:"generatedByAI"`
	RequestID     uint      `gorm:"uniqueIndex;not null" json:"requestId"`
}

// TableName specifies the table name for AutoSummary
func (AutoSummary) TableName() string {
	return "auto_summaries"
}
