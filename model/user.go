package model

import (
	"time"
)

// UserRole is the role an account holds for authorization decisions
type UserRole string

const (
	RolePatient   UserRole = "PATIENT"
	RoleVolunteer UserRole = "VOLUNTEER"
	RoleAdmin     UserRole = "ADMIN"
)

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	return r == RolePatient || r == RoleVolunteer || r == RoleAdmin
}

// User represents a registered account in the system.
// Accounts are immutable after registration; there are no update or
// delete paths.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         UserRole  `gorm:"type:varchar(20);default:'PATIENT'" json:"role"`
	Age          int       `json:"age"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`

	// Relationships
	Requests         []PatientRequest `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedRequests []PatientRequest `gorm:"foreignKey:VolunteerID" json:"-"`
	ChatSessions     []ChatSession    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
