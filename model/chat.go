package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

// ChatRole represents the role of a chatbot message author
type ChatRole string

const (
	ChatRoleUser      ChatRole = "USER"
	ChatRoleAssistant ChatRole = "ASSISTANT"
)

// JSONMap is a custom type for storing JSON data as a JSON column
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface for reading from database
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONMap value")
	}

	if len(bytes) == 0 {
		*j = JSONMap{}
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface for writing to database
func (j JSONMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("{}"), nil // Return empty JSON object instead of nil
	}
	return json.Marshal(j)
}

// ChatSession is a titled conversation between one account and the
// assistant. Context optionally snapshots the support request the
// conversation started from (title/issue/status/summary at that time).
type ChatSession struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"type:varchar(255)" json:"title"`
	Context   datatypes.JSON `json:"context,omitempty"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for ChatSession
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// RequestContext is the ticket snapshot stored on a session's Context
// column when the conversation was started from a support request.
type RequestContext struct {
	RequestID uint   `json:"requestId,omitempty"`
	Title     string `json:"title,omitempty"`
	Issue     string `json:"issue,omitempty"`
	Status    string `json:"status,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// ChatMessage is a single turn in a chatbot session. The emergency flag
// is computed once at write time from the triggering user question and
// applied to both the question and the paired assistant reply.
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	SessionID   string    `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Role        ChatRole  `gorm:"type:varchar(20);not null" json:"role"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Metadata    JSONMap   `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	IsEmergency bool      `gorm:"default:false" json:"is_emergency"`

	// Relationships
	Session ChatSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}
