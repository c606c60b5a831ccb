package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services/gemini"
	"github.com/carebridge/api/utils/validation"
)

const (
	// sessionTitleMaxLength caps auto-generated session titles
	sessionTitleMaxLength = 50
	// historyWindowSize is how many prior messages feed the prompt
	historyWindowSize = 10

	// EmergencyWarning is the fixed warning attached to responses when
	// the question matches an emergency keyword.
	EmergencyWarning = "⚠️ EMERGENCY DETECTED: This seems like a medical emergency. Please call emergency services (911/112) immediately or visit the nearest hospital. Do not wait for online responses in emergency situations."

	chatbotSystemPrompt = `You are a compassionate healthcare support chatbot for an NGO helping patients.

IMPORTANT GUIDELINES:
- Provide helpful, accurate health information in simple, easy-to-understand language
- Be empathetic, supportive, and caring
- NEVER provide medical diagnoses or prescriptions
- NEVER replace professional medical advice
- Encourage users to consult healthcare professionals for serious concerns
- If a question is about emergencies (chest pain, severe bleeding, difficulty breathing, suicide), immediately advise calling emergency services
- Stay within the scope of general health information and emotional support
- You can provide information about symptoms, general wellness, healthy habits, and when to seek medical help
- Always prioritize user safety and wellbeing

RESPONSE FORMAT:
- Keep responses clear and concise (2-4 paragraphs maximum)
- Use empathetic language
- Break down complex medical information into simple terms
- Provide actionable advice when appropriate
- End with encouragement or next steps`
)

// emergencyKeywords is scanned case-insensitively against the raw
// question text of every chatbot turn.
var emergencyKeywords = []string{
	"chest pain",
	"can't breathe",
	"can not breathe",
	"cannot breathe",
	"difficulty breathing",
	"severe bleeding",
	"suicide",
	"suicidal",
	"kill myself",
	"overdose",
	"heart attack",
	"stroke",
	"unconscious",
	"severe pain",
	"choking",
	"seizure",
}

// DetectEmergency reports whether the text contains any emergency
// keyword as a case-insensitive substring.
func DetectEmergency(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// GenerateSessionTitle derives a session title from the first question:
// the question itself when short, otherwise its first 50 characters
// trimmed and ellipsis-suffixed.
func GenerateSessionTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= sessionTitleMaxLength {
		return question
	}
	return strings.TrimSpace(string(runes[:sessionTitleMaxLength])) + "..."
}

// ChatbotService runs the session-scoped health assistant conversation
type ChatbotService struct {
	db        *gorm.DB
	generator gemini.Generator
}

// NewChatbotService creates a new chatbot service
func NewChatbotService(db *gorm.DB, generator gemini.Generator) *ChatbotService {
	return &ChatbotService{
		db:        db,
		generator: generator,
	}
}

// AskResult is the outcome of one chatbot turn
type AskResult struct {
	Message   string
	SessionID string
	Emergency bool
}

// SessionSummary is one entry in the session list view
type SessionSummary struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	LastMessage  string         `json:"lastMessage"`
	Timestamp    time.Time      `json:"timestamp"`
	MessageCount int64          `json:"messageCount"`
	Context      datatypes.JSON `json:"context,omitempty"`
}

// TranscriptEntry is one message in a session transcript
type TranscriptEntry struct {
	ID          uint      `json:"id,omitempty"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsEmergency bool      `json:"isEmergency"`
}

// Ask runs one conversational turn. With a session id it continues that
// session using its recent messages as rolling context; without one it
// creates a new session titled from the question, optionally tagged
// with a support-request snapshot. Both persisted messages of the turn
// carry the emergency flag computed from the raw question.
func (s *ChatbotService) Ask(ctx context.Context, userID uint, question, sessionID string, reqContext *model.RequestContext) (*AskResult, error) {
	trimmed, err := validation.ValidateMessageContent(question)
	if err != nil {
		return nil, err
	}

	var session model.ChatSession
	var history []model.ChatMessage

	if sessionID != "" {
		err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}

		// Rolling context: the most recent messages, oldest first
		var recent []model.ChatMessage
		err = s.db.
			Where("session_id = ?", session.ID).
			Order("created_at DESC, id DESC").
			Limit(historyWindowSize).
			Find(&recent).Error
		if err != nil {
			return nil, err
		}
		for i := len(recent) - 1; i >= 0; i-- {
			history = append(history, recent[i])
		}

		// Stored snapshot feeds the prompt on continued sessions too
		if reqContext == nil && len(session.Context) > 0 {
			var stored model.RequestContext
			if err := json.Unmarshal(session.Context, &stored); err == nil && stored.Title != "" {
				reqContext = &stored
			}
		}
	} else {
		session = model.ChatSession{
			ID:       uuid.NewString(),
			UserID:   userID,
			Title:    GenerateSessionTitle(question),
			IsActive: true,
		}
		if reqContext != nil {
			snapshot, err := json.Marshal(reqContext)
			if err != nil {
				return nil, err
			}
			session.Context = datatypes.JSON(snapshot)
		}
		if err := s.db.Create(&session).Error; err != nil {
			return nil, err
		}
	}

	prompt := buildPrompt(reqContext, history, question)

	reply, err := s.generator.GenerateContent(ctx, prompt,
		gemini.WithGenerationConfig(0.7, 40, 0.95, 1024))
	if err != nil {
		return nil, err
	}

	isEmergency := DetectEmergency(question)
	now := time.Now()

	userMessage := model.ChatMessage{
		SessionID: session.ID,
		Role:      model.ChatRoleUser,
		Content:   trimmed,
		Metadata: model.JSONMap{
			"timestamp":      now.Format(time.RFC3339),
			"questionLength": len(question),
		},
		IsEmergency: isEmergency,
	}
	if err := s.db.Create(&userMessage).Error; err != nil {
		return nil, err
	}

	assistantMessage := model.ChatMessage{
		SessionID: session.ID,
		Role:      model.ChatRoleAssistant,
		Content:   reply,
		Metadata: model.JSONMap{
			"timestamp":      time.Now().Format(time.RFC3339),
			"responseLength": len(reply),
		},
		IsEmergency: isEmergency,
	}
	if err := s.db.Create(&assistantMessage).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&session).Update("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}

	return &AskResult{
		Message:   reply,
		SessionID: session.ID,
		Emergency: isEmergency,
	}, nil
}

// buildPrompt concatenates the fixed system instruction, the optional
// ticket snapshot, the role-labeled transcript, and the new question.
func buildPrompt(reqContext *model.RequestContext, history []model.ChatMessage, question string) string {
	var b strings.Builder
	b.WriteString(chatbotSystemPrompt)

	if reqContext != nil {
		b.WriteString("\n\nCONTEXT INFORMATION:\nThe user has an existing support request:\n")
		b.WriteString(fmt.Sprintf("- Title: %s\n", reqContext.Title))
		b.WriteString(fmt.Sprintf("- Issue: %s\n", reqContext.Issue))
		b.WriteString(fmt.Sprintf("- Status: %s\n", reqContext.Status))
		if reqContext.Summary != "" {
			b.WriteString(fmt.Sprintf("- AI Summary: %s\n", reqContext.Summary))
		}
		b.WriteString("\nPlease take this context into account when providing your response.")
	}

	b.WriteString("\n\n")
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, msg := range history {
			label := "Assistant"
			if msg.Role == model.ChatRoleUser {
				label = "User"
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", label, msg.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Current question: %s\n\nProvide a helpful, caring response:", question))
	return b.String()
}

// ownedSession loads a session, visible only to its owner
func (s *ChatbotService) ownedSession(sessionID string, userID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the caller's active sessions, most recently
// updated first, each with a last-message preview and message count.
func (s *ChatbotService) ListSessions(userID uint) ([]SessionSummary, error) {
	var sessions []model.ChatSession
	err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		var last model.ChatMessage
		lastMessage := ""
		err := s.db.
			Where("session_id = ?", session.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			lastMessage = last.Content
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var count int64
		if err := s.db.Model(&model.ChatMessage{}).Where("session_id = ?", session.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		summaries = append(summaries, SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			LastMessage:  lastMessage,
			Timestamp:    session.UpdatedAt,
			MessageCount: count,
			Context:      session.Context,
		})
	}

	return summaries, nil
}

// GetTranscript returns the full ordered transcript of an owned session
func (s *ChatbotService) GetTranscript(sessionID string, userID uint) (*model.ChatSession, []TranscriptEntry, error) {
	session, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}

	var messages []model.ChatMessage
	err = s.db.
		Where("session_id = ?", session.ID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, nil, err
	}

	entries := make([]TranscriptEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, TranscriptEntry{
			ID:          msg.ID,
			Role:        strings.ToLower(string(msg.Role)),
			Content:     msg.Content,
			Timestamp:   msg.CreatedAt,
			IsEmergency: msg.IsEmergency,
		})
	}

	return session, entries, nil
}

// Rename sets a new title on an owned session. The trimmed title must
// be non-empty.
func (s *ChatbotService) Rename(sessionID string, userID uint, title string) (*model.ChatSession, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, validation.ErrEmptyContent
	}

	session, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(session).Update("title", trimmed).Error; err != nil {
		return nil, err
	}
	session.Title = trimmed

	return session, nil
}

// DeleteSession hard-deletes an owned session and all its messages
func (s *ChatbotService) DeleteSession(sessionID string, userID uint) error {
	session, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", session.ID).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(session).Error
	})
}
