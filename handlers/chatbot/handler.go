package chatbot

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services"
	"github.com/carebridge/api/services/gemini"
	"github.com/carebridge/api/utils/middleware"
	"github.com/carebridge/api/utils/response"
	"github.com/carebridge/api/utils/validation"
)

// ChatbotHandler handles the AI health assistant endpoints
type ChatbotHandler struct {
	chatbot *services.ChatbotService
}

// NewChatbotHandler creates a new chatbot handler
func NewChatbotHandler(chatbot *services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbot: chatbot}
}

// AskRequest is the body of POST /chatbot
type AskRequest struct {
	Question  string                `json:"question"`
	SessionID string                `json:"sessionId,omitempty"`
	Context   *model.RequestContext `json:"context,omitempty"`
}

// Ask handles POST /chatbot
func (h *ChatbotHandler) Ask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.chatbot.Ask(c.Context(), user.ID, req.Question, req.SessionID, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrEmptyContent):
			return response.BadRequest(c, "Valid question is required")
		case errors.Is(err, validation.ErrContentTooLong):
			return response.BadRequest(c, "Question is too long. Please keep it under 2000 characters.")
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Session not found")
		case errors.Is(err, gemini.ErrMissingAPIKey):
			return response.InternalServerError(c, "AI service configuration error. Please contact support.")
		case errors.Is(err, gemini.ErrRateLimited):
			return response.TooManyRequests(c, "Service is currently busy. Please try again in a moment.")
		default:
			return response.InternalServerError(c, "An error occurred while processing your request. Please try again.")
		}
	}

	payload := fiber.Map{
		"message":   result.Message,
		"sessionId": result.SessionID,
	}
	if result.Emergency {
		payload["warning"] = services.EmergencyWarning
	}

	return response.Raw(c, payload)
}

// History handles GET /chatbot/history. With a sessionId query it
// returns that session's transcript, otherwise the session list.
func (h *ChatbotHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sessionID := c.Query("sessionId")
	if sessionID != "" {
		session, history, err := h.chatbot.GetTranscript(sessionID, user.ID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return response.NotFound(c, "Session not found")
			}
			return response.InternalServerError(c, "Failed to fetch chat history")
		}

		return response.Raw(c, fiber.Map{
			"history":      history,
			"sessionId":    session.ID,
			"sessionTitle": session.Title,
		})
	}

	sessions, err := h.chatbot.ListSessions(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch chat history")
	}

	return response.Raw(c, fiber.Map{"sessions": sessions})
}

// DeleteHistoryRequest is the body of DELETE /chatbot/history
type DeleteHistoryRequest struct {
	SessionID string `json:"sessionId"`
}

// DeleteHistory handles DELETE /chatbot/history
func (h *ChatbotHandler) DeleteHistory(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req DeleteHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SessionID == "" {
		return response.BadRequest(c, "Valid session ID is required")
	}

	if err := h.chatbot.DeleteSession(req.SessionID, user.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		return response.InternalServerError(c, "Failed to delete chat history")
	}

	return response.Message(c, "Chat session deleted successfully")
}

// SessionDetails handles GET /chatbot/session/:id
func (h *ChatbotHandler) SessionDetails(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sessionID := c.Params("id")
	if sessionID == "" {
		return response.BadRequest(c, "Valid session ID is required")
	}

	session, messages, err := h.chatbot.GetTranscript(sessionID, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		return response.InternalServerError(c, "Failed to fetch session details")
	}

	return response.Raw(c, fiber.Map{
		"session": fiber.Map{
			"id":           session.ID,
			"title":        session.Title,
			"createdAt":    session.CreatedAt,
			"updatedAt":    session.UpdatedAt,
			"messageCount": len(messages),
			"context":      session.Context,
			"messages":     messages,
		},
	})
}

// RenameSessionRequest is the body of PATCH /chatbot/session/:id/title
type RenameSessionRequest struct {
	Title string `json:"title"`
}

// RenameSession handles PATCH /chatbot/session/:id/title
func (h *ChatbotHandler) RenameSession(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sessionID := c.Params("id")
	if sessionID == "" {
		return response.BadRequest(c, "Valid session ID is required")
	}

	var req RenameSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	session, err := h.chatbot.Rename(sessionID, user.ID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrEmptyContent):
			return response.BadRequest(c, "Valid title is required")
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Session not found")
		default:
			return response.InternalServerError(c, "Failed to update session title")
		}
	}

	return response.Raw(c, fiber.Map{
		"msg": "Session title updated successfully",
		"session": fiber.Map{
			"id":    session.ID,
			"title": session.Title,
		},
	})
}
