package chat

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services"
	"github.com/carebridge/api/utils/middleware"
	"github.com/carebridge/api/utils/response"
	"github.com/carebridge/api/utils/validation"
)

// ChatHandler handles the per-request message threads
type ChatHandler struct {
	messages *services.MessageService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(messages *services.MessageService) *ChatHandler {
	return &ChatHandler{messages: messages}
}

// SendMessageRequest is the body of POST /chat
type SendMessageRequest struct {
	RequestID  uint   `json:"requestId"`
	Content    string `json:"content"`
	SenderRole string `json:"senderRole"`
}

// SendMessage handles POST /chat
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RequestID == 0 {
		return response.BadRequest(c, "requestId is required")
	}

	senderRole := model.MessageSender(req.SenderRole)
	if senderRole != model.SenderPatient && senderRole != model.SenderVolunteer {
		return response.BadRequest(c, "senderRole must be PATIENT or VOLUNTEER")
	}

	message, err := h.messages.Send(user, req.RequestID, req.Content, senderRole)
	if err != nil {
		return mapMessageError(c, err)
	}

	return response.Created(c, "Message sent successfully", message)
}

// ListMessages handles GET /chat/:requestId. Fetching the thread also
// marks the counterpart's messages as seen, as an explicit second step,
// and the response reflects the post-update read state.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requestID, err := strconv.ParseUint(c.Params("requestId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	if _, err := h.messages.MarkThreadRead(uint(requestID), user); err != nil {
		return mapMessageError(c, err)
	}

	messages, err := h.messages.List(uint(requestID), user)
	if err != nil {
		return mapMessageError(c, err)
	}

	return response.Success(c, messages)
}

// UnreadCount handles GET /chat/unread/count
func (h *ChatHandler) UnreadCount(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	count, err := h.messages.UnreadCount(user)
	if err != nil {
		return mapMessageError(c, err)
	}

	return response.Success(c, fiber.Map{"unreadCount": count})
}

// MarkRead handles PATCH /chat/:requestId/read
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requestID, err := strconv.ParseUint(c.Params("requestId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	marked, err := h.messages.MarkThreadRead(uint(requestID), user)
	if err != nil {
		return mapMessageError(c, err)
	}

	return response.SuccessWithMessage(c, "Messages marked as read", fiber.Map{"markedCount": marked})
}

// DeleteMessage handles DELETE /chat/:messageId
func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	messageID, err := strconv.ParseUint(c.Params("messageId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid message id")
	}

	if err := h.messages.Delete(uint(messageID), user.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Message not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only the sender can delete a message")
		default:
			return response.InternalServerError(c, "Failed to delete message")
		}
	}

	return response.Message(c, "Message deleted successfully")
}

// mapMessageError converts messaging service errors to responses
func mapMessageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, validation.ErrEmptyContent):
		return response.BadRequest(c, "Message content cannot be empty")
	case errors.Is(err, validation.ErrContentTooLong):
		return response.BadRequest(c, "Message is too long. Please keep it under 2000 characters.")
	case errors.Is(err, services.ErrSenderRoleMismatch):
		return response.Forbidden(c, "Sender role does not match your account")
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Request not found")
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, "You are not a participant of this request")
	case errors.Is(err, services.ErrNoVolunteerAssigned):
		return response.BadRequest(c, "No volunteer has been assigned to this request yet")
	case errors.Is(err, services.ErrRequestCancelled):
		return response.BadRequest(c, "Cannot send messages on a cancelled request")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}
