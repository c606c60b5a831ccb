package patient

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

// PatientHandler handles the patient-side request lifecycle
type PatientHandler struct {
	requests  *services.RequestService
	messages  *services.MessageService
	validator *validation.Validator
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(requests *services.RequestService, messages *services.MessageService) *PatientHandler {
	return &PatientHandler{
		requests:  requests,
		messages:  messages,
		validator: validation.NewValidator(),
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateRequest handles POST /patient/request
func (h *PatientHandler) CreateRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var input services.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&input); err != nil {
		return response.BadRequest(c, "Title, issue, name and a valid email are required")
	}

	request, err := h.requests.Create(user, input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create request")
	}

	return response.Created(c, "Request submitted successfully", request)
}

// MyRequests handles GET /patient/my_requests
func (h *PatientHandler) MyRequests(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requests, err := h.requests.ListMine(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch requests")
	}

	return response.Success(c, requests)
}

// GetRequest handles GET /patient/request/:id
func (h *PatientHandler) GetRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	request, err := h.requests.GetByID(requestID, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Request not found")
		}
		return response.InternalServerError(c, "Failed to fetch request")
	}

	return response.Success(c, request)
}

// ResolveRequest handles PATCH /patient/resolve/:id
func (h *PatientHandler) ResolveRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	request, err := h.requests.Resolve(requestID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only the request owner can resolve it")
		case errors.Is(err, services.ErrTerminalStatus):
			return response.BadRequest(c, "Request is already closed")
		default:
			return response.InternalServerError(c, "Failed to resolve request")
		}
	}

	return response.SuccessWithMessage(c, "Request resolved successfully", request)
}

// AskQueryRequest is the body of the shorthand message route
type AskQueryRequest struct {
	Message string `json:"message"`
}

// AskQuery handles POST /patient/ask_query/:id. It is a shorthand for
// sending a PATIENT message and goes through the same validation and
// authorization as the main messaging route.
func (h *PatientHandler) AskQuery(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	var req AskQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	message, err := h.messages.Send(user, requestID, req.Message, model.SenderPatient)
	if err != nil {
		return mapMessageError(c, err)
	}

	return response.Created(c, "Message sent successfully", message)
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
		return response.InternalServerError(c, "Failed to send message")
	}
}
