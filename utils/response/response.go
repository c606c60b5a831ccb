package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response represents a standardized API response
type Response struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains the structured error kind and the request
// correlation id. Internal error text is never included.
type ErrorDetail struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Success returns a successful response carrying data
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, msg string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

// Message returns a successful response with only a message
func Message(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Msg:     msg,
	})
}

// Raw returns a successful response with caller-chosen top-level keys
// (the chatbot endpoints use session/history/message instead of data)
func Raw(c *fiber.Ctx, payload fiber.Map) error {
	payload["success"] = true
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, msg string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

// requestID reads the correlation id stored by the requestid middleware
func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, msg string, code string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Msg:     msg,
		Error: &ErrorDetail{
			Code:      code,
			RequestID: requestID(c),
		},
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusBadRequest, msg, "BAD_REQUEST")
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, msg, "UNAUTHORIZED")
}

// Forbidden returns a 403 Forbidden response
func Forbidden(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Access forbidden"
	}
	return Error(c, fiber.StatusForbidden, msg, "FORBIDDEN")
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, msg, "NOT_FOUND")
}

// Conflict returns a 409 Conflict response
func Conflict(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusConflict, msg, "CONFLICT")
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, msg, "TOO_MANY_REQUESTS")
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, msg, "INTERNAL_ERROR")
}
