package volunteer

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/carebridge/api/services"
	"github.com/carebridge/api/utils/middleware"
	"github.com/carebridge/api/utils/response"
)

// VolunteerHandler handles the volunteer-side assignment views
type VolunteerHandler struct {
	assignments *services.AssignmentService
}

// NewVolunteerHandler creates a new volunteer handler
func NewVolunteerHandler(assignments *services.AssignmentService) *VolunteerHandler {
	return &VolunteerHandler{assignments: assignments}
}

// AvailableRequests handles GET /volunteer/get_all_patient
func (h *VolunteerHandler) AvailableRequests(c *fiber.Ctx) error {
	requests, err := h.assignments.ListAvailable()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch available requests")
	}

	return response.Success(c, requests)
}

// AssignRequest handles POST /volunteer/assign/:id
func (h *VolunteerHandler) AssignRequest(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request id")
	}

	request, err := h.assignments.Assign(uint(id), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrAlreadyAssigned):
			return response.Conflict(c, "Request has already been assigned to another volunteer")
		default:
			return response.InternalServerError(c, "Failed to assign request")
		}
	}

	return response.SuccessWithMessage(c, "Request assigned successfully", request)
}

// MyPatients handles GET /volunteer/my_patients
func (h *VolunteerHandler) MyPatients(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	requests, err := h.assignments.ListAssigned(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch assigned requests")
	}

	return response.Success(c, requests)
}
