package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	authutil "github.com/carebridge/api/utils/auth"
	"github.com/carebridge/api/utils/response"
)

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"`
	Age      int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Phone    string `json:"phone,omitempty"`
}

// Register handles account registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.BadRequest(c, "Name, a valid email and a password of at least 8 characters are required")
	}

	// Role defaults to PATIENT
	role := model.UserRole(req.Role)
	if req.Role == "" {
		role = model.RolePatient
	}
	if !role.IsValid() {
		return response.BadRequest(c, "Invalid role. Must be PATIENT, VOLUNTEER or ADMIN")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Age:          req.Age,
		Phone:        req.Phone,
	}

	// The unique index on users.email decides duplicates, so two
	// concurrent registrations cannot both succeed
	if err := h.db.Create(&user).Error; err != nil {
		if isDuplicateEmail(err) {
			return response.Conflict(c, "User with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	token, err := h.jwtManager.GenerateToken(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Created(c, "Account created successfully", AuthResponse{
		User:  toUserResponse(&user),
		Token: token,
	})
}

// isDuplicateEmail matches the unique-constraint violation raised by
// the users.email index, across the postgres and sqlite drivers
func isDuplicateEmail(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
