package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	authutil "github.com/carebridge/api/utils/auth"
	"github.com/carebridge/api/utils/response"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles authentication. Unknown email and wrong password are
// deliberately distinct failures (404 vs 403).
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.BadRequest(c, "Email and password are required")
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.recordFailedAttempt(c)
			return response.NotFound(c, "No account found with this email")
		}
		return response.InternalServerError(c, "Failed to look up account")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.recordFailedAttempt(c)
		return response.Forbidden(c, "Incorrect password")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, c.IP())
	}

	token, err := h.jwtManager.GenerateToken(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.SuccessWithMessage(c, "Login successful", AuthResponse{
		User:  toUserResponse(&user),
		Token: token,
	})
}

// recordFailedAttempt feeds the brute force counter when protection is
// enabled. Redis being unavailable never blocks logins.
func (h *AuthHandler) recordFailedAttempt(c *fiber.Ctx) {
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordFailedAttempt(c, c.IP())
	}
}
