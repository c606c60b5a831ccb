package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/carebridge/api/model"
	authutil "github.com/carebridge/api/utils/auth"
	"github.com/carebridge/api/utils/middleware"
	"github.com/carebridge/api/utils/validation"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// UserResponse represents account data in responses. The password hash
// never appears here.
type UserResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      model.UserRole `json:"role"`
	Age       int            `json:"age,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuthResponse carries the account and its session token
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Age:       user.Age,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}
