package auth

import (
	"errors"
	"testing"

	"github.com/carebridge/api/model"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "test"})

	user := &model.User{
		ID:    42,
		Name:  "Asha",
		Email: "asha@example.com",
		Role:  model.RolePatient,
	}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RolePatient || claims.Email != "asha@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	manager := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "test"})
	other := NewJWTManager(JWTConfig{Secret: "other-secret", Issuer: "test"})

	user := &model.User{ID: 1, Email: "a@b.co", Role: model.RolePatient}
	token, err := other.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := manager.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
