package dto

import (
	"time"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// AdminUpdateUserRequest lets admins change role, category scope, or
// active state. Omitted fields are left untouched.
type AdminUpdateUserRequest struct {
	Role     *domain.UserRole `json:"role"`
	Category *string          `json:"category"`
	IsActive *bool            `json:"isActive"`
}

// UserResponse is the public account projection. PasswordHash never
// leaves the domain layer.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Category  *string         `json:"category,omitempty"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
