package handler

import (
	"time"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
)

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"       example:"John Doe"`
	Email    string `json:"email"    validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"password123"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"password123"`
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,min=3"                 example:"John Doe"`
	Email    string `json:"email"    validate:"required,email"                 example:"john@example.com"`
	Password string `json:"password" validate:"required,min=8,password_policy" example:"P@ssw0rd"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN USER"     example:"USER"`
}

type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=3"               example:"Jane Smith"`
	Email    *string `json:"email"    validate:"omitempty,email"               example:"jane.smith@example.com"`
	Password *string `json:"password" validate:"omitempty,min=6"               example:"newpassword123"`
	Role     *string `json:"role"     validate:"omitempty,oneof=ADMIN USER"    example:"USER"`
}

// updateProfileRequest is updateUserRequest without the role.
type updateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=3" example:"Jane Smith"`
	Email    *string `json:"email"    validate:"omitempty,email" example:"jane.smith@example.com"`
	Password *string `json:"password" validate:"omitempty,min=6" example:"newpassword123"`
}

// --- Response types ---

type tokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type userResponse struct {
	ID        string    `json:"_id"       example:"507f1f77bcf86cd799439011"`
	Name      string    `json:"name"      example:"John Doe"`
	Email     string    `json:"email"     example:"john@example.com"`
	Role      string    `json:"role"      example:"USER"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	ErrorCode string `json:"errorCode" example:"VALIDATION_ERROR"`
	Message   string `json:"message"   example:"Validation failed for the provided input"`
	Details   any    `json:"details,omitempty"`
}

// --- Mappers ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func (r updateUserRequest) toInput() ports.UpdateUserInput {
	in := ports.UpdateUserInput{Name: r.Name, Email: r.Email, Password: r.Password}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		in.Role = &role
	}
	return in
}

func (r updateProfileRequest) toInput() ports.UpdateUserInput {
	return ports.UpdateUserInput{Name: r.Name, Email: r.Email, Password: r.Password}
}
