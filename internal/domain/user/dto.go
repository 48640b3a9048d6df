package user

import (
	"time"

	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	QRActive    bool   `json:"qr_active"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		QRActive:    u.QRActive,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// UpsertUserRequest registers the profile of an identity-provider account.
type UpsertUserRequest struct {
	ID          string `json:"id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=255"`
	Role        Role   `json:"role" validate:"required,oneof=user admin"`
}

func (r *UpsertUserRequest) Validate() error {
	return validator.Struct(r)
}

// UpdateUserRequest is the admin patch of a profile; nil fields are left alone.
type UpdateUserRequest struct {
	ID          string  `json:"-"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *Role   `json:"role,omitempty"`
	QRActive    *bool   `json:"qr_active,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.DisplayName != nil && len(*r.DisplayName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "display_name",
			Message: "display_name must not exceed 255 characters",
		})
	}

	if r.Role != nil && *r.Role != RoleUser && *r.Role != RoleAdmin {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: user, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
