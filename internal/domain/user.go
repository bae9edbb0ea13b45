package domain

import (
	"strings"
	"time"
)

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	Mobile       string    `json:"mobile" dynamodbav:"mobile"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         Role      `json:"role" dynamodbav:"role"`
	IsSubmitted  bool      `json:"isSubmitted" dynamodbav:"is_submitted"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// CreateUserRequest is the signup payload. Password may be omitted: the
// account then gets a random password and the user sets one through the
// OTP reset flow that signup triggers.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,e164|numeric"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
