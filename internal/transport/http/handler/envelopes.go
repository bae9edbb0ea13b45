package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/entrepreneur-award/award-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// LoginEnvelope wraps a successful login.
type LoginEnvelope struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         LoginSummary `json:"user"`
}

// LoginSummary is the identity returned alongside the tokens.
type LoginSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// RefreshEnvelope wraps a refreshed access token.
type RefreshEnvelope struct {
	AccessToken string `json:"accessToken"`
}

// SafeUser is the public view of a user; the password hash never leaves the server.
type SafeUser struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Mobile      string      `json:"mobile,omitempty"`
	Role        domain.Role `json:"role"`
	IsSubmitted bool        `json:"isSubmitted"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// UsersEnvelope wraps the admin user list.
type UsersEnvelope struct {
	Data []SafeUser `json:"data"`
}

// NominationsEnvelope wraps a nominator's nominations.
type NominationsEnvelope struct {
	Data []domain.Nomination `json:"data"`
}

func toSafeUser(u *domain.User) SafeUser {
	return SafeUser{
		ID:          u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		Mobile:      u.Mobile,
		Role:        u.Role,
		IsSubmitted: u.IsSubmitted,
		CreatedAt:   u.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}
