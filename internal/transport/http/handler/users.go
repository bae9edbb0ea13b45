package handler

import (
	"net/http"

	"github.com/entrepreneur-award/award-api/internal/application/user"
	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles signup, the caller's own profile and admin user management.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		httpError(w, r, "users.signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSafeUser(u))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Me(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, r, "users.me", err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

// Submit marks the caller's application as submitted.
func (h *UserHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.MarkSubmitted(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, r, "users.submit", err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, "users.list", err)
		return
	}
	safe := make([]SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{Data: safe})
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignRoleRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.AssignRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpError(w, r, "users.assign_role", err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}
