package handler

import (
	"errors"
	"net/http"

	"github.com/entrepreneur-award/award-api/internal/application/auth"
	"github.com/entrepreneur-award/award-api/internal/domain"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If the email is registered, an OTP has been sent"

// AuthHandler handles login, token refresh and the OTP password-reset flow.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, "auth.login", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		User: LoginSummary{
			ID:    res.User.UserID,
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  res.User.Role,
		},
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		httpError(w, r, "auth.forgot_password", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: forgotPasswordMessage})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		httpError(w, r, "auth.verify_otp", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, r, "auth.reset_password", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password reset successfully"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	access, err := h.svc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, r, "auth.refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshEnvelope{AccessToken: access})
}
