package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/entrepreneur-award/award-api/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ReEnterPassword string `json:"reEnterPassword" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LoginResult struct {
	Tokens *domain.TokenPair
	User   *domain.User
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// ForgotPassword returns domain.ErrNotFound for an unknown email. The
	// HTTP layer hides that from the client.
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

type credentialStore interface {
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error
}

type otpLedger interface {
	Generate(ctx context.Context, u *domain.User, purpose domain.OTPPurpose) (*domain.OTP, error)
	Verify(ctx context.Context, userID, code string) error
	Clear(ctx context.Context, userID string) error
}

type tokenIssuer interface {
	IssuePair(subject domain.TokenSubject) (*domain.TokenPair, error)
	Refresh(refreshToken string) (string, error)
}

type reconciler interface {
	OnUserCompletedProfile(ctx context.Context, email, userID string) error
}

type ServiceDeps struct {
	Users      credentialStore
	OTP        otpLedger
	Tokens     tokenIssuer
	Reconciler reconciler
}

type service struct {
	users      credentialStore
	otp        otpLedger
	tokens     tokenIssuer
	reconciler reconciler
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:      deps.Users,
		otp:        deps.OTP,
		tokens:     deps.Tokens,
		reconciler: deps.Reconciler,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(domain.TokenSubject{UserID: u.UserID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair, User: u}, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = s.otp.Generate(ctx, u, domain.OTPPurposeReset)
	return err
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	_, err := s.verify(ctx, email, code)
	return err
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Password != req.ReEnterPassword {
		return domain.ErrPasswordMismatch
	}
	u, err := s.verify(ctx, req.Email, req.OTP)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.Email, req.Password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.otp.Clear(ctx, u.UserID); err != nil {
		slog.Warn("failed to clear otp after reset", "user_id", u.UserID, "err", err)
	}
	if s.reconciler != nil {
		if err := s.reconciler.OnUserCompletedProfile(ctx, u.Email, u.UserID); err != nil {
			slog.Warn("nomination reconcile failed", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) RefreshToken(_ context.Context, refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}

// verify resolves the user and checks the code. An unknown email reads as a
// wrong code.
func (s *service) verify(ctx context.Context, email, code string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidOTP
		}
		return nil, err
	}
	if err := s.otp.Verify(ctx, u.UserID, code); err != nil {
		return nil, err
	}
	return u, nil
}
