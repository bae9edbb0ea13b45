package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/pkg/id"
)

const (
	DefaultTTL = 10 * time.Minute
	// MaxAttempts wrong codes burn the issued OTP.
	MaxAttempts = 5

	codeMin = 100000
	codeMax = 999999

	notifyTimeout = 45 * time.Second
)

type Service interface {
	// Generate issues a new code for u, replacing any previous one, and
	// hands it to the notification sink in the background.
	Generate(ctx context.Context, u *domain.User, purpose domain.OTPPurpose) (*domain.OTP, error)
	// Verify checks code against the user's live OTP. The record is kept on
	// success; callers clear it once the guarded action has completed.
	Verify(ctx context.Context, userID, code string) error
	// Clear removes the user's OTP. It is a no-op if there is none.
	Clear(ctx context.Context, userID string) error
}

// otpStore keeps one OTP row per user.
type otpStore interface {
	// Replace atomically inserts o, overwriting any existing row for o.UserID.
	Replace(ctx context.Context, o *domain.OTP) error
	GetByUser(ctx context.Context, userID string) (*domain.OTP, error)
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteIssued removes the user's row only if it is still the one with otpID.
	DeleteIssued(ctx context.Context, userID, otpID string) error
	// RecordFailure increments the attempt counter of otpID and returns the
	// new value, or 0 if otpID is no longer the user's row.
	RecordFailure(ctx context.Context, userID, otpID string) (int, error)
}

type notifier interface {
	Send(ctx context.Context, msg notification.Message) error
}

// Config is built from config.Config in main.
type Config struct {
	TTL          time.Duration
	SupportEmail string
	SMSEnabled   bool
}

type ServiceDeps struct {
	Store    otpStore
	Notifier notifier
	Config   Config
	// Now and NewCode are replaceable in tests.
	Now     func() time.Time
	NewCode func() (string, error)
	// Dispatch runs delivery off the request path. Defaults to a goroutine.
	Dispatch func(func())
}

type service struct {
	store    otpStore
	notifier notifier
	cfg      Config
	now      func() time.Time
	newCode  func() (string, error)
	dispatch func(func())
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:    deps.Store,
		notifier: deps.Notifier,
		cfg:      deps.Config,
		now:      deps.Now,
		newCode:  deps.NewCode,
		dispatch: deps.Dispatch,
	}
	if s.cfg.TTL <= 0 {
		s.cfg.TTL = DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = NewCode
	}
	if s.dispatch == nil {
		s.dispatch = func(fn func()) { go fn() }
	}
	return s
}

// NewCode draws a uniformly random code in [100000, 999999].
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

var subjects = map[domain.OTPPurpose]struct{ subject, action string }{
	domain.OTPPurposeReset:  {"Password Reset OTP", "Use it to reset your password."},
	domain.OTPPurposeSignup: {"Set Your Entrepreneur Award Password", "Use it to set the password for your new account."},
}

func (s *service) Generate(ctx context.Context, u *domain.User, purpose domain.OTPPurpose) (*domain.OTP, error) {
	wording, ok := subjects[purpose]
	if !ok {
		return nil, fmt.Errorf("unknown otp purpose %d", purpose)
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	o := &domain.OTP{
		OTPID:     id.New(),
		UserID:    u.UserID,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
		TTL:       now.Add(s.cfg.TTL).Unix(),
	}
	if err := s.store.Replace(ctx, o); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	msg := notification.Message{
		To:       u.Email,
		Subject:  wording.subject,
		Template: notification.TemplateOTP,
		Data: map[string]any{
			"Title":        wording.subject,
			"Action":       wording.action,
			"Name":         u.Name,
			"OTP":          code,
			"ExpiresIn":    int(s.cfg.TTL / time.Minute),
			"SupportEmail": s.cfg.SupportEmail,
		},
	}
	if s.cfg.SMSEnabled && u.Mobile != "" {
		msg.Mobile = u.Mobile
		msg.SMS = "Your Entrepreneur Award OTP is " + code
	}

	// Delivery outlives the request and must not hold up its response.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	userID := u.UserID
	s.dispatch(func() {
		defer cancel()
		if err := s.notifier.Send(sendCtx, msg); err != nil {
			slog.Warn("otp delivery failed", "user_id", userID, "err", err)
		}
	})
	return o, nil
}

func (s *service) Verify(ctx context.Context, userID, code string) error {
	o, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidOTP
		}
		return err
	}
	if o.Attempts >= MaxAttempts {
		s.burn(ctx, userID, o.OTPID)
		return domain.ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 {
		n, err := s.store.RecordFailure(ctx, userID, o.OTPID)
		if err != nil {
			slog.Warn("failed to record otp attempt", "user_id", userID, "err", err)
		} else if n >= MaxAttempts {
			s.burn(ctx, userID, o.OTPID)
		}
		return domain.ErrInvalidOTP
	}
	if o.Expired(s.now()) {
		if err := s.store.DeleteIssued(ctx, userID, o.OTPID); err != nil {
			slog.Warn("failed to delete expired otp", "user_id", userID, "err", err)
		}
		return domain.ErrOTPExpired
	}
	return nil
}

func (s *service) burn(ctx context.Context, userID, otpID string) {
	if err := s.store.DeleteIssued(ctx, userID, otpID); err != nil {
		slog.Warn("failed to delete exhausted otp", "user_id", userID, "err", err)
	}
}

func (s *service) Clear(ctx context.Context, userID string) error {
	return s.store.DeleteByUser(ctx, userID)
}
