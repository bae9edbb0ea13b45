package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/pkg/id"
	pkgtoken "github.com/entrepreneur-award/award-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest cost accepted from configuration.
const MinBcryptCost = 10

type Service interface {
	Signup(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	// VerifyCredentials returns domain.ErrInvalidCredentials for both an
	// unknown email and a wrong password.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	// Me resolves the caller's own account. A token whose user no longer
	// exists is reported as domain.ErrUnauthorized.
	Me(ctx context.Context, userID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	AssignRole(ctx context.Context, userID, role string) (*domain.User, error)
	MarkSubmitted(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	// Create fails with domain.ErrConflict when the email is taken.
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	// MarkSubmitted sets is_submitted and reports whether it was false before.
	MarkSubmitted(ctx context.Context, userID string) (bool, error)
}

type otpIssuer interface {
	Generate(ctx context.Context, u *domain.User, purpose domain.OTPPurpose) (*domain.OTP, error)
}

type reconciler interface {
	OnUserCompletedProfile(ctx context.Context, email, userID string) error
}

type ServiceDeps struct {
	UserRepo   userStore
	OTP        otpIssuer
	Reconciler reconciler
	BcryptCost int
}

type service struct {
	repo       userStore
	otp        otpIssuer
	reconciler reconciler
	cost       int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &service{
		repo:       deps.UserRepo,
		otp:        deps.OTP,
		reconciler: deps.Reconciler,
		cost:       cost,
	}
}

func (s *service) Signup(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	password := req.Password
	if password == "" {
		// Registered without a password: the user sets one through the OTP
		// sent below.
		var err error
		if password, err = pkgtoken.NewSecret(); err != nil {
			return nil, err
		}
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        email,
		Mobile:       req.Mobile,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.otp != nil {
		if _, err := s.otp.Generate(ctx, u, domain.OTPPurposeSignup); err != nil {
			slog.Warn("failed to issue signup otp", "user_id", u.UserID, "err", err)
		}
	}
	s.reconcile(ctx, u)
	return u, nil
}

func (s *service) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("credential lookup failed", "err", err)
		}
		// Burn the same bcrypt time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *service) UpdatePassword(ctx context.Context, email, newPassword string) error {
	u, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.UserID, hash)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
	}
	return u, err
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *service) AssignRole(ctx context.Context, userID, role string) (*domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, userID, r); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) MarkSubmitted(ctx context.Context, userID string) (*domain.User, error) {
	changed, err := s.repo.MarkSubmitted(ctx, userID)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.reconcile(ctx, u)
	}
	return u, nil
}

func (s *service) reconcile(ctx context.Context, u *domain.User) {
	if s.reconciler == nil {
		return
	}
	if err := s.reconciler.OnUserCompletedProfile(ctx, u.Email, u.UserID); err != nil {
		slog.Warn("nomination reconcile failed", "user_id", u.UserID, "err", err)
	}
}

func (s *service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("password too long: %w", domain.ErrBadRequest)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), s.cost)
	})
	return s.dummyHash
}
