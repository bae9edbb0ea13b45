package http

import (
	"context"

	"github.com/entrepreneur-award/award-api/internal/domain"
)

// UserRepository is implemented by both the DynamoDB and the Postgres user stores.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	MarkSubmitted(ctx context.Context, userID string) (bool, error)
}

// OTPRepository keeps at most one live OTP per user.
type OTPRepository interface {
	Replace(ctx context.Context, o *domain.OTP) error
	GetByUser(ctx context.Context, userID string) (*domain.OTP, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteIssued(ctx context.Context, userID, otpID string) error
	RecordFailure(ctx context.Context, userID, otpID string) (int, error)
}

// NominationRepository is unique per (nominator, nominee email).
type NominationRepository interface {
	Create(ctx context.Context, n *domain.Nomination) error
	ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error)
	ListByNomineeEmail(ctx context.Context, email string) ([]domain.Nomination, error)
	MarkSubmitted(ctx context.Context, nominatorID, nomineeEmail, nomineeUserID string) error
}
