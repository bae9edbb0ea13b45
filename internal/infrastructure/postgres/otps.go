package postgres

import (
	"context"
	"errors"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

// OTPRepo keeps one row per user via UNIQUE(user_id).
type OTPRepo struct {
	db DB
}

func NewOTPRepo(db DB) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) Replace(ctx context.Context, o *domain.OTP) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otps (otp_id, user_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET otp_id = EXCLUDED.otp_id,
		    code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at,
		    attempts = 0`,
		o.OTPID, o.UserID, o.Code, o.ExpiresAt, o.CreatedAt,
	)
	return err
}

func (r *OTPRepo) GetByUser(ctx context.Context, userID string) (*domain.OTP, error) {
	var o domain.OTP
	err := r.db.QueryRow(ctx,
		`SELECT otp_id, user_id, code, expires_at, created_at, attempts FROM otps WHERE user_id = $1`, userID,
	).Scan(&o.OTPID, &o.UserID, &o.Code, &o.ExpiresAt, &o.CreatedAt, &o.Attempts)
	if err != nil {
		return nil, mapErr(err, "otp")
	}
	o.TTL = o.ExpiresAt.Unix()
	return &o, nil
}

func (r *OTPRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otps WHERE user_id = $1`, userID)
	return err
}

func (r *OTPRepo) DeleteIssued(ctx context.Context, userID, otpID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otps WHERE user_id = $1 AND otp_id = $2`, userID, otpID)
	return err
}

// RecordFailure bumps the attempt counter of otpID and returns the new count.
// A replaced or deleted OTP reports 0.
func (r *OTPRepo) RecordFailure(ctx context.Context, userID, otpID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`UPDATE otps SET attempts = attempts + 1 WHERE user_id = $1 AND otp_id = $2 RETURNING attempts`,
		userID, otpID,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
