package postgres

import (
	"context"
	"fmt"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, name, email, mobile, password_hash, role, is_submitted, created_at, updated_at`

type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create relies on the unique email constraint for duplicate detection.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.UserID, u.Name, u.Email, u.Mobile, u.PasswordHash, string(u.Role), u.IsSubmitted, u.CreatedAt, u.UpdatedAt,
	)
	return mapErr(err, "user")
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE user_id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE user_id = $1`,
		userID, string(role),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkSubmitted flips is_submitted once and reports whether it did.
func (r *UserRepo) MarkSubmitted(ctx context.Context, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_submitted = TRUE, updated_at = now() WHERE user_id = $1 AND NOT is_submitted`,
		userID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return false, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.UserID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash, &role, &u.IsSubmitted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "user")
	}
	u.Role = domain.Role(role)
	return &u, nil
}
