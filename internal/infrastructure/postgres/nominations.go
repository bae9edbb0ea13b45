package postgres

import (
	"context"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

const nominationColumns = `nomination_id, nominator_id, nominee_email, nominee_name, nominee_mobile, relationship, status, nominee_user_id, nominated_at`

type NominationRepo struct {
	db DB
}

func NewNominationRepo(db DB) *NominationRepo {
	return &NominationRepo{db: db}
}

func (r *NominationRepo) Create(ctx context.Context, n *domain.Nomination) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO nominations (`+nominationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.NominationID, n.NominatorID, n.NomineeEmail, n.NomineeName, n.NomineeMobile, n.Relationship,
		string(n.Status), n.NomineeUserID, n.NominatedAt,
	)
	return mapErr(err, "nomination")
}

func (r *NominationRepo) ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error) {
	return r.list(ctx, `SELECT `+nominationColumns+` FROM nominations WHERE nominator_id = $1 ORDER BY nominated_at`, nominatorID)
}

func (r *NominationRepo) ListByNomineeEmail(ctx context.Context, email string) ([]domain.Nomination, error) {
	return r.list(ctx, `SELECT `+nominationColumns+` FROM nominations WHERE nominee_email = $1 ORDER BY nominated_at`, email)
}

func (r *NominationRepo) MarkSubmitted(ctx context.Context, nominatorID, nomineeEmail, nomineeUserID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE nominations SET status = $4, nominee_user_id = $3
		WHERE nominator_id = $1 AND nominee_email = $2 AND status = $5`,
		nominatorID, nomineeEmail, nomineeUserID, string(domain.NominationSubmitted), string(domain.NominationPending),
	)
	return err
}

func (r *NominationRepo) list(ctx context.Context, sql string, arg string) ([]domain.Nomination, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	noms := []domain.Nomination{}
	for rows.Next() {
		n, err := scanNomination(rows)
		if err != nil {
			return nil, err
		}
		noms = append(noms, *n)
	}
	return noms, rows.Err()
}

func scanNomination(row pgx.Row) (*domain.Nomination, error) {
	var (
		n      domain.Nomination
		status string
	)
	err := row.Scan(&n.NominationID, &n.NominatorID, &n.NomineeEmail, &n.NomineeName, &n.NomineeMobile,
		&n.Relationship, &status, &n.NomineeUserID, &n.NominatedAt)
	if err != nil {
		return nil, mapErr(err, "nomination")
	}
	n.Status = domain.NominationStatus(status)
	return &n, nil
}
