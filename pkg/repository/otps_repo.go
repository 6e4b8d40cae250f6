package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/valumind/auth/pkg/domain"
)

// OTPsRepository persists one-time codes. The otps table carries a UNIQUE
// constraint on user_id, making the at-most-one-live-code invariant a
// schema guarantee rather than an application convention.
type OTPsRepository struct {
	db *sql.DB
}

// NewOTPsRepository creates a new OTPs repository.
func NewOTPsRepository(db *sql.DB) *OTPsRepository {
	return &OTPsRepository{db: db}
}

// Save inserts the code, replacing any outstanding code for the user in a
// single upsert. Two concurrent saves for the same user resolve
// last-writer-wins; two simultaneously valid codes cannot exist.
func (r *OTPsRepository) Save(ctx context.Context, code *domain.OneTimeCode) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO otps (id, user_id, otp, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET id = EXCLUDED.id,
		    otp = EXCLUDED.otp,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.ExecContext(ctx, query,
		code.ID, code.UserID, code.Code, code.CreatedAt, code.ExpiresAt,
	)
	return err
}

// Consume atomically deletes the row matching (userID, code) and returns
// it. Only an exact match is deleted, so a wrong guess leaves the stored
// code in place, and of two concurrent redemptions of the same code
// exactly one observes the row.
func (r *OTPsRepository) Consume(ctx context.Context, userID int64, code string) (*domain.OneTimeCode, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		DELETE FROM otps
		WHERE user_id = $1 AND otp = $2
		RETURNING id, user_id, otp, created_at, expires_at
	`
	row := &domain.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, userID, code).Scan(
		&row.ID, &row.UserID, &row.Code, &row.CreatedAt, &row.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOTPInvalid
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteExpired garbage-collects stale rows. Correctness does not depend
// on it: redemption rejects stale rows whether or not they were collected.
func (r *OTPsRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
