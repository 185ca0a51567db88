package repository

import (
	"context"
	"time"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"

	"github.com/google/uuid"
)

type ReferralRepository struct {
	db db.DBTX
}

func NewReferralRepository(dbtx db.DBTX) *ReferralRepository {
	return &ReferralRepository{db: dbtx}
}

func (r *ReferralRepository) Create(ctx context.Context, referralCode, userAgent string, scannedAt time.Time) (uuid.UUID, error) {
	const query = `
		INSERT INTO referral_scans (id, referral_code, user_agent, scanned_at, converted)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query, id, referralCode, userAgent, scannedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to insert referral scan", err)
	}
	return id, nil
}

// MarkConverted converts the oldest unconverted scan for the code. The
// predicate makes the transition one-way and at-most-once under concurrency:
// two settlements racing on the same code cannot both match a row.
func (r *ReferralRepository) MarkConverted(ctx context.Context, referralCode string, at time.Time) (bool, error) {
	const query = `
		UPDATE referral_scans
		SET converted = true, converted_at = $2
		WHERE id = (
			SELECT id FROM referral_scans
			WHERE referral_code = $1 AND NOT converted
			ORDER BY scanned_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)`

	tag, err := r.db.Exec(ctx, query, referralCode, at)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark referral converted", err)
	}
	return tag.RowsAffected() == 1, nil
}
