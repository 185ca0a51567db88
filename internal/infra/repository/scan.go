package repository

import (
	"context"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type ScanRepository struct {
	db db.DBTX
}

func NewScanRepository(dbtx db.DBTX) *ScanRepository {
	return &ScanRepository{db: dbtx}
}

func (r *ScanRepository) Create(ctx context.Context, scan *shared.ScanRecord) (uuid.UUID, error) {
	const query = `
		INSERT INTO scans (
			id, qr_code_id, customer_id, scanned_at, location,
			points_awarded, discount_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
		RETURNING id`

	id := uuid.New()
	err := r.db.QueryRow(ctx, query,
		id,
		scan.QRCodeID,
		scan.CustomerID,
		scan.ScannedAt,
		scan.Location,
		scan.PointsAwarded,
		scan.DiscountApplied.StringFixed(2),
	).Scan(&id)
	if err != nil {
		if infra.IsForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("qr code or customer does not exist", err, infra.KindForeignKeyViolated)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to insert scan", err)
	}
	return id, nil
}
