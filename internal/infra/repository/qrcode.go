package repository

import (
	"context"

	"scanledger/internal/domain/qrcode"
	"scanledger/internal/infra"
	"scanledger/internal/infra/db"

	"github.com/google/uuid"
)

type QRCodeRepository struct {
	db db.DBTX
}

func NewQRCodeRepository(dbtx db.DBTX) *QRCodeRepository {
	return &QRCodeRepository{db: dbtx}
}

func (r *QRCodeRepository) Create(ctx context.Context, code *qrcode.QRCode) error {
	const query = `
		INSERT INTO qr_codes (
			id, business_id, code_type, discount_percent, points_value,
			is_active, expires_at, scan_limit, current_scans
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		code.ID(),
		code.BusinessID(),
		string(code.Type()),
		code.DiscountPercent(),
		code.PointsValue(),
		code.IsActive(),
		code.ExpiresAt(),
		code.ScanLimit(),
		code.CurrentScans(),
	)
	if err != nil {
		if infra.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("business does not exist", err, infra.KindForeignKeyViolated)
		}
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("qr code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create qr code", err)
	}
	return nil
}

func (r *QRCodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const query = `
		UPDATE qr_codes
		SET is_active = $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return infra.WrapRepoErr("failed to update qr code state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("qr code not found", nil, infra.KindNotFound)
	}
	return nil
}

// IncrementScanCountIfUnderLimit is the conditional compare-and-increment
// guarding the scan limit. Of N concurrent scans against the last admissible
// slot, exactly one update matches; the rest see zero rows affected.
func (r *QRCodeRepository) IncrementScanCountIfUnderLimit(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE qr_codes
		SET current_scans = current_scans + 1, updated_at = now()
		WHERE id = $1
		  AND is_active
		  AND (scan_limit = 0 OR current_scans < scan_limit)`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment scan count", err)
	}
	return tag.RowsAffected() == 1, nil
}
