package readstore

import (
	"context"
	"time"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"
	"scanledger/internal/usecase/queries"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type QRCodeReadStore struct {
	db db.DBTX
}

func NewQRCodeReadStore(dbtx db.DBTX) *QRCodeReadStore {
	return &QRCodeReadStore{db: dbtx}
}

const qrCodeColumns = `
	id, business_id, code_type, discount_percent, points_value,
	is_active, expires_at, scan_limit, current_scans, created_at`

func (r *QRCodeReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.QRCodeSnapshot, error) {
	const query = `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE id = $1`

	row, err := scanQRCodeRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("qr code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find qr code by id", err)
	}

	return &shared.QRCodeSnapshot{
		ID:              row.id,
		BusinessID:      row.businessID,
		CodeType:        row.codeType,
		DiscountPercent: row.discountPercent,
		PointsValue:     row.pointsValue,
		IsActive:        row.isActive,
		ExpiresAt:       row.expiresAt,
		ScanLimit:       row.scanLimit,
		CurrentScans:    row.currentScans,
	}, nil
}

func (r *QRCodeReadStore) ViewByID(ctx context.Context, id uuid.UUID) (*queries.QRCodeView, error) {
	const query = `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE id = $1`

	row, err := scanQRCodeRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("qr code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find qr code by id", err)
	}
	return row.toView(), nil
}

func (r *QRCodeReadStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*queries.QRCodeView, error) {
	const query = `SELECT ` + qrCodeColumns + `
		FROM qr_codes
		WHERE business_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list qr codes", err)
	}
	defer rows.Close()

	var views []*queries.QRCodeView
	for rows.Next() {
		row, err := scanQRCodeRow(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan qr code row", err)
		}
		views = append(views, row.toView())
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate qr code rows", err)
	}
	return views, nil
}

type qrCodeRow struct {
	id              uuid.UUID
	businessID      uuid.UUID
	codeType        string
	discountPercent *float64
	pointsValue     *int32
	isActive        bool
	expiresAt       *time.Time
	scanLimit       int32
	currentScans    int32
	createdAt       time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQRCodeRow(s rowScanner) (*qrCodeRow, error) {
	var row qrCodeRow
	err := s.Scan(
		&row.id,
		&row.businessID,
		&row.codeType,
		&row.discountPercent,
		&row.pointsValue,
		&row.isActive,
		&row.expiresAt,
		&row.scanLimit,
		&row.currentScans,
		&row.createdAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (row *qrCodeRow) toView() *queries.QRCodeView {
	return &queries.QRCodeView{
		ID:              row.id,
		BusinessID:      row.businessID,
		CodeType:        row.codeType,
		DiscountPercent: row.discountPercent,
		PointsValue:     row.pointsValue,
		IsActive:        row.isActive,
		ExpiresAt:       row.expiresAt,
		ScanLimit:       row.scanLimit,
		CurrentScans:    row.currentScans,
		CreatedAt:       row.createdAt,
	}
}
