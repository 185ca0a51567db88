package queries

import (
	"context"
	"time"

	"scanledger/internal/infra"
	"scanledger/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrQRCodeNotFound = errs.New("qr code not found")

type QRCodeView struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	CodeType        string
	DiscountPercent *float64
	PointsValue     *int32
	IsActive        bool
	ExpiresAt       *time.Time
	ScanLimit       int32
	CurrentScans    int32
	CreatedAt       time.Time
}

type QRCodeReadStore interface {
	ViewByID(ctx context.Context, id uuid.UUID) (*QRCodeView, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*QRCodeView, error)
}

type QRCodeQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*QRCodeView, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*QRCodeView, error)
}

type qrCodeQueriesImpl struct {
	readStore QRCodeReadStore
}

func NewQRCodeQueries(readStore QRCodeReadStore) QRCodeQueries {
	return &qrCodeQueriesImpl{readStore: readStore}
}

func (q *qrCodeQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*QRCodeView, error) {
	view, err := q.readStore.ViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, errs.Wrap(err, "failed to get qr code")
	}
	return view, nil
}

func (q *qrCodeQueriesImpl) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*QRCodeView, error) {
	views, err := q.readStore.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list qr codes")
	}
	return views, nil
}
