package request

import (
	"time"

	"scanledger/internal/domain/qrcode"

	"github.com/google/uuid"
)

type CreateQRCodeRequest struct {
	BusinessID      uuid.UUID  `json:"business_id" binding:"required"`
	CodeType        string     `json:"code_type" binding:"required,oneof=discount loyalty info"`
	DiscountPercent *float64   `json:"discount_percent,omitempty"`
	PointsValue     *int32     `json:"points_value,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ScanLimit       int32      `json:"scan_limit"`
}

func (r CreateQRCodeRequest) ToConfig() qrcode.Config {
	return qrcode.Config{
		DiscountPercent: r.DiscountPercent,
		PointsValue:     r.PointsValue,
		ExpiresAt:       r.ExpiresAt,
		ScanLimit:       r.ScanLimit,
	}
}
