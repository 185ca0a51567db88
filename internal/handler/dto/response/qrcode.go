package response

import (
	"time"

	"scanledger/internal/usecase/queries"

	"github.com/google/uuid"
)

type QRCodeResponse struct {
	ID              uuid.UUID  `json:"id"`
	BusinessID      uuid.UUID  `json:"businessId"`
	CodeType        string     `json:"codeType"`
	DiscountPercent *float64   `json:"discountPercent,omitempty"`
	PointsValue     *int32     `json:"pointsValue,omitempty"`
	IsActive        bool       `json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	ScanLimit       int32      `json:"scanLimit"`
	CurrentScans    int32      `json:"currentScans"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func FromQRCodeView(v *queries.QRCodeView) *QRCodeResponse {
	return &QRCodeResponse{
		ID:              v.ID,
		BusinessID:      v.BusinessID,
		CodeType:        v.CodeType,
		DiscountPercent: v.DiscountPercent,
		PointsValue:     v.PointsValue,
		IsActive:        v.IsActive,
		ExpiresAt:       v.ExpiresAt,
		ScanLimit:       v.ScanLimit,
		CurrentScans:    v.CurrentScans,
		CreatedAt:       v.CreatedAt,
	}
}
