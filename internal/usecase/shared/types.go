package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Write-side snapshots prevent dependency on read-side query types (CQRS
// separation).

type QRCodeSnapshot struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	CodeType        string
	DiscountPercent *float64
	PointsValue     *int32
	IsActive        bool
	ExpiresAt       *time.Time
	ScanLimit       int32
	CurrentScans    int32
}

type AgentSnapshot struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ReferralCode    string
	IsActive        bool
	CommissionRate  *decimal.Decimal
	RecruiterID     *uuid.UUID
	RecruiterActive bool
}

type ScanRecord struct {
	QRCodeID        uuid.UUID
	CustomerID      *uuid.UUID
	ScannedAt       time.Time
	Location        *string
	PointsAwarded   int32
	DiscountApplied decimal.Decimal
}

type TransactionRecord struct {
	ID          uuid.UUID
	GrossAmount decimal.Decimal
	Type        string
	BusinessID  uuid.UUID
	AgentID     *uuid.UUID
	SettledAt   time.Time
}

type BreakdownRecord struct {
	TransactionID      uuid.UUID
	PlatformCommission decimal.Decimal
	BusinessPayout     decimal.Decimal
	AgentID            *uuid.UUID
	AgentCommission    decimal.Decimal
	RecruiterID        *uuid.UUID
	OverrideCommission decimal.Decimal
	CreatedAt          time.Time
}
