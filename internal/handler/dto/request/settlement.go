package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SettleTransactionRequest struct {
	TransactionID   uuid.UUID  `json:"transaction_id" binding:"required"`
	GrossAmount     string     `json:"gross_amount" binding:"required"`
	TransactionType string     `json:"transaction_type" binding:"required,oneof=purchase subscription refund"`
	BusinessID      uuid.UUID  `json:"business_id" binding:"required"`
	AgentID         *uuid.UUID `json:"agent_id,omitempty"`
}

func (r SettleTransactionRequest) ParseGrossAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.GrossAmount)
}

type ProrateRefundRequest struct {
	OriginalAmount string `json:"original_amount" binding:"required"`
	DaysUsed       int    `json:"days_used" binding:"min=0"`
	TotalDays      int    `json:"total_days" binding:"required,min=1"`
}

func (r ProrateRefundRequest) ParseOriginalAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.OriginalAmount)
}
