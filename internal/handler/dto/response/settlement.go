package response

import (
	"time"

	"scanledger/internal/domain/commission"
	"scanledger/internal/usecase/queries"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

// Money travels as fixed-point decimal strings end to end.

type BreakdownResponse struct {
	TransactionID      uuid.UUID  `json:"transactionId"`
	Gross              string     `json:"gross,omitempty"`
	PlatformCommission string     `json:"platformCommission"`
	BusinessPayout     string     `json:"businessPayout"`
	AgentID            *uuid.UUID `json:"agentId,omitempty"`
	AgentCommission    string     `json:"agentCommission"`
	RecruiterID        *uuid.UUID `json:"recruiterId,omitempty"`
	OverrideCommission string     `json:"overrideCommission"`
	IsReplayed         bool       `json:"isReplayed"`
}

func FromBreakdown(transactionID uuid.UUID, b commission.Breakdown, replayed bool) *BreakdownResponse {
	return &BreakdownResponse{
		TransactionID:      transactionID,
		Gross:              b.Gross.StringFixed(2),
		PlatformCommission: b.PlatformCommission.StringFixed(2),
		BusinessPayout:     b.BusinessPayout.StringFixed(2),
		AgentID:            b.AgentID,
		AgentCommission:    b.AgentCommission.StringFixed(2),
		RecruiterID:        b.RecruiterID,
		OverrideCommission: b.OverrideCommission.StringFixed(2),
		IsReplayed:         replayed,
	}
}

func FromBreakdownRecord(rec *shared.BreakdownRecord) *BreakdownResponse {
	return &BreakdownResponse{
		TransactionID:      rec.TransactionID,
		PlatformCommission: rec.PlatformCommission.StringFixed(2),
		BusinessPayout:     rec.BusinessPayout.StringFixed(2),
		AgentID:            rec.AgentID,
		AgentCommission:    rec.AgentCommission.StringFixed(2),
		RecruiterID:        rec.RecruiterID,
		OverrideCommission: rec.OverrideCommission.StringFixed(2),
	}
}

type CommissionSummaryResponse struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	TransactionCount int64     `json:"transactionCount"`
	GrossTotal       string    `json:"grossTotal"`
	PlatformTotal    string    `json:"platformTotal"`
	AgentTotal       string    `json:"agentTotal"`
	OverrideTotal    string    `json:"overrideTotal"`
}

func FromCommissionSummary(v *queries.CommissionSummaryView) *CommissionSummaryResponse {
	return &CommissionSummaryResponse{
		From:             v.From,
		To:               v.To,
		TransactionCount: v.TransactionCount,
		GrossTotal:       v.GrossTotal.StringFixed(2),
		PlatformTotal:    v.PlatformTotal.StringFixed(2),
		AgentTotal:       v.AgentTotal.StringFixed(2),
		OverrideTotal:    v.OverrideTotal.StringFixed(2),
	}
}

type ProrateRefundResponse struct {
	UsedAmount   string `json:"usedAmount"`
	RefundAmount string `json:"refundAmount"`
}
