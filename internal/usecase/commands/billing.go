package commands

import (
	"context"

	"scanledger/internal/domain/commission"
	"scanledger/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrInvalidProration = errs.New("invalid proration period")

type ProrateRefundParams struct {
	OriginalAmount decimal.Decimal
	DaysUsed       int
	TotalDays      int
}

type ProrateRefundResult struct {
	UsedAmount   decimal.Decimal
	RefundAmount decimal.Decimal
}

type BillingCommands interface {
	ProrateRefund(ctx context.Context, params ProrateRefundParams) (*ProrateRefundResult, error)
}

type billingCommandsImpl struct{}

func NewBillingCommands() BillingCommands {
	return &billingCommandsImpl{}
}

// ProrateRefund computes the unused remainder of a cancelled subscription
// period. Pure calculation, no ledger writes: the refund itself settles as a
// separate transaction.
func (b *billingCommandsImpl) ProrateRefund(_ context.Context, params ProrateRefundParams) (*ProrateRefundResult, error) {
	if params.TotalDays <= 0 || params.DaysUsed < 0 || params.DaysUsed > params.TotalDays {
		return nil, ErrInvalidProration
	}
	if params.OriginalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	used := commission.Prorate(params.OriginalAmount, params.DaysUsed, params.TotalDays)
	refund := commission.Refund(params.OriginalAmount, params.DaysUsed, params.TotalDays)

	return &ProrateRefundResult{UsedAmount: used, RefundAmount: refund}, nil
}
