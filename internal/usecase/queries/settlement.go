package queries

import (
	"context"
	"time"

	"scanledger/internal/infra"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrSettlementNotFound = errs.New("settlement not found")

type CommissionSummaryView struct {
	From             time.Time
	To               time.Time
	TransactionCount int64
	GrossTotal       decimal.Decimal
	PlatformTotal    decimal.Decimal
	AgentTotal       decimal.Decimal
	OverrideTotal    decimal.Decimal
}

type SettlementReadStore interface {
	BreakdownByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error)
	PlatformSummary(ctx context.Context, from, to time.Time) (*CommissionSummaryView, error)
}

type SettlementQueries interface {
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error)
	PlatformSummary(ctx context.Context, from, to time.Time) (*CommissionSummaryView, error)
}

type settlementQueriesImpl struct {
	readStore SettlementReadStore
}

func NewSettlementQueries(readStore SettlementReadStore) SettlementQueries {
	return &settlementQueriesImpl{readStore: readStore}
}

func (q *settlementQueriesImpl) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error) {
	rec, err := q.readStore.BreakdownByTransactionID(ctx, transactionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, errs.Wrap(err, "failed to get settlement")
	}
	return rec, nil
}

func (q *settlementQueriesImpl) PlatformSummary(ctx context.Context, from, to time.Time) (*CommissionSummaryView, error) {
	view, err := q.readStore.PlatformSummary(ctx, from, to)
	if err != nil {
		return nil, errs.Wrap(err, "failed to aggregate platform summary")
	}
	return view, nil
}
