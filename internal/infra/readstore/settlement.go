package readstore

import (
	"context"
	"time"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"
	"scanledger/internal/usecase/queries"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SettlementReadStore struct {
	db db.DBTX
}

func NewSettlementReadStore(dbtx db.DBTX) *SettlementReadStore {
	return &SettlementReadStore{db: dbtx}
}

func (r *SettlementReadStore) BreakdownByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error) {
	const query = `
		SELECT transaction_id, platform_commission::text, business_payout::text,
		       agent_id, agent_commission::text, recruiter_id,
		       override_commission::text, created_at
		FROM commission_breakdowns
		WHERE transaction_id = $1`

	var (
		rec                              shared.BreakdownRecord
		platform, payout, agent, override string
	)
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&rec.TransactionID,
		&platform,
		&payout,
		&rec.AgentID,
		&agent,
		&rec.RecruiterID,
		&override,
		&rec.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("commission breakdown not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find commission breakdown", err)
	}

	if rec.PlatformCommission, err = decimal.NewFromString(platform); err != nil {
		return nil, infra.WrapRepoErr("corrupt platform commission", err)
	}
	if rec.BusinessPayout, err = decimal.NewFromString(payout); err != nil {
		return nil, infra.WrapRepoErr("corrupt business payout", err)
	}
	if rec.AgentCommission, err = decimal.NewFromString(agent); err != nil {
		return nil, infra.WrapRepoErr("corrupt agent commission", err)
	}
	if rec.OverrideCommission, err = decimal.NewFromString(override); err != nil {
		return nil, infra.WrapRepoErr("corrupt override commission", err)
	}

	return &rec, nil
}

func (r *SettlementReadStore) TransactionByID(ctx context.Context, transactionID uuid.UUID) (*shared.TransactionRecord, error) {
	const query = `
		SELECT id, gross_amount::text, txn_type, business_id, agent_id, settled_at
		FROM transactions
		WHERE id = $1`

	var (
		rec   shared.TransactionRecord
		gross string
	)
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&rec.ID,
		&gross,
		&rec.Type,
		&rec.BusinessID,
		&rec.AgentID,
		&rec.SettledAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("transaction not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find transaction", err)
	}

	if rec.GrossAmount, err = decimal.NewFromString(gross); err != nil {
		return nil, infra.WrapRepoErr("corrupt gross amount", err)
	}

	return &rec, nil
}

// PlatformSummary aggregates settled commissions over a period, mirroring
// the reporting the admin dashboard reads.
func (r *SettlementReadStore) PlatformSummary(ctx context.Context, from, to time.Time) (*queries.CommissionSummaryView, error) {
	const query = `
		SELECT COUNT(*),
		       COALESCE(SUM(t.gross_amount), 0)::text,
		       COALESCE(SUM(b.platform_commission), 0)::text,
		       COALESCE(SUM(b.agent_commission), 0)::text,
		       COALESCE(SUM(b.override_commission), 0)::text
		FROM commission_breakdowns b
		JOIN transactions t ON t.id = b.transaction_id
		WHERE b.created_at >= $1 AND b.created_at < $2`

	var (
		view                                     queries.CommissionSummaryView
		gross, platform, agentSum, overrideSum string
	)
	err := r.db.QueryRow(ctx, query, from, to).Scan(
		&view.TransactionCount,
		&gross,
		&platform,
		&agentSum,
		&overrideSum,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate commission summary", err)
	}

	view.From = from
	view.To = to
	if view.GrossTotal, err = decimal.NewFromString(gross); err != nil {
		return nil, infra.WrapRepoErr("corrupt gross total", err)
	}
	if view.PlatformTotal, err = decimal.NewFromString(platform); err != nil {
		return nil, infra.WrapRepoErr("corrupt platform total", err)
	}
	if view.AgentTotal, err = decimal.NewFromString(agentSum); err != nil {
		return nil, infra.WrapRepoErr("corrupt agent total", err)
	}
	if view.OverrideTotal, err = decimal.NewFromString(overrideSum); err != nil {
		return nil, infra.WrapRepoErr("corrupt override total", err)
	}

	return &view, nil
}
