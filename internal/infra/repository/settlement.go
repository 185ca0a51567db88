package repository

import (
	"context"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"
	"scanledger/internal/usecase/shared"
)

type SettlementRepository struct {
	db db.DBTX
}

func NewSettlementRepository(dbtx db.DBTX) *SettlementRepository {
	return &SettlementRepository{db: dbtx}
}

// InsertTransaction claims the transaction id. ON CONFLICT DO NOTHING plus
// the row count is the idempotency check: a replayed settlement inserts
// nothing and the caller reads the stored breakdown back instead.
func (r *SettlementRepository) InsertTransaction(ctx context.Context, txn *shared.TransactionRecord) (bool, error) {
	const query = `
		INSERT INTO transactions (id, gross_amount, txn_type, business_id, agent_id, settled_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		txn.ID,
		txn.GrossAmount.StringFixed(2),
		txn.Type,
		txn.BusinessID,
		txn.AgentID,
		txn.SettledAt,
	)
	if err != nil {
		if infra.IsForeignKeyViolation(err) {
			return false, infra.WrapRepoErr("business or agent does not exist", err, infra.KindForeignKeyViolated)
		}
		return false, infra.WrapRepoErr("failed to insert transaction", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SettlementRepository) InsertBreakdown(ctx context.Context, b *shared.BreakdownRecord) error {
	const query = `
		INSERT INTO commission_breakdowns (
			transaction_id, platform_commission, business_payout,
			agent_id, agent_commission, recruiter_id, override_commission, created_at
		) VALUES ($1, $2::numeric, $3::numeric, $4, $5::numeric, $6, $7::numeric, $8)`

	_, err := r.db.Exec(ctx, query,
		b.TransactionID,
		b.PlatformCommission.StringFixed(2),
		b.BusinessPayout.StringFixed(2),
		b.AgentID,
		b.AgentCommission.StringFixed(2),
		b.RecruiterID,
		b.OverrideCommission.StringFixed(2),
		b.CreatedAt,
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("breakdown already recorded", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert commission breakdown", err)
	}
	return nil
}
