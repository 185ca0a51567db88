package repository

import (
	"context"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AgentRepository struct {
	db db.DBTX
}

func NewAgentRepository(dbtx db.DBTX) *AgentRepository {
	return &AgentRepository{db: dbtx}
}

func (r *AgentRepository) AddPendingEarnings(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	const query = `
		UPDATE sales_agents
		SET pending_earnings = pending_earnings + $2::numeric,
		    total_earned = total_earned + $2::numeric,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, agentID, amount.StringFixed(2))
	if err != nil {
		return infra.WrapRepoErr("failed to credit agent earnings", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("sales agent not found", nil, infra.KindNotFound)
	}
	return nil
}
