package readstore

import (
	"context"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AgentReadStore struct {
	db db.DBTX
}

func NewAgentReadStore(dbtx db.DBTX) *AgentReadStore {
	return &AgentReadStore{db: dbtx}
}

// The left join pulls the recruiter's active flag in the same round trip, so
// the commission engine sees the whole override cascade context at once.
const agentQuery = `
	SELECT a.id, a.user_id, a.referral_code, a.is_active,
	       a.commission_rate::text, a.recruiter_id,
	       COALESCE(r.is_active, false)
	FROM sales_agents a
	LEFT JOIN sales_agents r ON r.id = a.recruiter_id`

func (r *AgentReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.AgentSnapshot, error) {
	return r.findOne(ctx, agentQuery+` WHERE a.id = $1`, id)
}

func (r *AgentReadStore) FindByReferralCode(ctx context.Context, code string) (*shared.AgentSnapshot, error) {
	return r.findOne(ctx, agentQuery+` WHERE a.referral_code = $1`, code)
}

func (r *AgentReadStore) findOne(ctx context.Context, query string, arg any) (*shared.AgentSnapshot, error) {
	var (
		snap     shared.AgentSnapshot
		rateText *string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.ReferralCode,
		&snap.IsActive,
		&rateText,
		&snap.RecruiterID,
		&snap.RecruiterActive,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sales agent not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sales agent", err)
	}

	if rateText != nil {
		rate, err := decimal.NewFromString(*rateText)
		if err != nil {
			return nil, infra.WrapRepoErr("corrupt commission rate", err)
		}
		snap.CommissionRate = &rate
	}

	return &snap, nil
}
