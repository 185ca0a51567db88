package commands

import (
	"context"

	"scanledger/internal/domain/commission"
	"scanledger/internal/infra"
	"scanledger/internal/pkg/clock"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAgentNotFound  = errs.New("sales agent not found")
	ErrInvalidAmount  = errs.New("invalid transaction amount")
	ErrSettlementRace = errs.New("settlement conflict")
)

type SettleParams struct {
	TransactionID   uuid.UUID
	GrossAmount     decimal.Decimal
	TransactionType string
	BusinessID      uuid.UUID
	AgentID         *uuid.UUID
}

type SettleResult struct {
	Breakdown  commission.Breakdown
	IsReplayed bool
}

type SettlementCommands interface {
	SettleTransaction(ctx context.Context, params SettleParams) (*SettleResult, error)
}

type settlementCommandsImpl struct {
	uow    shared.UnitOfWork
	engine *commission.Engine
	clock  clock.Clock
}

func NewSettlementCommands(uow shared.UnitOfWork, engine *commission.Engine, clk clock.Clock) SettlementCommands {
	return &settlementCommandsImpl{uow: uow, engine: engine, clock: clk}
}

// SettleTransaction splits one gross amount and records the ledger entry.
// The transaction id is the idempotency key: a replay returns the stored
// breakdown unchanged, with no second set of writes.
func (s *settlementCommandsImpl) SettleTransaction(ctx context.Context, params SettleParams) (*SettleResult, error) {
	if params.GrossAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	now := s.clock.Now()

	var result *SettleResult
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var agent *commission.Agent
		if params.AgentID != nil {
			snap, err := tx.Reads().AgentByID(ctx, *params.AgentID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrAgentNotFound
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			agent = agentContext(snap)
		}

		breakdown, err := s.engine.Settle(params.GrossAmount, agent)
		if err != nil {
			return errs.Mark(err, ErrInvalidAmount)
		}

		inserted, err := tx.Settlements().InsertTransaction(ctx, &shared.TransactionRecord{
			ID:          params.TransactionID,
			GrossAmount: params.GrossAmount,
			Type:        params.TransactionType,
			BusinessID:  params.BusinessID,
			AgentID:     params.AgentID,
			SettledAt:   now,
		})
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !inserted {
			// Already settled. Replay what was recorded the first time, not
			// what the engine would compute today. The stored gross is
			// authoritative; the caller's amount may not match.
			txn, err := tx.Reads().TransactionByID(ctx, params.TransactionID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrSettlementRace
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			stored, err := tx.Reads().BreakdownByTransactionID(ctx, params.TransactionID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrSettlementRace
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			result = &SettleResult{Breakdown: storedBreakdown(txn.GrossAmount, stored), IsReplayed: true}
			return nil
		}

		if err := tx.Settlements().InsertBreakdown(ctx, &shared.BreakdownRecord{
			TransactionID:      params.TransactionID,
			PlatformCommission: breakdown.PlatformCommission,
			BusinessPayout:     breakdown.BusinessPayout,
			AgentID:            breakdown.AgentID,
			AgentCommission:    breakdown.AgentCommission,
			RecruiterID:        breakdown.RecruiterID,
			OverrideCommission: breakdown.OverrideCommission,
			CreatedAt:          now,
		}); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if breakdown.AgentID != nil && breakdown.AgentCommission.IsPositive() {
			if err := tx.Agents().AddPendingEarnings(ctx, *breakdown.AgentID, breakdown.AgentCommission); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		if breakdown.RecruiterID != nil && breakdown.OverrideCommission.IsPositive() {
			if err := tx.Agents().AddPendingEarnings(ctx, *breakdown.RecruiterID, breakdown.OverrideCommission); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		result = &SettleResult{Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func storedBreakdown(gross decimal.Decimal, rec *shared.BreakdownRecord) commission.Breakdown {
	return commission.Breakdown{
		Gross:              gross,
		PlatformCommission: rec.PlatformCommission,
		BusinessPayout:     rec.BusinessPayout,
		AgentID:            rec.AgentID,
		AgentCommission:    rec.AgentCommission,
		RecruiterID:        rec.RecruiterID,
		OverrideCommission: rec.OverrideCommission,
	}
}
