package commands

import (
	"context"

	"scanledger/internal/domain/referral"
	"scanledger/internal/pkg/clock"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type RecordReferralScanParams struct {
	ReferralCode string
	UserAgent    string
}

type ReferralCommands interface {
	RecordScan(ctx context.Context, params RecordReferralScanParams) (uuid.UUID, error)
}

type referralCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewReferralCommands(uow shared.UnitOfWork, clk clock.Clock) ReferralCommands {
	return &referralCommandsImpl{uow: uow, clock: clk}
}

// RecordScan logs a visit through an agent's referral link. The scan starts
// unconverted; a later signup scan flips it and pays the bonus.
func (c *referralCommandsImpl) RecordScan(ctx context.Context, params RecordReferralScanParams) (uuid.UUID, error) {
	scan, err := referral.NewScan(uuid.New(), params.ReferralCode, params.UserAgent, c.clock.Now())
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	var id uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.Referrals().Create(ctx, scan.ReferralCode(), scan.UserAgent(), scan.ScannedAt())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
