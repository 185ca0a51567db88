package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"scanledger/internal/domain/commission"
	"scanledger/internal/domain/qrcode"
	"scanledger/internal/infra"
	"scanledger/internal/pkg/clock"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrQRCodeNotFound          = errs.New("qr code not found")
	ErrDatabaseOperationFailed = errs.New("database operation failed")

	// Raised inside the transaction when the conditional increment matches no
	// row: another scan took the last slot between our read and our write.
	// The whole unit of work rolls back and the caller sees LIMIT_REACHED,
	// indistinguishable from having checked after the limit was hit.
	errLostScanRace = errs.New("lost scan-limit race")
)

type ScanParams struct {
	QRCodeID     uuid.UUID
	CustomerID   *uuid.UUID
	OrderTotal   *decimal.Decimal
	Location     *string
	ReferralCode *string
}

type ScanResult struct {
	Admissible        bool
	Reason            string
	ScanID            *uuid.UUID
	PointsAwarded     int32
	DiscountApplied   decimal.Decimal
	ReferralConverted bool
}

type ScanCommands interface {
	ProcessScan(ctx context.Context, params ScanParams) (*ScanResult, error)
}

type scanCommandsImpl struct {
	uow         shared.UnitOfWork
	engine      *commission.Engine
	signupBonus decimal.Decimal
	notifier    shared.Notifier
	clock       clock.Clock
}

func NewScanCommands(
	uow shared.UnitOfWork,
	engine *commission.Engine,
	signupBonus decimal.Decimal,
	notifier shared.Notifier,
	clk clock.Clock,
) ScanCommands {
	return &scanCommandsImpl{
		uow:         uow,
		engine:      engine,
		signupBonus: signupBonus,
		notifier:    notifier,
		clock:       clk,
	}
}

// ProcessScan runs the whole scan settlement as one unit of work: validate,
// compute the reward, persist the scan, take the scan-counter slot, convert
// a pending referral if one applies. An inadmissible scan performs no writes.
func (s *scanCommandsImpl) ProcessScan(ctx context.Context, params ScanParams) (*ScanResult, error) {
	now := s.clock.Now()

	var (
		result      *ScanResult
		notifyUser  *uuid.UUID
		notifyBytes []byte
	)

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().QRCodeByID(ctx, params.QRCodeID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrQRCodeNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		code := restoreQRCode(snap)
		if decision := code.CanScanAt(now); !decision.Admissible {
			result = deniedScan(decision.Reason)
			return nil
		}

		reward := qrcode.CalculateReward(code, params.OrderTotal)

		scanID, err := tx.Scans().Create(ctx, &shared.ScanRecord{
			QRCodeID:        code.ID(),
			CustomerID:      params.CustomerID,
			ScannedAt:       now,
			Location:        params.Location,
			PointsAwarded:   reward.Points,
			DiscountApplied: reward.Discount,
		})
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// The scan insert and this increment commit together or not at all.
		incremented, err := tx.QRCodes().IncrementScanCountIfUnderLimit(ctx, code.ID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !incremented {
			return errLostScanRace
		}

		converted := false
		if params.ReferralCode != nil {
			converted, err = s.convertReferral(ctx, tx, *params.ReferralCode, now)
			if err != nil {
				return err
			}
		}

		result = &ScanResult{
			Admissible:        true,
			ScanID:            &scanID,
			PointsAwarded:     reward.Points,
			DiscountApplied:   reward.Discount,
			ReferralConverted: converted,
		}

		if params.CustomerID != nil {
			payload, err := json.Marshal(map[string]any{
				"scan_id":          scanID,
				"qr_code_id":       code.ID(),
				"points_awarded":   reward.Points,
				"discount_applied": reward.Discount.StringFixed(2),
				"type":             "qr_scan_completed",
			})
			if err != nil {
				return errs.Wrap(err, "failed to encode notification payload")
			}
			if err := tx.Notifications().CreateJob(ctx, "push", "qr_scan_completed", payload, now); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			notifyUser = params.CustomerID
			notifyBytes = payload
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errLostScanRace) {
			return deniedScan(qrcode.ReasonLimitReached), nil
		}
		return nil, err
	}

	// Fire-and-forget: a notification failure never unwinds the committed
	// settlement.
	if notifyUser != nil {
		s.dispatchNotification(*notifyUser, "qr_scan_completed", notifyBytes)
	}

	return result, nil
}

// convertReferral marks the visitor's pending referral scan converted and
// credits the referring agent's signup bonus commission. Exactly-once: the
// conditional update matches at most one unconverted row per code.
func (s *scanCommandsImpl) convertReferral(ctx context.Context, tx shared.Tx, referralCode string, now time.Time) (bool, error) {
	converted, err := tx.Referrals().MarkConverted(ctx, referralCode, now)
	if err != nil {
		return false, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !converted {
		return false, nil
	}

	agent, err := tx.Reads().AgentByReferralCode(ctx, referralCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// Stale code with no live agent: keep the conversion, skip the bonus.
			return true, nil
		}
		return false, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	breakdown, err := s.engine.Settle(s.signupBonus, agentContext(agent))
	if err != nil {
		return false, errs.Wrap(err, "failed to compute signup bonus commission")
	}

	if breakdown.AgentID != nil && breakdown.AgentCommission.IsPositive() {
		if err := tx.Agents().AddPendingEarnings(ctx, *breakdown.AgentID, breakdown.AgentCommission); err != nil {
			return false, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}
	if breakdown.RecruiterID != nil && breakdown.OverrideCommission.IsPositive() {
		if err := tx.Agents().AddPendingEarnings(ctx, *breakdown.RecruiterID, breakdown.OverrideCommission); err != nil {
			return false, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	return true, nil
}

func (s *scanCommandsImpl) dispatchNotification(userID uuid.UUID, kind string, payload []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, userID, kind, payload); err != nil {
			slog.Warn("notification delivery failed", "user_id", userID, "kind", kind, "error", err.Error())
		}
	}()
}

func deniedScan(reason qrcode.DenyReason) *ScanResult {
	return &ScanResult{
		Admissible:      false,
		Reason:          string(reason),
		DiscountApplied: decimal.Zero,
	}
}

func restoreQRCode(snap *shared.QRCodeSnapshot) *qrcode.QRCode {
	return qrcode.Restore(
		snap.ID,
		snap.BusinessID,
		qrcode.CodeType(snap.CodeType),
		snap.DiscountPercent,
		snap.PointsValue,
		snap.IsActive,
		snap.ExpiresAt,
		snap.ScanLimit,
		snap.CurrentScans,
	)
}

func agentContext(snap *shared.AgentSnapshot) *commission.Agent {
	return &commission.Agent{
		ID:              snap.ID,
		Active:          snap.IsActive,
		Rate:            snap.CommissionRate,
		RecruiterID:     snap.RecruiterID,
		RecruiterActive: snap.RecruiterActive,
	}
}
