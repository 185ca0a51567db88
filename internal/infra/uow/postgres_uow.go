package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"scanledger/internal/infra/db"
	"scanledger/internal/infra/readstore"
	"scanledger/internal/infra/repository"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes; the
// scan-limit race is settled by the conditional increment, not by isolation
// level.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	qrCodeRepo       shared.QRCodeRepository
	scanRepo         shared.ScanRepository
	referralRepo     shared.ReferralRepository
	settlementRepo   shared.SettlementRepository
	agentRepo        shared.AgentRepository
	notificationRepo shared.NotificationRepository
	userRepo         shared.UserRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) QRCodes() shared.QRCodeRepository {
	if t.qrCodeRepo == nil {
		t.qrCodeRepo = repository.NewQRCodeRepository(t.dbtx)
	}
	return t.qrCodeRepo
}

func (t *pgTx) Scans() shared.ScanRepository {
	if t.scanRepo == nil {
		t.scanRepo = repository.NewScanRepository(t.dbtx)
	}
	return t.scanRepo
}

func (t *pgTx) Referrals() shared.ReferralRepository {
	if t.referralRepo == nil {
		t.referralRepo = repository.NewReferralRepository(t.dbtx)
	}
	return t.referralRepo
}

func (t *pgTx) Settlements() shared.SettlementRepository {
	if t.settlementRepo == nil {
		t.settlementRepo = repository.NewSettlementRepository(t.dbtx)
	}
	return t.settlementRepo
}

func (t *pgTx) Agents() shared.AgentRepository {
	if t.agentRepo == nil {
		t.agentRepo = repository.NewAgentRepository(t.dbtx)
	}
	return t.agentRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.dbtx)
	}
	return t.notificationRepo
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository(t.dbtx)
	}
	return t.userRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	qrCodeStore     *readstore.QRCodeReadStore
	businessStore   *readstore.BusinessReadStore
	agentStore      *readstore.AgentReadStore
	settlementStore *readstore.SettlementReadStore
}

func (r *commandReads) QRCodeByID(ctx context.Context, id uuid.UUID) (*shared.QRCodeSnapshot, error) {
	if r.qrCodeStore == nil {
		r.qrCodeStore = readstore.NewQRCodeReadStore(r.dbtx)
	}
	return r.qrCodeStore.FindByID(ctx, id)
}

func (r *commandReads) BusinessOwnerByID(ctx context.Context, businessID uuid.UUID) (uuid.UUID, error) {
	if r.businessStore == nil {
		r.businessStore = readstore.NewBusinessReadStore(r.dbtx)
	}
	return r.businessStore.OwnerByID(ctx, businessID)
}

func (r *commandReads) AgentByID(ctx context.Context, id uuid.UUID) (*shared.AgentSnapshot, error) {
	if r.agentStore == nil {
		r.agentStore = readstore.NewAgentReadStore(r.dbtx)
	}
	return r.agentStore.FindByID(ctx, id)
}

func (r *commandReads) AgentByReferralCode(ctx context.Context, code string) (*shared.AgentSnapshot, error) {
	if r.agentStore == nil {
		r.agentStore = readstore.NewAgentReadStore(r.dbtx)
	}
	return r.agentStore.FindByReferralCode(ctx, code)
}

func (r *commandReads) BreakdownByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error) {
	if r.settlementStore == nil {
		r.settlementStore = readstore.NewSettlementReadStore(r.dbtx)
	}
	return r.settlementStore.BreakdownByTransactionID(ctx, transactionID)
}

func (r *commandReads) TransactionByID(ctx context.Context, transactionID uuid.UUID) (*shared.TransactionRecord, error) {
	if r.settlementStore == nil {
		r.settlementStore = readstore.NewSettlementReadStore(r.dbtx)
	}
	return r.settlementStore.TransactionByID(ctx, transactionID)
}
