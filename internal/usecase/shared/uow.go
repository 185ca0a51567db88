package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"scanledger/internal/domain/qrcode"
)

// UnitOfWork runs a function inside one database transaction. Everything a
// settlement writes commits together or not at all.
type UnitOfWork interface {
	// Within: full transaction for write operations with retry on
	// serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: direct access to command-side reads outside a transaction
	CommandReads() CommandReads
}

type Tx interface {
	QRCodes() QRCodeRepository
	Scans() ScanRepository
	Referrals() ReferralRepository
	Settlements() SettlementRepository
	Agents() AgentRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Reads() CommandReads
}

type CommandReads interface {
	QRCodeByID(ctx context.Context, id uuid.UUID) (*QRCodeSnapshot, error)
	BusinessOwnerByID(ctx context.Context, businessID uuid.UUID) (uuid.UUID, error)
	AgentByID(ctx context.Context, id uuid.UUID) (*AgentSnapshot, error)
	AgentByReferralCode(ctx context.Context, code string) (*AgentSnapshot, error)
	BreakdownByTransactionID(ctx context.Context, transactionID uuid.UUID) (*BreakdownRecord, error)
	TransactionByID(ctx context.Context, transactionID uuid.UUID) (*TransactionRecord, error)
}

type QRCodeRepository interface {
	Create(ctx context.Context, code *qrcode.QRCode) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// IncrementScanCountIfUnderLimit is the sole mutator of the scan counter.
	// It is a conditional update checked by row count: false means the limit
	// was reached, possibly by a concurrent scan that won the race.
	IncrementScanCountIfUnderLimit(ctx context.Context, id uuid.UUID) (bool, error)
}

type ScanRepository interface {
	Create(ctx context.Context, scan *ScanRecord) (uuid.UUID, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, referralCode, userAgent string, scannedAt time.Time) (uuid.UUID, error)
	// MarkConverted flips the oldest unconverted scan for the code. Returns
	// false when every scan for the code has already converted (or none
	// exists), which makes the conversion transition exactly-once.
	MarkConverted(ctx context.Context, referralCode string, at time.Time) (bool, error)
}

type SettlementRepository interface {
	// InsertTransaction returns false when the transaction id is already
	// settled; the caller replays the stored breakdown instead of writing a
	// duplicate ledger entry.
	InsertTransaction(ctx context.Context, txn *TransactionRecord) (bool, error)
	InsertBreakdown(ctx context.Context, breakdown *BreakdownRecord) error
}

type AgentRepository interface {
	AddPendingEarnings(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}
