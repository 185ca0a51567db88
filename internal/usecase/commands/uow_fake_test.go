//go:build unit

package commands_test

import (
	"context"
	"time"

	"scanledger/internal/domain/qrcode"
	"scanledger/internal/infra"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory unit of work. Writes are collected on the tx; a callback error
// flips rolledBack so tests can assert nothing would have been persisted.
type fakeUoW struct {
	tx         *fakeTx
	rolledBack bool
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{tx: newFakeTx()}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	err := fn(ctx, u.tx)
	if err != nil {
		u.rolledBack = true
	}
	return err
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return u.tx.reads
}

type fakeTx struct {
	qrCodes       *fakeQRCodeRepo
	scans         *fakeScanRepo
	referrals     *fakeReferralRepo
	settlements   *fakeSettlementRepo
	agents        *fakeAgentRepo
	notifications *fakeNotificationRepo
	users         *fakeUserRepo
	reads         *fakeReads
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		qrCodes:       &fakeQRCodeRepo{incrementOK: true},
		scans:         &fakeScanRepo{},
		referrals:     &fakeReferralRepo{},
		settlements:   &fakeSettlementRepo{},
		agents:        &fakeAgentRepo{credited: map[uuid.UUID]decimal.Decimal{}},
		notifications: &fakeNotificationRepo{},
		users:         &fakeUserRepo{},
		reads: &fakeReads{
			qrCodes:      map[uuid.UUID]*shared.QRCodeSnapshot{},
			owners:       map[uuid.UUID]uuid.UUID{},
			agentsByID:   map[uuid.UUID]*shared.AgentSnapshot{},
			agentsByCode: map[string]*shared.AgentSnapshot{},
			breakdowns:   map[uuid.UUID]*shared.BreakdownRecord{},
			transactions: map[uuid.UUID]*shared.TransactionRecord{},
		},
	}
}

func (t *fakeTx) QRCodes() shared.QRCodeRepository { return t.qrCodes }
func (t *fakeTx) Scans() shared.ScanRepository { return t.scans }
func (t *fakeTx) Referrals() shared.ReferralRepository { return t.referrals }
func (t *fakeTx) Settlements() shared.SettlementRepository { return t.settlements }
func (t *fakeTx) Agents() shared.AgentRepository { return t.agents }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) Users() shared.UserRepository { return t.users }
func (t *fakeTx) Reads() shared.CommandReads { return t.reads }

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type fakeReads struct {
	qrCodes      map[uuid.UUID]*shared.QRCodeSnapshot
	owners       map[uuid.UUID]uuid.UUID
	agentsByID   map[uuid.UUID]*shared.AgentSnapshot
	agentsByCode map[string]*shared.AgentSnapshot
	breakdowns   map[uuid.UUID]*shared.BreakdownRecord
	transactions map[uuid.UUID]*shared.TransactionRecord
}

func (r *fakeReads) QRCodeByID(_ context.Context, id uuid.UUID) (*shared.QRCodeSnapshot, error) {
	snap, ok := r.qrCodes[id]
	if !ok {
		return nil, notFound("qr code not found")
	}
	return snap, nil
}

func (r *fakeReads) BusinessOwnerByID(_ context.Context, businessID uuid.UUID) (uuid.UUID, error) {
	owner, ok := r.owners[businessID]
	if !ok {
		return uuid.Nil, notFound("business not found")
	}
	return owner, nil
}

func (r *fakeReads) AgentByID(_ context.Context, id uuid.UUID) (*shared.AgentSnapshot, error) {
	snap, ok := r.agentsByID[id]
	if !ok {
		return nil, notFound("agent not found")
	}
	return snap, nil
}

func (r *fakeReads) AgentByReferralCode(_ context.Context, code string) (*shared.AgentSnapshot, error) {
	snap, ok := r.agentsByCode[code]
	if !ok {
		return nil, notFound("agent not found")
	}
	return snap, nil
}

func (r *fakeReads) BreakdownByTransactionID(_ context.Context, transactionID uuid.UUID) (*shared.BreakdownRecord, error) {
	rec, ok := r.breakdowns[transactionID]
	if !ok {
		return nil, notFound("breakdown not found")
	}
	return rec, nil
}

func (r *fakeReads) TransactionByID(_ context.Context, transactionID uuid.UUID) (*shared.TransactionRecord, error) {
	rec, ok := r.transactions[transactionID]
	if !ok {
		return nil, notFound("transaction not found")
	}
	return rec, nil
}

type fakeQRCodeRepo struct {
	created     []uuid.UUID
	activeSet   map[uuid.UUID]bool
	incremented []uuid.UUID
	incrementOK bool
}

func (r *fakeQRCodeRepo) Create(_ context.Context, code *qrcode.QRCode) error {
	r.created = append(r.created, code.ID())
	return nil
}

func (r *fakeQRCodeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if r.activeSet == nil {
		r.activeSet = map[uuid.UUID]bool{}
	}
	r.activeSet[id] = active
	return nil
}

func (r *fakeQRCodeRepo) IncrementScanCountIfUnderLimit(_ context.Context, id uuid.UUID) (bool, error) {
	r.incremented = append(r.incremented, id)
	return r.incrementOK, nil
}

type fakeScanRepo struct {
	records []*shared.ScanRecord
}

func (r *fakeScanRepo) Create(_ context.Context, scan *shared.ScanRecord) (uuid.UUID, error) {
	r.records = append(r.records, scan)
	return uuid.New(), nil
}

type fakeReferralRepo struct {
	created      []string
	convertedFor []string
	convertOK    bool
}

func (r *fakeReferralRepo) Create(_ context.Context, referralCode, _ string, _ time.Time) (uuid.UUID, error) {
	r.created = append(r.created, referralCode)
	return uuid.New(), nil
}

func (r *fakeReferralRepo) MarkConverted(_ context.Context, referralCode string, _ time.Time) (bool, error) {
	r.convertedFor = append(r.convertedFor, referralCode)
	return r.convertOK, nil
}

type fakeSettlementRepo struct {
	transactions []*shared.TransactionRecord
	breakdowns   []*shared.BreakdownRecord
	duplicate    bool
}

func (r *fakeSettlementRepo) InsertTransaction(_ context.Context, txn *shared.TransactionRecord) (bool, error) {
	if r.duplicate {
		return false, nil
	}
	r.transactions = append(r.transactions, txn)
	return true, nil
}

func (r *fakeSettlementRepo) InsertBreakdown(_ context.Context, breakdown *shared.BreakdownRecord) error {
	r.breakdowns = append(r.breakdowns, breakdown)
	return nil
}

type fakeAgentRepo struct {
	credited map[uuid.UUID]decimal.Decimal
}

func (r *fakeAgentRepo) AddPendingEarnings(_ context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	r.credited[agentID] = r.credited[agentID].Add(amount)
	return nil
}

type notificationJob struct {
	Kind  string
	Topic string
}

type fakeNotificationRepo struct {
	jobs []notificationJob
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, _ []byte, _ time.Time) error {
	r.jobs = append(r.jobs, notificationJob{Kind: kind, Topic: topic})
	return nil
}

type fakeUserRepo struct {
	lastLogins []uuid.UUID
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	r.lastLogins = append(r.lastLogins, userID)
	return nil
}

// Channel-backed notifier so tests can wait for the post-commit goroutine.
type fakeNotifier struct {
	delivered chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: make(chan string, 1)}
}

func (n *fakeNotifier) Notify(_ context.Context, _ uuid.UUID, kind string, _ []byte) error {
	n.delivered <- kind
	return nil
}
