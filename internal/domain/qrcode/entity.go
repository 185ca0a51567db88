package qrcode

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCodeType        = errors.New("invalid qr code type")
	ErrMissingDiscountPercent = errors.New("discount code requires a discount percentage")
	ErrInvalidDiscountPercent = errors.New("discount percentage must be between 0 and 100")
	ErrMissingPointsValue     = errors.New("loyalty code requires a points value")
	ErrNegativePointsValue    = errors.New("points value cannot be negative")
	ErrNegativeScanLimit      = errors.New("scan limit cannot be negative")
)

type CodeType string

const (
	TypeDiscount CodeType = "discount"
	TypeLoyalty  CodeType = "loyalty"
	TypeInfo     CodeType = "info"
)

func (t CodeType) IsValid() bool {
	switch t {
	case TypeDiscount, TypeLoyalty, TypeInfo:
		return true
	default:
		return false
	}
}

func NewCodeType(s string) (CodeType, error) {
	t := CodeType(s)
	if !t.IsValid() {
		return "", ErrInvalidCodeType
	}
	return t, nil
}

// Config carries the owner-supplied settings for a new code. Which value
// field is required depends on the code type.
type Config struct {
	DiscountPercent *float64
	PointsValue     *int32
	ExpiresAt       *time.Time
	ScanLimit       int32
}

// QRCode is one printed or displayed redeemable code belonging to one
// business. Codes are deactivated rather than deleted so scan history stays
// intact.
type QRCode struct {
	id              uuid.UUID
	businessID      uuid.UUID
	codeType        CodeType
	discountPercent *float64
	pointsValue     *int32
	active          bool
	expiresAt       *time.Time
	scanLimit       int32
	currentScans    int32
}

// New validates the config against the code type and returns an active code
// with a zero scan counter. Exactly one of the value fields survives,
// selected by the type.
func New(id, businessID uuid.UUID, codeType CodeType, cfg Config) (*QRCode, error) {
	if !codeType.IsValid() {
		return nil, ErrInvalidCodeType
	}
	if cfg.ScanLimit < 0 {
		return nil, ErrNegativeScanLimit
	}

	q := &QRCode{
		id:         id,
		businessID: businessID,
		codeType:   codeType,
		active:     true,
		expiresAt:  cfg.ExpiresAt,
		scanLimit:  cfg.ScanLimit,
	}

	switch codeType {
	case TypeDiscount:
		if cfg.DiscountPercent == nil {
			return nil, ErrMissingDiscountPercent
		}
		if *cfg.DiscountPercent < 0 || *cfg.DiscountPercent > 100 {
			return nil, ErrInvalidDiscountPercent
		}
		pct := *cfg.DiscountPercent
		q.discountPercent = &pct
	case TypeLoyalty:
		if cfg.PointsValue == nil {
			return nil, ErrMissingPointsValue
		}
		if *cfg.PointsValue < 0 {
			return nil, ErrNegativePointsValue
		}
		pts := *cfg.PointsValue
		q.pointsValue = &pts
	case TypeInfo:
		// info codes carry no reward value
	}

	return q, nil
}

// Restore rehydrates a code from persistence without re-running creation
// validation.
func Restore(
	id, businessID uuid.UUID,
	codeType CodeType,
	discountPercent *float64,
	pointsValue *int32,
	active bool,
	expiresAt *time.Time,
	scanLimit, currentScans int32,
) *QRCode {
	return &QRCode{
		id:              id,
		businessID:      businessID,
		codeType:        codeType,
		discountPercent: discountPercent,
		pointsValue:     pointsValue,
		active:          active,
		expiresAt:       expiresAt,
		scanLimit:       scanLimit,
		currentScans:    currentScans,
	}
}

func (q *QRCode) Deactivate() { q.active = false }
func (q *QRCode) Reactivate() { q.active = true }

func (q *QRCode) ID() uuid.UUID             { return q.id }
func (q *QRCode) BusinessID() uuid.UUID     { return q.businessID }
func (q *QRCode) Type() CodeType            { return q.codeType }
func (q *QRCode) DiscountPercent() *float64 { return q.discountPercent }
func (q *QRCode) PointsValue() *int32       { return q.pointsValue }
func (q *QRCode) IsActive() bool            { return q.active }
func (q *QRCode) ExpiresAt() *time.Time     { return q.expiresAt }
func (q *QRCode) ScanLimit() int32          { return q.scanLimit }
func (q *QRCode) CurrentScans() int32       { return q.currentScans }
