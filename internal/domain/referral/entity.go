package referral

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyReferralCode = errors.New("referral code cannot be empty")
	ErrAlreadyConverted  = errors.New("referral scan already converted")
)

// Scan records one visit through a sales agent's referral QR code. The
// converted flag flips false to true exactly once, when the visitor later
// completes a qualifying signup or purchase, and never flips back.
type Scan struct {
	id           uuid.UUID
	referralCode string
	scannedAt    time.Time
	userAgent    string
	converted    bool
	convertedAt  *time.Time
}

func NewScan(id uuid.UUID, referralCode, userAgent string, scannedAt time.Time) (*Scan, error) {
	if referralCode == "" {
		return nil, ErrEmptyReferralCode
	}
	return &Scan{
		id:           id,
		referralCode: referralCode,
		scannedAt:    scannedAt,
		userAgent:    userAgent,
	}, nil
}

func Restore(id uuid.UUID, referralCode, userAgent string, scannedAt time.Time, converted bool, convertedAt *time.Time) *Scan {
	return &Scan{
		id:           id,
		referralCode: referralCode,
		scannedAt:    scannedAt,
		userAgent:    userAgent,
		converted:    converted,
		convertedAt:  convertedAt,
	}
}

func (s *Scan) MarkConverted(now time.Time) error {
	if s.converted {
		return ErrAlreadyConverted
	}
	s.converted = true
	s.convertedAt = &now
	return nil
}

func (s *Scan) ID() uuid.UUID          { return s.id }
func (s *Scan) ReferralCode() string   { return s.referralCode }
func (s *Scan) ScannedAt() time.Time   { return s.scannedAt }
func (s *Scan) UserAgent() string      { return s.userAgent }
func (s *Scan) Converted() bool        { return s.converted }
func (s *Scan) ConvertedAt() *time.Time { return s.convertedAt }
