package request

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProcessScanRequest struct {
	QRCodeID     uuid.UUID `json:"qr_code_id" binding:"required"`
	OrderTotal   *string   `json:"order_total,omitempty"`
	Location     *string   `json:"location,omitempty"`
	ReferralCode *string   `json:"referral_code,omitempty"`
}

// ParseOrderTotal parses the optional order total. Amounts travel as decimal
// strings; a blank string counts as absent.
func (r ProcessScanRequest) ParseOrderTotal() (*decimal.Decimal, error) {
	if r.OrderTotal == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*r.OrderTotal)
	if trimmed == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r ProcessScanRequest) GetReferralCode() *string {
	if r.ReferralCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.ReferralCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type RecordReferralScanRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}
