package response

import (
	"scanledger/internal/usecase/commands"

	"github.com/google/uuid"
)

type ScanResponse struct {
	Admissible        bool       `json:"admissible"`
	Reason            string     `json:"reason,omitempty"`
	ScanID            *uuid.UUID `json:"scanId,omitempty"`
	PointsAwarded     int32      `json:"pointsAwarded"`
	DiscountApplied   string     `json:"discountApplied"`
	ReferralConverted bool       `json:"referralConverted"`
}

func FromScanResult(r *commands.ScanResult) *ScanResponse {
	return &ScanResponse{
		Admissible:        r.Admissible,
		Reason:            r.Reason,
		ScanID:            r.ScanID,
		PointsAwarded:     r.PointsAwarded,
		DiscountApplied:   r.DiscountApplied.StringFixed(2),
		ReferralConverted: r.ReferralConverted,
	}
}

type ReferralScanResponse struct {
	ID uuid.UUID `json:"id"`
}
