package qrcode

import "time"

type DenyReason string

const (
	ReasonInactive     DenyReason = "INACTIVE"
	ReasonExpired      DenyReason = "EXPIRED"
	ReasonLimitReached DenyReason = "LIMIT_REACHED"
)

// Decision is the outcome of a scan admissibility check. A denied scan
// carries exactly one reason.
type Decision struct {
	Admissible bool
	Reason     DenyReason
}

func admit() Decision {
	return Decision{Admissible: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// CanScanAt evaluates admissibility in a fixed order so the reported reason
// is deterministic: inactive, then expired, then limit. A scan limit of zero
// means unlimited, not a limit of zero scans.
func (q *QRCode) CanScanAt(now time.Time) Decision {
	if !q.active {
		return deny(ReasonInactive)
	}
	if q.expiresAt != nil && q.expiresAt.Before(now) {
		return deny(ReasonExpired)
	}
	if q.scanLimit > 0 && q.currentScans >= q.scanLimit {
		return deny(ReasonLimitReached)
	}
	return admit()
}
