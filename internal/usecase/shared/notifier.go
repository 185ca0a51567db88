package shared

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers a post-settlement notification. Callers fire it
// best-effort after commit; a failure is logged, never surfaced, and never
// rolls anything back.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, payload []byte) error
}
