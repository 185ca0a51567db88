package notify

import (
	"context"
	"log/slog"

	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

// LogNotifier is the default delivery backend: it records the notification
// in the structured log. The outbox row written inside the settlement
// transaction is the durable record; swapping in a real push/email backend
// means implementing shared.Notifier, nothing else.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) shared.Notifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, kind string, payload []byte) error {
	n.logger.InfoContext(ctx, "notification dispatched",
		"user_id", userID,
		"kind", kind,
		"payload_bytes", len(payload),
	)
	return nil
}
