package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/congo-pay/wallet_ledger/internal/money"
)

const (
	KindDepositCompleted  = "deposit.completed"
	KindTransferCompleted = "transfer.completed"
)

// Event describes a committed ledger movement.
type Event struct {
	Kind         string       `json:"kind"`
	WalletID     int64        `json:"wallet_id,omitempty"`
	SenderID     int64        `json:"sender_id,omitempty"`
	ReceiverID   int64        `json:"receiver_id,omitempty"`
	Amount       money.Amount `json:"amount"`
	OperationIDs []int64      `json:"operation_ids"`
	OccurredAt   time.Time    `json:"occurred_at"`
}

// Key groups events of one wallet on the same partition.
func (e Event) Key() int64 {
	if e.SenderID != 0 {
		return e.SenderID
	}
	return e.WalletID
}

// Notifier delivers ledger events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// LoggerNotifier writes events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the event to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, event Event) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", event.Kind),
		slog.Int64("wallet_id", event.WalletID),
		slog.Int64("sender_id", event.SenderID),
		slog.Int64("receiver_id", event.ReceiverID),
		slog.String("amount", event.Amount.String()),
		slog.Any("operation_ids", event.OperationIDs),
	)
	return nil
}

// Fanout sends every event to all notifiers and joins their errors.
type Fanout []Notifier

func (f Fanout) Send(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
