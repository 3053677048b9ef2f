package notify

import (
	"context"

	"tallybook/internal/logger"
)

// LogPublisher writes notices to the application log. It is used when no
// message broker is configured.
type LogPublisher struct{}

// Publish logs the notice at error level.
func (LogPublisher) Publish(_ context.Context, n Notice) error {
	logger.Named("notify").Errorw("sale requires reconciliation",
		"user_id", n.UserID,
		"sale_id", n.SaleID,
		"step", n.Step,
		"reason", n.Reason,
		"occurred_at", n.OccurredAt,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

var _ Publisher = LogPublisher{}
