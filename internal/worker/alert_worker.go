// Package worker hosts the background side of alert maintenance: consuming
// regeneration requests off the queue and sweeping expired alerts.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
)

// AlertWorker rebuilds materialized alerts on demand and prunes expired ones
// on a timer.
type AlertWorker struct {
	alerts        *services.AlertService
	sweepInterval time.Duration
}

func NewAlertWorker(alerts *services.AlertService, sweepInterval time.Duration) *AlertWorker {
	return &AlertWorker{alerts: alerts, sweepInterval: sweepInterval}
}

// HandleRegenerateMessage processes a single queue message. Errors propagate
// so the delivery is requeued.
func (w *AlertWorker) HandleRegenerateMessage(ctx context.Context, msg *amqp.AlertRegenerateMessage) error {
	slog.InfoContext(ctx, "Processing alert regenerate message",
		"message_id", msg.ID,
		"user_id", msg.UserID)

	if err := w.alerts.RegenerateAll(ctx, msg.UserID); err != nil {
		return fmt.Errorf("regenerate alerts for %s: %w", msg.UserID, err)
	}
	return nil
}

// RunExpirySweep deletes expired alerts on the configured interval until the
// context ends. A failed sweep is logged and retried next tick.
func (w *AlertWorker) RunExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Alert expiry sweep started", "interval", w.sweepInterval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Alert expiry sweep stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			if _, err := w.alerts.PurgeExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "Alert expiry sweep failed", "error", err)
			}
		}
	}
}
