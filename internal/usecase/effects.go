package usecase

import (
	"context"
	"log/slog"

	"github.com/kessa99/task-manager-back/internal/email"
	"github.com/kessa99/task-manager-back/internal/events"
	"github.com/kessa99/task-manager-back/internal/metrics"
)

// Notifier sends the application's emails.
type Notifier interface {
	SendInvitation(ctx context.Context, inv email.Invitation) error
	SendWelcome(ctx context.Context, to, firstName string) error
}

// notify runs send and swallows its error. Email delivery never fails the
// operation that triggered it.
func notify(ctx context.Context, logger *slog.Logger, kind string, send func() error) bool {
	err := send()
	metrics.NotificationsTotal.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	if err != nil {
		logger.WarnContext(ctx, "notification failed", "kind", kind, "error", err)
		return false
	}
	return true
}

// publish hands e to the broker after the state change is committed.
// Failures are logged only.
func publish(ctx context.Context, logger *slog.Logger, p events.Publisher, e events.Event) {
	err := p.Publish(ctx, e)
	metrics.EventsPublishedTotal.WithLabelValues(e.Type, metrics.Outcome(err)).Inc()
	if err != nil {
		logger.WarnContext(ctx, "publish event failed", "type", e.Type, "key", e.Key, "error", err)
	}
}
