package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/models"
)

// Notifier is an optional delivery channel fired after a notification record
// is persisted. Channels are best-effort: failures are logged, never raised,
// so one bad channel cannot block submission creation.
type Notifier interface {
	Notify(ctx context.Context, recipient models.User, notification models.Notification) error
}

func notifierChannelName(n Notifier) string {
	type named interface {
		String() string
	}
	if v, ok := n.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}

func logNotifyError(logger zerolog.Logger, err error, channel string, notif models.Notification) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Int64("notification_id", notif.ID).
		Int64("recipient_id", notif.RecipientID).
		Str("channel", channel).
		Msg("failed to deliver notification")
}
