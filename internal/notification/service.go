package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/models"
	"github.com/formflow/formflow-api/internal/repository"
)

// DefaultRetention is how long read notifications are kept before the
// sweeper removes them.
const DefaultRetention = 48 * time.Hour

type Service interface {
	// Notify creates an unread record for one recipient. Optional channels
	// fire best-effort afterwards.
	Notify(ctx context.Context, recipientID int64, message string) (models.Notification, error)
	// NotifyAll fans out to every recipient concurrently. Each write is
	// independent: a failure for one recipient never blocks the others. The
	// successfully created records are returned; failures are logged.
	NotifyAll(ctx context.Context, recipientIDs []int64, message string) []models.Notification
	// ListFor returns the user's notifications, newest first.
	ListFor(ctx context.Context, userID int64) ([]models.Notification, error)
	// MarkRead is idempotent: marking a missing or already-read notification
	// is a silent no-op, never an error.
	MarkRead(ctx context.Context, userID, notificationID int64) error
	// Sweep deletes read notifications last touched before now-retention.
	// The cutoff is captured once so the sweep is safe to run concurrently
	// with live notify and mark-read traffic.
	Sweep(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	logger    zerolog.Logger
	notifiers []Notifier
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		repo:      repo,
		users:     users,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
	}
}

func (s *service) Notify(ctx context.Context, recipientID int64, message string) (models.Notification, error) {
	if recipientID == 0 {
		return models.Notification{}, apperr.Invalidf("recipient id is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Notification{}, apperr.Invalidf("message is required")
	}

	notif, err := s.repo.Create(ctx, recipientID, message)
	if err != nil {
		s.logger.Error().Err(err).Int64("recipient_id", recipientID).Msg("failed to persist notification")
		return models.Notification{}, err
	}
	s.fireChannels(ctx, notif)
	return notif, nil
}

func (s *service) NotifyAll(ctx context.Context, recipientIDs []int64, message string) []models.Notification {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		created []models.Notification
		failed  int
	)

	for _, recipientID := range recipientIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			notif, err := s.Notify(ctx, id, message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return
			}
			created = append(created, notif)
		}(recipientID)
	}
	wg.Wait()

	if failed > 0 {
		s.logger.Warn().
			Int("failed", failed).
			Int("delivered", len(created)).
			Msg("notification fan-out completed with failures")
	}
	return created
}

func (s *service) ListFor(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	affected, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Missing or already read: no-op keeps the operation idempotent.
		s.logger.Debug().
			Int64("notification_id", notificationID).
			Int64("user_id", userID).
			Msg("mark read had no effect")
	}
	return nil
}

func (s *service) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := time.Now().Add(-retention)
	deleted, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("swept read notifications")
	}
	return deleted, nil
}

func (s *service) fireChannels(ctx context.Context, notif models.Notification) {
	if len(s.notifiers) == 0 {
		return
	}
	recipient, err := s.users.GetByID(ctx, notif.RecipientID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("recipient_id", notif.RecipientID).Msg("cannot resolve recipient for channels")
		return
	}
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, recipient, notif); err != nil {
			logNotifyError(s.logger, err, notifierChannelName(notifier), notif)
		}
	}
}
