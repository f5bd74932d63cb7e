package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes read notifications older than the retention
// window. It is a cancellable background task with an explicit start/stop
// lifecycle rather than an ambient timer.
type Sweeper struct {
	service   Service
	interval  time.Duration
	retention time.Duration
	logger    zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSweeper(service Service, interval, retention time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Sweeper{
		service:   service,
		interval:  interval,
		retention: retention,
		logger:    logger.With().Str("component", "notification_sweeper").Logger(),
	}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *Sweeper) Start() {
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info().
			Dur("interval", s.interval).
			Dur("retention", s.retention).
			Msg("notification sweeper started")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.logger.Info().Msg("notification sweeper stopped")
}

func (s *Sweeper) runOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := s.service.Sweep(sweepCtx, s.retention); err != nil {
		s.logger.Error().Err(err).Msg("notification sweep failed")
	}
}
