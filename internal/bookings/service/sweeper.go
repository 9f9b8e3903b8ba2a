package service

import (
	"context"
	"time"

	"mentorhub/pkg/logger"
)

// CompletionSweeper periodically promotes confirmed bookings whose end
// time has passed to completed.
type CompletionSweeper struct {
	service  BookingService
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewCompletionSweeper(service BookingService, interval time.Duration, log *logger.Logger) *CompletionSweeper {
	sweeper := &CompletionSweeper{
		service:  service,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	go sweeper.run()

	return sweeper
}

func (s *CompletionSweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Completion sweeper started", "interval", s.interval)

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.service.CompleteElapsed(ctx); err != nil {
				s.log.Error("Completion sweep iteration failed", "error", err)
			}
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *CompletionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.log.Info("Completion sweeper stopped")
}
