package service

import (
	"context"
	"time"

	"whatsorders/internal/constants"

	"github.com/sirupsen/logrus"
)

// CleanupStore is the slice of the store the scheduler needs.
type CleanupStore interface {
	CleanupOldMessages(retentionDays int) error
}

// Scheduler periodically purges soft-deleted messages past the retention
// horizon. With retention disabled (<= 0) it never deletes anything.
type Scheduler struct {
	store         CleanupStore
	retentionDays int
	intervalHours int
	logger        *logrus.Logger
	stopCh        chan struct{}
}

func NewScheduler(store CleanupStore, retentionDays, intervalHours int, logger *logrus.Logger) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = constants.DefaultCleanupIntervalHours
	}
	return &Scheduler{
		store:         store,
		retentionDays: retentionDays,
		intervalHours: intervalHours,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		s.logger.Info("Retention cleanup disabled")
		return
	}

	ticker := time.NewTicker(time.Duration(s.intervalHours) * time.Hour)
	defer ticker.Stop()

	s.logger.Info("Starting cleanup scheduler")

	s.runCleanup()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) runCleanup() {
	s.logger.WithField("retentionDays", s.retentionDays).Info("Running scheduled cleanup")

	if err := s.store.CleanupOldMessages(s.retentionDays); err != nil {
		s.logger.WithError(err).Error("Failed to cleanup old messages")
	} else {
		s.logger.Info("Successfully completed cleanup")
	}
}
