package service

import (
	"context"

	"whatsorders/internal/models"
	"whatsorders/internal/notify"

	"github.com/sirupsen/logrus"
)

// MessageService covers the read and soft-delete boundaries.
type MessageService struct {
	db       Store
	notifier Notifier
	logger   *logrus.Logger
}

func NewMessageService(db Store, notifier Notifier, logger *logrus.Logger) *MessageService {
	return &MessageService{db: db, notifier: notifier, logger: logger}
}

// GetMessage returns a single message regardless of deletion state.
func (s *MessageService) GetMessage(ctx context.Context, externalID string) (*models.Message, error) {
	return s.db.GetMessage(ctx, externalID)
}

// ListMessages returns a chat's messages ordered by occurred-at.
// Soft-deleted messages are excluded unless includeDeleted is set.
func (s *MessageService) ListMessages(ctx context.Context, chatKey string, includeDeleted bool) ([]*models.Message, error) {
	return s.db.ListMessages(ctx, chatKey, includeDeleted)
}

// SoftDeleteMessage marks a message deleted. Idempotent; all fields
// including both company assignments survive.
func (s *MessageService) SoftDeleteMessage(ctx context.Context, externalID string) error {
	if err := s.db.SoftDeleteMessage(ctx, externalID); err != nil {
		return err
	}

	s.logger.WithField("external_id", externalID).Info("Message soft-deleted")

	if s.notifier != nil {
		s.notifier.Publish(notify.Event{
			Type:       notify.EventMessageDeleted,
			ExternalID: externalID,
		})
	}
	return nil
}
