package service

import (
	"context"
	"fmt"

	"whatsorders/internal/errors"
	"whatsorders/internal/models"
	"whatsorders/internal/notify"

	"github.com/sirupsen/logrus"
)

// AssignmentService is the manual assignment boundary. Assignments made
// here are sticky: the store's write guard keeps automatic resolution
// from ever overwriting them. Both operations work on soft-deleted
// messages so operators can correct the record for audit purposes.
type AssignmentService struct {
	db       Store
	notifier Notifier
	logger   *logrus.Logger
}

func NewAssignmentService(db Store, notifier Notifier, logger *logrus.Logger) *AssignmentService {
	return &AssignmentService{db: db, notifier: notifier, logger: logger}
}

// AssignCompany sets the manual company for a message.
func (s *AssignmentService) AssignCompany(ctx context.Context, externalID string, companyID int64) (*models.Message, error) {
	if companyID <= 0 {
		return nil, errors.NewValidationError("companyId", fmt.Sprintf("%d", companyID),
			"company id must be positive")
	}

	msg, err := s.db.SetManualCompany(ctx, externalID, &companyID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"external_id": externalID,
		"company_id":  companyID,
	}).Info("Manual company assignment set")

	if s.notifier != nil {
		s.notifier.Publish(notify.Event{
			Type:       notify.EventCompanyAssigned,
			ExternalID: externalID,
			CompanyID:  &companyID,
		})
	}

	return msg, nil
}

// ClearAssignment removes a manual override. The previously inferred
// company, if any, becomes effective again; no re-resolution is
// triggered.
func (s *AssignmentService) ClearAssignment(ctx context.Context, externalID string) (*models.Message, error) {
	msg, err := s.db.SetManualCompany(ctx, externalID, nil)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("external_id", externalID).Info("Manual company assignment cleared")

	if s.notifier != nil {
		s.notifier.Publish(notify.Event{
			Type:       notify.EventAssignmentCleared,
			ExternalID: externalID,
			CompanyID:  msg.EffectiveCompanyID(),
		})
	}

	return msg, nil
}
