package service

import (
	"context"
	"time"

	"whatsorders/internal/models"
	"whatsorders/internal/notify"
)

// Store is the persistence contract the services run against. The
// production implementation is internal/database.
type Store interface {
	UpsertMessage(ctx context.Context, raw *models.RawMessage) (msg *models.Message, created bool, edited bool, err error)
	GetMessage(ctx context.Context, externalID string) (*models.Message, error)
	ListMessages(ctx context.Context, chatKey string, includeDeleted bool) ([]*models.Message, error)
	SoftDeleteMessage(ctx context.Context, externalID string) error
	SetManualCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, error)
	SetInferredCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, bool, error)
	RecentMessages(ctx context.Context, chatKey string, before time.Time, window time.Duration, limit int, excludeExternalID string) ([]*models.Message, error)
	UpsertAlias(ctx context.Context, aliasText string, companyID int64) error
	ListAliases(ctx context.Context) ([]models.CompanyAlias, error)
}

// Notifier fans events out to connected operator dashboards. Publishing
// is best-effort and must never block message processing.
type Notifier interface {
	Publish(event notify.Event)
}
