package service

import (
	"context"
	"time"

	"whatsorders/internal/errors"
	"whatsorders/internal/metrics"
	"whatsorders/internal/models"
	"whatsorders/internal/notify"
	"whatsorders/internal/resolver"
	"whatsorders/internal/tracing"
	"whatsorders/internal/validation"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// IngestionService is the boundary component for scraped message batches.
// It validates each raw message, upserts it idempotently, and runs
// automatic company resolution on every create or body edit. Batches are
// isolated per message: one bad item never aborts its siblings.
type IngestionService struct {
	db        Store
	resolver  *resolver.Resolver
	window    time.Duration
	scanLimit int
	notifier  Notifier
	logger    *logrus.Logger
}

func NewIngestionService(db Store, res *resolver.Resolver, window time.Duration, scanLimit int, notifier Notifier, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		db:        db,
		resolver:  res,
		window:    window,
		scanLimit: scanLimit,
		notifier:  notifier,
		logger:    logger,
	}
}

// IngestBatch processes messages in input order and returns one result
// per message. Safe to call repeatedly with overlapping batches; the
// store keys everything on external id.
func (s *IngestionService) IngestBatch(ctx context.Context, batch []models.RawMessage) []models.IngestResult {
	ctx, span := tracing.StartSpan(ctx, "ingest_batch",
		attribute.Int("batch.size", len(batch)))
	defer span.End()

	results := make([]models.IngestResult, 0, len(batch))
	for i := range batch {
		result := s.ingestOne(ctx, &batch[i])
		results = append(results, result)

		metrics.IncrementCounter("ingest_messages_total", map[string]string{
			"outcome": string(result.Outcome),
		}, "Ingested messages by outcome")

		if s.notifier != nil {
			s.notifier.Publish(notify.Event{
				Type:       notify.EventMessageIngested,
				ExternalID: result.ExternalID,
				Outcome:    string(result.Outcome),
				CompanyID:  result.CompanyID,
			})
		}
	}
	return results
}

func (s *IngestionService) ingestOne(ctx context.Context, raw *models.RawMessage) models.IngestResult {
	result := models.IngestResult{ExternalID: raw.ExternalID}

	if err := validation.ValidateRawMessage(raw); err != nil {
		s.logger.WithFields(logrus.Fields{
			"external_id": raw.ExternalID,
			"error":       err.Error(),
		}).Warn("Rejected invalid message")
		result.Outcome = models.IngestOutcomeRejected
		result.Reason = errors.GetUserMessage(err)
		return result
	}

	msg, created, edited, err := s.db.UpsertMessage(ctx, raw)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"external_id": raw.ExternalID,
		}).WithError(err).Error("Failed to upsert message")
		result.Outcome = models.IngestOutcomeRejected
		result.Reason = errors.GetUserMessage(err)
		return result
	}

	if created {
		result.Outcome = models.IngestOutcomeCreated
	} else {
		result.Outcome = models.IngestOutcomeUpdated
	}

	// Resolution runs on create and on body edits only, and never for
	// manually assigned messages.
	if msg.ManualCompanyID == nil && (created || edited) {
		msg = s.resolveMessage(ctx, msg)
	}

	result.CompanyID = msg.EffectiveCompanyID()
	return result
}

// resolveMessage gathers the context window, asks the resolver for a
// verdict, and writes it back. Resolution failures are logged and
// swallowed: the message itself was stored and resolution is re-runnable.
func (s *IngestionService) resolveMessage(ctx context.Context, msg *models.Message) *models.Message {
	recent, err := s.db.RecentMessages(ctx, msg.ChatKey, msg.OccurredAt, s.window, s.scanLimit, msg.ExternalID)
	if err != nil {
		s.logger.WithField("external_id", msg.ExternalID).
			WithError(err).Warn("Failed to load context window, skipping resolution")
		return msg
	}

	companyID := s.resolver.Resolve(msg, recent)

	updated, applied, err := s.db.SetInferredCompany(ctx, msg.ExternalID, companyID)
	if err != nil {
		s.logger.WithField("external_id", msg.ExternalID).
			WithError(err).Warn("Failed to write inferred company")
		return msg
	}
	if !applied {
		// A manual assignment raced in; the inference is dropped on the
		// floor, which is the required outcome, not a failure.
		conflict := errors.NewConflictIgnoredError(msg.ExternalID)
		s.logger.WithError(conflict).WithField("external_id", msg.ExternalID).
			Debug("Inferred company ignored, manual assignment present")
		metrics.IncrementCounter("resolution_conflicts_ignored_total", nil,
			"Automatic resolutions dropped in favor of manual assignments")
		return updated
	}

	if companyID != nil {
		metrics.IncrementCounter("resolution_matches_total", nil,
			"Messages automatically resolved to a company")
	} else {
		metrics.IncrementCounter("resolution_misses_total", nil,
			"Messages with no resolvable company")
	}

	return updated
}
