package models

import (
	"time"
)

// RawMessage is a single scraped message as delivered by the scraping
// client. Validation tags cover the structural requirements; domain checks
// live in internal/validation.
type RawMessage struct {
	ExternalID string            `json:"externalId" validate:"required,max=255"`
	ChatKey    string            `json:"chatKey" validate:"required,max=255"`
	Sender     string            `json:"sender" validate:"max=255"`
	Body       string            `json:"body"`
	OccurredAt time.Time         `json:"occurredAt" validate:"required"`
	Media      []MediaAttachment `json:"media,omitempty" validate:"dive"`
}

// IngestOutcome is the per-message result of a batch ingest.
type IngestOutcome string

const (
	IngestOutcomeCreated  IngestOutcome = "created"
	IngestOutcomeUpdated  IngestOutcome = "updated"
	IngestOutcomeRejected IngestOutcome = "rejected"
)

// IngestResult reports what happened to one message of a batch. Reason is
// populated only for rejected items.
type IngestResult struct {
	ExternalID string        `json:"externalId"`
	Outcome    IngestOutcome `json:"outcome"`
	Reason     string        `json:"reason,omitempty"`

	// CompanyID is the effective company after resolution, when known.
	CompanyID *int64 `json:"companyId,omitempty"`
}

// IngestBatchRequest is the ingestion boundary payload.
type IngestBatchRequest struct {
	Messages []RawMessage `json:"messages" validate:"required,min=1,dive"`
}

// IngestBatchResponse carries per-message outcomes in input order.
type IngestBatchResponse struct {
	Results []IngestResult `json:"results"`
}
