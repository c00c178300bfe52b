package models

import (
	"time"
)

// MediaKind classifies an attachment recorded alongside a message.
type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
	MediaKindVoice    MediaKind = "voice"
)

// MediaAttachment is attachment metadata scraped with a message. The blob
// itself lives wherever StorageRef points; this subsystem only records it.
type MediaAttachment struct {
	Kind       MediaKind `json:"kind" validate:"required,oneof=image video document voice"`
	StorageRef string    `json:"storageRef" validate:"required,max=1024"`
	SizeBytes  int64     `json:"sizeBytes" validate:"gt=0"`
}

// BodyEdit is a superseded message body, kept when a re-ingested message
// arrives with different text.
type BodyEdit struct {
	Body     string    `json:"body"`
	EditedAt time.Time `json:"editedAt"`
}

// Message is a chat message as persisted by the store. ExternalID is the
// identifier assigned by the chat platform and is the sole upsert key.
type Message struct {
	ID                int64             `json:"id"`
	ExternalID        string            `json:"externalId"`
	ChatKey           string            `json:"chatKey"`
	Sender            string            `json:"sender"`
	Body              string            `json:"body"`
	Media             []MediaAttachment `json:"media,omitempty"`
	EditHistory       []BodyEdit        `json:"editHistory,omitempty"`
	OccurredAt        time.Time         `json:"occurredAt"`
	ReceivedAt        time.Time         `json:"receivedAt"`
	IsDeleted         bool              `json:"isDeleted"`
	ManualCompanyID   *int64            `json:"manualCompanyId,omitempty"`
	InferredCompanyID *int64            `json:"inferredCompanyId,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// EffectiveCompanyID returns the company this message is attributed to:
// a manual assignment always wins over the resolver's inference.
func (m *Message) EffectiveCompanyID() *int64 {
	if m.ManualCompanyID != nil {
		return m.ManualCompanyID
	}
	return m.InferredCompanyID
}
