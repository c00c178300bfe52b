package validation

import (
	"strings"
	"testing"
	"time"

	"whatsorders/internal/constants"
	"whatsorders/internal/errors"
	"whatsorders/internal/models"

	"github.com/stretchr/testify/assert"
)

func validRaw() *models.RawMessage {
	return &models.RawMessage{
		ExternalID: "wamid.001",
		ChatKey:    "chat-1",
		Sender:     "+15551234567",
		Body:       "2 crates of tomatoes",
		OccurredAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestValidateRawMessage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.RawMessage)
		wantErr bool
	}{
		{"valid", func(m *models.RawMessage) {}, false},
		{"empty body is fine", func(m *models.RawMessage) { m.Body = "" }, false},
		{"empty sender is fine", func(m *models.RawMessage) { m.Sender = "" }, false},
		{"missing external id", func(m *models.RawMessage) { m.ExternalID = "" }, true},
		{"external id too long", func(m *models.RawMessage) {
			m.ExternalID = strings.Repeat("a", constants.MaxExternalIDLength+1)
		}, true},
		{"external id with newline", func(m *models.RawMessage) { m.ExternalID = "wamid\n001" }, true},
		{"missing chat key", func(m *models.RawMessage) { m.ChatKey = "" }, true},
		{"zero occurred at", func(m *models.RawMessage) { m.OccurredAt = time.Time{} }, true},
		{"body too long", func(m *models.RawMessage) {
			m.Body = strings.Repeat("x", constants.MaxBodyLength+1)
		}, true},
		{"valid media", func(m *models.RawMessage) {
			m.Media = []models.MediaAttachment{
				{Kind: models.MediaKindImage, StorageRef: "media/a.jpg", SizeBytes: 10},
			}
		}, false},
		{"unknown media kind", func(m *models.RawMessage) {
			m.Media = []models.MediaAttachment{
				{Kind: "spreadsheet", StorageRef: "media/a.xls", SizeBytes: 10},
			}
		}, true},
		{"media without storage ref", func(m *models.RawMessage) {
			m.Media = []models.MediaAttachment{
				{Kind: models.MediaKindImage, StorageRef: "", SizeBytes: 10},
			}
		}, true},
		{"media with zero size", func(m *models.RawMessage) {
			m.Media = []models.MediaAttachment{
				{Kind: models.MediaKindImage, StorageRef: "media/a.jpg", SizeBytes: 0},
			}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			err := ValidateRawMessage(raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidMessage, errors.GetCode(err))
				assert.NotEmpty(t, errors.GetUserMessage(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRawMessageTooManyAttachments(t *testing.T) {
	raw := validRaw()
	for i := 0; i <= constants.MaxMediaPerMessage; i++ {
		raw.Media = append(raw.Media, models.MediaAttachment{
			Kind: models.MediaKindImage, StorageRef: "media/a.jpg", SizeBytes: 1,
		})
	}
	assert.Error(t, ValidateRawMessage(raw))
}

func TestValidateAlias(t *testing.T) {
	assert.NoError(t, ValidateAlias("greenleaf", 1))
	assert.Error(t, ValidateAlias("", 1))
	assert.Error(t, ValidateAlias(strings.Repeat("a", constants.MaxAliasLength+1), 1))
	assert.Error(t, ValidateAlias("greenleaf", 0))
	assert.Error(t, ValidateAlias("greenleaf", -1))
}

func TestValidateBatchSize(t *testing.T) {
	assert.Error(t, ValidateBatchSize(0))
	assert.NoError(t, ValidateBatchSize(1))
	assert.NoError(t, ValidateBatchSize(constants.MaxBatchSize))
	assert.Error(t, ValidateBatchSize(constants.MaxBatchSize+1))
}
