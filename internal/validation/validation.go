package validation

import (
	"fmt"

	"whatsorders/internal/constants"
	"whatsorders/internal/errors"
	"whatsorders/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRawMessage checks a scraped message before it reaches the store.
// Structural requirements come from the struct tags; the checks below are
// the ones tags cannot express.
func ValidateRawMessage(raw *models.RawMessage) error {
	if err := validate.Struct(raw); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewInvalidMessageError(fe.Field(),
				fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag()))
		}
		return errors.NewInvalidMessageError("", err.Error())
	}

	if err := ValidateExternalID(raw.ExternalID); err != nil {
		return err
	}
	if raw.OccurredAt.IsZero() {
		return errors.NewInvalidMessageError("occurredAt", "occurred-at timestamp is required")
	}
	if len(raw.Body) > constants.MaxBodyLength {
		return errors.NewInvalidMessageError("body",
			fmt.Sprintf("body too long (max %d bytes)", constants.MaxBodyLength))
	}
	if len(raw.Media) > constants.MaxMediaPerMessage {
		return errors.NewInvalidMessageError("media",
			fmt.Sprintf("too many attachments (max %d)", constants.MaxMediaPerMessage))
	}

	return nil
}

// ValidateExternalID validates external id format and length
func ValidateExternalID(externalID string) error {
	if externalID == "" {
		return errors.NewInvalidMessageError("externalId", "external ID cannot be empty")
	}

	if len(externalID) > constants.MaxExternalIDLength {
		return errors.NewInvalidMessageError("externalId",
			fmt.Sprintf("external ID too long (max %d characters)", constants.MaxExternalIDLength))
	}

	// Control characters in ids break log lines and lookups
	for _, char := range externalID {
		if char == '\x00' || char == '\n' || char == '\r' || char == '\t' {
			return errors.NewInvalidMessageError("externalId", "external ID contains invalid characters")
		}
	}

	return nil
}

// ValidateChatKey validates chat key format and length
func ValidateChatKey(chatKey string) error {
	if chatKey == "" {
		return errors.NewInvalidMessageError("chatKey", "chat key cannot be empty")
	}

	if len(chatKey) > constants.MaxChatKeyLength {
		return errors.NewInvalidMessageError("chatKey",
			fmt.Sprintf("chat key too long (max %d characters)", constants.MaxChatKeyLength))
	}

	return nil
}

// ValidateAlias validates an alias registration payload
func ValidateAlias(aliasText string, companyID int64) error {
	if aliasText == "" {
		return errors.NewValidationError("alias", aliasText, "alias cannot be empty")
	}
	if len(aliasText) > constants.MaxAliasLength {
		return errors.NewValidationError("alias", aliasText,
			fmt.Sprintf("alias too long (max %d characters)", constants.MaxAliasLength))
	}
	if companyID <= 0 {
		return errors.NewValidationError("companyId", fmt.Sprintf("%d", companyID),
			"company id must be positive")
	}
	return nil
}

// ValidateBatchSize bounds the ingestion batch
func ValidateBatchSize(n int) error {
	if n == 0 {
		return errors.NewValidationError("messages", "", "batch cannot be empty")
	}
	if n > constants.MaxBatchSize {
		return errors.NewValidationError("messages", fmt.Sprintf("%d", n),
			fmt.Sprintf("batch too large (max %d messages)", constants.MaxBatchSize))
	}
	return nil
}
