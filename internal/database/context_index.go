package database

import (
	"context"
	"time"

	"whatsorders/internal/constants"
	"whatsorders/internal/errors"
	"whatsorders/internal/models"
)

// RecentMessages implements the context window the resolver scans: the
// non-deleted messages of a chat whose occurred_at falls in
// [before-window, before], most recent first, excluding the message being
// resolved. At most limit rows are returned; a zero or negative limit
// falls back to the default. It is a plain query over the occurred_at
// index, rebuildable from the store at any time, and deliberately a
// snapshot read: a slightly stale window is acceptable because resolution
// is re-runnable.
func (d *Database) RecentMessages(ctx context.Context, chatKey string, before time.Time, window time.Duration, limit int, excludeExternalID string) ([]*models.Message, error) {
	if limit <= 0 {
		limit = constants.DefaultContextScanLimit
	}
	lookupChatKey, err := d.encryptor.EncryptForLookupIfEnabled(chatKey)
	if err != nil {
		return nil, errors.NewStorageError("recent_messages", err)
	}
	lookupExclude, err := d.encryptor.EncryptForLookupIfEnabled(excludeExternalID)
	if err != nil {
		return nil, errors.NewStorageError("recent_messages", err)
	}

	from := before.Add(-window).UTC()
	rows, err := d.db.QueryContext(ctx, selectContextWindowQuery,
		lookupChatKey, lookupExclude, from, before.UTC(), limit)
	if err != nil {
		return nil, errors.NewStorageError("recent_messages", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*models.Message
	for rows.Next() {
		msg, scanErr := d.scanMessage(rows)
		if scanErr != nil {
			return nil, errors.NewStorageError("recent_messages", scanErr)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("recent_messages", err)
	}

	return messages, nil
}
