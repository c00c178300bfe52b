package database

// Message queries
const (
	insertMessageQuery = `
		INSERT INTO messages (
			external_id, chat_key, sender, body, occurred_at, received_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	selectMessageByExternalIDQuery = `
		SELECT id, external_id, chat_key, sender, body, occurred_at, received_at,
		       is_deleted, manual_company_id, inferred_company_id,
		       created_at, updated_at
		FROM messages
		WHERE external_id = ?
	`

	updateMessageContentQuery = `
		UPDATE messages
		SET sender = ?, body = ?, occurred_at = ?
		WHERE id = ?
	`

	selectMessagesByChatQuery = `
		SELECT id, external_id, chat_key, sender, body, occurred_at, received_at,
		       is_deleted, manual_company_id, inferred_company_id,
		       created_at, updated_at
		FROM messages
		WHERE chat_key = ?
		ORDER BY occurred_at ASC
	`

	selectVisibleMessagesByChatQuery = `
		SELECT id, external_id, chat_key, sender, body, occurred_at, received_at,
		       is_deleted, manual_company_id, inferred_company_id,
		       created_at, updated_at
		FROM messages
		WHERE chat_key = ? AND is_deleted = FALSE
		ORDER BY occurred_at ASC
	`

	selectContextWindowQuery = `
		SELECT id, external_id, chat_key, sender, body, occurred_at, received_at,
		       is_deleted, manual_company_id, inferred_company_id,
		       created_at, updated_at
		FROM messages
		WHERE chat_key = ?
		  AND is_deleted = FALSE
		  AND external_id != ?
		  AND occurred_at >= ?
		  AND occurred_at <= ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`

	softDeleteMessageQuery = `
		UPDATE messages
		SET is_deleted = TRUE
		WHERE external_id = ?
	`

	updateManualCompanyQuery = `
		UPDATE messages
		SET manual_company_id = ?
		WHERE external_id = ?
	`

	updateInferredCompanyQuery = `
		UPDATE messages
		SET inferred_company_id = ?
		WHERE external_id = ? AND manual_company_id IS NULL
	`

	deleteExpiredDeletedMessagesQuery = `
		DELETE FROM messages
		WHERE is_deleted = TRUE
		  AND updated_at < datetime('now', '-' || ? || ' days')
	`
)

// Edit history queries
const (
	insertMessageEditQuery = `
		INSERT INTO message_edits (message_id, body, edited_at)
		VALUES (?, ?, ?)
	`

	selectMessageEditsQuery = `
		SELECT body, edited_at
		FROM message_edits
		WHERE message_id = ?
		ORDER BY id ASC
	`
)

// Media queries
const (
	insertMessageMediaQuery = `
		INSERT INTO message_media (message_id, kind, storage_ref, size_bytes)
		VALUES (?, ?, ?, ?)
	`

	deleteMessageMediaQuery = `
		DELETE FROM message_media
		WHERE message_id = ?
	`

	selectMessageMediaQuery = `
		SELECT kind, storage_ref, size_bytes
		FROM message_media
		WHERE message_id = ?
		ORDER BY id ASC
	`
)

// Alias queries
const (
	upsertAliasQuery = `
		INSERT INTO company_aliases (alias_text, company_id)
		VALUES (?, ?)
		ON CONFLICT(alias_text) DO UPDATE SET company_id = excluded.company_id
	`

	selectAliasesQuery = `
		SELECT id, alias_text, company_id, created_at
		FROM company_aliases
		ORDER BY id ASC
	`
)
