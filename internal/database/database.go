package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"whatsorders/internal/constants"
	"whatsorders/internal/errors"
	"whatsorders/internal/migrations"
	"whatsorders/internal/models"
	"whatsorders/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the durable message store. All write rules the rest of the
// system depends on are enforced here: external_id is the sole upsert key,
// soft-delete is a ratchet, and a manual company assignment can never be
// overwritten by an inferred one.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

// New opens the store at dbPath with default connection pool limits.
func New(dbPath string) (*Database, error) {
	return NewWithConfig(models.DatabaseConfig{Path: dbPath})
}

// NewWithConfig opens the store described by cfg, creating the database
// file and applying the schema if needed. Pool limit fields that are
// zero or negative fall back to the defaults.
func NewWithConfig(cfg models.DatabaseConfig) (*Database, error) {
	dbPath := cfg.Path
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConnections
	if maxOpen <= 0 {
		maxOpen = constants.DefaultDatabaseMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConnections
	if maxIdle <= 0 {
		maxIdle = constants.DefaultDatabaseMaxIdleConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// UpsertMessage inserts or updates the message identified by raw.ExternalID.
// On update the prior body is appended to the edit history when the body
// actually changed, and the attachment set is replaced in the same
// transaction. is_deleted and both company fields are never touched here.
func (d *Database) UpsertMessage(ctx context.Context, raw *models.RawMessage) (msg *models.Message, created bool, edited bool, err error) {
	lookupID, err := d.encryptor.EncryptForLookupIfEnabled(raw.ExternalID)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to encrypt external ID: %w", err)
	}
	lookupChatKey, err := d.encryptor.EncryptForLookupIfEnabled(raw.ChatKey)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to encrypt chat key: %w", err)
	}
	encSender, err := d.encryptor.EncryptIfEnabled(raw.Sender)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to encrypt sender: %w", err)
	}
	encBody, err := d.encryptor.EncryptIfEnabled(raw.Body)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to encrypt body: %w", err)
	}

	err = retryableDBOperation(ctx, func() error {
		created, edited = false, false

		tx, txErr := d.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		var messageID int64
		var oldEncBody string
		row := tx.QueryRowContext(ctx, `SELECT id, body FROM messages WHERE external_id = ?`, lookupID)
		scanErr := row.Scan(&messageID, &oldEncBody)

		switch {
		case scanErr == sql.ErrNoRows:
			res, execErr := tx.ExecContext(ctx, insertMessageQuery,
				lookupID, lookupChatKey, encSender, encBody,
				raw.OccurredAt.UTC(), time.Now().UTC())
			if execErr != nil {
				return fmt.Errorf("failed to insert message: %w", execErr)
			}
			messageID, execErr = res.LastInsertId()
			if execErr != nil {
				return fmt.Errorf("failed to read inserted message id: %w", execErr)
			}
			created = true

		case scanErr != nil:
			return fmt.Errorf("failed to look up message: %w", scanErr)

		default:
			oldBody, decErr := d.encryptor.DecryptIfEnabled(oldEncBody)
			if decErr != nil {
				return fmt.Errorf("failed to decrypt prior body: %w", decErr)
			}
			if oldBody != raw.Body {
				if _, execErr := tx.ExecContext(ctx, insertMessageEditQuery,
					messageID, oldEncBody, time.Now().UTC()); execErr != nil {
					return fmt.Errorf("failed to record edit history: %w", execErr)
				}
				edited = true
			}
			if _, execErr := tx.ExecContext(ctx, updateMessageContentQuery,
				encSender, encBody, raw.OccurredAt.UTC(), messageID); execErr != nil {
				return fmt.Errorf("failed to update message: %w", execErr)
			}
			if _, execErr := tx.ExecContext(ctx, deleteMessageMediaQuery, messageID); execErr != nil {
				return fmt.Errorf("failed to clear attachments: %w", execErr)
			}
		}

		// Attachments are written inside the transaction so a message never
		// ends up with a partial attachment set.
		for _, m := range raw.Media {
			encRef, encErr := d.encryptor.EncryptIfEnabled(m.StorageRef)
			if encErr != nil {
				return fmt.Errorf("failed to encrypt storage ref: %w", encErr)
			}
			if _, execErr := tx.ExecContext(ctx, insertMessageMediaQuery,
				messageID, string(m.Kind), encRef, m.SizeBytes); execErr != nil {
				return fmt.Errorf("failed to insert attachment: %w", execErr)
			}
		}

		return tx.Commit()
	}, "upsert message")
	if err != nil {
		return nil, false, false, errors.NewStorageError("upsert", err)
	}

	msg, err = d.GetMessage(ctx, raw.ExternalID)
	if err != nil {
		return nil, false, false, err
	}
	return msg, created, edited, nil
}

// GetMessage returns the message with the given external id, including
// attachments and edit history, regardless of its deletion state.
func (d *Database) GetMessage(ctx context.Context, externalID string) (*models.Message, error) {
	lookupID, err := d.encryptor.EncryptForLookupIfEnabled(externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt external ID: %w", err)
	}

	row := d.db.QueryRowContext(ctx, selectMessageByExternalIDQuery, lookupID)
	msg, err := d.scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("message", externalID)
	}
	if err != nil {
		return nil, errors.NewStorageError("get", err)
	}

	if err := d.loadMedia(ctx, msg); err != nil {
		return nil, errors.NewStorageError("get", err)
	}
	if err := d.loadEditHistory(ctx, msg); err != nil {
		return nil, errors.NewStorageError("get", err)
	}

	return msg, nil
}

// ListMessages returns the messages of a chat ordered by occurred_at
// ascending. Soft-deleted messages are excluded unless includeDeleted is
// set.
func (d *Database) ListMessages(ctx context.Context, chatKey string, includeDeleted bool) ([]*models.Message, error) {
	lookupChatKey, err := d.encryptor.EncryptForLookupIfEnabled(chatKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt chat key: %w", err)
	}

	query := selectVisibleMessagesByChatQuery
	if includeDeleted {
		query = selectMessagesByChatQuery
	}

	rows, err := d.db.QueryContext(ctx, query, lookupChatKey)
	if err != nil {
		return nil, errors.NewStorageError("list", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*models.Message
	for rows.Next() {
		msg, scanErr := d.scanMessage(rows)
		if scanErr != nil {
			return nil, errors.NewStorageError("list", scanErr)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("list", err)
	}

	for _, msg := range messages {
		if err := d.loadMedia(ctx, msg); err != nil {
			return nil, errors.NewStorageError("list", err)
		}
	}

	return messages, nil
}

// SoftDeleteMessage marks a message deleted. Deleting an already-deleted
// message is a no-op; an unknown external id is NotFound.
func (d *Database) SoftDeleteMessage(ctx context.Context, externalID string) error {
	lookupID, err := d.encryptor.EncryptForLookupIfEnabled(externalID)
	if err != nil {
		return fmt.Errorf("failed to encrypt external ID: %w", err)
	}

	var affected int64
	err = retryableDBOperation(ctx, func() error {
		res, execErr := d.db.ExecContext(ctx, softDeleteMessageQuery, lookupID)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	}, "soft delete message")
	if err != nil {
		return errors.NewStorageError("soft_delete", err)
	}

	if affected == 0 {
		return errors.NewNotFoundError("message", externalID)
	}
	return nil
}

// SetManualCompany writes the sticky manual assignment. A nil companyID
// clears a prior manual override; that is an explicit operator action and
// the only way a manual assignment goes away. Operates regardless of the
// message's deletion state.
func (d *Database) SetManualCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, error) {
	lookupID, err := d.encryptor.EncryptForLookupIfEnabled(externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt external ID: %w", err)
	}

	var affected int64
	err = retryableDBOperation(ctx, func() error {
		res, execErr := d.db.ExecContext(ctx, updateManualCompanyQuery, companyID, lookupID)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	}, "set manual company")
	if err != nil {
		return nil, errors.NewStorageError("set_manual_company", err)
	}

	if affected == 0 {
		return nil, errors.NewNotFoundError("message", externalID)
	}
	return d.GetMessage(ctx, externalID)
}

// SetInferredCompany writes the resolver's verdict. The write carries a
// manual-assignment guard in the statement itself, so a racing manual
// assignment can never be shadowed regardless of caller behavior. The
// returned bool reports whether the write was applied; false means a
// manual assignment was present and the inference was dropped.
func (d *Database) SetInferredCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, bool, error) {
	lookupID, err := d.encryptor.EncryptForLookupIfEnabled(externalID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encrypt external ID: %w", err)
	}

	var affected int64
	err = retryableDBOperation(ctx, func() error {
		res, execErr := d.db.ExecContext(ctx, updateInferredCompanyQuery, companyID, lookupID)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	}, "set inferred company")
	if err != nil {
		return nil, false, errors.NewStorageError("set_inferred_company", err)
	}

	msg, err := d.GetMessage(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	return msg, affected > 0, nil
}

// CleanupOldMessages physically removes soft-deleted messages whose last
// update is older than the retention horizon. This is the only hard delete
// in the subsystem.
func (d *Database) CleanupOldMessages(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	_, err := d.db.Exec(deleteExpiredDeletedMessagesQuery, retentionDays)
	if err != nil {
		return errors.NewStorageError("cleanup", err)
	}

	return nil
}

// Alias operations

// UpsertAlias registers an alias for a company. AliasText is expected to
// be pre-normalized by the caller. Re-registering an existing alias updates
// its company but keeps the original row id, which preserves its
// registration order for longest-match tie-breaking.
func (d *Database) UpsertAlias(ctx context.Context, aliasText string, companyID int64) error {
	err := retryableDBOperation(ctx, func() error {
		_, execErr := d.db.ExecContext(ctx, upsertAliasQuery, aliasText, companyID)
		return execErr
	}, "upsert alias")
	if err != nil {
		return errors.NewStorageError("upsert_alias", err)
	}
	return nil
}

// ListAliases returns all aliases ordered by registration (row id).
func (d *Database) ListAliases(ctx context.Context) ([]models.CompanyAlias, error) {
	rows, err := d.db.QueryContext(ctx, selectAliasesQuery)
	if err != nil {
		return nil, errors.NewStorageError("list_aliases", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var aliases []models.CompanyAlias
	for rows.Next() {
		var a models.CompanyAlias
		if err := rows.Scan(&a.ID, &a.AliasText, &a.CompanyID, &a.CreatedAt); err != nil {
			return nil, errors.NewStorageError("list_aliases", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("list_aliases", err)
	}

	return aliases, nil
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (d *Database) scanMessage(row rowScanner) (*models.Message, error) {
	var encExternalID, encChatKey, encSender, encBody string
	msg := &models.Message{}

	err := row.Scan(
		&msg.ID,
		&encExternalID,
		&encChatKey,
		&encSender,
		&encBody,
		&msg.OccurredAt,
		&msg.ReceivedAt,
		&msg.IsDeleted,
		&msg.ManualCompanyID,
		&msg.InferredCompanyID,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	msg.ExternalID, err = d.encryptor.DecryptIfEnabled(encExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt external ID: %w", err)
	}
	msg.ChatKey, err = d.encryptor.DecryptIfEnabled(encChatKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt chat key: %w", err)
	}
	msg.Sender, err = d.encryptor.DecryptIfEnabled(encSender)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt sender: %w", err)
	}
	msg.Body, err = d.encryptor.DecryptIfEnabled(encBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt body: %w", err)
	}

	msg.OccurredAt = msg.OccurredAt.UTC()
	msg.ReceivedAt = msg.ReceivedAt.UTC()

	return msg, nil
}

func (d *Database) loadMedia(ctx context.Context, msg *models.Message) error {
	rows, err := d.db.QueryContext(ctx, selectMessageMediaQuery, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var m models.MediaAttachment
		var encRef string
		if err := rows.Scan(&m.Kind, &encRef, &m.SizeBytes); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		m.StorageRef, err = d.encryptor.DecryptIfEnabled(encRef)
		if err != nil {
			return fmt.Errorf("failed to decrypt storage ref: %w", err)
		}
		msg.Media = append(msg.Media, m)
	}
	return rows.Err()
}

func (d *Database) loadEditHistory(ctx context.Context, msg *models.Message) error {
	rows, err := d.db.QueryContext(ctx, selectMessageEditsQuery, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load edit history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var e models.BodyEdit
		var encBody string
		if err := rows.Scan(&encBody, &e.EditedAt); err != nil {
			return fmt.Errorf("failed to scan edit: %w", err)
		}
		e.Body, err = d.encryptor.DecryptIfEnabled(encBody)
		if err != nil {
			return fmt.Errorf("failed to decrypt edit body: %w", err)
		}
		e.EditedAt = e.EditedAt.UTC()
		msg.EditHistory = append(msg.EditHistory, e)
	}
	return rows.Err()
}
