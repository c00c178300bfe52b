package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"whatsorders/internal/errors"
	"whatsorders/internal/models"
	"whatsorders/internal/notify"
)

// fakeStore is an in-memory Store with the same write semantics as the
// real database: external id keyed upserts, edit detection, the manual
// assignment guard, and soft-delete as a ratchet.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	messages map[string]*models.Message
	aliases  []models.CompanyAlias

	upsertErr  error
	recentErr  error
	inferError error

	// limit observed on the last RecentMessages call
	recentLimit int

	// when set, a manual assignment lands just before the next
	// SetInferredCompany call, simulating a concurrent operator
	manualRace *int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string]*models.Message)}
}

func (f *fakeStore) UpsertMessage(ctx context.Context, raw *models.RawMessage) (*models.Message, bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return nil, false, false, f.upsertErr
	}

	if existing, ok := f.messages[raw.ExternalID]; ok {
		edited := false
		if existing.Body != raw.Body {
			existing.EditHistory = append(existing.EditHistory, models.BodyEdit{
				Body:     existing.Body,
				EditedAt: time.Now().UTC(),
			})
			edited = true
		}
		existing.Sender = raw.Sender
		existing.Body = raw.Body
		existing.OccurredAt = raw.OccurredAt
		existing.Media = raw.Media
		cp := *existing
		return &cp, false, edited, nil
	}

	f.nextID++
	msg := &models.Message{
		ID:         f.nextID,
		ExternalID: raw.ExternalID,
		ChatKey:    raw.ChatKey,
		Sender:     raw.Sender,
		Body:       raw.Body,
		Media:      raw.Media,
		OccurredAt: raw.OccurredAt,
		ReceivedAt: time.Now().UTC(),
	}
	f.messages[raw.ExternalID] = msg
	cp := *msg
	return &cp, true, false, nil
}

func (f *fakeStore) GetMessage(ctx context.Context, externalID string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[externalID]
	if !ok {
		return nil, errors.NewNotFoundError("message", externalID)
	}
	cp := *msg
	return &cp, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, chatKey string, includeDeleted bool) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Message
	for _, msg := range f.messages {
		if msg.ChatKey != chatKey {
			continue
		}
		if msg.IsDeleted && !includeDeleted {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (f *fakeStore) SoftDeleteMessage(ctx context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[externalID]
	if !ok {
		return errors.NewNotFoundError("message", externalID)
	}
	msg.IsDeleted = true
	return nil
}

func (f *fakeStore) SetManualCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.messages[externalID]
	if !ok {
		return nil, errors.NewNotFoundError("message", externalID)
	}
	msg.ManualCompanyID = companyID
	cp := *msg
	return &cp, nil
}

func (f *fakeStore) SetInferredCompany(ctx context.Context, externalID string, companyID *int64) (*models.Message, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inferError != nil {
		return nil, false, f.inferError
	}

	msg, ok := f.messages[externalID]
	if !ok {
		return nil, false, errors.NewNotFoundError("message", externalID)
	}
	if f.manualRace != nil {
		msg.ManualCompanyID = f.manualRace
		f.manualRace = nil
	}
	if msg.ManualCompanyID != nil {
		cp := *msg
		return &cp, false, nil
	}
	msg.InferredCompanyID = companyID
	cp := *msg
	return &cp, true, nil
}

func (f *fakeStore) RecentMessages(ctx context.Context, chatKey string, before time.Time, window time.Duration, limit int, excludeExternalID string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recentLimit = limit
	if f.recentErr != nil {
		return nil, f.recentErr
	}

	from := before.Add(-window)
	var out []*models.Message
	for _, msg := range f.messages {
		if msg.ChatKey != chatKey || msg.IsDeleted || msg.ExternalID == excludeExternalID {
			continue
		}
		if msg.OccurredAt.Before(from) || msg.OccurredAt.After(before) {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) UpsertAlias(ctx context.Context, aliasText string, companyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.aliases {
		if f.aliases[i].AliasText == aliasText {
			f.aliases[i].CompanyID = companyID
			return nil
		}
	}
	f.aliases = append(f.aliases, models.CompanyAlias{
		ID:        int64(len(f.aliases) + 1),
		AliasText: aliasText,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (f *fakeStore) ListAliases(ctx context.Context) ([]models.CompanyAlias, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.CompanyAlias, len(f.aliases))
	copy(out, f.aliases)
	return out, nil
}

// captureNotifier records published events in order.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Publish(event notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureNotifier) Events() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Event, len(c.events))
	copy(out, c.events)
	return out
}
