package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// EventType classifies an operator-stream event.
type EventType string

const (
	EventMessageIngested   EventType = "message.ingested"
	EventMessageDeleted    EventType = "message.deleted"
	EventCompanyAssigned   EventType = "company.assigned"
	EventAssignmentCleared EventType = "company.cleared"
)

// Event is a single entry on the operator event stream.
type Event struct {
	Type       EventType `json:"type"`
	ExternalID string    `json:"externalId"`
	Outcome    string    `json:"outcome,omitempty"`
	CompanyID  *int64    `json:"companyId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const subscriberBuffer = 64

// Hub fans events out to websocket subscribers. Delivery is best-effort:
// a subscriber that falls subscriberBuffer events behind is dropped.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	logger      *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking. Slow
// subscribers are removed.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			delete(h.subscribers, ch)
			close(ch)
			h.logger.Warn("Dropped slow event stream subscriber")
		}
	}
}

// SubscriberCount reports the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request to a websocket and streams events until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to accept websocket connection")
		return
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	events, cancel := h.Subscribe()
	defer cancel()

	// CloseRead surfaces client disconnects through context cancellation.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusTryAgainLater, "subscriber dropped")
				return
			}
			if err := wsjson.Write(ctx, conn, event); err != nil {
				return
			}
		}
	}
}
