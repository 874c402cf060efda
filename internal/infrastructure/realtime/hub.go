package realtime

import (
	"sync"

	"github.com/formgrid/forms-api/internal/domain/notification"
	"github.com/formgrid/forms-api/internal/infrastructure/logger"
)

const subscriberBuffer = 16

// Hub fans notifications out to each owner's active SSE streams. It is
// in-process only: notifications are lost on restart and do not cross
// replicas, which matches the best-effort contract of the notifier port.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan notification.Notification]struct{}
}

var _ notification.Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint]map[chan notification.Notification]struct{})}
}

// Subscribe registers a stream for the user and returns the channel plus an
// unsubscribe func. The caller must call unsubscribe when the stream ends.
func (h *Hub) Subscribe(userID uint) (<-chan notification.Notification, func()) {
	ch := make(chan notification.Notification, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan notification.Notification]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[userID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
}

// Notify implements notification.Notifier. A subscriber with a full buffer
// drops the message rather than blocking the sender.
func (h *Hub) Notify(userID uint, n notification.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- n:
		default:
			log := logger.GetLogger()
			log.Debug().
				Uint("user_id", userID).
				Str("type", n.Type).
				Msg("dropped realtime notification for slow subscriber")
		}
	}
}
