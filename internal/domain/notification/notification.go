package notification

// Notification is a realtime message pushed to a form owner's active session.
type Notification struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Notifier is the outbound realtime port. Delivery is best-effort and
// at-most-once; implementations must not block the caller on slow consumers.
type Notifier interface {
	Notify(userID uint, n Notification)
}

// NopNotifier discards notifications. Used when no realtime transport is
// configured.
type NopNotifier struct{}

func (NopNotifier) Notify(userID uint, n Notification) {}
