package shared

import "context"

// Severity classifies a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message shown once. Key is a translation key.
type Notification struct {
	Key      string   `json:"key"`
	Severity Severity `json:"severity"`
	Params   []string `json:"params,omitempty"`
}

// SessionNotifier delivers notifications through the session of the current request.
// The page rendered after the next redirect drains and shows them.
type SessionNotifier struct{}

// Show queues a notification on the session bound to ctx. Requests without a
// session drop the message.
func (SessionNotifier) Show(ctx context.Context, n Notification) {
	if sess := SessionFromContext(ctx); sess != nil {
		sess.Push(n)
	}
}
