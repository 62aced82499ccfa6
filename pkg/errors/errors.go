package timeline_errors

import (
	"errors"
)

// Common errors
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Event handling errors. The queue listeners map these onto ack/suspend.
var (
	// ErrDecode marks a message that can never be processed. Acked and logged.
	ErrDecode = errors.New("malformed event")
	// ErrDuplicateInsert is reported when a timeline row already exists. Treated as success.
	ErrDuplicateInsert = errors.New("duplicate timeline entry")
	// ErrTransient covers store or collaborator outages. The message is redelivered.
	ErrTransient = errors.New("transient infrastructure error")
	// ErrUnknownEventType is acked so the partition keeps moving.
	ErrUnknownEventType = errors.New("unknown event type")
)

// IsRetryable reports whether a handler error should suspend the message.
// Errors that can never succeed on redelivery are not retryable: malformed
// events, rows that already exist, unknown types and islands that are gone.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrDecode),
		errors.Is(err, ErrDuplicateInsert),
		errors.Is(err, ErrUnknownEventType),
		errors.Is(err, ErrNotFound):
		return false
	default:
		return true
	}
}
