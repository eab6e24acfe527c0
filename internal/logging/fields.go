package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService        = "service"
	FieldEventType      = "event_type"
	FieldSubscriptionID = "subscription_id"
	FieldURL            = "url"
	FieldStatus         = "status"
	FieldError          = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// EventType returns a slog attribute for an event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// SubscriptionID returns a slog attribute for a subscription ID.
func SubscriptionID(id string) slog.Attr {
	return slog.String(FieldSubscriptionID, id)
}

// URL returns a slog attribute for a destination URL.
func URL(u string) slog.Attr {
	return slog.String(FieldURL, u)
}

// Status returns a slog attribute for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
