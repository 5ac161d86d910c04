package domain

import "time"

// NotificationKind tells the front end how to style a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is the fire-and-forget outcome of an operation. Event is a
// message id resolved into a localized title and message by the notifier.
type Notification struct {
	Kind     NotificationKind
	Event    string
	Entity   EntityKind
	EntityID string
	ActorID  string
	Data     map[string]string
	At       time.Time
}
