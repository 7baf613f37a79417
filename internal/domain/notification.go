package domain

type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "info"
	SeverityWarning NotificationSeverity = "warning"
	SeverityError   NotificationSeverity = "error"
)

// Notification is a due-date notice shown on the user's profile page.
type Notification struct {
	Message  string               `json:"message"`
	Severity NotificationSeverity `json:"type"`
}
