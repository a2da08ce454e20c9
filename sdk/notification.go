package sdk

// NotificationType is the kind of notification attached to a project.
type NotificationType string

// Notification types. Only slack is supported for now.
const (
	NotificationTypeSlack NotificationType = "SLACK"
)

// Notification links a named notification to a project.
type Notification struct {
	Project string           `json:"project" validate:"required"`
	Type    NotificationType `json:"notificationType" validate:"required,oneof=SLACK"`
	Name    string           `json:"notificationName" validate:"required"`
}
