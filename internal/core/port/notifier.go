package port

import "context"

// NotificationChannel selects the delivery medium for a one-time code.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// CodeNotification carries a plaintext code to a recipient contact.
type CodeNotification struct {
	Channel   NotificationChannel
	Recipient string
	Code      string
	Purpose   string
}

// Notifier delivers one-time codes through external email/SMS collaborators.
// Delivery is best effort: callers log failures and never block business
// success on them.
type Notifier interface {
	SendCode(ctx context.Context, notification CodeNotification) error
}
