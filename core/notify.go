package core

import "context"

// Channel is a notification delivery channel, also stored as a contact preference.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type (
	Recipient struct {
		ID      string
		Name    string
		Email   string
		Phone   string
		Channel Channel
	}

	Notification struct {
		Recipient Recipient
		Template  string
		Subject   string
		Data      interface{}
	}

	// Notifier delivers a templated notification to a single recipient on their preferred channel.
	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}
)
