package models

// Channel is a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// Notification is a delivery request handed to a channel sender.
type Notification struct {
	Channel  Channel           `json:"channel"`
	UserID   string            `json:"user_id"`
	Subject  string            `json:"subject"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
