package bot

import "context"

// Button is an inline control. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is an outbound chat message.
type Message struct {
	Text string
	HTML bool
	// Buttons are laid out one inner slice per row.
	Buttons        [][]Button
	DisablePreview bool
}

// Transport delivers messages to chats. Every method returns an error
// wrapping core.ErrDelivery when the remote side rejects the call.
type Transport interface {
	// Send posts msg and returns the new message id.
	Send(ctx context.Context, chatID int64, msg Message) (int, error)
	// SetButtons replaces the controls of an existing message. nil removes
	// them.
	SetButtons(ctx context.Context, chatID int64, messageID int, buttons [][]Button) error
	// Edit replaces the text and controls of an existing message.
	Edit(ctx context.Context, chatID int64, messageID int, msg Message) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// User is the sender of an inbound event.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Callback is a button tap.
type Callback struct {
	ChatID    int64
	MessageID int
	// Text is the plain text of the tapped message.
	Text string
	From User
	Data string
}
