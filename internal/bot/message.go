// Package bot implements command routing and the conversation state
// machine behind the admin chat interface.
package bot

import (
	"context"
)

// Message is one inbound chat message, already reduced to what the
// dispatcher needs. Sender is the chat username of the author.
type Message struct {
	ChatID int64
	Sender string
	Text   string
}

// SendOptions controls formatting and quick-reply keyboards on an
// outbound message.
type SendOptions struct {
	// Markdown enables markdown formatting of the text.
	Markdown bool
	// RemoveKeyboard clears any pending quick-reply keyboard.
	RemoveKeyboard bool
	// SuggestKeyboard presents the given values as one-tap replies.
	SuggestKeyboard []string
}

// Sender delivers outbound messages to the chat platform.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, opts SendOptions) error
}
