// Package chat holds the host-owned message model and the pure functions that
// turn a channel's history into completion input.
package chat

import "time"

// Message is a read-only view of one chat message supplied by the host.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	ChannelID string    `json:"channel_id"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Channel identifies a conversation. Private channels are direct messages.
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Private bool   `json:"private,omitempty"`
}

const fallbackAuthor = "User"

// AuthorName returns the display name, or "User" when the author is unknown.
func (m Message) AuthorName() string {
	if m.Author == "" {
		return fallbackAuthor
	}
	return m.Author
}

// FormatMessage renders "<author>: <content>".
func FormatMessage(m Message) string {
	return m.AuthorName() + ": " + m.Content
}
