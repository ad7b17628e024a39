// Package store loads channels and their message history for the assistant.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"msgassist/pkg/chat"
)

var (
	// ErrChannelNotFound is returned when neither a regular nor a private
	// channel matches the requested ID.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrMessagesUnavailable is returned when a channel's history cannot be
	// read.
	ErrMessagesUnavailable = errors.New("messages unavailable")
)

// Store is the host's read-only view of channels and messages.
type Store interface {
	Channel(ctx context.Context, id string) (chat.Channel, error)
	// Messages returns the channel's history, oldest first.
	Messages(ctx context.Context, channelID string) ([]chat.Message, error)
	Close() error
}

// Open picks a Store implementation from the file extension.
func Open(path string) (Store, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return OpenJSON(path)
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported store file %q: expected .json, .db or .sqlite", path)
	}
}
