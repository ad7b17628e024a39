package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"msgassist/pkg/chat"
)

// Export is the on-disk channel export format.
type Export struct {
	Channels        []ExportChannel `json:"channels"`
	PrivateChannels []ExportChannel `json:"private_channels"`
}

// ExportChannel is one channel with its ordered history.
type ExportChannel struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Messages []chat.Message `json:"messages"`
}

// ReadExport parses an export file.
func ReadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse export %s: %w", path, err)
	}
	return &export, nil
}

// JSONStore serves an export file held in memory.
type JSONStore struct {
	export *Export
}

// OpenJSON reads the export at path.
func OpenJSON(path string) (*JSONStore, error) {
	export, err := ReadExport(path)
	if err != nil {
		return nil, err
	}
	return NewJSONStore(export), nil
}

// NewJSONStore wraps an already parsed export.
func NewJSONStore(export *Export) *JSONStore {
	if export == nil {
		export = &Export{}
	}
	return &JSONStore{export: export}
}

func (s *JSONStore) find(id string) (*ExportChannel, bool) {
	for i := range s.export.Channels {
		if s.export.Channels[i].ID == id {
			return &s.export.Channels[i], false
		}
	}
	// Direct messages live in a separate list.
	for i := range s.export.PrivateChannels {
		if s.export.PrivateChannels[i].ID == id {
			return &s.export.PrivateChannels[i], true
		}
	}
	return nil, false
}

func (s *JSONStore) Channel(ctx context.Context, id string) (chat.Channel, error) {
	ch, private := s.find(id)
	if ch == nil {
		return chat.Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	return chat.Channel{ID: ch.ID, Name: ch.Name, Private: private}, nil
}

func (s *JSONStore) Messages(ctx context.Context, channelID string) ([]chat.Message, error) {
	ch, _ := s.find(channelID)
	if ch == nil {
		return nil, fmt.Errorf("%w: unknown channel %s", ErrMessagesUnavailable, channelID)
	}

	msgs := make([]chat.Message, len(ch.Messages))
	for i, m := range ch.Messages {
		if m.ChannelID == "" {
			m.ChannelID = ch.ID
		}
		msgs[i] = m
	}
	return msgs, nil
}

func (s *JSONStore) Close() error { return nil }
