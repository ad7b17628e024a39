package chat

import (
	"strings"

	"msgassist/pkg/ai"
)

// ContextWindow is the maximum number of messages preceding the target that
// are sent as context.
const ContextWindow = 4

// SelectContext returns up to ContextWindow messages immediately before
// target in all, oldest first. A target that is not in all yields an empty
// slice.
func SelectContext(all []Message, target Message) []Message {
	idx := -1
	for i, m := range all {
		if m.ID == target.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []Message{}
	}

	start := max(0, idx-ContextWindow)
	window := make([]Message, idx-start)
	copy(window, all[start:idx])
	return window
}

// BuildTranscript lays out the turns sent to the model: the context messages,
// then the target, then the prompt when it is not blank.
func BuildTranscript(prior []Message, target Message, prompt string) []ai.ChatTurn {
	turns := make([]ai.ChatTurn, 0, len(prior)+2)
	for _, m := range prior {
		turns = append(turns, ai.ChatTurn{Role: ai.RoleUser, Content: FormatMessage(m)})
	}
	turns = append(turns, ai.ChatTurn{Role: ai.RoleUser, Content: FormatMessage(target)})

	if strings.TrimSpace(prompt) != "" {
		turns = append(turns, ai.ChatTurn{Role: ai.RoleUser, Content: prompt})
	}
	return turns
}
