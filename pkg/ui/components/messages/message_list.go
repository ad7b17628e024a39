package messages

import (
	"fmt"
	"strings"

	"msgassist/pkg/chat"
	"msgassist/pkg/ui/components/utils"
	"msgassist/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// AskMsg is sent when the user triggers the assistant on a message.
type AskMsg struct {
	Message chat.Message
}

// OpenSettingsMsg is sent when the user asks for the settings panel.
type OpenSettingsMsg struct{}

// MessageList shows a channel's history with a selection cursor.
type MessageList struct {
	messages []chat.Message
	selected int
	offset   int
	width    int
	height   int

	actionLabel string
}

// NewMessageList creates an empty list.
func NewMessageList() *MessageList {
	return &MessageList{}
}

// SetMessages replaces the history and selects the newest message.
func (ml *MessageList) SetMessages(msgs []chat.Message) {
	ml.messages = msgs
	ml.selected = len(msgs) - 1
	if ml.selected < 0 {
		ml.selected = 0
	}
	ml.ensureVisible()
}

// SetActionLabel sets the label shown for the ask action in the footer.
func (ml *MessageList) SetActionLabel(label string) {
	ml.actionLabel = label
}

// SetSize sets the list dimensions
func (ml *MessageList) SetSize(width, height int) {
	ml.width = width
	ml.height = height
	ml.ensureVisible()
}

// Selected returns the highlighted message.
func (ml *MessageList) Selected() (chat.Message, bool) {
	if ml.selected < 0 || ml.selected >= len(ml.messages) {
		return chat.Message{}, false
	}
	return ml.messages[ml.selected], true
}

// Len returns the number of messages.
func (ml *MessageList) Len() int {
	return len(ml.messages)
}

// Update handles keyboard input for the message list
func (ml *MessageList) Update(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		ml.move(-1)
	case "down", "j":
		ml.move(1)
	case "pgup":
		ml.move(-ml.pageSize())
	case "pgdown":
		ml.move(ml.pageSize())
	case "home", "g":
		ml.move(-len(ml.messages))
	case "end", "G":
		ml.move(len(ml.messages))
	case "a", "enter":
		target, ok := ml.Selected()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			return AskMsg{Message: target}
		}
	case "s":
		return func() tea.Msg {
			return OpenSettingsMsg{}
		}
	}
	return nil
}

func (ml *MessageList) move(delta int) {
	if len(ml.messages) == 0 {
		return
	}
	ml.selected = min(max(ml.selected+delta, 0), len(ml.messages)-1)
	ml.ensureVisible()
}

// pageSize is the number of message rows that fit, leaving room for the
// footer.
func (ml *MessageList) pageSize() int {
	rows := ml.height - 2
	if rows < 1 {
		return 1
	}
	return rows
}

func (ml *MessageList) ensureVisible() {
	rows := ml.pageSize()
	if ml.selected < ml.offset {
		ml.offset = ml.selected
	}
	if ml.selected >= ml.offset+rows {
		ml.offset = ml.selected - rows + 1
	}
	if ml.offset < 0 {
		ml.offset = 0
	}
}

// View renders the visible window of messages plus the key hints.
func (ml *MessageList) View() string {
	width := ml.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	if len(ml.messages) == 0 {
		sb.WriteString(styles.PlaceholderStyle.Render("No messages in this channel."))
		sb.WriteString("\n")
	}

	end := min(ml.offset+ml.pageSize(), len(ml.messages))
	for i := ml.offset; i < end; i++ {
		m := ml.messages[i]
		author := m.AuthorName() + ": "
		body := utils.TruncateToWidth(utils.SingleLine(m.Content), width-len([]rune(author))-2)
		if i == ml.selected {
			sb.WriteString(styles.SelectedStyle.Render(utils.TruncateToWidth("> "+author+body, width)))
		} else {
			sb.WriteString("  " + styles.AuthorStyle.Render(author) + styles.TextStyle.Render(body))
		}
		sb.WriteString("\n")
	}

	label := ml.actionLabel
	if label == "" {
		label = "Ask AI"
	}
	position := ""
	if len(ml.messages) > 0 {
		position = fmt.Sprintf("%d/%d • ", ml.selected+1, len(ml.messages))
	}
	hint := position + "↑↓ Navigate • a/Enter: " + label + " • s: Settings • q: Quit"
	sb.WriteString(styles.FooterStyle.Render(utils.TruncateToWidth(hint, width)))

	return sb.String()
}
