package askmodal

import (
	"fmt"
	"os"
	"strings"

	"msgassist/pkg/ai"
	"msgassist/pkg/assistant"
	"msgassist/pkg/chat"
	"msgassist/pkg/ui/components/utils"
	"msgassist/pkg/ui/styles"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

const (
	ButtonAsk        = "Ask AI"
	ButtonProcessing = "Processing..."
	ButtonAskAgain   = "Ask AI Again"

	limitedNotice = "Limited Context: the conversation could not be read. Ask a question about this message."
	copiedNotice  = "Copied to clipboard"

	maxModalWidth  = 100
	minResponseRow = 3
)

type askState int

const (
	stateIdle askState = iota
	stateProcessing
	stateAnswered
)

// Focus selects which part of the modal receives keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusResponse
)

// SubmitMsg asks the host to start a completion for the open session.
type SubmitMsg struct {
	Prompt string
}

// CloseMsg is sent when the modal closes. Any request in flight should be
// canceled.
type CloseMsg struct{}

// AskModal is the dialog opened from a message's "ask AI" action.
type AskModal struct {
	session *assistant.Session
	title   string

	textarea textarea.Model
	focus    Focus
	state    askState

	response string
	scrollY  int
	notice   string

	visible bool
	width   int
	height  int
}

// NewAskModal creates a hidden modal.
func NewAskModal() *AskModal {
	return &AskModal{textarea: newTextarea()}
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about this message (optional)"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	return ta
}

// Show opens the modal for session. title is the configured display name.
func (am *AskModal) Show(session *assistant.Session, title string) {
	am.session = session
	am.title = title
	am.visible = true
	am.state = stateIdle
	am.response = ""
	am.scrollY = 0
	am.notice = ""

	am.textarea = newTextarea()
	if session != nil && session.Limited {
		am.textarea.Placeholder = "Ask a question about this message"
	}
	am.textarea.SetWidth(am.contentWidth())
	am.textarea.Focus()
	am.focus = FocusInput
}

// Hide closes the modal without notifying the host.
func (am *AskModal) Hide() {
	am.visible = false
	am.session = nil
	am.textarea.Blur()
}

// IsVisible returns whether the modal is open.
func (am *AskModal) IsVisible() bool {
	return am.visible
}

// Session returns the session the modal was opened with.
func (am *AskModal) Session() *assistant.Session {
	return am.session
}

// SetSize sets the available screen size.
func (am *AskModal) SetSize(width, height int) {
	am.width = width
	am.height = height
	am.textarea.SetWidth(am.contentWidth())
	// Rewrapping can shorten the answer below the current offset.
	am.scrollY = min(am.scrollY, am.maxScroll())
}

// ButtonLabel reflects the request lifecycle.
func (am *AskModal) ButtonLabel() string {
	switch am.state {
	case stateProcessing:
		return ButtonProcessing
	case stateAnswered:
		return ButtonAskAgain
	default:
		return ButtonAsk
	}
}

// Processing reports whether a request is in flight.
func (am *AskModal) Processing() bool {
	return am.state == stateProcessing
}

// Response returns the text currently shown in the answer area.
func (am *AskModal) Response() string {
	return am.response
}

// Prompt returns the current question text.
func (am *AskModal) Prompt() string {
	return am.textarea.Value()
}

// Focused returns the focused area.
func (am *AskModal) Focused() Focus {
	return am.focus
}

// AppendDelta adds a streamed fragment to the answer.
func (am *AskModal) AppendDelta(delta string) {
	if am.state != stateProcessing {
		return
	}
	am.response += delta
	am.scrollToBottom()
}

// Finish shows the final result. Failures replace any partial answer.
func (am *AskModal) Finish(result ai.Result) {
	am.state = stateAnswered
	am.response = result.Display()
	am.scrollY = 0
	am.setFocus(FocusResponse)
}

// Update handles keyboard input for the modal
func (am *AskModal) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !am.visible {
		return nil
	}

	switch msg.String() {
	case "esc":
		am.Hide()
		return func() tea.Msg {
			return CloseMsg{}
		}
	case "ctrl+s":
		return am.submit()
	case "tab":
		if am.focus == FocusInput {
			am.setFocus(FocusResponse)
		} else {
			am.setFocus(FocusInput)
		}
		return nil
	}

	if am.focus == FocusInput {
		am.notice = ""
		var cmd tea.Cmd
		am.textarea, cmd = am.textarea.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "y":
		return am.copyResponse()
	case "up":
		am.scroll(-1)
	case "down":
		am.scroll(1)
	case "pgup":
		am.scroll(-am.responseRows())
	case "pgdown":
		am.scroll(am.responseRows())
	}
	return nil
}

// HandlePaste inserts pasted text into the question.
func (am *AskModal) HandlePaste(content string) {
	if am.visible && am.focus == FocusInput {
		am.textarea.InsertString(content)
	}
}

func (am *AskModal) submit() tea.Cmd {
	if am.state == stateProcessing {
		return nil
	}
	prompt := am.textarea.Value()
	am.state = stateProcessing
	am.response = ""
	am.scrollY = 0
	am.notice = ""
	return func() tea.Msg {
		return SubmitMsg{Prompt: prompt}
	}
}

func (am *AskModal) setFocus(f Focus) {
	am.focus = f
	if f == FocusInput {
		am.textarea.Focus()
	} else {
		am.textarea.Blur()
	}
}

func (am *AskModal) copyResponse() tea.Cmd {
	if am.response == "" || am.state == stateProcessing {
		return nil
	}
	text := am.response
	am.notice = copiedNotice
	return func() tea.Msg {
		_, _ = fmt.Fprint(os.Stdout, osc52.New(text))
		return nil
	}
}

func (am *AskModal) modalWidth() int {
	width := am.width
	if width <= 0 {
		width = 80
	}
	width -= 4
	if width > maxModalWidth {
		width = maxModalWidth
	}
	if width < 20 {
		width = 20
	}
	return width
}

// contentWidth is the modal width minus border and padding.
func (am *AskModal) contentWidth() int {
	w := am.modalWidth() - 6
	if w < 1 {
		return 1
	}
	return w
}

func (am *AskModal) responseLines() []string {
	if am.response == "" {
		return nil
	}
	return utils.WrapLines(am.response, am.contentWidth()-4)
}

// responseRows is the height of the answer area: what is left of the screen
// after the fixed parts of the modal.
func (am *AskModal) responseRows() int {
	height := am.height
	if height <= 0 {
		height = 24
	}
	fixed := 16
	if am.session != nil {
		fixed += len(am.session.Context)
		if am.session.Limited {
			fixed += 2
		}
	}
	rows := height - fixed
	if rows < minResponseRow {
		rows = minResponseRow
	}
	return rows
}

func (am *AskModal) maxScroll() int {
	n := len(am.responseLines()) - am.responseRows()
	if n < 0 {
		return 0
	}
	return n
}

func (am *AskModal) scroll(delta int) {
	am.scrollY = min(max(am.scrollY+delta, 0), am.maxScroll())
}

func (am *AskModal) scrollToBottom() {
	am.scrollY = am.maxScroll()
}

func renderMessageLine(m chat.Message, width int) string {
	return utils.TruncateToWidth(utils.SingleLine(chat.FormatMessage(m)), width)
}

// View renders the modal
func (am *AskModal) View() string {
	if !am.visible {
		return ""
	}

	width := am.contentWidth()
	var sb strings.Builder

	sb.WriteString(styles.TitleStyle.Render(utils.TruncateToWidth(am.title, width)))
	sb.WriteString("\n\n")

	if am.session != nil {
		if am.session.Limited {
			for _, line := range utils.WrapLines(limitedNotice, width) {
				sb.WriteString(styles.WarningStyle.Render(line) + "\n")
			}
			sb.WriteString("\n")
		}
		for _, m := range am.session.Context {
			sb.WriteString(styles.TextMutedStyle.Render(renderMessageLine(m, width)) + "\n")
		}
		for _, line := range utils.WrapLines(chat.FormatMessage(am.session.Target), width) {
			sb.WriteString(styles.TextBoldStyle.Render(line) + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(am.textarea.View())
	sb.WriteString("\n\n")

	if am.state == stateProcessing {
		sb.WriteString(styles.ButtonBusyStyle.Render(am.ButtonLabel()))
	} else {
		sb.WriteString(styles.ButtonStyle.Render(am.ButtonLabel()))
	}
	sb.WriteString("\n")

	if lines := am.responseLines(); len(lines) > 0 {
		start := min(max(am.scrollY, 0), len(lines))
		end := min(start+am.responseRows(), len(lines))
		box := styles.ResponseBoxStyle
		if am.focus == FocusResponse {
			box = styles.ResponseBoxFocusedStyle
		}
		sb.WriteString(box.Width(width).Render(strings.Join(lines[start:end], "\n")))
		sb.WriteString("\n")
	}

	if am.notice != "" {
		sb.WriteString(styles.SuccessStyle.Render(am.notice) + "\n")
	}

	hint := "Ctrl+S: " + am.ButtonLabel() + " • Tab: Focus answer • Esc: Close"
	if am.focus == FocusResponse {
		hint = "Ctrl+S: " + am.ButtonLabel() + " • ↑↓ Scroll • y: Copy • Tab: Edit question • Esc: Close"
	}
	sb.WriteString(styles.FooterStyle.Render(utils.TruncateToWidth(hint, width)))

	return styles.BoxStyle.Width(am.modalWidth()).Render(sb.String())
}
