package ui

import (
	"context"
	"log/slog"
	"strings"

	"msgassist/pkg/ai"
	"msgassist/pkg/assistant"
	"msgassist/pkg/chat"
	"msgassist/pkg/config"
	"msgassist/pkg/ui/components/askmodal"
	"msgassist/pkg/ui/components/messages"
	"msgassist/pkg/ui/components/settings"
	"msgassist/pkg/ui/components/utils"
	"msgassist/pkg/ui/render"
	"msgassist/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Model is the root Bubble Tea model: a channel's message list with the ask
// modal and the settings panel layered on top.
type Model struct {
	assistant  *assistant.Assistant
	channelID  string
	configPath string

	channel  chat.Channel
	list     *messages.MessageList
	modal    *askmodal.AskModal
	settings *settings.SettingsPanel

	width   int
	height  int
	ready   bool
	status  string
	loadErr error

	// askSeq identifies the current request; events from older ones are
	// dropped.
	askSeq int
	stream <-chan askEvent
	cancel context.CancelFunc
}

type historyLoadedMsg struct {
	channel  chat.Channel
	messages []chat.Message
	err      error
}

type sessionOpenedMsg struct {
	session *assistant.Session
}

type configSavedMsg struct {
	cfg config.Config
	err error
}

type askEvent struct {
	seq    int
	delta  string
	done   bool
	result ai.Result
}

// NewModel creates the UI for one channel.
func NewModel(a *assistant.Assistant, channelID, configPath string) Model {
	list := messages.NewMessageList()
	list.SetActionLabel(a.Action(chat.Message{}).Label)
	return Model{
		assistant:  a,
		channelID:  channelID,
		configPath: configPath,
		list:       list,
		modal:      askmodal.NewAskModal(),
		settings:   settings.NewSettingsPanel(),
	}
}

// Init loads the channel history.
func (m Model) Init() tea.Cmd {
	return loadHistory(m.assistant, m.channelID)
}

func loadHistory(a *assistant.Assistant, channelID string) tea.Cmd {
	return func() tea.Msg {
		ch, msgs, err := a.History(context.Background(), channelID)
		return historyLoadedMsg{channel: ch, messages: msgs, err: err}
	}
}

func openSession(a *assistant.Assistant, target chat.Message) tea.Cmd {
	return func() tea.Msg {
		return sessionOpenedMsg{session: a.Open(context.Background(), target)}
	}
}

func saveConfig(cfg config.Config, path string) tea.Cmd {
	return func() tea.Msg {
		return configSavedMsg{cfg: cfg, err: config.Save(path, cfg)}
	}
}

// startAsk runs the request in the background and streams its progress on
// the returned channel. Sends stop once ctx is canceled so an abandoned
// request never blocks.
func startAsk(ctx context.Context, session *assistant.Session, prompt string, seq int) <-chan askEvent {
	ch := make(chan askEvent, 16)
	go func() {
		defer close(ch)
		send := func(ev askEvent) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
		result := session.AskStream(ctx, prompt, func(delta string) {
			send(askEvent{seq: seq, delta: delta})
		})
		send(askEvent{seq: seq, done: true, result: result})
	}()
	return ch
}

func waitForAsk(ch <-chan askEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Update handles messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, render.BodyHeight(msg.Height))
		m.modal.SetSize(msg.Width, msg.Height)
		m.settings.SetSize(msg.Width, msg.Height)
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			slog.Error("history_load_error", "channel_id", m.channelID, "error", msg.err)
			return m, nil
		}
		m.loadErr = nil
		m.channel = msg.channel
		m.list.SetMessages(msg.messages)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		switch {
		case m.settings.IsVisible():
			m.settings.HandlePaste(msg.Content)
		case m.modal.IsVisible():
			m.modal.HandlePaste(msg.Content)
		}
		return m, nil

	case messages.AskMsg:
		m.status = ""
		return m, openSession(m.assistant, msg.Message)

	case sessionOpenedMsg:
		m.modal.Show(msg.session, m.assistant.Config().Settings().DisplayName)
		m.modal.SetSize(m.width, m.height)
		return m, nil

	case askmodal.SubmitMsg:
		session := m.modal.Session()
		if session == nil {
			return m, nil
		}
		m.cancelAsk()
		ctx, cancel := context.WithCancel(context.Background())
		m.askSeq++
		m.cancel = cancel
		m.stream = startAsk(ctx, session, msg.Prompt, m.askSeq)
		return m, waitForAsk(m.stream)

	case askEvent:
		if msg.seq != m.askSeq || m.stream == nil {
			return m, nil
		}
		if !msg.done {
			m.modal.AppendDelta(msg.delta)
			return m, waitForAsk(m.stream)
		}
		m.modal.Finish(msg.result)
		m.cancelAsk()
		return m, nil

	case askmodal.CloseMsg:
		m.cancelAsk()
		return m, nil

	case messages.OpenSettingsMsg:
		m.settings.Show(m.assistant.Config(), m.configPath)
		m.settings.SetSize(m.width, m.height)
		return m, nil

	case settings.SettingsSaveMsg:
		return m, saveConfig(msg.Config, msg.ConfigPath)

	case configSavedMsg:
		if msg.err != nil {
			slog.Error("settings_save_error", "error", msg.err)
			m.status = "Failed to save settings: " + msg.err.Error()
			return m, nil
		}
		m.assistant.SetConfig(msg.cfg)
		m.list.SetActionLabel(m.assistant.Action(chat.Message{}).Label)
		m.status = "Settings saved"
		slog.Info("settings_saved", "path", m.configPath)
		return m, nil

	case settings.SettingsCloseMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancelAsk()
		return m, tea.Quit
	}

	switch {
	case m.settings.IsVisible():
		return m, m.settings.Update(msg)
	case m.modal.IsVisible():
		return m, m.modal.Update(msg)
	}

	switch msg.String() {
	case "q":
		m.cancelAsk()
		return m, tea.Quit
	case "r":
		m.status = ""
		return m, loadHistory(m.assistant, m.channelID)
	}
	return m, m.list.Update(msg)
}

// cancelAsk aborts the request in flight, if any.
func (m *Model) cancelAsk() {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.stream = nil
	m.askSeq++
}

func (m Model) header() string {
	name := m.channel.Name
	if name == "" {
		name = m.channelID
	}
	if m.channel.Private {
		name = "@" + name
	} else {
		name = "#" + name
	}
	text := "msgassist • " + name
	if m.status != "" {
		text += " • " + m.status
	}
	width := max(m.width, 1)
	return styles.HeaderStyle.Width(width).Render(utils.TruncateToWidth(text, max(width-2, 1)))
}

// render composes the screen as a string.
func (m Model) render() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	if m.loadErr != nil {
		body = styles.ErrorStyle.Render("Could not load channel: "+m.loadErr.Error()) + "\n" +
			styles.FooterStyle.Render("r: Retry • q: Quit")
	} else {
		body = m.list.View()
	}
	base := strings.Join([]string{m.header(), body}, "\n")

	layers := []*lipgloss.Layer{lipgloss.NewLayer(base).Z(0)}
	layers = render.AddOverlay(layers, m.modal.View(), m.width, m.height, 1)
	layers = render.AddOverlay(layers, m.settings.View(), m.width, m.height, 2)
	if len(layers) == 1 {
		return base
	}
	return lipgloss.NewCompositor(layers...).Render()
}

// View renders the full-screen UI.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}
