package settings

import (
	"fmt"
	"strconv"
	"strings"

	"msgassist/pkg/config"
	"msgassist/pkg/ui/components/utils"
	"msgassist/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// SettingField represents a single editable setting
type SettingField struct {
	Label  string
	Key    string
	Value  string
	Type   string // "string", "int", "temperature"
	Masked bool   // For sensitive fields like API key
}

// SettingsPanel displays and edits the user-facing configuration
type SettingsPanel struct {
	config     config.Config
	configPath string
	fields     []SettingField
	selected   int
	editing    bool
	editValue  string
	editCursor int
	changed    bool
	width      int
	height     int
	visible    bool
	errorMsg   string
}

// NewSettingsPanel creates a new settings panel
func NewSettingsPanel() *SettingsPanel {
	return &SettingsPanel{}
}

// Show displays the settings panel with the given config
func (sp *SettingsPanel) Show(cfg config.Config, configPath string) {
	sp.config = cfg
	sp.configPath = configPath
	sp.visible = true
	sp.selected = 0
	sp.editing = false
	sp.changed = false
	sp.errorMsg = ""
	sp.buildFields()
}

func (sp *SettingsPanel) buildFields() {
	temperature := ""
	if sp.config.Temperature != nil {
		temperature = strconv.FormatFloat(*sp.config.Temperature, 'f', -1, 64)
	}

	sp.fields = []SettingField{
		{Label: "Display Name", Key: "display_name", Value: sp.config.DisplayName, Type: "string"},
		{Label: "API Key", Key: "api_key", Value: sp.config.APIKey, Type: "string", Masked: true},
		{Label: "Temperature", Key: "temperature", Value: temperature, Type: "temperature"},
		{Label: "API Timeout (sec)", Key: "api_timeout", Value: strconv.Itoa(sp.config.APITimeoutSeconds), Type: "int"},
	}
}

// Hide hides the settings panel
func (sp *SettingsPanel) Hide() {
	sp.visible = false
	sp.editing = false
}

// IsVisible returns whether the panel is visible
func (sp *SettingsPanel) IsVisible() bool {
	return sp.visible
}

// SetSize sets the panel dimensions
func (sp *SettingsPanel) SetSize(width, height int) {
	sp.width = width
	sp.height = height
}

// HasChanges returns whether settings have been modified
func (sp *SettingsPanel) HasChanges() bool {
	return sp.changed
}

// GetConfig returns the edited config
func (sp *SettingsPanel) GetConfig() config.Config {
	return sp.config
}

// SettingsSaveMsg is sent when settings should be saved
type SettingsSaveMsg struct {
	Config     config.Config
	ConfigPath string
}

// SettingsCloseMsg is sent when the panel closes without changes
type SettingsCloseMsg struct{}

// Update handles keyboard input for the settings panel
func (sp *SettingsPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if sp.editing {
		return sp.handleEditMode(msg)
	}

	switch msg.String() {
	case "up":
		if sp.selected > 0 {
			sp.selected--
		}
		return nil

	case "down":
		if sp.selected < len(sp.fields)-1 {
			sp.selected++
		}
		return nil

	case "enter":
		field := sp.fields[sp.selected]
		sp.editing = true
		sp.editValue = field.Value
		sp.editCursor = len([]rune(sp.editValue))
		return nil

	case "esc":
		if sp.changed {
			return sp.saveAndClose()
		}
		sp.Hide()
		return func() tea.Msg {
			return SettingsCloseMsg{}
		}

	case "s":
		if sp.changed {
			return sp.saveAndClose()
		}
		return nil
	}

	return nil
}

// handleEditMode handles input when editing a field
func (sp *SettingsPanel) handleEditMode(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.Key()

	switch msg.String() {
	case "enter":
		field := &sp.fields[sp.selected]
		value := strings.TrimSpace(sp.editValue)
		if err := validateValue(field.Type, value); err != nil {
			sp.errorMsg = field.Label + ": " + err.Error()
		} else {
			field.Value = value
			sp.changed = true
			sp.applyField(field)
			sp.errorMsg = ""
		}
		sp.editing = false
		return nil

	case "esc":
		sp.editing = false
		sp.errorMsg = ""
		return nil

	case "backspace":
		runes := []rune(sp.editValue)
		sp.editCursor = min(sp.editCursor, len(runes))
		if sp.editCursor > 0 {
			runes = append(runes[:sp.editCursor-1], runes[sp.editCursor:]...)
			sp.editCursor--
			sp.editValue = string(runes)
		}
		return nil

	case "delete":
		runes := []rune(sp.editValue)
		sp.editCursor = min(sp.editCursor, len(runes))
		if sp.editCursor < len(runes) {
			runes = append(runes[:sp.editCursor], runes[sp.editCursor+1:]...)
			sp.editValue = string(runes)
		}
		return nil

	case "left":
		if sp.editCursor > 0 {
			sp.editCursor--
		}
		return nil

	case "right":
		if sp.editCursor < len([]rune(sp.editValue)) {
			sp.editCursor++
		}
		return nil

	case "home":
		sp.editCursor = 0
		return nil

	case "end":
		sp.editCursor = len([]rune(sp.editValue))
		return nil
	}

	if key.Text != "" {
		sp.insertText(key.Text)
	}
	return nil
}

// HandlePaste inserts pasted text into the field being edited.
func (sp *SettingsPanel) HandlePaste(content string) {
	if sp.visible && sp.editing {
		sp.insertText(content)
	}
}

func (sp *SettingsPanel) insertText(text string) {
	filtered := make([]rune, 0, len(text))
	for _, r := range text {
		if r != '\n' && r != '\r' {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return
	}
	runes := []rune(sp.editValue)
	sp.editCursor = min(sp.editCursor, len(runes))
	runes = append(runes[:sp.editCursor], append(filtered, runes[sp.editCursor:]...)...)
	sp.editCursor += len(filtered)
	sp.editValue = string(runes)
}

func validateValue(fieldType, value string) error {
	switch fieldType {
	case "int":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not a whole number")
		}
		if v < 0 {
			return fmt.Errorf("must not be negative")
		}
	case "temperature":
		// Empty falls back to the default.
		if value == "" {
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("must be between 0 and 1")
		}
	}
	return nil
}

// applyField updates the config with the field value
func (sp *SettingsPanel) applyField(field *SettingField) {
	switch field.Key {
	case "display_name":
		sp.config.DisplayName = field.Value
	case "api_key":
		sp.config.APIKey = field.Value
	case "temperature":
		if field.Value == "" {
			sp.config.Temperature = nil
		} else if v, err := strconv.ParseFloat(field.Value, 64); err == nil {
			sp.config.Temperature = &v
		}
	case "api_timeout":
		if v, err := strconv.Atoi(field.Value); err == nil {
			sp.config.APITimeoutSeconds = v
		}
	}
}

func (sp *SettingsPanel) saveAndClose() tea.Cmd {
	cfg := sp.config
	path := sp.configPath
	sp.Hide()
	return func() tea.Msg {
		return SettingsSaveMsg{Config: cfg, ConfigPath: path}
	}
}

func (sp *SettingsPanel) displayValue(field SettingField) string {
	switch {
	case field.Masked && field.Value != "":
		return utils.MaskSecret(field.Value)
	case field.Key == "temperature" && field.Value == "":
		return styles.PlaceholderStyle.Render(fmt.Sprintf("default (%g)", config.DefaultTemperature))
	case field.Value == "":
		return styles.PlaceholderStyle.Render("not set")
	}
	return field.Value
}

// View renders the settings panel
func (sp *SettingsPanel) View() string {
	if !sp.visible {
		return ""
	}

	width := sp.width
	if width <= 0 {
		width = 80
	}
	available := max(width-2, 1)
	boxWidth := min(available, 80)
	boxWidth = max(boxWidth, min(50, available))

	var content strings.Builder

	content.WriteString(styles.TitleStyle.Render("Settings"))
	content.WriteString("\n\n")

	for i, field := range sp.fields {
		label := styles.LabelStyle.Render(field.Label + ":")

		var value string
		if sp.editing && i == sp.selected {
			value = styles.EditStyle.Render(renderEditValue(sp.editValue, sp.editCursor))
		} else {
			value = sp.displayValue(field)
		}

		var line string
		switch {
		case i == sp.selected && sp.editing:
			line = "▶ " + label + " " + value
		case i == sp.selected:
			labelText := fmt.Sprintf("%-20s", field.Label+":")
			line = styles.SelectedStyle.Render("  " + labelText + " " + value + " ")
		default:
			line = "  " + label + " " + styles.ValueStyle.Render(value)
		}
		content.WriteString(line + "\n")
	}

	if sp.errorMsg != "" {
		content.WriteString("\n")
		content.WriteString(styles.ErrorStyle.Render("⚠ " + sp.errorMsg))
	}

	content.WriteString("\n\n")
	if sp.editing {
		content.WriteString(styles.FooterStyle.Render("Enter: Confirm • Esc: Cancel"))
	} else {
		hint := "↑↓ Navigate • Enter: Edit • Esc: Close"
		if sp.changed {
			hint = "↑↓ Navigate • Enter: Edit • s: Save • Esc: Save & Close"
		}
		content.WriteString(styles.FooterStyle.Render(hint))
	}

	return styles.BoxStyle.Width(boxWidth).Render(content.String())
}

func renderEditValue(value string, cursor int) string {
	runes := []rune(value)
	cursor = min(max(cursor, 0), len(runes))
	withCursor := make([]rune, 0, len(runes)+1)
	withCursor = append(withCursor, runes[:cursor]...)
	withCursor = append(withCursor, '█')
	withCursor = append(withCursor, runes[cursor:]...)
	return string(withCursor)
}
