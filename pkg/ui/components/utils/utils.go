package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// TruncateToWidth truncates string to width with ellipsis
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return TrimToWidth(text, width)
	}
	return TrimToWidth(text, width-3) + "..."
}

// TrimToWidth trims string to width without ellipsis
func TrimToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	currentWidth := 0
	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			break
		}
		sb.WriteRune(r)
		currentWidth += runeWidth
	}
	return sb.String()
}

// SingleLine collapses newlines and tabs so a message fits on one row.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// WrapLines word-wraps text to width and splits it into lines. Escape
// sequences are preserved and do not count toward the width.
func WrapLines(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	wrapped := ansi.Wrap(text, width, "")
	return strings.Split(wrapped, "\n")
}

// MaskSecret replaces every rune of a secret with a bullet.
func MaskSecret(secret string) string {
	return strings.Repeat("•", utf8.RuneCountInString(secret))
}
