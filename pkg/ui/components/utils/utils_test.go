package utils

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"界界界", 5, "界..."},
	}
	for _, tt := range tests {
		if got := TruncateToWidth(tt.text, tt.width); got != tt.want {
			t.Errorf("TruncateToWidth(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("a\nb\t c  "); got != "a b c" {
		t.Fatalf("Unexpected %q", got)
	}
}

func TestWrapLines(t *testing.T) {
	lines := WrapLines("the quick brown fox jumps", 10)
	if len(lines) < 3 {
		t.Fatalf("Expected text to wrap, got %q", lines)
	}
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > 10 {
			t.Fatalf("Line %q exceeds width (%d)", line, w)
		}
	}
	if joined := strings.Join(strings.Fields(strings.Join(lines, " ")), " "); joined != "the quick brown fox jumps" {
		t.Fatalf("Wrapping lost words: %q", joined)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("gsk_ab"); got != "••••••" {
		t.Fatalf("Unexpected mask %q", got)
	}
	if MaskSecret("") != "" {
		t.Fatal("Expected empty mask for empty secret")
	}
}
