package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// forceColor enables color output for the duration of the test.
func forceColor(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "")
	_ = os.Unsetenv("NO_COLOR")
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })
}

func TestFormatterWithColor(t *testing.T) {
	forceColor(t)

	result := Code.Sprint("dotsync init")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
	if !Enabled() {
		t.Error("Enabled() = false with color forced on")
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "dotsync save", "`dotsync save`"},
		{"Path has no decoration", Path, "~/.bashrc", "~/.bashrc"},
		{"Success has no decoration", Success, "✓", "✓"},
		{"Error has no decoration", Error, "✗", "✗"},
		{"Warning has no decoration", Warning, "⚠", "⚠"},
		{"Info has no decoration", Info, "→", "→"},
		{"Highlight adds quotes", Highlight, "linux", "'linux'"},
		{"Muted adds parentheses", Muted, "skipped", "(skipped)"},
		{"Added has no decoration", Added, "+x", "+x"},
		{"Removed has no decoration", Removed, "-x", "-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}

	if Enabled() {
		t.Error("Enabled() = true with NO_COLOR set")
	}
}

func TestFormatterSprintf(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := Code.Sprintf("dotsync %s", "load")
	if want := "`dotsync load`"; result != want {
		t.Errorf("Code.Sprintf() = %q, want %q", result, want)
	}
}
