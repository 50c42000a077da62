package util

import (
	"testing"

	"github.com/fatih/color"
)

func TestColorOutput(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	tests := []struct {
		name         string
		text         string
		colorOptions []string
	}{
		{name: "single color", text: "12,34", colorOptions: []string{"red"}},
		{name: "multiple colors", text: "12,34", colorOptions: []string{"green", "bold"}},
		{name: "invalid color option", text: "12,34", colorOptions: []string{"invalid"}},
		{name: "empty text", text: "", colorOptions: []string{"yellow"}},
		{name: "no color options", text: "12,34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ColorOutput(tt.text, tt.colorOptions...); result != tt.text {
				t.Errorf("ColorOutput() = %q, want %q", result, tt.text)
			}
		})
	}
}

func TestColorOutputEnabled(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	result := ColorOutput("total", "red")
	if result == "total" {
		t.Error("Expected escape sequences around colored text")
	}
}
