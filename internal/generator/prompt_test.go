package generator

import (
	"strings"
	"testing"

	"chirpter-segmenter/internal/parser"
)

func TestBuildUserPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	tests := []struct {
		descriptor string
		contains   []string
		excludes   string
	}{
		{"en", []string{`"en"`, "Topic: space travel"}, "curly braces holding"},
		{"en-vi", []string{`"en"`, `"vi"`, "curly braces"}, "comma-separated"},
		{"en-vi-ph", []string{"comma-separated phrases", "one pair of braces per line"}, ""},
	}

	for _, tt := range tests {
		prompt := pb.BuildUserPrompt("space travel", parser.ParseOrigin(tt.descriptor))
		for _, want := range tt.contains {
			if !strings.Contains(prompt, want) {
				t.Errorf("prompt for %q missing %q:\n%s", tt.descriptor, want, prompt)
			}
		}
		if tt.excludes != "" && strings.Contains(prompt, tt.excludes) {
			t.Errorf("prompt for %q should not contain %q", tt.descriptor, tt.excludes)
		}
	}
}
