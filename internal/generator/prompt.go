package generator

import (
	"fmt"
	"strings"

	"chirpter-segmenter/internal/parser"
)

// PromptBuilder constructs system and user prompts that make the model emit
// the exact annotated format the segmentation engine consumes.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const systemPrompt = `You are a story writer for a language-learning reading app.

Rules:
1. Write engaging, level-appropriate prose on the requested topic.
2. Markdown structure is allowed: headings (#), blockquotes (>), list items (-, *, 1.), blank lines between paragraphs.
3. Follow the requested language format EXACTLY (see the user prompt).
4. Curly braces { } are reserved for translations. Never use them for anything else.
5. Output ONLY the story text, nothing else.
6. Do NOT add explanations, notes, or extra text.`

// GetSystemPrompt returns the system prompt for story generation.
func (pb *PromptBuilder) GetSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt constructs the user prompt for a topic and origin. The
// format instructions mirror the three content shapes the engine parses.
func (pb *PromptBuilder) BuildUserPrompt(topic string, o parser.Origin) string {
	var sb strings.Builder

	switch o.Mode() {
	case parser.ModeBilingualSentence:
		sb.WriteString(fmt.Sprintf(
			"Write every sentence in %q, immediately followed by its %q translation in curly braces, then the sentence punctuation.\n",
			o.Primary, o.Secondary))
		sb.WriteString("Example: Hello world {translated sentence}. Next sentence {next translation}.\n")
	case parser.ModeBilingualPhrase:
		sb.WriteString(fmt.Sprintf(
			"Write each line as comma-separated phrases in %q, followed by one pair of curly braces holding the %q translation of those phrases, comma-separated in the same order.\n",
			o.Primary, o.Secondary))
		sb.WriteString("Example: red, blue, green {first translation, second translation, third translation}\n")
		sb.WriteString("Use exactly one pair of braces per line.\n")
	default:
		sb.WriteString(fmt.Sprintf("Write entirely in %q. Do not use curly braces.\n", o.Primary))
	}

	sb.WriteString(fmt.Sprintf("\nTopic: %s", topic))
	return sb.String()
}
