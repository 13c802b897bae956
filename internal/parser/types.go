package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Segment is one addressable unit of parsed content. Segments are emitted in
// document order and are immutable once returned.
type Segment struct {
	// ID is an opaque, unique identifier assigned at creation.
	ID string
	// Order is the zero-based position within the containing content.
	Order int
	// Prefix holds structural markup recovered verbatim from the input
	// (heading marks, list markers, leading newlines). May be empty.
	Prefix string
	// Suffix holds trailing punctuation recovered verbatim from the input.
	Suffix string
	// Block maps language codes to this segment's per-language text.
	Block LanguageBlock
}

// LanguageBlock maps a language code to the segment text in that language.
// The primary language is always present; the secondary language is present
// only in bilingual modes.
type LanguageBlock map[string]LanguageValue

// LanguageValue is the per-language payload of a segment: either a single
// sentence string or an ordered phrase list, never both. It marshals to a
// JSON string in sentence mode and a JSON array in phrase mode.
type LanguageValue struct {
	text     string
	phrases  []string
	isPhrase bool
}

// TextValue wraps a sentence-mode string.
func TextValue(s string) LanguageValue {
	return LanguageValue{text: s}
}

// PhraseValue wraps an ordered phrase list. A nil slice is a legal empty list.
func PhraseValue(phrases []string) LanguageValue {
	return LanguageValue{phrases: phrases, isPhrase: true}
}

// IsPhrases reports whether the value carries a phrase list.
func (v LanguageValue) IsPhrases() bool { return v.isPhrase }

// Text returns the sentence-mode string (empty for phrase values).
func (v LanguageValue) Text() string { return v.text }

// Phrases returns the phrase list (nil for sentence values).
func (v LanguageValue) Phrases() []string { return v.phrases }

func (v LanguageValue) MarshalJSON() ([]byte, error) {
	if v.isPhrase {
		if v.phrases == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.phrases)
	}
	return json.Marshal(v.text)
}

func (v *LanguageValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		v.isPhrase = true
		v.text = ""
		return json.Unmarshal(data, &v.phrases)
	}
	v.isPhrase = false
	v.phrases = nil
	return json.Unmarshal(data, &v.text)
}

// segmentWire is the persisted shape: content is the ordered tuple
// [prefix, block, suffix] expected by downstream reconstruction.
type segmentWire struct {
	ID      string            `json:"id"`
	Order   int               `json:"order"`
	Content []json.RawMessage `json:"content"`
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string `json:"id"`
		Order   int    `json:"order"`
		Content [3]any `json:"content"`
	}{s.ID, s.Order, [3]any{s.Prefix, s.Block, s.Suffix}})
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var w segmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Content) != 3 {
		return fmt.Errorf("segment content: expected 3 elements, got %d", len(w.Content))
	}
	s.ID = w.ID
	s.Order = w.Order
	if err := json.Unmarshal(w.Content[0], &s.Prefix); err != nil {
		return fmt.Errorf("segment prefix: %w", err)
	}
	if err := json.Unmarshal(w.Content[1], &s.Block); err != nil {
		return fmt.Errorf("segment block: %w", err)
	}
	if err := json.Unmarshal(w.Content[2], &s.Suffix); err != nil {
		return fmt.Errorf("segment suffix: %w", err)
	}
	return nil
}
