package parser

import "strings"

// isPhraseSeparator reports whether r separates clauses: comma, semicolon or
// em-dash, in both ASCII and full-width forms.
func isPhraseSeparator(r rune) bool {
	switch r {
	case ',', ';', '—', '，', '、', '；':
		return true
	}
	return false
}

// SplitPhrases splits text on clause-separator punctuation into an ordered
// list of trimmed, non-empty phrases.
func SplitPhrases(text string) []string {
	parts := strings.FieldsFunc(text, isPhraseSeparator)
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	if len(phrases) == 0 {
		return nil
	}
	return phrases
}
