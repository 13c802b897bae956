package parser

import (
	"strings"
	"unicode/utf8"
)

// Trim is the result of peeling structural markup off a line: a recognized
// leading marker, the payload text, and a trailing punctuation run.
type Trim struct {
	Prefix  string
	Content string
	Suffix  string
}

// ExtractTrim splits one line into prefix, payload and suffix. The prefix is
// a run of leading newlines plus at most one structural marker (heading,
// blockquote, list). The suffix is a trailing run of sentence punctuation and
// closing brackets/quotes; a paragraph break contributes at most one newline.
func ExtractTrim(line string) Trim {
	prefix, i := consumePrefix(line, 0)
	body := line[i:]

	newlines := 0
	for strings.HasSuffix(body, "\n") {
		body = body[:len(body)-1]
		newlines++
	}

	end := len(body)
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(body[:end])
		if !isSuffixRune(r) {
			break
		}
		end -= size
	}

	suffix := body[end:]
	if newlines >= 2 {
		suffix += "\n"
	}

	return Trim{
		Prefix:  prefix,
		Content: strings.TrimSpace(body[:end]),
		Suffix:  suffix,
	}
}

// consumePrefix reads a structural prefix at position i: any run of newlines
// followed by at most one structural marker. Returns the prefix and the
// position just past it.
func consumePrefix(text string, i int) (string, int) {
	start := i
	for i < len(text) && text[i] == '\n' {
		i++
	}
	i += matchMarker(text[i:])
	return text[start:i], i
}

// matchMarker returns the byte length of a structural marker at the start of
// s, or 0. Recognized: headings (#×1-6), blockquotes (>), unordered list
// bullets (-, *, +) and ordered list numbers (digits + dot), each followed by
// at least one space or tab. First match wins; only one marker per line.
func matchMarker(s string) int {
	if s == "" {
		return 0
	}

	switch s[0] {
	case '#':
		n := 0
		for n < len(s) && s[n] == '#' {
			n++
		}
		if n <= 6 {
			if w := markerSpacing(s[n:]); w > 0 {
				return n + w
			}
		}
	case '>', '-', '*', '+':
		if w := markerSpacing(s[1:]); w > 0 {
			return 1 + w
		}
	default:
		n := 0
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		if n > 0 && n < len(s) && s[n] == '.' {
			if w := markerSpacing(s[n+1:]); w > 0 {
				return n + 1 + w
			}
		}
	}
	return 0
}

// markerSpacing returns the length of the space/tab run at the start of s,
// or 0 if there is none. Markers require trailing whitespace.
func markerSpacing(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// consumeSuffix reads a trailing punctuation run forward from position i.
// When the run is followed by a paragraph break, exactly one newline is folded
// into the suffix; the remaining newlines are left for the next prefix.
func consumeSuffix(text string, i int) (string, int) {
	start := i
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isSuffixRune(r) {
			break
		}
		i += size
	}
	suffix := text[start:i]
	if i+1 < len(text) && text[i] == '\n' && text[i+1] == '\n' {
		suffix += "\n"
		i++
	}
	return suffix, i
}

// isSuffixRune reports whether r belongs to the trailing punctuation set.
// The annotation delimiters '{' and '}' are never part of a suffix.
func isSuffixRune(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '…',
		')', ']', '»', '"', '\'', '”', '’',
		'。', '！', '？', '，', '；', '：', '、',
		'）', '】', '」', '』', '؟', '؛':
		return true
	}
	return false
}
