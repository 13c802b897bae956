package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chirpter-segmenter/internal/textutil"
)

// SplitterConfig carries the tunable parts of the sentence splitter. The
// abbreviation list is product configuration, not an invariant.
type SplitterConfig struct {
	// Abbreviations maps lowercase tokens (dots included for forms like
	// "ph.d") that must not end a sentence.
	Abbreviations map[string]bool
}

// DefaultSplitterConfig returns the consolidated abbreviation list: titles,
// units/acronyms, and common abbreviations.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		Abbreviations: map[string]bool{
			// Titles
			"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
			"rev": true, "sr": true, "jr": true, "capt": true, "gen": true,
			// Units and acronyms
			"u.s": true, "u.k": true, "ph.d": true, "a.m": true, "p.m": true,
			"b.c": true, "a.d": true,
			// Common abbreviations
			"etc": true, "vs": true, "st": true, "mt": true, "ave": true,
			"blvd": true, "dept": true, "est": true, "fig": true, "no": true,
			"approx": true, "inc": true, "ltd": true, "co": true,
			"e.g": true, "i.e": true,
		},
	}
}

type script int

const (
	scriptLatin script = iota
	scriptCJK
	scriptKorean
	scriptArabic
)

// resolveScript honors an explicit language hint for the non-Latin families
// and otherwise detects the dominant script from the text itself.
func resolveScript(text, lang string) script {
	switch lang {
	case "zh", "ja":
		return scriptCJK
	case "ko":
		return scriptKorean
	case "ar":
		return scriptArabic
	}
	return detectScript(text)
}

// detectScript classifies by Unicode ranges in priority order:
// CJK ideographs/kana, then Hangul, then Arabic, defaulting to Latin.
func detectScript(text string) script {
	switch {
	case textutil.ContainsHan(text) || textutil.ContainsKana(text):
		return scriptCJK
	case textutil.ContainsHangul(text):
		return scriptKorean
	case textutil.ContainsArabic(text):
		return scriptArabic
	}
	return scriptLatin
}

// SplitSentences splits text into an ordered list of trimmed, non-empty
// sentences using script-specific boundary rules. Non-empty input never
// yields an empty list: without a boundary the whole text is one sentence.
func SplitSentences(text, lang string, cfg SplitterConfig) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	switch resolveScript(text, lang) {
	case scriptCJK:
		sentences = splitOnTerminators(text, isCJKTerminator, false)
	case scriptKorean:
		sentences = splitOnTerminators(text, isLatinTerminator, true)
	case scriptArabic:
		sentences = splitOnTerminators(text, isArabicTerminator, false)
	default:
		sentences = splitLatin(text, cfg)
	}

	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

func isLatinTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCJKTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isArabicTerminator(r rune) bool {
	return r == '؟' || r == '.' || r == '!' || r == '?'
}

// splitOnTerminators cuts after each run of terminator runes, keeping the
// run attached to the preceding sentence. With requireSpace the run only
// counts as a boundary when whitespace (or end of text) follows.
func splitOnTerminators(text string, isTerm func(rune) bool, requireSpace bool) []string {
	var out []string
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerm(r) {
			i += size
			continue
		}
		j := i + size
		for j < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[j:])
			if !isTerm(r2) {
				break
			}
			j += s2
		}
		boundary := true
		if requireSpace && j < len(text) {
			r2, _ := utf8.DecodeRuneInString(text[j:])
			boundary = unicode.IsSpace(r2)
		}
		if boundary {
			if s := strings.TrimSpace(text[start:j]); s != "" {
				out = append(out, s)
			}
			start = j
		}
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitLatin applies the abbreviation-aware Latin rule: a run of .!? ends a
// sentence only at end of text or before an uppercase/opening-quote
// continuation, and never after a known abbreviation, inside a decimal
// number, or for a bare ellipsis.
func splitLatin(text string, cfg SplitterConfig) []string {
	var out []string
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		j := i
		for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		if latinBoundary(text, i, j, cfg) {
			if s := strings.TrimSpace(text[start:j]); s != "" {
				out = append(out, s)
			}
			start = j
		}
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// latinBoundary decides whether the terminator run text[i:j] ends a sentence.
func latinBoundary(text string, i, j int, cfg SplitterConfig) bool {
	run := text[i:j]

	// An ellipsis is never a boundary by itself.
	if j-i >= 3 && strings.Count(run, ".") == j-i {
		return false
	}

	// Decimal protection: a lone dot between digits.
	if run == "." && i > 0 && isASCIIDigit(text[i-1]) && j < len(text) && isASCIIDigit(text[j]) {
		return false
	}

	if j >= len(text) {
		return true
	}

	// Find the first non-space character after the run.
	k := j
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !unicode.IsSpace(r) {
			break
		}
		k += size
	}
	if k >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[k:])
	if !unicode.IsUpper(next) && !isOpeningQuote(next) {
		return false
	}

	tok := precedingToken(text, i)
	// Single letters before a dot are initials ("J. Smith", the first dot
	// of "U.S."), not sentence ends.
	if run == "." && utf8.RuneCountInString(tok) == 1 {
		return false
	}
	return !cfg.Abbreviations[tok]
}

// precedingToken extracts the lowercased word immediately before position i,
// keeping interior dots so forms like "Ph.D" and "U.S" match the list.
func precedingToken(text string, i int) string {
	end := i
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	return strings.ToLower(strings.Trim(text[start:end], "."))
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func isOpeningQuote(r rune) bool {
	switch r {
	case '"', '\'', '“', '‘', '«', '「', '『':
		return true
	}
	return false
}
