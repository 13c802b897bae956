// Package interpolation shields template placeholders from the segmentation
// engine. Template-produced input may carry ${name} or printf-style
// variables whose dots and punctuation would confuse sentence splitting;
// they are swapped for neutral tokens before parsing and restored after.
//
// Brace placeholder forms ({0}, {{name}}) are deliberately not matched:
// curly braces are the engine's translation-annotation delimiters.
package interpolation

import (
	"fmt"
	"regexp"
	"strings"

	"chirpter-segmenter/internal/parser"
)

// Mapping stores the original placeholder and its safe replacement.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns to detect interpolation variables in template-generated text.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// Protect replaces all interpolation variables with safe __var_N__ tokens.
// Returns the safe string and a mapping to restore originals after parsing.
func Protect(text string) (string, []Mapping) {
	var allMatches []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			allMatches = append(allMatches, varMatch{
				start: loc[0],
				end:   loc[1],
				value: text[loc[0]:loc[1]],
			})
		}
	}

	if len(allMatches) == 0 {
		return text, nil
	}

	// Sort by position to ensure deterministic ordering.
	sortVarMatches(allMatches)

	// Remove overlapping matches (keep the first/longest).
	var filtered []varMatch
	lastEnd := -1
	for _, m := range allMatches {
		if m.start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.end
		}
	}

	var mappings []Mapping
	result := text
	// Replace in reverse order to preserve indices.
	for i := len(filtered) - 1; i >= 0; i-- {
		m := filtered[i]
		placeholder := fmt.Sprintf("__var_%d__", i+1)
		mappings = append([]Mapping{{
			Original:    m.value,
			Placeholder: placeholder,
			Index:       i + 1,
		}}, mappings...)
		result = result[:m.start] + placeholder + result[m.end:]
	}

	return result, mappings
}

// Restore replaces __var_N__ tokens back with the original variables.
func Restore(text string, mappings []Mapping) string {
	result := text
	for _, m := range mappings {
		result = strings.Replace(result, m.Placeholder, m.Original, 1)
	}
	return result
}

// RestoreSegments restores placeholders across a parsed segment list. The
// input segments are not mutated; restored copies are returned.
func RestoreSegments(segments []parser.Segment, mappings []Mapping) []parser.Segment {
	if len(mappings) == 0 {
		return segments
	}

	restored := make([]parser.Segment, len(segments))
	for i, seg := range segments {
		block := make(parser.LanguageBlock, len(seg.Block))
		for lang, v := range seg.Block {
			if v.IsPhrases() {
				phrases := make([]string, len(v.Phrases()))
				for j, p := range v.Phrases() {
					phrases[j] = restoreAll(p, mappings)
				}
				block[lang] = parser.PhraseValue(phrases)
			} else {
				block[lang] = parser.TextValue(restoreAll(v.Text(), mappings))
			}
		}
		seg.Block = block
		restored[i] = seg
	}
	return restored
}

// restoreAll replaces every occurrence: after segmentation a token may land
// in any segment, so per-mapping single replacement is not enough.
func restoreAll(text string, mappings []Mapping) string {
	result := text
	for _, m := range mappings {
		result = strings.ReplaceAll(result, m.Placeholder, m.Original)
	}
	return result
}

// sortVarMatches sorts by start position, then by length (descending) for overlaps.
func sortVarMatches(matches []varMatch) {
	for i := 1; i < len(matches); i++ {
		key := matches[i]
		j := i - 1
		for j >= 0 && (matches[j].start > key.start ||
			(matches[j].start == key.start && (matches[j].end-matches[j].start) < (key.end-key.start))) {
			matches[j+1] = matches[j]
			j--
		}
		matches[j+1] = key
	}
}
