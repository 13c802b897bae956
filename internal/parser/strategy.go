package parser

import "strings"

// The three strategies share one contract: whole raw text plus parsed origin
// in, ordered segment list out. The set is closed, so dispatch is a single
// switch in the facade rather than an interface.

func (e *Engine) runStrategy(rawText string, o Origin) []Segment {
	switch o.Mode() {
	case ModeBilingualSentence:
		return e.bilingualSentence(rawText, o)
	case ModeBilingualPhrase:
		return e.bilingualPhrase(rawText, o)
	default:
		return e.monolingual(rawText, o)
	}
}

// monolingual trims each line and splits the payload into sentences. The
// line's prefix goes to its first sentence and the suffix to its last. A
// paragraph break leaves one newline on the previous suffix and carries the
// rest into the next segment's prefix.
func (e *Engine) monolingual(rawText string, o Origin) []Segment {
	var segs []Segment
	blanks := 0
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}

		lead := ""
		if blanks > 0 {
			if len(segs) > 0 {
				segs[len(segs)-1].Suffix += "\n"
			}
			lead = strings.Repeat("\n", blanks)
		}
		blanks = 0

		t := ExtractTrim(line)
		// Sentence terminators stay attached to their sentences, so the
		// punctuation run rejoins the payload before splitting; only a
		// paragraph newline remains a suffix.
		punct, nl := t.Suffix, ""
		if strings.HasSuffix(punct, "\n") {
			punct, nl = punct[:len(punct)-1], "\n"
		}
		sentences := SplitSentences(t.Content+punct, o.Primary, e.splitter)
		for si, sentence := range sentences {
			seg := Segment{
				ID:    e.newID(),
				Order: len(segs),
				Block: LanguageBlock{o.Primary: TextValue(sentence)},
			}
			if si == 0 {
				seg.Prefix = lead + t.Prefix
			}
			if si == len(sentences)-1 {
				seg.Suffix = nl
			}
			segs = append(segs, seg)
		}
	}
	return segs
}

// bilingualSentence scans the whole text for annotation pairs; each unit is
// already one sentence-level pairing, so no further splitting happens.
func (e *Engine) bilingualSentence(rawText string, o Origin) []Segment {
	units := ScanDualLanguage(rawText)
	segs := make([]Segment, 0, len(units))
	for _, u := range units {
		segs = append(segs, Segment{
			ID:     e.newID(),
			Order:  len(segs),
			Prefix: u.Prefix,
			Suffix: u.Suffix,
			Block: LanguageBlock{
				o.Primary:   TextValue(u.Primary),
				o.Secondary: TextValue(u.Secondary),
			},
		})
	}
	return segs
}

// bilingualPhrase trims each line, matches at most one annotation pair, and
// phrase-splits both halves independently. Phrase counts may differ between
// the two languages; downstream pairing is best-effort by index.
func (e *Engine) bilingualPhrase(rawText string, o Origin) []Segment {
	var segs []Segment
	blanks := 0
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}

		lead := ""
		if blanks > 0 {
			if len(segs) > 0 {
				segs[len(segs)-1].Suffix += "\n"
			}
			lead = strings.Repeat("\n", blanks)
		}
		blanks = 0

		t := ExtractTrim(line)
		primary, secondary := splitPhraseHalves(t.Content)
		if len(primary) == 0 && len(secondary) == 0 {
			continue
		}

		segs = append(segs, Segment{
			ID:     e.newID(),
			Order:  len(segs),
			Prefix: lead + t.Prefix,
			Suffix: t.Suffix,
			Block: LanguageBlock{
				o.Primary:   PhraseValue(primary),
				o.Secondary: PhraseValue(secondary),
			},
		})
	}
	return segs
}

// splitPhraseHalves matches the single annotation pair of a phrase-mode line
// and phrase-splits each half. Without a pair the whole payload belongs to
// the primary language; an unterminated pair is read through to the end of
// the line.
func splitPhraseHalves(payload string) (primary, secondary []string) {
	open := strings.IndexByte(payload, '{')
	if open < 0 {
		return SplitPhrases(payload), nil
	}
	closing := strings.IndexByte(payload[open+1:], '}')
	if closing < 0 {
		return SplitPhrases(payload[:open]), SplitPhrases(payload[open+1:])
	}
	closing += open + 1
	primary = SplitPhrases(payload[:open] + payload[closing+1:])
	secondary = SplitPhrases(payload[open+1 : closing])
	return primary, secondary
}
