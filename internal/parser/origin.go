package parser

import "strings"

// phraseMarker is the reserved descriptor token that selects phrase mode.
const phraseMarker = "ph"

// Mode identifies which segmentation strategy handles a piece of content.
type Mode int

const (
	ModeMonolingual Mode = iota
	ModeBilingualSentence
	ModeBilingualPhrase
)

// Origin is the parsed form of a format descriptor such as "en", "en-vi" or
// "en-vi-ph": a primary language, an optional secondary language, and a
// phrase-mode flag.
type Origin struct {
	Primary    string
	Secondary  string
	PhraseMode bool
}

// ParseOrigin decodes a format descriptor. The first token is the primary
// language; among the remaining tokens the phrase marker sets PhraseMode and
// the first other non-empty token becomes the secondary language. Token order
// after the first is not significant, and unrecognized extra tokens are
// ignored; stricter descriptor validation happens upstream.
func ParseOrigin(descriptor string) Origin {
	tokens := strings.Split(strings.TrimSpace(descriptor), "-")

	o := Origin{Primary: strings.TrimSpace(tokens[0])}
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case tok == phraseMarker:
			o.PhraseMode = true
		case o.Secondary == "":
			o.Secondary = tok
		}
	}
	return o
}

// Mode selects the strategy for this origin: without a secondary language
// content is monolingual regardless of the phrase flag.
func (o Origin) Mode() Mode {
	switch {
	case o.Secondary == "":
		return ModeMonolingual
	case o.PhraseMode:
		return ModeBilingualPhrase
	default:
		return ModeBilingualSentence
	}
}
